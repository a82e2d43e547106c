package usecase

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/fekuna/omnipos-ordering-service/internal/apperror"
	"github.com/fekuna/omnipos-ordering-service/internal/model"
	"github.com/fekuna/omnipos-ordering-service/internal/order"
	"github.com/fekuna/omnipos-ordering-service/internal/order/dto"
	"github.com/fekuna/omnipos-ordering-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

type orderUseCase struct {
	repo      order.Repository
	publisher order.EventPublisher
	logger    logger.ZapLogger
}

// NewOrderUseCase builds the order service. publisher may be nil.
func NewOrderUseCase(repo order.Repository, publisher order.EventPublisher, log logger.ZapLogger) order.UseCase {
	return &orderUseCase{
		repo:      repo,
		publisher: publisher,
		logger:    log,
	}
}

func (uc *orderUseCase) CreateOrder(ctx context.Context, sub *model.OrderSubmission) (*model.Order, error) {
	name := strings.TrimSpace(sub.CustomerName)
	if name == "" {
		return nil, order.ErrCustomerNameRequired
	}
	if len(sub.Items) == 0 {
		return nil, order.ErrNoItems
	}

	orderType := strings.TrimSpace(sub.OrderType)
	if orderType == "" {
		orderType = model.OrderTypeLocal
	}

	var payment *string
	if sub.PaymentMethod != nil && strings.TrimSpace(*sub.PaymentMethod) != "" {
		m := strings.TrimSpace(*sub.PaymentMethod)
		if !model.ValidPaymentMethod(m) {
			return nil, order.ErrInvalidPaymentMethod
		}
		payment = &m
	}

	now := time.Now()
	o := &model.Order{
		CustomerName:  name,
		Type:          orderType,
		PaymentMethod: payment,
		Status:        model.OrderStatusPending,
		Total:         decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
		Items:         make([]model.OrderItem, 0, len(sub.Items)),
	}

	for _, it := range sub.Items {
		if it.ProductID <= 0 {
			return nil, order.ErrInvalidProduct
		}
		if it.Quantity < 1 {
			return nil, order.ErrInvalidQuantity
		}
		if it.UnitPrice.IsNegative() {
			return nil, order.ErrInvalidPrice
		}
		o.Items = append(o.Items, model.OrderItem{
			ProductID:   it.ProductID,
			VariantID:   it.VariantID,
			VariantName: it.VariantName,
			Quantity:    it.Quantity,
			Notes:       it.Notes,
			UnitPrice:   it.UnitPrice,
		})
		o.Total = o.Total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	if err := uc.repo.Create(ctx, o); err != nil {
		uc.logger.Error("failed to create order", zap.String("customer", name), zap.Error(err))
		return nil, apperror.Wrap(apperror.KindInternal, "OrderSubmitFailed", err)
	}

	uc.logger.Info("order created",
		zap.Int64("order_id", o.ID),
		zap.Int("items", len(o.Items)),
		zap.String("total", o.Total.String()),
	)
	go uc.publish(order.EventOrderCreated, o)

	return o, nil
}

func (uc *orderUseCase) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	if id <= 0 {
		return nil, order.ErrInvalidID
	}
	o, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, order.ErrNotFound
	}
	return o, nil
}

func (uc *orderUseCase) ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, error) {
	if filters == nil {
		filters = &dto.OrderFilters{}
	}
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, order.ErrInvalidStatus
	}
	return uc.repo.FindAll(ctx, filters)
}

func (uc *orderUseCase) UpdateStatus(ctx context.Context, input *dto.UpdateStatusInput) (*model.Order, error) {
	if input.ID <= 0 {
		return nil, order.ErrInvalidID
	}
	if !input.Status.Valid() {
		return nil, order.ErrInvalidStatus
	}

	if err := uc.repo.UpdateStatus(ctx, input.ID, input.Status, time.Now()); err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil, err
		}
		uc.logger.Error("failed to update order status", zap.Int64("order_id", input.ID), zap.Error(err))
		return nil, apperror.Wrap(apperror.KindInternal, "OrderUpdateFailed", err)
	}

	o, err := uc.GetOrder(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	go uc.publish(order.EventOrderStatusChanged, o)
	return o, nil
}

func (uc *orderUseCase) DeleteOrder(ctx context.Context, id int64) error {
	if id <= 0 {
		return order.ErrInvalidID
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return err
		}
		uc.logger.Error("failed to delete order", zap.Int64("order_id", id), zap.Error(err))
		return apperror.Wrap(apperror.KindInternal, "OrderUpdateFailed", err)
	}
	return nil
}

func (uc *orderUseCase) publish(eventType string, o *model.Order) {
	if uc.publisher == nil {
		return
	}

	event := order.Event{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Payload:   o,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		uc.logger.Error("failed to marshal order event", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := uc.publisher.Publish(ctx, strconv.FormatInt(o.ID, 10), data); err != nil {
		uc.logger.Error("failed to publish order event",
			zap.String("event_type", eventType),
			zap.Int64("order_id", o.ID),
			zap.Error(err),
		)
	}
}
