package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-ordering-service/internal/cart"
	"github.com/fekuna/omnipos-ordering-service/internal/cart/dto"
	"github.com/fekuna/omnipos-ordering-service/internal/model"
	"github.com/fekuna/omnipos-ordering-service/pkg/cache"
	"github.com/fekuna/omnipos-ordering-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const submitLockPrefix = "carritos:lock:"

type Options struct {
	SessionTTL    time.Duration
	SubmitLockTTL time.Duration
}

type cartUseCase struct {
	repo    cart.Repository
	catalog cart.Catalog
	orders  cart.OrderCreator
	locks   *cache.RedisClient
	opts    Options
	logger  logger.ZapLogger
}

func NewCartUseCase(
	repo cart.Repository,
	catalog cart.Catalog,
	orders cart.OrderCreator,
	locks *cache.RedisClient,
	opts Options,
	log logger.ZapLogger,
) cart.UseCase {
	return &cartUseCase{
		repo:    repo,
		catalog: catalog,
		orders:  orders,
		locks:   locks,
		opts:    opts,
		logger:  log,
	}
}

func (uc *cartUseCase) OpenCart(ctx context.Context, input *dto.OpenCartInput) (*cart.Cart, error) {
	mode := cart.Mode(strings.ToLower(strings.TrimSpace(input.Mode)))
	if mode == "" {
		mode = cart.ModeCustomer
	}
	if !mode.Valid() {
		return nil, cart.ErrInvalidMode
	}

	c := cart.New(uuid.NewString(), mode)
	if err := uc.repo.Save(ctx, c, uc.opts.SessionTTL); err != nil {
		uc.logger.Error("failed to open cart", zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (uc *cartUseCase) GetCart(ctx context.Context, id string) (*cart.Cart, error) {
	c, err := uc.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, cart.ErrNotFound
	}
	return c, nil
}

func (uc *cartUseCase) AddItem(ctx context.Context, id string, input *dto.AddItemInput) (*cart.Cart, *cart.Line, error) {
	p, err := uc.catalog.GetProduct(ctx, input.ProductID)
	if err != nil {
		return nil, nil, err
	}
	v, err := cart.SelectVariant(p, input.VariantID)
	if err != nil {
		return nil, nil, err
	}

	var added cart.Line
	c, err := uc.repo.Update(ctx, id, uc.opts.SessionTTL, func(c *cart.Cart) error {
		i := c.AddLine(p, v)
		added = c.Snapshot()[i]
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return c, &added, nil
}

func (uc *cartUseCase) UpdateItem(ctx context.Context, id string, index int, input *dto.UpdateItemInput) (*cart.Cart, error) {
	return uc.repo.Update(ctx, id, uc.opts.SessionTTL, func(c *cart.Cart) error {
		if index < 0 || index >= len(c.Lines) {
			return cart.ErrInvalidIndex
		}
		if input.Delta != nil {
			c.UpdateQuantity(index, *input.Delta)
		}
		if input.Notes != nil {
			c.SetNotes(index, *input.Notes)
		}
		return nil
	})
}

func (uc *cartUseCase) RemoveItem(ctx context.Context, id string, index int) (*cart.Cart, error) {
	return uc.repo.Update(ctx, id, uc.opts.SessionTTL, func(c *cart.Cart) error {
		c.RemoveLine(index)
		return nil
	})
}

// Submit turns the cart into an order. A Redis lock keyed by cart id keeps
// a second submit of the same session out while the first is running.
func (uc *cartUseCase) Submit(ctx context.Context, id string, input *dto.SubmitInput) (*model.Order, error) {
	lockKey := submitLockPrefix + id
	token := uuid.NewString()

	ok, err := uc.locks.AcquireLock(ctx, lockKey, token, uc.opts.SubmitLockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, cart.ErrSubmissionInFlight
	}
	defer func() {
		if err := uc.locks.ReleaseLock(context.Background(), lockKey, token); err != nil {
			uc.logger.Warn("failed to release submit lock", zap.String("cart_id", id), zap.Error(err))
		}
	}()

	c, err := uc.GetCart(ctx, id)
	if err != nil {
		return nil, err
	}
	submitted := c.Snapshot()

	submitCtx, cancel := uc.submitContext(ctx)
	defer cancel()

	order, err := c.Submit(submitCtx, input.CustomerName, input.OrderType, input.PaymentMethod, uc.orders)
	if err != nil {
		uc.logger.Debug("cart submit rejected", zap.String("cart_id", id), zap.Error(err))
		return nil, err
	}

	_, err = uc.repo.Update(ctx, id, uc.opts.SessionTTL, func(cur *cart.Cart) error {
		cur.Settle(submitted)
		return nil
	})
	if err != nil {
		// the order exists; a stale cart is only a UI problem
		uc.logger.Error("failed to clear submitted cart", zap.String("cart_id", id), zap.Int64("order_id", order.ID), zap.Error(err))
	}

	uc.logger.Info("order submitted from cart",
		zap.String("cart_id", id),
		zap.Int64("order_id", order.ID),
		zap.String("mode", string(c.Mode)),
	)
	return order, nil
}

// submitContext bounds order creation to well inside the lock TTL so the
// lock cannot expire while the order is still being written.
func (uc *cartUseCase) submitContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ttl := uc.opts.SubmitLockTTL
	if ttl <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, ttl-ttl/5)
}

func (uc *cartUseCase) DiscardCart(ctx context.Context, id string) error {
	if _, err := uc.GetCart(ctx, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}
