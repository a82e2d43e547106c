package order

import (
	"context"

	"github.com/fekuna/omnipos-ordering-service/internal/model"
	"github.com/fekuna/omnipos-ordering-service/internal/order/dto"
)

type UseCase interface {
	CreateOrder(ctx context.Context, sub *model.OrderSubmission) (*model.Order, error)
	GetOrder(ctx context.Context, id int64) (*model.Order, error)
	ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, error)
	UpdateStatus(ctx context.Context, input *dto.UpdateStatusInput) (*model.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
}

// EventPublisher is satisfied by broker.KafkaProducer.
type EventPublisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}
