package order

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-ordering-service/internal/model"
	"github.com/fekuna/omnipos-ordering-service/internal/order/dto"
)

type Repository interface {
	// Create inserts the order and its items in one transaction and fills in ids.
	Create(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, id int64) (*model.Order, error)
	FindAll(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id int64, status model.OrderStatus, at time.Time) error
	Delete(ctx context.Context, id int64) error
}
