package cart

import (
	"context"

	"github.com/fekuna/omnipos-ordering-service/internal/cart/dto"
	"github.com/fekuna/omnipos-ordering-service/internal/model"
)

type UseCase interface {
	OpenCart(ctx context.Context, input *dto.OpenCartInput) (*Cart, error)
	GetCart(ctx context.Context, id string) (*Cart, error)
	// AddItem returns the cart and the line the product landed on.
	AddItem(ctx context.Context, id string, input *dto.AddItemInput) (*Cart, *Line, error)
	UpdateItem(ctx context.Context, id string, index int, input *dto.UpdateItemInput) (*Cart, error)
	RemoveItem(ctx context.Context, id string, index int) (*Cart, error)
	Submit(ctx context.Context, id string, input *dto.SubmitInput) (*model.Order, error)
	DiscardCart(ctx context.Context, id string) error
}

// Catalog resolves products for the cart.
type Catalog interface {
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
}
