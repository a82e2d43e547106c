package product

import (
	"context"

	"github.com/fekuna/omnipos-ordering-service/internal/model"
	"github.com/fekuna/omnipos-ordering-service/internal/product/dto"
)

type Repository interface {
	// Create inserts the product and its variants in one transaction and fills in ids.
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id int64) (*model.Product, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, error)
	FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error)
	ListVariants(ctx context.Context, productID int64) ([]model.ProductVariant, error)

	// UpdateWithVariants updates the base row and, when replaceVariants is set,
	// reconciles the stored variants to exactly match variants. All or nothing.
	UpdateWithVariants(ctx context.Context, product *model.Product, variants []dto.VariantSpec, replaceVariants bool) error

	// Delete removes the product together with its variants and order items.
	Delete(ctx context.Context, id int64) error
}
