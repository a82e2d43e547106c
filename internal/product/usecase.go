package product

import (
	"context"

	"github.com/fekuna/omnipos-ordering-service/internal/model"
	"github.com/fekuna/omnipos-ordering-service/internal/product/dto"
	"github.com/fekuna/omnipos-ordering-service/pkg/search"
)

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, error)
	UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	// Variant ops
	ListVariants(ctx context.Context, productID int64) ([]model.ProductVariant, error)
}

// Searcher is the subset of the search client the catalog needs.
type Searcher interface {
	CreateIndex(ctx context.Context, index, mapping string) error
	Index(ctx context.Context, index, id string, doc interface{}) error
	Search(ctx context.Context, index string, query map[string]interface{}) (*search.SearchResponse, error)
	Delete(ctx context.Context, index, id string) error
}
