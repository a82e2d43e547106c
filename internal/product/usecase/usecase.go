package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fekuna/omnipos-ordering-service/internal/apperror"
	"github.com/fekuna/omnipos-ordering-service/internal/model"
	"github.com/fekuna/omnipos-ordering-service/internal/product"
	"github.com/fekuna/omnipos-ordering-service/internal/product/dto"
	"github.com/fekuna/omnipos-ordering-service/pkg/cache"
	"github.com/fekuna/omnipos-ordering-service/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	indexName       = "productos"
	listCachePrefix = "productos:list:"
	listCacheTTL    = 5 * time.Minute
)

type productUseCase struct {
	repo   product.Repository
	cache  *cache.RedisClient
	search product.Searcher
	logger logger.ZapLogger
}

// NewProductUseCase wires the catalog. cache and search may be nil.
func NewProductUseCase(repo product.Repository, cache *cache.RedisClient, search product.Searcher, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:   repo,
		cache:  cache,
		search: search,
		logger: log,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, product.ErrNameRequired
	}
	price, err := parseBasePrice(input.Price)
	if err != nil {
		return nil, err
	}

	specs, err := normalizeVariants(input.Variants)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	p := &model.Product{
		Name:      name,
		Price:     price,
		Image:     emptyToNil(input.Image),
		CreatedAt: now,
		UpdatedAt: now,
		Variants:  make([]model.ProductVariant, 0, len(specs)),
	}
	for _, s := range specs {
		if s.ID != nil {
			return nil, product.ErrInvalidVariantID
		}
		p.Variants = append(p.Variants, model.ProductVariant{
			Name:     s.Name,
			Price:    s.Price,
			SKU:      s.SKU,
			Image:    s.Image,
			IsActive: s.Active,
		})
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		uc.logger.Error("failed to create product", zap.String("name", name), zap.Error(err))
		return nil, apperror.Wrap(apperror.KindInternal, "ProductCreateFailed", err)
	}

	uc.invalidateListCache(ctx)
	go uc.syncToSearch(context.Background(), p)

	return p, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	if id <= 0 {
		return nil, product.ErrInvalidID
	}
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, error) {
	if filters == nil {
		filters = &dto.ProductFilters{}
	}

	cacheKey, err := generateCacheKey(filters)
	if err == nil && uc.cache != nil {
		val, err := uc.cache.Client.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var cached []model.Product
			if err := json.Unmarshal(val, &cached); err == nil {
				return cached, nil
			}
		}
	}

	if filters.SearchQuery != "" && uc.search != nil {
		products, err := uc.searchProducts(ctx, filters)
		if err == nil {
			return products, nil
		}
		uc.logger.Error("search failed, falling back to DB", zap.Error(err))
	}

	products, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, err
	}

	if cacheKey != "" && uc.cache != nil {
		if data, err := json.Marshal(products); err == nil {
			if err := uc.cache.Client.Set(ctx, cacheKey, data, listCacheTTL).Err(); err != nil {
				uc.logger.Warn("failed to cache product list", zap.Error(err))
			}
		}
	}

	return products, nil
}

func (uc *productUseCase) searchProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, error) {
	q := map[string]interface{}{
		"query": map[string]interface{}{
			"query_string": map[string]interface{}{
				"query":  fmt.Sprintf("*%s*", filters.SearchQuery),
				"fields": []string{"nombre^3", "variantes.nombre", "variantes.sku"},
			},
		},
		"_source": false,
		"size":    100,
	}

	res, err := uc.search.Search(ctx, indexName, q)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		if id, err := strconv.ParseInt(hit.ID, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}

	// The index may lag behind; the rows themselves always come from the DB.
	products, err := uc.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if filters.OnlyActiveVariants {
		for i := range products {
			products[i].Variants = products[i].ActiveVariants()
		}
	}
	return products, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	if input.ID <= 0 {
		return nil, product.ErrInvalidID
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, product.ErrNameRequired
	}
	// The base price must be valid; a bad value fails the whole update before any write.
	price, err := parseBasePrice(input.Price)
	if err != nil {
		return nil, err
	}

	var specs []dto.VariantSpec
	replace := input.Variants != nil
	if replace {
		specs, err = normalizeVariants(*input.Variants)
		if err != nil {
			return nil, err
		}
	}

	p := &model.Product{
		ID:        input.ID,
		Name:      name,
		Price:     price,
		Image:     emptyToNil(input.Image),
		UpdatedAt: time.Now(),
	}

	if err := uc.repo.UpdateWithVariants(ctx, p, specs, replace); err != nil {
		if kind := apperror.KindOf(err); kind == apperror.KindNotFound || kind == apperror.KindValidation {
			return nil, err
		}
		uc.logger.Error("failed to update product", zap.Int64("product_id", input.ID), zap.Error(err))
		return nil, apperror.Wrap(apperror.KindInternal, "ProductUpdateFailed", err)
	}

	uc.invalidateListCache(ctx)

	updated, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, product.ErrNotFound
	}

	go uc.syncToSearch(context.Background(), updated)

	return updated, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id int64) error {
	if id <= 0 {
		return product.ErrInvalidID
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return err
		}
		uc.logger.Error("failed to delete product", zap.Int64("product_id", id), zap.Error(err))
		return apperror.Wrap(apperror.KindInternal, "ProductDeleteFailed", err)
	}

	uc.invalidateListCache(ctx)
	if uc.search != nil {
		go func() {
			if err := uc.search.Delete(context.Background(), indexName, strconv.FormatInt(id, 10)); err != nil {
				uc.logger.Error("failed to delete product from index", zap.Int64("product_id", id), zap.Error(err))
			}
		}()
	}
	return nil
}

func (uc *productUseCase) ListVariants(ctx context.Context, productID int64) ([]model.ProductVariant, error) {
	if _, err := uc.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	return uc.repo.ListVariants(ctx, productID)
}

func (uc *productUseCase) syncToSearch(ctx context.Context, p *model.Product) {
	if uc.search == nil {
		return
	}

	mapping := `{
		"mappings": {
			"properties": {
				"nombre": { "type": "text" },
				"precio": { "type": "double" },
				"variantes": {
					"properties": {
						"nombre": { "type": "text" },
						"sku": { "type": "keyword" }
					}
				}
			}
		}
	}`
	// already-exists errors are expected after the first call
	_ = uc.search.CreateIndex(ctx, indexName, mapping)

	if err := uc.search.Index(ctx, indexName, strconv.FormatInt(p.ID, 10), p); err != nil {
		uc.logger.Error("failed to index product", zap.Int64("product_id", p.ID), zap.Error(err))
	}
}

func (uc *productUseCase) invalidateListCache(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.DeleteByPattern(ctx, listCachePrefix+"*"); err != nil {
		uc.logger.Warn("failed to invalidate product cache", zap.Error(err))
	}
}

func generateCacheKey(filters *dto.ProductFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%x", listCachePrefix, md5.Sum(data)), nil
}

func parseBasePrice(p dto.Price) (decimal.Decimal, error) {
	d, err := p.Decimal()
	if err != nil || d.IsNegative() {
		return decimal.Zero, product.ErrInvalidPrice
	}
	return d, nil
}

// normalizeVariants validates descriptors and applies price coercion and defaults.
func normalizeVariants(in []dto.VariantInput) ([]dto.VariantSpec, error) {
	out := make([]dto.VariantSpec, 0, len(in))
	for _, v := range in {
		if v.ID != nil && *v.ID <= 0 {
			return nil, product.ErrInvalidVariantID
		}
		name := strings.TrimSpace(v.Name)
		if name == "" {
			return nil, product.ErrVariantNameRequired
		}
		out = append(out, dto.VariantSpec{
			ID:     v.ID,
			Name:   name,
			Price:  v.Price.Coerce(),
			SKU:    emptyToNil(v.SKU),
			Image:  emptyToNil(v.Image),
			Active: v.Active == nil || *v.Active,
		})
	}
	return out, nil
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
