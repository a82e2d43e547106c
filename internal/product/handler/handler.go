package handler

import (
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-ordering-service/internal/product"
	"github.com/fekuna/omnipos-ordering-service/internal/product/dto"
	"github.com/fekuna/omnipos-ordering-service/internal/response"
	"github.com/fekuna/omnipos-ordering-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProductHandler struct {
	uc     product.UseCase
	resp   *response.Responder
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, resp *response.Responder, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:     uc,
		resp:   resp,
		logger: log,
	}
}

// Register mounts the catalog routes. admin guards the write routes.
func (h *ProductHandler) Register(r gin.IRouter, admin gin.HandlerFunc) {
	g := r.Group("/productos")
	g.GET("", h.ListProducts)
	g.GET("/:id", h.GetProduct)
	g.GET("/:id/variantes", h.ListVariants)
	g.POST("", admin, h.CreateProduct)
	g.PATCH("/:id", admin, h.UpdateProduct)
	g.DELETE("/:id", admin, h.DeleteProduct)
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	onlyActive, _ := strconv.ParseBool(c.Query("activo"))
	filters := &dto.ProductFilters{
		SearchQuery:        c.Query("q"),
		OnlyActiveVariants: onlyActive,
	}

	products, err := h.uc.ListProducts(c.Request.Context(), filters)
	if err != nil {
		h.resp.Error(c, err, "ProductsLoadFailed")
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	p, err := h.uc.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.resp.Error(c, err, "InternalError")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) ListVariants(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	variants, err := h.uc.ListVariants(c.Request.Context(), id)
	if err != nil {
		h.resp.Error(c, err, "ProductsLoadFailed")
		return
	}
	c.JSON(http.StatusOK, variants)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var input dto.CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Debug("invalid product body", zap.Error(err))
		h.resp.BadRequest(c, "InvalidBody")
		return
	}

	p, err := h.uc.CreateProduct(c.Request.Context(), &input)
	if err != nil {
		h.resp.Error(c, err, "ProductCreateFailed")
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	var input dto.UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Debug("invalid product body", zap.Error(err))
		h.resp.BadRequest(c, "InvalidBody")
		return
	}
	input.ID = id

	p, err := h.uc.UpdateProduct(c.Request.Context(), &input)
	if err != nil {
		h.resp.Error(c, err, "ProductUpdateFailed")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	if err := h.uc.DeleteProduct(c.Request.Context(), id); err != nil {
		h.resp.Error(c, err, "ProductDeleteFailed")
		return
	}
	h.resp.Message(c, http.StatusOK, "ProductDeleted", nil)
}

func (h *ProductHandler) productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.resp.Error(c, product.ErrInvalidID, "InvalidID")
		return 0, false
	}
	return id, true
}
