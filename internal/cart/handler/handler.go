package handler

import (
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-ordering-service/internal/cart"
	"github.com/fekuna/omnipos-ordering-service/internal/cart/dto"
	"github.com/fekuna/omnipos-ordering-service/internal/response"
	"github.com/fekuna/omnipos-ordering-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CartHandler struct {
	uc     cart.UseCase
	resp   *response.Responder
	logger logger.ZapLogger
}

func NewCartHandler(uc cart.UseCase, resp *response.Responder, log logger.ZapLogger) *CartHandler {
	return &CartHandler{uc: uc, resp: resp, logger: log}
}

func (h *CartHandler) Register(r gin.IRouter) {
	g := r.Group("/carritos")
	g.POST("", h.OpenCart)
	g.GET("/:id", h.GetCart)
	g.DELETE("/:id", h.DiscardCart)
	g.POST("/:id/items", h.AddItem)
	g.PATCH("/:id/items/:index", h.UpdateItem)
	g.DELETE("/:id/items/:index", h.RemoveItem)
	g.POST("/:id/pedido", h.Submit)
}

func (h *CartHandler) OpenCart(c *gin.Context) {
	var input dto.OpenCartInput
	// an empty body opens a customer cart
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			h.resp.BadRequest(c, "InvalidBody")
			return
		}
	}

	ct, err := h.uc.OpenCart(c.Request.Context(), &input)
	if err != nil {
		h.resp.Error(c, err, "InternalError")
		return
	}
	c.JSON(http.StatusCreated, ct.View())
}

func (h *CartHandler) GetCart(c *gin.Context) {
	ct, err := h.uc.GetCart(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.resp.Error(c, err, "InternalError")
		return
	}
	c.JSON(http.StatusOK, ct.View())
}

func (h *CartHandler) DiscardCart(c *gin.Context) {
	if err := h.uc.DiscardCart(c.Request.Context(), c.Param("id")); err != nil {
		h.resp.Error(c, err, "InternalError")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var input dto.AddItemInput
	if err := c.ShouldBindJSON(&input); err != nil || input.ProductID <= 0 {
		h.resp.BadRequest(c, "InvalidBody")
		return
	}

	ct, line, err := h.uc.AddItem(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		h.resp.Error(c, err, "InternalError")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": h.resp.T(c, "ItemAdded", map[string]interface{}{"Name": line.Product.Name}),
		"carrito": ct.View(),
	})
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	index, ok := h.lineIndex(c)
	if !ok {
		return
	}
	var input dto.UpdateItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.resp.BadRequest(c, "InvalidBody")
		return
	}

	ct, err := h.uc.UpdateItem(c.Request.Context(), c.Param("id"), index, &input)
	if err != nil {
		h.resp.Error(c, err, "InternalError")
		return
	}
	c.JSON(http.StatusOK, ct.View())
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	index, ok := h.lineIndex(c)
	if !ok {
		return
	}

	ct, err := h.uc.RemoveItem(c.Request.Context(), c.Param("id"), index)
	if err != nil {
		h.resp.Error(c, err, "InternalError")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": h.resp.T(c, "ItemRemoved", nil),
		"carrito": ct.View(),
	})
}

func (h *CartHandler) Submit(c *gin.Context) {
	var input dto.SubmitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.resp.BadRequest(c, "InvalidBody")
		return
	}

	order, err := h.uc.Submit(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		h.logger.Debug("submit failed", zap.String("cart_id", c.Param("id")), zap.Error(err))
		h.resp.Error(c, err, "OrderSubmitFailed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": h.resp.T(c, "OrderCreated", nil),
		"pedido":  order,
	})
}

func (h *CartHandler) lineIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		h.resp.Error(c, cart.ErrInvalidIndex, "InvalidID")
		return 0, false
	}
	return index, true
}
