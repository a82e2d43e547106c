package handler

import (
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-ordering-service/internal/model"
	"github.com/fekuna/omnipos-ordering-service/internal/order"
	"github.com/fekuna/omnipos-ordering-service/internal/order/dto"
	"github.com/fekuna/omnipos-ordering-service/internal/response"
	"github.com/fekuna/omnipos-ordering-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderHandler struct {
	uc     order.UseCase
	resp   *response.Responder
	logger logger.ZapLogger
}

func NewOrderHandler(uc order.UseCase, resp *response.Responder, log logger.ZapLogger) *OrderHandler {
	return &OrderHandler{uc: uc, resp: resp, logger: log}
}

func (h *OrderHandler) Register(r gin.IRouter, admin gin.HandlerFunc) {
	g := r.Group("/pedidos")
	g.POST("", h.CreateOrder)
	g.GET("", h.ListOrders)
	g.GET("/:id", h.GetOrder)
	g.PATCH("/:id/estado", admin, h.UpdateStatus)
	g.DELETE("/:id", admin, h.DeleteOrder)
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var sub model.OrderSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		h.logger.Debug("invalid order body", zap.Error(err))
		h.resp.BadRequest(c, "InvalidBody")
		return
	}

	o, err := h.uc.CreateOrder(c.Request.Context(), &sub)
	if err != nil {
		h.resp.Error(c, err, "OrderSubmitFailed")
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	filters := &dto.OrderFilters{Status: model.OrderStatus(c.Query("estado"))}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		filters.Limit = limit
	}

	orders, err := h.uc.ListOrders(c.Request.Context(), filters)
	if err != nil {
		h.resp.Error(c, err, "OrdersLoadFailed")
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}

	o, err := h.uc.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.resp.Error(c, err, "OrdersLoadFailed")
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}
	var input dto.UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.resp.BadRequest(c, "InvalidBody")
		return
	}
	input.ID = id

	o, err := h.uc.UpdateStatus(c.Request.Context(), &input)
	if err != nil {
		h.resp.Error(c, err, "OrderUpdateFailed")
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}

	if err := h.uc.DeleteOrder(c.Request.Context(), id); err != nil {
		h.resp.Error(c, err, "OrderUpdateFailed")
		return
	}
	h.resp.Message(c, http.StatusOK, "OrderDeleted", nil)
}

func (h *OrderHandler) orderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.resp.Error(c, order.ErrInvalidID, "InvalidID")
		return 0, false
	}
	return id, true
}
