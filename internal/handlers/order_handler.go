package handlers

import (
	"net/http"

	"coldchain/internal/services"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService services.OrderService
}

func NewOrderHandler(orderService services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	siteID, ok := uintParam(c, "site_id")
	if !ok {
		return
	}

	var input services.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	input.SiteID = siteID
	input.ActorID = actorID(c)

	order, err := h.orderService.Create(input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	siteID, ok := uintParam(c, "site_id")
	if !ok {
		return
	}

	orders, err := h.orderService.GetBySite(siteID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	siteID, ok := uintParam(c, "site_id")
	if !ok {
		return
	}
	orderID, ok := uintParam(c, "order_id")
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(siteID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ApproveOrder(c *gin.Context) {
	siteID, ok := uintParam(c, "site_id")
	if !ok {
		return
	}
	orderID, ok := uintParam(c, "order_id")
	if !ok {
		return
	}

	result, err := h.orderService.Approve(orderID, siteID, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *OrderHandler) RejectOrder(c *gin.Context) {
	siteID, ok := uintParam(c, "site_id")
	if !ok {
		return
	}
	orderID, ok := uintParam(c, "order_id")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	order, err := h.orderService.Reject(orderID, siteID, req.Reason, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) MarkInvoiced(c *gin.Context) {
	siteID, ok := uintParam(c, "site_id")
	if !ok {
		return
	}
	orderID, ok := uintParam(c, "order_id")
	if !ok {
		return
	}

	order, err := h.orderService.MarkInvoiced(orderID, siteID, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) CompleteOrder(c *gin.Context) {
	siteID, ok := uintParam(c, "site_id")
	if !ok {
		return
	}
	orderID, ok := uintParam(c, "order_id")
	if !ok {
		return
	}

	order, err := h.orderService.Complete(orderID, siteID, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	siteID, ok := uintParam(c, "site_id")
	if !ok {
		return
	}
	orderID, ok := uintParam(c, "order_id")
	if !ok {
		return
	}

	if err := h.orderService.Delete(orderID, siteID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
