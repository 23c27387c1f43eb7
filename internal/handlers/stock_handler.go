package handlers

import (
	"net/http"

	"coldchain/internal/models"
	"coldchain/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type StockHandler struct {
	productService services.ProductService
	ledger         services.StockLedger
}

func NewStockHandler(productService services.ProductService, ledger services.StockLedger) *StockHandler {
	return &StockHandler{productService: productService, ledger: ledger}
}

func (h *StockHandler) CreateProduct(c *gin.Context) {
	siteID, ok := uintParam(c, "site_id")
	if !ok {
		return
	}

	var input services.CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	input.SiteID = siteID
	input.ActorID = actorID(c)

	product, err := h.productService.Create(input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *StockHandler) GetProduct(c *gin.Context) {
	siteID, ok := uintParam(c, "site_id")
	if !ok {
		return
	}
	productID, ok := uintParam(c, "product_id")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(siteID, productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *StockHandler) ListProducts(c *gin.Context) {
	siteID, ok := uintParam(c, "site_id")
	if !ok {
		return
	}

	products, err := h.productService.GetBySite(siteID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *StockHandler) DeleteProduct(c *gin.Context) {
	siteID, ok := uintParam(c, "site_id")
	if !ok {
		return
	}
	productID, ok := uintParam(c, "product_id")
	if !ok {
		return
	}

	if err := h.productService.Delete(siteID, productID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type recordMovementRequest struct {
	ColdRoomID uint                     `json:"cold_room_id" binding:"required"`
	QuantityKg decimal.Decimal          `json:"quantity_kg" binding:"required"`
	Direction  models.MovementDirection `json:"direction" binding:"required"`
	Reason     string                   `json:"reason" binding:"required"`
}

func (h *StockHandler) RecordMovement(c *gin.Context) {
	if _, ok := uintParam(c, "site_id"); !ok {
		return
	}
	productID, ok := uintParam(c, "product_id")
	if !ok {
		return
	}

	var req recordMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	movement, err := h.ledger.Record(services.MovementInput{
		ProductID:  productID,
		ColdRoomID: req.ColdRoomID,
		QuantityKg: req.QuantityKg,
		Direction:  req.Direction,
		Reason:     req.Reason,
		ActorID:    actorID(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, movement)
}

func (h *StockHandler) ListMovements(c *gin.Context) {
	if _, ok := uintParam(c, "site_id"); !ok {
		return
	}
	productID, ok := uintParam(c, "product_id")
	if !ok {
		return
	}

	movements, err := h.ledger.GetProductMovements(productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"movements": movements})
}

func (h *StockHandler) RevertMovement(c *gin.Context) {
	movementID, ok := uintParam(c, "movement_id")
	if !ok {
		return
	}

	reversal, err := h.ledger.RevertMovement(movementID, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reversal)
}
