package handlers

import (
	"net/http"

	"coldchain/internal/models"
	"coldchain/internal/services"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService services.InvoiceService
}

func NewInvoiceHandler(invoiceService services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

type generateInvoiceRequest struct {
	SourceType models.InvoiceSourceType `json:"source_type" binding:"required"`
	SourceID   uint                     `json:"source_id" binding:"required"`
}

func (h *InvoiceHandler) GenerateInvoice(c *gin.Context) {
	siteID, ok := uintParam(c, "site_id")
	if !ok {
		return
	}

	var req generateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	invoice, err := h.invoiceService.GenerateForSource(services.GenerateInvoiceInput{
		SourceType:   req.SourceType,
		SourceID:     req.SourceID,
		ActorID:      actorID(c),
		CallerSiteID: &siteID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	siteID, ok := uintParam(c, "site_id")
	if !ok {
		return
	}
	invoiceID, ok := uintParam(c, "invoice_id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetByID(invoiceID, &siteID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	siteID, ok := uintParam(c, "site_id")
	if !ok {
		return
	}

	invoices, err := h.invoiceService.GetBySite(siteID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

func (h *InvoiceHandler) VoidInvoice(c *gin.Context) {
	siteID, ok := uintParam(c, "site_id")
	if !ok {
		return
	}
	invoiceID, ok := uintParam(c, "invoice_id")
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

	invoice, err := h.invoiceService.Void(invoiceID, req.Reason, actorID(c), &siteID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}
