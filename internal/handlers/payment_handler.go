package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"coldchain/internal/config"
	"coldchain/internal/services"

	"github.com/gin-gonic/gin"
)

const signatureHeader = "X-Webhook-Signature"

type PaymentHandler struct {
	paymentService services.PaymentService
	webhookSecret  []byte
}

func NewPaymentHandler(paymentService services.PaymentService, webhookSecret string) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		webhookSecret:  []byte(webhookSecret),
	}
}

type initiatePaymentRequest struct {
	InvoiceID   uint   `json:"invoice_id" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
}

func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	siteID, ok := uintParam(c, "site_id")
	if !ok {
		return
	}

	var req initiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	payment, err := h.paymentService.Initiate(req.InvoiceID, req.PhoneNumber, actorID(c), &siteID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func (h *PaymentHandler) ListPayments(c *gin.Context) {
	if _, ok := uintParam(c, "site_id"); !ok {
		return
	}
	invoiceID, ok := uintParam(c, "invoice_id")
	if !ok {
		return
	}

	payments, err := h.paymentService.GetByInvoice(invoiceID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

func (h *PaymentHandler) MarkPaidManually(c *gin.Context) {
	if _, ok := uintParam(c, "site_id"); !ok {
		return
	}
	paymentID, ok := uintParam(c, "payment_id")
	if !ok {
		return
	}

	payment, err := h.paymentService.MarkPaidManually(paymentID, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// HandleWebhook receives settlement callbacks from the mobile money
// gateway. The body is authenticated with an HMAC-SHA256 signature over
// the raw payload; anything unsigned or mis-signed is rejected before
// the payload is even parsed. The response is 200 for every
// authenticated delivery, including repeats and unknown references, so
// the gateway stops retrying.
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	if !h.verifySignature(body, c.GetHeader(signatureHeader)) {
		config.GetLogger().WithField("module", "payment_handler").Warn("webhook rejected: invalid signature")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var input services.WebhookInput
	if err := json.Unmarshal(body, &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if input.TransactionRef == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transaction_ref is required"})
		return
	}

	result, err := h.paymentService.ProcessWebhook(input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) verifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	provided, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, h.webhookSecret)
	mac.Write(body)
	return hmac.Equal(provided, mac.Sum(nil))
}
