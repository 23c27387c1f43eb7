package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"coldchain/internal/models"
	"coldchain/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPaymentService struct {
	webhookCalls  int
	webhookResult *services.WebhookResult
}

func (s *stubPaymentService) Initiate(invoiceID uint, phoneNumber string, actorID uint, callerSiteID *uint) (*models.Payment, error) {
	return nil, nil
}

func (s *stubPaymentService) ProcessWebhook(input services.WebhookInput) (*services.WebhookResult, error) {
	s.webhookCalls++
	if s.webhookResult != nil {
		return s.webhookResult, nil
	}
	return &services.WebhookResult{Processed: true, Message: "payment settled"}, nil
}

func (s *stubPaymentService) MarkPaidManually(paymentID, actorID uint) (*models.Payment, error) {
	return nil, nil
}

func (s *stubPaymentService) GetByInvoice(invoiceID uint) ([]models.Payment, error) {
	return nil, nil
}

const testSecret = "test-webhook-secret"

func newWebhookRouter(svc services.PaymentService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewPaymentHandler(svc, testSecret)
	router := gin.New()
	router.POST("/api/payments/webhook", handler.HandleWebhook)
	return router
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(router *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Webhook-Signature", signature)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookAcceptsValidSignature(t *testing.T) {
	svc := &stubPaymentService{}
	router := newWebhookRouter(svc)

	body := []byte(`{"transaction_ref":"abc-123","status":"SUCCESSFUL","amount":"10500"}`)
	w := postWebhook(router, body, sign(body))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.webhookCalls)
	assert.Contains(t, w.Body.String(), "payment settled")
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	svc := &stubPaymentService{}
	router := newWebhookRouter(svc)

	body := []byte(`{"transaction_ref":"abc-123","status":"SUCCESSFUL"}`)
	w := postWebhook(router, body, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, svc.webhookCalls)
}

func TestWebhookRejectsWrongSignature(t *testing.T) {
	svc := &stubPaymentService{}
	router := newWebhookRouter(svc)

	body := []byte(`{"transaction_ref":"abc-123","status":"SUCCESSFUL"}`)
	tampered := append([]byte{}, body...)
	tampered[10]++

	w := postWebhook(router, body, sign(tampered))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, svc.webhookCalls)
}

func TestWebhookRejectsNonHexSignature(t *testing.T) {
	svc := &stubPaymentService{}
	router := newWebhookRouter(svc)

	body := []byte(`{"transaction_ref":"abc-123","status":"SUCCESSFUL"}`)
	w := postWebhook(router, body, "not-hex!")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookRequiresTransactionRef(t *testing.T) {
	svc := &stubPaymentService{}
	router := newWebhookRouter(svc)

	body := []byte(`{"status":"SUCCESSFUL"}`)
	w := postWebhook(router, body, sign(body))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, svc.webhookCalls)
}

func TestWebhookIdempotentRepeatStillReturns200(t *testing.T) {
	svc := &stubPaymentService{webhookResult: &services.WebhookResult{Processed: true, Idempotent: true, Message: "already processed"}}
	router := newWebhookRouter(svc)

	body := []byte(`{"transaction_ref":"abc-123","status":"SUCCESSFUL"}`)
	w := postWebhook(router, body, sign(body))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "already processed")
}
