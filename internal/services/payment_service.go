package services

import (
	"errors"
	"fmt"
	"time"

	"coldchain/internal/apperrors"
	"coldchain/internal/config"
	"coldchain/internal/models"
	"coldchain/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PaymentGateway starts a mobile-money charge and returns the gateway's
// transaction reference. Settlement arrives later through the webhook.
type PaymentGateway interface {
	RequestToPay(amount decimal.Decimal, phoneNumber, externalRef, message string) (string, error)
}

// WebhookDedupeCache short-circuits redelivered webhooks before a
// transaction is opened. It is advisory only; the in-transaction
// payment re-read stays authoritative.
type WebhookDedupeCache interface {
	WasWebhookProcessed(transactionRef string) (bool, error)
	MarkWebhookProcessed(transactionRef string, ttl time.Duration) error
}

type WebhookInput struct {
	TransactionRef string          `json:"transaction_ref"`
	Status         string          `json:"status"`
	Amount         decimal.Decimal `json:"amount"`
	Reason         string          `json:"reason"`
}

type WebhookResult struct {
	Processed  bool   `json:"processed"`
	Idempotent bool   `json:"idempotent"`
	Message    string `json:"message"`
}

const (
	gatewayStatusSuccessful = "SUCCESSFUL"
	gatewayStatusPaid       = "PAID"
	gatewayStatusFailed     = "FAILED"
)

type PaymentService interface {
	// Initiate starts a charge for the invoice's outstanding amount. The
	// gateway call happens before any Payment row exists, so a gateway
	// failure leaves nothing to clean up and the caller can retry.
	Initiate(invoiceID uint, phoneNumber string, actorID uint, callerSiteID *uint) (*models.Payment, error)
	// ProcessWebhook settles a payment at most once no matter how many
	// times the gateway delivers the callback. Unknown references and
	// repeats are successful no-ops.
	ProcessWebhook(input WebhookInput) (*WebhookResult, error)
	MarkPaidManually(paymentID, actorID uint) (*models.Payment, error)
	GetByInvoice(invoiceID uint) ([]models.Payment, error)
}

type paymentService struct {
	db          TxRunner
	paymentRepo repository.PaymentRepository
	invoiceRepo repository.InvoiceRepository
	invoices    InvoiceService
	gateway     PaymentGateway
	cache       WebhookDedupeCache
	audit       AuditRecorder
	logger      *logrus.Logger
	dedupeTTL   time.Duration
}

func NewPaymentService(
	db TxRunner,
	paymentRepo repository.PaymentRepository,
	invoiceRepo repository.InvoiceRepository,
	invoices InvoiceService,
	gateway PaymentGateway,
	cache WebhookDedupeCache,
	audit AuditRecorder,
	logger *logrus.Logger,
	dedupeTTL time.Duration,
) PaymentService {
	return &paymentService{
		db:          db,
		paymentRepo: paymentRepo,
		invoiceRepo: invoiceRepo,
		invoices:    invoices,
		gateway:     gateway,
		cache:       cache,
		audit:       audit,
		logger:      logger,
		dedupeTTL:   dedupeTTL,
	}
}

func (s *paymentService) Initiate(invoiceID uint, phoneNumber string, actorID uint, callerSiteID *uint) (*models.Payment, error) {
	invoice, err := s.invoices.GetByID(invoiceID, callerSiteID)
	if err != nil {
		return nil, err
	}
	if invoice.Status == models.InvoicePaid {
		return nil, apperrors.BadRequest("invoice %s is already paid", invoice.InvoiceNumber)
	}
	if invoice.Status == models.InvoiceVoid {
		return nil, apperrors.BadRequest("invoice %s is void", invoice.InvoiceNumber)
	}
	amountDue := invoice.TotalAmount.Sub(invoice.PaidAmount)
	if !amountDue.IsPositive() {
		return nil, apperrors.BadRequest("invoice %s has no outstanding amount", invoice.InvoiceNumber)
	}

	externalRef := uuid.NewString()
	message := fmt.Sprintf("Payment for invoice %s", invoice.InvoiceNumber)
	gatewayRef, err := s.gateway.RequestToPay(amountDue, phoneNumber, externalRef, message)
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		InvoiceID:             invoice.ID,
		Amount:                amountDue,
		Method:                models.PaymentMobileMoney,
		Status:                models.PaymentPending,
		PhoneNumber:           phoneNumber,
		GatewayTransactionRef: gatewayRef,
		InitiatedBy:           &actorID,
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		return nil, err
	}
	s.audit.Record(actorID, "payment.initiate", "Payment", payment.ID,
		fmt.Sprintf("invoice=%s amount=%s ref=%s", invoice.InvoiceNumber, amountDue, gatewayRef))
	return payment, nil
}

func (s *paymentService) ProcessWebhook(input WebhookInput) (*WebhookResult, error) {
	if s.cache != nil {
		processed, err := s.cache.WasWebhookProcessed(input.TransactionRef)
		if err != nil {
			config.LogError(s.logger, "payment_service.go", "ProcessWebhook", "dedupe cache read", input.TransactionRef, err)
		} else if processed {
			return &WebhookResult{Processed: true, Idempotent: true, Message: "already processed"}, nil
		}
	}

	payment, err := s.paymentRepo.GetByTransactionRef(input.TransactionRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &WebhookResult{Processed: false, Message: "unknown transaction reference"}, nil
		}
		return nil, err
	}
	if payment.Status == models.PaymentPaid {
		s.markProcessed(input.TransactionRef)
		return &WebhookResult{Processed: true, Idempotent: true, Message: "already processed"}, nil
	}

	switch input.Status {
	case gatewayStatusSuccessful, gatewayStatusPaid:
		return s.reconcile(payment.ID, input)
	case gatewayStatusFailed:
		return s.fail(payment.ID, input)
	default:
		return &WebhookResult{Processed: false, Message: fmt.Sprintf("ignored status %s", input.Status)}, nil
	}
}

// reconcile settles the payment against its invoice. The payment is
// re-read under a row lock and re-checked for PAID inside the
// transaction: the outer check above only closes the fast path, this
// one closes the race between two concurrent deliveries.
func (s *paymentService) reconcile(paymentID uint, input WebhookInput) (*WebhookResult, error) {
	idempotent := false
	var payment *models.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		payment, txErr = s.paymentRepo.GetByIDForUpdate(tx, paymentID)
		if txErr != nil {
			return txErr
		}
		if payment.Status == models.PaymentPaid {
			idempotent = true
			return nil
		}

		invoice, txErr := s.invoiceRepo.GetByIDForUpdate(tx, payment.InvoiceID)
		if txErr != nil {
			return txErr
		}

		amount := input.Amount
		if !amount.IsPositive() {
			amount = payment.Amount
		}
		// Several attempts may exist for one invoice; a later settlement
		// credits at most the outstanding balance. The payment itself is
		// still recorded as PAID since the money was collected.
		credit := amount
		if invoice.Status == models.InvoiceVoid {
			credit = decimal.Zero
		} else if outstanding := invoice.TotalAmount.Sub(invoice.PaidAmount); credit.GreaterThan(outstanding) {
			credit = outstanding
		}

		now := time.Now()
		payment.Status = models.PaymentPaid
		payment.PaidAt = &now
		if txErr = s.paymentRepo.Save(tx, payment); txErr != nil {
			return txErr
		}
		if credit.IsPositive() {
			if _, txErr = s.invoices.MarkPaid(tx, payment.InvoiceID, credit, actorOf(payment), nil); txErr != nil {
				return txErr
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.markProcessed(input.TransactionRef)
	if idempotent {
		return &WebhookResult{Processed: true, Idempotent: true, Message: "already processed"}, nil
	}
	s.audit.Record(actorOf(payment), "payment.reconcile", "Payment", payment.ID,
		fmt.Sprintf("invoice=%d ref=%s", payment.InvoiceID, input.TransactionRef))
	return &WebhookResult{Processed: true, Message: "payment settled"}, nil
}

func (s *paymentService) fail(paymentID uint, input WebhookInput) (*WebhookResult, error) {
	var payment *models.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		payment, txErr = s.paymentRepo.GetByIDForUpdate(tx, paymentID)
		if txErr != nil {
			return txErr
		}
		if payment.Status == models.PaymentPaid {
			return nil
		}
		payment.Status = models.PaymentFailed
		payment.FailureReason = input.Reason
		return s.paymentRepo.Save(tx, payment)
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(actorOf(payment), "payment.fail", "Payment", payment.ID, input.Reason)
	return &WebhookResult{Processed: true, Message: "payment marked failed"}, nil
}

func (s *paymentService) MarkPaidManually(paymentID, actorID uint) (*models.Payment, error) {
	var payment *models.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		payment, txErr = s.paymentRepo.GetByIDForUpdate(tx, paymentID)
		if txErr != nil {
			return notFoundOr(txErr, "payment %d not found", paymentID)
		}
		if payment.Status == models.PaymentPaid {
			return apperrors.Conflict("payment %d is already paid", payment.ID)
		}

		now := time.Now()
		payment.Status = models.PaymentPaid
		payment.Method = models.PaymentManual
		payment.PaidAt = &now
		if txErr = s.paymentRepo.Save(tx, payment); txErr != nil {
			return txErr
		}
		_, txErr = s.invoices.MarkPaid(tx, payment.InvoiceID, payment.Amount, actorID, nil)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	s.markProcessed(payment.GatewayTransactionRef)
	s.audit.Record(actorID, "payment.manual", "Payment", payment.ID,
		fmt.Sprintf("invoice=%d amount=%s", payment.InvoiceID, payment.Amount))
	return payment, nil
}

func (s *paymentService) GetByInvoice(invoiceID uint) ([]models.Payment, error) {
	return s.paymentRepo.GetByInvoice(invoiceID)
}

// actorOf attributes gateway-driven settlements to the initiating
// operator when one is known; 0 means the system itself.
func actorOf(p *models.Payment) uint {
	if p.InitiatedBy != nil {
		return *p.InitiatedBy
	}
	return 0
}

func (s *paymentService) markProcessed(transactionRef string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.MarkWebhookProcessed(transactionRef, s.dedupeTTL); err != nil {
		config.LogError(s.logger, "payment_service.go", "markProcessed", "dedupe cache write", transactionRef, err)
	}
}
