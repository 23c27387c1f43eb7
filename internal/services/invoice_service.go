package services

import (
	"errors"
	"fmt"
	"time"

	"coldchain/internal/apperrors"
	"coldchain/internal/models"
	"coldchain/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GenerateInvoiceInput struct {
	SourceType   models.InvoiceSourceType
	SourceID     uint
	DueDate      *time.Time
	ActorID      uint
	CallerSiteID *uint
}

type InvoiceService interface {
	// Generate builds the invoice inside the caller's transaction. The
	// site-row lock taken by the sequence allocator and the unique
	// constraints on order_id/rental_id both live inside tx, so at most
	// one invoice can ever exist per source.
	Generate(tx *gorm.DB, input GenerateInvoiceInput) (*models.Invoice, error)
	// GenerateForSource wraps Generate in its own transaction.
	GenerateForSource(input GenerateInvoiceInput) (*models.Invoice, error)
	// MarkPaid credits paymentAmount against the invoice inside tx.
	MarkPaid(tx *gorm.DB, invoiceID uint, paymentAmount decimal.Decimal, actorID uint, callerSiteID *uint) (*models.Invoice, error)
	Void(invoiceID uint, reason string, actorID uint, callerSiteID *uint) (*models.Invoice, error)
	GetByID(id uint, callerSiteID *uint) (*models.Invoice, error)
	GetBySite(siteID uint) ([]models.Invoice, error)
}

type invoiceService struct {
	db          TxRunner
	invoiceRepo repository.InvoiceRepository
	orderRepo   repository.OrderRepository
	rentalRepo  repository.RentalRepository
	assetRepo   repository.AssetRepository
	allocator   SequenceAllocator
	audit       AuditRecorder
	taxRate     decimal.Decimal
	dueDays     int
}

func NewInvoiceService(
	db TxRunner,
	invoiceRepo repository.InvoiceRepository,
	orderRepo repository.OrderRepository,
	rentalRepo repository.RentalRepository,
	assetRepo repository.AssetRepository,
	allocator SequenceAllocator,
	audit AuditRecorder,
	taxRate decimal.Decimal,
	dueDays int,
) InvoiceService {
	return &invoiceService{
		db:          db,
		invoiceRepo: invoiceRepo,
		orderRepo:   orderRepo,
		rentalRepo:  rentalRepo,
		assetRepo:   assetRepo,
		allocator:   allocator,
		audit:       audit,
		taxRate:     taxRate,
		dueDays:     dueDays,
	}
}

func (s *invoiceService) Generate(tx *gorm.DB, input GenerateInvoiceInput) (*models.Invoice, error) {
	switch input.SourceType {
	case models.InvoiceSourceOrder:
		return s.generateForOrder(tx, input)
	case models.InvoiceSourceRental:
		return s.generateForRental(tx, input)
	default:
		return nil, apperrors.BadRequest("unknown invoice source type %q", input.SourceType)
	}
}

func (s *invoiceService) GenerateForSource(input GenerateInvoiceInput) (*models.Invoice, error) {
	var invoice *models.Invoice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		invoice, txErr = s.Generate(tx, input)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(input.ActorID, "invoice.generate", "Invoice", invoice.ID, invoice.InvoiceNumber)
	return invoice, nil
}

func (s *invoiceService) generateForOrder(tx *gorm.DB, input GenerateInvoiceInput) (*models.Invoice, error) {
	if _, err := s.invoiceRepo.GetByOrderID(tx, input.SourceID); err == nil {
		return nil, apperrors.AlreadyExists("invoice already exists for order %d", input.SourceID)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	order, err := s.orderRepo.GetByIDAnySite(tx, input.SourceID)
	if err != nil {
		return nil, notFoundOr(err, "order %d not found", input.SourceID)
	}
	if input.CallerSiteID != nil && order.SiteID != *input.CallerSiteID {
		return nil, apperrors.NotFound("order %d not found", input.SourceID)
	}
	if order.Status != models.OrderApproved {
		return nil, apperrors.BadRequest("order %d is %s, only approved orders can be invoiced", order.ID, order.Status)
	}
	if len(order.Items) == 0 {
		return nil, apperrors.BadRequest("order %d has no items", order.ID)
	}

	items := make([]models.InvoiceItem, 0, len(order.Items))
	for _, line := range order.Items {
		items = append(items, models.InvoiceItem{
			Description: line.ProductName,
			QuantityKg:  line.QuantityKg,
			UnitPrice:   line.UnitPrice,
			Amount:      line.Subtotal,
		})
	}

	orderID := order.ID
	return s.issue(tx, &models.Invoice{
		OrderID:  &orderID,
		ClientID: order.ClientID,
		SiteID:   order.SiteID,
		Subtotal: order.TotalAmount,
		Items:    items,
	}, input)
}

func (s *invoiceService) generateForRental(tx *gorm.DB, input GenerateInvoiceInput) (*models.Invoice, error) {
	if _, err := s.invoiceRepo.GetByRentalID(tx, input.SourceID); err == nil {
		return nil, apperrors.AlreadyExists("invoice already exists for rental %d", input.SourceID)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	rental, err := s.rentalRepo.GetByIDAnySite(tx, input.SourceID)
	if err != nil {
		return nil, notFoundOr(err, "rental %d not found", input.SourceID)
	}
	if input.CallerSiteID != nil && rental.SiteID != *input.CallerSiteID {
		return nil, apperrors.NotFound("rental %d not found", input.SourceID)
	}
	if rental.Status != models.RentalApproved && rental.Status != models.RentalActive {
		return nil, apperrors.BadRequest("rental %d is %s, only approved or active rentals can be invoiced", rental.ID, rental.Status)
	}
	if !rental.RentalEndDate.After(rental.RentalStartDate) {
		return nil, apperrors.BadRequest("rental %d has an invalid date range", rental.ID)
	}

	asset, err := s.assetRepo.Get(tx, rental.AssetType, rental.AssetID())
	if err != nil {
		return nil, notFoundOr(err, "asset for rental %d not found", rental.ID)
	}

	description := fmt.Sprintf("%s from %s to %s",
		assetDescription(asset),
		rental.RentalStartDate.Format("2006-01-02"),
		rental.RentalEndDate.Format("2006-01-02"))

	rentalID := rental.ID
	return s.issue(tx, &models.Invoice{
		RentalID: &rentalID,
		ClientID: rental.ClientID,
		SiteID:   rental.SiteID,
		Subtotal: rental.EstimatedFee,
		Items: []models.InvoiceItem{{
			Description: description,
			Amount:      rental.EstimatedFee,
		}},
	}, input)
}

// issue fills the computed fields shared by both source types and
// persists the invoice. The allocator call locks the site row; it must
// stay inside the same transaction as the insert.
func (s *invoiceService) issue(tx *gorm.DB, invoice *models.Invoice, input GenerateInvoiceInput) (*models.Invoice, error) {
	number, err := s.allocator.NextInvoiceNumber(tx, invoice.SiteID)
	if err != nil {
		return nil, err
	}

	invoice.InvoiceNumber = number
	invoice.TaxAmount = invoice.Subtotal.Mul(s.taxRate).Round(2)
	invoice.TotalAmount = invoice.Subtotal.Add(invoice.TaxAmount)
	invoice.PaidAmount = decimal.Zero
	invoice.Status = models.InvoiceUnpaid
	invoice.CreatedBy = input.ActorID
	if input.DueDate != nil {
		invoice.DueDate = *input.DueDate
	} else {
		invoice.DueDate = time.Now().AddDate(0, 0, s.dueDays)
	}

	if err := s.invoiceRepo.Create(tx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func assetDescription(asset models.RentableAsset) string {
	switch a := asset.(type) {
	case *models.ColdBox:
		return fmt.Sprintf("Cold box %s rental", a.SerialNumber)
	case *models.ColdPlate:
		return fmt.Sprintf("Cold plate %s rental", a.SerialNumber)
	case *models.Tricycle:
		return fmt.Sprintf("Tricycle %s rental", a.PlateNumber)
	case *models.ColdRoom:
		return fmt.Sprintf("Cold room %s rental", a.Name)
	default:
		return "Asset rental"
	}
}

func (s *invoiceService) MarkPaid(tx *gorm.DB, invoiceID uint, paymentAmount decimal.Decimal, actorID uint, callerSiteID *uint) (*models.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByIDForUpdate(tx, invoiceID)
	if err != nil {
		return nil, notFoundOr(err, "invoice %d not found", invoiceID)
	}
	if callerSiteID != nil && invoice.SiteID != *callerSiteID {
		return nil, apperrors.NotFound("invoice %d not found", invoiceID)
	}
	if invoice.Status == models.InvoiceVoid {
		return nil, apperrors.BadRequest("invoice %s is void", invoice.InvoiceNumber)
	}
	if !paymentAmount.IsPositive() {
		return nil, apperrors.BadRequest("payment amount must be positive")
	}

	newPaid := invoice.PaidAmount.Add(paymentAmount)
	if newPaid.GreaterThan(invoice.TotalAmount) {
		return nil, apperrors.BadRequest("payment of %s exceeds amount due %s on invoice %s",
			paymentAmount, invoice.TotalAmount.Sub(invoice.PaidAmount), invoice.InvoiceNumber)
	}

	invoice.PaidAmount = newPaid
	if newPaid.GreaterThanOrEqual(invoice.TotalAmount) {
		invoice.Status = models.InvoicePaid
	}
	if err := s.invoiceRepo.Save(tx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *invoiceService) Void(invoiceID uint, reason string, actorID uint, callerSiteID *uint) (*models.Invoice, error) {
	var invoice *models.Invoice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		invoice, txErr = s.invoiceRepo.GetByIDForUpdate(tx, invoiceID)
		if txErr != nil {
			return notFoundOr(txErr, "invoice %d not found", invoiceID)
		}
		if callerSiteID != nil && invoice.SiteID != *callerSiteID {
			return apperrors.NotFound("invoice %d not found", invoiceID)
		}
		switch invoice.Status {
		case models.InvoicePaid:
			return apperrors.BadRequest("invoice %s is paid; refund instead of voiding", invoice.InvoiceNumber)
		case models.InvoiceVoid:
			return apperrors.Conflict("invoice %s is already void", invoice.InvoiceNumber)
		}
		invoice.Status = models.InvoiceVoid
		invoice.VoidReason = reason
		return s.invoiceRepo.Save(tx, invoice)
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(actorID, "invoice.void", "Invoice", invoice.ID, reason)
	return invoice, nil
}

func (s *invoiceService) GetByID(id uint, callerSiteID *uint) (*models.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, notFoundOr(err, "invoice %d not found", id)
	}
	if callerSiteID != nil && invoice.SiteID != *callerSiteID {
		return nil, apperrors.NotFound("invoice %d not found", id)
	}
	return invoice, nil
}

func (s *invoiceService) GetBySite(siteID uint) ([]models.Invoice, error) {
	return s.invoiceRepo.GetBySite(siteID)
}
