package services

import (
	"fmt"
	"time"

	"coldchain/internal/apperrors"
	"coldchain/internal/models"
	"coldchain/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateRentalInput struct {
	ClientID        uint             `json:"client_id" binding:"required"`
	SiteID          uint             `json:"site_id"`
	AssetType       models.AssetType `json:"asset_type" binding:"required"`
	ColdBoxID       *uint            `json:"cold_box_id"`
	ColdPlateID     *uint            `json:"cold_plate_id"`
	TricycleID      *uint            `json:"tricycle_id"`
	ColdRoomID      *uint            `json:"cold_room_id"`
	RentalStartDate time.Time        `json:"rental_start_date" binding:"required"`
	RentalEndDate   time.Time        `json:"rental_end_date" binding:"required"`
	EstimatedFee    decimal.Decimal  `json:"estimated_fee" binding:"required"`
	ActorID         uint             `json:"actor_id"`
}

type ApproveRentalResult struct {
	Rental  *models.Rental  `json:"rental"`
	Invoice *models.Invoice `json:"invoice"`
}

// RentalService drives REQUESTED -> APPROVED -> ACTIVE -> COMPLETED.
// Approval and activation are gated by conditional updates whose
// affected-row count decides a concurrent race; a loser fails fast
// instead of blocking.
type RentalService interface {
	Create(input CreateRentalInput) (*models.Rental, error)
	Approve(rentalID, siteID, actorID uint) (*ApproveRentalResult, error)
	// Activate requires the rental's invoice to be PAID and the asset to
	// still be AVAILABLE; on success the asset becomes RENTED in the
	// same transaction.
	Activate(rentalID, siteID, actorID uint) (*models.Rental, error)
	Complete(rentalID, siteID, actorID uint) (*models.Rental, error)
	GetByID(siteID, id uint) (*models.Rental, error)
	GetBySite(siteID uint) ([]models.Rental, error)
}

type rentalService struct {
	db          TxRunner
	rentalRepo  repository.RentalRepository
	invoiceRepo repository.InvoiceRepository
	tracker     AssetTracker
	invoices    InvoiceService
	audit       AuditRecorder
}

func NewRentalService(
	db TxRunner,
	rentalRepo repository.RentalRepository,
	invoiceRepo repository.InvoiceRepository,
	tracker AssetTracker,
	invoices InvoiceService,
	audit AuditRecorder,
) RentalService {
	return &rentalService{
		db:          db,
		rentalRepo:  rentalRepo,
		invoiceRepo: invoiceRepo,
		tracker:     tracker,
		invoices:    invoices,
		audit:       audit,
	}
}

func (s *rentalService) Create(input CreateRentalInput) (*models.Rental, error) {
	rental := &models.Rental{
		ClientID:        input.ClientID,
		SiteID:          input.SiteID,
		AssetType:       input.AssetType,
		ColdBoxID:       input.ColdBoxID,
		ColdPlateID:     input.ColdPlateID,
		TricycleID:      input.TricycleID,
		ColdRoomID:      input.ColdRoomID,
		RentalStartDate: input.RentalStartDate,
		RentalEndDate:   input.RentalEndDate,
		EstimatedFee:    input.EstimatedFee,
		Status:          models.RentalRequested,
	}

	if rental.ReferenceCount() != 1 || rental.AssetID() == 0 {
		return nil, apperrors.BadRequest("exactly one asset reference matching asset type %q must be set", input.AssetType)
	}
	if !rental.RentalEndDate.After(rental.RentalStartDate) {
		return nil, apperrors.BadRequest("rental end date must be after start date")
	}
	if rental.EstimatedFee.LessThan(decimal.Zero) {
		return nil, apperrors.BadRequest("estimated fee cannot be negative")
	}

	available, err := s.tracker.CheckAvailability(nil, rental.AssetType, rental.AssetID(), rental.SiteID)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, apperrors.BadRequest("%s %d is not available", rental.AssetType, rental.AssetID())
	}

	if err := s.rentalRepo.Create(rental); err != nil {
		return nil, err
	}
	s.audit.Record(input.ActorID, "rental.create", "Rental", rental.ID,
		fmt.Sprintf("asset=%s#%d client=%d", rental.AssetType, rental.AssetID(), rental.ClientID))
	return rental, nil
}

func (s *rentalService) Approve(rentalID, siteID, actorID uint) (*ApproveRentalResult, error) {
	var rental *models.Rental
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		rental, txErr = s.rentalRepo.GetByIDTx(tx, siteID, rentalID)
		if txErr != nil {
			return notFoundOr(txErr, "rental %d not found", rentalID)
		}
		if rental.Status != models.RentalRequested {
			return apperrors.InvalidTransition("rental %d cannot move from %s to %s", rental.ID, rental.Status, models.RentalApproved)
		}

		available, txErr := s.tracker.CheckAvailability(tx, rental.AssetType, rental.AssetID(), rental.SiteID)
		if txErr != nil {
			return txErr
		}
		if !available {
			return apperrors.Conflict("%s %d is no longer available", rental.AssetType, rental.AssetID())
		}

		now := time.Now()
		rows, txErr := s.rentalRepo.UpdateStatusIf(tx, rental.ID, models.RentalRequested, models.RentalApproved,
			map[string]interface{}{"approved_by": actorID, "approved_at": now})
		if txErr != nil {
			return txErr
		}
		if rows == 0 {
			return apperrors.ConcurrentModification("rental %d was already processed", rental.ID)
		}
		rental.Status = models.RentalApproved
		rental.ApprovedBy = &actorID
		rental.ApprovedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	invoice, err := s.invoices.GenerateForSource(GenerateInvoiceInput{
		SourceType: models.InvoiceSourceRental,
		SourceID:   rental.ID,
		ActorID:    actorID,
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(actorID, "rental.approve", "Rental", rental.ID, invoice.InvoiceNumber)
	return &ApproveRentalResult{Rental: rental, Invoice: invoice}, nil
}

func (s *rentalService) Activate(rentalID, siteID, actorID uint) (*models.Rental, error) {
	var rental *models.Rental
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		rental, txErr = s.rentalRepo.GetByIDTx(tx, siteID, rentalID)
		if txErr != nil {
			return notFoundOr(txErr, "rental %d not found", rentalID)
		}
		if rental.Status != models.RentalApproved {
			return apperrors.InvalidTransition("rental %d cannot move from %s to %s", rental.ID, rental.Status, models.RentalActive)
		}

		invoice, txErr := s.invoiceRepo.GetByRentalID(tx, rental.ID)
		if txErr != nil {
			return notFoundOr(txErr, "rental %d has no invoice", rental.ID)
		}
		if invoice.Status != models.InvoicePaid {
			return apperrors.BadRequest("invoice %s must be paid before activation", invoice.InvoiceNumber)
		}

		available, txErr := s.tracker.CheckAvailability(tx, rental.AssetType, rental.AssetID(), rental.SiteID)
		if txErr != nil {
			return txErr
		}
		if !available {
			return apperrors.Conflict("%s %d is no longer available", rental.AssetType, rental.AssetID())
		}

		now := time.Now()
		rows, txErr := s.rentalRepo.UpdateStatusIf(tx, rental.ID, models.RentalApproved, models.RentalActive,
			map[string]interface{}{"activated_at": now})
		if txErr != nil {
			return txErr
		}
		if rows == 0 {
			return apperrors.ConcurrentModification("rental %d was already processed", rental.ID)
		}
		rental.Status = models.RentalActive
		rental.ActivatedAt = &now
		return s.tracker.MarkRented(tx, rental.AssetType, rental.AssetID())
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(actorID, "rental.activate", "Rental", rental.ID,
		fmt.Sprintf("asset=%s#%d", rental.AssetType, rental.AssetID()))
	return rental, nil
}

func (s *rentalService) Complete(rentalID, siteID, actorID uint) (*models.Rental, error) {
	var rental *models.Rental
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		rental, txErr = s.rentalRepo.GetByIDTx(tx, siteID, rentalID)
		if txErr != nil {
			return notFoundOr(txErr, "rental %d not found", rentalID)
		}
		if rental.Status != models.RentalActive {
			return apperrors.InvalidTransition("rental %d cannot move from %s to %s", rental.ID, rental.Status, models.RentalCompleted)
		}

		now := time.Now()
		rows, txErr := s.rentalRepo.UpdateStatusIf(tx, rental.ID, models.RentalActive, models.RentalCompleted,
			map[string]interface{}{"completed_at": now})
		if txErr != nil {
			return txErr
		}
		if rows == 0 {
			return apperrors.ConcurrentModification("rental %d was already processed", rental.ID)
		}
		rental.Status = models.RentalCompleted
		rental.CompletedAt = &now
		return s.tracker.MarkAvailable(tx, rental.AssetType, rental.AssetID())
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(actorID, "rental.complete", "Rental", rental.ID,
		fmt.Sprintf("asset=%s#%d", rental.AssetType, rental.AssetID()))
	return rental, nil
}

func (s *rentalService) GetByID(siteID, id uint) (*models.Rental, error) {
	rental, err := s.rentalRepo.GetByID(siteID, id)
	if err != nil {
		return nil, notFoundOr(err, "rental %d not found", id)
	}
	return rental, nil
}

func (s *rentalService) GetBySite(siteID uint) ([]models.Rental, error) {
	return s.rentalRepo.GetBySite(siteID)
}
