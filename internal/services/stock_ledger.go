package services

import (
	"fmt"

	"coldchain/internal/apperrors"
	"coldchain/internal/config"
	"coldchain/internal/models"
	"coldchain/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type MovementInput struct {
	ProductID    uint
	ColdRoomID   uint
	QuantityKg   decimal.Decimal
	Direction    models.MovementDirection
	Reason       string
	ActorID      uint
	ReversalOfID *uint
}

// StockLedger is the only writer of Product.QuantityOnHandKg and
// ColdRoom.UsedCapacityKg. Every mutation locks the product row first,
// then the cold room row, so concurrent reservations serialize and the
// cached balances never drift from the movement log.
type StockLedger interface {
	// RecordMovement appends a movement inside the caller's transaction.
	RecordMovement(tx *gorm.DB, input MovementInput) (*models.StockMovement, error)
	// Record opens its own transaction around RecordMovement.
	Record(input MovementInput) (*models.StockMovement, error)
	// RevertMovement appends a compensating movement referencing the
	// original. The original row is never touched.
	RevertMovement(movementID, actorID uint) (*models.StockMovement, error)
	GetProductMovements(productID uint) ([]models.StockMovement, error)
}

type stockLedger struct {
	db           TxRunner
	productRepo  repository.ProductRepository
	coldRoomRepo repository.ColdRoomRepository
	movementRepo repository.StockMovementRepository
	audit        AuditRecorder
}

func NewStockLedger(
	db TxRunner,
	productRepo repository.ProductRepository,
	coldRoomRepo repository.ColdRoomRepository,
	movementRepo repository.StockMovementRepository,
	audit AuditRecorder,
) StockLedger {
	return &stockLedger{
		db:           db,
		productRepo:  productRepo,
		coldRoomRepo: coldRoomRepo,
		movementRepo: movementRepo,
		audit:        audit,
	}
}

func (s *stockLedger) RecordMovement(tx *gorm.DB, input MovementInput) (*models.StockMovement, error) {
	if !input.QuantityKg.IsPositive() {
		return nil, apperrors.BadRequest("movement quantity must be positive")
	}
	if input.Direction != models.MovementIn && input.Direction != models.MovementOut {
		return nil, apperrors.BadRequest("unknown movement direction %q", input.Direction)
	}

	product, err := s.productRepo.GetByIDForUpdate(tx, input.ProductID)
	if err != nil {
		return nil, notFoundOr(err, "product %d not found", input.ProductID)
	}
	if input.ColdRoomID != 0 && input.ColdRoomID != product.ColdRoomID {
		return nil, apperrors.BadRequest("product %d is not stored in cold room %d", input.ProductID, input.ColdRoomID)
	}

	// Lock order is always product then cold room.
	room, err := s.coldRoomRepo.GetByIDForUpdate(tx, product.ColdRoomID)
	if err != nil {
		return nil, notFoundOr(err, "cold room %d not found", product.ColdRoomID)
	}

	delta := input.QuantityKg
	if input.Direction == models.MovementOut {
		delta = delta.Neg()
	}

	newQty := product.QuantityOnHandKg.Add(delta)
	if newQty.IsNegative() {
		return nil, apperrors.InsufficientStock(
			"product %d has %s kg on hand, cannot remove %s kg",
			product.ID, product.QuantityOnHandKg, input.QuantityKg)
	}

	newUsed := room.UsedCapacityKg.Add(delta)
	if input.Direction == models.MovementIn && newUsed.GreaterThan(room.TotalCapacityKg) {
		return nil, apperrors.CapacityExceeded(
			"cold room %d capacity %s kg would be exceeded by %s kg",
			room.ID, room.TotalCapacityKg, newUsed.Sub(room.TotalCapacityKg))
	}
	if newUsed.IsNegative() {
		// The movement log and the cached room balance disagree; clamp
		// so the outflow still goes through, but make the drift visible.
		config.GetLogger().WithFields(logrus.Fields{
			"module":   "stock_ledger.go",
			"coldRoom": room.ID,
			"used":     room.UsedCapacityKg,
			"delta":    delta,
		}).Warn("cold room used capacity drifted below zero, clamping")
		newUsed = decimal.Zero
	}

	product.QuantityOnHandKg = newQty
	if newQty.IsZero() {
		product.Status = models.ProductOutOfStock
	} else {
		product.Status = models.ProductInStock
	}
	room.UsedCapacityKg = newUsed

	if err := s.productRepo.Save(tx, product); err != nil {
		return nil, err
	}
	if err := s.coldRoomRepo.Save(tx, room); err != nil {
		return nil, err
	}

	movement := &models.StockMovement{
		ProductID:    product.ID,
		ColdRoomID:   room.ID,
		QuantityKg:   input.QuantityKg,
		Direction:    input.Direction,
		Reason:       input.Reason,
		ReversalOfID: input.ReversalOfID,
		ActorID:      input.ActorID,
	}
	if err := s.movementRepo.Create(tx, movement); err != nil {
		return nil, err
	}
	return movement, nil
}

func (s *stockLedger) Record(input MovementInput) (*models.StockMovement, error) {
	var movement *models.StockMovement
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		movement, txErr = s.RecordMovement(tx, input)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(input.ActorID, "stock."+string(input.Direction), "StockMovement", movement.ID,
		fmt.Sprintf("product=%d quantity=%s reason=%s", movement.ProductID, movement.QuantityKg, movement.Reason))
	return movement, nil
}

func (s *stockLedger) RevertMovement(movementID, actorID uint) (*models.StockMovement, error) {
	original, err := s.movementRepo.GetByID(movementID)
	if err != nil {
		return nil, notFoundOr(err, "stock movement %d not found", movementID)
	}

	inverse := models.MovementIn
	if original.Direction == models.MovementIn {
		inverse = models.MovementOut
	}

	input := MovementInput{
		ProductID:    original.ProductID,
		ColdRoomID:   original.ColdRoomID,
		QuantityKg:   original.QuantityKg,
		Direction:    inverse,
		Reason:       fmt.Sprintf("reversal of movement #%d", original.ID),
		ActorID:      actorID,
		ReversalOfID: &original.ID,
	}

	var movement *models.StockMovement
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		movement, txErr = s.RecordMovement(tx, input)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(actorID, "stock.revert", "StockMovement", movement.ID,
		fmt.Sprintf("reverted movement #%d", original.ID))
	return movement, nil
}

func (s *stockLedger) GetProductMovements(productID uint) ([]models.StockMovement, error) {
	return s.movementRepo.GetByProduct(productID)
}
