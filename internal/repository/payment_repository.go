package repository

import (
	"coldchain/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository interface {
	Create(payment *models.Payment) error
	GetByID(id uint) (*models.Payment, error)
	// GetByIDForUpdate re-reads the payment under a row lock so the
	// idempotency check inside the reconcile transaction is authoritative.
	GetByIDForUpdate(tx *gorm.DB, id uint) (*models.Payment, error)
	GetByTransactionRef(ref string) (*models.Payment, error)
	GetByInvoice(invoiceID uint) ([]models.Payment, error)
	Save(tx *gorm.DB, payment *models.Payment) error
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

func (r *paymentRepository) GetByID(id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) GetByIDForUpdate(tx *gorm.DB, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) GetByTransactionRef(ref string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Where("gateway_transaction_ref = ?", ref).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) GetByInvoice(invoiceID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Where("invoice_id = ?", invoiceID).Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) Save(tx *gorm.DB, payment *models.Payment) error {
	return tx.Save(payment).Error
}
