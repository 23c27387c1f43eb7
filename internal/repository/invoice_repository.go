package repository

import (
	"errors"

	"coldchain/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvoiceRepository interface {
	// Create persists the invoice with its line snapshot inside tx.
	Create(tx *gorm.DB, invoice *models.Invoice) error
	GetByID(id uint) (*models.Invoice, error)
	GetByIDForUpdate(tx *gorm.DB, id uint) (*models.Invoice, error)
	GetByOrderID(tx *gorm.DB, orderID uint) (*models.Invoice, error)
	GetByRentalID(tx *gorm.DB, rentalID uint) (*models.Invoice, error)
	GetBySite(siteID uint) ([]models.Invoice, error)
	Save(tx *gorm.DB, invoice *models.Invoice) error
	// MaxNumberWithPrefix returns the highest invoice number starting
	// with prefix, or "" when none exists. Zero-padded sequences make
	// lexical and numeric order agree.
	MaxNumberWithPrefix(tx *gorm.DB, prefix string) (string, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *invoiceRepository) Create(tx *gorm.DB, invoice *models.Invoice) error {
	return tx.Create(invoice).Error
}

func (r *invoiceRepository) GetByID(id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.Preload("Items").First(&invoice, id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) GetByIDForUpdate(tx *gorm.DB, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := tx.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "invoices"}}).
		Preload("Items").
		First(&invoice, id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) getByRef(tx *gorm.DB, column string, refID uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.handle(tx).Preload("Items").Where(column+" = ?", refID).First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) GetByOrderID(tx *gorm.DB, orderID uint) (*models.Invoice, error) {
	return r.getByRef(tx, "order_id", orderID)
}

func (r *invoiceRepository) GetByRentalID(tx *gorm.DB, rentalID uint) (*models.Invoice, error) {
	return r.getByRef(tx, "rental_id", rentalID)
}

func (r *invoiceRepository) GetBySite(siteID uint) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.Preload("Items").Where("site_id = ?", siteID).Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) Save(tx *gorm.DB, invoice *models.Invoice) error {
	return tx.Omit("Items").Save(invoice).Error
}

func (r *invoiceRepository) MaxNumberWithPrefix(tx *gorm.DB, prefix string) (string, error) {
	var invoice models.Invoice
	err := r.handle(tx).
		Where("invoice_number LIKE ?", prefix+"%").
		Order("invoice_number DESC").
		First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return invoice.InvoiceNumber, nil
}
