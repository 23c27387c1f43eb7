package database

import (
	"fmt"

	"coldchain/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Initialize(databaseURL string) (*gorm.DB, error) {
	// Configure GORM
	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(databaseURL), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto migrate all models
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Site{},
		&models.User{},
		&models.ColdRoom{},
		&models.ColdBox{},
		&models.ColdPlate{},
		&models.Tricycle{},
		&models.Product{},
		&models.StockMovement{},
		&models.Order{},
		&models.OrderItem{},
		&models.Rental{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.Payment{},
		&models.AuditEvent{},
	)
}
