package main

import (
	"fmt"
	"log"

	"coldchain/internal/config"
	"coldchain/internal/database"
	"coldchain/internal/models"
	"coldchain/internal/repository"
	"coldchain/internal/services"

	"github.com/shopspring/decimal"
)

func main() {
	fmt.Println("Initializing database...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Force recreate all tables
	fmt.Println("Dropping existing tables...")
	err = db.Migrator().DropTable(
		&models.Payment{},
		&models.InvoiceItem{},
		&models.Invoice{},
		&models.Rental{},
		&models.OrderItem{},
		&models.Order{},
		&models.StockMovement{},
		&models.Product{},
		&models.ColdBox{},
		&models.ColdPlate{},
		&models.Tricycle{},
		&models.ColdRoom{},
		&models.AuditEvent{},
		&models.User{},
		&models.Site{},
	)
	if err != nil {
		log.Printf("Warning: Error dropping tables: %v", err)
	}

	// Create tables with proper schema
	fmt.Println("Creating tables...")
	err = db.AutoMigrate(
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
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Create default site
	fmt.Println("Creating default site...")
	site := &models.Site{
		Name:     "DOUALA",
		Region:   "Littoral",
		IsActive: true,
	}
	if err := db.Create(site).Error; err != nil {
		log.Printf("Warning: Failed to create default site: %v", err)
	}

	// Create default super admin user
	fmt.Println("Creating default super admin user...")
	userRepo := repository.NewUserRepository(db)
	userService := services.NewUserService(userRepo)

	existingUser, err := userService.GetUserByUsername("admin")
	if err == nil && existingUser != nil {
		fmt.Println("Super admin user already exists")
		return
	}

	superAdmin := &models.User{
		Username: "admin",
		Email:    "admin@localhost",
		Role:     string(models.SuperAdmin),
		IsActive: true,
	}

	err = userService.CreateUser(superAdmin, "admin123")
	if err != nil {
		log.Printf("Warning: Failed to create super admin user: %v", err)
	} else {
		fmt.Println("Super admin user created successfully")
		fmt.Println("Username: admin")
		fmt.Println("Password: admin123")
	}

	// Create a starter cold room so stock can be received right away
	fmt.Println("Creating default cold room...")
	coldRoomRepo := repository.NewColdRoomRepository(db)
	room := &models.ColdRoom{
		SiteID:          site.ID,
		Name:            "CHAMBRE-1",
		TotalCapacityKg: decimal.NewFromInt(5000),
		UsedCapacityKg:  decimal.Zero,
		Status:          models.AssetAvailable,
	}
	if err := coldRoomRepo.Create(room); err != nil {
		log.Printf("Warning: Failed to create default cold room: %v", err)
	}

	fmt.Println("Database initialization completed successfully!")
}
