package main

import (
	"log"
	"time"

	"coldchain/internal/config"
	"coldchain/internal/database"
	"coldchain/internal/handlers"
	"coldchain/internal/migrations"
	"coldchain/internal/redis"
	"coldchain/internal/repository"
	"coldchain/internal/services"
	"coldchain/pkg/momo"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger := config.GetLogger()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Seed default site and super admin
	if err := migrations.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	// Initialize mobile money gateway client
	momoClient := momo.NewClient(cfg.MomoAPIURL, cfg.MomoAPIKey, cfg.MomoTargetEnv, redisClient)

	// Initialize repositories
	siteRepo := repository.NewSiteRepository(db)
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	coldRoomRepo := repository.NewColdRoomRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	assetRepo := repository.NewAssetRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	rentalRepo := repository.NewRentalRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// Initialize services
	audit := services.NewAuditRecorder(auditRepo, logger)
	userService := services.NewUserService(userRepo)
	ledger := services.NewStockLedger(db, productRepo, coldRoomRepo, movementRepo, audit)
	tracker := services.NewAssetTracker(assetRepo)
	allocator := services.NewSequenceAllocator(siteRepo, invoiceRepo)
	invoiceService := services.NewInvoiceService(db, invoiceRepo, orderRepo, rentalRepo, assetRepo, allocator, audit, cfg.TaxRate, cfg.InvoiceDueDays)
	orderService := services.NewOrderService(db, orderRepo, productRepo, ledger, invoiceService, audit)
	rentalService := services.NewRentalService(db, rentalRepo, invoiceRepo, tracker, invoiceService, audit)
	paymentService := services.NewPaymentService(db, paymentRepo, invoiceRepo, invoiceService, momoClient, redisClient, audit, logger, time.Duration(cfg.WebhookDedupeTTL)*time.Second)
	productService := services.NewProductService(productRepo, coldRoomRepo, audit)
	siteService := services.NewSiteService(siteRepo, coldRoomRepo, assetRepo, audit)

	// Initialize handlers
	adminHandler := handlers.NewAdminHandler(siteService, userService)
	stockHandler := handlers.NewStockHandler(productService, ledger)
	orderHandler := handlers.NewOrderHandler(orderService)
	rentalHandler := handlers.NewRentalHandler(rentalService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, cfg.PaymentWebhookSecret)

	// Setup routes
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Payment gateway webhook
	router.POST("/api/payments/webhook", paymentHandler.HandleWebhook)

	api := router.Group("/api")
	{
		api.POST("/login", adminHandler.Login)
		api.POST("/users", adminHandler.CreateUser)
		api.GET("/users", adminHandler.ListUsers)

		api.POST("/sites", adminHandler.CreateSite)
		api.GET("/sites", adminHandler.ListSites)
		api.GET("/sites/:site_id", adminHandler.GetSite)

		site := api.Group("/sites/:site_id")
		{
			site.POST("/cold-rooms", adminHandler.CreateColdRoom)
			site.GET("/cold-rooms", adminHandler.ListColdRooms)
			site.POST("/assets", adminHandler.RegisterAsset)

			site.POST("/products", stockHandler.CreateProduct)
			site.GET("/products", stockHandler.ListProducts)
			site.GET("/products/:product_id", stockHandler.GetProduct)
			site.DELETE("/products/:product_id", stockHandler.DeleteProduct)
			site.POST("/products/:product_id/movements", stockHandler.RecordMovement)
			site.GET("/products/:product_id/movements", stockHandler.ListMovements)
			site.POST("/movements/:movement_id/revert", stockHandler.RevertMovement)

			site.POST("/orders", orderHandler.CreateOrder)
			site.GET("/orders", orderHandler.ListOrders)
			site.GET("/orders/:order_id", orderHandler.GetOrder)
			site.POST("/orders/:order_id/approve", orderHandler.ApproveOrder)
			site.POST("/orders/:order_id/reject", orderHandler.RejectOrder)
			site.POST("/orders/:order_id/mark-invoiced", orderHandler.MarkInvoiced)
			site.POST("/orders/:order_id/complete", orderHandler.CompleteOrder)
			site.DELETE("/orders/:order_id", orderHandler.DeleteOrder)

			site.POST("/rentals", rentalHandler.CreateRental)
			site.GET("/rentals", rentalHandler.ListRentals)
			site.GET("/rentals/:rental_id", rentalHandler.GetRental)
			site.POST("/rentals/:rental_id/approve", rentalHandler.ApproveRental)
			site.POST("/rentals/:rental_id/activate", rentalHandler.ActivateRental)
			site.POST("/rentals/:rental_id/complete", rentalHandler.CompleteRental)

			site.POST("/invoices", invoiceHandler.GenerateInvoice)
			site.GET("/invoices", invoiceHandler.ListInvoices)
			site.GET("/invoices/:invoice_id", invoiceHandler.GetInvoice)
			site.POST("/invoices/:invoice_id/void", invoiceHandler.VoidInvoice)
			site.GET("/invoices/:invoice_id/payments", paymentHandler.ListPayments)

			site.POST("/payments", paymentHandler.InitiatePayment)
			site.POST("/payments/:payment_id/mark-paid", paymentHandler.MarkPaidManually)
		}
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
