package migrations

import (
	"log"

	"coldchain/internal/models"
	"coldchain/internal/repository"
	"coldchain/internal/services"

	"gorm.io/gorm"
)

// RunMigrations creates the default site and super admin account. Table
// creation itself happens through AutoMigrate when the database
// connection is initialized.
func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	if err := createDefaultData(db); err != nil {
		log.Printf("Warning: Failed to create default data: %v", err)
	}

	log.Println("Database migrations completed successfully!")
	return nil
}

func createDefaultData(db *gorm.DB) error {
	log.Println("Creating default data...")

	userRepo := repository.NewUserRepository(db)
	userService := services.NewUserService(userRepo)

	existingUser, err := userService.GetUserByUsername("admin")
	if err == nil && existingUser != nil {
		log.Println("Super admin user already exists")
		return nil
	}

	var site models.Site
	err = db.Where("name = ?", "DOUALA").First(&site).Error
	if err == gorm.ErrRecordNotFound {
		site = models.Site{
			Name:     "DOUALA",
			Region:   "Littoral",
			IsActive: true,
		}
		if err := db.Create(&site).Error; err != nil {
			return err
		}
		log.Printf("Created default site: %s", site.Name)
	} else if err != nil {
		return err
	}

	admin := &models.User{
		Username: "admin",
		Email:    "admin@localhost",
		Role:     string(models.SuperAdmin),
		IsActive: true,
	}
	if err := userService.CreateUser(admin, "admin123"); err != nil {
		return err
	}
	log.Println("Created super admin user: admin")

	return nil
}
