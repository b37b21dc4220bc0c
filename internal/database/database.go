package database

import (
	"fmt"
	"log"

	"marketplace-escrow/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect establishes a connection to the PostgreSQL database
func Connect(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Error),
		DisableForeignKeyConstraintWhenMigrating: true,
	})

	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established successfully")
	return nil
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate() error {
	// Core account models
	coreModels := []interface{}{
		&models.User{},
		&models.MarketplaceConfig{},
		&models.Listing{},
		&models.Escrow{},
		&models.EscrowDeposit{},
		&models.WithdrawalCredit{},
	}

	for _, model := range coreModels {
		if err := DB.AutoMigrate(model); err != nil {
			log.Printf("Warning: migration issue for %T: %v", model, err)
		}
	}

	// Settlement models
	settlementModels := []interface{}{
		&models.SaleTransaction{},
		&models.ChecklistItem{},
		&models.Dispute{},
	}

	for _, model := range settlementModels {
		if err := DB.AutoMigrate(model); err != nil {
			log.Printf("Warning: migration issue for %T: %v", model, err)
		}
	}

	// Event feed
	if err := DB.AutoMigrate(&models.MarketplaceEvent{}); err != nil {
		log.Printf("Warning: migration issue for %T: %v", &models.MarketplaceEvent{}, err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
