package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mohammadpnp/customer-import/internal/infrastructure/db/models"
)

// Migrate creates or updates the tables the service owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.UploadTask{}, &models.Customer{}, &models.OperationLog{}, &models.CustomerRemark{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
