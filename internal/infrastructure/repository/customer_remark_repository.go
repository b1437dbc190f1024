package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
	"github.com/mohammadpnp/customer-import/internal/infrastructure/db/models"
)

type CustomerRemarkRepository struct {
	db *gorm.DB
}

func NewCustomerRemarkRepository(db *gorm.DB) *CustomerRemarkRepository {
	return &CustomerRemarkRepository{db: db}
}

func (r *CustomerRemarkRepository) Get(ctx context.Context, customerID int64) (domain.CustomerRemark, error) {
	var row models.CustomerRemark

	err := r.db.WithContext(ctx).First(&row, "customer_id = ?", customerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.CustomerRemark{}, domain.ErrRemarkNotFound
		}
		return domain.CustomerRemark{}, fmt.Errorf("get customer remark: %w", err)
	}

	return toDomainRemark(row), nil
}

// Save creates the remark or replaces its text; a customer has at most one.
func (r *CustomerRemarkRepository) Save(ctx context.Context, customerID int64, text string) (domain.CustomerRemark, error) {
	row := models.CustomerRemark{CustomerID: customerID, Remarks: text}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "customer_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"remarks":    text,
				"updated_at": time.Now(),
			}),
		}).
		Create(&row).Error
	if err != nil {
		return domain.CustomerRemark{}, fmt.Errorf("save customer remark: %w", err)
	}
	return r.Get(ctx, customerID)
}

// Delete is a no-op when the customer has no remark.
func (r *CustomerRemarkRepository) Delete(ctx context.Context, customerID int64) error {
	if err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).Delete(&models.CustomerRemark{}).Error; err != nil {
		return fmt.Errorf("delete customer remark: %w", err)
	}
	return nil
}

func toDomainRemark(row models.CustomerRemark) domain.CustomerRemark {
	return domain.CustomerRemark{
		CustomerID: row.CustomerID,
		Text:       row.Remarks,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}
