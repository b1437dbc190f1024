package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
	"github.com/mohammadpnp/customer-import/internal/infrastructure/db/models"
)

type OperationLogRepository struct {
	db *gorm.DB
}

func NewOperationLogRepository(db *gorm.DB) *OperationLogRepository {
	return &OperationLogRepository{db: db}
}

func (r *OperationLogRepository) Record(ctx context.Context, entry domain.OperationLog) error {
	row := models.OperationLog{
		Username:     entry.Username,
		Operation:    entry.Operation,
		Target:       entry.Target,
		Description:  entry.Description,
		Status:       entry.Status,
		ClientIP:     nullableText(entry.ClientIP),
		UploadTaskID: nullableText(entry.TaskID),
		ErrorMessage: nullableText(entry.ErrorMessage),
	}
	if row.Username == "" {
		row.Username = "system"
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create operation log: %w", err)
	}
	return nil
}

// List returns the newest entries first.
func (r *OperationLogRepository) List(ctx context.Context, filter domain.OperationLogFilter) (domain.OperationLogPage, error) {
	query := r.db.WithContext(ctx).Model(&models.OperationLog{})

	if filter.Username != "" {
		query = query.Where("username ILIKE ?", "%"+escapeLike(filter.Username)+"%")
	}
	for column, value := range map[string]string{
		"operation": filter.Operation,
		"target":    filter.Target,
		"status":    filter.Status,
	} {
		if value != "" {
			query = query.Where(column+" = ?", value)
		}
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return domain.OperationLogPage{}, fmt.Errorf("count operation logs: %w", err)
	}

	var rows []models.OperationLog
	err := query.
		Order("created_at DESC, id DESC").
		Offset((filter.Page - 1) * filter.Size).
		Limit(filter.Size).
		Find(&rows).Error
	if err != nil {
		return domain.OperationLogPage{}, fmt.Errorf("list operation logs: %w", err)
	}

	items := make([]domain.OperationLog, 0, len(rows))
	for _, row := range rows {
		items = append(items, domain.OperationLog{
			ID:           row.ID,
			Username:     row.Username,
			Operation:    row.Operation,
			Target:       row.Target,
			Description:  row.Description,
			Status:       row.Status,
			ClientIP:     textValue(row.ClientIP),
			TaskID:       textValue(row.UploadTaskID),
			ErrorMessage: textValue(row.ErrorMessage),
			CreatedAt:    row.CreatedAt,
		})
	}
	return domain.OperationLogPage{Items: items, Total: total, Page: filter.Page, Size: filter.Size}, nil
}
