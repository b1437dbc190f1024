package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
	"github.com/mohammadpnp/customer-import/internal/infrastructure/db/models"
)

type UploadTaskRepository struct {
	db *gorm.DB
}

func NewUploadTaskRepository(db *gorm.DB) *UploadTaskRepository {
	return &UploadTaskRepository{db: db}
}

func (r *UploadTaskRepository) Create(ctx context.Context, fileName string) (domain.ImportTask, error) {
	task := models.UploadTask{
		ID:       uuid.NewString(),
		FileName: fileName,
		Status:   string(domain.TaskStatusProcessing),
	}

	if err := r.db.WithContext(ctx).Create(&task).Error; err != nil {
		return domain.ImportTask{}, fmt.Errorf("create upload task: %w", err)
	}

	return toDomainTask(task), nil
}

func (r *UploadTaskRepository) Get(ctx context.Context, id string) (domain.ImportTask, error) {
	var row models.UploadTask
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ImportTask{}, domain.ErrTaskNotFound
		}
		return domain.ImportTask{}, fmt.Errorf("get upload task: %w", err)
	}
	return toDomainTask(row), nil
}

// List pages tasks newest first.
func (r *UploadTaskRepository) List(ctx context.Context, page, size int) (domain.TaskPage, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.UploadTask{}).Count(&total).Error; err != nil {
		return domain.TaskPage{}, fmt.Errorf("count upload tasks: %w", err)
	}

	var rows []models.UploadTask
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&rows).Error
	if err != nil {
		return domain.TaskPage{}, fmt.Errorf("list upload tasks: %w", err)
	}

	items := make([]domain.ImportTask, 0, len(rows))
	for _, row := range rows {
		items = append(items, toDomainTask(row))
	}
	return domain.TaskPage{Items: items, Total: total, Page: page, Size: size}, nil
}

// LatestProcessing returns nil when no task is PROCESSING.
func (r *UploadTaskRepository) LatestProcessing(ctx context.Context) (*domain.ImportTask, error) {
	var row models.UploadTask
	err := r.db.WithContext(ctx).
		Where("status = ?", string(domain.TaskStatusProcessing)).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest processing task: %w", err)
	}
	task := toDomainTask(row)
	return &task, nil
}

// UpdateProgress writes running counts. Terminal tasks are left untouched.
func (r *UploadTaskRepository) UpdateProgress(ctx context.Context, id string, counts domain.ImportCounts) error {
	err := r.db.WithContext(ctx).
		Model(&models.UploadTask{}).
		Where("id = ? AND status = ?", id, string(domain.TaskStatusProcessing)).
		Updates(map[string]any{
			"total_count":    counts.Total,
			"added_count":    counts.Added,
			"existing_count": counts.Existing,
			"error_count":    counts.Errors,
		}).Error
	if err != nil {
		return fmt.Errorf("update upload task progress: %w", err)
	}
	return nil
}

// Finish stores the final counts and status. completed_at is only set the
// first time.
func (r *UploadTaskRepository) Finish(ctx context.Context, id string, counts domain.ImportCounts, status domain.TaskStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.UploadTask{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"total_count":    counts.Total,
			"added_count":    counts.Added,
			"existing_count": counts.Existing,
			"error_count":    counts.Errors,
			"status":         string(status),
			"completed_at":   gorm.Expr("COALESCE(completed_at, NOW())"),
		})
	if result.Error != nil {
		return fmt.Errorf("finish upload task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *UploadTaskRepository) Delete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.UploadTask{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete upload tasks: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *UploadTaskRepository) UpdateRemark(ctx context.Context, id, remark string) error {
	result := r.db.WithContext(ctx).
		Model(&models.UploadTask{}).
		Where("id = ?", id).
		Update("remark", nullableText(remark))
	if result.Error != nil {
		return fmt.Errorf("update upload task remark: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// FailProcessing moves every PROCESSING task to FAILED with the given remark.
func (r *UploadTaskRepository) FailProcessing(ctx context.Context, remark string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.UploadTask{}).
		Where("status = ?", string(domain.TaskStatusProcessing)).
		Updates(map[string]any{
			"status":       string(domain.TaskStatusFailed),
			"remark":       remark,
			"completed_at": gorm.Expr("COALESCE(completed_at, NOW())"),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("fail processing upload tasks: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func toDomainTask(row models.UploadTask) domain.ImportTask {
	return domain.ImportTask{
		ID:            row.ID,
		FileName:      row.FileName,
		TotalCount:    row.TotalCount,
		AddedCount:    row.AddedCount,
		ExistingCount: row.ExistingCount,
		ErrorCount:    row.ErrorCount,
		Status:        domain.TaskStatus(row.Status),
		Remark:        textValue(row.Remark),
		CreatedAt:     row.CreatedAt,
		CompletedAt:   row.CompletedAt,
	}
}
