package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
	"github.com/mohammadpnp/customer-import/internal/infrastructure/db/models"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (domain.Customer, error) {
	var row models.Customer

	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("get customer by id: %w", err)
	}

	return toDomainCustomer(row), nil
}

func (r *CustomerRepository) Create(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	row := toCustomerModel(c)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Customer{}, fmt.Errorf("create customer: %w", err)
	}
	return toDomainCustomer(row), nil
}

// Update overwrites the editable fields. The task id of an imported customer
// is kept.
func (r *CustomerRepository) Update(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", c.ID).
		Updates(map[string]any{
			"name":       c.Name,
			"phone":      nullableText(c.Phone),
			"email":      nullableText(c.Email),
			"address":    nullableText(c.Address),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return domain.Customer{}, fmt.Errorf("update customer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return r.GetByID(ctx, c.ID)
}

// Delete removes the customers and their remarks.
func (r *CustomerRepository) Delete(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id IN ?", ids).Delete(&models.CustomerRemark{}).Error; err != nil {
			return fmt.Errorf("delete customer remarks: %w", err)
		}
		result := tx.Where("id IN ?", ids).Delete(&models.Customer{})
		if result.Error != nil {
			return fmt.Errorf("delete customers: %w", result.Error)
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (r *CustomerRepository) DeleteByTaskIDs(ctx context.Context, taskIDs []string) (int64, error) {
	if len(taskIDs) == 0 {
		return 0, nil
	}

	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		imported := tx.Model(&models.Customer{}).Select("id").Where("upload_task_id IN ?", taskIDs)
		if err := tx.Where("customer_id IN (?)", imported).Delete(&models.CustomerRemark{}).Error; err != nil {
			return fmt.Errorf("delete customer remarks by task: %w", err)
		}
		result := tx.Where("upload_task_id IN ?", taskIDs).Delete(&models.Customer{})
		if result.Error != nil {
			return fmt.Errorf("delete customers by task: %w", result.Error)
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

type batchMatchRow struct {
	ID           int64
	Name         string
	Phone        *string
	Email        *string
	Address      *string
	UploadTaskID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	FileName     *string
}

const batchMatchColumns = "c.id, c.name, c.phone, c.email, c.address, c.upload_task_id, c.created_at, c.updated_at, t.file_name"

func (r *CustomerRepository) matchQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("customers AS c").
		Select(batchMatchColumns).
		Joins("LEFT JOIN upload_tasks AS t ON t.id = c.upload_task_id")
}

// FindByPhones keys the matches by phone. When several customers share a
// phone the lowest id wins.
func (r *CustomerRepository) FindByPhones(ctx context.Context, phones []string) (map[string]domain.BatchMatch, error) {
	matches := make(map[string]domain.BatchMatch, len(phones))
	if len(phones) == 0 {
		return matches, nil
	}

	var rows []batchMatchRow
	if err := r.matchQuery(ctx).Where("c.phone IN ?", phones).Order("c.id ASC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("find customers by phone: %w", err)
	}
	for _, row := range rows {
		match := toBatchMatch(row)
		if _, seen := matches[match.Customer.Phone]; !seen {
			matches[match.Customer.Phone] = match
		}
	}
	return matches, nil
}

func (r *CustomerRepository) FindByName(ctx context.Context, name string) (domain.BatchMatch, error) {
	var rows []batchMatchRow
	err := r.matchQuery(ctx).
		Where("c.name ILIKE ?", "%"+escapeLike(name)+"%").
		Order("c.id ASC").
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return domain.BatchMatch{}, fmt.Errorf("find customer by name: %w", err)
	}
	if len(rows) == 0 {
		return domain.BatchMatch{}, domain.ErrCustomerNotFound
	}
	return toBatchMatch(rows[0]), nil
}

func toBatchMatch(row batchMatchRow) domain.BatchMatch {
	return domain.BatchMatch{
		Customer: domain.Customer{
			ID:        row.ID,
			Name:      row.Name,
			Phone:     textValue(row.Phone),
			Email:     textValue(row.Email),
			Address:   textValue(row.Address),
			TaskID:    textValue(row.UploadTaskID),
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		},
		UploadFileName: textValue(row.FileName),
	}
}

// Search matches text fields by case-insensitive substring and pages by id.
func (r *CustomerRepository) Search(ctx context.Context, filter domain.SearchFilter) (domain.CustomerPage, error) {
	query := r.db.WithContext(ctx).Model(&models.Customer{})

	for column, value := range map[string]string{
		"name":    filter.Name,
		"phone":   filter.Phone,
		"email":   filter.Email,
		"address": filter.Address,
	} {
		if value != "" {
			query = query.Where(column+" ILIKE ?", "%"+escapeLike(value)+"%")
		}
	}
	if filter.TaskID != "" {
		query = query.Where("upload_task_id = ?", filter.TaskID)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return domain.CustomerPage{}, fmt.Errorf("count customers: %w", err)
	}

	var rows []models.Customer
	err := query.
		Order("id ASC").
		Offset((filter.Page - 1) * filter.Size).
		Limit(filter.Size).
		Find(&rows).Error
	if err != nil {
		return domain.CustomerPage{}, fmt.Errorf("search customers: %w", err)
	}

	items := make([]domain.Customer, 0, len(rows))
	for _, row := range rows {
		items = append(items, toDomainCustomer(row))
	}
	return domain.CustomerPage{Items: items, Total: total, Page: filter.Page, Size: filter.Size}, nil
}

func (r *CustomerRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Customer{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count customers: %w", err)
	}
	return total, nil
}

func (r *CustomerRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("created_at >= ?", since).
		Count(&total).Error
	if err != nil {
		return 0, fmt.Errorf("count customers since: %w", err)
	}
	return total, nil
}

func toDomainCustomer(row models.Customer) domain.Customer {
	return domain.Customer{
		ID:        row.ID,
		Name:      row.Name,
		Phone:     textValue(row.Phone),
		Email:     textValue(row.Email),
		Address:   textValue(row.Address),
		TaskID:    textValue(row.UploadTaskID),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func toCustomerModel(c domain.Customer) models.Customer {
	return models.Customer{
		ID:           c.ID,
		Name:         c.Name,
		Phone:        nullableText(c.Phone),
		Email:        nullableText(c.Email),
		Address:      nullableText(c.Address),
		UploadTaskID: nullableText(c.TaskID),
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}

func textValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func nullableText(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
