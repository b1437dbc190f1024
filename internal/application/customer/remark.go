package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
)

const maxRemarkLength = 2000

type RemarkOutput struct {
	CustomerID int64      `json:"customer_id"`
	HasRemark  bool       `json:"has_remark"`
	Remark     string     `json:"remark"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

func toRemarkOutput(r domain.CustomerRemark) RemarkOutput {
	updated := r.UpdatedAt
	return RemarkOutput{CustomerID: r.CustomerID, HasRemark: true, Remark: r.Text, UpdatedAt: &updated}
}

type GetCustomerRemarkInput struct {
	CustomerID int64
}

// GetCustomerRemark reports HasRemark false rather than an error when the
// customer has no remark.
type GetCustomerRemark interface {
	Execute(ctx context.Context, in GetCustomerRemarkInput) (RemarkOutput, error)
}

type getCustomerRemark struct {
	remarks domain.CustomerRemarkRepository
}

func NewGetCustomerRemark(remarks domain.CustomerRemarkRepository) GetCustomerRemark {
	return &getCustomerRemark{remarks: remarks}
}

func (uc *getCustomerRemark) Execute(ctx context.Context, in GetCustomerRemarkInput) (RemarkOutput, error) {
	if in.CustomerID <= 0 {
		return RemarkOutput{}, ErrInvalidCustomerID
	}

	remark, err := uc.remarks.Get(ctx, in.CustomerID)
	if err != nil {
		if errors.Is(err, domain.ErrRemarkNotFound) {
			return RemarkOutput{CustomerID: in.CustomerID}, nil
		}
		return RemarkOutput{}, fmt.Errorf("%w: %v", ErrCustomerRemark, err)
	}
	return toRemarkOutput(remark), nil
}

type SaveCustomerRemarkInput struct {
	CustomerID int64
	Remark     string
}

type SaveCustomerRemark interface {
	Execute(ctx context.Context, in SaveCustomerRemarkInput) (RemarkOutput, error)
}

type saveCustomerRemark struct {
	customers domain.CustomerRepository
	remarks   domain.CustomerRemarkRepository
}

func NewSaveCustomerRemark(customers domain.CustomerRepository, remarks domain.CustomerRemarkRepository) SaveCustomerRemark {
	return &saveCustomerRemark{customers: customers, remarks: remarks}
}

func (uc *saveCustomerRemark) Execute(ctx context.Context, in SaveCustomerRemarkInput) (RemarkOutput, error) {
	if in.CustomerID <= 0 {
		return RemarkOutput{}, ErrInvalidCustomerID
	}
	text := strings.TrimSpace(in.Remark)
	if utf8.RuneCountInString(text) > maxRemarkLength {
		return RemarkOutput{}, ErrRemarkTooLong
	}

	if _, err := uc.customers.GetByID(ctx, in.CustomerID); err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return RemarkOutput{}, ErrCustomerNotFound
		}
		return RemarkOutput{}, fmt.Errorf("%w: %v", ErrCustomerRemark, err)
	}

	saved, err := uc.remarks.Save(ctx, in.CustomerID, text)
	if err != nil {
		return RemarkOutput{}, fmt.Errorf("%w: %v", ErrCustomerRemark, err)
	}
	return toRemarkOutput(saved), nil
}

type DeleteCustomerRemarkInput struct {
	CustomerID int64
}

type DeleteCustomerRemark interface {
	Execute(ctx context.Context, in DeleteCustomerRemarkInput) error
}

type deleteCustomerRemark struct {
	remarks domain.CustomerRemarkRepository
}

func NewDeleteCustomerRemark(remarks domain.CustomerRemarkRepository) DeleteCustomerRemark {
	return &deleteCustomerRemark{remarks: remarks}
}

func (uc *deleteCustomerRemark) Execute(ctx context.Context, in DeleteCustomerRemarkInput) error {
	if in.CustomerID <= 0 {
		return ErrInvalidCustomerID
	}
	if err := uc.remarks.Delete(ctx, in.CustomerID); err != nil {
		return fmt.Errorf("%w: %v", ErrCustomerRemark, err)
	}
	return nil
}
