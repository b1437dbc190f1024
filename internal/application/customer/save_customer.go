package customer

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
)

type SaveCustomerInput struct {
	ID      int64
	Name    string
	Phone   string
	Email   string
	Address string
}

// SaveCustomer creates a customer when ID is zero and updates it otherwise.
// Manually saved customers carry no task id.
type SaveCustomer interface {
	Execute(ctx context.Context, in SaveCustomerInput) (CustomerOutput, error)
}

type saveCustomer struct {
	repo  domain.CustomerRepository
	cache domain.CountCache
}

func NewSaveCustomer(repo domain.CustomerRepository, cache domain.CountCache) SaveCustomer {
	return &saveCustomer{repo: repo, cache: cache}
}

func (uc *saveCustomer) Execute(ctx context.Context, in SaveCustomerInput) (CustomerOutput, error) {
	if in.ID < 0 {
		return CustomerOutput{}, ErrInvalidCustomerID
	}

	c, err := domain.NewCustomer(in.Name, in.Phone, in.Email, in.Address)
	if err != nil {
		return CustomerOutput{}, fmt.Errorf("%w: %v", ErrInvalidCustomer, err)
	}

	if in.ID == 0 {
		saved, err := uc.repo.Create(ctx, c)
		if err != nil {
			return CustomerOutput{}, fmt.Errorf("%w: %v", ErrSaveCustomer, err)
		}
		if uc.cache != nil {
			_ = uc.cache.Invalidate(ctx)
		}
		return toOutput(saved), nil
	}

	c.ID = in.ID
	saved, err := uc.repo.Update(ctx, c)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return CustomerOutput{}, ErrCustomerNotFound
		}
		return CustomerOutput{}, fmt.Errorf("%w: %v", ErrSaveCustomer, err)
	}
	return toOutput(saved), nil
}
