package customer

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
)

type GetCustomerByIDInput struct {
	ID int64
}

type GetCustomerByID interface {
	Execute(ctx context.Context, in GetCustomerByIDInput) (CustomerOutput, error)
}

type getCustomerByID struct {
	repo domain.CustomerRepository
}

func NewGetCustomerByID(repo domain.CustomerRepository) GetCustomerByID {
	return &getCustomerByID{repo: repo}
}

func (uc *getCustomerByID) Execute(ctx context.Context, in GetCustomerByIDInput) (CustomerOutput, error) {
	if in.ID <= 0 {
		return CustomerOutput{}, ErrInvalidCustomerID
	}

	c, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return CustomerOutput{}, ErrCustomerNotFound
		}
		return CustomerOutput{}, fmt.Errorf("%w: %v", ErrGetCustomer, err)
	}

	return toOutput(c), nil
}
