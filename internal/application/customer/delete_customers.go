package customer

import (
	"context"
	"fmt"

	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
)

const deleteGroupSize = 500

type DeleteCustomersInput struct {
	IDs []int64
}

type DeleteCustomersOutput struct {
	Deleted int64 `json:"deleted"`
}

type DeleteCustomers interface {
	Execute(ctx context.Context, in DeleteCustomersInput) (DeleteCustomersOutput, error)
}

type deleteCustomers struct {
	repo  domain.CustomerRepository
	cache domain.CountCache
}

func NewDeleteCustomers(repo domain.CustomerRepository, cache domain.CountCache) DeleteCustomers {
	return &deleteCustomers{repo: repo, cache: cache}
}

func (uc *deleteCustomers) Execute(ctx context.Context, in DeleteCustomersInput) (DeleteCustomersOutput, error) {
	if len(in.IDs) == 0 {
		return DeleteCustomersOutput{}, ErrInvalidCustomerID
	}
	for _, id := range in.IDs {
		if id <= 0 {
			return DeleteCustomersOutput{}, ErrInvalidCustomerID
		}
	}

	var out DeleteCustomersOutput
	for start := 0; start < len(in.IDs); start += deleteGroupSize {
		end := min(start+deleteGroupSize, len(in.IDs))
		n, err := uc.repo.Delete(ctx, in.IDs[start:end])
		if err != nil {
			return out, fmt.Errorf("%w: %v", ErrDeleteCustomers, err)
		}
		out.Deleted += n
	}

	if out.Deleted > 0 && uc.cache != nil {
		_ = uc.cache.Invalidate(ctx)
	}
	if len(in.IDs) == 1 && out.Deleted == 0 {
		return out, ErrCustomerNotFound
	}
	return out, nil
}
