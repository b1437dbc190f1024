package customer

import (
	"context"
	"fmt"
	"strings"
	"time"

	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
)

const (
	defaultPageSize = 20
	maxPageSize     = 500
)

type SearchCustomersInput struct {
	Name        string
	Phone       string
	Email       string
	Address     string
	TaskID      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Page        int
	Size        int
}

type SearchCustomersOutput struct {
	Items []CustomerOutput `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Size  int              `json:"size"`
}

type SearchCustomers interface {
	Execute(ctx context.Context, in SearchCustomersInput) (SearchCustomersOutput, error)
}

type searchCustomers struct {
	repo domain.CustomerRepository
}

func NewSearchCustomers(repo domain.CustomerRepository) SearchCustomers {
	return &searchCustomers{repo: repo}
}

func (uc *searchCustomers) Execute(ctx context.Context, in SearchCustomersInput) (SearchCustomersOutput, error) {
	page, size := in.Page, in.Size
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	result, err := uc.repo.Search(ctx, domain.SearchFilter{
		Name:        strings.TrimSpace(in.Name),
		Phone:       strings.TrimSpace(in.Phone),
		Email:       strings.TrimSpace(in.Email),
		Address:     strings.TrimSpace(in.Address),
		TaskID:      strings.TrimSpace(in.TaskID),
		CreatedFrom: in.CreatedFrom,
		CreatedTo:   in.CreatedTo,
		Page:        page,
		Size:        size,
	})
	if err != nil {
		return SearchCustomersOutput{}, fmt.Errorf("%w: %v", ErrSearchCustomers, err)
	}

	items := make([]CustomerOutput, 0, len(result.Items))
	for _, c := range result.Items {
		items = append(items, toOutput(c))
	}
	return SearchCustomersOutput{Items: items, Total: result.Total, Page: page, Size: size}, nil
}
