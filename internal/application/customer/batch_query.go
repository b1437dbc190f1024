package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
)

const MaxBatchQueryItems = 500

type BatchQueryItem struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type BatchQueryInput struct {
	Items []BatchQueryItem
}

type BatchQueryResult struct {
	Query          BatchQueryItem  `json:"query"`
	Matched        bool            `json:"matched"`
	Customer       *CustomerOutput `json:"customer,omitempty"`
	UploadFileName string          `json:"upload_file_name,omitempty"`
}

type BatchQueryOutput struct {
	Results []BatchQueryResult `json:"results"`
	Total   int                `json:"total"`
	Matched int                `json:"matched"`
}

// BatchQueryCustomers looks up each item by exact phone first and falls back
// to the first customer whose name contains the item's name. Results keep the
// order of the items.
type BatchQueryCustomers interface {
	Execute(ctx context.Context, in BatchQueryInput) (BatchQueryOutput, error)
}

type batchQueryCustomers struct {
	repo domain.CustomerMatcher
}

func NewBatchQueryCustomers(repo domain.CustomerMatcher) BatchQueryCustomers {
	return &batchQueryCustomers{repo: repo}
}

func (uc *batchQueryCustomers) Execute(ctx context.Context, in BatchQueryInput) (BatchQueryOutput, error) {
	if len(in.Items) == 0 {
		return BatchQueryOutput{}, fmt.Errorf("%w: no items", ErrInvalidBatchQuery)
	}
	if len(in.Items) > MaxBatchQueryItems {
		return BatchQueryOutput{}, fmt.Errorf("%w: %d items, at most %d", ErrInvalidBatchQuery, len(in.Items), MaxBatchQueryItems)
	}

	items := make([]BatchQueryItem, len(in.Items))
	phones := make([]string, 0, len(in.Items))
	seen := make(map[string]struct{}, len(in.Items))
	for i, item := range in.Items {
		items[i] = BatchQueryItem{Name: strings.TrimSpace(item.Name), Phone: strings.TrimSpace(item.Phone)}
		if p := items[i].Phone; p != "" {
			if _, dup := seen[p]; !dup {
				seen[p] = struct{}{}
				phones = append(phones, p)
			}
		}
	}

	byPhone, err := uc.repo.FindByPhones(ctx, phones)
	if err != nil {
		return BatchQueryOutput{}, fmt.Errorf("%w: %v", ErrBatchQuery, err)
	}

	byName := make(map[string]*domain.BatchMatch)
	out := BatchQueryOutput{Results: make([]BatchQueryResult, 0, len(items)), Total: len(items)}
	for _, item := range items {
		result := BatchQueryResult{Query: item}

		match, ok := byPhone[item.Phone]
		if !ok && item.Name != "" {
			cached, looked := byName[item.Name]
			if !looked {
				found, err := uc.repo.FindByName(ctx, item.Name)
				switch {
				case err == nil:
					cached = &found
				case !errors.Is(err, domain.ErrCustomerNotFound):
					return BatchQueryOutput{}, fmt.Errorf("%w: %v", ErrBatchQuery, err)
				}
				byName[item.Name] = cached
			}
			if cached != nil {
				match, ok = *cached, true
			}
		}

		if ok {
			c := toOutput(match.Customer)
			result.Matched = true
			result.Customer = &c
			result.UploadFileName = match.UploadFileName
			out.Matched++
		}
		out.Results = append(out.Results, result)
	}
	return out, nil
}
