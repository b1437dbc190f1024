package customer

import (
	"context"
	"time"
)

type CustomerRepository interface {
	GetByID(ctx context.Context, id int64) (Customer, error)
	Create(ctx context.Context, c Customer) (Customer, error)
	Update(ctx context.Context, c Customer) (Customer, error)
	Delete(ctx context.Context, ids []int64) (int64, error)
	Search(ctx context.Context, filter SearchFilter) (CustomerPage, error)
	Count(ctx context.Context) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
}

// CountCache holds the total customer count. Get reports ok=false on a miss.
type CountCache interface {
	Get(ctx context.Context) (count int64, ok bool, err error)
	Set(ctx context.Context, count int64) error
	Invalidate(ctx context.Context) error
}

type OperationLogReader interface {
	List(ctx context.Context, filter OperationLogFilter) (OperationLogPage, error)
}

type CustomerRemarkRepository interface {
	Get(ctx context.Context, customerID int64) (CustomerRemark, error)
	Save(ctx context.Context, customerID int64, text string) (CustomerRemark, error)
	Delete(ctx context.Context, customerID int64) error
}

// CustomerMatcher backs batch lookups. FindByPhones returns at most one match
// per phone; FindByName returns the lowest id whose name contains name.
type CustomerMatcher interface {
	FindByPhones(ctx context.Context, phones []string) (map[string]BatchMatch, error)
	FindByName(ctx context.Context, name string) (BatchMatch, error)
}
