package customer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
)

type CountOutput struct {
	Count int64 `json:"count"`
}

// CountCustomers returns the total number of customers, served from the count
// cache when it holds a value. Cache failures fall through to the database.
type CountCustomers interface {
	Execute(ctx context.Context) (CountOutput, error)
}

type countCustomers struct {
	repo  domain.CustomerRepository
	cache domain.CountCache
	log   zerolog.Logger
}

func NewCountCustomers(repo domain.CustomerRepository, cache domain.CountCache, log zerolog.Logger) CountCustomers {
	return &countCustomers{repo: repo, cache: cache, log: log}
}

func (uc *countCustomers) Execute(ctx context.Context) (CountOutput, error) {
	if uc.cache != nil {
		count, ok, err := uc.cache.Get(ctx)
		if err != nil {
			uc.log.Warn().Err(err).Msg("customer count cache read failed")
		} else if ok {
			return CountOutput{Count: count}, nil
		}
	}

	count, err := uc.repo.Count(ctx)
	if err != nil {
		return CountOutput{}, fmt.Errorf("%w: %v", ErrCountCustomers, err)
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, count); err != nil {
			uc.log.Warn().Err(err).Msg("customer count cache write failed")
		}
	}
	return CountOutput{Count: count}, nil
}

// CountTodayCustomers counts customers created since local midnight.
type CountTodayCustomers interface {
	Execute(ctx context.Context) (CountOutput, error)
}

type countTodayCustomers struct {
	repo domain.CustomerRepository
	now  func() time.Time
}

func NewCountTodayCustomers(repo domain.CustomerRepository, now func() time.Time) CountTodayCustomers {
	if now == nil {
		now = time.Now
	}
	return &countTodayCustomers{repo: repo, now: now}
}

func (uc *countTodayCustomers) Execute(ctx context.Context) (CountOutput, error) {
	now := uc.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	count, err := uc.repo.CountCreatedSince(ctx, midnight)
	if err != nil {
		return CountOutput{}, fmt.Errorf("%w: %v", ErrCountCustomers, err)
	}
	return CountOutput{Count: count}, nil
}
