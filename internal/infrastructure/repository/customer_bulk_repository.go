package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
)

const (
	phoneLookupChunkSize   = 1000
	phoneLookupConcurrency = 4
)

// CustomerBulkRepository serves the import path: phone existence checks and
// COPY based batch inserts.
type CustomerBulkRepository struct {
	pool *pgxpool.Pool
}

func NewCustomerBulkRepository(pool *pgxpool.Pool) *CustomerBulkRepository {
	return &CustomerBulkRepository{pool: pool}
}

// ExistingPhones returns the subset of phones already stored. Large inputs are
// split into chunks queried in parallel.
func (r *CustomerBulkRepository) ExistingPhones(ctx context.Context, phones []string) (map[string]struct{}, error) {
	found := make(map[string]struct{})
	if len(phones) == 0 {
		return found, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(phoneLookupConcurrency)

	for start := 0; start < len(phones); start += phoneLookupChunkSize {
		chunk := phones[start:min(start+phoneLookupChunkSize, len(phones))]
		g.Go(func() error {
			rows, err := r.pool.Query(gctx, "SELECT DISTINCT phone FROM customers WHERE phone = ANY($1)", chunk)
			if err != nil {
				return fmt.Errorf("query existing phones: %w", err)
			}
			matched, err := pgx.CollectRows(rows, pgx.RowTo[string])
			if err != nil {
				return fmt.Errorf("scan existing phones: %w", err)
			}

			mu.Lock()
			for _, phone := range matched {
				found[phone] = struct{}{}
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return found, nil
}

// InsertBatch copies customers into the customers table in one transaction.
// Either every row is stored or none is.
func (r *CustomerBulkRepository) InsertBatch(ctx context.Context, taskID string, customers []domain.Customer) (int64, error) {
	if len(customers) == 0 {
		return 0, nil
	}

	var taskRef any
	if taskID != "" {
		parsed, err := uuid.Parse(taskID)
		if err != nil {
			return 0, fmt.Errorf("parse task id: %w", err)
		}
		taskRef = [16]byte(parsed)
	}

	now := time.Now()
	rows := make([][]any, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, []any{
			c.Name,
			nullableText(c.Phone),
			nullableText(c.Email),
			nullableText(c.Address),
			taskRef,
			now,
			now,
		})
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	copied, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"customers"},
		[]string{"name", "phone", "email", "address", "upload_task_id", "created_at", "updated_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("copy customers: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit customer batch: %w", err)
	}

	return copied, nil
}
