package importing

import (
	"context"
	"fmt"

	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
)

const maxStoredErrors = 100

const (
	colName = iota
	colPhone
	colEmail
	colAddress
)

type phoneLookup interface {
	ExistingPhones(ctx context.Context, phones []string) (map[string]struct{}, error)
}

// Batch is a resolved group of candidates ready to be inserted. Customers may
// be shorter than the batch size, or empty, after duplicates are removed.
type Batch struct {
	Customers []domain.Customer
}

// Tally counts every row the batcher has seen. ErrorMessages is capped at
// maxStoredErrors, Errors is not.
type Tally struct {
	Total         int64
	Skipped       int64
	Errors        int64
	ErrorMessages []string
}

// DedupBatcher turns raw rows into customer batches. A phone is accepted once
// per import: later rows with a phone that exists in storage or was accepted
// earlier in the same stream are skipped.
type DedupBatcher struct {
	lookup    phoneLookup
	taskID    string
	batchSize int

	pending []domain.Customer
	seen    map[string]struct{}
	tally   Tally
}

func NewDedupBatcher(lookup phoneLookup, taskID string, batchSize int) *DedupBatcher {
	if batchSize <= 0 {
		batchSize = 10000
	}
	return &DedupBatcher{
		lookup:    lookup,
		taskID:    taskID,
		batchSize: batchSize,
		pending:   make([]domain.Customer, 0, batchSize),
		seen:      make(map[string]struct{}),
	}
}

// Add consumes one row. It returns a non-nil Batch when the buffer filled up
// and was resolved. A lookup failure returns an empty Batch with the error;
// the buffered rows are then counted as errors.
func (b *DedupBatcher) Add(ctx context.Context, row domain.RawRow) (*Batch, error) {
	b.tally.Total++

	candidate, err := domain.NewCustomer(row.Value(colName), row.Value(colPhone), row.Value(colEmail), row.Value(colAddress))
	if err != nil {
		b.recordErrors(1, fmt.Sprintf("row %d: %v", row.Line, err))
		return nil, nil
	}
	candidate.TaskID = b.taskID

	b.pending = append(b.pending, candidate)
	if len(b.pending) < b.batchSize {
		return nil, nil
	}
	return b.resolve(ctx)
}

// Flush resolves whatever is still buffered. It returns nil when nothing is.
func (b *DedupBatcher) Flush(ctx context.Context) (*Batch, error) {
	if len(b.pending) == 0 {
		return nil, nil
	}
	return b.resolve(ctx)
}

func (b *DedupBatcher) resolve(ctx context.Context) (*Batch, error) {
	pending := b.pending
	b.pending = make([]domain.Customer, 0, b.batchSize)

	phones := make([]string, 0, len(pending))
	queued := make(map[string]struct{}, len(pending))
	for _, c := range pending {
		if c.Phone == "" {
			continue
		}
		if _, ok := b.seen[c.Phone]; ok {
			continue
		}
		if _, ok := queued[c.Phone]; ok {
			continue
		}
		queued[c.Phone] = struct{}{}
		phones = append(phones, c.Phone)
	}

	existing := map[string]struct{}{}
	if len(phones) > 0 {
		found, err := b.lookup.ExistingPhones(ctx, phones)
		if err != nil {
			b.recordErrors(int64(len(pending)), fmt.Sprintf("%v: %v", ErrPhoneLookup, err))
			return &Batch{}, fmt.Errorf("%w: %v", ErrPhoneLookup, err)
		}
		existing = found
	}

	accepted := make([]domain.Customer, 0, len(pending))
	for _, c := range pending {
		if c.Phone != "" {
			if _, ok := existing[c.Phone]; ok {
				b.tally.Skipped++
				continue
			}
			if _, ok := b.seen[c.Phone]; ok {
				b.tally.Skipped++
				continue
			}
			b.seen[c.Phone] = struct{}{}
		}
		accepted = append(accepted, c)
	}

	return &Batch{Customers: accepted}, nil
}

// RecordRowError counts a row the parser could not split.
func (b *DedupBatcher) RecordRowError(err error) {
	b.tally.Total++
	b.recordErrors(1, err.Error())
}

// FailBatch counts customers whose insert failed as errors and releases their
// phones so later rows with the same phone are not treated as duplicates.
func (b *DedupBatcher) FailBatch(customers []domain.Customer, err error) {
	for _, c := range customers {
		if c.Phone != "" {
			delete(b.seen, c.Phone)
		}
	}
	b.recordErrors(int64(len(customers)), fmt.Sprintf("batch insert failed: %v", err))
}

// Counts combines the tally with the number of inserted rows.
func (b *DedupBatcher) Counts(added int64) domain.ImportCounts {
	return domain.ImportCounts{
		Total:    b.tally.Total,
		Added:    added,
		Existing: b.tally.Skipped,
		Errors:   b.tally.Errors,
	}
}

func (b *DedupBatcher) Tally() Tally {
	return b.tally
}

func (b *DedupBatcher) recordErrors(n int64, message string) {
	b.tally.Errors += n
	if len(b.tally.ErrorMessages) < maxStoredErrors {
		b.tally.ErrorMessages = append(b.tally.ErrorMessages, message)
	}
}
