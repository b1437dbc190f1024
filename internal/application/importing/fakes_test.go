package importing_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	app "github.com/mohammadpnp/customer-import/internal/application/importing"
	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
	"github.com/mohammadpnp/customer-import/internal/worker"
)

type memStream struct {
	name string
	data []byte

	mu      sync.Mutex
	removed bool
}

func (s *memStream) Name() string { return s.name }

func (s *memStream) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

func (s *memStream) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = true
	return nil
}

func (s *memStream) wasRemoved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removed
}

type fakeCustomerStore struct {
	mu         sync.Mutex
	existing   map[string]struct{}
	lookupErr  error
	failInsert map[int]error
	inserts    []int
	lookups    int
	taskIDs    []string
}

func newFakeCustomerStore(existing ...string) *fakeCustomerStore {
	s := &fakeCustomerStore{existing: map[string]struct{}{}, failInsert: map[int]error{}}
	for _, phone := range existing {
		s.existing[phone] = struct{}{}
	}
	return s
}

func (s *fakeCustomerStore) ExistingPhones(ctx context.Context, phones []string) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	found := map[string]struct{}{}
	for _, phone := range phones {
		if _, ok := s.existing[phone]; ok {
			found[phone] = struct{}{}
		}
	}
	return found, nil
}

func (s *fakeCustomerStore) InsertBatch(ctx context.Context, taskID string, customers []domain.Customer) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	call := len(s.inserts) + 1
	s.inserts = append(s.inserts, len(customers))
	s.taskIDs = append(s.taskIDs, taskID)
	if err, ok := s.failInsert[call]; ok {
		return 0, err
	}
	for _, c := range customers {
		if c.Phone != "" {
			s.existing[c.Phone] = struct{}{}
		}
	}
	return int64(len(customers)), nil
}

type finishCall struct {
	counts domain.ImportCounts
	status domain.TaskStatus
}

type fakeTaskStore struct {
	mu        sync.Mutex
	nextID    string
	createErr error
	created   []string
	progress  []domain.ImportCounts
	finished  []finishCall
}

func (f *fakeTaskStore) Create(ctx context.Context, fileName string) (domain.ImportTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return domain.ImportTask{}, f.createErr
	}
	f.created = append(f.created, fileName)
	return domain.ImportTask{ID: f.nextID, FileName: fileName, Status: domain.TaskStatusProcessing}, nil
}

func (f *fakeTaskStore) UpdateProgress(ctx context.Context, taskID string, counts domain.ImportCounts) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progress = append(f.progress, counts)
	return nil
}

func (f *fakeTaskStore) Finish(ctx context.Context, taskID string, counts domain.ImportCounts, status domain.TaskStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished = append(f.finished, finishCall{counts: counts, status: status})
	return nil
}

type fakeCache struct {
	mu          sync.Mutex
	invalidated int
}

func (c *fakeCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	return nil
}

type fakeRecorder struct {
	entries []domain.OperationLog
}

func (r *fakeRecorder) Record(ctx context.Context, entry domain.OperationLog) error {
	r.entries = append(r.entries, entry)
	return nil
}

// rowsOpener yields generated rows without parsing any bytes.
type rowsOpener struct {
	rows []domain.RawRow
	errs map[int]error
	err  error
}

func (o *rowsOpener) Open(stream domain.NamedStream) (domain.RowReader, error) {
	if o.err != nil {
		return nil, o.err
	}
	return &sliceReader{rows: o.rows, errs: o.errs}, nil
}

type sliceReader struct {
	rows []domain.RawRow
	errs map[int]error
	pos  int
}

func (r *sliceReader) Next() (domain.RawRow, error) {
	if err, ok := r.errs[r.pos]; ok {
		delete(r.errs, r.pos)
		return domain.RawRow{}, err
	}
	if r.pos >= len(r.rows) {
		return domain.RawRow{}, io.EOF
	}
	row := r.rows[r.pos]
	r.pos++
	return row, nil
}

func (r *sliceReader) Close() error { return nil }

func generatedRows(n int) []domain.RawRow {
	rows := make([]domain.RawRow, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, domain.RawRow{
			Line:   int64(i + 2),
			Values: []string{fmt.Sprintf("customer-%d", i), fmt.Sprintf("1%010d", i)},
		})
	}
	return rows
}

// inlineScheduler runs jobs synchronously on Submit.
type inlineScheduler struct {
	err       error
	submitted int
}

func (s *inlineScheduler) Submit(job worker.Job) error {
	if s.err != nil {
		return s.err
	}
	s.submitted++
	job(context.Background())
	return nil
}

type fakeRunner struct {
	runs []string
	err  error
}

func (r *fakeRunner) Run(ctx context.Context, run app.ImportRun) (app.ImportResult, error) {
	r.runs = append(r.runs, run.TaskID)
	return app.ImportResult{}, r.err
}

var errBoom = errors.New("boom")
