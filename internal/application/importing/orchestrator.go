package importing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
)

type importTaskProgress interface {
	UpdateProgress(ctx context.Context, taskID string, counts domain.ImportCounts) error
	Finish(ctx context.Context, taskID string, counts domain.ImportCounts, status domain.TaskStatus) error
}

type customerBatchWriter interface {
	ExistingPhones(ctx context.Context, phones []string) (map[string]struct{}, error)
	InsertBatch(ctx context.Context, taskID string, customers []domain.Customer) (int64, error)
}

type rowReaderOpener interface {
	Open(stream domain.NamedStream) (domain.RowReader, error)
}

type countCacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type operationRecorder interface {
	Record(ctx context.Context, entry domain.OperationLog) error
}

type sourceArchiver interface {
	Archive(ctx context.Context, key string, stream domain.NamedStream) error
}

// Actor is the caller an import run is attributed to in the operation log.
type Actor struct {
	Username string
	ClientIP string
}

type ImportRun struct {
	TaskID string
	Stream domain.NamedStream
	Actor  Actor
}

type ImportResult struct {
	Counts domain.ImportCounts
	Status domain.TaskStatus
}

type OrchestratorConfig struct {
	BatchSize int
}

// Orchestrator drives one import run from stream to terminal task status.
type Orchestrator struct {
	tasks    importTaskProgress
	store    customerBatchWriter
	opener   rowReaderOpener
	cache    countCacheInvalidator
	recorder operationRecorder
	archiver sourceArchiver
	cfg      OrchestratorConfig
	log      zerolog.Logger
}

func NewOrchestrator(
	tasks importTaskProgress,
	store customerBatchWriter,
	opener rowReaderOpener,
	cache countCacheInvalidator,
	cfg OrchestratorConfig,
	log zerolog.Logger,
) *Orchestrator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10000
	}
	return &Orchestrator{
		tasks:  tasks,
		store:  store,
		opener: opener,
		cache:  cache,
		cfg:    cfg,
		log:    log,
	}
}

// WithOperationLog makes every run leave an operation log entry.
func (o *Orchestrator) WithOperationLog(recorder operationRecorder) *Orchestrator {
	o.recorder = recorder
	return o
}

// WithArchive copies the source of every run to object storage before parsing.
func (o *Orchestrator) WithArchive(archiver sourceArchiver) *Orchestrator {
	o.archiver = archiver
	return o
}

// Run streams the file into the customer store. The task must already exist
// in PROCESSING. A cancelled ctx stops the run and leaves the task as it is.
func (o *Orchestrator) Run(ctx context.Context, run ImportRun) (ImportResult, error) {
	log := o.log.With().Str("task_id", run.TaskID).Str("file_name", run.Stream.Name()).Logger()
	log.Info().Msg("import started")

	batcher := NewDedupBatcher(o.store, run.TaskID, o.cfg.BatchSize)
	var added int64

	runErr := o.stream(ctx, run, batcher, &added, log)

	if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
		log.Warn().Err(runErr).Msg("import interrupted")
		o.afterRun(ctx, run, batcher.Counts(added), domain.TaskStatusProcessing, runErr, log)
		return ImportResult{Counts: batcher.Counts(added), Status: domain.TaskStatusProcessing}, runErr
	}

	counts := batcher.Counts(added)
	status := domain.ClassifyStatus(counts)
	if runErr != nil {
		status = domain.TaskStatusFailed
		log.Error().Err(runErr).Msg("import failed")
	}

	if err := o.tasks.Finish(ctx, run.TaskID, counts, status); err != nil {
		log.Error().Err(err).Msg("failed to finish import task")
		if runErr == nil {
			runErr = fmt.Errorf("%w: %v", ErrTaskUpdate, err)
		}
	}

	o.afterRun(ctx, run, counts, status, runErr, log)

	tally := batcher.Tally()
	if len(tally.ErrorMessages) > 0 {
		log.Warn().Strs("errors", tally.ErrorMessages).Int64("error_count", tally.Errors).Msg("import row errors")
	}
	log.Info().
		Str("status", string(status)).
		Int64("total", counts.Total).
		Int64("added", counts.Added).
		Int64("existing", counts.Existing).
		Int64("errors", counts.Errors).
		Msg("import finished")

	return ImportResult{Counts: counts, Status: status}, runErr
}

func (o *Orchestrator) stream(ctx context.Context, run ImportRun, batcher *DedupBatcher, added *int64, log zerolog.Logger) error {
	if o.archiver != nil {
		key := fmt.Sprintf("imports/%s/%s", run.TaskID, run.Stream.Name())
		if err := o.archiver.Archive(ctx, key, run.Stream); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to archive import source")
		}
	}

	reader, err := o.opener.Open(run.Stream)
	if err != nil {
		return fmt.Errorf("open import source: %w", err)
	}
	defer reader.Close()

	persist := func(batch *Batch) {
		if batch == nil || len(batch.Customers) == 0 {
			return
		}
		inserted, err := o.store.InsertBatch(ctx, run.TaskID, batch.Customers)
		if err != nil {
			log.Error().Err(err).Int("batch_size", len(batch.Customers)).Msg("batch insert failed")
			batcher.FailBatch(batch.Customers, err)
			return
		}
		*added += inserted
	}

	report := func() {
		if err := o.tasks.UpdateProgress(ctx, run.TaskID, batcher.Counts(*added)); err != nil {
			log.Warn().Err(err).Msg("failed to update import progress")
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		row, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		var rowErr *domain.RowError
		if errors.As(err, &rowErr) {
			batcher.RecordRowError(rowErr)
			continue
		}
		if err != nil {
			return fmt.Errorf("read row: %w", err)
		}

		batch, err := batcher.Add(ctx, row)
		if err != nil {
			log.Error().Err(err).Msg("phone lookup failed, batch counted as errors")
		}
		if batch != nil {
			persist(batch)
			report()
		}
	}

	batch, err := batcher.Flush(ctx)
	if err != nil {
		log.Error().Err(err).Msg("phone lookup failed, batch counted as errors")
	}
	if batch != nil {
		persist(batch)
		report()
	}
	return nil
}

// afterRun runs even when ctx is cancelled so the count cache never outlives
// committed batches.
func (o *Orchestrator) afterRun(ctx context.Context, run ImportRun, counts domain.ImportCounts, status domain.TaskStatus, runErr error, log zerolog.Logger) {
	bg := context.WithoutCancel(ctx)

	if o.cache != nil {
		if err := o.cache.Invalidate(bg); err != nil {
			log.Warn().Err(err).Msg("failed to invalidate customer count cache")
		}
	}

	if o.recorder == nil {
		return
	}
	entry := domain.OperationLog{
		Username:  run.Actor.Username,
		Operation: domain.OperationImport,
		Target:    domain.TargetCustomer,
		Description: fmt.Sprintf("import %s: total %d, added %d, existing %d, errors %d, status %s",
			run.Stream.Name(), counts.Total, counts.Added, counts.Existing, counts.Errors, status),
		Status:   domain.OperationSuccess,
		ClientIP: run.Actor.ClientIP,
		TaskID:   run.TaskID,
	}
	if runErr != nil || status == domain.TaskStatusFailed {
		entry.Status = domain.OperationFailure
		if runErr != nil {
			entry.ErrorMessage = truncateReason(runErr.Error())
		}
	}
	if err := o.recorder.Record(bg, entry); err != nil {
		log.Warn().Err(err).Msg("failed to record import operation")
	}
}

// truncateReason keeps at most maxLen characters and never splits a
// multi-byte rune.
func truncateReason(reason string) string {
	const maxLen = 1000
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) <= maxLen {
		return reason
	}
	count := 0
	for i := range reason {
		if count == maxLen {
			return reason[:i]
		}
		count++
	}
	return reason
}
