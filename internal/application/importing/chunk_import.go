package importing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
)

type chunkStore interface {
	SaveChunk(part domain.ChunkPart, body io.Reader) (domain.ChunkProgress, error)
	Merge(uploadID string) (domain.StoredFile, error)
	Cleanup(uploadID string) error
}

type UploadChunkInput struct {
	UploadID    string
	ChunkIndex  int
	TotalChunks int
	FileName    string
	TotalSize   int64
	Body        io.Reader
}

type UploadChunkOutput struct {
	UploadID   string `json:"upload_id"`
	ChunkIndex int    `json:"chunk_index"`
	Received   int    `json:"received"`
	Total      int    `json:"total"`
	Complete   bool   `json:"complete"`
}

type UploadChunk interface {
	Execute(ctx context.Context, in UploadChunkInput) (UploadChunkOutput, error)
}

type uploadChunk struct {
	chunks      chunkStore
	maxFileSize int64
}

func NewUploadChunk(chunks chunkStore, maxFileSize int64) UploadChunk {
	return &uploadChunk{chunks: chunks, maxFileSize: maxFileSize}
}

func (uc *uploadChunk) Execute(ctx context.Context, in UploadChunkInput) (UploadChunkOutput, error) {
	if in.Body == nil {
		return UploadChunkOutput{}, domain.ErrInvalidChunk
	}
	if err := domain.ValidateImportFileName(in.FileName); err != nil {
		return UploadChunkOutput{}, err
	}
	if uc.maxFileSize > 0 && in.TotalSize > uc.maxFileSize {
		return UploadChunkOutput{}, ErrImportFileTooBig
	}

	progress, err := uc.chunks.SaveChunk(domain.ChunkPart{
		UploadID:    in.UploadID,
		Index:       in.ChunkIndex,
		TotalChunks: in.TotalChunks,
		FileName:    in.FileName,
		TotalSize:   in.TotalSize,
	}, in.Body)
	if err != nil {
		if errors.Is(err, domain.ErrFileTooLarge) {
			// the upload can never complete; free its disk space now
			_ = uc.chunks.Cleanup(in.UploadID)
			return UploadChunkOutput{}, fmt.Errorf("%w: %v", ErrImportFileTooBig, err)
		}
		if isChunkInputError(err) {
			return UploadChunkOutput{}, err
		}
		return UploadChunkOutput{}, fmt.Errorf("%w: %v", ErrStoreChunk, err)
	}

	return UploadChunkOutput{
		UploadID:   progress.UploadID,
		ChunkIndex: in.ChunkIndex,
		Received:   progress.Received,
		Total:      progress.Total,
		Complete:   progress.Complete(),
	}, nil
}

type MergeChunksInput struct {
	UploadID string
	FileName string
	Actor    Actor
}

// MergeAndImport assembles a finished chunked upload and queues it for import.
// The upload directory is removed once the import run ends.
type MergeAndImport interface {
	Execute(ctx context.Context, in MergeChunksInput) (StartImportOutput, error)
}

type mergeAndImport struct {
	chunks    chunkStore
	tasks     importTaskCreator
	scheduler jobScheduler
	runner    importRunner
	log       zerolog.Logger
}

func NewMergeAndImport(chunks chunkStore, tasks importTaskCreator, scheduler jobScheduler, runner importRunner, log zerolog.Logger) MergeAndImport {
	return &mergeAndImport{
		chunks:    chunks,
		tasks:     tasks,
		scheduler: scheduler,
		runner:    runner,
		log:       log,
	}
}

func (uc *mergeAndImport) Execute(ctx context.Context, in MergeChunksInput) (StartImportOutput, error) {
	if name := strings.TrimSpace(in.FileName); name != "" {
		if err := domain.ValidateImportFileName(name); err != nil {
			return StartImportOutput{}, err
		}
	}

	merged, err := uc.chunks.Merge(in.UploadID)
	if err != nil {
		if errors.Is(err, domain.ErrUploadNotFound) || errors.Is(err, domain.ErrUploadIncomplete) {
			return StartImportOutput{}, err
		}
		uc.cleanup(in.UploadID)
		if errors.Is(err, domain.ErrChunkMissing) || errors.Is(err, domain.ErrUploadSizeMismatch) {
			return StartImportOutput{}, err
		}
		return StartImportOutput{}, fmt.Errorf("%w: %v", ErrMergeChunks, err)
	}
	if err := domain.ValidateImportFileName(merged.Name()); err != nil {
		uc.cleanup(in.UploadID)
		return StartImportOutput{}, err
	}

	task, err := uc.tasks.Create(ctx, merged.Name())
	if err != nil {
		uc.cleanup(in.UploadID)
		return StartImportOutput{}, fmt.Errorf("%w: %v", ErrCreateImportTask, err)
	}

	run := ImportRun{TaskID: task.ID, Stream: merged, Actor: in.Actor}
	err = uc.scheduler.Submit(func(jobCtx context.Context) {
		defer uc.cleanup(in.UploadID)
		_, _ = uc.runner.Run(jobCtx, run)
	})
	if err != nil {
		uc.cleanup(in.UploadID)
		if finishErr := uc.tasks.Finish(context.WithoutCancel(ctx), task.ID, domain.ImportCounts{}, domain.TaskStatusFailed); finishErr != nil {
			uc.log.Error().Err(finishErr).Str("task_id", task.ID).Msg("failed to fail unscheduled import task")
		}
		return StartImportOutput{}, fmt.Errorf("%w: %v", ErrScheduleImport, err)
	}

	return StartImportOutput{
		TaskID: task.ID,
		Status: string(domain.TaskStatusProcessing),
	}, nil
}

func (uc *mergeAndImport) cleanup(uploadID string) {
	if err := uc.chunks.Cleanup(uploadID); err != nil {
		uc.log.Warn().Err(err).Str("upload_id", uploadID).Msg("failed to clean up chunk upload")
	}
}

type CleanupUploadInput struct {
	UploadID string
}

type CleanupUpload interface {
	Execute(ctx context.Context, in CleanupUploadInput) error
}

type cleanupUpload struct {
	chunks chunkStore
}

func NewCleanupUpload(chunks chunkStore) CleanupUpload {
	return &cleanupUpload{chunks: chunks}
}

func (uc *cleanupUpload) Execute(ctx context.Context, in CleanupUploadInput) error {
	if err := uc.chunks.Cleanup(in.UploadID); err != nil {
		if errors.Is(err, domain.ErrInvalidUploadID) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrStoreChunk, err)
	}
	return nil
}

func isChunkInputError(err error) bool {
	return errors.Is(err, domain.ErrInvalidUploadID) ||
		errors.Is(err, domain.ErrInvalidChunk) ||
		errors.Is(err, domain.ErrChunkSessionChanged) ||
		errors.Is(err, domain.ErrUploadNotFound)
}
