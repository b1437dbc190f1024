package importing

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
	"github.com/mohammadpnp/customer-import/internal/worker"
)

type StartImportInput struct {
	FileName string
	Size     int64
	Body     io.Reader
	Actor    Actor
}

type StartImportOutput struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

type StartImport interface {
	Execute(ctx context.Context, in StartImportInput) (StartImportOutput, error)
}

type fileSpooler interface {
	Spool(ctx context.Context, fileName string, r io.Reader, limit int64) (domain.StoredFile, int64, error)
}

type importTaskCreator interface {
	Create(ctx context.Context, fileName string) (domain.ImportTask, error)
	Finish(ctx context.Context, taskID string, counts domain.ImportCounts, status domain.TaskStatus) error
}

type jobScheduler interface {
	Submit(job worker.Job) error
}

type importRunner interface {
	Run(ctx context.Context, run ImportRun) (ImportResult, error)
}

type startImport struct {
	spooler     fileSpooler
	tasks       importTaskCreator
	scheduler   jobScheduler
	runner      importRunner
	maxFileSize int64
	log         zerolog.Logger
}

func NewStartImport(spooler fileSpooler, tasks importTaskCreator, scheduler jobScheduler, runner importRunner, maxFileSize int64, log zerolog.Logger) StartImport {
	return &startImport{
		spooler:     spooler,
		tasks:       tasks,
		scheduler:   scheduler,
		runner:      runner,
		maxFileSize: maxFileSize,
		log:         log,
	}
}

func (uc *startImport) Execute(ctx context.Context, in StartImportInput) (StartImportOutput, error) {
	if in.Body == nil {
		return StartImportOutput{}, ErrInvalidImportFile
	}
	if err := domain.ValidateImportFileName(in.FileName); err != nil {
		return StartImportOutput{}, err
	}
	if in.Size == 0 {
		return StartImportOutput{}, ErrEmptyImportFile
	}
	if uc.maxFileSize > 0 && in.Size > uc.maxFileSize {
		return StartImportOutput{}, ErrImportFileTooBig
	}

	stored, written, err := uc.spooler.Spool(ctx, in.FileName, in.Body, uc.maxFileSize)
	if err != nil {
		if errors.Is(err, domain.ErrFileTooLarge) {
			return StartImportOutput{}, ErrImportFileTooBig
		}
		return StartImportOutput{}, fmt.Errorf("%w: %v", ErrInvalidImportFile, err)
	}
	if written == 0 {
		uc.remove(stored)
		return StartImportOutput{}, ErrEmptyImportFile
	}

	task, err := uc.tasks.Create(ctx, in.FileName)
	if err != nil {
		uc.remove(stored)
		return StartImportOutput{}, fmt.Errorf("%w: %v", ErrCreateImportTask, err)
	}

	run := ImportRun{TaskID: task.ID, Stream: stored, Actor: in.Actor}
	err = uc.scheduler.Submit(func(jobCtx context.Context) {
		defer uc.remove(stored)
		_, _ = uc.runner.Run(jobCtx, run)
	})
	if err != nil {
		uc.remove(stored)
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

func (uc *startImport) remove(stored domain.StoredFile) {
	if err := stored.Remove(); err != nil {
		uc.log.Warn().Err(err).Str("file_name", stored.Name()).Msg("failed to remove spooled import file")
	}
}
