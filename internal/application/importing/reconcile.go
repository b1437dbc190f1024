package importing

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

const interruptedRemark = "interrupted by restart"

type processingTaskFailer interface {
	FailProcessing(ctx context.Context, remark string) (int64, error)
}

// ReconcileTasks marks every task left PROCESSING by a previous process as
// FAILED. It must run before the worker pool accepts jobs.
type ReconcileTasks interface {
	Execute(ctx context.Context) (int64, error)
}

type reconcileTasks struct {
	repo processingTaskFailer
	log  zerolog.Logger
}

func NewReconcileTasks(repo processingTaskFailer, log zerolog.Logger) ReconcileTasks {
	return &reconcileTasks{repo: repo, log: log}
}

func (uc *reconcileTasks) Execute(ctx context.Context) (int64, error) {
	n, err := uc.repo.FailProcessing(ctx, interruptedRemark)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTaskUpdate, err)
	}
	if n > 0 {
		uc.log.Warn().Int64("tasks", n).Msg("marked interrupted import tasks as failed")
	}
	return n, nil
}
