package customer

import "time"

type TaskStatus string

const (
	TaskStatusProcessing     TaskStatus = "PROCESSING"
	TaskStatusComplete       TaskStatus = "COMPLETE"
	TaskStatusPartialFailure TaskStatus = "PARTIAL_FAILURE"
	TaskStatusPartialSkip    TaskStatus = "PARTIAL_SKIP"
	TaskStatusFailed         TaskStatus = "FAILED"
)

func (s TaskStatus) Terminal() bool {
	return s != TaskStatusProcessing && s != ""
}

type ImportTask struct {
	ID            string
	FileName      string
	TotalCount    int64
	AddedCount    int64
	ExistingCount int64
	ErrorCount    int64
	Status        TaskStatus
	Remark        string
	CreatedAt     time.Time
	CompletedAt   *time.Time
}

// ImportCounts are the running counters of one import run.
type ImportCounts struct {
	Total    int64
	Added    int64
	Existing int64
	Errors   int64
}

// ClassifyStatus picks the terminal status of a finished run. Errors win over
// skips, and a run with nothing added is a failure.
func ClassifyStatus(c ImportCounts) TaskStatus {
	switch {
	case c.Errors > 0:
		return TaskStatusPartialFailure
	case c.Existing > 0 && c.Added > 0:
		return TaskStatusPartialSkip
	case c.Added > 0:
		return TaskStatusComplete
	default:
		return TaskStatusFailed
	}
}

type TaskPage struct {
	Items []ImportTask
	Total int64
	Page  int
	Size  int
}
