package importing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
)

const (
	defaultTaskPageSize = 20
	maxTaskPageSize     = 200
	deleteGroupSize     = 500
	maxRemarkLength     = 500
)

type TaskOutput struct {
	ID            string     `json:"id"`
	FileName      string     `json:"file_name"`
	Status        string     `json:"status"`
	TotalCount    int64      `json:"total_count"`
	AddedCount    int64      `json:"added_count"`
	ExistingCount int64      `json:"existing_count"`
	ErrorCount    int64      `json:"error_count"`
	Remark        string     `json:"remark,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

func toTaskOutput(t domain.ImportTask) TaskOutput {
	return TaskOutput{
		ID:            t.ID,
		FileName:      t.FileName,
		Status:        string(t.Status),
		TotalCount:    t.TotalCount,
		AddedCount:    t.AddedCount,
		ExistingCount: t.ExistingCount,
		ErrorCount:    t.ErrorCount,
		Remark:        t.Remark,
		CreatedAt:     t.CreatedAt,
		CompletedAt:   t.CompletedAt,
	}
}

type taskReader interface {
	Get(ctx context.Context, id string) (domain.ImportTask, error)
	List(ctx context.Context, page, size int) (domain.TaskPage, error)
	LatestProcessing(ctx context.Context) (*domain.ImportTask, error)
}

type ListTasksInput struct {
	Page int
	Size int
}

type ListTasksOutput struct {
	Items []TaskOutput `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Size  int          `json:"size"`
}

type ListTasks interface {
	Execute(ctx context.Context, in ListTasksInput) (ListTasksOutput, error)
}

type listTasks struct {
	repo taskReader
}

func NewListTasks(repo taskReader) ListTasks {
	return &listTasks{repo: repo}
}

func (uc *listTasks) Execute(ctx context.Context, in ListTasksInput) (ListTasksOutput, error) {
	page, size := normalizePage(in.Page, in.Size, defaultTaskPageSize, maxTaskPageSize)

	result, err := uc.repo.List(ctx, page, size)
	if err != nil {
		return ListTasksOutput{}, fmt.Errorf("%w: %v", ErrTaskQuery, err)
	}

	items := make([]TaskOutput, 0, len(result.Items))
	for _, task := range result.Items {
		items = append(items, toTaskOutput(task))
	}
	return ListTasksOutput{Items: items, Total: result.Total, Page: page, Size: size}, nil
}

type GetTaskInput struct {
	ID string
}

// GetTask is the polling endpoint for a running import.
type GetTask interface {
	Execute(ctx context.Context, in GetTaskInput) (TaskOutput, error)
}

type getTask struct {
	repo taskReader
}

func NewGetTask(repo taskReader) GetTask {
	return &getTask{repo: repo}
}

func (uc *getTask) Execute(ctx context.Context, in GetTaskInput) (TaskOutput, error) {
	if _, err := uuid.Parse(in.ID); err != nil {
		return TaskOutput{}, ErrInvalidTaskID
	}

	task, err := uc.repo.Get(ctx, in.ID)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return TaskOutput{}, ErrTaskNotFound
		}
		return TaskOutput{}, fmt.Errorf("%w: %v", ErrTaskQuery, err)
	}
	return toTaskOutput(task), nil
}

// GetLatestProcessingTask returns the newest PROCESSING task, or nil when no
// import is running.
type GetLatestProcessingTask interface {
	Execute(ctx context.Context) (*TaskOutput, error)
}

type getLatestProcessingTask struct {
	repo taskReader
}

func NewGetLatestProcessingTask(repo taskReader) GetLatestProcessingTask {
	return &getLatestProcessingTask{repo: repo}
}

func (uc *getLatestProcessingTask) Execute(ctx context.Context) (*TaskOutput, error) {
	task, err := uc.repo.LatestProcessing(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTaskQuery, err)
	}
	if task == nil {
		return nil, nil
	}
	out := toTaskOutput(*task)
	return &out, nil
}

type taskDeleter interface {
	Delete(ctx context.Context, ids []string) (int64, error)
}

type customerByTaskDeleter interface {
	DeleteByTaskIDs(ctx context.Context, taskIDs []string) (int64, error)
}

type DeleteTasksInput struct {
	IDs           []string
	WithCustomers bool
}

type DeleteTasksOutput struct {
	DeletedTasks     int64 `json:"deleted_tasks"`
	DeletedCustomers int64 `json:"deleted_customers"`
}

// DeleteTasks removes tasks in groups, optionally with the customers they
// imported.
type DeleteTasks interface {
	Execute(ctx context.Context, in DeleteTasksInput) (DeleteTasksOutput, error)
}

type deleteTasks struct {
	tasks     taskDeleter
	customers customerByTaskDeleter
	cache     countCacheInvalidator
}

func NewDeleteTasks(tasks taskDeleter, customers customerByTaskDeleter, cache countCacheInvalidator) DeleteTasks {
	return &deleteTasks{tasks: tasks, customers: customers, cache: cache}
}

func (uc *deleteTasks) Execute(ctx context.Context, in DeleteTasksInput) (DeleteTasksOutput, error) {
	ids := make([]string, 0, len(in.IDs))
	for _, id := range in.IDs {
		id = strings.TrimSpace(id)
		if _, err := uuid.Parse(id); err != nil {
			return DeleteTasksOutput{}, ErrInvalidTaskID
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return DeleteTasksOutput{}, ErrInvalidTaskID
	}

	var out DeleteTasksOutput
	for start := 0; start < len(ids); start += deleteGroupSize {
		end := min(start+deleteGroupSize, len(ids))
		group := ids[start:end]

		if in.WithCustomers {
			n, err := uc.customers.DeleteByTaskIDs(ctx, group)
			if err != nil {
				return out, fmt.Errorf("%w: %v", ErrTaskUpdate, err)
			}
			out.DeletedCustomers += n
		}

		n, err := uc.tasks.Delete(ctx, group)
		if err != nil {
			return out, fmt.Errorf("%w: %v", ErrTaskUpdate, err)
		}
		out.DeletedTasks += n
	}

	if out.DeletedCustomers > 0 && uc.cache != nil {
		_ = uc.cache.Invalidate(ctx)
	}
	if len(ids) == 1 && out.DeletedTasks == 0 {
		return out, ErrTaskNotFound
	}
	return out, nil
}

type remarkUpdater interface {
	UpdateRemark(ctx context.Context, id, remark string) error
}

type UpdateTaskRemarkInput struct {
	ID     string
	Remark string
}

type UpdateTaskRemark interface {
	Execute(ctx context.Context, in UpdateTaskRemarkInput) error
}

type updateTaskRemark struct {
	repo remarkUpdater
}

func NewUpdateTaskRemark(repo remarkUpdater) UpdateTaskRemark {
	return &updateTaskRemark{repo: repo}
}

func (uc *updateTaskRemark) Execute(ctx context.Context, in UpdateTaskRemarkInput) error {
	if _, err := uuid.Parse(in.ID); err != nil {
		return ErrInvalidTaskID
	}
	remark := strings.TrimSpace(in.Remark)
	if len([]rune(remark)) > maxRemarkLength {
		return ErrRemarkTooLong
	}

	if err := uc.repo.UpdateRemark(ctx, in.ID, remark); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("%w: %v", ErrTaskUpdate, err)
	}
	return nil
}

func normalizePage(page, size, defaultSize, maxSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = defaultSize
	}
	if size > maxSize {
		size = maxSize
	}
	return page, size
}
