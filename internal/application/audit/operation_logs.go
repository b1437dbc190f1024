package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
)

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

var (
	ErrInvalidTimeRange  = errors.New("start time is after end time")
	ErrListOperationLogs = errors.New("failed to list operation logs")
)

type OperationLogOutput struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Operation    string    `json:"operation"`
	Target       string    `json:"target"`
	Description  string    `json:"description,omitempty"`
	Status       string    `json:"status"`
	ClientIP     string    `json:"client_ip,omitempty"`
	TaskID       string    `json:"upload_task_id,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type ListOperationLogsInput struct {
	Username  string
	Operation string
	Target    string
	Status    string
	From      *time.Time
	To        *time.Time
	Page      int
	Size      int
}

type ListOperationLogsOutput struct {
	Items []OperationLogOutput `json:"items"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Size  int                  `json:"size"`
}

// ListOperationLogs pages through the operation log, newest first. Operation,
// target and status compare case-insensitively against the stored codes.
type ListOperationLogs interface {
	Execute(ctx context.Context, in ListOperationLogsInput) (ListOperationLogsOutput, error)
}

type listOperationLogs struct {
	repo domain.OperationLogReader
}

func NewListOperationLogs(repo domain.OperationLogReader) ListOperationLogs {
	return &listOperationLogs{repo: repo}
}

func (uc *listOperationLogs) Execute(ctx context.Context, in ListOperationLogsInput) (ListOperationLogsOutput, error) {
	if in.From != nil && in.To != nil && in.From.After(*in.To) {
		return ListOperationLogsOutput{}, ErrInvalidTimeRange
	}

	page, size := in.Page, in.Size
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	result, err := uc.repo.List(ctx, domain.OperationLogFilter{
		Username:  strings.TrimSpace(in.Username),
		Operation: strings.ToUpper(strings.TrimSpace(in.Operation)),
		Target:    strings.ToUpper(strings.TrimSpace(in.Target)),
		Status:    strings.ToUpper(strings.TrimSpace(in.Status)),
		From:      in.From,
		To:        in.To,
		Page:      page,
		Size:      size,
	})
	if err != nil {
		return ListOperationLogsOutput{}, fmt.Errorf("%w: %v", ErrListOperationLogs, err)
	}

	items := make([]OperationLogOutput, 0, len(result.Items))
	for _, entry := range result.Items {
		items = append(items, OperationLogOutput{
			ID:           entry.ID,
			Username:     entry.Username,
			Operation:    entry.Operation,
			Target:       entry.Target,
			Description:  entry.Description,
			Status:       entry.Status,
			ClientIP:     entry.ClientIP,
			TaskID:       entry.TaskID,
			ErrorMessage: entry.ErrorMessage,
			CreatedAt:    entry.CreatedAt,
		})
	}
	return ListOperationLogsOutput{Items: items, Total: result.Total, Page: page, Size: size}, nil
}
