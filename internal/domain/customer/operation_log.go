package customer

import "time"

const (
	OperationImport = "IMPORT"
	TargetCustomer  = "CUSTOMER"

	OperationSuccess = "SUCCESS"
	OperationFailure = "FAILURE"
)

// OperationLog records who ran an operation and how it ended.
type OperationLog struct {
	ID           int64
	Username     string
	Operation    string
	Target       string
	Description  string
	Status       string
	ClientIP     string
	TaskID       string
	ErrorMessage string
	CreatedAt    time.Time
}

// OperationLogFilter narrows an operation log listing. Username matches by
// substring; the other text fields match exactly. Zero values match all.
type OperationLogFilter struct {
	Username  string
	Operation string
	Target    string
	Status    string
	From      *time.Time
	To        *time.Time
	Page      int
	Size      int
}

type OperationLogPage struct {
	Items []OperationLog
	Total int64
	Page  int
	Size  int
}
