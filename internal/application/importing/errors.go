package importing

import "errors"

var (
	ErrInvalidImportFile = errors.New("invalid import file")
	ErrEmptyImportFile   = errors.New("import file is empty")
	ErrImportFileTooBig  = errors.New("import file exceeds size limit")
	ErrCreateImportTask  = errors.New("failed to create import task")
	ErrScheduleImport    = errors.New("failed to schedule import")
	ErrStoreChunk        = errors.New("failed to store chunk")
	ErrMergeChunks       = errors.New("failed to merge chunks")
	ErrPhoneLookup       = errors.New("phone lookup failed")
	ErrTaskQuery         = errors.New("failed to query import tasks")
	ErrTaskUpdate        = errors.New("failed to update import task")
	ErrInvalidTaskID     = errors.New("invalid task id")
	ErrTaskNotFound      = errors.New("import task not found")
	ErrRemarkTooLong     = errors.New("remark is too long")
)
