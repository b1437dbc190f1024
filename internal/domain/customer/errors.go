package customer

import "errors"

var (
	ErrNameRequired      = errors.New("name is required")
	ErrFieldTooLong      = errors.New("field exceeds maximum length")
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrRemarkNotFound    = errors.New("customer remark not found")
	ErrTaskNotFound      = errors.New("import task not found")
	ErrUnsupportedFormat = errors.New("unsupported import file format")
	ErrFileTooLarge      = errors.New("file exceeds size limit")
)
