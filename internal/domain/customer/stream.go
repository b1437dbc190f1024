package customer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// NamedStream is a readable byte source with the file name it was uploaded
// under. Direct uploads and merged chunk files both satisfy it.
type NamedStream interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// StoredFile is a NamedStream backed by a temporary file the owner removes
// when done.
type StoredFile interface {
	NamedStream
	Remove() error
}

// RawRow is one parsed row. Values are in column order: name, phone, email,
// address. Line is 1-based in the source file.
type RawRow struct {
	Line   int64
	Values []string
}

// Value returns the column at i or "" when the row is short.
func (r RawRow) Value(i int) string {
	if i < 0 || i >= len(r.Values) {
		return ""
	}
	return r.Values[i]
}

// RowReader yields rows lazily. Next returns io.EOF after the last row and a
// *RowError for a row that could not be split; reading may continue after a
// RowError.
type RowReader interface {
	Next() (RawRow, error)
	Close() error
}

type RowError struct {
	Line int64
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

var importExtensions = map[string]struct{}{".csv": {}, ".xls": {}, ".xlsx": {}}

// ValidateImportFileName accepts .csv, .xls and .xlsx names, case-insensitively.
func ValidateImportFileName(name string) error {
	if _, ok := importExtensions[strings.ToLower(filepath.Ext(strings.TrimSpace(name)))]; !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
	return nil
}
