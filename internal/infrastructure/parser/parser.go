package parser

import (
	"path/filepath"
	"strings"

	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// DefaultMaxWorkbookSize bounds .xls and .xlsx sources, which are read into
// memory before their rows can be walked.
const DefaultMaxWorkbookSize int64 = 256 << 20

// FormatOf maps a file name to its import format by extension.
func FormatOf(fileName string) (Format, error) {
	if err := domain.ValidateImportFileName(fileName); err != nil {
		return "", err
	}
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(fileName))) {
	case ".csv":
		return FormatCSV, nil
	case ".xls":
		return FormatXLS, nil
	default:
		return FormatXLSX, nil
	}
}

// Opener turns a named stream into a row reader. HeaderRows leading rows are
// dropped before the first data row.
type Opener struct {
	HeaderRows      int
	MaxWorkbookSize int64
}

func NewOpener(headerRows int) *Opener {
	if headerRows < 0 {
		headerRows = 0
	}
	return &Opener{HeaderRows: headerRows, MaxWorkbookSize: DefaultMaxWorkbookSize}
}

// WithMaxWorkbookSize overrides the workbook ceiling. Values <= 0 are ignored.
func (o *Opener) WithMaxWorkbookSize(limit int64) *Opener {
	if limit > 0 {
		o.MaxWorkbookSize = limit
	}
	return o
}

func (o *Opener) Open(stream domain.NamedStream) (domain.RowReader, error) {
	format, err := FormatOf(stream.Name())
	if err != nil {
		return nil, err
	}

	rc, err := stream.Open()
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatCSV:
		return newCSVReader(rc, o.HeaderRows), nil
	case FormatXLS:
		return newXLSReader(rc, o.HeaderRows, o.MaxWorkbookSize)
	default:
		return newXLSXReader(rc, o.HeaderRows, o.MaxWorkbookSize)
	}
}

func blank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
