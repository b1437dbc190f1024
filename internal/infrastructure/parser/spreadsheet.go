package parser

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
)

// Sheet parts above this size are unzipped to a temp file, which Rows then
// decodes incrementally. The compressed workbook itself stays in memory.
const sheetXMLMemoryLimit = 1 << 20

// xlsxReader walks the first sheet with excelize's row iterator.
type xlsxReader struct {
	file       *excelize.File
	rows       *excelize.Rows
	headerRows int
	line       int64
}

func newXLSXReader(rc io.ReadCloser, headerRows int, maxSize int64) (*xlsxReader, error) {
	defer rc.Close()

	f, err := excelize.OpenReader(&limitedReader{r: rc, remaining: maxSize}, excelize.Options{
		UnzipXMLSizeLimit: sheetXMLMemoryLimit,
	})
	if err != nil {
		if errors.Is(err, domain.ErrFileTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("open workbook: %w", err)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, fmt.Errorf("open workbook: no sheets")
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open sheet %s: %w", sheets[0], err)
	}

	return &xlsxReader{file: f, rows: rows, headerRows: headerRows}, nil
}

func (s *xlsxReader) Next() (domain.RawRow, error) {
	for s.rows.Next() {
		s.line++

		cols, err := s.rows.Columns()
		if err != nil {
			return domain.RawRow{}, fmt.Errorf("read row %d: %w", s.line, err)
		}
		if s.line <= int64(s.headerRows) {
			continue
		}
		if blank(cols) {
			continue
		}
		return domain.RawRow{Line: s.line, Values: cols}, nil
	}

	if err := s.rows.Error(); err != nil {
		return domain.RawRow{}, fmt.Errorf("read sheet: %w", err)
	}
	return domain.RawRow{}, io.EOF
}

// Close also removes the temp files excelize unzipped the sheet into.
func (s *xlsxReader) Close() error {
	rowsErr := s.rows.Close()
	fileErr := s.file.Close()
	if rowsErr != nil {
		return rowsErr
	}
	return fileErr
}

// limitedReader fails once more than remaining bytes are read, unlike
// io.LimitReader which ends the stream silently.
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, domain.ErrFileTooLarge
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, fmt.Errorf("%w: workbook is larger than the workbook limit", domain.ErrFileTooLarge)
	}
	return n, err
}

func readWorkbook(r io.Reader, maxSize int64) ([]byte, error) {
	data, err := io.ReadAll(&limitedReader{r: r, remaining: maxSize})
	if err != nil {
		if errors.Is(err, domain.ErrFileTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	return data, nil
}
