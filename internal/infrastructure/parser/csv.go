package parser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type csvReader struct {
	src        io.Closer
	r          *csv.Reader
	headerRows int
	skipped    int
}

func newCSVReader(rc io.ReadCloser, headerRows int) *csvReader {
	br := bufio.NewReader(rc)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	r := csv.NewReader(br)
	r.FieldsPerRecord = -1
	r.ReuseRecord = false

	return &csvReader{src: rc, r: r, headerRows: headerRows}
}

func (c *csvReader) Next() (domain.RawRow, error) {
	for {
		record, err := c.r.Read()
		if err == io.EOF {
			return domain.RawRow{}, io.EOF
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return domain.RawRow{}, fmt.Errorf("read csv: %w", err)
			}
			if c.skipped < c.headerRows {
				c.skipped++
				continue
			}
			return domain.RawRow{}, &domain.RowError{Line: int64(parseErr.StartLine), Err: parseErr.Err}
		}

		if c.skipped < c.headerRows {
			c.skipped++
			continue
		}
		if blank(record) {
			continue
		}

		line, _ := c.r.FieldPos(0)
		return domain.RawRow{Line: int64(line), Values: record}, nil
	}
}

func (c *csvReader) Close() error {
	return c.src.Close()
}
