package parser

import (
	"bytes"
	"fmt"
	"io"

	"github.com/extrame/xls"

	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
)

// rows built from cell records alone carry no column bounds
const minXLSColumns = 4

// xlsReader serves legacy BIFF workbooks. The library decodes the whole
// workbook up front, so the source is read into memory under the workbook
// size ceiling first.
type xlsReader struct {
	sheet      *xls.WorkSheet
	next       int
	headerRows int
}

func newXLSReader(rc io.ReadCloser, headerRows int, maxSize int64) (reader *xlsReader, err error) {
	defer rc.Close()

	data, err := readWorkbook(rc, maxSize)
	if err != nil {
		return nil, err
	}

	// malformed BIFF records make the decoder panic
	defer func() {
		if r := recover(); r != nil {
			reader, err = nil, fmt.Errorf("open workbook: corrupt xls file: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	if wb == nil || wb.NumSheets() == 0 {
		return nil, fmt.Errorf("open workbook: no sheets")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("open workbook: no sheets")
	}

	return &xlsReader{sheet: sheet, headerRows: headerRows}, nil
}

func (x *xlsReader) Next() (domain.RawRow, error) {
	for x.next <= int(x.sheet.MaxRow) {
		index := x.next
		x.next++

		row := x.sheet.Row(index)
		if row == nil || index < x.headerRows {
			continue
		}

		width := max(row.LastCol(), minXLSColumns)
		values := make([]string, width)
		for c := 0; c < width; c++ {
			values[c] = row.Col(c)
		}
		if blank(values) {
			continue
		}
		return domain.RawRow{Line: int64(index) + 1, Values: values}, nil
	}
	return domain.RawRow{}, io.EOF
}

func (x *xlsReader) Close() error {
	return nil
}
