package parser

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const templateSheet = "Customers"

var (
	templateHeader  = []any{"Name", "Phone", "Email", "Address"}
	templateExample = []any{"Zhang San", "13800138001", "zhangsan@example.com", "88 Jianguo Road, Chaoyang, Beijing"}
)

// WriteTemplate writes an xlsx workbook with the import column layout and one
// example row.
func WriteTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", templateSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(templateSheet, "A1", &templateHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetSheetRow(templateSheet, "A2", &templateExample); err != nil {
		return fmt.Errorf("write example: %w", err)
	}
	for col, width := range map[string]float64{"A": 20, "B": 16, "C": 24, "D": 40} {
		if err := f.SetColWidth(templateSheet, col, col, width); err != nil {
			return fmt.Errorf("set width: %w", err)
		}
	}

	return f.Write(w)
}
