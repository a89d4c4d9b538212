// Package export produces the back-office spreadsheet export of the document
// list.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/studioware/backoffice/internal/billing"
)

// ExcelExporter writes documents into an xlsx workbook.
type ExcelExporter struct {
	logger *zap.Logger
}

// NewExcelExporter creates an exporter.
func NewExcelExporter(logger *zap.Logger) *ExcelExporter {
	return &ExcelExporter{logger: logger}
}

var headerRow = []string{
	"Number", "Kind", "Project", "Customer", "Email", "Issued", "Due",
	"Status", "Subtotal", "Discount", "Total",
}

// Export writes the documents to a single-sheet workbook and returns the file
// bytes. Monetary cells carry the rounded display values.
func (e *ExcelExporter) Export(docs []billing.Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	for col, title := range headerRow {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, doc := range docs {
		row := i + 2
		values := []any{
			doc.Number,
			string(doc.Kind),
			doc.ProjectName,
			doc.Customer.Name,
			doc.Customer.Email,
			doc.IssueDate.Format("02/01/2006"),
			doc.DueDate.Format("02/01/2006"),
			string(doc.Status),
			billing.Round2(doc.Totals.Subtotal),
			billing.Round2(doc.Totals.TotalDiscount),
			billing.Round2(doc.Totals.Total),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, fmt.Errorf("failed to compute cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Exported documents to spreadsheet", zap.Int("documents", len(docs)))
	return buf.Bytes(), nil
}
