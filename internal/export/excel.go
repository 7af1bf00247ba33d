// Package export renders an analysis run's employee summary as an Excel
// workbook for HR consumption.
package export

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/hrops/invoice-insight/internal/invoice"
)

const sheetName = "Employee Summary"

var headers = []string{"Employee Name", "Invoice Count", "Invoice Mode", "Reimbursement Status", "Description"}

// Exporter builds summary workbooks
type Exporter struct {
	logger *zap.Logger
}

// NewExporter creates a new exporter
func NewExporter(logger *zap.Logger) *Exporter {
	return &Exporter{logger: logger}
}

// BuildWorkbook renders the summary as a single-sheet workbook, one row
// per employee in sorted name order. The caller owns the returned file.
func (e *Exporter) BuildWorkbook(summary map[string]invoice.EmployeeSummary) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		e.logger.Warn("Failed to remove default sheet", zap.Error(err))
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header: %w", err)
		}
	}

	names := make([]string, 0, len(summary))
	for name := range summary {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, name := range names {
		entry := summary[name]
		row := i + 2
		values := []interface{}{name, entry.InvoiceCount, entry.InvoiceMode, entry.ReimbursementStatus, entry.Description}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, fmt.Errorf("failed to compute cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	e.logger.Debug("Built summary workbook", zap.Int("employees", len(names)))
	return f, nil
}
