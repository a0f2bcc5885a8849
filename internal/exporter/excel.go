package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"demandcli/pkg/contracts/domain"
)

// Column widths are derived from cell content, clamped to keep the sheet
// readable for both short flags and long descriptions.
const (
	excelMinColWidth = 10.0
	excelMaxColWidth = 48.0

	// Only the leading rows inform column widths; scanning a full wide
	// sales table would dominate export time for no visible gain.
	excelWidthSampleRows = 100
)

// ExcelWriter provides xlsx workbook export functionality
type ExcelWriter struct {
	logger *slog.Logger
}

// NewExcelWriter creates a new Excel writer instance
func NewExcelWriter(logger *slog.Logger) *ExcelWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelWriter{logger: logger}
}

// Write builds a single-sheet workbook holding the table and streams it to
// out. The sheet carries the dataset name, the header row is bold and
// column widths follow the content.
func (w *ExcelWriter) Write(out io.Writer, sheet string, frame *domain.Frame) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet = sheetName(sheet)
	f.SetSheetName(f.GetSheetName(0), sheet)

	if len(frame.Columns) > 0 {
		header := make([]interface{}, len(frame.Columns))
		for i, col := range frame.Columns {
			header[i] = col
		}
		cell, err := excelize.CoordinatesToCellName(1, 1)
		if err != nil {
			return fmt.Errorf("failed to address header row: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &header); err != nil {
			return fmt.Errorf("failed to write header row: %w", err)
		}
	}

	for i, row := range frame.Rows {
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i, err)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	if err := w.styleSheet(f, sheet, frame); err != nil {
		return err
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	return nil
}

// styleSheet bolds the header row and sizes every column to its content.
func (w *ExcelWriter) styleSheet(f *excelize.File, sheet string, frame *domain.Frame) error {
	if len(frame.Columns) == 0 {
		return nil
	}

	endCol, err := excelize.ColumnNumberToName(len(frame.Columns))
	if err != nil {
		return fmt.Errorf("failed to name last column: %w", err)
	}

	styleID, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", endCol+"1", styleID); err != nil {
		return fmt.Errorf("failed to style header row: %w", err)
	}

	for j, col := range frame.Columns {
		name, err := excelize.ColumnNumberToName(j + 1)
		if err != nil {
			continue
		}
		f.SetColWidth(sheet, name, name, columnWidth(frame, j, col))
	}

	return nil
}

// columnWidth measures the widest cell in the leading rows of one column.
func columnWidth(frame *domain.Frame, idx int, header string) float64 {
	widest := len(header)
	rows := len(frame.Rows)
	if rows > excelWidthSampleRows {
		rows = excelWidthSampleRows
	}
	for i := 0; i < rows; i++ {
		if idx < len(frame.Rows[i]) && len(frame.Rows[i][idx]) > widest {
			widest = len(frame.Rows[i][idx])
		}
	}

	width := float64(widest) + 2
	if width < excelMinColWidth {
		return excelMinColWidth
	}
	if width > excelMaxColWidth {
		return excelMaxColWidth
	}
	return width
}

// sheetName clamps a dataset key to Excel's 31-character sheet name limit.
func sheetName(key string) string {
	if key == "" {
		return "Data"
	}
	if len(key) > 31 {
		return key[:31]
	}
	return key
}
