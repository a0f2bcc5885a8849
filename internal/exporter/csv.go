package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"demandcli/pkg/contracts/domain"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// Write streams a table as CSV to out. A UTF-8 BOM is written first
// (helps Excel recognize UTF-8), then the header row, then every data row.
func (w *CSVWriter) Write(out io.Writer, frame *domain.Frame) error {
	if _, err := out.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(out)

	if len(frame.Columns) > 0 {
		if err := writer.Write(frame.Columns); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range frame.Rows {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
