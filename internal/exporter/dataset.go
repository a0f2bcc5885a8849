package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"demandcli/pkg/contracts/domain"
)

// RowLimitError reports an export rejected for exceeding the row cap.
type RowLimitError struct {
	Rows  int
	Limit int
}

func (e *RowLimitError) Error() string {
	return fmt.Sprintf("export of %d rows exceeds the limit of %d rows", e.Rows, e.Limit)
}

// DatasetExporter streams dataset tables in downloadable formats.
type DatasetExporter struct {
	csv    *CSVWriter
	excel  *ExcelWriter
	limit  int
	logger *slog.Logger
}

// NewDatasetExporter creates a dataset exporter enforcing the given row
// cap. A cap of zero or less disables the check.
func NewDatasetExporter(limit int, logger *slog.Logger) *DatasetExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetExporter{
		csv:    NewCSVWriter(logger),
		excel:  NewExcelWriter(logger),
		limit:  limit,
		logger: logger,
	}
}

// Export writes the table to out in the requested format. Tables over the
// row cap are rejected outright, never truncated.
func (e *DatasetExporter) Export(ctx context.Context, out io.Writer, key string, frame *domain.Frame, format Format) error {
	if e.limit > 0 && frame.RowCount() > e.limit {
		return &RowLimitError{Rows: frame.RowCount(), Limit: e.limit}
	}

	start := time.Now()

	var err error
	switch format {
	case FormatXLSX:
		err = e.excel.Write(out, key, frame)
	case FormatCSV:
		err = e.csv.Write(out, frame)
	default:
		return fmt.Errorf("unknown export format: %s", format)
	}
	if err != nil {
		return fmt.Errorf("failed to export %s as %s: %w", key, format, err)
	}

	e.logger.InfoContext(ctx, "dataset exported",
		slog.String("dataset", key),
		slog.String("format", string(format)),
		slog.Int("rows", frame.RowCount()),
		slog.Duration("elapsed", time.Since(start)))

	return nil
}

// Limit returns the configured row cap.
func (e *DatasetExporter) Limit() int {
	return e.limit
}
