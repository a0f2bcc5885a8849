// Package exporter provides downloadable dataset exports for Demand Pulse.
//
// This package contains three main components:
//
// CSVWriter: Streams a table as CSV with a UTF-8 BOM so spreadsheet
// applications recognize the encoding.
//
// ExcelWriter: Builds an xlsx workbook with one sheet per export, a bold
// header row and readable column widths.
//
// DatasetExporter: Dispatches on the requested format and enforces the
// configured row cap. Tables over the cap are rejected with a
// RowLimitError rather than truncated, so a download never silently
// drops rows.
//
// Example usage:
//
//	exp := exporter.NewDatasetExporter(cfg.Data.ExportLimit, logger)
//
//	format, err := exporter.ParseFormat(r.URL.Query().Get("format"))
//	if err != nil {
//		// respond 400
//	}
//
//	err = exp.Export(r.Context(), w, "sales_train", frame, format)
package exporter
