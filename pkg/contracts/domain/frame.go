package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Frame is an ordered, column-named table of string cells. It is the
// common currency between the dataset loader, the schema validator and
// the rendering layer: CSV-native, with typed access on demand.
type Frame struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// NewFrame creates an empty frame with the given column set.
func NewFrame(columns ...string) *Frame {
	return &Frame{
		Columns: columns,
		Rows:    make([][]string, 0),
	}
}

// ColumnIndex returns the position of the named column, or -1 if absent.
func (f *Frame) ColumnIndex(name string) int {
	for i, col := range f.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the named column exists.
func (f *Frame) HasColumn(name string) bool {
	return f.ColumnIndex(name) >= 0
}

// RowCount returns the number of data rows.
func (f *Frame) RowCount() int {
	return len(f.Rows)
}

// ColumnCount returns the number of columns.
func (f *Frame) ColumnCount() int {
	return len(f.Columns)
}

// AppendRow adds a row to the frame. The row must have one cell per column.
func (f *Frame) AppendRow(cells []string) error {
	if len(cells) != len(f.Columns) {
		return fmt.Errorf("row has %d cells, frame has %d columns", len(cells), len(f.Columns))
	}
	f.Rows = append(f.Rows, cells)
	return nil
}

// Cell returns the value at (row, column name). The second return is false
// when the row index is out of range or the column does not exist.
func (f *Frame) Cell(row int, column string) (string, bool) {
	idx := f.ColumnIndex(column)
	if idx < 0 || row < 0 || row >= len(f.Rows) {
		return "", false
	}
	return f.Rows[row][idx], true
}

// Float parses the cell at (row, column name) as a float64.
func (f *Frame) Float(row int, column string) (float64, error) {
	cell, ok := f.Cell(row, column)
	if !ok {
		return 0, fmt.Errorf("no cell at row %d column %q", row, column)
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, fmt.Errorf("cell %q at row %d column %q is not numeric: %w", cell, row, column, err)
	}
	return value, nil
}

// Int parses the cell at (row, column name) as an int.
func (f *Frame) Int(row int, column string) (int, error) {
	cell, ok := f.Cell(row, column)
	if !ok {
		return 0, fmt.Errorf("no cell at row %d column %q", row, column)
	}
	value, err := strconv.Atoi(strings.TrimSpace(cell))
	if err != nil {
		return 0, fmt.Errorf("cell %q at row %d column %q is not an integer: %w", cell, row, column, err)
	}
	return value, nil
}

// ColumnValues returns every cell of the named column in row order.
// Returns nil if the column does not exist.
func (f *Frame) ColumnValues(name string) []string {
	idx := f.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	values := make([]string, len(f.Rows))
	for i, row := range f.Rows {
		values[i] = row[idx]
	}
	return values
}

// ColumnsWithPrefix returns the names of all columns starting with prefix,
// in declaration order.
func (f *Frame) ColumnsWithPrefix(prefix string) []string {
	var matched []string
	for _, col := range f.Columns {
		if strings.HasPrefix(col, prefix) {
			matched = append(matched, col)
		}
	}
	return matched
}

// FilterRows returns a new frame containing only the rows for which keep
// returns true on the named column's cell. Row slices are shared with the
// receiver; callers must not mutate them. A missing column yields an empty
// frame with the same column set.
func (f *Frame) FilterRows(column string, keep func(string) bool) *Frame {
	filtered := &Frame{
		Columns: f.Columns,
		Rows:    make([][]string, 0, len(f.Rows)),
	}
	idx := f.ColumnIndex(column)
	if idx < 0 {
		return filtered
	}
	for _, row := range f.Rows {
		if keep(row[idx]) {
			filtered.Rows = append(filtered.Rows, row)
		}
	}
	return filtered
}

// Slice returns a new frame holding at most limit rows starting at offset.
// Out-of-range bounds are clamped; row slices are shared with the receiver.
func (f *Frame) Slice(offset, limit int) *Frame {
	if offset < 0 {
		offset = 0
	}
	if offset > len(f.Rows) {
		offset = len(f.Rows)
	}
	end := offset + limit
	if limit < 0 || end > len(f.Rows) {
		end = len(f.Rows)
	}
	return &Frame{
		Columns: f.Columns,
		Rows:    f.Rows[offset:end],
	}
}
