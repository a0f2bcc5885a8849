package validation

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"demandcli/internal/config"
	"demandcli/pkg/contracts/domain"
)

// SchemaValidator checks loaded tables against their dataset descriptor:
// required columns present, date columns parseable, numeric columns finite
// and within their declared bounds. It never mutates the table and never
// fails; problems are reported as values for the caller to log.
type SchemaValidator struct {
	logger *slog.Logger
}

// NewSchemaValidator creates a new schema validator
func NewSchemaValidator(logger *slog.Logger) *SchemaValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &SchemaValidator{
		logger: logger,
	}
}

// Validate reports whether the frame satisfies the descriptor's contract.
// The returned problems describe every violated requirement, at most one
// per offending column.
func (v *SchemaValidator) Validate(desc config.Descriptor, frame *domain.Frame) (bool, []string) {
	if frame == nil {
		return false, []string{"no table"}
	}

	var problems []string

	for _, col := range desc.RequiredColumns {
		if !frame.HasColumn(col) {
			problems = append(problems, fmt.Sprintf("missing required column %q", col))
		}
	}

	for _, prefix := range desc.RequiredPrefixes {
		if len(frame.ColumnsWithPrefix(prefix)) == 0 {
			problems = append(problems, fmt.Sprintf("no columns with required prefix %q", prefix))
		}
	}

	for _, col := range desc.DateColumns {
		if !frame.HasColumn(col) {
			continue // absence already reported if the column is required
		}
		if problem := checkDateColumn(frame, col); problem != "" {
			problems = append(problems, problem)
		}
	}

	for _, rule := range desc.NumericRules {
		problems = append(problems, checkNumericRule(frame, rule)...)
	}

	if len(problems) > 0 {
		v.logger.Debug("schema validation failed",
			slog.String("dataset", string(desc.Key)),
			slog.Int("problems", len(problems)))
		return false, problems
	}

	return true, nil
}

// checkDateColumn verifies every cell of a date column parses with the
// study date layout. Returns an empty string when the column is clean.
func checkDateColumn(frame *domain.Frame, col string) string {
	idx := frame.ColumnIndex(col)
	for row := range frame.Rows {
		cell := strings.TrimSpace(frame.Rows[row][idx])
		if _, err := time.Parse(config.DateLayout, cell); err != nil {
			return fmt.Sprintf("column %q has unparseable date %q at row %d", col, cell, row)
		}
	}
	return ""
}

// checkNumericRule applies one numeric rule to every column it matches.
// Scanning a column stops at its first violation so a single bad column
// yields a single problem.
func checkNumericRule(frame *domain.Frame, rule config.NumericRule) []string {
	var columns []string
	if rule.Prefix {
		columns = frame.ColumnsWithPrefix(rule.Column)
	} else if frame.HasColumn(rule.Column) {
		columns = []string{rule.Column}
	}

	var problems []string
	for _, col := range columns {
		if problem := checkNumericColumn(frame, col, rule); problem != "" {
			problems = append(problems, problem)
		}
	}
	return problems
}

func checkNumericColumn(frame *domain.Frame, col string, rule config.NumericRule) string {
	idx := frame.ColumnIndex(col)
	for row := range frame.Rows {
		cell := strings.TrimSpace(frame.Rows[row][idx])
		value, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return fmt.Sprintf("column %q has non-numeric value %q at row %d", col, cell, row)
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Sprintf("column %q has non-finite value at row %d", col, row)
		}
		if rule.Min != nil && value < *rule.Min {
			return fmt.Sprintf("column %q has value %v below minimum %v at row %d", col, value, *rule.Min, row)
		}
		if rule.Max != nil && value > *rule.Max {
			return fmt.Sprintf("column %q has value %v above maximum %v at row %d", col, value, *rule.Max, row)
		}
	}
	return ""
}
