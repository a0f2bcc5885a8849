package dataset

import (
	"log/slog"
	"strconv"
	"strings"

	"demandcli/internal/config"
	"demandcli/pkg/contracts/domain"
)

// Aggregator derives the dashboard-level KPIs from loaded tables. It never
// fails: whenever the inputs are unusable it falls back to the static
// default KPI set from the configuration.
type Aggregator struct {
	defaults config.KeyMetrics
	logger   *slog.Logger
}

// NewAggregator creates a summary statistics aggregator.
func NewAggregator(defaults config.KeyMetrics, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		defaults: defaults,
		logger:   logger,
	}
}

// Summarize computes the KPI set from a sales table and a test results
// table. The zero-inflation rate is the mean of per-day-column zero rates.
// A missing status column falls back to the configured default success
// rate; an unusable sales table falls back to the whole default set.
func (a *Aggregator) Summarize(sales, tests *domain.Frame) domain.SummaryStats {
	if sales == nil {
		a.logger.Warn("no sales table, serving default summary statistics")
		return a.Defaults()
	}

	dayColumns := sales.ColumnsWithPrefix(config.DayColumnPrefix)
	if len(dayColumns) == 0 || sales.RowCount() == 0 {
		a.logger.Warn("sales table has no usable day columns, serving default summary statistics",
			slog.Int("rows", sales.RowCount()),
			slog.Int("day_columns", len(dayColumns)))
		return a.Defaults()
	}

	return domain.SummaryStats{
		TotalProducts:     sales.RowCount(),
		ZeroInflationRate: zeroInflationRate(sales, dayColumns),
		TestSuccessRate:   a.successRate(tests),
		Category:          a.defaults.Category,
	}
}

// Defaults returns the static KPI set served when live values cannot be
// derived.
func (a *Aggregator) Defaults() domain.SummaryStats {
	return domain.SummaryStats{
		TotalProducts:     a.defaults.TotalProducts,
		ZeroInflationRate: a.defaults.ZeroInflationRate,
		TestSuccessRate:   a.defaults.TestSuccessRate,
		Category:          a.defaults.Category,
	}
}

// zeroInflationRate computes the fraction of zero cells per day column,
// averaged across day columns.
func zeroInflationRate(sales *domain.Frame, dayColumns []string) float64 {
	total := float64(sales.RowCount())
	sum := 0.0
	for _, col := range dayColumns {
		idx := sales.ColumnIndex(col)
		zeros := 0
		for _, row := range sales.Rows {
			if isZeroCell(row[idx]) {
				zeros++
			}
		}
		sum += float64(zeros) / total
	}
	return sum / float64(len(dayColumns))
}

func isZeroCell(cell string) bool {
	value, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	return err == nil && value == 0
}

// successRate is the fraction of test rows whose status is PASS, or the
// configured default when the table is empty or lacks a status column.
func (a *Aggregator) successRate(tests *domain.Frame) float64 {
	if tests == nil || tests.RowCount() == 0 || !tests.HasColumn("status") {
		return a.defaults.TestSuccessRate
	}

	idx := tests.ColumnIndex("status")
	passed := 0
	for _, row := range tests.Rows {
		if row[idx] == string(domain.TestStatusPass) {
			passed++
		}
	}
	return float64(passed) / float64(tests.RowCount())
}
