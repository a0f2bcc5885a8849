package domain

// DataSource records which branch produced a loaded table.
type DataSource string

const (
	// DataSourceReal means the table came from the source file on disk.
	DataSourceReal DataSource = "real"
	// DataSourceSynthetic means the source file was unusable and a
	// synthetic substitute was generated instead.
	DataSourceSynthetic DataSource = "synthetic"
)

// SummaryStats holds the dashboard-level KPIs derived from the loaded tables.
type SummaryStats struct {
	TotalProducts     int     `json:"total_products"`
	ZeroInflationRate float64 `json:"zero_inflation_rate"`
	TestSuccessRate   float64 `json:"test_success_rate"`
	Category          string  `json:"category"`
}
