package config

import "time"

// Application constants for the Demand Pulse system
const (
	// Application Info
	AppName    = "Demand Pulse"
	AppVersion = "1.2.0"

	// Study horizon of the evaluation artifacts (inclusive)
	StudyStartDate = "2011-01-29"
	StudyEndDate   = "2016-06-19"
	DateLayout     = "2006-01-02"

	// Wide sales artifacts carry one numeric column per day, d_1..d_1913
	DayColumnPrefix = "d_"
	TrainDayColumns = 1913

	// Week keys advance from the first week of the study
	FirstWeekKey = 11101

	// Category filter applied to sales and pricing data
	DefaultCategory = "FOODS"

	// Cache Settings
	DefaultCacheTTL = time.Hour

	// Serving caps
	DefaultDisplayLimit = 1000
	DefaultPageSize     = 100
	DefaultExportLimit  = 100000

	// Synthetic data generation
	DefaultSyntheticSeed   = 42
	SyntheticProductCount  = 100
	SyntheticMeanSales     = 5.0
	SNAPDayProbability     = 0.33
	SyntheticPriceMin      = 1.0
	SyntheticPriceMax      = 10.0
	SyntheticExampleCount  = 20
	SyntheticTestCount     = 10
	SyntheticPassCount     = 7
	SyntheticStore         = "CA_1"
	SyntheticState         = "CA"
	SyntheticDepartment    = "FOODS_3"

	// API Endpoints
	APIBasePath       = "/api"
	HealthEndpoint    = "/api/health"
	MetricsEndpoint   = "/metrics"
	WebSocketEndpoint = "/ws"
)

// AvailableModels lists the forecasting models covered by the evaluation,
// in baseline-accuracy order.
var AvailableModels = []string{
	"Naive",
	"Moving Average",
	"Linear Regression",
	"Poisson",
	"LightGBM",
}

// PatternTypes lists the behavioral regimes the evaluation groups products by.
var PatternTypes = []string{
	"Seasonal",
	"Zero-Inflation",
	"Volume Distribution",
	"SNAP Effects",
}

// Stores lists the store identifiers covered by the study.
var Stores = []string{
	"CA_1", "CA_2", "CA_3", "CA_4",
	"TX_1", "TX_2", "TX_3",
	"WI_1", "WI_2", "WI_3",
}

// Departments lists the departments within the study category.
var Departments = []string{"FOODS_1", "FOODS_2", "FOODS_3"}

// DefaultKeyMetrics is the static KPI set served when the summary
// aggregator cannot derive live values from the loaded tables.
var DefaultKeyMetrics = KeyMetrics{
	TotalProducts:     14370,
	TestSuccessRate:   0.70,
	ZeroInflationRate: 0.62,
	Category:          DefaultCategory,
}

// KeyMetrics holds the headline findings of the study, used as fallbacks.
type KeyMetrics struct {
	TotalProducts     int
	TestSuccessRate   float64
	ZeroInflationRate float64
	Category          string
}

// SyntheticModelBaseMAE maps each model to the baseline error its synthetic
// performance rows are derived from.
var SyntheticModelBaseMAE = map[string]float64{
	"Naive":             4.5,
	"Moving Average":    3.8,
	"Linear Regression": 3.2,
	"Poisson":           2.9,
	"LightGBM":          2.3,
}

// SyntheticPatternMultiplier scales the baseline error per pattern type.
var SyntheticPatternMultiplier = map[string]float64{
	"Seasonal":            0.9,
	"Zero-Inflation":      1.1,
	"Volume Distribution": 1.0,
	"SNAP Effects":        1.05,
}

// SyntheticTestScores are the fixed per-test scores of the synthetic test
// results table; the first SyntheticPassCount tests pass, the rest fail.
var SyntheticTestScores = []float64{0.85, 0.92, 0.78, 0.88, 0.91, 0.76, 0.82, 0.45, 0.52, 0.38}

// SyntheticBestModels and SyntheticBestModelMAE/-Improvement describe the
// fixed best-model-per-pattern table, aligned with PatternTypes by index.
var (
	SyntheticBestModels           = []string{"LightGBM", "Linear Regression", "Poisson", "Moving Average"}
	SyntheticBestModelMAE         = []float64{2.5, 3.1, 2.8, 4.2}
	SyntheticBestModelImprovement = []float64{0.15, 0.08, 0.12, 0.05}
)
