package domain

// TestStatus is the outcome recorded for one evaluation test.
type TestStatus string

const (
	TestStatusPass TestStatus = "PASS"
	TestStatusFail TestStatus = "FAIL"
)

// TestResult is one row of the evaluation test summary.
type TestResult struct {
	TestName    string     `json:"test_name"`
	Status      TestStatus `json:"status"`
	Description string     `json:"description"`
	Score       float64    `json:"score"`
}

// ModelPerformance holds the error metrics of one model on one pattern type.
type ModelPerformance struct {
	ModelName   string  `json:"model_name"`
	PatternType string  `json:"pattern_type"`
	MAE         float64 `json:"mae"`
	RMSE        float64 `json:"rmse"`
	MAPE        float64 `json:"mape"`
	R2Score     float64 `json:"r2_score"`
}

// BestModel names the winning model for one pattern type.
type BestModel struct {
	PatternType string  `json:"pattern_type"`
	BestModel   string  `json:"best_model"`
	MAE         float64 `json:"mae"`
	Improvement float64 `json:"improvement"`
}

// PatternExample is one product exhibiting a behavioral pattern, with the
// statistics that qualified it as an example.
type PatternExample struct {
	ItemID          string  `json:"item_id"`
	StoreID         string  `json:"store_id"`
	PatternStrength float64 `json:"pattern_strength"`
	AvgSales        float64 `json:"avg_sales"`
	ZeroRate        float64 `json:"zero_rate"`
}
