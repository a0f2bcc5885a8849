package config

import (
	"strings"
	"time"
)

// DatasetKey names one logical dataset served by the loader.
type DatasetKey string

const (
	DatasetCalendar             DatasetKey = "calendar"
	DatasetSalesTrain           DatasetKey = "sales_train"
	DatasetSalesEvaluation      DatasetKey = "sales_evaluation"
	DatasetPrices               DatasetKey = "prices"
	DatasetTestResults          DatasetKey = "test_results"
	DatasetModelPerformance     DatasetKey = "model_performance"
	DatasetBestModels           DatasetKey = "best_models"
	DatasetPatternSeasonal      DatasetKey = "pattern_seasonal"
	DatasetPatternZeroInflation DatasetKey = "pattern_zero_inflation"
	DatasetPatternVolume        DatasetKey = "pattern_volume"
	DatasetPatternSNAP          DatasetKey = "pattern_snap"
)

// NumericRule bounds one numeric column, or a whole family of columns when
// Prefix is set. A rule applies only to columns actually present in the
// table; every matched cell must parse as a finite number, within Min/Max
// where those are set.
type NumericRule struct {
	Column string
	Prefix bool
	Min    *float64
	Max    *float64
}

// Descriptor describes one logical dataset: where its file lives, what a
// valid table looks like, and how long a loaded copy stays fresh. The same
// descriptor governs both the schema validator on the real path and the
// synthetic generator's output contract.
type Descriptor struct {
	Key              DatasetKey
	Path             string
	RequiredColumns  []string
	RequiredPrefixes []string
	DateColumns      []string
	NumericRules     []NumericRule
	CategoryFilter   bool
	TTL              time.Duration
}

// Registry is the static mapping from dataset keys to descriptors. It is
// built once at startup and never mutated.
type Registry struct {
	descriptors map[DatasetKey]Descriptor
	keys        []DatasetKey
}

// NewRegistry builds the dataset registry from the data configuration.
func NewRegistry(cfg *Config) *Registry {
	ttl := cfg.Data.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	paths := &Paths{DataDir: cfg.Data.Dir, ResultsDir: cfg.Data.ResultsDir}

	descriptors := []Descriptor{
		{
			Key:             DatasetCalendar,
			Path:            paths.DataFile("calendar.csv"),
			RequiredColumns: []string{"d", "date", "wm_yr_wk", "weekday", "wday", "month", "year", "snap_CA", "snap_TX", "snap_WI"},
			DateColumns:     []string{"date"},
			NumericRules: []NumericRule{
				atLeast("wm_yr_wk", 0),
				between("wday", 1, 7),
				between("month", 1, 12),
				finite("year"),
				between("snap_CA", 0, 1),
				between("snap_TX", 0, 1),
				between("snap_WI", 0, 1),
			},
			TTL: ttl,
		},
		{
			Key:              DatasetSalesTrain,
			Path:             paths.DataFile("sales_train_validation.csv"),
			RequiredColumns:  []string{"item_id", "dept_id", "cat_id", "store_id", "state_id"},
			RequiredPrefixes: []string{DayColumnPrefix},
			NumericRules:     []NumericRule{atLeastPrefix(DayColumnPrefix, 0)},
			CategoryFilter:   true,
			TTL:              ttl,
		},
		{
			Key:              DatasetSalesEvaluation,
			Path:             paths.DataFile("sales_train_evaluation.csv"),
			RequiredColumns:  []string{"item_id", "dept_id", "cat_id", "store_id", "state_id"},
			RequiredPrefixes: []string{DayColumnPrefix},
			NumericRules:     []NumericRule{atLeastPrefix(DayColumnPrefix, 0)},
			CategoryFilter:   true,
			TTL:              ttl,
		},
		{
			Key:             DatasetPrices,
			Path:            paths.DataFile("sell_prices.csv"),
			RequiredColumns: []string{"store_id", "item_id", "wm_yr_wk", "sell_price"},
			NumericRules: []NumericRule{
				atLeast("wm_yr_wk", 0),
				atLeast("sell_price", 0),
			},
			CategoryFilter: true,
			TTL:            ttl,
		},
		{
			Key:             DatasetTestResults,
			Path:            paths.ResultsFile("test_results_summary.csv"),
			RequiredColumns: []string{"test_name", "status", "description", "score"},
			NumericRules:    []NumericRule{between("score", 0, 1)},
			TTL:             ttl,
		},
		{
			Key:             DatasetModelPerformance,
			Path:            paths.ResultsFile("model_performance_by_pattern.csv"),
			RequiredColumns: []string{"model_name", "pattern_type", "mae", "rmse"},
			NumericRules: []NumericRule{
				atLeast("mae", 0),
				atLeast("rmse", 0),
				atLeast("mape", 0),
				atMost("r2_score", 1),
			},
			TTL: ttl,
		},
		{
			Key:             DatasetBestModels,
			Path:            paths.ResultsFile("best_models_by_pattern.csv"),
			RequiredColumns: []string{"pattern_type", "best_model", "mae"},
			NumericRules: []NumericRule{
				atLeast("mae", 0),
				atLeast("improvement", 0),
			},
			TTL: ttl,
		},
		patternDescriptor(DatasetPatternSeasonal, paths.ResultsFile("seasonal_pattern_examples.csv"), ttl),
		patternDescriptor(DatasetPatternZeroInflation, paths.ResultsFile("zero_inflation_examples.csv"), ttl),
		patternDescriptor(DatasetPatternVolume, paths.ResultsFile("volume_distribution_examples.csv"), ttl),
		patternDescriptor(DatasetPatternSNAP, paths.ResultsFile("snap_pattern_examples.csv"), ttl),
	}

	r := &Registry{
		descriptors: make(map[DatasetKey]Descriptor, len(descriptors)),
		keys:        make([]DatasetKey, 0, len(descriptors)),
	}
	for _, d := range descriptors {
		r.descriptors[d.Key] = d
		r.keys = append(r.keys, d.Key)
	}
	return r
}

func patternDescriptor(key DatasetKey, path string, ttl time.Duration) Descriptor {
	return Descriptor{
		Key:             key,
		Path:            path,
		RequiredColumns: []string{"item_id", "store_id", "pattern_strength", "avg_sales", "zero_rate"},
		NumericRules: []NumericRule{
			between("pattern_strength", 0, 1),
			atLeast("avg_sales", 0),
			between("zero_rate", 0, 1),
		},
		TTL: ttl,
	}
}

// Get returns the descriptor for a key.
func (r *Registry) Get(key DatasetKey) (Descriptor, bool) {
	d, ok := r.descriptors[key]
	return d, ok
}

// Keys returns every registered dataset key in declaration order.
func (r *Registry) Keys() []DatasetKey {
	keys := make([]DatasetKey, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// All returns every descriptor in declaration order.
func (r *Registry) All() []Descriptor {
	all := make([]Descriptor, 0, len(r.keys))
	for _, key := range r.keys {
		all = append(all, r.descriptors[key])
	}
	return all
}

// PatternKey maps a pattern type name to its dataset key. Accepts the
// short names used in API routes (seasonal, zero_inflation, volume, snap)
// case-insensitively.
func PatternKey(patternType string) (DatasetKey, bool) {
	switch strings.ToLower(strings.TrimSpace(patternType)) {
	case "seasonal":
		return DatasetPatternSeasonal, true
	case "zero_inflation", "zero-inflation":
		return DatasetPatternZeroInflation, true
	case "volume":
		return DatasetPatternVolume, true
	case "snap":
		return DatasetPatternSNAP, true
	}
	return "", false
}

func atLeast(column string, min float64) NumericRule {
	return NumericRule{Column: column, Min: &min}
}

func atLeastPrefix(prefix string, min float64) NumericRule {
	return NumericRule{Column: prefix, Prefix: true, Min: &min}
}

func atMost(column string, max float64) NumericRule {
	return NumericRule{Column: column, Max: &max}
}

func between(column string, min, max float64) NumericRule {
	return NumericRule{Column: column, Min: &min, Max: &max}
}

func finite(column string) NumericRule {
	return NumericRule{Column: column}
}
