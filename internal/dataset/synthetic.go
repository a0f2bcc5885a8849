package dataset

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strconv"
	"time"

	"demandcli/internal/config"
	"demandcli/internal/validation"
	"demandcli/pkg/contracts/domain"
)

// Generator produces structurally compatible substitute tables for every
// dataset the loader knows about. Output is deterministic for a fixed seed:
// each Synthesize call draws from a fresh source seeded with the configured
// value, so repeated calls for the same dataset return identical tables
// even under concurrent access.
type Generator struct {
	registry  *config.Registry
	validator *validation.SchemaValidator
	seed      int64
	logger    *slog.Logger
}

// NewGenerator creates a synthetic data generator.
func NewGenerator(registry *config.Registry, seed int64, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		registry:  registry,
		validator: validation.NewSchemaValidator(logger),
		seed:      seed,
		logger:    logger,
	}
}

// Synthesize produces a substitute table for the dataset key. The output
// is checked against the same descriptor contract the real path validates
// with; a violation is a bug in the generator and is logged loudly rather
// than surfaced, since callers rely on synthesis never failing.
func (g *Generator) Synthesize(key config.DatasetKey) *domain.Frame {
	var frame *domain.Frame

	switch key {
	case config.DatasetCalendar:
		frame = g.Calendar()
	case config.DatasetSalesTrain, config.DatasetSalesEvaluation:
		frame = g.Sales()
	case config.DatasetPrices:
		frame = g.Prices()
	case config.DatasetTestResults:
		frame = g.TestResults()
	case config.DatasetModelPerformance:
		frame = g.ModelPerformance()
	case config.DatasetBestModels:
		frame = g.BestModels()
	case config.DatasetPatternSeasonal, config.DatasetPatternZeroInflation,
		config.DatasetPatternVolume, config.DatasetPatternSNAP:
		frame = g.PatternExamples()
	default:
		g.logger.Warn("no synthetic rule for dataset, returning empty table",
			slog.String("dataset", string(key)))
		return domain.NewFrame()
	}

	if desc, ok := g.registry.Get(key); ok {
		if valid, problems := g.validator.Validate(desc, frame); !valid {
			g.logger.Error("synthetic table violates its own descriptor contract",
				slog.String("dataset", string(key)),
				slog.Any("problems", problems))
		}
	}

	return frame
}

// Calendar generates one row per day over the full study horizon. Week
// keys advance daily from the first study week; SNAP flags are sampled
// independently per state.
func (g *Generator) Calendar() *domain.Frame {
	rng := rand.New(rand.NewSource(g.seed))

	frame := domain.NewFrame("d", "date", "wm_yr_wk", "weekday", "wday", "month", "year", "snap_CA", "snap_TX", "snap_WI")

	start, _ := time.Parse(config.DateLayout, config.StudyStartDate)
	end, _ := time.Parse(config.DateLayout, config.StudyEndDate)

	day := 1
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		frame.Rows = append(frame.Rows, []string{
			fmt.Sprintf("d_%d", day),
			date.Format(config.DateLayout),
			strconv.Itoa(config.FirstWeekKey + day - 1),
			date.Weekday().String(),
			strconv.Itoa(mondayFirstWeekday(date)),
			strconv.Itoa(int(date.Month())),
			strconv.Itoa(date.Year()),
			snapFlag(rng),
			snapFlag(rng),
			snapFlag(rng),
		})
		day++
	}

	return frame
}

// Sales generates a fixed panel of items with Poisson-distributed daily
// counts across every day column of the training horizon.
func (g *Generator) Sales() *domain.Frame {
	rng := rand.New(rand.NewSource(g.seed))

	columns := []string{"item_id", "dept_id", "cat_id", "store_id", "state_id"}
	for day := 1; day <= config.TrainDayColumns; day++ {
		columns = append(columns, fmt.Sprintf("d_%d", day))
	}
	frame := domain.NewFrame(columns...)

	for i := 1; i <= config.SyntheticProductCount; i++ {
		row := make([]string, 0, len(columns))
		row = append(row,
			fmt.Sprintf("%s_%03d", config.SyntheticDepartment, i),
			config.SyntheticDepartment,
			config.DefaultCategory,
			config.SyntheticStore,
			config.SyntheticState,
		)
		for day := 1; day <= config.TrainDayColumns; day++ {
			row = append(row, strconv.Itoa(poisson(rng, config.SyntheticMeanSales)))
		}
		frame.Rows = append(frame.Rows, row)
	}

	return frame
}

// Prices generates one price row per synthetic item, drawn from a bounded
// uniform range.
func (g *Generator) Prices() *domain.Frame {
	rng := rand.New(rand.NewSource(g.seed))

	frame := domain.NewFrame("store_id", "item_id", "wm_yr_wk", "sell_price")
	for i := 1; i <= config.SyntheticProductCount; i++ {
		price := uniform(rng, config.SyntheticPriceMin, config.SyntheticPriceMax)
		frame.Rows = append(frame.Rows, []string{
			config.SyntheticStore,
			fmt.Sprintf("%s_%03d", config.SyntheticDepartment, i),
			strconv.Itoa(config.FirstWeekKey),
			strconv.FormatFloat(price, 'f', 2, 64),
		})
	}

	return frame
}

// TestResults generates the fixed evaluation test panel: seven passing
// tests followed by three failing ones, preserving the documented success
// rate even absent real artifacts.
func (g *Generator) TestResults() *domain.Frame {
	// Three rounds of the pattern checks, then a single SNAP test.
	descriptions := []string{
		"Seasonal test", "Volume test", "Zero inflation test",
		"Seasonal test", "Volume test", "Zero inflation test",
		"Seasonal test", "Volume test", "Zero inflation test",
		"SNAP test",
	}

	frame := domain.NewFrame("test_name", "status", "description", "score")
	for i := 0; i < config.SyntheticTestCount; i++ {
		status := string(domain.TestStatusPass)
		if i >= config.SyntheticPassCount {
			status = string(domain.TestStatusFail)
		}
		frame.Rows = append(frame.Rows, []string{
			fmt.Sprintf("Test_%d", i+1),
			status,
			descriptions[i],
			strconv.FormatFloat(config.SyntheticTestScores[i], 'f', 2, 64),
		})
	}

	return frame
}

// ModelPerformance generates the full cross product of models and pattern
// types. Error metrics derive from a per-model baseline scaled by a
// per-pattern multiplier plus bounded noise, clipped to stay positive, so
// relative model orderings stay qualitatively realistic.
func (g *Generator) ModelPerformance() *domain.Frame {
	rng := rand.New(rand.NewSource(g.seed))

	frame := domain.NewFrame("model_name", "pattern_type", "mae", "rmse", "mape", "r2_score")
	for _, model := range config.AvailableModels {
		base, ok := config.SyntheticModelBaseMAE[model]
		if !ok {
			base = 3.5
		}
		for _, pattern := range config.PatternTypes {
			multiplier, ok := config.SyntheticPatternMultiplier[pattern]
			if !ok {
				multiplier = 1.0
			}

			mae := math.Max(0.5, base*multiplier+uniform(rng, -0.2, 0.2))
			rmse := math.Max(0.5, mae*1.4+uniform(rng, -0.3, 0.3))
			mape := uniform(rng, 0.15, 0.45)
			r2 := math.Max(0.1, uniform(rng, 0.3, 0.85))

			frame.Rows = append(frame.Rows, []string{
				model,
				pattern,
				strconv.FormatFloat(round3(mae), 'f', 3, 64),
				strconv.FormatFloat(round3(rmse), 'f', 3, 64),
				strconv.FormatFloat(round3(mape), 'f', 3, 64),
				strconv.FormatFloat(round3(r2), 'f', 3, 64),
			})
		}
	}

	return frame
}

// BestModels generates the fixed winning-model table, one row per pattern
// type.
func (g *Generator) BestModels() *domain.Frame {
	frame := domain.NewFrame("pattern_type", "best_model", "mae", "improvement")
	for i, pattern := range config.PatternTypes {
		frame.Rows = append(frame.Rows, []string{
			pattern,
			config.SyntheticBestModels[i],
			strconv.FormatFloat(config.SyntheticBestModelMAE[i], 'f', 1, 64),
			strconv.FormatFloat(config.SyntheticBestModelImprovement[i], 'f', 2, 64),
		})
	}
	return frame
}

// PatternExamples generates a small panel of example products with
// plausible pattern statistics. All four pattern kinds share this shape.
func (g *Generator) PatternExamples() *domain.Frame {
	rng := rand.New(rand.NewSource(g.seed))

	frame := domain.NewFrame("item_id", "store_id", "pattern_strength", "avg_sales", "zero_rate")
	for i := 1; i <= config.SyntheticExampleCount; i++ {
		frame.Rows = append(frame.Rows, []string{
			fmt.Sprintf("%s_%03d", config.SyntheticDepartment, i),
			config.SyntheticStore,
			strconv.FormatFloat(uniform(rng, 0.5, 1.0), 'f', 4, 64),
			strconv.FormatFloat(uniform(rng, 1, 20), 'f', 4, 64),
			strconv.FormatFloat(uniform(rng, 0.3, 0.8), 'f', 4, 64),
		})
	}

	return frame
}

// mondayFirstWeekday numbers the day of week with Monday as 1 and Sunday
// as 7.
func mondayFirstWeekday(date time.Time) int {
	return (int(date.Weekday())+6)%7 + 1
}

func snapFlag(rng *rand.Rand) string {
	if rng.Float64() < config.SNAPDayProbability {
		return "1"
	}
	return "0"
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// poisson draws a Poisson-distributed count using Knuth's method, which is
// fine for the small means used here.
func poisson(rng *rand.Rand, mean float64) int {
	threshold := math.Exp(-mean)
	count := 0
	product := rng.Float64()
	for product > threshold {
		count++
		product *= rng.Float64()
	}
	return count
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
