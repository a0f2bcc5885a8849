package services

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"demandcli/internal/config"
	"demandcli/pkg/contracts/domain"
)

// testConfig returns a config pointing at per-test temp directories so
// fixtures never leak between tests.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	return &config.Config{
		Data: config.DataConfig{
			Dir:           filepath.Join(base, "data"),
			ResultsDir:    filepath.Join(base, "results"),
			CacheTTL:      time.Hour,
			Category:      "FOODS",
			DisplayLimit:  config.DefaultDisplayLimit,
			PageSize:      config.DefaultPageSize,
			ExportLimit:   config.DefaultExportLimit,
			SyntheticSeed: config.DefaultSyntheticSeed,
			WarmWorkers:   4,
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeFixture writes one artifact file, creating its directory.
func writeFixture(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

const testResultsCSV = `test_name,status,description,score
Data Quality,PASS,Checks input completeness,0.95
Outlier Scan,FAIL,Flags extreme daily counts,0.40
Schema Drift,PASS,Verifies stable columns,0.88
`

const calendarCSV = `d,date,wm_yr_wk,weekday,wday,month,year,snap_CA,snap_TX,snap_WI
d_1,2011-01-29,11101,Saturday,6,1,2011,1,0,0
d_2,2011-01-30,11101,Sunday,7,1,2011,0,1,0
d_3,2011-01-31,11102,Monday,1,1,2011,0,0,1
`

const salesCSV = `item_id,dept_id,cat_id,store_id,state_id,d_1,d_2,d_3
FOODS_3_001,FOODS_3,FOODS,CA_1,CA,3,0,2
FOODS_3_001,FOODS_3,FOODS,TX_1,TX,1,1,0
FOODS_3_002,FOODS_3,FOODS,CA_1,CA,0,0,5
HOBBIES_1_001,HOBBIES_1,HOBBIES,CA_1,CA,9,9,9
`

// TestNewDataService tests service creation
func TestNewDataService(t *testing.T) {
	cfg := testConfig(t)

	t.Run("Create with default logger", func(t *testing.T) {
		service := NewDataService(cfg)
		assert.NotNil(t, service)
		assert.NotNil(t, service.loader)
		assert.NotNil(t, service.logger)
	})

	t.Run("Create with custom logger", func(t *testing.T) {
		logger := testLogger()
		service := NewDataServiceWithLogger(cfg, logger)
		assert.NotNil(t, service)
		assert.Equal(t, logger, service.logger)
	})

	t.Run("Create with nil logger uses default", func(t *testing.T) {
		service := NewDataServiceWithLogger(cfg, nil)
		assert.NotNil(t, service)
		assert.NotNil(t, service.logger)
	})
}

// TestDataset tests paginated table access with provenance
func TestDataset(t *testing.T) {
	cfg := testConfig(t)
	writeFixture(t, filepath.Join(cfg.Data.ResultsDir, "test_results_summary.csv"), testResultsCSV)
	service := NewDataServiceWithLogger(cfg, testLogger())
	ctx := context.Background()

	t.Run("Real file served with provenance", func(t *testing.T) {
		page, err := service.Dataset(ctx, "test_results", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, "test_results", page.Key)
		assert.Equal(t, []string{"test_name", "status", "description", "score"}, page.Columns)
		assert.Equal(t, 3, page.Total)
		assert.Len(t, page.Rows, 3)
		assert.Equal(t, "real", page.Provenance.Source)
		assert.Equal(t, "ok", page.Provenance.Status)
		assert.False(t, page.Provenance.LoadedAt.IsZero())
	})

	t.Run("Second read comes from cache", func(t *testing.T) {
		page, err := service.Dataset(ctx, "test_results", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, "cache", page.Provenance.Source)
		assert.Equal(t, "ok", page.Provenance.Status)
	})

	t.Run("Paging window", func(t *testing.T) {
		page, err := service.Dataset(ctx, "test_results", 2, 1)
		require.NoError(t, err)
		assert.Equal(t, 2, page.Limit)
		assert.Equal(t, 1, page.Offset)
		assert.Equal(t, 3, page.Total)
		require.Len(t, page.Rows, 2)
		assert.Equal(t, "Outlier Scan", page.Rows[0][0])
	})

	t.Run("Offset past the end yields empty page", func(t *testing.T) {
		page, err := service.Dataset(ctx, "test_results", 10, 50)
		require.NoError(t, err)
		assert.Empty(t, page.Rows)
		assert.Equal(t, 3, page.Total)
	})

	t.Run("Zero limit defaults to page size", func(t *testing.T) {
		page, err := service.Dataset(ctx, "test_results", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, cfg.Data.PageSize, page.Limit)
	})

	t.Run("Limit clamped to display limit", func(t *testing.T) {
		page, err := service.Dataset(ctx, "test_results", cfg.Data.DisplayLimit*10, 0)
		require.NoError(t, err)
		assert.Equal(t, cfg.Data.DisplayLimit, page.Limit)
	})

	t.Run("Negative offset treated as zero", func(t *testing.T) {
		page, err := service.Dataset(ctx, "test_results", 1, -5)
		require.NoError(t, err)
		assert.Equal(t, 0, page.Offset)
		require.Len(t, page.Rows, 1)
		assert.Equal(t, "Data Quality", page.Rows[0][0])
	})

	t.Run("Unknown dataset", func(t *testing.T) {
		_, err := service.Dataset(ctx, "nonexistent", 0, 0)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownDataset)
		assert.Contains(t, err.Error(), "nonexistent")
	})

	t.Run("Missing file falls back to synthetic", func(t *testing.T) {
		page, err := service.Dataset(ctx, "prices", 5, 0)
		require.NoError(t, err)
		assert.Equal(t, "synthetic", page.Provenance.Source)
		assert.Equal(t, "source_unavailable", page.Provenance.Status)
		assert.NotEmpty(t, page.Rows)
	})

	t.Run("Malformed file falls back to synthetic", func(t *testing.T) {
		writeFixture(t, filepath.Join(cfg.Data.ResultsDir, "best_models_by_pattern.csv"),
			"pattern_type,best_model\n\"unterminated\n")
		page, err := service.Dataset(ctx, "best_models", 5, 0)
		require.NoError(t, err)
		assert.Equal(t, "synthetic", page.Provenance.Source)
		assert.Equal(t, "source_malformed", page.Provenance.Status)
		assert.NotEmpty(t, page.Provenance.Detail)
	})

	t.Run("Schema violation falls back to synthetic", func(t *testing.T) {
		writeFixture(t, filepath.Join(cfg.Data.ResultsDir, "model_performance_by_pattern.csv"),
			"model_name,pattern_type\nNaive,Seasonal\n")
		page, err := service.Dataset(ctx, "model_performance", 5, 0)
		require.NoError(t, err)
		assert.Equal(t, "synthetic", page.Provenance.Source)
		assert.Equal(t, "schema_invalid", page.Provenance.Status)
	})
}

// TestExportFrame tests full-table access for exports
func TestExportFrame(t *testing.T) {
	cfg := testConfig(t)
	writeFixture(t, filepath.Join(cfg.Data.ResultsDir, "test_results_summary.csv"), testResultsCSV)
	service := NewDataServiceWithLogger(cfg, testLogger())
	ctx := context.Background()

	t.Run("Full table with provenance", func(t *testing.T) {
		frame, prov, err := service.ExportFrame(ctx, "test_results")
		require.NoError(t, err)
		assert.Equal(t, 3, frame.RowCount())
		assert.Equal(t, "real", prov.Source)
	})

	t.Run("Unknown dataset", func(t *testing.T) {
		_, _, err := service.ExportFrame(ctx, "bogus")
		assert.ErrorIs(t, err, ErrUnknownDataset)
	})
}

// TestRefresh tests cache clearing and the refresh broadcast
func TestRefresh(t *testing.T) {
	cfg := testConfig(t)
	service := NewDataServiceWithLogger(cfg, testLogger())
	ctx := context.Background()

	hub := new(MockBroadcaster)
	hub.On("Broadcast", "data:refresh", mock.Anything).Return()
	service.SetBroadcaster(hub)

	// Populate the cache first
	_, err := service.Dataset(ctx, "calendar", 1, 0)
	require.NoError(t, err)
	_, err = service.Dataset(ctx, "prices", 1, 0)
	require.NoError(t, err)

	cleared := service.Refresh(ctx)
	assert.Equal(t, 2, cleared)
	assert.Equal(t, 0, service.CacheStats().Entries)

	// The next read repeats the full load sequence
	page, err := service.Dataset(ctx, "calendar", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "synthetic", page.Provenance.Source)

	hub.AssertExpectations(t)
	hub.AssertNumberOfCalls(t, "Broadcast", 1)
}

// TestRefreshWithoutBroadcaster tests that refresh works before wiring
func TestRefreshWithoutBroadcaster(t *testing.T) {
	cfg := testConfig(t)
	service := NewDataServiceWithLogger(cfg, testLogger())

	assert.NotPanics(t, func() {
		service.Refresh(context.Background())
	})
}

// TestProductSeries tests time series assembly
func TestProductSeries(t *testing.T) {
	cfg := testConfig(t)
	writeFixture(t, filepath.Join(cfg.Data.Dir, "calendar.csv"), calendarCSV)
	writeFixture(t, filepath.Join(cfg.Data.Dir, "sales_train_validation.csv"), salesCSV)
	service := NewDataServiceWithLogger(cfg, testLogger())
	ctx := context.Background()

	t.Run("Known product and store", func(t *testing.T) {
		points, err := service.ProductSeries(ctx, "FOODS_3_001", "CA_1")
		require.NoError(t, err)
		require.Len(t, points, 3)

		assert.Equal(t, "d_1", points[0].DayKey)
		assert.Equal(t, 3, points[0].Sales)
		require.NotNil(t, points[0].Calendar)
		assert.Equal(t, 2011, points[0].Calendar.Year)
		assert.True(t, points[0].Calendar.SnapCA)
		assert.True(t, points[0].Snap())

		assert.Equal(t, "d_3", points[2].DayKey)
		assert.Equal(t, 2, points[2].Sales)

		// Chronological order
		assert.True(t, points[0].Calendar.Date.Before(points[1].Calendar.Date))
		assert.True(t, points[1].Calendar.Date.Before(points[2].Calendar.Date))
	})

	t.Run("Unknown product", func(t *testing.T) {
		_, err := service.ProductSeries(ctx, "FOODS_3_999", "CA_1")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSeriesNotFound)
		assert.Contains(t, err.Error(), "FOODS_3_999")
	})

	t.Run("Product filtered out by category", func(t *testing.T) {
		_, err := service.ProductSeries(ctx, "HOBBIES_1_001", "CA_1")
		assert.ErrorIs(t, err, ErrSeriesNotFound)
	})
}

// TestSummary tests KPI derivation
func TestSummary(t *testing.T) {
	t.Run("Derived from fixtures", func(t *testing.T) {
		cfg := testConfig(t)
		writeFixture(t, filepath.Join(cfg.Data.Dir, "sales_train_validation.csv"), salesCSV)
		writeFixture(t, filepath.Join(cfg.Data.ResultsDir, "test_results_summary.csv"), testResultsCSV)
		service := NewDataServiceWithLogger(cfg, testLogger())

		stats := service.Summary(context.Background())
		assert.Equal(t, 3, stats.TotalProducts)
		assert.InDelta(t, 4.0/9.0, stats.ZeroInflationRate, 0.0001)
		assert.InDelta(t, 2.0/3.0, stats.TestSuccessRate, 0.0001)
		assert.Equal(t, "FOODS", stats.Category)
	})

	t.Run("Synthetic inputs still summarize", func(t *testing.T) {
		cfg := testConfig(t)
		service := NewDataServiceWithLogger(cfg, testLogger())

		stats := service.Summary(context.Background())
		assert.Greater(t, stats.TotalProducts, 0)
		assert.GreaterOrEqual(t, stats.ZeroInflationRate, 0.0)
		assert.LessOrEqual(t, stats.ZeroInflationRate, 1.0)
	})
}

// TestAvailableStores tests store catalog derivation
func TestAvailableStores(t *testing.T) {
	t.Run("Distinct stores from sales", func(t *testing.T) {
		cfg := testConfig(t)
		writeFixture(t, filepath.Join(cfg.Data.Dir, "sales_train_validation.csv"), salesCSV)
		service := NewDataServiceWithLogger(cfg, testLogger())

		stores := service.AvailableStores(context.Background())
		assert.Equal(t, []string{"CA_1", "TX_1"}, stores)
	})

	t.Run("Synthetic sales carry one store", func(t *testing.T) {
		cfg := testConfig(t)
		service := NewDataServiceWithLogger(cfg, testLogger())

		stores := service.AvailableStores(context.Background())
		assert.Equal(t, []string{config.SyntheticStore}, stores)
	})
}

// TestProducts tests product catalog derivation
func TestProducts(t *testing.T) {
	cfg := testConfig(t)
	writeFixture(t, filepath.Join(cfg.Data.Dir, "sales_train_validation.csv"), salesCSV)
	service := NewDataServiceWithLogger(cfg, testLogger())
	ctx := context.Background()

	t.Run("All products", func(t *testing.T) {
		products := service.Products(ctx, "", 0)
		assert.Equal(t, []string{"FOODS_3_001", "FOODS_3_002"}, products)
	})

	t.Run("Filtered by store", func(t *testing.T) {
		products := service.Products(ctx, "TX_1", 0)
		assert.Equal(t, []string{"FOODS_3_001"}, products)
	})

	t.Run("Limit caps the result", func(t *testing.T) {
		products := service.Products(ctx, "", 1)
		assert.Equal(t, []string{"FOODS_3_001"}, products)
	})

	t.Run("Unknown store yields empty list", func(t *testing.T) {
		products := service.Products(ctx, "WI_9", 0)
		assert.Empty(t, products)
	})
}

// TestDateRange tests calendar span derivation
func TestDateRange(t *testing.T) {
	t.Run("Derived from calendar", func(t *testing.T) {
		cfg := testConfig(t)
		writeFixture(t, filepath.Join(cfg.Data.Dir, "calendar.csv"), calendarCSV)
		service := NewDataServiceWithLogger(cfg, testLogger())

		dr := service.DateRange(context.Background())
		assert.Equal(t, "2011-01-29", dr.MinDate.Format(config.DateLayout))
		assert.Equal(t, "2011-01-31", dr.MaxDate.Format(config.DateLayout))
	})

	t.Run("Header-only calendar falls back to study horizon", func(t *testing.T) {
		cfg := testConfig(t)
		writeFixture(t, filepath.Join(cfg.Data.Dir, "calendar.csv"),
			"d,date,wm_yr_wk,weekday,wday,month,year,snap_CA,snap_TX,snap_WI\n")
		service := NewDataServiceWithLogger(cfg, testLogger())

		dr := service.DateRange(context.Background())
		assert.Equal(t, config.StudyStartDate, dr.MinDate.Format(config.DateLayout))
		assert.Equal(t, config.StudyEndDate, dr.MaxDate.Format(config.DateLayout))
	})

	t.Run("Synthetic calendar spans the study horizon", func(t *testing.T) {
		cfg := testConfig(t)
		service := NewDataServiceWithLogger(cfg, testLogger())

		dr := service.DateRange(context.Background())
		assert.Equal(t, config.StudyStartDate, dr.MinDate.Format(config.DateLayout))
		assert.Equal(t, config.StudyEndDate, dr.MaxDate.Format(config.DateLayout))
	})
}

// TestModelPerformance tests typed model metrics
func TestModelPerformance(t *testing.T) {
	cfg := testConfig(t)
	writeFixture(t, filepath.Join(cfg.Data.ResultsDir, "model_performance_by_pattern.csv"),
		`model_name,pattern_type,mae,rmse,mape,r2_score
Naive,Seasonal,4.10,5.90,48.0,0.31
LightGBM,Seasonal,2.05,3.10,27.5,0.74
`)
	service := NewDataServiceWithLogger(cfg, testLogger())

	rows := service.ModelPerformance(context.Background())
	require.Len(t, rows, 2)
	assert.Equal(t, domain.ModelPerformance{
		ModelName:   "Naive",
		PatternType: "Seasonal",
		MAE:         4.10,
		RMSE:        5.90,
		MAPE:        48.0,
		R2Score:     0.31,
	}, rows[0])
	assert.Equal(t, "LightGBM", rows[1].ModelName)
}

// TestBestModels tests typed per-pattern winners
func TestBestModels(t *testing.T) {
	cfg := testConfig(t)
	writeFixture(t, filepath.Join(cfg.Data.ResultsDir, "best_models_by_pattern.csv"),
		`pattern_type,best_model,mae,improvement
Seasonal,LightGBM,2.05,0.50
Zero-Inflation,Poisson,2.60,0.42
`)
	service := NewDataServiceWithLogger(cfg, testLogger())

	rows := service.BestModels(context.Background())
	require.Len(t, rows, 2)
	assert.Equal(t, "LightGBM", rows[0].BestModel)
	assert.Equal(t, "Zero-Inflation", rows[1].PatternType)
	assert.InDelta(t, 0.42, rows[1].Improvement, 0.0001)
}

// TestTestResults tests typed evaluation outcomes
func TestTestResults(t *testing.T) {
	cfg := testConfig(t)
	writeFixture(t, filepath.Join(cfg.Data.ResultsDir, "test_results_summary.csv"), testResultsCSV)
	service := NewDataServiceWithLogger(cfg, testLogger())

	rows := service.TestResults(context.Background())
	require.Len(t, rows, 3)
	assert.Equal(t, "Data Quality", rows[0].TestName)
	assert.Equal(t, domain.TestStatusPass, rows[0].Status)
	assert.Equal(t, domain.TestStatusFail, rows[1].Status)
	assert.InDelta(t, 0.88, rows[2].Score, 0.0001)
}

// TestPatternExamples tests pattern example lookup and validation
func TestPatternExamples(t *testing.T) {
	cfg := testConfig(t)
	writeFixture(t, filepath.Join(cfg.Data.ResultsDir, "seasonal_pattern_examples.csv"),
		`item_id,store_id,pattern_strength,avg_sales,zero_rate
FOODS_3_090,CA_1,0.91,6.4,0.12
FOODS_3_120,TX_2,0.84,4.9,0.20
`)
	service := NewDataServiceWithLogger(cfg, testLogger())
	ctx := context.Background()

	t.Run("Known pattern type", func(t *testing.T) {
		rows, err := service.PatternExamples(ctx, "seasonal")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "FOODS_3_090", rows[0].ItemID)
		assert.InDelta(t, 0.91, rows[0].PatternStrength, 0.0001)
	})

	t.Run("Case insensitive", func(t *testing.T) {
		rows, err := service.PatternExamples(ctx, "Seasonal")
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("Missing file serves synthetic examples", func(t *testing.T) {
		rows, err := service.PatternExamples(ctx, "snap")
		require.NoError(t, err)
		assert.NotEmpty(t, rows)
	})

	t.Run("Unknown pattern type", func(t *testing.T) {
		_, err := service.PatternExamples(ctx, "cyclical")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownPattern)
	})
}

// TestWarmUp tests concurrent cache warm-up
func TestWarmUp(t *testing.T) {
	t.Run("Warms every dataset", func(t *testing.T) {
		cfg := testConfig(t)
		service := NewDataServiceWithLogger(cfg, testLogger())

		err := service.WarmUp(context.Background())
		require.NoError(t, err)
		assert.Equal(t, len(service.DatasetKeys()), service.CacheStats().Entries)
	})

	t.Run("Canceled context aborts", func(t *testing.T) {
		cfg := testConfig(t)
		service := NewDataServiceWithLogger(cfg, testLogger())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := service.WarmUp(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cache warm-up interrupted")
	})
}

// TestDatasetKeys tests the served key listing
func TestDatasetKeys(t *testing.T) {
	cfg := testConfig(t)
	service := NewDataServiceWithLogger(cfg, testLogger())

	keys := service.DatasetKeys()
	assert.Len(t, keys, 11)
	assert.Contains(t, keys, "calendar")
	assert.Contains(t, keys, "sales_train")
	assert.Contains(t, keys, "pattern_snap")
}

// TestConcurrentAccess tests concurrent reads racing a refresh
func TestConcurrentAccess(t *testing.T) {
	cfg := testConfig(t)
	writeFixture(t, filepath.Join(cfg.Data.ResultsDir, "test_results_summary.csv"), testResultsCSV)
	service := NewDataServiceWithLogger(cfg, testLogger())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			page, err := service.Dataset(ctx, "test_results", 0, 0)
			assert.NoError(t, err)
			assert.Equal(t, 3, page.Total)
		}()
	}
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			service.Refresh(ctx)
		}()
	}
	wg.Wait()
}

// BenchmarkDataset measures cached page serving
func BenchmarkDataset(b *testing.B) {
	cfg := &config.Config{
		Data: config.DataConfig{
			Dir:           b.TempDir(),
			ResultsDir:    b.TempDir(),
			CacheTTL:      time.Hour,
			Category:      "FOODS",
			DisplayLimit:  config.DefaultDisplayLimit,
			PageSize:      config.DefaultPageSize,
			ExportLimit:   config.DefaultExportLimit,
			SyntheticSeed: config.DefaultSyntheticSeed,
			WarmWorkers:   4,
		},
	}
	service := NewDataServiceWithLogger(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	// Prime the cache
	if _, err := service.Dataset(ctx, "test_results", 0, 0); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := service.Dataset(ctx, "test_results", 10, 0); err != nil {
			b.Fatal(err)
		}
	}
}
