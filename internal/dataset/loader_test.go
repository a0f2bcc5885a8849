package dataset

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demandcli/internal/config"
	"demandcli/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestLoader(t *testing.T, ttl time.Duration) (*Loader, string) {
	t.Helper()

	dir := t.TempDir()

	cfg := config.Default()
	cfg.Data.Dir = dir
	cfg.Data.ResultsDir = dir
	cfg.Data.CacheTTL = ttl

	registry := config.NewRegistry(cfg)
	return NewLoader(registry, cfg.Data, testLogger()), dir
}

func writeDataFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const validPricesCSV = "store_id,item_id,wm_yr_wk,sell_price\n" +
	"CA_1,FOODS_1_001,11101,2.50\n" +
	"CA_1,HOBBIES_1_001,11101,7.25\n"

// Load must hand back a usable table no matter what state the source file
// is in. Anything short of a clean read falls back to synthetic data.
func TestLoadNeverFails(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(t *testing.T, dir string)
		wantSource domain.DataSource
		wantStatus Status
	}{
		{
			name:       "file missing",
			setup:      func(t *testing.T, dir string) {},
			wantSource: domain.DataSourceSynthetic,
			wantStatus: StatusSourceUnavailable,
		},
		{
			name: "file empty",
			setup: func(t *testing.T, dir string) {
				writeDataFile(t, dir, "sell_prices.csv", "")
			},
			wantSource: domain.DataSourceSynthetic,
			wantStatus: StatusSourceMalformed,
		},
		{
			name: "file not parseable",
			setup: func(t *testing.T, dir string) {
				writeDataFile(t, dir, "sell_prices.csv",
					"store_id,item_id,wm_yr_wk,sell_price\nCA_1,FOODS_1_001\n")
			},
			wantSource: domain.DataSourceSynthetic,
			wantStatus: StatusSourceMalformed,
		},
		{
			name: "required column missing",
			setup: func(t *testing.T, dir string) {
				writeDataFile(t, dir, "sell_prices.csv",
					"store_id,item_id,wm_yr_wk\nCA_1,FOODS_1_001,11101\n")
			},
			wantSource: domain.DataSourceSynthetic,
			wantStatus: StatusSchemaInvalid,
		},
		{
			name: "numeric bound violated",
			setup: func(t *testing.T, dir string) {
				writeDataFile(t, dir, "sell_prices.csv",
					"store_id,item_id,wm_yr_wk,sell_price\nCA_1,FOODS_1_001,11101,-4.00\n")
			},
			wantSource: domain.DataSourceSynthetic,
			wantStatus: StatusSchemaInvalid,
		},
		{
			name: "valid file",
			setup: func(t *testing.T, dir string) {
				writeDataFile(t, dir, "sell_prices.csv", validPricesCSV)
			},
			wantSource: domain.DataSourceReal,
			wantStatus: StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader, dir := newTestLoader(t, time.Minute)
			tt.setup(t, dir)

			result := loader.Load(context.Background(), config.DatasetPrices)

			require.NotNil(t, result.Frame)
			assert.Equal(t, tt.wantSource, result.Source)
			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Greater(t, result.Frame.RowCount(), 0)
			assert.False(t, result.FromCache)
			assert.False(t, result.LoadedAt.IsZero())
		})
	}
}

func TestLoadUnknownKey(t *testing.T) {
	loader, _ := newTestLoader(t, time.Minute)

	result := loader.Load(context.Background(), config.DatasetKey("bogus"))

	require.NotNil(t, result.Frame)
	assert.Equal(t, 0, result.Frame.RowCount())
	assert.Equal(t, StatusSourceUnavailable, result.Status)
	assert.False(t, loader.Known(config.DatasetKey("bogus")))
}

// The category filter applies to whichever branch produced the table, so
// cached results have a consistent shape regardless of provenance.
func TestCategoryFilterOnBothBranches(t *testing.T) {
	t.Run("real file keeps only configured category", func(t *testing.T) {
		loader, dir := newTestLoader(t, time.Minute)
		writeDataFile(t, dir, "sell_prices.csv", validPricesCSV)

		result := loader.Load(context.Background(), config.DatasetPrices)

		require.Equal(t, domain.DataSourceReal, result.Source)
		require.Equal(t, 1, result.Frame.RowCount())
		items := result.Frame.ColumnValues("item_id")
		assert.Equal(t, []string{"FOODS_1_001"}, items)
	})

	t.Run("synthetic substitute already matches category", func(t *testing.T) {
		loader, _ := newTestLoader(t, time.Minute)

		result := loader.Load(context.Background(), config.DatasetPrices)

		require.Equal(t, domain.DataSourceSynthetic, result.Source)
		require.Equal(t, config.SyntheticProductCount, result.Frame.RowCount())
		for _, item := range result.Frame.ColumnValues("item_id") {
			assert.True(t, strings.HasPrefix(item, config.DefaultCategory), "item %s", item)
		}
	})

	t.Run("sales panel filtered on real path", func(t *testing.T) {
		loader, dir := newTestLoader(t, time.Minute)
		writeDataFile(t, dir, "sales_train_validation.csv",
			"item_id,dept_id,cat_id,store_id,state_id,d_1,d_2\n"+
				"FOODS_3_001,FOODS_3,FOODS,CA_1,CA,3,0\n"+
				"HOUSEHOLD_1_001,HOUSEHOLD_1,HOUSEHOLD,CA_1,CA,1,2\n")

		frame := loader.Sales(context.Background(), false)

		require.Equal(t, 1, frame.RowCount())
		assert.Equal(t, []string{"FOODS_3_001"}, frame.ColumnValues("item_id"))
	})
}

func TestLoadCachesWithinTTL(t *testing.T) {
	loader, dir := newTestLoader(t, time.Minute)
	path := writeDataFile(t, dir, "sell_prices.csv", validPricesCSV)

	first := loader.Load(context.Background(), config.DatasetPrices)
	require.Equal(t, domain.DataSourceReal, first.Source)

	// The source disappearing must not matter while the entry is fresh.
	require.NoError(t, os.Remove(path))

	second := loader.Load(context.Background(), config.DatasetPrices)

	assert.True(t, second.FromCache)
	assert.Equal(t, domain.DataSourceReal, second.Source)
	assert.Same(t, first.Frame, second.Frame)
	assert.Equal(t, first.LoadedAt, second.LoadedAt)
}

func TestLoadCountsOneMissPerColdLoad(t *testing.T) {
	loader, dir := newTestLoader(t, time.Minute)
	writeDataFile(t, dir, "sell_prices.csv", validPricesCSV)

	loader.Load(context.Background(), config.DatasetPrices)

	stats := loader.CacheStats()
	assert.Equal(t, uint64(1), stats.Misses,
		"the post-lock recheck must not count the same miss again")
	assert.Zero(t, stats.Hits)

	loader.Load(context.Background(), config.DatasetPrices)

	stats = loader.CacheStats()
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(1), stats.Hits)
}

func TestLoadRefreshesAfterTTL(t *testing.T) {
	loader, dir := newTestLoader(t, 15*time.Millisecond)
	path := writeDataFile(t, dir, "sell_prices.csv", validPricesCSV)

	first := loader.Load(context.Background(), config.DatasetPrices)
	require.Equal(t, domain.DataSourceReal, first.Source)

	require.NoError(t, os.Remove(path))
	time.Sleep(30 * time.Millisecond)

	second := loader.Load(context.Background(), config.DatasetPrices)

	assert.False(t, second.FromCache)
	assert.Equal(t, domain.DataSourceSynthetic, second.Source,
		"an expired entry repeats the full load sequence")
	assert.True(t, second.LoadedAt.After(first.LoadedAt))
}

func TestClearForcesReload(t *testing.T) {
	loader, dir := newTestLoader(t, time.Hour)
	path := writeDataFile(t, dir, "sell_prices.csv", validPricesCSV)

	first := loader.Load(context.Background(), config.DatasetPrices)
	require.Equal(t, domain.DataSourceReal, first.Source)

	require.NoError(t, os.Remove(path))

	cleared := loader.Clear()
	assert.Equal(t, 1, cleared)

	second := loader.Load(context.Background(), config.DatasetPrices)

	assert.False(t, second.FromCache)
	assert.Equal(t, domain.DataSourceSynthetic, second.Source)
}

func TestConcurrentLoadsProduceOneEntry(t *testing.T) {
	loader, _ := newTestLoader(t, time.Minute)

	const workers = 16
	results := make([]LoadResult, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = loader.Load(context.Background(), config.DatasetPrices)
		}(i)
	}
	wg.Wait()

	stats := loader.CacheStats()
	assert.Equal(t, 1, stats.Entries)

	for i := 1; i < workers; i++ {
		assert.Same(t, results[0].Frame, results[i].Frame,
			"all concurrent callers observe the same table")
	}
}

func TestCalendarFallbackCoversHorizon(t *testing.T) {
	loader, _ := newTestLoader(t, time.Minute)

	frame := loader.Calendar(context.Background())

	require.NotNil(t, frame)
	assert.Equal(t, 1969, frame.RowCount())
}

func TestSalesSelectsEvaluationArtifact(t *testing.T) {
	loader, dir := newTestLoader(t, time.Minute)
	writeDataFile(t, dir, "sales_train_evaluation.csv",
		"item_id,dept_id,cat_id,store_id,state_id,d_1\n"+
			"FOODS_3_090,FOODS_3,FOODS,WI_2,WI,5\n")

	frame := loader.Sales(context.Background(), true)

	require.Equal(t, 1, frame.RowCount())
	assert.Equal(t, []string{"FOODS_3_090"}, frame.ColumnValues("item_id"))
}

func TestPatternExamplesUnknownTypeStaysUsable(t *testing.T) {
	loader, _ := newTestLoader(t, time.Minute)

	before := loader.CacheStats().Entries
	frame := loader.PatternExamples(context.Background(), "lunar")

	require.NotNil(t, frame)
	assert.Equal(t, config.SyntheticExampleCount, frame.RowCount())
	assert.Equal(t, before, loader.CacheStats().Entries,
		"unknown pattern tables are not cached")
}

func TestPatternExamplesKnownTypes(t *testing.T) {
	loader, _ := newTestLoader(t, time.Minute)

	for _, patternType := range []string{"seasonal", "zero_inflation", "volume", "snap"} {
		frame := loader.PatternExamples(context.Background(), patternType)
		require.NotNil(t, frame, "pattern %s", patternType)
		assert.Equal(t, config.SyntheticExampleCount, frame.RowCount(), "pattern %s", patternType)
	}
}

func TestLoaderKeysCoverRegistry(t *testing.T) {
	loader, _ := newTestLoader(t, time.Minute)

	keys := loader.Keys()

	assert.Len(t, keys, 11)
	assert.Contains(t, keys, config.DatasetCalendar)
	assert.Contains(t, keys, config.DatasetPatternSNAP)
}
