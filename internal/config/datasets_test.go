package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistryCoversAllDatasets(t *testing.T) {
	registry := NewRegistry(Default())

	wantKeys := []DatasetKey{
		DatasetCalendar,
		DatasetSalesTrain,
		DatasetSalesEvaluation,
		DatasetPrices,
		DatasetTestResults,
		DatasetModelPerformance,
		DatasetBestModels,
		DatasetPatternSeasonal,
		DatasetPatternZeroInflation,
		DatasetPatternVolume,
		DatasetPatternSNAP,
	}

	assert.Equal(t, wantKeys, registry.Keys())
	assert.Len(t, registry.All(), len(wantKeys))

	for _, key := range wantKeys {
		desc, ok := registry.Get(key)
		require.True(t, ok, "descriptor for %s", key)
		assert.Equal(t, key, desc.Key)
		assert.NotEmpty(t, desc.Path)
		assert.NotEmpty(t, desc.RequiredColumns)
		assert.Greater(t, desc.TTL, time.Duration(0))
	}

	_, ok := registry.Get(DatasetKey("unknown"))
	assert.False(t, ok)
}

func TestNewRegistryPaths(t *testing.T) {
	cfg := Default()
	cfg.Data.Dir = filepath.Join("/srv", "demand", "data")
	cfg.Data.ResultsDir = filepath.Join("/srv", "demand", "results")

	registry := NewRegistry(cfg)

	calendar, _ := registry.Get(DatasetCalendar)
	assert.Equal(t, filepath.Join("/srv", "demand", "data", "calendar.csv"), calendar.Path)

	tests, _ := registry.Get(DatasetTestResults)
	assert.Equal(t, filepath.Join("/srv", "demand", "results", "test_results_summary.csv"), tests.Path)
}

func TestNewRegistryCategoryFilterScope(t *testing.T) {
	registry := NewRegistry(Default())

	filtered := map[DatasetKey]bool{
		DatasetSalesTrain:      true,
		DatasetSalesEvaluation: true,
		DatasetPrices:          true,
	}

	for _, desc := range registry.All() {
		assert.Equal(t, filtered[desc.Key], desc.CategoryFilter,
			"category filter flag for %s", desc.Key)
	}
}

func TestNewRegistryClampsTTL(t *testing.T) {
	cfg := Default()
	cfg.Data.CacheTTL = 0

	registry := NewRegistry(cfg)

	desc, _ := registry.Get(DatasetCalendar)
	assert.Equal(t, DefaultCacheTTL, desc.TTL)
}

func TestPatternKey(t *testing.T) {
	tests := []struct {
		input   string
		wantKey DatasetKey
		wantOK  bool
	}{
		{"seasonal", DatasetPatternSeasonal, true},
		{"Seasonal", DatasetPatternSeasonal, true},
		{"SEASONAL", DatasetPatternSeasonal, true},
		{" seasonal ", DatasetPatternSeasonal, true},
		{"zero_inflation", DatasetPatternZeroInflation, true},
		{"zero-inflation", DatasetPatternZeroInflation, true},
		{"volume", DatasetPatternVolume, true},
		{"snap", DatasetPatternSNAP, true},
		{"lunar", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			key, ok := PatternKey(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestNumericRuleConstructors(t *testing.T) {
	rule := atLeast("mae", 0)
	require.NotNil(t, rule.Min)
	assert.Equal(t, 0.0, *rule.Min)
	assert.Nil(t, rule.Max)
	assert.False(t, rule.Prefix)

	rule = atLeastPrefix("d_", 0)
	assert.True(t, rule.Prefix)
	assert.Equal(t, "d_", rule.Column)

	rule = between("score", 0, 1)
	require.NotNil(t, rule.Min)
	require.NotNil(t, rule.Max)
	assert.Equal(t, 0.0, *rule.Min)
	assert.Equal(t, 1.0, *rule.Max)

	rule = finite("year")
	assert.Nil(t, rule.Min)
	assert.Nil(t, rule.Max)
}
