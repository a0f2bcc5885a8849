package dataset

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"demandcli/internal/config"
	"demandcli/internal/validation"
	"demandcli/pkg/contracts/domain"
)

// Status classifies the outcome of attempting to read a source file.
// Everything except StatusOK is normalized into "use a synthetic
// substitute"; no status is ever surfaced to callers as an error.
type Status string

const (
	// StatusOK means the source file was read and passed validation.
	StatusOK Status = "ok"
	// StatusSourceUnavailable means the source file does not exist.
	StatusSourceUnavailable Status = "source_unavailable"
	// StatusSourceMalformed means the file exists but is empty or cannot
	// be parsed as CSV.
	StatusSourceMalformed Status = "source_malformed"
	// StatusSchemaInvalid means the file parsed but failed the
	// descriptor's required-column or bounds checks.
	StatusSchemaInvalid Status = "schema_invalid"
)

// LoadResult is what the loader hands back: a usable table plus the
// provenance of how it was obtained. Frame is never nil.
type LoadResult struct {
	Key       config.DatasetKey `json:"key"`
	Frame     *domain.Frame     `json:"frame"`
	Source    domain.DataSource `json:"source"`
	Status    Status            `json:"status"`
	Detail    string            `json:"detail,omitempty"`
	FromCache bool              `json:"from_cache"`
	LoadedAt  time.Time         `json:"loaded_at"`
}

type tryLoadResult struct {
	status Status
	frame  *domain.Frame
	detail string
}

// Loader orchestrates dataset access: check cache, read the source file,
// validate its schema, fall back to synthetic data on any failure, store
// the result with a fresh timestamp and return it. Load never fails.
//
// The check-read-store sequence is atomic per dataset key so concurrent
// misses do not duplicate file reads or synthetic generation.
type Loader struct {
	registry  *config.Registry
	validator *validation.SchemaValidator
	generator *Generator
	cache     *Cache
	category  string
	logger    *slog.Logger
	keyLocks  map[config.DatasetKey]*sync.Mutex
}

// NewLoader creates a loader over the dataset registry.
func NewLoader(registry *config.Registry, data config.DataConfig, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}

	keyLocks := make(map[config.DatasetKey]*sync.Mutex, len(registry.Keys()))
	for _, key := range registry.Keys() {
		keyLocks[key] = &sync.Mutex{}
	}

	return &Loader{
		registry:  registry,
		validator: validation.NewSchemaValidator(logger),
		generator: NewGenerator(registry, data.SyntheticSeed, logger),
		cache:     NewCache(),
		category:  data.Category,
		logger:    logger,
		keyLocks:  keyLocks,
	}
}

// Load resolves a dataset: cached copy if fresh, otherwise the source file
// when it reads and validates cleanly, otherwise a synthetic substitute.
// Sales and pricing datasets are filtered to the configured category before
// caching so callers see a consistent shape regardless of provenance.
func (l *Loader) Load(ctx context.Context, key config.DatasetKey) LoadResult {
	if result, ok := l.cache.Get(key); ok {
		result.FromCache = true
		return result
	}

	lock, ok := l.keyLocks[key]
	if !ok {
		// Unknown keys have no descriptor to read or synthesize from.
		// Handing back an empty table keeps the no-error contract.
		l.logger.WarnContext(ctx, "load requested for unknown dataset",
			slog.String("dataset", string(key)))
		return LoadResult{
			Key:      key,
			Frame:    domain.NewFrame(),
			Source:   domain.DataSourceSynthetic,
			Status:   StatusSourceUnavailable,
			Detail:   "unknown dataset key",
			LoadedAt: time.Now(),
		}
	}

	lock.Lock()
	defer lock.Unlock()

	// Another request may have populated the entry while we waited. The
	// miss was already counted above, so this recheck must not count again.
	if result, ok := l.cache.Peek(key); ok {
		result.FromCache = true
		return result
	}

	desc, _ := l.registry.Get(key)
	attempt := l.tryLoad(desc)

	result := LoadResult{
		Key:      key,
		Status:   attempt.status,
		Detail:   attempt.detail,
		LoadedAt: time.Now(),
	}

	switch attempt.status {
	case StatusOK:
		result.Frame = attempt.frame
		result.Source = domain.DataSourceReal
	default:
		result.Frame = l.generator.Synthesize(key)
		result.Source = domain.DataSourceSynthetic
		l.logger.WarnContext(ctx, "dataset source unusable, using synthetic substitute",
			slog.String("dataset", string(key)),
			slog.String("status", string(attempt.status)),
			slog.String("detail", attempt.detail))
	}

	if desc.CategoryFilter {
		result.Frame = result.Frame.FilterRows("item_id", func(itemID string) bool {
			return strings.HasPrefix(itemID, l.category)
		})
	}

	l.cache.Set(key, result, desc.TTL)

	l.logger.InfoContext(ctx, "dataset loaded",
		slog.String("dataset", string(key)),
		slog.String("source", string(result.Source)),
		slog.Int("rows", result.Frame.RowCount()))

	return result
}

// tryLoad attempts the real path: stat, open, parse, validate. It reports
// the explicit failure category instead of an error so Load can switch
// over the outcome.
func (l *Loader) tryLoad(desc config.Descriptor) tryLoadResult {
	info, err := os.Stat(desc.Path)
	if err != nil {
		return tryLoadResult{status: StatusSourceUnavailable, detail: "file not found"}
	}
	if info.IsDir() {
		return tryLoadResult{status: StatusSourceUnavailable, detail: "path is a directory"}
	}
	if info.Size() == 0 {
		return tryLoadResult{status: StatusSourceMalformed, detail: "file is empty"}
	}

	frame, err := ReadFrameFile(desc.Path)
	if err != nil {
		return tryLoadResult{status: StatusSourceMalformed, detail: err.Error()}
	}

	if valid, problems := l.validator.Validate(desc, frame); !valid {
		return tryLoadResult{status: StatusSchemaInvalid, detail: strings.Join(problems, "; ")}
	}

	return tryLoadResult{status: StatusOK, frame: frame}
}

// Calendar returns the calendar table.
func (l *Loader) Calendar(ctx context.Context) *domain.Frame {
	return l.Load(ctx, config.DatasetCalendar).Frame
}

// Sales returns the sales table, filtered to the configured category.
// The evaluation flag selects the evaluation artifact over the training one.
func (l *Loader) Sales(ctx context.Context, evaluation bool) *domain.Frame {
	key := config.DatasetSalesTrain
	if evaluation {
		key = config.DatasetSalesEvaluation
	}
	return l.Load(ctx, key).Frame
}

// Prices returns the pricing table, filtered to the configured category.
func (l *Loader) Prices(ctx context.Context) *domain.Frame {
	return l.Load(ctx, config.DatasetPrices).Frame
}

// TestResults returns the evaluation test summary table.
func (l *Loader) TestResults(ctx context.Context) *domain.Frame {
	return l.Load(ctx, config.DatasetTestResults).Frame
}

// ModelPerformance returns the model performance table.
func (l *Loader) ModelPerformance(ctx context.Context) *domain.Frame {
	return l.Load(ctx, config.DatasetModelPerformance).Frame
}

// BestModels returns the best-model-by-pattern table.
func (l *Loader) BestModels(ctx context.Context) *domain.Frame {
	return l.Load(ctx, config.DatasetBestModels).Frame
}

// PatternExamples returns the example table for a pattern type. An
// unrecognized pattern name yields an uncached synthetic table so the
// caller still gets a usable shape.
func (l *Loader) PatternExamples(ctx context.Context, patternType string) *domain.Frame {
	key, ok := config.PatternKey(patternType)
	if !ok {
		l.logger.WarnContext(ctx, "unknown pattern type, using synthetic examples",
			slog.String("pattern_type", patternType))
		return l.generator.PatternExamples()
	}
	return l.Load(ctx, key).Frame
}

// Clear empties the cache unconditionally and returns the number of
// entries removed. The next load for any key repeats the full sequence.
func (l *Loader) Clear() int {
	return l.cache.Clear()
}

// CacheStats returns a snapshot of cache counters.
func (l *Loader) CacheStats() CacheStats {
	return l.cache.Stats()
}

// Keys lists every dataset key the loader can serve.
func (l *Loader) Keys() []config.DatasetKey {
	return l.registry.Keys()
}

// Known reports whether a dataset key is registered.
func (l *Loader) Known(key config.DatasetKey) bool {
	_, ok := l.registry.Get(key)
	return ok
}
