package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"demandcli/internal/config"
	"demandcli/internal/dataset"
	"demandcli/internal/infrastructure"
	"demandcli/pkg/contracts/domain"
	"demandcli/pkg/contracts/events"
)

// Broadcaster pushes events to connected WebSocket clients.
type Broadcaster interface {
	Broadcast(messageType string, data interface{})
}

// DataService provides dataset access functionality: paginated tables,
// assembled series, KPI summaries, catalog lookups and cache refresh.
type DataService struct {
	cfg        *config.Config
	loader     *dataset.Loader
	assembler  *dataset.Assembler
	aggregator *dataset.Aggregator
	hub        Broadcaster
	metrics    *infrastructure.BusinessMetrics
	logger     *slog.Logger
}

// NewDataService creates a new data service using the default logger.
func NewDataService(cfg *config.Config) *DataService {
	return NewDataServiceWithLogger(cfg, slog.Default())
}

// NewDataServiceWithLogger creates a new data service with a specific logger.
func NewDataServiceWithLogger(cfg *config.Config, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}

	registry := config.NewRegistry(cfg)

	logger.Info("DataService initialized",
		slog.String("data_dir", cfg.Data.Dir),
		slog.String("results_dir", cfg.Data.ResultsDir),
		slog.String("category", cfg.Data.Category),
		slog.Int("datasets", len(registry.Keys())))

	return &DataService{
		cfg:        cfg,
		loader:     dataset.NewLoader(registry, cfg.Data, logger),
		assembler:  dataset.NewAssembler(logger),
		aggregator: dataset.NewAggregator(config.DefaultKeyMetrics, logger),
		logger:     logger,
	}
}

// SetBroadcaster wires the hub used to announce refresh events.
func (s *DataService) SetBroadcaster(hub Broadcaster) {
	s.hub = hub
}

// SetMetrics wires business metrics recording.
func (s *DataService) SetMetrics(metrics *infrastructure.BusinessMetrics) {
	s.metrics = metrics
}

// Provenance describes how a served table was obtained.
type Provenance struct {
	Source   string    `json:"source"`
	Status   string    `json:"status"`
	Detail   string    `json:"detail,omitempty"`
	LoadedAt time.Time `json:"loaded_at"`
}

// DatasetPage is one page of a dataset table plus its provenance.
type DatasetPage struct {
	Key        string     `json:"key"`
	Columns    []string   `json:"columns"`
	Rows       [][]string `json:"rows"`
	Total      int        `json:"total"`
	Limit      int        `json:"limit"`
	Offset     int        `json:"offset"`
	Provenance Provenance `json:"provenance"`
}

// load resolves a dataset through the loader and records load metrics.
func (s *DataService) load(ctx context.Context, key config.DatasetKey) dataset.LoadResult {
	start := time.Now()
	result := s.loader.Load(ctx, key)
	infrastructure.RecordDatasetLoad(ctx, s.metrics,
		string(result.Key), string(result.Source), string(result.Status),
		result.Frame.RowCount(), time.Since(start), result.FromCache)
	return result
}

func provenanceOf(result dataset.LoadResult) Provenance {
	source := string(result.Source)
	if result.FromCache {
		source = "cache"
	}
	return Provenance{
		Source:   source,
		Status:   string(result.Status),
		Detail:   result.Detail,
		LoadedAt: result.LoadedAt,
	}
}

// Dataset returns one page of the named dataset. The page limit defaults to
// the configured page size and is capped by the display limit.
func (s *DataService) Dataset(ctx context.Context, key string, limit, offset int) (*DatasetPage, error) {
	dsKey := config.DatasetKey(key)
	if !s.loader.Known(dsKey) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDataset, key)
	}

	if limit <= 0 {
		limit = s.cfg.Data.PageSize
	}
	if limit > s.cfg.Data.DisplayLimit {
		limit = s.cfg.Data.DisplayLimit
	}
	if offset < 0 {
		offset = 0
	}

	result := s.load(ctx, dsKey)
	page := result.Frame.Slice(offset, limit)

	s.logger.DebugContext(ctx, "dataset page served",
		slog.String("dataset", key),
		slog.Int("total", result.Frame.RowCount()),
		slog.Int("rows", page.RowCount()),
		slog.String("source", string(result.Source)))

	return &DatasetPage{
		Key:        key,
		Columns:    page.Columns,
		Rows:       page.Rows,
		Total:      result.Frame.RowCount(),
		Limit:      limit,
		Offset:     offset,
		Provenance: provenanceOf(result),
	}, nil
}

// ExportFrame returns the full table for an export. Row caps are enforced
// by the exporter, which knows the output format.
func (s *DataService) ExportFrame(ctx context.Context, key string) (*domain.Frame, Provenance, error) {
	dsKey := config.DatasetKey(key)
	if !s.loader.Known(dsKey) {
		return nil, Provenance{}, fmt.Errorf("%w: %s", ErrUnknownDataset, key)
	}

	result := s.load(ctx, dsKey)
	return result.Frame, provenanceOf(result), nil
}

// Refresh clears every cached dataset and announces the refresh to
// connected clients. It returns the number of entries removed. The next
// load for any key repeats the full source-or-synthetic sequence.
func (s *DataService) Refresh(ctx context.Context) int {
	cleared := s.loader.Clear()
	infrastructure.RecordRefresh(ctx, s.metrics, cleared)

	if s.hub != nil {
		s.hub.Broadcast(string(events.MessageTypeDataRefresh), events.RefreshEvent{
			Cleared:     cleared,
			RequestedAt: time.Now(),
		})
	}

	s.logger.InfoContext(ctx, "dataset cache refreshed",
		slog.Int("cleared", cleared))

	return cleared
}

// ProductSeries assembles the daily sales history of one product at one
// store, joined to calendar attributes in chronological order.
func (s *DataService) ProductSeries(ctx context.Context, itemID, storeID string) ([]domain.SeriesPoint, error) {
	sales := s.load(ctx, config.DatasetSalesTrain).Frame
	calendar := s.load(ctx, config.DatasetCalendar).Frame

	points := s.assembler.Assemble(sales, calendar, itemID, storeID)
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: %s at %s", ErrSeriesNotFound, itemID, storeID)
	}

	return points, nil
}

// Summary derives the dashboard KPI set from the loaded tables. Missing or
// unusable inputs fall back to the study's published key metrics.
func (s *DataService) Summary(ctx context.Context) domain.SummaryStats {
	sales := s.load(ctx, config.DatasetSalesTrain).Frame
	tests := s.load(ctx, config.DatasetTestResults).Frame
	return s.aggregator.Summarize(sales, tests)
}

// AvailableStores lists the distinct store identifiers present in the
// sales table, sorted. The static store roster serves as fallback when the
// table carries no store column.
func (s *DataService) AvailableStores(ctx context.Context) []string {
	sales := s.load(ctx, config.DatasetSalesTrain).Frame

	values := sales.ColumnValues("store_id")
	if len(values) == 0 {
		stores := make([]string, len(config.Stores))
		copy(stores, config.Stores)
		return stores
	}

	seen := make(map[string]struct{}, len(values))
	stores := make([]string, 0, len(config.Stores))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		stores = append(stores, v)
	}
	sort.Strings(stores)

	return stores
}

// Products lists distinct product identifiers from the sales table in table
// order, optionally restricted to one store, capped by limit.
func (s *DataService) Products(ctx context.Context, store string, limit int) []string {
	if limit <= 0 || limit > s.cfg.Data.DisplayLimit {
		limit = s.cfg.Data.DisplayLimit
	}

	sales := s.load(ctx, config.DatasetSalesTrain).Frame
	if store != "" {
		sales = sales.FilterRows("store_id", func(v string) bool { return v == store })
	}

	values := sales.ColumnValues("item_id")
	seen := make(map[string]struct{}, len(values))
	products := make([]string, 0, limit)
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		products = append(products, v)
		if len(products) == limit {
			break
		}
	}

	return products
}

// DateRange returns the inclusive date span of the calendar table. The
// study horizon constants serve as fallback when no cell parses as a date.
func (s *DataService) DateRange(ctx context.Context) domain.DateRange {
	calendar := s.load(ctx, config.DatasetCalendar).Frame

	var minDate, maxDate time.Time
	for _, cell := range calendar.ColumnValues("date") {
		t, err := time.Parse(config.DateLayout, strings.TrimSpace(cell))
		if err != nil {
			continue
		}
		if minDate.IsZero() || t.Before(minDate) {
			minDate = t
		}
		if maxDate.IsZero() || t.After(maxDate) {
			maxDate = t
		}
	}

	if minDate.IsZero() || maxDate.IsZero() {
		minDate, _ = time.Parse(config.DateLayout, config.StudyStartDate)
		maxDate, _ = time.Parse(config.DateLayout, config.StudyEndDate)
	}

	return domain.DateRange{MinDate: minDate, MaxDate: maxDate}
}

// ModelPerformance returns the model error metrics in typed form.
func (s *DataService) ModelPerformance(ctx context.Context) []domain.ModelPerformance {
	frame := s.load(ctx, config.DatasetModelPerformance).Frame

	rows := make([]domain.ModelPerformance, 0, frame.RowCount())
	for i := 0; i < frame.RowCount(); i++ {
		rows = append(rows, domain.ModelPerformance{
			ModelName:   cellOr(frame, i, "model_name"),
			PatternType: cellOr(frame, i, "pattern_type"),
			MAE:         floatOr(frame, i, "mae"),
			RMSE:        floatOr(frame, i, "rmse"),
			MAPE:        floatOr(frame, i, "mape"),
			R2Score:     floatOr(frame, i, "r2_score"),
		})
	}

	return rows
}

// BestModels returns the winning model per pattern type in typed form.
func (s *DataService) BestModels(ctx context.Context) []domain.BestModel {
	frame := s.load(ctx, config.DatasetBestModels).Frame

	rows := make([]domain.BestModel, 0, frame.RowCount())
	for i := 0; i < frame.RowCount(); i++ {
		rows = append(rows, domain.BestModel{
			PatternType: cellOr(frame, i, "pattern_type"),
			BestModel:   cellOr(frame, i, "best_model"),
			MAE:         floatOr(frame, i, "mae"),
			Improvement: floatOr(frame, i, "improvement"),
		})
	}

	return rows
}

// TestResults returns the evaluation test outcomes in typed form.
func (s *DataService) TestResults(ctx context.Context) []domain.TestResult {
	frame := s.load(ctx, config.DatasetTestResults).Frame

	rows := make([]domain.TestResult, 0, frame.RowCount())
	for i := 0; i < frame.RowCount(); i++ {
		rows = append(rows, domain.TestResult{
			TestName:    cellOr(frame, i, "test_name"),
			Status:      domain.TestStatus(cellOr(frame, i, "status")),
			Description: cellOr(frame, i, "description"),
			Score:       floatOr(frame, i, "score"),
		})
	}

	return rows
}

// PatternExamples returns example products for one pattern type. The type
// must be one of the registered pattern names; matching is case-insensitive
// and tolerant of separators.
func (s *DataService) PatternExamples(ctx context.Context, patternType string) ([]domain.PatternExample, error) {
	key, ok := config.PatternKey(patternType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPattern, patternType)
	}

	frame := s.load(ctx, key).Frame

	rows := make([]domain.PatternExample, 0, frame.RowCount())
	for i := 0; i < frame.RowCount(); i++ {
		rows = append(rows, domain.PatternExample{
			ItemID:          cellOr(frame, i, "item_id"),
			StoreID:         cellOr(frame, i, "store_id"),
			PatternStrength: floatOr(frame, i, "pattern_strength"),
			AvgSales:        floatOr(frame, i, "avg_sales"),
			ZeroRate:        floatOr(frame, i, "zero_rate"),
		})
	}

	return rows, nil
}

// WarmUp loads every registered dataset once so first requests hit the
// cache. Loads cannot fail; the group bounds concurrency and honors
// context cancellation during shutdown.
func (s *DataService) WarmUp(ctx context.Context) error {
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Data.WarmWorkers)

	for _, key := range s.loader.Keys() {
		key := key
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s.load(ctx, key)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("cache warm-up interrupted: %w", err)
	}

	s.logger.InfoContext(ctx, "dataset cache warmed",
		slog.Int("datasets", len(s.loader.Keys())),
		slog.Duration("elapsed", time.Since(start)))

	return nil
}

// CacheStats returns a snapshot of the dataset cache counters.
func (s *DataService) CacheStats() dataset.CacheStats {
	return s.loader.CacheStats()
}

// DatasetKeys lists the dataset keys the service can serve.
func (s *DataService) DatasetKeys() []string {
	keys := s.loader.Keys()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}

func cellOr(frame *domain.Frame, row int, column string) string {
	v, _ := frame.Cell(row, column)
	return v
}

func floatOr(frame *domain.Frame, row int, column string) float64 {
	v, err := frame.Float(row, column)
	if err != nil {
		return 0
	}
	return v
}
