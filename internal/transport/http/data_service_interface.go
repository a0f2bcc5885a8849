package http

import (
	"context"

	"demandcli/internal/services"
	"demandcli/pkg/contracts/domain"
)

// DataServiceInterface defines the data operations the handlers consume.
type DataServiceInterface interface {
	Dataset(ctx context.Context, key string, limit, offset int) (*services.DatasetPage, error)
	ExportFrame(ctx context.Context, key string) (*domain.Frame, services.Provenance, error)
	Refresh(ctx context.Context) int
	ProductSeries(ctx context.Context, itemID, storeID string) ([]domain.SeriesPoint, error)
	Summary(ctx context.Context) domain.SummaryStats
	AvailableStores(ctx context.Context) []string
	Products(ctx context.Context, store string, limit int) []string
	DateRange(ctx context.Context) domain.DateRange
	ModelPerformance(ctx context.Context) []domain.ModelPerformance
	BestModels(ctx context.Context) []domain.BestModel
	TestResults(ctx context.Context) []domain.TestResult
	PatternExamples(ctx context.Context, patternType string) ([]domain.PatternExample, error)
}
