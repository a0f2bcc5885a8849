package http

import (
	"errors"
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"demandcli/internal/config"
	apierrors "demandcli/internal/errors"
	"demandcli/internal/middleware"
	"demandcli/internal/services"
)

// DataHandler serves the dataset, catalog and evaluation endpoints with
// RFC 7807 error responses.
type DataHandler struct {
	service      DataServiceInterface
	params       *middleware.QueryParamValidator
	pageSize     int
	displayLimit int
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDataHandler creates a data handler. Paging defaults come from the data
// configuration: limit defaults to PageSize and is capped at DisplayLimit.
func NewDataHandler(service DataServiceInterface, data config.DataConfig, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:      service,
		params:       middleware.NewQueryParamValidator(logger, errorHandler),
		pageSize:     data.PageSize,
		displayLimit: data.DisplayLimit,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the data routes, mounted under /api by the server.
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()

	// Use render for consistent JSON responses
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.NotFound(h.errorHandler.NotFound)
	r.MethodNotAllowed(h.errorHandler.MethodNotAllowed)

	r.Route("/datasets", func(r chi.Router) {
		// Refresh discards every cached table; keep an audit trail of who
		// triggered it.
		r.With(middleware.AuditLog(h.logger)).Post("/refresh", h.RefreshDatasets)
		r.Get("/{key}", h.GetDataset)
	})

	r.Route("/series/{item}/{store}", func(r chi.Router) {
		r.Use(h.SeriesCtx) // Validate product and store identifiers
		r.Get("/", h.GetSeries)
	})

	r.Get("/summary", h.GetSummary)

	r.Route("/catalog", func(r chi.Router) {
		r.Get("/stores", h.GetStores)
		r.Get("/products", h.GetProducts)
		r.Get("/date-range", h.GetDateRange)
	})

	r.Get("/models", h.GetModelPerformance)
	r.Get("/models/best", h.GetBestModels)
	r.Get("/tests", h.GetTestResults)
	r.Get("/patterns/{type}", h.GetPatternExamples)

	return r
}

// SeriesCtx middleware validates the series path parameters
func (h *DataHandler) SeriesCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		item := chi.URLParam(r, "item")
		store := chi.URLParam(r, "store")

		// Basic shape checks; existence is decided by the data service
		if item == "" || len(item) > 32 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("item", "Invalid product identifier"))
			return
		}

		if store == "" || len(store) > 8 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("store", "Invalid store identifier"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetDataset handles GET /api/datasets/{key} with RFC 7807 errors
func (h *DataHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	reqID := chimiddleware.GetReqID(r.Context())
	key := chi.URLParam(r, "key")

	limit, ok := h.params.ValidateInt(w, r, "limit", 1, h.displayLimit, h.pageSize)
	if !ok {
		return
	}
	offset, ok := h.params.ValidateInt(w, r, "offset", 0, math.MaxInt32, 0)
	if !ok {
		return
	}

	h.logger.InfoContext(r.Context(), "fetching dataset",
		slog.String("request_id", reqID),
		slog.String("key", key),
		slog.Int("limit", limit),
		slog.Int("offset", offset),
	)

	page, err := h.service.Dataset(r.Context(), key, limit, offset)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to get dataset",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)

		// Map service errors to API errors
		if errors.Is(err, services.ErrUnknownDataset) {
			h.errorHandler.HandleError(w, r, apierrors.DatasetNotFoundError(key))
			return
		}

		h.errorHandler.HandleError(w, r, err)
		return
	}

	// Success response
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   page,
		"count":  len(page.Rows),
	})
}

// RefreshDatasets handles POST /api/datasets/refresh with RFC 7807 errors
func (h *DataHandler) RefreshDatasets(w http.ResponseWriter, r *http.Request) {
	reqID := chimiddleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "refreshing datasets",
		slog.String("request_id", reqID),
	)

	cleared := h.service.Refresh(r.Context())

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"cleared": cleared,
		},
	})
}

// GetSeries handles GET /api/series/{item}/{store} with RFC 7807 errors
func (h *DataHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	reqID := chimiddleware.GetReqID(r.Context())
	item := chi.URLParam(r, "item")
	store := chi.URLParam(r, "store")

	h.logger.InfoContext(r.Context(), "fetching product series",
		slog.String("request_id", reqID),
		slog.String("item_id", item),
		slog.String("store_id", store),
	)

	points, err := h.service.ProductSeries(r.Context(), item, store)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to get product series",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)

		if errors.Is(err, services.ErrSeriesNotFound) {
			h.errorHandler.HandleError(w, r, apierrors.SeriesNotFoundError(item, store))
			return
		}

		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   points,
		"count":  len(points),
	})
}

// GetSummary handles GET /api/summary
func (h *DataHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.service.Summary(r.Context()),
	})
}

// GetStores handles GET /api/catalog/stores
func (h *DataHandler) GetStores(w http.ResponseWriter, r *http.Request) {
	stores := h.service.AvailableStores(r.Context())

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   stores,
		"count":  len(stores),
	})
}

// GetProducts handles GET /api/catalog/products with RFC 7807 errors
func (h *DataHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	reqID := chimiddleware.GetReqID(r.Context())

	// Unknown store filters simply match nothing
	store := r.URL.Query().Get("store")

	limit, ok := h.params.ValidateInt(w, r, "limit", 1, h.displayLimit, h.pageSize)
	if !ok {
		return
	}

	h.logger.InfoContext(r.Context(), "fetching products",
		slog.String("request_id", reqID),
		slog.String("store", store),
		slog.Int("limit", limit),
	)

	products := h.service.Products(r.Context(), store, limit)

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   products,
		"count":  len(products),
	})
}

// GetDateRange handles GET /api/catalog/date-range
func (h *DataHandler) GetDateRange(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.service.DateRange(r.Context()),
	})
}

// GetModelPerformance handles GET /api/models
func (h *DataHandler) GetModelPerformance(w http.ResponseWriter, r *http.Request) {
	models := h.service.ModelPerformance(r.Context())

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   models,
		"count":  len(models),
	})
}

// GetBestModels handles GET /api/models/best
func (h *DataHandler) GetBestModels(w http.ResponseWriter, r *http.Request) {
	best := h.service.BestModels(r.Context())

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   best,
		"count":  len(best),
	})
}

// GetTestResults handles GET /api/tests
func (h *DataHandler) GetTestResults(w http.ResponseWriter, r *http.Request) {
	results := h.service.TestResults(r.Context())

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   results,
		"count":  len(results),
	})
}

// GetPatternExamples handles GET /api/patterns/{type} with RFC 7807 errors
func (h *DataHandler) GetPatternExamples(w http.ResponseWriter, r *http.Request) {
	reqID := chimiddleware.GetReqID(r.Context())
	patternType := chi.URLParam(r, "type")

	h.logger.InfoContext(r.Context(), "fetching pattern examples",
		slog.String("request_id", reqID),
		slog.String("pattern_type", patternType),
	)

	examples, err := h.service.PatternExamples(r.Context(), patternType)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to get pattern examples",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)

		if errors.Is(err, services.ErrUnknownPattern) {
			h.errorHandler.HandleError(w, r, apierrors.PatternNotFoundError(patternType))
			return
		}

		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   examples,
		"count":  len(examples),
	})
}
