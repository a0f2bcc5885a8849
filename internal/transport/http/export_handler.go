package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	apierrors "demandcli/internal/errors"
	"demandcli/internal/exporter"
	"demandcli/internal/infrastructure"
	"demandcli/internal/middleware"
	"demandcli/internal/services"
)

// ExportHandler streams dataset downloads in CSV or XLSX form.
type ExportHandler struct {
	service      DataServiceInterface
	exporter     *exporter.DatasetExporter
	params       *middleware.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewExportHandler creates an export handler around the given exporter.
func NewExportHandler(service DataServiceInterface, exp *exporter.DatasetExporter, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportHandler {
	return &ExportHandler{
		service:      service,
		exporter:     exp,
		params:       middleware.NewQueryParamValidator(logger, errorHandler),
		logger:       logger.With(slog.String("component", "export_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the export routes, mounted under /api by the server.
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{key}", h.ExportDataset)
	return r
}

// ExportDataset handles GET /api/export/{key}?format=csv|xlsx. The row cap
// is checked before any byte is written so oversized exports still get a
// proper 413 problem response.
func (h *ExportHandler) ExportDataset(w http.ResponseWriter, r *http.Request) {
	reqID := chimiddleware.GetReqID(r.Context())
	key := chi.URLParam(r, "key")

	formatParam, ok := h.params.ValidateEnum(w, r, "format", []string{string(exporter.FormatCSV), string(exporter.FormatXLSX)}, string(exporter.FormatCSV))
	if !ok {
		return
	}
	format, err := exporter.ParseFormat(formatParam)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", err.Error()))
		return
	}

	h.logger.InfoContext(r.Context(), "exporting dataset",
		slog.String("request_id", reqID),
		slog.String("key", key),
		slog.String("format", string(format)),
	)

	frame, provenance, err := h.service.ExportFrame(r.Context(), key)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to resolve export dataset",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)

		if errors.Is(err, services.ErrUnknownDataset) {
			h.errorHandler.HandleError(w, r, apierrors.DatasetNotFoundError(key))
			return
		}

		h.errorHandler.HandleError(w, r, err)
		return
	}

	if limit := h.exporter.Limit(); limit > 0 && frame.RowCount() > limit {
		h.errorHandler.HandleError(w, r, apierrors.ExportTooLargeError(frame.RowCount(), limit))
		return
	}

	filename := exporter.Filename(key, format, time.Now())
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("X-Data-Source", provenance.Source)

	start := time.Now()
	err = h.exporter.Export(r.Context(), w, key, frame, format)
	infrastructure.RecordExport(r.Context(), middleware.GetBusinessMetricsFromContext(r.Context()),
		key, string(format), frame.RowCount(), time.Since(start), err)
	if err != nil {
		// The response already started; all we can do is log it.
		h.logger.ErrorContext(r.Context(), "export stream failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
			slog.String("key", key),
			slog.String("format", string(format)),
		)
		return
	}

	h.logger.InfoContext(r.Context(), "export completed",
		slog.String("request_id", reqID),
		slog.String("key", key),
		slog.String("format", string(format)),
		slog.Int("rows", frame.RowCount()),
		slog.String("filename", filename),
	)
}
