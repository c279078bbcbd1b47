package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"mercator-hq/feedback/pkg/analytics"
	"mercator-hq/feedback/pkg/api"
	"mercator-hq/feedback/pkg/api/types"
)

// AnalyticsHandler handles GET /api/analytics.
type AnalyticsHandler struct {
	reader AnalyticsReader
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(reader AnalyticsReader) *AnalyticsHandler {
	return &AnalyticsHandler{reader: reader}
}

// ServeHTTP implements http.Handler.
func (h *AnalyticsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, err := requireAccount(r)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	report, err := h.reader.ForAccount(ctx, account)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	resp := types.AnalyticsResponse{
		Total:         report.Total,
		Positive:      report.Positive,
		Negative:      report.Negative,
		Neutral:       report.Neutral,
		Average:       report.Average,
		RequestsUsed:  report.RequestsUsed,
		RequestsLimit: report.RequestsLimit,
	}

	if err := api.WriteJSONResponse(w, http.StatusOK, resp); err != nil {
		slog.ErrorContext(ctx, "failed to write response", "error", err)
	}
}

// ExportHandler handles GET /api/analyses/export?format=csv|json.
type ExportHandler struct {
	reader AnalyticsReader
	now    func() time.Time
}

// NewExportHandler creates a new export handler.
func NewExportHandler(reader AnalyticsReader) *ExportHandler {
	return &ExportHandler{reader: reader, now: time.Now}
}

// ServeHTTP implements http.Handler. The body is streamed as an
// attachment named analyses-<date>.<format>.
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, err := requireAccount(r)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = analytics.FormatJSON
	}
	exporter, err := analytics.NewExporter(format)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	filename := fmt.Sprintf("analyses-%s.%s", h.now().UTC().Format("2006-01-02"), format)
	w.Header().Set("Content-Type", exporter.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	// Headers are committed by the first write, so a failure part way
	// through can only be logged.
	if err := h.reader.Export(ctx, account, exporter, w); err != nil {
		slog.ErrorContext(ctx, "export failed", "format", format, "error", err)
	}
}
