package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/dennisdiepolder/monti/salesmetrics/internal/analytics"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/report"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// MetricsHandler exposes the metrics engine over REST
type MetricsHandler struct {
	svc         *analytics.Service
	defaultDays int
	logger      zerolog.Logger
}

// NewMetricsHandler creates a new MetricsHandler. defaultDays is used when a
// request carries no days parameter.
func NewMetricsHandler(svc *analytics.Service, defaultDays int, logger zerolog.Logger) *MetricsHandler {
	return &MetricsHandler{
		svc:         svc,
		defaultDays: defaultDays,
		logger:      logger.With().Str("component", "metrics_handler").Logger(),
	}
}

// Routes registers the workspace routes on r
func (h *MetricsHandler) Routes(r chi.Router) {
	r.Route("/workspaces/{workspaceId}", func(r chi.Router) {
		r.Get("/metrics", h.GetMetrics)
		r.Get("/metrics/timeseries", h.GetTimeSeries)
		r.Get("/metrics/timeseries.xlsx", h.ExportTimeSeries)
		r.Get("/metrics/breakdown", h.GetBreakdown)
		r.Get("/metrics/funnel", h.GetFunnel)
		r.Get("/metrics/trends", h.GetTrends)
		r.Get("/classification/audit", h.GetAudit)
	})
}

// GetMetrics returns the KPI set for the filter
// GET /api/workspaces/{workspaceId}/metrics
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromRequest(r)
	if err != nil {
		fail(w, h.logger, "metrics", err)
		return
	}

	m, err := h.svc.Metrics(r.Context(), filter)
	if err != nil {
		fail(w, h.logger, "metrics", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// GetTimeSeries returns one entry per UTC day of the trailing window
// GET /api/workspaces/{workspaceId}/metrics/timeseries?days=N
func (h *MetricsHandler) GetTimeSeries(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromRequest(r)
	if err != nil {
		fail(w, h.logger, "timeseries", err)
		return
	}
	days, err := daysFromRequest(r, h.defaultDays, h.svc.MaxWindowDays())
	if err != nil {
		fail(w, h.logger, "timeseries", err)
		return
	}

	series, err := h.svc.TimeSeries(r.Context(), filter, days)
	if err != nil {
		fail(w, h.logger, "timeseries", err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// ExportTimeSeries returns the time series as a spreadsheet
// GET /api/workspaces/{workspaceId}/metrics/timeseries.xlsx?days=N
func (h *MetricsHandler) ExportTimeSeries(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromRequest(r)
	if err != nil {
		fail(w, h.logger, "timeseries_export", err)
		return
	}
	days, err := daysFromRequest(r, h.defaultDays, h.svc.MaxWindowDays())
	if err != nil {
		fail(w, h.logger, "timeseries_export", err)
		return
	}

	series, err := h.svc.TimeSeries(r.Context(), filter, days)
	if err != nil {
		fail(w, h.logger, "timeseries_export", err)
		return
	}

	// Render fully before writing headers so a failure can still be reported
	var buf bytes.Buffer
	if err := report.WriteTimeSeries(&buf, filter.WorkspaceID(), series); err != nil {
		fail(w, h.logger, "timeseries_export", err)
		return
	}

	filename := fmt.Sprintf("%s-timeseries-%dd.xlsx", filter.WorkspaceID(), days)
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// GetBreakdown returns the per-traffic-source split
// GET /api/workspaces/{workspaceId}/metrics/breakdown
func (h *MetricsHandler) GetBreakdown(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromRequest(r)
	if err != nil {
		fail(w, h.logger, "breakdown", err)
		return
	}

	segments, err := h.svc.TrafficBreakdown(r.Context(), filter)
	if err != nil {
		fail(w, h.logger, "breakdown", err)
		return
	}
	writeJSON(w, http.StatusOK, segments)
}

// GetFunnel returns the Scheduled -> Showed -> Closed Won funnel
// GET /api/workspaces/{workspaceId}/metrics/funnel
func (h *MetricsHandler) GetFunnel(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromRequest(r)
	if err != nil {
		fail(w, h.logger, "funnel", err)
		return
	}

	stages, err := h.svc.Funnel(r.Context(), filter)
	if err != nil {
		fail(w, h.logger, "funnel", err)
		return
	}
	writeJSON(w, http.StatusOK, stages)
}

// GetTrends compares the last N days with the N days before
// GET /api/workspaces/{workspaceId}/metrics/trends?days=N
func (h *MetricsHandler) GetTrends(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromRequest(r)
	if err != nil {
		fail(w, h.logger, "trends", err)
		return
	}
	days, err := daysFromRequest(r, h.defaultDays, h.svc.MaxWindowDays())
	if err != nil {
		fail(w, h.logger, "trends", err)
		return
	}

	trends, err := h.svc.TrendsLastDays(r.Context(), filter, days)
	if err != nil {
		fail(w, h.logger, "trends", err)
		return
	}
	writeJSON(w, http.StatusOK, trends)
}

// GetAudit re-classifies stored calls and reports disagreements
// GET /api/workspaces/{workspaceId}/classification/audit
func (h *MetricsHandler) GetAudit(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromRequest(r)
	if err != nil {
		fail(w, h.logger, "audit", err)
		return
	}

	audit, err := h.svc.AuditClassifications(r.Context(), filter)
	if err != nil {
		fail(w, h.logger, "audit", err)
		return
	}
	writeJSON(w, http.StatusOK, audit)
}
