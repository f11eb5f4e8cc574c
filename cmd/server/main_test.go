package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dennisdiepolder/monti/salesmetrics/internal/analytics"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/api"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/cache"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/config"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/event"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/ingestion"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/storage"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/websocket"
	"github.com/rs/zerolog"
)

func testRouter(t *testing.T) (http.Handler, *storage.MemoryStore) {
	t.Helper()
	logger := zerolog.Nop()
	cfg := &config.Config{AllowedOrigins: []string{"http://localhost:5173"}, DefaultWindowDays: 7, MaxWindowDays: 30}

	store := storage.NewMemoryStore()
	svc := analytics.NewService(store, analytics.Options{MaxWindowDays: cfg.MaxWindowDays}, logger)
	processor := ingestion.NewDefaultProcessor(store, cache.NewDirtySet(), logger)
	hub := websocket.NewHub(logger)
	go hub.Run()

	return newRouter(cfg, routes{
		metrics:   api.NewMetricsHandler(svc, cfg.DefaultWindowDays, logger),
		admin:     api.NewAdminHandler(store, hub, logger),
		receiver:  event.NewReceiver(processor, logger),
		websocket: websocket.NewHandler(hub, cfg, logger),
	}, logger), store
}

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	healthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var response map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response["status"] != "ok" || response["service"] != "salesmetrics" {
		t.Errorf("unexpected health response %v", response)
	}
}

func TestRouterWiring(t *testing.T) {
	router, _ := testRouter(t)

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"health", http.MethodGet, "/health", "", http.StatusOK, `"status":"ok"`},
		{"prometheus", http.MethodGet, "/metrics", "", http.StatusOK, "salesmetrics_"},
		{"ingest call", http.MethodPost, "/internal/calls", `{"workspace_id":"ws-1","call_outcome":"scheduled"}`, http.StatusOK, `"classification"`},
		{"receiver stats", http.MethodGet, "/internal/calls/stats", "", http.StatusOK, "events_received"},
		{"workspace metrics", http.MethodGet, "/api/workspaces/ws-1/metrics", "", http.StatusOK, "calls_scheduled"},
		{"window above max", http.MethodGet, "/api/workspaces/ws-1/metrics/timeseries?days=31", "", http.StatusBadRequest, "days"},
		{"classify", http.MethodPost, "/api/classify", `{"lead_source":"ads"}`, http.StatusOK, `"traffic_source":"meta"`},
		{"websocket needs workspace", http.MethodGet, "/ws", "", http.StatusBadRequest, "workspace_id"},
		{"unknown route", http.MethodGet, "/api/agents", "", http.StatusNotFound, ""},
		{"wrong method", http.MethodPut, "/api/classify", "", http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			} else {
				req = httptest.NewRequest(tt.method, tt.target, nil)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d (%s)", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("expected body to contain %q, got %s", tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestRouterAdminWipe(t *testing.T) {
	router, store := testRouter(t)

	ingest := httptest.NewRequest(http.MethodPost, "/internal/calls", strings.NewReader(`{"workspace_id":"ws-1","call_outcome":"showed"}`))
	router.ServeHTTP(httptest.NewRecorder(), ingest)
	if store.Count() != 1 {
		t.Fatalf("expected 1 stored call, got %d", store.Count())
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/internal/admin/wipe", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if store.Count() != 0 {
		t.Errorf("expected empty store, got %d", store.Count())
	}
}
