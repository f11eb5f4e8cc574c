package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body)
}

func assertContains(t *testing.T, body string, lines ...string) {
	t.Helper()
	for _, want := range lines {
		if !strings.Contains(body, want) {
			t.Errorf("expected exposition to contain %q", want)
		}
	}
}

func TestRecordFetch(t *testing.T) {
	m := New()

	m.RecordFetch(10*time.Millisecond, 5, nil)
	m.RecordFetch(10*time.Millisecond, 0, errors.New("boom"))

	assertContains(t, scrape(t, m),
		"salesmetrics_store_records_fetched_total 5",
		"salesmetrics_store_fetch_errors_total 1",
		"salesmetrics_store_fetch_duration_seconds_count 2",
	)
}

func TestRecordOperation(t *testing.T) {
	m := New()

	m.RecordOperation("funnel", nil)
	m.RecordOperation("funnel", nil)
	m.RecordOperation("funnel", errors.New("boom"))

	assertContains(t, scrape(t, m),
		`salesmetrics_operations_total{operation="funnel",result="ok"} 2`,
		`salesmetrics_operations_total{operation="funnel",result="error"} 1`,
	)
}

func TestWebSocketGauge(t *testing.T) {
	m := New()

	m.RecordWebSocketConnect()
	m.RecordWebSocketConnect()
	m.RecordWebSocketDisconnect()

	assertContains(t, scrape(t, m), "salesmetrics_websocket_connections 1")
}

func TestIngestionCounters(t *testing.T) {
	m := New()
	m.RecordEventReceived()
	m.RecordCallIngested("meta", "showed")
	m.RecordIngestError("validation")
	m.RecordClassification("meta", "high")
	m.RecordHTTPRequest("/api/classify", 200, time.Millisecond)

	assertContains(t, scrape(t, m),
		"salesmetrics_call_events_received_total 1",
		`salesmetrics_calls_ingested_total{outcome="showed",traffic_source="meta"} 1`,
		`salesmetrics_ingest_errors_total{reason="validation"} 1`,
		`salesmetrics_classifications_total{confidence="high",traffic_source="meta"} 1`,
		`salesmetrics_http_requests_total{route="/api/classify",status="200"} 1`,
	)
}

func TestGetIsSingleton(t *testing.T) {
	if Get() != Get() {
		t.Error("expected the same instance")
	}
}
