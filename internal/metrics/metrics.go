package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics on a private registry
type Metrics struct {
	registry *prometheus.Registry

	// Ingestion
	eventsReceived  prometheus.Counter
	callsIngested   *prometheus.CounterVec
	ingestErrors    *prometheus.CounterVec
	classifications *prometheus.CounterVec

	// Record store
	fetchDuration  prometheus.Histogram
	fetchErrors    prometheus.Counter
	recordsFetched prometheus.Counter

	// Engine
	operations *prometheus.CounterVec

	// WebSocket
	wsConnections prometheus.Gauge
	wsMessages    prometheus.Counter
	wsErrors      prometheus.Counter

	// Dashboard
	dashboardCycles  prometheus.Histogram
	dashboardUpdates prometheus.Counter
	alertsRaised     *prometheus.CounterVec

	// HTTP
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// Global metrics instance
var instance *Metrics
var once sync.Once

// Get returns the singleton metrics instance
func Get() *Metrics {
	once.Do(func() {
		instance = New()
	})
	return instance
}

// New builds a metrics set on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		eventsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salesmetrics_call_events_received_total",
			Help: "Call events received from any source",
		}),
		callsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salesmetrics_calls_ingested_total",
			Help: "Call records persisted, by traffic source and outcome",
		}, []string{"traffic_source", "outcome"}),
		ingestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salesmetrics_ingest_errors_total",
			Help: "Rejected or failed call events, by reason",
		}, []string{"reason"}),
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salesmetrics_classifications_total",
			Help: "Traffic source classifications, by result and confidence",
		}, []string{"traffic_source", "confidence"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "salesmetrics_store_fetch_duration_seconds",
			Help:    "Record store fetch latency",
			Buckets: prometheus.DefBuckets,
		}),
		fetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salesmetrics_store_fetch_errors_total",
			Help: "Failed record store fetches",
		}),
		recordsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salesmetrics_store_records_fetched_total",
			Help: "Call records returned by the record store",
		}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salesmetrics_operations_total",
			Help: "Metrics engine operations, by operation and result",
		}, []string{"operation", "result"}),
		wsConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "salesmetrics_websocket_connections",
			Help: "Active dashboard websocket connections",
		}),
		wsMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salesmetrics_websocket_messages_total",
			Help: "Messages sent to dashboard clients",
		}),
		wsErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salesmetrics_websocket_errors_total",
			Help: "Websocket read/write errors",
		}),
		dashboardCycles: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "salesmetrics_dashboard_cycle_duration_seconds",
			Help:    "Duration of one dashboard publish cycle",
			Buckets: prometheus.DefBuckets,
		}),
		dashboardUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salesmetrics_dashboard_updates_total",
			Help: "Dashboard updates broadcast",
		}),
		alertsRaised: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salesmetrics_alerts_raised_total",
			Help: "KPI alerts raised, by rule",
		}, []string{"rule"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salesmetrics_http_requests_total",
			Help: "HTTP requests, by route and status",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "salesmetrics_http_request_duration_seconds",
			Help:    "HTTP request latency, by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		m.eventsReceived, m.callsIngested, m.ingestErrors, m.classifications,
		m.fetchDuration, m.fetchErrors, m.recordsFetched,
		m.operations,
		m.wsConnections, m.wsMessages, m.wsErrors,
		m.dashboardCycles, m.dashboardUpdates, m.alertsRaised,
		m.httpRequests, m.httpDuration,
	)
	return m
}

// RecordEventReceived increments the events received counter
func (m *Metrics) RecordEventReceived() {
	m.eventsReceived.Inc()
}

// RecordCallIngested counts a persisted call
func (m *Metrics) RecordCallIngested(trafficSource, outcome string) {
	m.callsIngested.WithLabelValues(trafficSource, outcome).Inc()
}

// RecordIngestError counts a rejected or failed event
func (m *Metrics) RecordIngestError(reason string) {
	m.ingestErrors.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordClassification(trafficSource, confidence string) {
	m.classifications.WithLabelValues(trafficSource, confidence).Inc()
}

// RecordFetch observes one record store round trip
func (m *Metrics) RecordFetch(duration time.Duration, records int, err error) {
	m.fetchDuration.Observe(duration.Seconds())
	if err != nil {
		m.fetchErrors.Inc()
		return
	}
	m.recordsFetched.Add(float64(records))
}

// RecordOperation counts an engine operation
func (m *Metrics) RecordOperation(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.operations.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) RecordWebSocketConnect()    { m.wsConnections.Inc() }
func (m *Metrics) RecordWebSocketDisconnect() { m.wsConnections.Dec() }
func (m *Metrics) RecordWebSocketMessage()    { m.wsMessages.Inc() }
func (m *Metrics) RecordWebSocketError()      { m.wsErrors.Inc() }

// RecordDashboardCycle observes a publish cycle and the updates it sent
func (m *Metrics) RecordDashboardCycle(duration time.Duration, updates int) {
	m.dashboardCycles.Observe(duration.Seconds())
	m.dashboardUpdates.Add(float64(updates))
}

func (m *Metrics) RecordAlert(rule string) {
	m.alertsRaised.WithLabelValues(rule).Inc()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(route string, statusCode int, duration time.Duration) {
	m.httpRequests.WithLabelValues(route, strconv.Itoa(statusCode)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
