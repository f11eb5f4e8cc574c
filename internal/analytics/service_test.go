package analytics

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dennisdiepolder/monti/salesmetrics/internal/types"
	"github.com/rs/zerolog"
)

var fixedNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

// fakeStore applies the filter in memory and records every call
type fakeStore struct {
	mu       sync.Mutex
	records  []types.CallRecord
	err      error
	filters  []types.MetricsFilter
	inFlight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
	failDay  string
}

func (f *fakeStore) FetchCallRecords(ctx context.Context, filter types.MetricsFilter) ([]types.CallRecord, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	f.mu.Lock()
	f.filters = append(f.filters, filter)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if from, ok := filter.From(); ok && f.failDay != "" && from.Format("2006-01-02") == f.failDay {
		return nil, errors.New("shard unavailable")
	}

	var out []types.CallRecord
	for _, r := range f.records {
		if filter.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.filters)
}

func call(id string, src types.TrafficSource, outcome types.CallOutcome, at time.Time) types.CallRecord {
	return types.CallRecord{
		CallID:        id,
		WorkspaceID:   "ws-1",
		TrafficSource: src,
		Outcome:       outcome,
		CreatedAt:     at,
	}
}

func newTestService(store RecordFetcher, opts Options) *Service {
	return NewService(store, opts, zerolog.Nop()).WithClock(func() time.Time { return fixedNow })
}

func TestMetricsRequiresWorkspace(t *testing.T) {
	svc := newTestService(&fakeStore{}, Options{})
	_, err := svc.Metrics(context.Background(), types.NewMetricsFilter(""))
	if !errors.Is(err, ErrWorkspaceRequired) {
		t.Errorf("expected ErrWorkspaceRequired, got %v", err)
	}
}

func TestMetricsWrapsStoreError(t *testing.T) {
	cause := errors.New("connection refused")
	svc := newTestService(&fakeStore{err: cause}, Options{})

	_, err := svc.Metrics(context.Background(), types.NewMetricsFilter("ws-1"))

	var fetchErr *RecordFetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected RecordFetchError, got %T", err)
	}
	if fetchErr.WorkspaceID != "ws-1" {
		t.Errorf("expected workspace ws-1, got %s", fetchErr.WorkspaceID)
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable through errors.Is")
	}
}

func TestMetricsEmptyStore(t *testing.T) {
	svc := newTestService(&fakeStore{}, Options{})
	got, err := svc.Metrics(context.Background(), types.NewMetricsFilter("ws-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (types.SalesMetrics{}) {
		t.Errorf("expected zeroed metrics, got %+v", got)
	}
}

func TestTrafficBreakdownIgnoresSourceConstraint(t *testing.T) {
	store := &fakeStore{}
	for i := 0; i < 60; i++ {
		store.records = append(store.records, call("o", types.TrafficOrganic, types.OutcomeScheduled, fixedNow))
	}
	for i := 0; i < 40; i++ {
		store.records = append(store.records, call("m", types.TrafficMeta, types.OutcomeScheduled, fixedNow))
	}
	svc := newTestService(store, Options{})

	got, err := svc.TrafficBreakdown(context.Background(), types.NewMetricsFilter("ws-1").WithTrafficSource(types.TrafficMeta))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.calls() != 1 {
		t.Errorf("expected a single fetch, got %d", store.calls())
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(got))
	}
	if got[0].TrafficSource != types.TrafficOrganic || got[0].Percentage != 60 {
		t.Errorf("unexpected organic segment %+v", got[0])
	}
	if got[1].TrafficSource != types.TrafficMeta || got[1].Percentage != 40 {
		t.Errorf("unexpected meta segment %+v", got[1])
	}
}

func TestFunnel(t *testing.T) {
	store := &fakeStore{}
	add := func(outcome types.CallOutcome, n int) {
		for i := 0; i < n; i++ {
			store.records = append(store.records, call("c", types.TrafficOrganic, outcome, fixedNow))
		}
	}
	add(types.OutcomeScheduled, 5)
	add(types.OutcomeShowed, 3)
	add(types.OutcomeClosedWon, 1)

	got, err := newTestService(store, Options{}).Funnel(context.Background(), types.NewMetricsFilter("ws-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[1].ConversionRate != 60 || got[2].ConversionRate != 33.33 {
		t.Errorf("unexpected funnel %+v", got)
	}
}

func TestToday(t *testing.T) {
	store := &fakeStore{records: []types.CallRecord{
		call("a", types.TrafficOrganic, types.OutcomeScheduled, fixedNow.Add(-time.Hour)),
		call("b", types.TrafficOrganic, types.OutcomeScheduled, fixedNow.Add(-13*time.Hour)),
	}}

	got, err := newTestService(store, Options{}).Today(context.Background(), "ws-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CallsScheduled != 1 {
		t.Errorf("expected only today's call, got %d", got.CallsScheduled)
	}
}
