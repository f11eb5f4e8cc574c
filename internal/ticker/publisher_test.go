package ticker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dennisdiepolder/monti/salesmetrics/internal/alerts"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/analytics"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/cache"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/storage"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/types"
	"github.com/rs/zerolog"
)

var fixedNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

type fakeHub struct {
	mu          sync.Mutex
	subscribers map[string]bool
	published   map[string][][]byte
}

func newFakeHub(workspaces ...string) *fakeHub {
	h := &fakeHub{subscribers: make(map[string]bool), published: make(map[string][][]byte)}
	for _, ws := range workspaces {
		h.subscribers[ws] = true
	}
	return h
}

func (h *fakeHub) Publish(workspaceID string, message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.published[workspaceID] = append(h.published[workspaceID], message)
}

func (h *fakeHub) HasSubscribers(workspaceID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.subscribers[workspaceID]
}

func (h *fakeHub) Workspaces() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.subscribers))
	for ws, ok := range h.subscribers {
		if ok {
			out = append(out, ws)
		}
	}
	return out
}

func (h *fakeHub) count(workspaceID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.published[workspaceID])
}

func newTestPublisher(t *testing.T, hub Broadcaster, dirty *cache.DirtySet, interval time.Duration) *Publisher {
	t.Helper()
	store := storage.NewMemoryStore()
	for i, outcome := range []types.CallOutcome{types.OutcomeScheduled, types.OutcomeScheduled, types.OutcomeShowed} {
		err := store.SaveCallRecord(context.Background(), types.CallRecord{
			CallID:        string(rune('a' + i)),
			WorkspaceID:   "ws-1",
			TrafficSource: types.TrafficOrganic,
			Outcome:       outcome,
			CreatedAt:     fixedNow.Add(-time.Hour),
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	svc := analytics.NewService(store, analytics.Options{}, zerolog.Nop()).
		WithClock(func() time.Time { return fixedNow })
	thresholds := alerts.Thresholds{MinShowRate: 60, MinCloseRate: 20, MinSample: 1}
	return NewPublisher(hub, svc, dirty, thresholds, interval, zerolog.New(&bytes.Buffer{}))
}

func TestTickPublishesDirtySubscribedWorkspaces(t *testing.T) {
	hub := newFakeHub("ws-1")
	dirty := cache.NewDirtySet()
	dirty.Mark("ws-1")
	dirty.Mark("ws-2") // no subscribers

	p := newTestPublisher(t, hub, dirty, time.Second)

	if sent := p.tick(context.Background()); sent != 1 {
		t.Fatalf("expected 1 update, got %d", sent)
	}
	if hub.count("ws-2") != 0 {
		t.Error("expected no update for a workspace without subscribers")
	}
	if dirty.Size() != 0 {
		t.Error("expected dirty set to be drained")
	}

	var update types.DashboardUpdate
	if err := json.Unmarshal(hub.published["ws-1"][0], &update); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if update.Type != MessageTypeDashboardUpdate || update.WorkspaceID != "ws-1" {
		t.Errorf("unexpected envelope %+v", update)
	}
	if update.Date != "2026-10-17" {
		t.Errorf("expected date 2026-10-17, got %s", update.Date)
	}
	if update.Metrics.CallsScheduled != 2 || update.Metrics.CallsShowed != 1 {
		t.Errorf("unexpected metrics %+v", update.Metrics)
	}
	if len(update.Funnel) != 3 {
		t.Errorf("expected 3 funnel stages, got %d", len(update.Funnel))
	}
	// show rate 50 with a 60 threshold
	if len(update.Alerts) == 0 || update.Alerts[0].Rule != alerts.RuleLowShowRate {
		t.Errorf("expected a low show rate alert, got %+v", update.Alerts)
	}
}

func TestTickSkipsCleanWorkspaces(t *testing.T) {
	hub := newFakeHub("ws-1")
	p := newTestPublisher(t, hub, cache.NewDirtySet(), time.Second)

	if sent := p.tick(context.Background()); sent != 0 {
		t.Errorf("expected nothing published, got %d", sent)
	}
}

type brokenMetrics struct{}

func (brokenMetrics) Today(context.Context, string) (types.SalesMetrics, error) {
	return types.SalesMetrics{}, errors.New("store down")
}

func (brokenMetrics) Now() time.Time { return fixedNow }

func TestTickContinuesAfterError(t *testing.T) {
	hub := newFakeHub("ws-1")
	dirty := cache.NewDirtySet()
	dirty.Mark("ws-1")

	p := NewPublisher(hub, brokenMetrics{}, dirty, alerts.DefaultThresholds(), time.Second, zerolog.Nop())
	if sent := p.tick(context.Background()); sent != 0 {
		t.Errorf("expected no updates, got %d", sent)
	}
}

func TestPublisherStartPublishesAndStops(t *testing.T) {
	hub := newFakeHub("ws-1")
	dirty := cache.NewDirtySet()
	p := newTestPublisher(t, hub, dirty, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Start(ctx)
		close(done)
	}()

	dirty.Mark("ws-1")
	deadline := time.After(time.Second)
	for hub.count("ws-1") == 0 {
		select {
		case <-deadline:
			t.Fatal("expected an update to be published")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("publisher did not stop after context cancel")
	}
}

func TestSnapshotPublishesImmediately(t *testing.T) {
	hub := newFakeHub("ws-1")
	dirty := cache.NewDirtySet()
	p := newTestPublisher(t, hub, dirty, time.Hour)

	if err := p.Snapshot(context.Background(), "ws-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hub.count("ws-1") != 1 {
		t.Fatalf("expected 1 snapshot, got %d", hub.count("ws-1"))
	}

	var update types.DashboardUpdate
	if err := json.Unmarshal(hub.published["ws-1"][0], &update); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if update.Metrics.CallsScheduled != 2 {
		t.Errorf("expected today's metrics in the snapshot, got %+v", update.Metrics)
	}
}

func TestSnapshotError(t *testing.T) {
	hub := newFakeHub("ws-1")
	p := NewPublisher(hub, brokenMetrics{}, cache.NewDirtySet(), alerts.DefaultThresholds(), time.Second, zerolog.Nop())

	if err := p.Snapshot(context.Background(), "ws-1"); err == nil {
		t.Error("expected an error")
	}
	if hub.count("ws-1") != 0 {
		t.Error("expected nothing published")
	}
}

// movingClock serves empty metrics with an adjustable current time
type movingClock struct {
	now time.Time
}

func (c *movingClock) Today(context.Context, string) (types.SalesMetrics, error) {
	return types.SalesMetrics{}, nil
}

func (c *movingClock) Now() time.Time { return c.now }

func TestTickRefreshesAllSubscribersOnDayChange(t *testing.T) {
	hub := newFakeHub("ws-1", "ws-2")
	dirty := cache.NewDirtySet()
	clock := &movingClock{now: time.Date(2026, 10, 17, 23, 59, 0, 0, time.UTC)}
	p := NewPublisher(hub, clock, dirty, alerts.DefaultThresholds(), time.Second, zerolog.Nop())

	if sent := p.tick(context.Background()); sent != 0 {
		t.Fatalf("expected nothing on the first tick, got %d", sent)
	}

	dirty.Mark("ws-1")
	clock.now = clock.now.Add(2 * time.Minute)
	if sent := p.tick(context.Background()); sent != 2 {
		t.Fatalf("expected both subscribed workspaces refreshed, got %d", sent)
	}
	if hub.count("ws-1") != 1 || hub.count("ws-2") != 1 {
		t.Errorf("expected one update each, got %d / %d", hub.count("ws-1"), hub.count("ws-2"))
	}

	clock.now = clock.now.Add(time.Minute)
	if sent := p.tick(context.Background()); sent != 0 {
		t.Errorf("expected no refresh within the same day, got %d", sent)
	}
}
