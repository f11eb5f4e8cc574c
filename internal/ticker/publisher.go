package ticker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dennisdiepolder/monti/salesmetrics/internal/aggregator"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/alerts"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/metrics"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/types"
	"github.com/rs/zerolog"
)

// MessageTypeDashboardUpdate tags live dashboard pushes
const MessageTypeDashboardUpdate = "dashboard_update"

// Broadcaster routes a payload to the subscribers of one workspace
type Broadcaster interface {
	Publish(workspaceID string, message []byte)
	HasSubscribers(workspaceID string) bool
	Workspaces() []string
}

// TodayMetrics computes the current UTC day's metrics of a workspace
type TodayMetrics interface {
	Today(ctx context.Context, workspaceID string) (types.SalesMetrics, error)
	Now() time.Time
}

// DirtySource drains the workspaces touched since the last tick
type DirtySource interface {
	GetAndClear() []string
}

// Publisher periodically pushes fresh dashboard metrics to subscribed clients
type Publisher struct {
	hub        Broadcaster
	metrics    TodayMetrics
	dirty      DirtySource
	thresholds alerts.Thresholds
	interval   time.Duration
	logger     zerolog.Logger

	// UTC day of the previous tick; only touched by the publish loop
	lastDay string
}

// NewPublisher creates a new Publisher
func NewPublisher(hub Broadcaster, svc TodayMetrics, dirty DirtySource, thresholds alerts.Thresholds, interval time.Duration, logger zerolog.Logger) *Publisher {
	return &Publisher{
		hub:        hub,
		metrics:    svc,
		dirty:      dirty,
		thresholds: thresholds,
		interval:   interval,
		logger:     logger.With().Str("component", "dashboard_publisher").Logger(),
	}
}

// Start runs the publish loop until ctx is cancelled
func (p *Publisher) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info().Dur("interval", p.interval).Msg("dashboard publisher started")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("dashboard publisher stopped")
			return

		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// Snapshot publishes the current state of one workspace right away, used
// when a client subscribes
func (p *Publisher) Snapshot(ctx context.Context, workspaceID string) error {
	if err := p.publish(ctx, workspaceID); err != nil {
		p.logger.Error().Err(err).Str("workspace_id", workspaceID).Msg("failed to publish snapshot")
		return err
	}
	return nil
}

// tick publishes one update per dirty workspace that has subscribers and
// returns how many were sent. When the UTC day changes every subscribed
// workspace is refreshed so dashboards drop yesterday's numbers.
func (p *Publisher) tick(ctx context.Context) int {
	start := time.Now()
	sent := 0

	for _, workspaceID := range p.pending() {
		if ctx.Err() != nil {
			break
		}
		if !p.hub.HasSubscribers(workspaceID) {
			continue
		}
		if err := p.publish(ctx, workspaceID); err != nil {
			p.logger.Error().Err(err).Str("workspace_id", workspaceID).Msg("failed to compute dashboard update")
			continue
		}
		sent++
	}

	if sent > 0 {
		metrics.Get().RecordDashboardCycle(time.Since(start), sent)
		p.logger.Debug().
			Int("workspaces", sent).
			Dur("duration", time.Since(start)).
			Msg("dashboard updates published")
	}
	return sent
}

// pending drains the dirty set and adds every subscribed workspace on a day change
func (p *Publisher) pending() []string {
	ids := p.dirty.GetAndClear()

	day := aggregator.DayKey(p.metrics.Now())
	rollover := p.lastDay != "" && day != p.lastDay
	p.lastDay = day
	if !rollover {
		return ids
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	for _, id := range p.hub.Workspaces() {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

func (p *Publisher) publish(ctx context.Context, workspaceID string) error {
	update, err := p.buildUpdate(ctx, workspaceID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(update)
	if err != nil {
		return err
	}

	p.hub.Publish(workspaceID, data)
	for _, a := range update.Alerts {
		metrics.Get().RecordAlert(a.Rule)
	}
	return nil
}

func (p *Publisher) buildUpdate(ctx context.Context, workspaceID string) (types.DashboardUpdate, error) {
	m, err := p.metrics.Today(ctx, workspaceID)
	if err != nil {
		return types.DashboardUpdate{}, err
	}

	now := p.metrics.Now().UTC()
	return types.DashboardUpdate{
		Type:        MessageTypeDashboardUpdate,
		WorkspaceID: workspaceID,
		Timestamp:   now,
		Date:        aggregator.DayKey(now),
		Metrics:     m,
		Funnel:      aggregator.BuildFunnel(m),
		Alerts:      alerts.CheckMetrics(m, p.thresholds),
	}, nil
}
