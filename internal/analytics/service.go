// Package analytics runs the metrics engine against a record store.
package analytics

import (
	"context"
	"time"

	"github.com/dennisdiepolder/monti/salesmetrics/internal/aggregator"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/metrics"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/types"
	"github.com/rs/zerolog"
)

// RecordFetcher is the read side of the record store
type RecordFetcher interface {
	FetchCallRecords(ctx context.Context, filter types.MetricsFilter) ([]types.CallRecord, error)
}

// Strategy selects how time series are fetched
type Strategy string

const (
	// StrategyBucket fetches the whole window once and buckets in memory
	StrategyBucket Strategy = "bucket"
	// StrategyPerDay fetches each day separately through a bounded worker pool
	StrategyPerDay Strategy = "per_day"
)

const (
	defaultFetchConcurrency = 8
	defaultMaxWindowDays    = 366
)

// Options tunes the service
type Options struct {
	Strategy         Strategy
	FetchConcurrency int
	// MaxWindowDays caps the days argument of TimeSeries and TrendsLastDays
	MaxWindowDays int
}

// Service computes sales metrics for filters. It holds no per-request
// state and is safe for concurrent use.
type Service struct {
	store  RecordFetcher
	opts   Options
	logger zerolog.Logger
	now    func() time.Time
}

// NewService creates a new analytics service
func NewService(store RecordFetcher, opts Options, logger zerolog.Logger) *Service {
	if opts.Strategy != StrategyPerDay {
		opts.Strategy = StrategyBucket
	}
	if opts.FetchConcurrency <= 0 {
		opts.FetchConcurrency = defaultFetchConcurrency
	}
	if opts.MaxWindowDays <= 0 {
		opts.MaxWindowDays = defaultMaxWindowDays
	}
	return &Service{
		store:  store,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the time source
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Now returns the service's current time in UTC
func (s *Service) Now() time.Time {
	return s.now().UTC()
}

// MaxWindowDays returns the largest accepted days argument
func (s *Service) MaxWindowDays() int {
	return s.opts.MaxWindowDays
}

func (s *Service) validDays(days int) bool {
	return days > 0 && days <= s.opts.MaxWindowDays
}

func (s *Service) fetch(ctx context.Context, filter types.MetricsFilter) ([]types.CallRecord, error) {
	if filter.WorkspaceID() == "" {
		return nil, ErrWorkspaceRequired
	}

	start := time.Now()
	records, err := s.store.FetchCallRecords(ctx, filter)
	metrics.Get().RecordFetch(time.Since(start), len(records), err)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("workspace_id", filter.WorkspaceID()).
			Msg("failed to fetch call records")
		return nil, &RecordFetchError{WorkspaceID: filter.WorkspaceID(), Err: err}
	}
	return records, nil
}

// Metrics aggregates every record matching the filter
func (s *Service) Metrics(ctx context.Context, filter types.MetricsFilter) (types.SalesMetrics, error) {
	records, err := s.fetch(ctx, filter)
	metrics.Get().RecordOperation("metrics", err)
	if err != nil {
		return types.SalesMetrics{}, err
	}
	return aggregator.Aggregate(records), nil
}

// TrafficBreakdown segments the filter's records by canonical traffic source.
// The filter's own traffic-source constraint is ignored.
func (s *Service) TrafficBreakdown(ctx context.Context, filter types.MetricsFilter) ([]types.TrafficSourceBreakdown, error) {
	records, err := s.fetch(ctx, filter.WithTrafficSource(types.TrafficAll))
	metrics.Get().RecordOperation("breakdown", err)
	if err != nil {
		return nil, err
	}

	parts := aggregator.SplitBySource(records)
	segments := make(map[types.TrafficSource]types.SalesMetrics, len(types.CanonicalTrafficSources))
	for _, src := range types.CanonicalTrafficSources {
		segments[src] = aggregator.Aggregate(parts[src])
	}
	return aggregator.Breakdown(aggregator.Aggregate(records), segments), nil
}

// Funnel builds the conversion funnel for the filter
func (s *Service) Funnel(ctx context.Context, filter types.MetricsFilter) ([]types.FunnelStage, error) {
	records, err := s.fetch(ctx, filter)
	metrics.Get().RecordOperation("funnel", err)
	if err != nil {
		return nil, err
	}
	return aggregator.BuildFunnel(aggregator.Aggregate(records)), nil
}

// Today aggregates the workspace's records from UTC midnight until now
func (s *Service) Today(ctx context.Context, workspaceID string) (types.SalesMetrics, error) {
	now := s.Now()
	filter := types.NewMetricsFilter(workspaceID).WithDateRange(aggregator.StartOfDay(now), now)
	return s.Metrics(ctx, filter)
}
