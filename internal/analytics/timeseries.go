package analytics

import (
	"context"
	"time"

	"github.com/dennisdiepolder/monti/salesmetrics/internal/aggregator"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/metrics"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/types"
	"golang.org/x/sync/errgroup"
)

// TimeSeries returns exactly days entries for the UTC days [today-days, today),
// ascending. days must lie in [1, MaxWindowDays]. The filter's own date bounds are replaced by each day's bounds.
func (s *Service) TimeSeries(ctx context.Context, filter types.MetricsFilter, days int) ([]types.MetricsTimeSeries, error) {
	if !s.validDays(days) {
		return nil, ErrInvalidWindow
	}

	today := aggregator.StartOfDay(s.Now())
	start := today.AddDate(0, 0, -days)
	base := filter.WithoutDateRange()

	var (
		series []types.MetricsTimeSeries
		err    error
	)
	if s.opts.Strategy == StrategyPerDay {
		series, err = s.timeSeriesPerDay(ctx, base, start, days)
	} else {
		series, err = s.timeSeriesBucketed(ctx, base, start, today, days)
	}
	metrics.Get().RecordOperation("timeseries", err)
	return series, err
}

func (s *Service) timeSeriesBucketed(ctx context.Context, base types.MetricsFilter, start, end time.Time, days int) ([]types.MetricsTimeSeries, error) {
	records, err := s.fetch(ctx, base.WithDateRange(start, end.Add(-time.Nanosecond)))
	if err != nil {
		return nil, err
	}
	return aggregator.Series(start, days, aggregator.BucketByDay(records)), nil
}

// timeSeriesPerDay issues one fetch per day with at most FetchConcurrency in
// flight. The first error cancels the remaining fetches.
func (s *Service) timeSeriesPerDay(ctx context.Context, base types.MetricsFilter, start time.Time, days int) ([]types.MetricsTimeSeries, error) {
	series := make([]types.MetricsTimeSeries, days)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.FetchConcurrency)

	for i := range days {
		if gctx.Err() != nil {
			break
		}
		dayStart := start.AddDate(0, 0, i)
		dayEnd := dayStart.AddDate(0, 0, 1).Add(-time.Nanosecond)

		g.Go(func() error {
			records, err := s.fetch(gctx, base.WithDateRange(dayStart, dayEnd))
			if err != nil {
				return err
			}
			series[i] = types.MetricsTimeSeries{
				Date:    aggregator.DayKey(dayStart),
				Metrics: aggregator.Aggregate(records),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &RecordFetchError{WorkspaceID: base.WorkspaceID(), Err: err}
	}
	return series, nil
}
