package analytics

import (
	"context"
	"time"

	"github.com/dennisdiepolder/monti/salesmetrics/internal/aggregator"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/metrics"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/types"
)

// Window is an inclusive time range
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (w Window) valid() bool {
	return !w.To.Before(w.From)
}

func (w Window) contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}

func (w Window) overlaps(o Window) bool {
	return !w.From.After(o.To) && !o.From.After(w.To)
}

// LastDays returns the window [now-days, now] and the equally long window before it
func LastDays(now time.Time, days int) (current, previous Window) {
	now = now.UTC()
	current = Window{From: now.AddDate(0, 0, -days), To: now}
	previous = Window{From: now.AddDate(0, 0, -2*days), To: current.From.Add(-time.Nanosecond)}
	return current, previous
}

// Trends compares two non-overlapping windows. Records are fetched once over
// the span covering both and partitioned in memory.
func (s *Service) Trends(ctx context.Context, filter types.MetricsFilter, current, previous Window) (types.TrendReport, error) {
	if !current.valid() || !previous.valid() {
		return types.TrendReport{}, ErrInvalidWindow
	}
	if current.overlaps(previous) {
		return types.TrendReport{}, ErrOverlappingWindows
	}

	span := Window{From: current.From, To: current.To}
	if previous.From.Before(span.From) {
		span.From = previous.From
	}
	if previous.To.After(span.To) {
		span.To = previous.To
	}

	records, err := s.fetch(ctx, filter.WithDateRange(span.From, span.To))
	metrics.Get().RecordOperation("trends", err)
	if err != nil {
		return types.TrendReport{}, err
	}

	var cur, prev []types.CallRecord
	for _, r := range records {
		switch {
		case current.contains(r.CreatedAt):
			cur = append(cur, r)
		case previous.contains(r.CreatedAt):
			prev = append(prev, r)
		}
	}

	return aggregator.Report(aggregator.Aggregate(cur), aggregator.Aggregate(prev)), nil
}

// TrendsLastDays compares the last days with the days before them
func (s *Service) TrendsLastDays(ctx context.Context, filter types.MetricsFilter, days int) (types.TrendReport, error) {
	if !s.validDays(days) {
		return types.TrendReport{}, ErrInvalidWindow
	}
	current, previous := LastDays(s.Now(), days)
	return s.Trends(ctx, filter, current, previous)
}
