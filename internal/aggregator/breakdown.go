package aggregator

import "github.com/dennisdiepolder/monti/salesmetrics/internal/types"

// Breakdown composes per-source segments from already aggregated metrics.
// Segments with nothing scheduled are omitted; shares are relative to total.
func Breakdown(total types.SalesMetrics, segments map[types.TrafficSource]types.SalesMetrics) []types.TrafficSourceBreakdown {
	out := make([]types.TrafficSourceBreakdown, 0, len(types.CanonicalTrafficSources))
	for _, src := range types.CanonicalTrafficSources {
		m, ok := segments[src]
		if !ok || m.CallsScheduled == 0 {
			continue
		}
		out = append(out, types.TrafficSourceBreakdown{
			TrafficSource: src,
			Metrics:       m,
			Percentage:    percent(total.CallsScheduled, m.CallsScheduled),
		})
	}
	return out
}

// SplitBySource partitions records by their canonical traffic source
func SplitBySource(records []types.CallRecord) map[types.TrafficSource][]types.CallRecord {
	parts := make(map[types.TrafficSource][]types.CallRecord, len(types.CanonicalTrafficSources))
	for _, r := range records {
		parts[r.TrafficSource] = append(parts[r.TrafficSource], r)
	}
	return parts
}
