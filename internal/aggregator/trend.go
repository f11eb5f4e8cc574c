package aggregator

import "github.com/dennisdiepolder/monti/salesmetrics/internal/types"

// CompareMetrics emits one trend entry per SalesMetrics field, in field order
func CompareMetrics(current, previous types.SalesMetrics) []types.TrendEntry {
	trends := make([]types.TrendEntry, 0, len(types.MetricFields))
	for _, f := range types.MetricFields {
		cur, prev := f.Value(current), f.Value(previous)
		delta := cur - prev

		var pct float64
		if prev != 0 {
			pct = round2(delta / prev * 100)
		}

		trends = append(trends, types.TrendEntry{
			Metric:     f.Name,
			Current:    cur,
			Previous:   prev,
			Delta:      round2(delta),
			Percentage: pct,
		})
	}
	return trends
}

// Report bundles both windows with their comparison
func Report(current, previous types.SalesMetrics) types.TrendReport {
	return types.TrendReport{
		Current:  current,
		Previous: previous,
		Trends:   CompareMetrics(current, previous),
	}
}
