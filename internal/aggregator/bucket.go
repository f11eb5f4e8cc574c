package aggregator

import (
	"time"

	"github.com/dennisdiepolder/monti/salesmetrics/internal/types"
)

// DayLayout is the UTC day key used for time-series buckets
const DayLayout = "2006-01-02"

// DayKey returns the UTC day a timestamp falls on
func DayKey(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// StartOfDay truncates t to midnight UTC
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// BucketByDay groups records by the UTC day they were created on
func BucketByDay(records []types.CallRecord) map[string][]types.CallRecord {
	buckets := make(map[string][]types.CallRecord)
	for _, r := range records {
		key := DayKey(r.CreatedAt)
		buckets[key] = append(buckets[key], r)
	}
	return buckets
}

// Series builds one entry per day starting at start (truncated to UTC midnight),
// ascending. Days without records get zeroed metrics.
func Series(start time.Time, days int, buckets map[string][]types.CallRecord) []types.MetricsTimeSeries {
	if days <= 0 {
		return []types.MetricsTimeSeries{}
	}

	start = StartOfDay(start)
	series := make([]types.MetricsTimeSeries, days)
	for i := range series {
		key := DayKey(start.AddDate(0, 0, i))
		series[i] = types.MetricsTimeSeries{
			Date:    key,
			Metrics: Aggregate(buckets[key]),
		}
	}
	return series
}
