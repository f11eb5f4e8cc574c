package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dennisdiepolder/monti/salesmetrics/internal/types"
	"github.com/go-chi/chi/v5"
)

const dateLayout = "2006-01-02"

// filterFromRequest builds a workspace-scoped filter from the path and query
func filterFromRequest(r *http.Request) (types.MetricsFilter, error) {
	workspaceID := chi.URLParam(r, "workspaceId")
	if workspaceID == "" {
		return types.MetricsFilter{}, &paramError{"workspaceId", "required"}
	}
	filter := types.NewMetricsFilter(workspaceID)
	q := r.URL.Query()

	switch src := types.TrafficSource(q.Get("traffic_source")); {
	case src == "" || src == types.TrafficAll:
	case src.IsCanonical():
		filter = filter.WithTrafficSource(src)
	default:
		return types.MetricsFilter{}, &paramError{"traffic_source", "must be organic, meta or all"}
	}

	if v := q.Get("user_id"); v != "" {
		filter = filter.WithUser(v)
	}
	if v := q.Get("client_id"); v != "" {
		filter = filter.WithClient(v)
	}

	if v := q.Get("from"); v != "" {
		from, err := parseTime(v, false)
		if err != nil {
			return types.MetricsFilter{}, &paramError{"from", err.Error()}
		}
		filter = filter.WithFrom(from)
	}
	if v := q.Get("to"); v != "" {
		to, err := parseTime(v, true)
		if err != nil {
			return types.MetricsFilter{}, &paramError{"to", err.Error()}
		}
		filter = filter.WithTo(to)
	}

	from, hasFrom := filter.From()
	to, hasTo := filter.To()
	if hasFrom && hasTo && to.Before(from) {
		return types.MetricsFilter{}, &paramError{"to", "before from"}
	}

	return filter, nil
}

// parseTime accepts RFC3339 or a bare UTC date. A bare date used as an upper
// bound covers the whole day.
func parseTime(v string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(dateLayout, v); err == nil {
		if endOfDay {
			return t.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
		}
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, errBadTime
	}
	return t, nil
}

var errBadTime = errors.New("expected YYYY-MM-DD or RFC3339")

// daysFromRequest reads the days parameter, falling back to def. Values
// outside [1, max] are rejected.
func daysFromRequest(r *http.Request, def, max int) (int, error) {
	v := r.URL.Query().Get("days")
	if v == "" {
		return min(def, max), nil
	}
	days, err := strconv.Atoi(v)
	if err != nil || days <= 0 {
		return 0, &paramError{"days", "must be a positive integer"}
	}
	if days > max {
		return 0, &paramError{"days", fmt.Sprintf("must not exceed %d", max)}
	}
	return days, nil
}
