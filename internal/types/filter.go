package types

import "time"

// MetricsFilter scopes a record query. The workspace can only be set through
// NewMetricsFilter, so every filter carries its tenant. Values are immutable:
// the With* methods return modified copies.
type MetricsFilter struct {
	workspaceID   string
	trafficSource TrafficSource
	userID        string
	clientID      string
	from          *time.Time
	to            *time.Time
}

// NewMetricsFilter creates a filter scoped to a workspace
func NewMetricsFilter(workspaceID string) MetricsFilter {
	return MetricsFilter{workspaceID: workspaceID}
}

func (f MetricsFilter) WorkspaceID() string { return f.workspaceID }
func (f MetricsFilter) UserID() string      { return f.userID }
func (f MetricsFilter) ClientID() string    { return f.clientID }

// TrafficSource returns the traffic-source constraint and whether one is set.
// "all" and the empty value both mean unconstrained.
func (f MetricsFilter) TrafficSource() (TrafficSource, bool) {
	if f.trafficSource == "" || f.trafficSource == TrafficAll {
		return "", false
	}
	return f.trafficSource, true
}

// From returns the inclusive lower bound, if any
func (f MetricsFilter) From() (time.Time, bool) {
	if f.from == nil {
		return time.Time{}, false
	}
	return *f.from, true
}

// To returns the inclusive upper bound, if any
func (f MetricsFilter) To() (time.Time, bool) {
	if f.to == nil {
		return time.Time{}, false
	}
	return *f.to, true
}

func (f MetricsFilter) WithTrafficSource(s TrafficSource) MetricsFilter {
	f.trafficSource = s
	return f
}

func (f MetricsFilter) WithUser(userID string) MetricsFilter {
	f.userID = userID
	return f
}

func (f MetricsFilter) WithClient(clientID string) MetricsFilter {
	f.clientID = clientID
	return f
}

func (f MetricsFilter) WithFrom(from time.Time) MetricsFilter {
	from = from.UTC()
	f.from = &from
	return f
}

func (f MetricsFilter) WithTo(to time.Time) MetricsFilter {
	to = to.UTC()
	f.to = &to
	return f
}

// WithDateRange sets both inclusive bounds
func (f MetricsFilter) WithDateRange(from, to time.Time) MetricsFilter {
	return f.WithFrom(from).WithTo(to)
}

// WithoutDateRange drops both bounds
func (f MetricsFilter) WithoutDateRange() MetricsFilter {
	f.from = nil
	f.to = nil
	return f
}

// Matches evaluates the filter against a record. Predicates run in a fixed
// order: workspace, traffic source, user, client, from, to.
func (f MetricsFilter) Matches(r CallRecord) bool {
	if r.WorkspaceID != f.workspaceID {
		return false
	}
	if ts, ok := f.TrafficSource(); ok && r.TrafficSource != ts {
		return false
	}
	if f.userID != "" && r.UserID != f.userID {
		return false
	}
	if f.clientID != "" && r.ClientID != f.clientID {
		return false
	}
	if f.from != nil && r.CreatedAt.Before(*f.from) {
		return false
	}
	if f.to != nil && r.CreatedAt.After(*f.to) {
		return false
	}
	return true
}
