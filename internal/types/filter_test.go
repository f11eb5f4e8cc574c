package types

import (
	"testing"
	"time"
)

func TestMetricsFilterMatches(t *testing.T) {
	day := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	rec := CallRecord{
		CallID:        "call-1",
		WorkspaceID:   "ws-1",
		UserID:        "user-1",
		ClientID:      "client-1",
		TrafficSource: TrafficMeta,
		Outcome:       OutcomeScheduled,
		CreatedAt:     day,
	}

	tests := []struct {
		name   string
		filter MetricsFilter
		want   bool
	}{
		{"workspace only", NewMetricsFilter("ws-1"), true},
		{"other workspace", NewMetricsFilter("ws-2"), false},
		{"traffic all", NewMetricsFilter("ws-1").WithTrafficSource(TrafficAll), true},
		{"traffic match", NewMetricsFilter("ws-1").WithTrafficSource(TrafficMeta), true},
		{"traffic mismatch", NewMetricsFilter("ws-1").WithTrafficSource(TrafficOrganic), false},
		{"user match", NewMetricsFilter("ws-1").WithUser("user-1"), true},
		{"user mismatch", NewMetricsFilter("ws-1").WithUser("user-2"), false},
		{"client mismatch", NewMetricsFilter("ws-1").WithClient("client-2"), false},
		{"inclusive bounds", NewMetricsFilter("ws-1").WithDateRange(day, day), true},
		{"before range", NewMetricsFilter("ws-1").WithFrom(day.Add(time.Second)), false},
		{"after range", NewMetricsFilter("ws-1").WithTo(day.Add(-time.Second)), false},
		{"range dropped", NewMetricsFilter("ws-1").WithTo(day.Add(-time.Second)).WithoutDateRange(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(rec); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMetricsFilterIsImmutable(t *testing.T) {
	base := NewMetricsFilter("ws-1")
	_ = base.WithTrafficSource(TrafficMeta).WithUser("user-1").WithFrom(time.Now())

	if _, ok := base.TrafficSource(); ok {
		t.Error("expected base filter to stay unconstrained by traffic source")
	}
	if base.UserID() != "" {
		t.Errorf("expected empty user id, got %s", base.UserID())
	}
	if _, ok := base.From(); ok {
		t.Error("expected base filter to have no lower bound")
	}
}

func TestOutcomeIsTaken(t *testing.T) {
	taken := map[CallOutcome]bool{
		OutcomeScheduled:    false,
		OutcomeShowed:       true,
		OutcomeNoShow:       true,
		OutcomeCancelled:    false,
		OutcomeRescheduled:  false,
		OutcomeClosedWon:    true,
		OutcomeClosedLost:   true,
		OutcomeDisqualified: true,
	}
	for outcome, want := range taken {
		if got := outcome.IsTaken(); got != want {
			t.Errorf("%s.IsTaken() = %v, want %v", outcome, got, want)
		}
	}
	if CallOutcome("pending").Valid() {
		t.Error("expected unknown outcome to be invalid")
	}
}
