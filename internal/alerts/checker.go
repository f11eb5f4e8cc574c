package alerts

import (
	"fmt"

	"github.com/dennisdiepolder/monti/salesmetrics/internal/types"
)

const (
	RuleLowShowRate  = "show_rate_low"
	RuleLowCloseRate = "close_rate_low"
)

// Thresholds configures the KPI alert rules. A rule only fires once its
// denominator has reached MinSample calls.
type Thresholds struct {
	MinShowRate  float64
	MinCloseRate float64
	MinSample    int
}

// DefaultThresholds returns the thresholds used when nothing is configured
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinShowRate:  60,
		MinCloseRate: 20,
		MinSample:    10,
	}
}

// CheckMetrics evaluates the alert rules against a metrics snapshot.
// A rate below half its threshold is critical.
func CheckMetrics(m types.SalesMetrics, t Thresholds) []types.Alert {
	var alerts []types.Alert

	if m.CallsScheduled >= t.MinSample && m.ShowRate < t.MinShowRate {
		alerts = append(alerts, types.Alert{
			Rule:     RuleLowShowRate,
			Severity: severity(m.ShowRate, t.MinShowRate),
			Message:  fmt.Sprintf("Show rate %.2f%% is below %.2f%%", m.ShowRate, t.MinShowRate),
		})
	}

	if m.CallsTaken >= t.MinSample && m.CloseRate < t.MinCloseRate {
		alerts = append(alerts, types.Alert{
			Rule:     RuleLowCloseRate,
			Severity: severity(m.CloseRate, t.MinCloseRate),
			Message:  fmt.Sprintf("Close rate %.2f%% is below %.2f%%", m.CloseRate, t.MinCloseRate),
		})
	}

	return alerts
}

func severity(value, threshold float64) types.AlertSeverity {
	if value < threshold/2 {
		return types.SeverityCritical
	}
	return types.SeverityWarning
}
