package aggregator

import "github.com/dennisdiepolder/monti/salesmetrics/internal/types"

// BuildFunnel derives the Scheduled -> Showed -> Closed Won funnel.
// Each stage's rate is relative to the stage before it.
func BuildFunnel(m types.SalesMetrics) []types.FunnelStage {
	return []types.FunnelStage{
		{Stage: types.StageScheduled, Count: m.CallsScheduled, ConversionRate: 100},
		{Stage: types.StageShowed, Count: m.CallsShowed, ConversionRate: percent(m.CallsScheduled, m.CallsShowed)},
		{Stage: types.StageClosedWon, Count: m.CallsClosedWon, ConversionRate: percent(m.CallsShowed, m.CallsClosedWon)},
	}
}
