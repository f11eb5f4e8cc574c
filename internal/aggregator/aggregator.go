// Package aggregator reduces call records into sales KPIs. Everything here is
// pure and safe for concurrent use.
package aggregator

import "github.com/dennisdiepolder/monti/salesmetrics/internal/types"

// Aggregate reduces records into one SalesMetrics in a single pass.
// An empty slice yields all zeros. Counts are not clamped against each other:
// showed may exceed scheduled if the input says so.
func Aggregate(records []types.CallRecord) types.SalesMetrics {
	var m types.SalesMetrics
	var cash float64

	for _, r := range records {
		switch r.Outcome {
		case types.OutcomeScheduled:
			m.CallsScheduled++
		case types.OutcomeShowed:
			m.CallsShowed++
		case types.OutcomeCancelled:
			m.CallsCancelled++
		case types.OutcomeRescheduled:
			m.CallsRescheduled++
		case types.OutcomeClosedWon:
			m.CallsClosedWon++
		case types.OutcomeDisqualified:
			m.CallsDisqualified++
		}
		if r.Outcome.IsTaken() {
			m.CallsTaken++
		}
		cash += r.Cash()
	}

	m.CashCollected = round2(cash)
	m.ShowRate = percent(m.CallsScheduled, m.CallsShowed)
	m.CloseRate = percent(m.CallsTaken, m.CallsClosedWon)
	m.GrossCollectedPerBookedCall = ratio(cash, m.CallsScheduled)
	m.CashPerLiveCall = ratio(cash, m.CallsTaken)
	m.CashBasedAOV = ratio(cash, m.CallsClosedWon)

	return m
}

// percent returns part/whole*100 rounded to cents, 0 when whole is 0
func percent(whole, part int) float64 {
	if whole == 0 {
		return 0
	}
	return round2(float64(part) / float64(whole) * 100)
}

func ratio(amount float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return round2(amount / float64(count))
}
