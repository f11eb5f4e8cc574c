package types

import "time"

// TrafficSource is the canonical origin of a call
type TrafficSource string

const (
	TrafficOrganic TrafficSource = "organic"
	TrafficMeta    TrafficSource = "meta"

	// TrafficAll is only meaningful as a filter value and means "no constraint"
	TrafficAll TrafficSource = "all"
)

// CanonicalTrafficSources lists the canonical values in output order
var CanonicalTrafficSources = []TrafficSource{TrafficOrganic, TrafficMeta}

// IsCanonical reports whether s is one of the two canonical values
func (s TrafficSource) IsCanonical() bool {
	return s == TrafficOrganic || s == TrafficMeta
}

// CallOutcome is the result tag of a sales call
type CallOutcome string

const (
	OutcomeScheduled    CallOutcome = "scheduled"
	OutcomeShowed       CallOutcome = "showed"
	OutcomeNoShow       CallOutcome = "no_show"
	OutcomeCancelled    CallOutcome = "cancelled"
	OutcomeRescheduled  CallOutcome = "rescheduled"
	OutcomeClosedWon    CallOutcome = "closed_won"
	OutcomeClosedLost   CallOutcome = "closed_lost"
	OutcomeDisqualified CallOutcome = "disqualified"
)

// AllOutcomes is the full outcome enumeration
var AllOutcomes = []CallOutcome{
	OutcomeScheduled, OutcomeShowed, OutcomeNoShow, OutcomeCancelled,
	OutcomeRescheduled, OutcomeClosedWon, OutcomeClosedLost, OutcomeDisqualified,
}

// Valid reports whether o belongs to the outcome enumeration
func (o CallOutcome) Valid() bool {
	for _, known := range AllOutcomes {
		if o == known {
			return true
		}
	}
	return false
}

// IsTaken reports whether the call actually happened (the prospect was reached).
// If the outcome enumeration grows this set has to be revisited.
func (o CallOutcome) IsTaken() bool {
	switch o {
	case OutcomeShowed, OutcomeNoShow, OutcomeClosedWon, OutcomeClosedLost, OutcomeDisqualified:
		return true
	}
	return false
}

// CallRecord is a single sales call as stored by the record store
type CallRecord struct {
	CallID        string        `json:"call_id" dynamodbav:"CallID" gorm:"column:id;primaryKey"`
	WorkspaceID   string        `json:"workspace_id" dynamodbav:"WorkspaceID" gorm:"column:workspace_id;primaryKey"`
	UserID        string        `json:"user_id,omitempty" dynamodbav:"UserID,omitempty" gorm:"column:user_id"`
	ClientID      string        `json:"client_id,omitempty" dynamodbav:"ClientID,omitempty" gorm:"column:client_id"`
	TrafficSource TrafficSource `json:"traffic_source" dynamodbav:"TrafficSource" gorm:"column:traffic_source"`
	Outcome       CallOutcome   `json:"call_outcome" dynamodbav:"Outcome" gorm:"column:call_outcome"`
	CashCollected *float64      `json:"cash_collected,omitempty" dynamodbav:"CashCollected,omitempty" gorm:"column:cash_collected"`
	CreatedAt     time.Time     `json:"created_at" dynamodbav:"CreatedAt" gorm:"column:created_at"`

	// Classification signals, kept so a record can be re-classified later
	ManualTrafficSource string `json:"manual_traffic_source,omitempty" dynamodbav:"ManualTrafficSource,omitempty" gorm:"column:manual_traffic_source"`
	AppointmentSource   string `json:"appointment_source,omitempty" dynamodbav:"AppointmentSource,omitempty" gorm:"column:appointment_source"`
	LeadSource          string `json:"lead_source,omitempty" dynamodbav:"LeadSource,omitempty" gorm:"column:lead_source"`
}

// Cash returns the collected amount, treating a missing value as 0
func (r CallRecord) Cash() float64 {
	if r.CashCollected == nil {
		return 0
	}
	return *r.CashCollected
}
