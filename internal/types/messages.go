package types

import "time"

// CallEvent is posted by booking/CRM integrations whenever a call is created or its outcome changes
type CallEvent struct {
	CallID        string      `json:"call_id,omitempty"`
	WorkspaceID   string      `json:"workspace_id"`
	UserID        string      `json:"user_id,omitempty"`
	ClientID      string      `json:"client_id,omitempty"`
	Outcome       CallOutcome `json:"call_outcome"`
	CashCollected *float64    `json:"cash_collected,omitempty"`
	CreatedAt     *time.Time  `json:"created_at,omitempty"`

	// Classification signals
	ManualTrafficSource string `json:"manual_traffic_source,omitempty"`
	TrafficSource       string `json:"traffic_source,omitempty"`
	AppointmentSource   string `json:"appointment_source,omitempty"`
	LeadSource          string `json:"lead_source,omitempty"`
}

// AlertSeverity represents the severity of a KPI alert
type AlertSeverity string

const (
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// Alert is a KPI condition worth surfacing on the dashboard
type Alert struct {
	Rule     string        `json:"rule"`
	Severity AlertSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// DashboardUpdate is pushed to websocket subscribers of a workspace
type DashboardUpdate struct {
	Type        string        `json:"type"` // "dashboard_update"
	WorkspaceID string        `json:"workspace_id"`
	Timestamp   time.Time     `json:"timestamp"`
	Date        string        `json:"date"`
	Metrics     SalesMetrics  `json:"metrics"`
	Funnel      []FunnelStage `json:"funnel"`
	Alerts      []Alert       `json:"alerts,omitempty"`
}
