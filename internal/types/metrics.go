package types

// SalesMetrics is the KPI set computed from a list of call records.
// Every field is always populated; an empty input yields all zeros.
type SalesMetrics struct {
	CallsScheduled    int `json:"calls_scheduled"`
	CallsTaken        int `json:"calls_taken"`
	CallsCancelled    int `json:"calls_cancelled"`
	CallsRescheduled  int `json:"calls_rescheduled"`
	CallsShowed       int `json:"calls_showed"`
	CallsClosedWon    int `json:"calls_closed_won"`
	CallsDisqualified int `json:"calls_disqualified"`

	CashCollected float64 `json:"cash_collected"`

	ShowRate                    float64 `json:"show_rate"`
	CloseRate                   float64 `json:"close_rate"`
	GrossCollectedPerBookedCall float64 `json:"gross_collected_per_booked_call"`
	CashPerLiveCall             float64 `json:"cash_per_live_call"`
	CashBasedAOV                float64 `json:"cash_based_aov"`
}

// MetricField is a named numeric field of SalesMetrics
type MetricField struct {
	Name  string
	Value func(SalesMetrics) float64
}

// MetricFields lists every SalesMetrics field in declaration order.
// Trend output follows this order.
var MetricFields = []MetricField{
	{"calls_scheduled", func(m SalesMetrics) float64 { return float64(m.CallsScheduled) }},
	{"calls_taken", func(m SalesMetrics) float64 { return float64(m.CallsTaken) }},
	{"calls_cancelled", func(m SalesMetrics) float64 { return float64(m.CallsCancelled) }},
	{"calls_rescheduled", func(m SalesMetrics) float64 { return float64(m.CallsRescheduled) }},
	{"calls_showed", func(m SalesMetrics) float64 { return float64(m.CallsShowed) }},
	{"calls_closed_won", func(m SalesMetrics) float64 { return float64(m.CallsClosedWon) }},
	{"calls_disqualified", func(m SalesMetrics) float64 { return float64(m.CallsDisqualified) }},
	{"cash_collected", func(m SalesMetrics) float64 { return m.CashCollected }},
	{"show_rate", func(m SalesMetrics) float64 { return m.ShowRate }},
	{"close_rate", func(m SalesMetrics) float64 { return m.CloseRate }},
	{"gross_collected_per_booked_call", func(m SalesMetrics) float64 { return m.GrossCollectedPerBookedCall }},
	{"cash_per_live_call", func(m SalesMetrics) float64 { return m.CashPerLiveCall }},
	{"cash_based_aov", func(m SalesMetrics) float64 { return m.CashBasedAOV }},
}

// MetricsTimeSeries is one day of a time series
type MetricsTimeSeries struct {
	Date    string       `json:"date"` // YYYY-MM-DD (UTC)
	Metrics SalesMetrics `json:"metrics"`
}

// TrafficSourceBreakdown is one traffic-source segment with its share of scheduled calls
type TrafficSourceBreakdown struct {
	TrafficSource TrafficSource `json:"traffic_source"`
	Metrics       SalesMetrics  `json:"metrics"`
	Percentage    float64       `json:"percentage"`
}

// Funnel stage names
const (
	StageScheduled = "Scheduled"
	StageShowed    = "Showed"
	StageClosedWon = "Closed Won"
)

// FunnelStage is one step of the Scheduled -> Showed -> Closed Won funnel.
// ConversionRate is relative to the previous stage; the first stage is 100.
type FunnelStage struct {
	Stage          string  `json:"stage"`
	Count          int     `json:"count"`
	ConversionRate float64 `json:"conversion_rate"`
}

// TrendEntry is the change of one metric between two windows
type TrendEntry struct {
	Metric     string  `json:"metric"`
	Current    float64 `json:"current"`
	Previous   float64 `json:"previous"`
	Delta      float64 `json:"delta"`
	Percentage float64 `json:"percentage"`
}

// TrendReport holds both windows' metrics and the per-field trends
type TrendReport struct {
	Current  SalesMetrics `json:"current"`
	Previous SalesMetrics `json:"previous"`
	Trends   []TrendEntry `json:"trends"`
}
