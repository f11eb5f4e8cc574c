package types

// Confidence of a traffic-source classification
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// TrafficSourceClassification is the classifier's verdict for one call
type TrafficSourceClassification struct {
	TrafficSource TrafficSource `json:"traffic_source"`
	Confidence    Confidence    `json:"confidence"`
	Reasoning     string        `json:"reasoning"`
}

// ClassificationAuditEntry compares a stored traffic source with a fresh classification
type ClassificationAuditEntry struct {
	CallID         string                      `json:"call_id"`
	Stored         TrafficSource               `json:"stored"`
	Classification TrafficSourceClassification `json:"classification"`
	Matches        bool                        `json:"matches"`
}

// ClassificationAudit is the result of re-classifying a set of stored calls
type ClassificationAudit struct {
	Total      int                        `json:"total"`
	Mismatches int                        `json:"mismatches"`
	Entries    []ClassificationAuditEntry `json:"entries"`
}
