package api

import (
	"encoding/json"
	"net/http"

	"github.com/dennisdiepolder/monti/salesmetrics/internal/classifier"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/metrics"
)

// classifyRequest carries the raw attribution signals of one call
type classifyRequest struct {
	ManualTrafficSource string `json:"manual_traffic_source"`
	TrafficSource       string `json:"traffic_source"`
	AppointmentSource   string `json:"appointment_source"`
	LeadSource          string `json:"lead_source"`
}

// Classify runs the traffic-source classifier on ad-hoc input
// POST /api/classify
func Classify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c := classifier.Classify(classifier.Input{
		ManualOverride:    req.ManualTrafficSource,
		TrafficSource:     req.TrafficSource,
		AppointmentSource: req.AppointmentSource,
		LeadSource:        req.LeadSource,
	})
	metrics.Get().RecordClassification(string(c.TrafficSource), string(c.Confidence))

	writeJSON(w, http.StatusOK, c)
}
