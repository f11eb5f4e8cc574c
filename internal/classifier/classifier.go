// Package classifier attributes a call to a canonical traffic source from
// whatever signals the booking integrations provide.
package classifier

import "github.com/dennisdiepolder/monti/salesmetrics/internal/types"

// Input carries the signals available for one call. All fields are optional.
type Input struct {
	ManualOverride    string `json:"manual_override,omitempty"`
	TrafficSource     string `json:"traffic_source,omitempty"`
	AppointmentSource string `json:"appointment_source,omitempty"`
	LeadSource        string `json:"lead_source,omitempty"`
}

type rule struct {
	source     types.TrafficSource
	confidence types.Confidence
	reasoning  string
}

func (r rule) classification() types.TrafficSourceClassification {
	return types.TrafficSourceClassification{
		TrafficSource: r.source,
		Confidence:    r.confidence,
		Reasoning:     r.reasoning,
	}
}

var appointmentSources = map[string]rule{
	"sdr_booked_call": {
		types.TrafficMeta, types.ConfidenceHigh,
		"SDR calls are typically generated from paid advertising campaigns",
	},
	"vsl_booking": {
		types.TrafficMeta, types.ConfidenceHigh,
		"Video sales letter bookings come from paid advertising funnels",
	},
	"self_booking": {
		types.TrafficOrganic, types.ConfidenceHigh,
		"Self bookings come from organic discovery",
	},
	"non_sdr_booked_call": {
		types.TrafficOrganic, types.ConfidenceMedium,
		"Non-SDR booked calls are usually organic",
	},
	"email": {
		types.TrafficOrganic, types.ConfidenceMedium,
		"Email bookings usually come from organic nurture sequences",
	},
}

var unknownAppointmentSource = rule{
	types.TrafficOrganic, types.ConfidenceLow,
	"Unrecognized appointment source, defaulting to organic",
}

var leadSources = map[string]rule{
	"organic": {types.TrafficOrganic, types.ConfidenceHigh, "Legacy lead source marked as organic"},
	"ads":     {types.TrafficMeta, types.ConfidenceHigh, "Legacy lead source marked as ads"},
}

var unknownLeadSource = rule{
	types.TrafficOrganic, types.ConfidenceLow,
	"Unrecognized legacy lead source, defaulting to organic",
}

var noData = rule{
	types.TrafficOrganic, types.ConfidenceLow,
	"No classification data available",
}

// Classify returns exactly one classification for the given signals. Signals
// are tried in priority order and the first one present wins:
// manual override, existing canonical value, appointment source, legacy lead source.
func Classify(in Input) types.TrafficSourceClassification {
	if normalizeKey(in.ManualOverride) != "" {
		return types.TrafficSourceClassification{
			TrafficSource: NormalizeTrafficSource(in.ManualOverride),
			Confidence:    types.ConfidenceHigh,
			Reasoning:     "Manually set traffic source",
		}
	}

	if existing := types.TrafficSource(normalizeKey(in.TrafficSource)); existing.IsCanonical() {
		return types.TrafficSourceClassification{
			TrafficSource: existing,
			Confidence:    types.ConfidenceHigh,
			Reasoning:     "Traffic source already set on the record",
		}
	}

	if key := normalizeKey(in.AppointmentSource); key != "" {
		if r, ok := appointmentSources[key]; ok {
			return r.classification()
		}
		return unknownAppointmentSource.classification()
	}

	if key := normalizeKey(in.LeadSource); key != "" {
		if r, ok := leadSources[key]; ok {
			return r.classification()
		}
		return unknownLeadSource.classification()
	}

	return noData.classification()
}

// FromRecord builds classifier input from the signals stored on a record.
// The stamped traffic source is left out so the result reflects the signals only.
func FromRecord(r types.CallRecord) Input {
	return Input{
		ManualOverride:    r.ManualTrafficSource,
		AppointmentSource: r.AppointmentSource,
		LeadSource:        r.LeadSource,
	}
}
