package classifier

import (
	"testing"

	"github.com/dennisdiepolder/monti/salesmetrics/internal/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name           string
		in             Input
		wantSource     types.TrafficSource
		wantConfidence types.Confidence
	}{
		{"no signals", Input{}, types.TrafficOrganic, types.ConfidenceLow},
		{"manual override wins", Input{ManualOverride: "facebook", TrafficSource: "organic", AppointmentSource: "self_booking"}, types.TrafficMeta, types.ConfidenceHigh},
		{"existing canonical", Input{TrafficSource: "meta", AppointmentSource: "self_booking"}, types.TrafficMeta, types.ConfidenceHigh},
		{"existing non-canonical ignored", Input{TrafficSource: "facebook", AppointmentSource: "self_booking"}, types.TrafficOrganic, types.ConfidenceHigh},
		{"sdr booked", Input{AppointmentSource: "sdr_booked_call"}, types.TrafficMeta, types.ConfidenceHigh},
		{"sdr booked free text", Input{AppointmentSource: "SDR booked call"}, types.TrafficMeta, types.ConfidenceHigh},
		{"vsl booking", Input{AppointmentSource: "vsl_booking"}, types.TrafficMeta, types.ConfidenceHigh},
		{"self booking", Input{AppointmentSource: "self_booking"}, types.TrafficOrganic, types.ConfidenceHigh},
		{"non sdr booked", Input{AppointmentSource: "non-sdr-booked-call"}, types.TrafficOrganic, types.ConfidenceMedium},
		{"email", Input{AppointmentSource: "email"}, types.TrafficOrganic, types.ConfidenceMedium},
		{"unknown appointment beats lead source", Input{AppointmentSource: "carrier_pigeon", LeadSource: "ads"}, types.TrafficOrganic, types.ConfidenceLow},
		{"lead source organic", Input{LeadSource: "organic"}, types.TrafficOrganic, types.ConfidenceHigh},
		{"lead source ads", Input{LeadSource: "Ads"}, types.TrafficMeta, types.ConfidenceHigh},
		{"lead source unknown", Input{LeadSource: "billboard"}, types.TrafficOrganic, types.ConfidenceLow},
		{"whitespace only", Input{ManualOverride: "  ", AppointmentSource: " "}, types.TrafficOrganic, types.ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.in)
			if got.TrafficSource != tt.wantSource {
				t.Errorf("expected source %s, got %s", tt.wantSource, got.TrafficSource)
			}
			if got.Confidence != tt.wantConfidence {
				t.Errorf("expected confidence %s, got %s", tt.wantConfidence, got.Confidence)
			}
			if got.Reasoning == "" {
				t.Error("expected a reasoning string")
			}
		})
	}
}

func TestClassifySDRReasoning(t *testing.T) {
	got := Classify(Input{AppointmentSource: "sdr_booked_call"})
	want := types.TrafficSourceClassification{
		TrafficSource: types.TrafficMeta,
		Confidence:    types.ConfidenceHigh,
		Reasoning:     "SDR calls are typically generated from paid advertising campaigns",
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestClassifyFallbackReasoning(t *testing.T) {
	got := Classify(Input{})
	if got.Reasoning != "No classification data available" {
		t.Errorf("unexpected fallback reasoning %q", got.Reasoning)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	in := Input{AppointmentSource: "email", LeadSource: "ads"}
	first := Classify(in)
	second := Classify(in)
	if first != second {
		t.Errorf("expected identical results, got %+v and %+v", first, second)
	}
}

func TestNormalizeTrafficSource(t *testing.T) {
	tests := map[string]types.TrafficSource{
		"organic":        types.TrafficOrganic,
		"meta":           types.TrafficMeta,
		"Direct":         types.TrafficOrganic,
		"website":        types.TrafficOrganic,
		"referral":       types.TrafficOrganic,
		"Facebook":       types.TrafficMeta,
		"instagram":      types.TrafficMeta,
		"paid":           types.TrafficMeta,
		"advertising":    types.TrafficMeta,
		"Paid Social":    types.TrafficMeta,
		" facebook-ads ": types.TrafficMeta,
		"":               types.TrafficOrganic,
		"tiktok":         types.TrafficOrganic,
	}
	for raw, want := range tests {
		if got := NormalizeTrafficSource(raw); got != want {
			t.Errorf("NormalizeTrafficSource(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestNormalizeTrafficSourceIdempotent(t *testing.T) {
	for _, raw := range []string{"facebook", "website", "unknown", "META", "organic"} {
		once := NormalizeTrafficSource(raw)
		twice := NormalizeTrafficSource(string(once))
		if once != twice {
			t.Errorf("normalize not idempotent for %q: %s then %s", raw, once, twice)
		}
	}
}

func TestFromRecordIgnoresStampedValue(t *testing.T) {
	rec := types.CallRecord{
		TrafficSource:     types.TrafficMeta,
		AppointmentSource: "self_booking",
	}
	got := Classify(FromRecord(rec))
	if got.TrafficSource != types.TrafficOrganic {
		t.Errorf("expected organic from signals, got %s", got.TrafficSource)
	}
}
