package classifier

import (
	"strings"

	"github.com/dennisdiepolder/monti/salesmetrics/internal/types"
)

// synonyms maps free-text source names onto the canonical traffic sources.
// Anything not listed normalizes to organic.
var synonyms = map[string]types.TrafficSource{
	// organic
	"organic":        types.TrafficOrganic,
	"direct":         types.TrafficOrganic,
	"website":        types.TrafficOrganic,
	"web":            types.TrafficOrganic,
	"referral":       types.TrafficOrganic,
	"seo":            types.TrafficOrganic,
	"search":         types.TrafficOrganic,
	"organic_search": types.TrafficOrganic,
	"organic_social": types.TrafficOrganic,
	"email":          types.TrafficOrganic,
	"newsletter":     types.TrafficOrganic,
	"word_of_mouth":  types.TrafficOrganic,
	"youtube":        types.TrafficOrganic,
	"podcast":        types.TrafficOrganic,
	"partner":        types.TrafficOrganic,

	// meta / paid
	"meta":         types.TrafficMeta,
	"facebook":     types.TrafficMeta,
	"fb":           types.TrafficMeta,
	"instagram":    types.TrafficMeta,
	"ig":           types.TrafficMeta,
	"paid":         types.TrafficMeta,
	"paid_social":  types.TrafficMeta,
	"ads":          types.TrafficMeta,
	"ad":           types.TrafficMeta,
	"advertising":  types.TrafficMeta,
	"meta_ads":     types.TrafficMeta,
	"facebook_ads": types.TrafficMeta,
	"ppc":          types.TrafficMeta,
	"cpc":          types.TrafficMeta,
}

// NormalizeTrafficSource maps a raw source string onto a canonical traffic source.
// It is idempotent; unknown input falls back to organic.
func NormalizeTrafficSource(raw string) types.TrafficSource {
	if ts, ok := synonyms[normalizeKey(raw)]; ok {
		return ts
	}
	return types.TrafficOrganic
}

// normalizeKey lower-cases and folds spaces/hyphens so "SDR booked call",
// "sdr-booked-call" and "sdr_booked_call" share one key
func normalizeKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	return key
}
