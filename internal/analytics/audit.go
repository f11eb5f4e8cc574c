package analytics

import (
	"cmp"
	"context"
	"slices"

	"github.com/dennisdiepolder/monti/salesmetrics/internal/classifier"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/metrics"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/types"
)

// AuditClassifications re-classifies stored records from their signals and
// reports where the stored traffic source disagrees. Nothing is written back.
func (s *Service) AuditClassifications(ctx context.Context, filter types.MetricsFilter) (types.ClassificationAudit, error) {
	records, err := s.fetch(ctx, filter)
	metrics.Get().RecordOperation("audit", err)
	if err != nil {
		return types.ClassificationAudit{}, err
	}

	slices.SortFunc(records, func(a, b types.CallRecord) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.CallID, b.CallID)
	})

	audit := types.ClassificationAudit{
		Total:   len(records),
		Entries: make([]types.ClassificationAuditEntry, 0, len(records)),
	}
	for _, r := range records {
		c := classifier.Classify(classifier.FromRecord(r))
		entry := types.ClassificationAuditEntry{
			CallID:         r.CallID,
			Stored:         r.TrafficSource,
			Classification: c,
			Matches:        c.TrafficSource == r.TrafficSource,
		}
		if !entry.Matches {
			audit.Mismatches++
		}
		audit.Entries = append(audit.Entries, entry)
	}

	s.logger.Debug().
		Str("workspace_id", filter.WorkspaceID()).
		Int("total", audit.Total).
		Int("mismatches", audit.Mismatches).
		Msg("classification audit completed")

	return audit, nil
}
