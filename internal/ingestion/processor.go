package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/dennisdiepolder/monti/salesmetrics/internal/classifier"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/metrics"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Result is what ingestion stored for one event
type Result struct {
	Record         types.CallRecord                  `json:"record"`
	Classification types.TrafficSourceClassification `json:"classification"`
}

// ValidationError reports a rejected event
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DefaultProcessor validates, classifies and persists call events
type DefaultProcessor struct {
	store  RecordWriter
	dirty  DirtyMarker
	logger zerolog.Logger
	now    func() time.Time
}

// NewDefaultProcessor creates a new DefaultProcessor. dirty may be nil.
func NewDefaultProcessor(store RecordWriter, dirty DirtyMarker, logger zerolog.Logger) *DefaultProcessor {
	return &DefaultProcessor{
		store:  store,
		dirty:  dirty,
		logger: logger,
		now:    time.Now,
	}
}

func (p *DefaultProcessor) ProcessCall(ctx context.Context, event *types.CallEvent) (Result, error) {
	m := metrics.Get()
	m.RecordEventReceived()

	if err := validate(event); err != nil {
		m.RecordIngestError("validation")
		return Result{}, err
	}

	callID := event.CallID
	if callID == "" {
		callID = uuid.New().String()
	}
	createdAt := p.now().UTC()
	if event.CreatedAt != nil {
		createdAt = event.CreatedAt.UTC()
	}

	classification := classifier.Classify(classifier.Input{
		ManualOverride:    event.ManualTrafficSource,
		TrafficSource:     event.TrafficSource,
		AppointmentSource: event.AppointmentSource,
		LeadSource:        event.LeadSource,
	})
	m.RecordClassification(string(classification.TrafficSource), string(classification.Confidence))

	record := types.CallRecord{
		CallID:              callID,
		WorkspaceID:         event.WorkspaceID,
		UserID:              event.UserID,
		ClientID:            event.ClientID,
		TrafficSource:       classification.TrafficSource,
		Outcome:             event.Outcome,
		CashCollected:       event.CashCollected,
		CreatedAt:           createdAt,
		ManualTrafficSource: event.ManualTrafficSource,
		AppointmentSource:   event.AppointmentSource,
		LeadSource:          event.LeadSource,
	}

	if err := p.store.SaveCallRecord(ctx, record); err != nil {
		m.RecordIngestError("store")
		return Result{}, fmt.Errorf("failed to store call %s: %w", callID, err)
	}
	m.RecordCallIngested(string(record.TrafficSource), string(record.Outcome))

	if p.dirty != nil {
		p.dirty.Mark(record.WorkspaceID)
	}

	p.logger.Debug().
		Str("call_id", callID).
		Str("workspace_id", record.WorkspaceID).
		Str("outcome", string(record.Outcome)).
		Str("traffic_source", string(record.TrafficSource)).
		Str("confidence", string(classification.Confidence)).
		Msg("call ingested")

	return Result{Record: record, Classification: classification}, nil
}

// validate rejects events the engine cannot attribute. Negative cash is
// refused here since the aggregator sums amounts as given.
func validate(event *types.CallEvent) error {
	if event == nil {
		return &ValidationError{Field: "event", Reason: "empty"}
	}
	if event.WorkspaceID == "" {
		return &ValidationError{Field: "workspace_id", Reason: "required"}
	}
	if !event.Outcome.Valid() {
		return &ValidationError{Field: "call_outcome", Reason: fmt.Sprintf("unknown outcome %q", event.Outcome)}
	}
	if event.CashCollected != nil && *event.CashCollected < 0 {
		return &ValidationError{Field: "cash_collected", Reason: "must not be negative"}
	}
	return nil
}
