package ingestion

import (
	"context"

	"github.com/dennisdiepolder/monti/salesmetrics/internal/types"
)

// CallProcessor processes call events from any source (HTTP receiver, NATS, ...)
type CallProcessor interface {
	ProcessCall(ctx context.Context, event *types.CallEvent) (Result, error)
}

// EventSource represents a source of call events that pushes into a processor
type EventSource interface {
	// Start begins receiving events and forwarding them to the processor.
	// It returns once the source is subscribed; delivery continues until ctx is done.
	Start(ctx context.Context, processor CallProcessor) error

	// Name identifies the source in logs
	Name() string
}

// RecordWriter is the write side of the record store
type RecordWriter interface {
	SaveCallRecord(ctx context.Context, record types.CallRecord) error
}

// DirtyMarker is notified of every workspace that received a call
type DirtyMarker interface {
	Mark(workspaceID string)
}
