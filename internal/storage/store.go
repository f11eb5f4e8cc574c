package storage

import (
	"context"
	"fmt"

	"github.com/dennisdiepolder/monti/salesmetrics/internal/types"
	"github.com/rs/zerolog"
)

// Store is the record store the metrics engine reads from.
// Every implementation scopes by workspace and applies the remaining
// filter fields as one predicate each.
type Store interface {
	// SaveCallRecord upserts by (workspace, call id)
	SaveCallRecord(ctx context.Context, record types.CallRecord) error
	FetchCallRecords(ctx context.Context, filter types.MetricsFilter) ([]types.CallRecord, error)
	TruncateAll(ctx context.Context) error
}

// NewStore creates the appropriate store based on configuration
func NewStore(ctx context.Context, cfg Config, logger zerolog.Logger) (Store, error) {
	switch cfg.Backend {
	case BackendDynamo:
		return NewDynamoDBStore(ctx, cfg.Dynamo, cfg.Retry, logger)
	case BackendSQL:
		return NewSQLStore(cfg.SQL, logger)
	case BackendMemory, "":
		logger.Info().Msg("using in-memory record store (STORE_BACKEND=memory)")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
