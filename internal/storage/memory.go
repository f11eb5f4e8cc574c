package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/dennisdiepolder/monti/salesmetrics/internal/types"
)

// MemoryStore keeps records in process. Used for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]map[string]types.CallRecord // workspace -> call id -> record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]map[string]types.CallRecord)}
}

func (s *MemoryStore) SaveCallRecord(ctx context.Context, record types.CallRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if record.WorkspaceID == "" || record.CallID == "" {
		return errors.New("workspace id and call id are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ws, ok := s.records[record.WorkspaceID]
	if !ok {
		ws = make(map[string]types.CallRecord)
		s.records[record.WorkspaceID] = ws
	}
	ws[record.CallID] = record
	return nil
}

func (s *MemoryStore) FetchCallRecords(ctx context.Context, filter types.MetricsFilter) ([]types.CallRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ws := s.records[filter.WorkspaceID()]
	out := make([]types.CallRecord, 0, len(ws))
	for _, r := range ws {
		if filter.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryStore) TruncateAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]map[string]types.CallRecord)
	return nil
}

// Count returns the number of stored records across all workspaces
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, ws := range s.records {
		n += len(ws)
	}
	return n
}
