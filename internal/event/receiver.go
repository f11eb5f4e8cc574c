package event

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dennisdiepolder/monti/salesmetrics/internal/ingestion"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/types"
	"github.com/rs/zerolog"
)

// Receiver handles call events pushed by booking and CRM integrations
type Receiver struct {
	processor      ingestion.CallProcessor
	logger         zerolog.Logger
	eventsReceived int64
	eventsRejected int64
	lastReceived   time.Time
	mu             sync.RWMutex
}

// NewReceiver creates a new event receiver
func NewReceiver(processor ingestion.CallProcessor, logger zerolog.Logger) *Receiver {
	return &Receiver{
		processor: processor,
		logger:    logger,
	}
}

// HandleEvent decodes one call event and hands it to the processor
func (r *Receiver) HandleEvent(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var event types.CallEvent
	if err := json.NewDecoder(req.Body).Decode(&event); err != nil {
		r.logger.Error().Err(err).Msg("failed to decode event")
		atomic.AddInt64(&r.eventsRejected, 1)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid event"})
		return
	}

	result, err := r.processor.ProcessCall(req.Context(), &event)
	if err != nil {
		atomic.AddInt64(&r.eventsRejected, 1)
		var vErr *ingestion.ValidationError
		if errors.As(err, &vErr) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": vErr.Error()})
			return
		}
		r.logger.Error().Err(err).Str("workspace_id", event.WorkspaceID).Msg("failed to process event")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to store event"})
		return
	}

	// Update stats
	count := atomic.AddInt64(&r.eventsReceived, 1)
	r.mu.Lock()
	r.lastReceived = time.Now()
	r.mu.Unlock()

	// Log periodically
	if count%1000 == 0 {
		r.logger.Info().
			Int64("total_received", count).
			Msg("events received")
	}

	writeJSON(w, http.StatusOK, result)
}

// GetStats returns receiver statistics
func (r *Receiver) GetStats(w http.ResponseWriter, req *http.Request) {
	r.mu.RLock()
	lastReceived := r.lastReceived
	r.mu.RUnlock()

	stats := map[string]interface{}{
		"events_received": atomic.LoadInt64(&r.eventsReceived),
		"events_rejected": atomic.LoadInt64(&r.eventsRejected),
		"last_received":   lastReceived,
	}

	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
