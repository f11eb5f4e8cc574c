package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// MessageTypeStoreReset tells dashboards to drop everything they show
const MessageTypeStoreReset = "store_reset"

// Truncater empties the record store
type Truncater interface {
	TruncateAll(ctx context.Context) error
}

// Notifier reaches every connected dashboard
type Notifier interface {
	Broadcast(message []byte)
}

// AdminHandler exposes maintenance operations for development environments
type AdminHandler struct {
	store    Truncater
	notifier Notifier
	logger   zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(store Truncater, notifier Notifier, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		store:    store,
		notifier: notifier,
		logger:   logger.With().Str("component", "admin_handler").Logger(),
	}
}

// WipeStore deletes every call record and tells connected dashboards
// POST /internal/admin/wipe
func (h *AdminHandler) WipeStore(w http.ResponseWriter, r *http.Request) {
	if err := h.store.TruncateAll(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("failed to truncate record store")
		writeError(w, http.StatusInternalServerError, "failed to truncate record store")
		return
	}

	h.logger.Info().Msg("record store truncated")

	notice, err := json.Marshal(map[string]interface{}{
		"type":      MessageTypeStoreReset,
		"timestamp": time.Now().UTC(),
	})
	if err == nil {
		h.notifier.Broadcast(notice)
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "record store truncated"})
}
