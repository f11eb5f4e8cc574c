package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dennisdiepolder/monti/salesmetrics/internal/analytics"
	"github.com/rs/zerolog"
)

// paramError marks a malformed query or path parameter
type paramError struct {
	param string
	msg   string
}

func (e *paramError) Error() string {
	return "invalid " + e.param + ": " + e.msg
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps an engine error onto an HTTP status
func statusFor(err error) int {
	var pErr *paramError
	var fetchErr *analytics.RecordFetchError
	switch {
	case errors.As(err, &pErr),
		errors.Is(err, analytics.ErrWorkspaceRequired),
		errors.Is(err, analytics.ErrInvalidWindow),
		errors.Is(err, analytics.ErrOverlappingWindows):
		return http.StatusBadRequest
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail logs server-side failures and replies with the mapped status
func fail(w http.ResponseWriter, logger zerolog.Logger, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("operation", op).Msg("request failed")
		if status == http.StatusBadGateway {
			writeError(w, status, "record store unavailable")
			return
		}
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
