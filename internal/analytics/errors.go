package analytics

import (
	"errors"
	"fmt"
)

var (
	ErrWorkspaceRequired  = errors.New("workspace id is required")
	ErrInvalidWindow      = errors.New("window is empty, inverted or too long")
	ErrOverlappingWindows = errors.New("trend windows must not overlap")
)

// RecordFetchError is returned when the record store fails. The cause stays
// reachable through errors.Is / errors.As.
type RecordFetchError struct {
	WorkspaceID string
	Err         error
}

func (e *RecordFetchError) Error() string {
	return fmt.Sprintf("fetch call records for workspace %s: %v", e.WorkspaceID, e.Err)
}

func (e *RecordFetchError) Unwrap() error {
	return e.Err
}
