package plaidsync

import (
	"errors"
	"fmt"
)

// ErrSyncInProgress is returned when another sync for the same item is
// already running; the caller should simply retry later.
var ErrSyncInProgress = errors.New("sync already in progress for item")

// UpstreamError wraps a failure from the Plaid API. Aborts the whole
// invocation; the cursor is never advanced past a failed fetch.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// PersistenceError wraps a database failure during the apply phase.
// Op identifies the stage that failed ("upsert", "soft_delete", "cursor").
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
