package services

import (
	"fmt"
	"time"
)

// InvalidEventError: malformed or out-of-tolerance input. Caller's fault, never retried.
type InvalidEventError struct {
	Reason string
}

func (e *InvalidEventError) Error() string {
	return fmt.Sprintf("invalid event: %s", e.Reason)
}

// ChallengeClosedError: business-rule rejection, the challenge window does not
// admit the operation. Not a failure — surfaced to the caller as "not eligible".
type ChallengeClosedError struct {
	ChallengeKey string
	ClosesAt     time.Time
}

func (e *ChallengeClosedError) Error() string {
	return fmt.Sprintf("challenge %s is closed (window ends %s)", e.ChallengeKey, e.ClosesAt.Format(time.RFC3339))
}

// ConcurrencyConflictError: the optimistic version check failed after all
// internal retries were exhausted.
type ConcurrencyConflictError struct {
	UserID   string
	Attempts int
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("concurrent update conflict for user %s after %d attempts", e.UserID, e.Attempts)
}

// StorageUnavailableError wraps a storage collaborator failure. The engine
// performs no partial commits, so profile state is unchanged when this surfaces.
type StorageUnavailableError struct {
	Op  string
	Err error
}

func (e *StorageUnavailableError) Error() string {
	return fmt.Sprintf("storage unavailable during %s: %v", e.Op, e.Err)
}

func (e *StorageUnavailableError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageUnavailableError{Op: op, Err: err}
}
