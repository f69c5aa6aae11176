package autohome

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionStart means no browser startup strategy worked. It is fatal
	// for the run.
	ErrSessionStart = errors.New("browser session could not be started")
	// ErrWaitTimeout means a page marker did not appear within its bounded wait.
	ErrWaitTimeout = errors.New("timed out waiting for page marker")
)

// PageError is a page-level failure. It carries enough context to resume by
// hand: what was being done and to which page or vehicle.
type PageError struct {
	Op     string
	Target string
	Err    error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}
