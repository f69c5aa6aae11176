package autohome

import (
	"context"
	"time"
)

// Browser is the page-driving capability the workflows need. A Session
// implements it over Chrome; tests use an in-memory fake.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	// WaitFor blocks until selector matches or timeout passes, returning an
	// error wrapping ErrWaitTimeout in the latter case.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	// HTML returns a snapshot of the rendered document.
	HTML(ctx context.Context) (string, error)
	// Click clicks the first element matching selector (CSS or XPath) if it is
	// present and interactable. With skipDisabled, elements whose class
	// mentions "disabled" are left alone. It reports whether a click happened.
	Click(ctx context.Context, selector string, skipDisabled bool) (bool, error)
	ScrollToBottom(ctx context.Context) error
	// Run evaluates a script in the page, discarding its result.
	Run(ctx context.Context, script string) error
	// URL returns the address of the current page.
	URL(ctx context.Context) (string, error)
}
