// Package driver defines the browser automation contract the watcher core
// uses to reach the appointment site. The production implementation (on
// go-rod) lives in the rodriver subpackage; tests substitute a fake.
package driver

import (
	"context"

	"visawatch/internal/slot"
)

// Driver opens browser sessions against the appointment site.
type Driver interface {
	// OpenSession starts a fresh browser. Sessions are never reused across
	// check attempts; the caller closes the session on every exit path.
	OpenSession(ctx context.Context, headless bool) (Session, error)
}

// Session is one live browser session.
type Session interface {
	// SignIn authenticates at signInURL. Fails if the login form or the
	// post-login navigation does not complete within the driver's wait bound.
	SignIn(ctx context.Context, signInURL, username, password string) error

	// FetchSlots scrapes the available dates for facilityID from the
	// appointments page, refreshing a transiently unrendered calendar up to
	// maxRefreshAttempts times. Returns *BusyError when the site reports
	// temporary unavailability.
	FetchSlots(ctx context.Context, appointmentsURL string, facilityID, maxRefreshAttempts int) (slot.Set, error)

	// Close tears the browser down. Safe to call exactly once.
	Close() error
}

// BusyError signals the site's "system busy, try again later" banner.
// It is an expected, recurring condition, distinguished from real failures
// so it never triggers an alert and is never retried.
type BusyError struct {
	Msg string
}

func (e *BusyError) Error() string {
	if e.Msg == "" {
		return "appointment site reports it is busy"
	}
	return e.Msg
}
