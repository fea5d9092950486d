package watcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"visawatch/internal/driver"
	"visawatch/internal/slot"
	"visawatch/pkg/logx"
)

// checkOnce performs a single check attempt: open a browser session, sign
// in, scrape the calendar. No internal retry. The session is released on
// every exit path; release errors are logged and swallowed so they never
// mask the attempt's outcome.
func (w *Watcher) checkOnce(ctx context.Context) (slot.Set, error) {
	w.log.Info("starting browser", logx.Bool("headless", w.settings.Headless))
	sess, err := w.driver.OpenSession(ctx, w.settings.Headless)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			w.log.Warn("browser session did not close cleanly", logx.Err(cerr))
		}
	}()

	w.log.Info("signing in", logx.String("url", w.signInURL))
	if err := sess.SignIn(ctx, w.signInURL, w.settings.VisaUsername, w.settings.VisaPassword); err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	w.log.Info("fetching available slots", logx.String("url", w.appointmentsURL))
	return sess.FetchSlots(ctx, w.appointmentsURL, w.settings.FacilityID, w.settings.AppointmentsMaxRefreshAttempts)
}

// checkWithRetry wraps checkOnce with a bounded retry and exponential
// backoff. Busy outcomes are returned immediately: the site being busy is
// an expected state and another attempt within the same cycle won't help.
// On exhaustion the last error is returned unchanged.
func (w *Watcher) checkWithRetry(ctx context.Context) (slot.Set, error) {
	attempts := w.settings.CheckRetryAttempts
	backoff := w.settings.BackoffMin

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		w.log.Info("check attempt started", logx.Int("attempt", attempt), logx.Int("max_attempts", attempts))

		current, err := w.checkOnce(ctx)
		if err == nil {
			return current, nil
		}

		var busy *driver.BusyError
		if errors.As(err, &busy) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, err
		}

		lastErr = err
		w.log.Warn("check attempt failed",
			logx.Int("attempt", attempt), logx.String("reason", shortReason(err)))

		if attempt == attempts {
			break
		}

		w.log.Info("pausing before next attempt",
			logx.Int("next_attempt", attempt+1),
			logx.Duration("pause", backoff),
			logx.String("reason", shortReason(err)))
		if serr := sleepCtx(ctx, backoff); serr != nil {
			return nil, lastErr
		}
		backoff *= 2
		if backoff > w.settings.BackoffMax {
			backoff = w.settings.BackoffMax
		}
	}
	return nil, lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
