package watcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"visawatch/internal/driver"
	"visawatch/internal/state"
	"visawatch/pkg/logx"
)

// RunOnce drives one full check cycle: retry-wrapped scrape, diff against
// the persisted state, notify, persist.
//
// Outcomes:
//   - success: notify (alert on new slots, admin status otherwise) and save
//     the scraped set unconditionally;
//   - busy: nothing persisted, admin-only status, nil returned;
//   - failure: nothing persisted, best-effort alert to all recipients, and
//     the original error returned to the caller.
func (w *Watcher) RunOnce(ctx context.Context) error {
	current, err := w.checkWithRetry(ctx)
	if err != nil {
		var busy *driver.BusyError
		if errors.As(err, &busy) {
			w.log.Info("site is busy, skipping this cycle", logx.String("reason", shortReason(err)))
			w.broadcaster.StatusAdmin(ctx, busyText(w.appointmentsURL))
			return nil
		}

		w.log.Error("check failed", logx.String("reason", shortReason(err)))
		w.broadcaster.AlertBestEffort(ctx, checkFailedText(shortReason(err), w.appointmentsURL))
		return err
	}

	previous := state.Load(w.settings.StateFile)
	newSlots := current.Diff(previous)
	w.log.Info("slots compared",
		logx.Int("current", len(current)),
		logx.Int("previous", len(previous)),
		logx.Int("new", len(newSlots)))

	if len(newSlots) > 0 {
		if derr := w.broadcaster.Alert(ctx, newSlotsText(newSlots, w.appointmentsURL)); derr != nil {
			w.log.Warn("new-slots alert not fully delivered", logx.Err(derr))
		} else {
			w.log.Info("new-slots alert delivered", logx.Int("recipients", len(w.settings.ChatIDs)))
		}
	} else {
		w.broadcaster.StatusAdmin(ctx, noNewSlotsText(len(current), w.appointmentsURL))
	}

	if err := state.Save(w.settings.StateFile, current); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	w.log.Info("state saved", logx.String("path", w.settings.StateFile), logx.Int("slots", len(current)))
	return nil
}

// runForever polls on a fixed interval until the context is cancelled.
// A failed cycle is logged and isolated from the next iteration; it was
// already reported to recipients inside RunOnce.
func (w *Watcher) runForever(ctx context.Context) {
	w.log.Info("watcher started", logx.Duration("interval", w.settings.CheckInterval))
	for {
		if err := w.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			w.log.Error("check cycle failed", logx.String("reason", shortReason(err)))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.settings.CheckInterval):
		}
	}
}

// runSchedule triggers cycles from a cron expression instead of a ticker.
// The skip-if-still-running chain keeps cycles from overlapping: a cycle
// slower than the schedule simply swallows the next trigger.
func (w *Watcher) runSchedule(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{w.log})))
	_, err := c.AddFunc(w.settings.CheckSchedule, func() {
		if err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
			w.log.Error("check cycle failed", logx.String("reason", shortReason(err)))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid check schedule %q: %w", w.settings.CheckSchedule, err)
	}

	w.log.Info("watcher started", logx.String("schedule", w.settings.CheckSchedule))
	c.Start()
	<-ctx.Done()
	stop := c.Stop()
	// Let an in-flight cycle finish before returning.
	<-stop.Done()
	return nil
}

// Run executes the whole process lifecycle: best-effort startup message,
// the selected run mode, and best-effort crash/shutdown messages. Messaging
// failures never mask the run outcome.
func (w *Watcher) Run(ctx context.Context, once bool) error {
	w.broadcaster.StatusAdmin(ctx, startupText(once, w.settings.Headless, w.settings.CheckInterval, w.settings.CheckSchedule))

	var runErr error
	switch {
	case once:
		runErr = w.RunOnce(ctx)
	case w.settings.CheckSchedule != "":
		runErr = w.runSchedule(ctx)
	default:
		w.runForever(ctx)
	}

	// Shutdown messages still need a live context after cancellation.
	tail := context.WithoutCancel(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		w.broadcaster.StatusAdmin(tail, crashText(shortReason(runErr)))
	}
	w.broadcaster.StatusAdmin(tail, shutdownText())
	return runErr
}

// cronLogger adapts logx to the cron.Logger interface.
type cronLogger struct{ log logx.Logger }

func (l cronLogger) Info(msg string, kv ...interface{}) {
	l.log.Debug("cron: "+msg, logx.Any("details", kv))
}

func (l cronLogger) Error(err error, msg string, kv ...interface{}) {
	l.log.Warn("cron: "+msg, logx.Err(err), logx.Any("details", kv))
}
