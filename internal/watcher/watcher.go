// Package watcher holds the check-and-notify core: one polling cycle
// (browser session, sign-in, scrape, diff against persisted state, fan-out),
// the retry wrapper around it, and the outer polling loop.
package watcher

import (
	"strings"

	"visawatch/internal/config"
	"visawatch/internal/driver"
	"visawatch/internal/notify"
	"visawatch/pkg/logx"
)

type Watcher struct {
	settings    config.Settings
	driver      driver.Driver
	broadcaster *notify.Broadcaster
	log         logx.Logger

	signInURL       string
	appointmentsURL string
}

func New(settings config.Settings, drv driver.Driver, broadcaster *notify.Broadcaster, log logx.Logger) *Watcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Watcher{
		settings:        settings,
		driver:          drv,
		broadcaster:     broadcaster,
		log:             log,
		signInURL:       driver.SignInURL(settings.CountryCode),
		appointmentsURL: driver.AppointmentsURL(settings.CountryCode, settings.ScheduleID),
	}
}

// shortReason renders an error as a single compact line for logs and chat
// messages. Never includes a stack trace: failures recur every polling
// cycle and would flood the log otherwise.
func shortReason(err error) string {
	if err == nil {
		return ""
	}
	s := strings.TrimSpace(err.Error())
	s = strings.ReplaceAll(s, "\n", " ")
	const maxLen = 300
	if len(s) > maxLen {
		s = s[:maxLen] + "…"
	}
	return s
}
