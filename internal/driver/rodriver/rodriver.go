// Package rodriver implements the driver contract on go-rod, driving a
// real Chromium instance against the appointment site.
package rodriver

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"visawatch/internal/driver"
	"visawatch/pkg/logx"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0 Safari/537.36"

type Config struct {
	// WaitTimeout bounds each wait for a page element or navigation.
	// Defaults to 60s.
	WaitTimeout time.Duration

	// MonthsAhead is how many datepicker months to walk. Defaults to 6.
	MonthsAhead int
}

type Driver struct {
	cfg Config
	log logx.Logger
}

func New(cfg Config, log logx.Logger) *Driver {
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = 60 * time.Second
	}
	if cfg.MonthsAhead <= 0 {
		cfg.MonthsAhead = 6
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Driver{cfg: cfg, log: log}
}

func (d *Driver) OpenSession(ctx context.Context, headless bool) (driver.Session, error) {
	l := launcher.New().
		Headless(headless).
		Set("disable-gpu").
		Set("no-sandbox").
		Set("window-size", "1200,900").
		// Keeps Chromium stable in containers with a small /dev/shm.
		Set("disable-dev-shm-usage").
		Set("disable-features", "Translate,BackForwardCache").
		Set("disable-background-networking").
		Set("disable-background-timer-throttling").
		Set("disable-renderer-backgrounding").
		Set("user-agent", userAgent)

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	d.log.Debug("browser session opened", logx.Bool("headless", headless))
	return &session{cfg: d.cfg, log: d.log, browser: browser, launcher: l}, nil
}

type session struct {
	cfg      Config
	log      logx.Logger
	browser  *rod.Browser
	launcher *launcher.Launcher

	page *rod.Page
}

func (s *session) Close() error {
	err := s.browser.Close()
	s.launcher.Cleanup()
	return err
}

func (s *session) SignIn(ctx context.Context, signInURL, username, password string) error {
	page, err := s.browser.Page(proto.TargetCreateTarget{URL: signInURL})
	if err != nil {
		return fmt.Errorf("open sign-in page: %w", err)
	}
	s.page = page

	bounded := page.Timeout(s.cfg.WaitTimeout)

	email, err := bounded.Element(`input[name="user[email]"]`)
	if err != nil {
		return fmt.Errorf("sign-in form did not appear: %w", err)
	}

	s.dismissCookieBanner(page)

	if err := fillInput(email, username); err != nil {
		return fmt.Errorf("fill username: %w", err)
	}
	pass, err := bounded.Element(`input[name="user[password]"]`)
	if err != nil {
		return fmt.Errorf("password field not found: %w", err)
	}
	if err := fillInput(pass, password); err != nil {
		return fmt.Errorf("fill password: %w", err)
	}

	// Privacy policy checkbox, then submit.
	policy, err := bounded.ElementX(`//*[@id="sign_in_form"]/div[3]/label/div`)
	if err != nil {
		return fmt.Errorf("policy checkbox not found: %w", err)
	}
	if err := policy.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click policy checkbox: %w", err)
	}
	submit, err := bounded.ElementX(`//*[@id="sign_in_form"]/p[1]/input`)
	if err != nil {
		return fmt.Errorf("submit button not found: %w", err)
	}
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click submit: %w", err)
	}

	if err := s.waitURLChange(ctx, page, signInURL); err != nil {
		return fmt.Errorf("post-login navigation: %w", err)
	}
	return nil
}

// dismissCookieBanner clicks the consent dialog when present. Best-effort;
// the dialog only appears on some sessions.
func (s *session) dismissCookieBanner(page *rod.Page) {
	el, err := page.Timeout(2 * time.Second).ElementX(`/html/body/div[7]/div[3]/div/button`)
	if err != nil {
		return
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		s.log.Debug("cookie banner click failed", logx.Err(err))
	}
}

func (s *session) waitURLChange(ctx context.Context, page *rod.Page, from string) error {
	deadline := time.Now().Add(s.cfg.WaitTimeout)
	for {
		info, err := page.Info()
		if err != nil {
			return fmt.Errorf("page info: %w", err)
		}
		if info.URL != from {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("url did not change from %s within %s", from, s.cfg.WaitTimeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func fillInput(el *rod.Element, text string) error {
	if err := el.SelectAllText(); err != nil {
		return err
	}
	return el.Input(text)
}
