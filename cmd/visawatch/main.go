// Command visawatch polls a visa appointment site for newly opened slots
// at one facility and notifies Telegram recipients when dates appear.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"

	"visawatch/internal/config"
	"visawatch/internal/driver/rodriver"
	"visawatch/internal/notify"
	"visawatch/internal/transport/telegram"
	"visawatch/internal/watcher"
	"visawatch/pkg/logx"
)

func main() {
	var (
		cfgPath string
		once    bool
	)
	flag.StringVar(&cfgPath, "config", "./config.yaml", "path to config file (yaml or json)")
	flag.BoolVar(&once, "once", false, "run a single check and exit")
	flag.Parse()

	if err := run(cfgPath, once); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run(cfgPath string, once bool) error {
	settings, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	log, logCloser, err := logx.New(logx.Config{
		Level:   settings.Logging.Level,
		Console: settings.Logging.Console || !settings.Logging.File.Enabled,
		File: logx.FileConfig{
			Enabled: settings.Logging.File.Enabled,
			Path:    settings.Logging.File.Path,
		},
	})
	if err != nil {
		return err
	}
	defer func() { _ = logCloser.Close() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sender, err := telegram.New(telegram.Config{Token: settings.TelegramToken}, log.With(logx.String("component", "telegram")))
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}

	broadcaster := notify.New(settings, sender, log.With(logx.String("component", "notify")))
	drv := rodriver.New(rodriver.Config{}, log.With(logx.String("component", "driver")))
	w := watcher.New(settings, drv, broadcaster, log.With(logx.String("component", "watcher")))

	// Under systemd, report readiness/shutdown; harmless no-ops elsewhere.
	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Debug("sd_notify ready failed", logx.Err(err))
	}
	defer func() {
		if _, err := daemon.SdNotify(false, daemon.SdNotifyStopping); err != nil {
			log.Debug("sd_notify stopping failed", logx.Err(err))
		}
	}()

	err = w.Run(ctx, once)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
