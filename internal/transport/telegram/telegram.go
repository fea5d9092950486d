// Package telegram implements the transport.Sender contract on the
// Telegram Bot API via telebot.
package telegram

import (
	"context"
	"errors"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"visawatch/pkg/logx"
)

type Config struct {
	Token string

	// SendTimeout bounds one sendMessage call. Defaults to 20s.
	SendTimeout time.Duration
}

// Sender is a send-only Telegram client. The watcher never consumes
// updates, so no poller is started.
type Sender struct {
	cfg Config
	log logx.Logger
	bot *tele.Bot
}

func New(cfg Config, log logx.Logger) (*Sender, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 20 * time.Second
	}
	b, err := tele.NewBot(tele.Settings{
		Token: cfg.Token,
		// No Poller: this bot only sends.
		Synchronous: true,
	})
	if err != nil {
		return nil, err
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Sender{cfg: cfg, log: log, bot: b}, nil
}

func (s *Sender) SendText(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.bot.Send(&tele.Chat{ID: chatID}, text, &tele.SendOptions{
			DisableWebPagePreview: true,
		})
		done <- err
	}()

	t := time.NewTimer(s.cfg.SendTimeout)
	defer t.Stop()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		s.log.Warn("telegram send timed out", logx.Int64("chat_id", chatID), logx.Duration("timeout", s.cfg.SendTimeout))
		return errors.New("telegram send timed out")
	}
}
