// Package notify fans a text message out to the configured Telegram
// recipients.
//
// Delivery is sequential in recipient-list order; one recipient failing
// never stops delivery to the rest. Partial failure surfaces as a
// *DeliveryError so callers can decide between best-effort (status
// messages) and propagation (alerts).
package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"visawatch/internal/config"
	"visawatch/internal/transport"
	"visawatch/pkg/logx"
)

// DeliveryError reports the recipients that could not be reached after all
// of them were attempted.
type DeliveryError struct {
	Failed []int64
}

func (e *DeliveryError) Error() string {
	ids := make([]string, 0, len(e.Failed))
	for _, id := range e.Failed {
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	return fmt.Sprintf("delivery failed for recipients: %s", strings.Join(ids, ", "))
}

// Broadcaster delivers watcher notifications over a transport.Sender.
type Broadcaster struct {
	settings config.Settings
	sender   transport.Sender
	log      logx.Logger

	// Telegram throttles bots; pace sends instead of tripping the API.
	limiter *rate.Limiter
}

func New(settings config.Settings, sender transport.Sender, log logx.Logger) *Broadcaster {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Broadcaster{
		settings: settings,
		sender:   sender,
		log:      log,
		limiter:  rate.NewLimiter(rate.Limit(25), 5),
	}
}

func (b *Broadcaster) send(ctx context.Context, chatID int64, text string) error {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	return b.sender.SendText(ctx, chatID, text)
}

// Broadcast sends text to every configured recipient independently.
// After all recipients were attempted it returns a *DeliveryError naming
// the ones that failed, or nil if all succeeded.
func (b *Broadcaster) Broadcast(ctx context.Context, text string) error {
	var failed []int64
	for _, chatID := range b.settings.ChatIDs {
		if err := b.send(ctx, chatID, text); err != nil {
			b.log.Warn("telegram send failed", logx.Int64("chat_id", chatID), logx.Err(err))
			failed = append(failed, chatID)
		}
	}
	if len(failed) > 0 {
		return &DeliveryError{Failed: failed}
	}
	return nil
}

// Alert broadcasts to the full recipient list and duplicates the message to
// the admin channel when one is configured and not already a recipient.
// The admin delivery is independent; its failure is only counted.
func (b *Broadcaster) Alert(ctx context.Context, text string) error {
	err := b.Broadcast(ctx, text)

	if b.settings.AdminConfigured() && !b.settings.AdminInRecipients() {
		if aerr := b.send(ctx, b.settings.AdminChatID, text); aerr != nil {
			b.log.Warn("telegram send failed", logx.Int64("chat_id", b.settings.AdminChatID), logx.Err(aerr))
			var de *DeliveryError
			if d, ok := err.(*DeliveryError); ok {
				de = d
			} else {
				de = &DeliveryError{}
			}
			de.Failed = append(de.Failed, b.settings.AdminChatID)
			err = de
		}
	}
	return err
}

// StatusAdmin sends an operational status message to the admin channel
// only. Best-effort: does nothing when no admin is configured, and a
// delivery failure is logged, never returned.
func (b *Broadcaster) StatusAdmin(ctx context.Context, text string) {
	if !b.settings.AdminConfigured() {
		return
	}
	if err := b.send(ctx, b.settings.AdminChatID, text); err != nil {
		b.log.Warn("admin status message not delivered", logx.Int64("chat_id", b.settings.AdminChatID), logx.Err(err))
	}
}

// AlertBestEffort is Alert with the delivery outcome swallowed. Used where
// notification plumbing must never break the caller's own control flow.
func (b *Broadcaster) AlertBestEffort(ctx context.Context, text string) {
	if err := b.Alert(ctx, text); err != nil {
		b.log.Warn("alert not fully delivered", logx.Err(err))
	}
}

// WithSendPacing overrides the default rate limit; keep nil to disable
// pacing entirely (tests).
func (b *Broadcaster) WithSendPacing(perSecond float64, burst int) *Broadcaster {
	if perSecond <= 0 || burst <= 0 {
		b.limiter = nil
		return b
	}
	b.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	return b
}
