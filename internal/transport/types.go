// Package transport defines the chat delivery contract the watcher core
// depends on. The Telegram implementation lives in the telegram subpackage;
// tests substitute an in-memory fake.
package transport

import "context"

// Sender delivers a text message to a single chat id. Implementations fail
// on transport-level errors and on API-reported errors alike.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, chatID int64, text string) error

func (f SenderFunc) SendText(ctx context.Context, chatID int64, text string) error {
	return f(ctx, chatID, text)
}
