package notify

import (
	"context"
	"errors"
	"testing"

	"visawatch/internal/config"
	"visawatch/internal/transport"
	"visawatch/pkg/logx"
)

type sentMsg struct {
	ChatID int64
	Text   string
}

// fakeSender records deliveries and fails for chat ids listed in failFor.
type fakeSender struct {
	sent    []sentMsg
	failFor map[int64]error
}

func (f *fakeSender) SendText(ctx context.Context, chatID int64, text string) error {
	f.sent = append(f.sent, sentMsg{ChatID: chatID, Text: text})
	if err, ok := f.failFor[chatID]; ok {
		return err
	}
	return nil
}

func newBroadcaster(t *testing.T, chatIDs []int64, adminID int64, sender transport.Sender) *Broadcaster {
	t.Helper()
	settings := config.Settings{ChatIDs: chatIDs, AdminChatID: adminID}
	return New(settings, sender, logx.Nop()).WithSendPacing(0, 0)
}

func TestBroadcastDeliversToAllInOrder(t *testing.T) {
	fake := &fakeSender{}
	b := newBroadcaster(t, []int64{1, 2, -1003}, 0, fake)

	if err := b.Broadcast(context.Background(), "hi"); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	if len(fake.sent) != 3 {
		t.Fatalf("expected 3 sends, got %d", len(fake.sent))
	}
	for i, want := range []int64{1, 2, -1003} {
		if fake.sent[i].ChatID != want {
			t.Fatalf("send %d went to %d, want %d", i, fake.sent[i].ChatID, want)
		}
	}
}

func TestBroadcastContinuesPastFailures(t *testing.T) {
	fake := &fakeSender{failFor: map[int64]error{2: errors.New("blocked")}}
	b := newBroadcaster(t, []int64{1, 2, 3}, 0, fake)

	err := b.Broadcast(context.Background(), "hi")
	if err == nil {
		t.Fatalf("expected delivery error")
	}
	var de *DeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DeliveryError, got %T", err)
	}
	if len(de.Failed) != 1 || de.Failed[0] != 2 {
		t.Fatalf("failed ids: got %v", de.Failed)
	}
	// All three were still attempted.
	if len(fake.sent) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(fake.sent))
	}
}

func TestAlertDuplicatesToAdminWhenNotRecipient(t *testing.T) {
	fake := &fakeSender{}
	b := newBroadcaster(t, []int64{1, 2}, 99, fake)

	if err := b.Alert(context.Background(), "alert"); err != nil {
		t.Fatalf("Alert: %v", err)
	}
	if len(fake.sent) != 3 {
		t.Fatalf("expected len(recipients)+1 sends, got %d", len(fake.sent))
	}
	if fake.sent[2].ChatID != 99 {
		t.Fatalf("last send should target admin, got %d", fake.sent[2].ChatID)
	}
}

func TestAlertSkipsAdminDuplicateWhenAlreadyRecipient(t *testing.T) {
	fake := &fakeSender{}
	b := newBroadcaster(t, []int64{1, 99}, 99, fake)

	if err := b.Alert(context.Background(), "alert"); err != nil {
		t.Fatalf("Alert: %v", err)
	}
	if len(fake.sent) != 2 {
		t.Fatalf("expected exactly len(recipients) sends, got %d", len(fake.sent))
	}
}

func TestAlertCountsAdminFailure(t *testing.T) {
	fake := &fakeSender{failFor: map[int64]error{99: errors.New("down")}}
	b := newBroadcaster(t, []int64{1}, 99, fake)

	err := b.Alert(context.Background(), "alert")
	var de *DeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DeliveryError, got %v", err)
	}
	if len(de.Failed) != 1 || de.Failed[0] != 99 {
		t.Fatalf("failed ids: got %v", de.Failed)
	}
}

func TestStatusAdminNoopWithoutAdmin(t *testing.T) {
	fake := &fakeSender{}
	b := newBroadcaster(t, []int64{1, 2}, 0, fake)

	b.StatusAdmin(context.Background(), "status")
	if len(fake.sent) != 0 {
		t.Fatalf("expected zero sends, got %d", len(fake.sent))
	}
}

func TestStatusAdminTargetsAdminOnlyAndSwallowsErrors(t *testing.T) {
	fake := &fakeSender{failFor: map[int64]error{99: errors.New("down")}}
	b := newBroadcaster(t, []int64{1, 2}, 99, fake)

	b.StatusAdmin(context.Background(), "status")
	if len(fake.sent) != 1 || fake.sent[0].ChatID != 99 {
		t.Fatalf("expected a single admin send, got %v", fake.sent)
	}
}
