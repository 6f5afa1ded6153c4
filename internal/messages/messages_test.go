package messages

import (
	"context"
	"errors"
	"testing"

	"github.com/Kripa621/swapit-io/internal/trades"
)

// mockTradeReader approves a fixed set of (trade, party) pairs.
type mockTradeReader struct {
	trade   *trades.Trade
	parties map[string]bool
}

func (m *mockTradeReader) Get(ctx context.Context, id, actorID string) (*trades.Trade, error) {
	if m.trade == nil || m.trade.ID != id {
		return nil, trades.ErrTradeNotFound
	}
	if !m.parties[actorID] {
		return nil, trades.ErrNotParty
	}
	return m.trade, nil
}

func (m *mockTradeReader) GetForAdmin(ctx context.Context, id string) (*trades.Trade, error) {
	if m.trade == nil || m.trade.ID != id {
		return nil, trades.ErrTradeNotFound
	}
	return m.trade, nil
}

func newChat() (*Service, *mockTradeReader) {
	reader := &mockTradeReader{
		trade:   &trades.Trade{ID: "trd_1", RequesterID: "usr_a", ReceiverID: "usr_b"},
		parties: map[string]bool{"usr_a": true, "usr_b": true},
	}
	return NewService(NewMemoryStore(), reader), reader
}

func TestSendPersistsSanitizedTextOnly(t *testing.T) {
	svc, _ := newChat()
	ctx := context.Background()

	msg, err := svc.Send(ctx, "trd_1", "usr_a", "reach me at 9876543210")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg.Text != "reach me at [PHONE BLOCKED]" {
		t.Errorf("stored text = %q, want sanitized form", msg.Text)
	}

	// The transcript holds only the sanitized form.
	list, err := svc.ListForTrade(ctx, "trd_1", "usr_b")
	if err != nil {
		t.Fatalf("ListForTrade: %v", err)
	}
	if len(list) != 1 || list[0].Text != "reach me at [PHONE BLOCKED]" {
		t.Errorf("transcript = %v", list)
	}
}

func TestSendRequiresTradeParty(t *testing.T) {
	svc, _ := newChat()
	ctx := context.Background()

	if _, err := svc.Send(ctx, "trd_1", "usr_stranger", "hi"); !errors.Is(err, trades.ErrNotParty) {
		t.Errorf("got %v, want ErrNotParty", err)
	}
	if _, err := svc.Send(ctx, "trd_missing", "usr_a", "hi"); !errors.Is(err, trades.ErrTradeNotFound) {
		t.Errorf("got %v, want ErrTradeNotFound", err)
	}
	if _, err := svc.Send(ctx, "trd_1", "usr_a", ""); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("got %v, want ErrEmptyMessage", err)
	}
}

func TestListForTradeIsChronological(t *testing.T) {
	svc, _ := newChat()
	ctx := context.Background()

	for _, text := range []string{"first", "second", "third"} {
		if _, err := svc.Send(ctx, "trd_1", "usr_a", text); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}

	list, err := svc.ListForTrade(ctx, "trd_1", "usr_a")
	if err != nil {
		t.Fatalf("ListForTrade: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d messages, want 3", len(list))
	}
	for i, want := range []string{"first", "second", "third"} {
		if list[i].Text != want {
			t.Errorf("message %d = %q, want %q", i, list[i].Text, want)
		}
	}
}

func TestTranscriptSkipsPartyCheck(t *testing.T) {
	svc, _ := newChat()
	ctx := context.Background()

	if _, err := svc.Send(ctx, "trd_1", "usr_a", "my number is 9876543210"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	list, err := svc.Transcript(ctx, "trd_1")
	if err != nil {
		t.Fatalf("Transcript: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d messages, want 1", len(list))
	}
	// Even the admin view sees only sanitized text.
	if list[0].Text != "my number is [PHONE BLOCKED]" {
		t.Errorf("transcript text = %q", list[0].Text)
	}
}
