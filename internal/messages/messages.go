// Package messages provides per-trade chat with payment-detail filtering.
//
// Delivery is by polling: clients fetch the transcript, there is no push.
// Only the sanitized form of a message is ever persisted.
package messages

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Kripa621/swapit-io/internal/idgen"
	"github.com/Kripa621/swapit-io/internal/logging"
	"github.com/Kripa621/swapit-io/internal/metrics"
	"github.com/Kripa621/swapit-io/internal/trades"
)

// Errors
var (
	ErrMessageNotFound = errors.New("message not found")
	ErrEmptyMessage    = errors.New("message text is empty")
)

// Message is one chat line in a trade conversation. Text is stored after
// sanitization.
type Message struct {
	ID        string    `json:"id"`
	TradeID   string    `json:"tradeId"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists messages.
type Store interface {
	Create(ctx context.Context, m *Message) error
	ListForTrade(ctx context.Context, tradeID string) ([]*Message, error)
}

// TradeReader is the slice of the trade service the chat needs.
type TradeReader interface {
	Get(ctx context.Context, id, actorID string) (*trades.Trade, error)
	GetForAdmin(ctx context.Context, id string) (*trades.Trade, error)
}

// Service provides chat operations.
type Service struct {
	store  Store
	trades TradeReader
}

// NewService creates a message service.
func NewService(store Store, tradeReader TradeReader) *Service {
	return &Service{store: store, trades: tradeReader}
}

// Send records a chat message on a trade. The sender must be a party, and
// the text is filtered before it touches storage.
func (s *Service) Send(ctx context.Context, tradeID, senderID, text string) (*Message, error) {
	if text == "" {
		return nil, ErrEmptyMessage
	}

	// Party check rides on the trade read.
	if _, err := s.trades.Get(ctx, tradeID, senderID); err != nil {
		return nil, err
	}

	if rule, hit := WasFiltered(text); hit {
		metrics.MessagesFilteredTotal.WithLabelValues(rule).Inc()
		logging.L(ctx).Info("message content blocked", "trade_id", tradeID, "rule", rule)
	}

	m := &Message{
		ID:        idgen.WithPrefix("msg_"),
		TradeID:   tradeID,
		SenderID:  senderID,
		Text:      Sanitize(text),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return m, nil
}

// ListForTrade returns the conversation for a trade, oldest first. The
// caller must be a party to the trade.
func (s *Service) ListForTrade(ctx context.Context, tradeID, actorID string) ([]*Message, error) {
	if _, err := s.trades.Get(ctx, tradeID, actorID); err != nil {
		return nil, err
	}
	return s.store.ListForTrade(ctx, tradeID)
}

// Transcript returns the conversation without the party check. Admin use
// only, for dispute adjudication.
func (s *Service) Transcript(ctx context.Context, tradeID string) ([]*Message, error) {
	if _, err := s.trades.GetForAdmin(ctx, tradeID); err != nil {
		return nil, err
	}
	return s.store.ListForTrade(ctx, tradeID)
}
