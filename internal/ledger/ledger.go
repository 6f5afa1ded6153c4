// Package ledger tracks SwapCredit balances as an append-only entry log.
//
// Balances are derived from immutable entries and may go negative: a trade
// settles even when the paying side lacks sufficient credits. Every transfer
// writes one debit and one credit of equal magnitude, so the books always
// net to zero apart from rewards minted by the platform.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Kripa621/swapit-io/internal/idgen"
	"github.com/Kripa621/swapit-io/internal/logging"
)

// Errors
var (
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrSameParty     = errors.New("cannot transfer to self")
)

// Entry types
const (
	EntryTradeDebit  = "trade_debit"
	EntryTradeCredit = "trade_credit"
	EntryReward      = "reward"
)

// Entry is a single immutable ledger record. Amount is signed: debits are
// negative, credits and rewards positive.
type Entry struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Type        string    `json:"type"`
	Amount      int64     `json:"amount"`
	Reference   string    `json:"reference"` // Trade ID that caused this entry
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Store persists ledger entries and derived balances.
type Store interface {
	// Append writes the given entries and applies their amounts to the
	// parties' balances atomically.
	Append(ctx context.Context, entries ...*Entry) error
	Balance(ctx context.Context, userID string) (int64, error)
	History(ctx context.Context, userID string, limit int) ([]*Entry, error)
}

// Service provides ledger operations.
type Service struct {
	store Store
}

// NewService creates a ledger service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Balance returns a user's current SwapCredit balance.
func (s *Service) Balance(ctx context.Context, userID string) (int64, error) {
	return s.store.Balance(ctx, userID)
}

// History returns a user's most recent entries, newest first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]*Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.store.History(ctx, userID, limit)
}

// TransferDifference moves amount credits from one user to another as part of
// trade settlement. Appends a debit and a credit entry atomically; the pair
// nets to zero. The payer's balance may go negative.
func (s *Service) TransferDifference(ctx context.Context, from, to string, amount int64, tradeID string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if from == to {
		return ErrSameParty
	}

	now := time.Now().UTC()
	debit := &Entry{
		ID:          idgen.WithPrefix("led_"),
		UserID:      from,
		Type:        EntryTradeDebit,
		Amount:      -amount,
		Reference:   tradeID,
		Description: fmt.Sprintf("Value difference paid for trade %s", tradeID),
		CreatedAt:   now,
	}
	credit := &Entry{
		ID:          idgen.WithPrefix("led_"),
		UserID:      to,
		Type:        EntryTradeCredit,
		Amount:      amount,
		Reference:   tradeID,
		Description: fmt.Sprintf("Value difference received for trade %s", tradeID),
		CreatedAt:   now,
	}

	if err := s.store.Append(ctx, debit, credit); err != nil {
		return fmt.Errorf("append transfer entries: %w", err)
	}

	logging.L(ctx).Info("credit difference transferred",
		"from", from, "to", to, "amount", amount, "trade_id", tradeID)
	return nil
}

// Reward mints amount credits for a user as a trade reward.
func (s *Service) Reward(ctx context.Context, userID string, amount int64, tradeID string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	entry := &Entry{
		ID:          idgen.WithPrefix("led_"),
		UserID:      userID,
		Type:        EntryReward,
		Amount:      amount,
		Reference:   tradeID,
		Description: fmt.Sprintf("High-volume trade reward for trade %s", tradeID),
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.Append(ctx, entry); err != nil {
		return fmt.Errorf("append reward entry: %w", err)
	}

	logging.L(ctx).Info("reward credited", "user_id", userID, "amount", amount, "trade_id", tradeID)
	return nil
}
