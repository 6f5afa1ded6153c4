// Package trades implements the barter trade lifecycle.
//
// A trade is a proposal from a requester to a receiver: a set of offered
// items against a set of requested items. The lifecycle is driven by the
// transition table in fsm.go. Settlement pays the value difference in
// SwapCredits through the ledger and hands items to their new owners; a
// simulated escrow deposit is held from acceptance until an admin confirms
// its refund.
package trades

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/Kripa621/swapit-io/internal/idgen"
	"github.com/Kripa621/swapit-io/internal/items"
	"github.com/Kripa621/swapit-io/internal/ledger"
	"github.com/Kripa621/swapit-io/internal/logging"
	"github.com/Kripa621/swapit-io/internal/metrics"
	"github.com/Kripa621/swapit-io/internal/traces"
)

// Errors
var (
	ErrTradeNotFound      = errors.New("trade not found")
	ErrNotParty           = errors.New("not a party to this trade")
	ErrSelfTrade          = errors.New("cannot open a trade with yourself")
	ErrTermsNotLocked     = errors.New("terms must be locked before accepting")
	ErrNotOfferedOwner    = errors.New("requester does not own all offered items")
	ErrNotRequestedOwner  = errors.New("receiver does not own all requested items")
	ErrNoEscrowToRefund   = errors.New("trade has no escrow awaiting refund")
	ErrCreditsNotInReview = errors.New("trade credits are not pending review")
)

// Credit point statuses
const (
	CreditsNone          = "none"
	CreditsPendingReview = "pending_review"
	CreditsAwarded       = "awarded"
)

// Trade is a barter proposal between two users.
type Trade struct {
	ID                 string     `json:"id"`
	RequesterID        string     `json:"requesterId"`
	ReceiverID         string     `json:"receiverId"`
	OfferedItemIDs     []string   `json:"offeredItems"`
	RequestedItemIDs   []string   `json:"requestedItems"`
	Status             string     `json:"status"`
	TermsLocked        bool       `json:"termsLocked"`
	EscrowAmount       int64      `json:"escrowAmount"`
	EscrowHeld         bool       `json:"escrowHeld"`
	CreditPointsStatus string     `json:"creditPointsStatus"`
	OfferedValue       int64      `json:"offeredValue"`
	RequestedValue     int64      `json:"requestedValue"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
}

// IsParty reports whether the user is the requester or receiver.
func (t *Trade) IsParty(userID string) bool {
	return userID == t.RequesterID || userID == t.ReceiverID
}

// Store persists trades.
type Store interface {
	Create(ctx context.Context, t *Trade) error
	Get(ctx context.Context, id string) (*Trade, error)
	Update(ctx context.Context, t *Trade) error
	ListForUser(ctx context.Context, userID string) ([]*Trade, error)
	ListByStatus(ctx context.Context, status string) ([]*Trade, error)
	ListPendingRefunds(ctx context.Context) ([]*Trade, error)
	ListPendingCreditReview(ctx context.Context) ([]*Trade, error)
	// CompareAndSetCreditStatus flips credit_points_status from one value to
	// another. Returns false without changing anything if the current value
	// does not match.
	CompareAndSetCreditStatus(ctx context.Context, id, from, to string) (bool, error)
}

// Notifier receives trade lifecycle events for realtime delivery.
type Notifier interface {
	NotifyTrade(eventType string, t *Trade)
}

// Config carries the settlement tunables.
type Config struct {
	EscrowRate        float64 // fraction of the larger side held as deposit
	RewardAmount      int64   // credits minted per party on a high-volume trade
	RewardVolumeFloor int64   // combined value must exceed this to reward
	HighValueItem     int64   // any single item above this routes reward to review
}

// Service coordinates the trade lifecycle across items and the ledger.
type Service struct {
	store    Store
	items    *items.Service
	ledger   *ledger.Service
	cfg      Config
	notifier Notifier

	locks sync.Map // trade ID -> *sync.Mutex
}

// NewService creates a trade service.
func NewService(store Store, itemsSvc *items.Service, ledgerSvc *ledger.Service, cfg Config) *Service {
	return &Service{
		store:  store,
		items:  itemsSvc,
		ledger: ledgerSvc,
		cfg:    cfg,
	}
}

// SetNotifier wires a realtime event sink. Optional.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// lockTrade serializes all mutations of a single trade.
func (s *Service) lockTrade(id string) func() {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *Service) notify(event string, t *Trade) {
	if s.notifier != nil {
		s.notifier.NotifyTrade(event, t)
	}
}

// Create opens a trade. Both item sets are validated for ownership,
// moderation approval, and availability; only the offered items are
// reserved. The requested items stay listed until the receiver commits.
func (s *Service) Create(ctx context.Context, requesterID, receiverID string, offered, requested []string) (*Trade, error) {
	ctx, span := traces.StartSpan(ctx, "trades.Create", traces.UserID(requesterID))
	defer span.End()

	if requesterID == receiverID {
		return nil, ErrSelfTrade
	}

	offeredItems, err := s.items.GetMany(ctx, offered)
	if err != nil {
		return nil, err
	}
	requestedItems, err := s.items.GetMany(ctx, requested)
	if err != nil {
		return nil, err
	}

	for _, it := range offeredItems {
		if it.OwnerID != requesterID {
			return nil, ErrNotOfferedOwner
		}
		if !it.Tradeable() {
			return nil, items.ErrItemUnavailable
		}
	}
	for _, it := range requestedItems {
		if it.OwnerID != receiverID {
			return nil, ErrNotRequestedOwner
		}
		if !it.Tradeable() {
			return nil, items.ErrItemUnavailable
		}
	}

	// Reserve the offered side only. Reservation revalidates atomically, so
	// a racing trade cannot grab the same items.
	if err := s.items.Reserve(ctx, offered); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	t := &Trade{
		ID:                 idgen.WithPrefix("trd_"),
		RequesterID:        requesterID,
		ReceiverID:         receiverID,
		OfferedItemIDs:     offered,
		RequestedItemIDs:   requested,
		Status:             StatusPending,
		CreditPointsStatus: CreditsNone,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.store.Create(ctx, t); err != nil {
		// Roll the reservation back so the items are not stranded.
		_ = s.items.Release(ctx, offered)
		return nil, fmt.Errorf("create trade: %w", err)
	}

	metrics.TradesTotal.WithLabelValues(StatusPending).Inc()
	logging.L(ctx).Info("trade created",
		"trade_id", t.ID, "requester", requesterID, "receiver", receiverID,
		"offered", len(offered), "requested", len(requested))
	s.notify("trade_created", t)
	return t, nil
}

// Get returns a trade. Only the two parties may read it.
func (s *Service) Get(ctx context.Context, id, actorID string) (*Trade, error) {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsParty(actorID) {
		return nil, ErrNotParty
	}
	return t, nil
}

// ListForUser returns every trade the user participates in, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*Trade, error) {
	return s.store.ListForUser(ctx, userID)
}

// LockTerms freezes the trade terms and returns the simulated payment link
// for the escrow deposit. Idempotent: locking twice returns the same link.
func (s *Service) LockTerms(ctx context.Context, id, actorID string) (*Trade, string, error) {
	ctx, span := traces.StartSpan(ctx, "trades.LockTerms", traces.TradeID(id))
	defer span.End()

	unlock := s.lockTrade(id)
	defer unlock()

	t, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if !t.IsParty(actorID) {
		return nil, "", ErrNotParty
	}

	if t.TermsLocked {
		return t, paymentLink(t.ID), nil
	}

	if _, err := NextStatus(t.Status, EventLock); err != nil {
		return nil, "", err
	}

	t.TermsLocked = true
	t.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(ctx, t); err != nil {
		return nil, "", fmt.Errorf("update trade: %w", err)
	}

	logging.L(ctx).Info("trade terms locked", "trade_id", id, "actor", actorID)
	s.notify("trade_locked", t)
	return t, paymentLink(t.ID), nil
}

// Accept moves the trade to accepted and records the escrow deposit.
// Terms must be locked first. The deposit is a fixed fraction of the more
// valuable side, rounded half up, and is never recomputed afterwards.
func (s *Service) Accept(ctx context.Context, id, actorID string) (*Trade, error) {
	ctx, span := traces.StartSpan(ctx, "trades.Accept", traces.TradeID(id))
	defer span.End()

	unlock := s.lockTrade(id)
	defer unlock()

	t, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsParty(actorID) {
		return nil, ErrNotParty
	}

	next, err := NextStatus(t.Status, EventAccept)
	if err != nil {
		return nil, err
	}
	if !t.TermsLocked {
		return nil, ErrTermsNotLocked
	}

	offeredValue, requestedValue, _, err := s.valueSides(ctx, t)
	if err != nil {
		return nil, err
	}

	larger := offeredValue
	if requestedValue > larger {
		larger = requestedValue
	}

	t.OfferedValue = offeredValue
	t.RequestedValue = requestedValue
	t.EscrowAmount = roundHalfUp(s.cfg.EscrowRate * float64(larger))
	t.EscrowHeld = true
	t.Status = next
	t.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update trade: %w", err)
	}

	metrics.TradesTotal.WithLabelValues(StatusAccepted).Inc()
	metrics.EscrowHeldTotal.Inc()
	logging.L(ctx).Info("trade accepted",
		"trade_id", id, "escrow_amount", t.EscrowAmount,
		"offered_value", offeredValue, "requested_value", requestedValue)
	s.notify("trade_accepted", t)
	return t, nil
}

// Complete settles an accepted trade: the value difference moves through the
// ledger, the high-volume reward rule runs, and both item sets change hands.
// The escrow deposit stays held until an admin confirms its refund.
func (s *Service) Complete(ctx context.Context, id, actorID string) (*Trade, error) {
	ctx, span := traces.StartSpan(ctx, "trades.Complete", traces.TradeID(id))
	defer span.End()

	unlock := s.lockTrade(id)
	defer unlock()

	t, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsParty(actorID) {
		return nil, ErrNotParty
	}

	next, err := NextStatus(t.Status, EventComplete)
	if err != nil {
		return nil, err
	}

	_, _, maxItem, err := s.valueSides(ctx, t)
	if err != nil {
		return nil, err
	}

	// Zero-sum credit difference. Whoever gives up less value pays the gap.
	diff := t.RequestedValue - t.OfferedValue
	switch {
	case diff > 0:
		err = s.ledger.TransferDifference(ctx, t.RequesterID, t.ReceiverID, diff, t.ID)
	case diff < 0:
		err = s.ledger.TransferDifference(ctx, t.ReceiverID, t.RequesterID, -diff, t.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("settle credit difference: %w", err)
	}

	// High-volume reward rule. Trades containing a single high-value item
	// go to admin review instead of paying out automatically.
	totalVolume := t.OfferedValue + t.RequestedValue
	if totalVolume > s.cfg.RewardVolumeFloor {
		if maxItem > s.cfg.HighValueItem {
			t.CreditPointsStatus = CreditsPendingReview
		} else {
			t.CreditPointsStatus = CreditsAwarded
			if err := s.ledger.Reward(ctx, t.RequesterID, s.cfg.RewardAmount, t.ID); err != nil {
				return nil, fmt.Errorf("reward requester: %w", err)
			}
			if err := s.ledger.Reward(ctx, t.ReceiverID, s.cfg.RewardAmount, t.ID); err != nil {
				return nil, fmt.Errorf("reward receiver: %w", err)
			}
			metrics.RewardsAwardedTotal.WithLabelValues("auto").Add(2)
		}
	}

	// Ownership swap: offered items go to the receiver, requested items to
	// the requester.
	if err := s.items.Transfer(ctx, t.OfferedItemIDs, t.ReceiverID); err != nil {
		return nil, fmt.Errorf("transfer offered items: %w", err)
	}
	if err := s.items.Transfer(ctx, t.RequestedItemIDs, t.RequesterID); err != nil {
		return nil, fmt.Errorf("transfer requested items: %w", err)
	}

	now := time.Now().UTC()
	t.Status = next
	t.CompletedAt = &now
	t.UpdatedAt = now
	// EscrowHeld stays true: the deposit refund is an explicit admin step.

	if err := s.store.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update trade: %w", err)
	}

	metrics.TradesTotal.WithLabelValues(StatusCompleted).Inc()
	logging.L(ctx).Info("trade completed",
		"trade_id", id, "difference", diff, "credit_points", t.CreditPointsStatus)
	s.notify("trade_completed", t)
	return t, nil
}

// Reject declines the trade and puts the offered items back on the market.
// The requested items were never reserved, so they need no release.
func (s *Service) Reject(ctx context.Context, id, actorID string) (*Trade, error) {
	ctx, span := traces.StartSpan(ctx, "trades.Reject", traces.TradeID(id))
	defer span.End()

	unlock := s.lockTrade(id)
	defer unlock()

	t, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsParty(actorID) {
		return nil, ErrNotParty
	}

	next, err := NextStatus(t.Status, EventReject)
	if err != nil {
		return nil, err
	}

	if err := s.items.Release(ctx, t.OfferedItemIDs); err != nil {
		return nil, fmt.Errorf("release offered items: %w", err)
	}

	t.Status = next
	t.EscrowHeld = false
	t.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update trade: %w", err)
	}

	metrics.TradesTotal.WithLabelValues(StatusRejected).Inc()
	logging.L(ctx).Info("trade rejected", "trade_id", id, "actor", actorID)
	s.notify("trade_rejected", t)
	return t, nil
}

// RaiseDispute freezes the trade for admin adjudication.
func (s *Service) RaiseDispute(ctx context.Context, id, actorID string) (*Trade, error) {
	ctx, span := traces.StartSpan(ctx, "trades.RaiseDispute", traces.TradeID(id))
	defer span.End()

	unlock := s.lockTrade(id)
	defer unlock()

	t, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsParty(actorID) {
		return nil, ErrNotParty
	}

	next, err := NextStatus(t.Status, EventDispute)
	if err != nil {
		return nil, err
	}

	t.Status = next
	t.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update trade: %w", err)
	}

	metrics.TradesTotal.WithLabelValues(StatusDisputed).Inc()
	metrics.DisputesOpenGauge.Inc()
	logging.L(ctx).Warn("trade disputed", "trade_id", id, "actor", actorID)
	s.notify("trade_disputed", t)
	return t, nil
}

// ResolveDispute closes a disputed trade. Everything unwinds: both item sets
// return to the market, the escrow hold is released, and the trade ends
// rejected.
func (s *Service) ResolveDispute(ctx context.Context, id string) (*Trade, error) {
	ctx, span := traces.StartSpan(ctx, "trades.ResolveDispute", traces.TradeID(id))
	defer span.End()

	unlock := s.lockTrade(id)
	defer unlock()

	t, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := NextStatus(t.Status, EventResolve)
	if err != nil {
		return nil, err
	}

	if err := s.items.Release(ctx, t.OfferedItemIDs); err != nil {
		return nil, fmt.Errorf("release offered items: %w", err)
	}
	if err := s.items.Release(ctx, t.RequestedItemIDs); err != nil {
		return nil, fmt.Errorf("release requested items: %w", err)
	}

	t.Status = next
	t.EscrowHeld = false
	t.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update trade: %w", err)
	}

	metrics.DisputesOpenGauge.Dec()
	logging.L(ctx).Info("dispute resolved", "trade_id", id)
	s.notify("trade_rejected", t)
	return t, nil
}

// ConfirmRefund releases the escrow hold on a completed trade. This is the
// only path that clears EscrowHeld after completion.
func (s *Service) ConfirmRefund(ctx context.Context, id string) (*Trade, error) {
	ctx, span := traces.StartSpan(ctx, "trades.ConfirmRefund", traces.TradeID(id))
	defer span.End()

	unlock := s.lockTrade(id)
	defer unlock()

	t, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status != StatusCompleted || !t.EscrowHeld {
		return nil, ErrNoEscrowToRefund
	}

	t.EscrowHeld = false
	t.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update trade: %w", err)
	}

	metrics.EscrowReleasedTotal.Inc()
	logging.L(ctx).Info("escrow refund confirmed", "trade_id", id, "amount", t.EscrowAmount)
	return t, nil
}

// ApproveCredits awards the held-back reward on a trade that completed in
// credit review. The status flip is compare-and-set so the reward can only
// ever pay out once.
func (s *Service) ApproveCredits(ctx context.Context, id string) (*Trade, error) {
	ctx, span := traces.StartSpan(ctx, "trades.ApproveCredits", traces.TradeID(id))
	defer span.End()

	unlock := s.lockTrade(id)
	defer unlock()

	t, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	swapped, err := s.store.CompareAndSetCreditStatus(ctx, id, CreditsPendingReview, CreditsAwarded)
	if err != nil {
		return nil, fmt.Errorf("update credit status: %w", err)
	}
	if !swapped {
		return nil, ErrCreditsNotInReview
	}

	if err := s.ledger.Reward(ctx, t.RequesterID, s.cfg.RewardAmount, t.ID); err != nil {
		return nil, fmt.Errorf("reward requester: %w", err)
	}
	if err := s.ledger.Reward(ctx, t.ReceiverID, s.cfg.RewardAmount, t.ID); err != nil {
		return nil, fmt.Errorf("reward receiver: %w", err)
	}

	t.CreditPointsStatus = CreditsAwarded
	metrics.RewardsAwardedTotal.WithLabelValues("admin").Add(2)
	logging.L(ctx).Info("trade credits approved", "trade_id", id)
	return t, nil
}

// Admin queue reads.

// ListPendingRefunds returns completed trades whose escrow is still held.
func (s *Service) ListPendingRefunds(ctx context.Context) ([]*Trade, error) {
	return s.store.ListPendingRefunds(ctx)
}

// ListPendingCreditReview returns trades awaiting a reward decision.
func (s *Service) ListPendingCreditReview(ctx context.Context) ([]*Trade, error) {
	return s.store.ListPendingCreditReview(ctx)
}

// ListDisputed returns open disputes.
func (s *Service) ListDisputed(ctx context.Context) ([]*Trade, error) {
	return s.store.ListByStatus(ctx, StatusDisputed)
}

// GetForAdmin returns a trade without the party check.
func (s *Service) GetForAdmin(ctx context.Context, id string) (*Trade, error) {
	return s.store.Get(ctx, id)
}

// valueSides loads both item sets and returns the declared value of each
// side plus the single highest item price seen.
func (s *Service) valueSides(ctx context.Context, t *Trade) (offered, requested, maxItem int64, err error) {
	offeredItems, err := s.items.GetMany(ctx, t.OfferedItemIDs)
	if err != nil {
		return 0, 0, 0, err
	}
	requestedItems, err := s.items.GetMany(ctx, t.RequestedItemIDs)
	if err != nil {
		return 0, 0, 0, err
	}

	offered = items.TotalValue(offeredItems)
	requested = items.TotalValue(requestedItems)
	maxItem = items.MaxValue(offeredItems)
	if m := items.MaxValue(requestedItems); m > maxItem {
		maxItem = m
	}
	return offered, requested, maxItem, nil
}

// paymentLink derives the simulated escrow payment link for a trade.
// Deterministic, so locking terms twice hands back the same link.
func paymentLink(tradeID string) string {
	sum := sha256.Sum256([]byte(tradeID))
	return "https://pay.swapit.example/escrow/" + hex.EncodeToString(sum[:8])
}

// roundHalfUp rounds to the nearest whole credit, ties away from zero.
func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
