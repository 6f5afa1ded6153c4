package trades

import (
	"context"
	"errors"
	"testing"

	"github.com/Kripa621/swapit-io/internal/items"
	"github.com/Kripa621/swapit-io/internal/ledger"
)

type testEnv struct {
	trades *Service
	items  *items.Service
	ledger *ledger.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	itemsSvc := items.NewService(items.NewMemoryStore())
	ledgerSvc := ledger.NewService(ledger.NewMemoryStore())
	tradesSvc := NewService(NewMemoryStore(), itemsSvc, ledgerSvc, Config{
		EscrowRate:        0.2,
		RewardAmount:      50,
		RewardVolumeFloor: 10000,
		HighValueItem:     10000,
	})
	return &testEnv{trades: tradesSvc, items: itemsSvc, ledger: ledgerSvc}
}

// listItem creates and approves an item so it can enter a trade.
func (e *testEnv) listItem(t *testing.T, owner string, price int64) string {
	t.Helper()
	item, err := e.items.Create(context.Background(), owner, items.CreateInput{
		Title:        "Thing",
		Category:     "General",
		Condition:    "Gently Used",
		ManualPrice:  price,
		ReceiptImage: "https://img.example/r.jpg",
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if _, err := e.items.Review(context.Background(), item.ID, items.ApprovalApproved); err != nil {
		t.Fatalf("approve item: %v", err)
	}
	return item.ID
}

func (e *testEnv) openTrade(t *testing.T, offered, requested []string) *Trade {
	t.Helper()
	trade, err := e.trades.Create(context.Background(), "usr_req", "usr_rcv", offered, requested)
	if err != nil {
		t.Fatalf("create trade: %v", err)
	}
	return trade
}

func (e *testEnv) acceptTrade(t *testing.T, id string) *Trade {
	t.Helper()
	if _, _, err := e.trades.LockTerms(context.Background(), id, "usr_req"); err != nil {
		t.Fatalf("lock terms: %v", err)
	}
	trade, err := e.trades.Accept(context.Background(), id, "usr_rcv")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	return trade
}

func TestCreateReservesOnlyOfferedItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	offered := env.listItem(t, "usr_req", 1000)
	requested := env.listItem(t, "usr_rcv", 1200)

	trade := env.openTrade(t, []string{offered}, []string{requested})
	if trade.Status != StatusPending {
		t.Errorf("status = %q, want pending", trade.Status)
	}

	off, _ := env.items.Get(ctx, offered)
	if off.Status != items.StatusInTrade {
		t.Errorf("offered item status = %q, want in_trade", off.Status)
	}
	req, _ := env.items.Get(ctx, requested)
	if req.Status != items.StatusAvailable {
		t.Errorf("requested item status = %q, want available", req.Status)
	}
}

func TestCreateValidatesOwnershipAndAvailability(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	mine := env.listItem(t, "usr_req", 100)
	theirs := env.listItem(t, "usr_rcv", 100)

	if _, err := env.trades.Create(ctx, "usr_req", "usr_req", []string{mine}, []string{theirs}); !errors.Is(err, ErrSelfTrade) {
		t.Errorf("self trade: got %v, want ErrSelfTrade", err)
	}
	if _, err := env.trades.Create(ctx, "usr_req", "usr_rcv", []string{theirs}, []string{mine}); !errors.Is(err, ErrNotOfferedOwner) {
		t.Errorf("wrong offered owner: got %v, want ErrNotOfferedOwner", err)
	}

	// An item already tied up in one trade cannot enter another.
	env.openTrade(t, []string{mine}, []string{theirs})
	other := env.listItem(t, "usr_rcv", 100)
	if _, err := env.trades.Create(ctx, "usr_req", "usr_rcv", []string{mine}, []string{other}); !errors.Is(err, items.ErrItemUnavailable) {
		t.Errorf("reserved item reuse: got %v, want ErrItemUnavailable", err)
	}
}

func TestAcceptRequiresLockedTerms(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	offered := env.listItem(t, "usr_req", 1000)
	requested := env.listItem(t, "usr_rcv", 1200)
	trade := env.openTrade(t, []string{offered}, []string{requested})

	if _, err := env.trades.Accept(ctx, trade.ID, "usr_rcv"); !errors.Is(err, ErrTermsNotLocked) {
		t.Errorf("got %v, want ErrTermsNotLocked", err)
	}
}

func TestLockTermsIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	offered := env.listItem(t, "usr_req", 1000)
	requested := env.listItem(t, "usr_rcv", 1200)
	trade := env.openTrade(t, []string{offered}, []string{requested})

	_, link1, err := env.trades.LockTerms(ctx, trade.ID, "usr_req")
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}
	got, link2, err := env.trades.LockTerms(ctx, trade.ID, "usr_rcv")
	if err != nil {
		t.Fatalf("second lock: %v", err)
	}
	if link1 == "" || link1 != link2 {
		t.Errorf("payment links differ: %q vs %q", link1, link2)
	}
	if !got.TermsLocked {
		t.Error("terms not locked")
	}
}

func TestEscrowComputedAtAcceptance(t *testing.T) {
	env := newTestEnv(t)

	offered := env.listItem(t, "usr_req", 1000)
	requested := env.listItem(t, "usr_rcv", 1200)
	trade := env.openTrade(t, []string{offered}, []string{requested})
	trade = env.acceptTrade(t, trade.ID)

	// 20% of the larger side: 0.2 * 1200 = 240.
	if trade.EscrowAmount != 240 {
		t.Errorf("escrow = %d, want 240", trade.EscrowAmount)
	}
	if !trade.EscrowHeld {
		t.Error("escrow not held after acceptance")
	}
	if trade.Status != StatusAccepted {
		t.Errorf("status = %q, want accepted", trade.Status)
	}
}

func TestEscrowRoundsHalfUp(t *testing.T) {
	env := newTestEnv(t)

	// 0.2 * 1003 = 200.6 -> 201; 0.2 * 1002 = 200.4 -> 200.
	offered := env.listItem(t, "usr_req", 10)
	requested := env.listItem(t, "usr_rcv", 1003)
	trade := env.openTrade(t, []string{offered}, []string{requested})
	trade = env.acceptTrade(t, trade.ID)
	if trade.EscrowAmount != 201 {
		t.Errorf("escrow = %d, want 201", trade.EscrowAmount)
	}
}

func TestCompleteSettlesDifferenceAndTransfersItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	offered := env.listItem(t, "usr_req", 1000)
	requested := env.listItem(t, "usr_rcv", 1200)
	trade := env.openTrade(t, []string{offered}, []string{requested})
	env.acceptTrade(t, trade.ID)

	done, err := env.trades.Complete(ctx, trade.ID, "usr_req")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	if done.Status != StatusCompleted {
		t.Errorf("status = %q, want completed", done.Status)
	}
	// The requester receives 200 more value than they gave, so they pay.
	reqBalance, _ := env.ledger.Balance(ctx, "usr_req")
	rcvBalance, _ := env.ledger.Balance(ctx, "usr_rcv")
	if reqBalance != -200 {
		t.Errorf("requester balance = %d, want -200", reqBalance)
	}
	if rcvBalance != 200 {
		t.Errorf("receiver balance = %d, want 200", rcvBalance)
	}

	// Items changed hands and are marked traded.
	off, _ := env.items.Get(ctx, offered)
	if off.OwnerID != "usr_rcv" || off.Status != items.StatusTraded {
		t.Errorf("offered item owner=%q status=%q, want usr_rcv/traded", off.OwnerID, off.Status)
	}
	req, _ := env.items.Get(ctx, requested)
	if req.OwnerID != "usr_req" || req.Status != items.StatusTraded {
		t.Errorf("requested item owner=%q status=%q, want usr_req/traded", req.OwnerID, req.Status)
	}

	// Escrow survives completion; only an admin refund clears it.
	if !done.EscrowHeld {
		t.Error("escrow released at completion")
	}
	if done.EscrowAmount != 240 {
		t.Errorf("escrow amount changed at completion: %d", done.EscrowAmount)
	}
	// No reward below the volume floor.
	if done.CreditPointsStatus != CreditsNone {
		t.Errorf("credit status = %q, want none", done.CreditPointsStatus)
	}
}

func TestCompleteAwardsHighVolumeReward(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	offered := env.listItem(t, "usr_req", 6000)
	requested := env.listItem(t, "usr_rcv", 5000)
	trade := env.openTrade(t, []string{offered}, []string{requested})
	env.acceptTrade(t, trade.ID)

	done, err := env.trades.Complete(ctx, trade.ID, "usr_rcv")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	if done.CreditPointsStatus != CreditsAwarded {
		t.Errorf("credit status = %q, want awarded", done.CreditPointsStatus)
	}
	// Receiver pays the 1000 difference, then both get 50 back.
	reqBalance, _ := env.ledger.Balance(ctx, "usr_req")
	rcvBalance, _ := env.ledger.Balance(ctx, "usr_rcv")
	if reqBalance != 1050 {
		t.Errorf("requester balance = %d, want 1050", reqBalance)
	}
	if rcvBalance != -950 {
		t.Errorf("receiver balance = %d, want -950", rcvBalance)
	}
}

func TestCompleteRoutesHighValueItemToReview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	offered := env.listItem(t, "usr_req", 12000)
	requested := env.listItem(t, "usr_rcv", 500)
	trade := env.openTrade(t, []string{offered}, []string{requested})
	env.acceptTrade(t, trade.ID)

	done, err := env.trades.Complete(ctx, trade.ID, "usr_req")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	if done.CreditPointsStatus != CreditsPendingReview {
		t.Errorf("credit status = %q, want pending_review", done.CreditPointsStatus)
	}
	// Difference settles, but no reward yet.
	reqBalance, _ := env.ledger.Balance(ctx, "usr_req")
	if reqBalance != 11500 {
		t.Errorf("requester balance = %d, want 11500", reqBalance)
	}

	queue, err := env.trades.ListPendingCreditReview(ctx)
	if err != nil {
		t.Fatalf("ListPendingCreditReview: %v", err)
	}
	if len(queue) != 1 || queue[0].ID != trade.ID {
		t.Errorf("review queue = %v, want [%s]", queue, trade.ID)
	}
}

func TestApproveCreditsPaysOutOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	offered := env.listItem(t, "usr_req", 12000)
	requested := env.listItem(t, "usr_rcv", 500)
	trade := env.openTrade(t, []string{offered}, []string{requested})
	env.acceptTrade(t, trade.ID)
	if _, err := env.trades.Complete(ctx, trade.ID, "usr_req"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	before, _ := env.ledger.Balance(ctx, "usr_req")

	approved, err := env.trades.ApproveCredits(ctx, trade.ID)
	if err != nil {
		t.Fatalf("ApproveCredits: %v", err)
	}
	if approved.CreditPointsStatus != CreditsAwarded {
		t.Errorf("credit status = %q, want awarded", approved.CreditPointsStatus)
	}

	after, _ := env.ledger.Balance(ctx, "usr_req")
	if after != before+50 {
		t.Errorf("requester balance = %d, want %d", after, before+50)
	}

	// Second approval must not double-pay.
	if _, err := env.trades.ApproveCredits(ctx, trade.ID); !errors.Is(err, ErrCreditsNotInReview) {
		t.Errorf("second approval: got %v, want ErrCreditsNotInReview", err)
	}
	final, _ := env.ledger.Balance(ctx, "usr_req")
	if final != after {
		t.Errorf("balance moved on rejected approval: %d -> %d", after, final)
	}
}

func TestRejectReleasesOnlyOfferedItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	offered := env.listItem(t, "usr_req", 1000)
	requested := env.listItem(t, "usr_rcv", 1200)
	trade := env.openTrade(t, []string{offered}, []string{requested})

	done, err := env.trades.Reject(ctx, trade.ID, "usr_rcv")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if done.Status != StatusRejected {
		t.Errorf("status = %q, want rejected", done.Status)
	}

	off, _ := env.items.Get(ctx, offered)
	if off.Status != items.StatusAvailable {
		t.Errorf("offered item status = %q, want available", off.Status)
	}
	// Ownership untouched.
	if off.OwnerID != "usr_req" {
		t.Errorf("offered item owner = %q, want usr_req", off.OwnerID)
	}
	req, _ := env.items.Get(ctx, requested)
	if req.Status != items.StatusAvailable || req.OwnerID != "usr_rcv" {
		t.Errorf("requested item owner=%q status=%q, want usr_rcv/available", req.OwnerID, req.Status)
	}
}

func TestTerminalTradesAdmitNoFurtherEvents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	offered := env.listItem(t, "usr_req", 1000)
	requested := env.listItem(t, "usr_rcv", 1200)
	trade := env.openTrade(t, []string{offered}, []string{requested})
	env.acceptTrade(t, trade.ID)
	if _, err := env.trades.Complete(ctx, trade.ID, "usr_req"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if _, err := env.trades.Reject(ctx, trade.ID, "usr_req"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("reject after complete: got %v, want ErrInvalidTransition", err)
	}
	if _, err := env.trades.RaiseDispute(ctx, trade.ID, "usr_req"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("dispute after complete: got %v, want ErrInvalidTransition", err)
	}
	if _, err := env.trades.Complete(ctx, trade.ID, "usr_req"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("double complete: got %v, want ErrInvalidTransition", err)
	}
}

func TestDisputeAndResolve(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	offered := env.listItem(t, "usr_req", 1000)
	requested := env.listItem(t, "usr_rcv", 1200)
	trade := env.openTrade(t, []string{offered}, []string{requested})
	env.acceptTrade(t, trade.ID)

	disputed, err := env.trades.RaiseDispute(ctx, trade.ID, "usr_req")
	if err != nil {
		t.Fatalf("dispute: %v", err)
	}
	if disputed.Status != StatusDisputed {
		t.Errorf("status = %q, want disputed", disputed.Status)
	}

	open, err := env.trades.ListDisputed(ctx)
	if err != nil {
		t.Fatalf("ListDisputed: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("got %d disputes, want 1", len(open))
	}

	resolved, err := env.trades.ResolveDispute(ctx, trade.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Status != StatusRejected {
		t.Errorf("status = %q, want rejected", resolved.Status)
	}
	if resolved.EscrowHeld {
		t.Error("escrow still held after resolution")
	}

	off, _ := env.items.Get(ctx, offered)
	if off.Status != items.StatusAvailable {
		t.Errorf("offered item status = %q, want available", off.Status)
	}
}

func TestConfirmRefundClearsEscrowOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	offered := env.listItem(t, "usr_req", 1000)
	requested := env.listItem(t, "usr_rcv", 1200)
	trade := env.openTrade(t, []string{offered}, []string{requested})
	env.acceptTrade(t, trade.ID)
	if _, err := env.trades.Complete(ctx, trade.ID, "usr_req"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	queue, err := env.trades.ListPendingRefunds(ctx)
	if err != nil {
		t.Fatalf("ListPendingRefunds: %v", err)
	}
	if len(queue) != 1 || queue[0].ID != trade.ID {
		t.Fatalf("refund queue = %v, want [%s]", queue, trade.ID)
	}

	refunded, err := env.trades.ConfirmRefund(ctx, trade.ID)
	if err != nil {
		t.Fatalf("ConfirmRefund: %v", err)
	}
	if refunded.EscrowHeld {
		t.Error("escrow still held after refund confirmation")
	}

	queue, _ = env.trades.ListPendingRefunds(ctx)
	if len(queue) != 0 {
		t.Errorf("refund queue still has %d entries", len(queue))
	}

	if _, err := env.trades.ConfirmRefund(ctx, trade.ID); !errors.Is(err, ErrNoEscrowToRefund) {
		t.Errorf("second refund: got %v, want ErrNoEscrowToRefund", err)
	}
}

func TestPartyOnlyAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	offered := env.listItem(t, "usr_req", 1000)
	requested := env.listItem(t, "usr_rcv", 1200)
	trade := env.openTrade(t, []string{offered}, []string{requested})

	if _, err := env.trades.Get(ctx, trade.ID, "usr_stranger"); !errors.Is(err, ErrNotParty) {
		t.Errorf("get: got %v, want ErrNotParty", err)
	}
	if _, _, err := env.trades.LockTerms(ctx, trade.ID, "usr_stranger"); !errors.Is(err, ErrNotParty) {
		t.Errorf("lock: got %v, want ErrNotParty", err)
	}
	if _, err := env.trades.Reject(ctx, trade.ID, "usr_stranger"); !errors.Is(err, ErrNotParty) {
		t.Errorf("reject: got %v, want ErrNotParty", err)
	}
}
