package ledger

import (
	"context"
	"testing"
)

func TestTransferDifferenceNetsToZero(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	if err := svc.TransferDifference(ctx, "usr_a", "usr_b", 200, "trd_1"); err != nil {
		t.Fatalf("TransferDifference: %v", err)
	}

	a, _ := svc.Balance(ctx, "usr_a")
	b, _ := svc.Balance(ctx, "usr_b")

	if a != -200 {
		t.Errorf("payer balance = %d, want -200", a)
	}
	if b != 200 {
		t.Errorf("payee balance = %d, want 200", b)
	}
	if a+b != 0 {
		t.Errorf("transfer did not net to zero: %d", a+b)
	}
}

func TestTransferAllowsNegativeBalance(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	// Payer has zero credits; the transfer must still settle.
	if err := svc.TransferDifference(ctx, "usr_poor", "usr_rich", 5000, "trd_2"); err != nil {
		t.Fatalf("TransferDifference: %v", err)
	}

	balance, _ := svc.Balance(ctx, "usr_poor")
	if balance != -5000 {
		t.Errorf("balance = %d, want -5000", balance)
	}
}

func TestTransferRejectsBadInput(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	if err := svc.TransferDifference(ctx, "usr_a", "usr_b", 0, "trd_3"); err != ErrInvalidAmount {
		t.Errorf("zero amount: got %v, want ErrInvalidAmount", err)
	}
	if err := svc.TransferDifference(ctx, "usr_a", "usr_b", -10, "trd_3"); err != ErrInvalidAmount {
		t.Errorf("negative amount: got %v, want ErrInvalidAmount", err)
	}
	if err := svc.TransferDifference(ctx, "usr_a", "usr_a", 10, "trd_3"); err != ErrSameParty {
		t.Errorf("self transfer: got %v, want ErrSameParty", err)
	}
}

func TestRewardCreditsUser(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	if err := svc.Reward(ctx, "usr_a", 50, "trd_4"); err != nil {
		t.Fatalf("Reward: %v", err)
	}
	if err := svc.Reward(ctx, "usr_a", 50, "trd_5"); err != nil {
		t.Fatalf("Reward: %v", err)
	}

	balance, _ := svc.Balance(ctx, "usr_a")
	if balance != 100 {
		t.Errorf("balance = %d, want 100", balance)
	}

	entries, err := svc.History(ctx, "usr_a", 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if e.Type != EntryReward {
			t.Errorf("entry type = %q, want %q", e.Type, EntryReward)
		}
	}
}

func TestHistoryScopedToUser(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	if err := svc.TransferDifference(ctx, "usr_a", "usr_b", 100, "trd_6"); err != nil {
		t.Fatalf("TransferDifference: %v", err)
	}

	entries, err := svc.History(ctx, "usr_a", 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries for usr_a, want 1", len(entries))
	}
	if entries[0].Amount != -100 {
		t.Errorf("entry amount = %d, want -100", entries[0].Amount)
	}
	if entries[0].Reference != "trd_6" {
		t.Errorf("entry reference = %q, want trd_6", entries[0].Reference)
	}
}
