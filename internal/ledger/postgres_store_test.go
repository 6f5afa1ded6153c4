package ledger

import (
	"context"
	"testing"

	"github.com/Kripa621/swapit-io/internal/testutil"
)

func TestPostgresStoreAppendAndBalance(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	svc := NewService(NewPostgresStore(db))
	ctx := context.Background()

	if err := svc.TransferDifference(ctx, "usr_pga", "usr_pgb", 300, "trd_pg1"); err != nil {
		t.Fatalf("TransferDifference: %v", err)
	}
	if err := svc.Reward(ctx, "usr_pga", 50, "trd_pg1"); err != nil {
		t.Fatalf("Reward: %v", err)
	}

	a, err := svc.Balance(ctx, "usr_pga")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if a != -250 {
		t.Errorf("usr_pga balance = %d, want -250", a)
	}

	b, err := svc.Balance(ctx, "usr_pgb")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if b != 300 {
		t.Errorf("usr_pgb balance = %d, want 300", b)
	}

	// Unknown user reads as zero, not an error.
	zero, err := svc.Balance(ctx, "usr_nobody")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if zero != 0 {
		t.Errorf("unknown user balance = %d, want 0", zero)
	}

	entries, err := svc.History(ctx, "usr_pga", 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	// Newest first.
	if entries[0].Type != EntryReward {
		t.Errorf("first entry type = %q, want %q", entries[0].Type, EntryReward)
	}
}
