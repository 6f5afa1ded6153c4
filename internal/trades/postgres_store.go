package trades

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// PostgresStore is a PostgreSQL implementation of Store.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store backed by the given database.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const tradeColumns = `id, requester_id, receiver_id, offered_item_ids, requested_item_ids,
	status, terms_locked, escrow_amount, escrow_held, credit_points_status,
	offered_value, requested_value, created_at, updated_at, completed_at`

func scanTrade(row interface{ Scan(...any) error }) (*Trade, error) {
	var t Trade
	err := row.Scan(&t.ID, &t.RequesterID, &t.ReceiverID,
		pq.Array(&t.OfferedItemIDs), pq.Array(&t.RequestedItemIDs),
		&t.Status, &t.TermsLocked, &t.EscrowAmount, &t.EscrowHeld, &t.CreditPointsStatus,
		&t.OfferedValue, &t.RequestedValue, &t.CreatedAt, &t.UpdatedAt, &t.CompletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTradeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan trade: %w", err)
	}
	return &t, nil
}

func (s *PostgresStore) Create(ctx context.Context, t *Trade) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trades (`+tradeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, t.ID, t.RequesterID, t.ReceiverID,
		pq.Array(t.OfferedItemIDs), pq.Array(t.RequestedItemIDs),
		t.Status, t.TermsLocked, t.EscrowAmount, t.EscrowHeld, t.CreditPointsStatus,
		t.OfferedValue, t.RequestedValue, t.CreatedAt, t.UpdatedAt, t.CompletedAt)
	if err != nil {
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Trade, error) {
	return scanTrade(s.db.QueryRowContext(ctx, `
		SELECT `+tradeColumns+` FROM trades WHERE id = $1
	`, id))
}

func (s *PostgresStore) Update(ctx context.Context, t *Trade) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE trades SET
			status = $2, terms_locked = $3, escrow_amount = $4, escrow_held = $5,
			credit_points_status = $6, offered_value = $7, requested_value = $8,
			updated_at = $9, completed_at = $10
		WHERE id = $1
	`, t.ID, t.Status, t.TermsLocked, t.EscrowAmount, t.EscrowHeld,
		t.CreditPointsStatus, t.OfferedValue, t.RequestedValue,
		t.UpdatedAt, t.CompletedAt)
	if err != nil {
		return fmt.Errorf("update trade: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTradeNotFound
	}
	return nil
}

func (s *PostgresStore) ListForUser(ctx context.Context, userID string) ([]*Trade, error) {
	return s.list(ctx, `
		SELECT `+tradeColumns+` FROM trades
		WHERE requester_id = $1 OR receiver_id = $1
		ORDER BY created_at DESC
	`, userID)
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status string) ([]*Trade, error) {
	return s.list(ctx, `
		SELECT `+tradeColumns+` FROM trades
		WHERE status = $1
		ORDER BY created_at ASC
	`, status)
}

func (s *PostgresStore) ListPendingRefunds(ctx context.Context) ([]*Trade, error) {
	return s.list(ctx, `
		SELECT `+tradeColumns+` FROM trades
		WHERE status = 'completed' AND escrow_held
		ORDER BY created_at ASC
	`)
}

func (s *PostgresStore) ListPendingCreditReview(ctx context.Context) ([]*Trade, error) {
	return s.list(ctx, `
		SELECT `+tradeColumns+` FROM trades
		WHERE credit_points_status = 'pending_review'
		ORDER BY created_at ASC
	`)
}

// CompareAndSetCreditStatus flips the credit status in a single conditional
// UPDATE, so concurrent approvals cannot both pay out.
func (s *PostgresStore) CompareAndSetCreditStatus(ctx context.Context, id, from, to string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE trades SET credit_points_status = $3
		WHERE id = $1 AND credit_points_status = $2
	`, id, from, to)
	if err != nil {
		return false, fmt.Errorf("update credit status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*Trade, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}
