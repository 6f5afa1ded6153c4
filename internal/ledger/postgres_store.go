package ledger

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore is a PostgreSQL implementation of Store.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store backed by the given database.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Append writes the entries and applies their amounts to balances inside a
// single serializable transaction, so a transfer pair lands all-or-nothing.
func (s *PostgresStore) Append(ctx context.Context, entries ...*Entry) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, e := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ledger_entries (id, user_id, type, amount, reference, description, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, e.ID, e.UserID, e.Type, e.Amount, e.Reference, e.Description, e.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO balances (user_id, amount)
			VALUES ($1, $2)
			ON CONFLICT (user_id) DO UPDATE SET amount = balances.amount + $2
		`, e.UserID, e.Amount)
		if err != nil {
			return fmt.Errorf("update balance: %w", err)
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) Balance(ctx context.Context, userID string) (int64, error) {
	var amount int64
	err := s.db.QueryRowContext(ctx, `
		SELECT amount FROM balances WHERE user_id = $1
	`, userID).Scan(&amount)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query balance: %w", err)
	}
	return amount, nil
}

func (s *PostgresStore) History(ctx context.Context, userID string, limit int) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, type, amount, reference, description, created_at
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Type, &e.Amount, &e.Reference, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		result = append(result, &e)
	}
	return result, rows.Err()
}
