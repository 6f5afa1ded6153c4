package messages

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

func (s *PostgresStore) Create(ctx context.Context, m *Message) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, trade_id, sender_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, m.ID, m.TradeID, m.SenderID, m.Text, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListForTrade(ctx context.Context, tradeID string) ([]*Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, trade_id, sender_id, text, created_at
		FROM messages
		WHERE trade_id = $1
		ORDER BY created_at ASC, id ASC
	`, tradeID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.TradeID, &m.SenderID, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		result = append(result, &m)
	}
	return result, rows.Err()
}
