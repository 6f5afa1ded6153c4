package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

const itemColumns = `id, owner_id, title, description, category, condition, manual_price,
	receipt_image, images, approval_status, status, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (*Item, error) {
	var i Item
	err := row.Scan(&i.ID, &i.OwnerID, &i.Title, &i.Description, &i.Category, &i.Condition,
		&i.ManualPrice, &i.ReceiptImage, pq.Array(&i.Images), &i.ApprovalStatus, &i.Status,
		&i.CreatedAt, &i.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan item: %w", err)
	}
	return &i, nil
}

func (s *PostgresStore) Create(ctx context.Context, item *Item) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (`+itemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, item.ID, item.OwnerID, item.Title, item.Description, item.Category, item.Condition,
		item.ManualPrice, item.ReceiptImage, pq.Array(item.Images), item.ApprovalStatus,
		item.Status, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Item, error) {
	return scanItem(s.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+` FROM items WHERE id = $1
	`, id))
}

func (s *PostgresStore) GetMany(ctx context.Context, ids []string) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM items WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return collectItems(rows)
}

func (s *PostgresStore) Update(ctx context.Context, item *Item) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE items SET
			title = $2, description = $3, category = $4, condition = $5,
			manual_price = $6, receipt_image = $7, images = $8,
			approval_status = $9, status = $10, owner_id = $11, updated_at = $12
		WHERE id = $1
	`, item.ID, item.Title, item.Description, item.Category, item.Condition,
		item.ManualPrice, item.ReceiptImage, pq.Array(item.Images),
		item.ApprovalStatus, item.Status, item.OwnerID, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID string) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM items
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return collectItems(rows)
}

func (s *PostgresStore) Feed(ctx context.Context, q FeedQuery) ([]*Item, error) {
	query := `
		SELECT ` + itemColumns + ` FROM items
		WHERE approval_status = 'approved' AND status = 'available'`
	args := []any{}
	n := 0

	addArg := func(v any) string {
		n++
		args = append(args, v)
		return fmt.Sprintf("$%d", n)
	}

	if q.ExcludeOwner != "" {
		query += ` AND owner_id <> ` + addArg(q.ExcludeOwner)
	}
	if q.Category != "" {
		query += ` AND lower(category) = lower(` + addArg(q.Category) + `)`
	}
	if q.Search != "" {
		p := addArg("%" + q.Search + "%")
		query += ` AND (title ILIKE ` + p + ` OR description ILIKE ` + p + `)`
	}
	if q.Cursor != nil {
		query += ` AND (created_at, id) < (` + addArg(q.Cursor.CreatedAt) + `, ` + addArg(q.Cursor.ID) + `)`
	}

	query += ` ORDER BY created_at DESC, id DESC LIMIT ` + addArg(q.Limit+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query feed: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return collectItems(rows)
}

func (s *PostgresStore) ListPendingApproval(ctx context.Context) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM items
		WHERE approval_status = 'pending'
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return collectItems(rows)
}

// Reserve locks the rows, verifies every item is approved and available,
// then flips them to in_trade. Any failure rolls back the whole batch.
func (s *PostgresStore) Reserve(ctx context.Context, ids []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, approval_status, status FROM items
		WHERE id = ANY($1)
		FOR UPDATE
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("lock items: %w", err)
	}

	found := make(map[string]bool, len(ids))
	for rows.Next() {
		var id, approval, status string
		if err := rows.Scan(&id, &approval, &status); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan item: %w", err)
		}
		if approval != ApprovalApproved || status != StatusAvailable {
			_ = rows.Close()
			return ErrItemUnavailable
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	_ = rows.Close()

	for _, id := range ids {
		if !found[id] {
			return ErrItemNotFound
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE items SET status = 'in_trade', updated_at = $2 WHERE id = ANY($1)
	`, pq.Array(ids), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("reserve items: %w", err)
	}

	return tx.Commit()
}

func (s *PostgresStore) Release(ctx context.Context, ids []string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE items SET status = 'available', updated_at = $2 WHERE id = ANY($1)
	`, pq.Array(ids), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("release items: %w", err)
	}
	return nil
}

func (s *PostgresStore) Transfer(ctx context.Context, ids []string, newOwnerID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE items SET status = 'traded', owner_id = $2, updated_at = $3 WHERE id = ANY($1)
	`, pq.Array(ids), newOwnerID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("transfer items: %w", err)
	}
	return nil
}

func collectItems(rows *sql.Rows) ([]*Item, error) {
	var result []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
