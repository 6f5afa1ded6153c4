// Package items manages marketplace item listings and their availability.
//
// Items go through two independent gates: moderation (pending -> approved or
// rejected) and trade status (available -> in_trade -> traded). Only items
// that are both approved and available appear in the feed or can enter a
// trade. Reservation is all-or-nothing so two trades can never hold the
// same item.
package items

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Kripa621/swapit-io/internal/idgen"
	"github.com/Kripa621/swapit-io/internal/logging"
	"github.com/Kripa621/swapit-io/internal/pagination"
)

// Errors
var (
	ErrItemNotFound    = errors.New("item not found")
	ErrItemUnavailable = errors.New("item is not available for trade")
	ErrNotOwner        = errors.New("not the owner of this item")
	ErrInvalidDecision = errors.New("review decision must be approved or rejected")
)

// Approval statuses
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// Trade statuses
const (
	StatusAvailable = "available"
	StatusInTrade   = "in_trade"
	StatusTraded    = "traded"
)

// Item is a marketplace listing.
type Item struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"ownerId"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	Condition      string    `json:"condition"`
	ManualPrice    int64     `json:"manualPrice"` // Owner-declared value, whole credits
	ReceiptImage   string    `json:"receiptImage"`
	Images         []string  `json:"images"`
	ApprovalStatus string    `json:"approvalStatus"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Tradeable reports whether the item can enter a trade right now.
func (i *Item) Tradeable() bool {
	return i.ApprovalStatus == ApprovalApproved && i.Status == StatusAvailable
}

// FeedQuery filters the public item feed.
type FeedQuery struct {
	Category     string
	Search       string
	ExcludeOwner string
	Cursor       *pagination.Cursor
	Limit        int
}

// Store persists items.
type Store interface {
	Create(ctx context.Context, item *Item) error
	Get(ctx context.Context, id string) (*Item, error)
	GetMany(ctx context.Context, ids []string) ([]*Item, error)
	Update(ctx context.Context, item *Item) error
	ListByOwner(ctx context.Context, ownerID string) ([]*Item, error)
	// Feed returns approved+available items matching the query, newest first,
	// up to limit+1 rows so the caller can detect another page.
	Feed(ctx context.Context, q FeedQuery) ([]*Item, error)
	ListPendingApproval(ctx context.Context) ([]*Item, error)
	// Reserve flips every listed item from available to in_trade, or fails
	// without changing anything if any item is not tradeable.
	Reserve(ctx context.Context, ids []string) error
	// Release flips items back to available.
	Release(ctx context.Context, ids []string) error
	// Transfer marks items traded and reassigns ownership.
	Transfer(ctx context.Context, ids []string, newOwnerID string) error
}

// CreateInput carries the owner-supplied listing fields.
type CreateInput struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	Condition    string   `json:"condition"`
	ManualPrice  int64    `json:"manualPrice"`
	ReceiptImage string   `json:"receiptImage"`
	Images       []string `json:"images"`
}

// Service provides item operations.
type Service struct {
	store Store
}

// NewService creates an item service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create lists a new item. It starts pending moderation and stays out of the
// feed until an admin approves it. A receipt image is required as proof of
// the declared price.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*Item, error) {
	now := time.Now().UTC()
	item := &Item{
		ID:             idgen.WithPrefix("itm_"),
		OwnerID:        ownerID,
		Title:          in.Title,
		Description:    in.Description,
		Category:       in.Category,
		Condition:      in.Condition,
		ManualPrice:    in.ManualPrice,
		ReceiptImage:   in.ReceiptImage,
		Images:         in.Images,
		ApprovalStatus: ApprovalPending,
		Status:         StatusAvailable,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	logging.L(ctx).Info("item listed", "item_id", item.ID, "owner_id", ownerID, "price", item.ManualPrice)
	return item, nil
}

// Get returns a single item.
func (s *Service) Get(ctx context.Context, id string) (*Item, error) {
	return s.store.Get(ctx, id)
}

// GetMany returns the items for the given IDs. Fails with ErrItemNotFound
// if any ID is missing.
func (s *Service) GetMany(ctx context.Context, ids []string) ([]*Item, error) {
	items, err := s.store.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(items) != len(ids) {
		return nil, ErrItemNotFound
	}
	return items, nil
}

// ListMine returns all items owned by a user, regardless of status.
func (s *Service) ListMine(ctx context.Context, ownerID string) ([]*Item, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

// Feed returns the public browse page: approved and available items only,
// excluding the viewer's own listings, with cursor pagination.
func (s *Service) Feed(ctx context.Context, q FeedQuery) ([]*Item, string, bool, error) {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}

	items, err := s.store.Feed(ctx, q)
	if err != nil {
		return nil, "", false, fmt.Errorf("query feed: %w", err)
	}

	page, next, hasMore := pagination.ComputePage(items, q.Limit, func(i *Item) (time.Time, string) {
		return i.CreatedAt, i.ID
	})
	return page, next, hasMore, nil
}

// Reserve puts all listed items into in_trade, all-or-nothing.
func (s *Service) Reserve(ctx context.Context, ids []string) error {
	return s.store.Reserve(ctx, ids)
}

// Release returns reserved items to available.
func (s *Service) Release(ctx context.Context, ids []string) error {
	return s.store.Release(ctx, ids)
}

// Transfer marks items traded and hands them to their new owner.
func (s *Service) Transfer(ctx context.Context, ids []string, newOwnerID string) error {
	return s.store.Transfer(ctx, ids, newOwnerID)
}

// ListPendingApproval returns items awaiting moderation.
func (s *Service) ListPendingApproval(ctx context.Context) ([]*Item, error) {
	return s.store.ListPendingApproval(ctx)
}

// Review records a moderation decision. Approval makes the item visible and
// tradeable; rejection keeps it off the marketplace.
func (s *Service) Review(ctx context.Context, id, decision string) (*Item, error) {
	if decision != ApprovalApproved && decision != ApprovalRejected {
		return nil, ErrInvalidDecision
	}

	item, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	item.ApprovalStatus = decision
	if decision == ApprovalApproved {
		item.Status = StatusAvailable
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	logging.L(ctx).Info("item reviewed", "item_id", id, "decision", decision)
	return item, nil
}

// TotalValue sums the declared prices of a set of items.
func TotalValue(items []*Item) int64 {
	var total int64
	for _, i := range items {
		total += i.ManualPrice
	}
	return total
}

// MaxValue returns the highest declared price in a set of items.
func MaxValue(items []*Item) int64 {
	var max int64
	for _, i := range items {
		if i.ManualPrice > max {
			max = i.ManualPrice
		}
	}
	return max
}
