// Package admin provides admin-only endpoints for moderation and
// adjudication: the item approval queue, escrow refund confirmations,
// reward reviews, and dispute resolution.
package admin

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kripa621/swapit-io/internal/items"
	"github.com/Kripa621/swapit-io/internal/messages"
	"github.com/Kripa621/swapit-io/internal/trades"
)

// ItemModeration abstracts item moderation for admin handlers.
type ItemModeration interface {
	ListPendingApproval(ctx context.Context) ([]*items.Item, error)
	Review(ctx context.Context, id, decision string) (*items.Item, error)
}

// TradeAdjudication abstracts the trade adjudication queues.
type TradeAdjudication interface {
	ListPendingRefunds(ctx context.Context) ([]*trades.Trade, error)
	ConfirmRefund(ctx context.Context, id string) (*trades.Trade, error)
	ListPendingCreditReview(ctx context.Context) ([]*trades.Trade, error)
	ApproveCredits(ctx context.Context, id string) (*trades.Trade, error)
	ListDisputed(ctx context.Context) ([]*trades.Trade, error)
	ResolveDispute(ctx context.Context, id string) (*trades.Trade, error)
}

// ChatTranscripts abstracts dispute chat-log access.
type ChatTranscripts interface {
	Transcript(ctx context.Context, tradeID string) ([]*messages.Message, error)
}

// Handler provides admin HTTP endpoints.
type Handler struct {
	items       ItemModeration
	trades      TradeAdjudication
	transcripts ChatTranscripts
}

// NewHandler creates a new admin handler.
func NewHandler() *Handler {
	return &Handler{}
}

// WithItemModeration sets the item moderation service.
func (h *Handler) WithItemModeration(svc ItemModeration) *Handler {
	h.items = svc
	return h
}

// WithTradeAdjudication sets the trade adjudication service.
func (h *Handler) WithTradeAdjudication(svc TradeAdjudication) *Handler {
	h.trades = svc
	return h
}

// WithChatTranscripts sets the transcript reader for dispute logs.
func (h *Handler) WithChatTranscripts(svc ChatTranscripts) *Handler {
	h.transcripts = svc
	return h
}

// RegisterRoutes sets up admin routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/admin/items/pending", h.listPendingItems)
	r.PUT("/admin/items/:id/review", h.reviewItem)
	r.GET("/admin/refunds/pending", h.listPendingRefunds)
	r.PUT("/admin/refunds/:tradeId/confirm", h.confirmRefund)
	r.GET("/admin/credits/pending", h.listPendingCredits)
	r.PUT("/admin/credits/:tradeId/approve", h.approveCredits)
	r.GET("/admin/disputes", h.listDisputes)
	r.GET("/admin/disputes/:tradeId/logs", h.disputeLogs)
	r.PUT("/admin/disputes/:tradeId/resolve", h.resolveDispute)
}

func (h *Handler) listPendingItems(c *gin.Context) {
	if h.items == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "item moderation not configured"})
		return
	}

	pending, err := h.items.ListPendingApproval(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list pending items", "message": err.Error()})
		return
	}
	if pending == nil {
		pending = []*items.Item{}
	}

	c.JSON(http.StatusOK, gin.H{"items": pending, "count": len(pending)})
}

type reviewRequest struct {
	Decision string `json:"decision"`
}

func (h *Handler) reviewItem(c *gin.Context) {
	if h.items == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "item moderation not configured"})
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "Invalid JSON body"})
		return
	}

	item, err := h.items.Review(c.Request.Context(), c.Param("id"), req.Decision)
	if err != nil {
		switch {
		case errors.Is(err, items.ErrItemNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": err.Error()})
		case errors.Is(err, items.ErrInvalidDecision):
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "Review failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

func (h *Handler) listPendingRefunds(c *gin.Context) {
	if h.trades == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "trade adjudication not configured"})
		return
	}

	queue, err := h.trades.ListPendingRefunds(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list pending refunds", "message": err.Error()})
		return
	}
	if queue == nil {
		queue = []*trades.Trade{}
	}

	c.JSON(http.StatusOK, gin.H{"trades": queue, "count": len(queue)})
}

func (h *Handler) confirmRefund(c *gin.Context) {
	if h.trades == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "trade adjudication not configured"})
		return
	}

	trade, err := h.trades.ConfirmRefund(c.Request.Context(), c.Param("tradeId"))
	if err != nil {
		respondAdjudicationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trade": trade})
}

func (h *Handler) listPendingCredits(c *gin.Context) {
	if h.trades == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "trade adjudication not configured"})
		return
	}

	queue, err := h.trades.ListPendingCreditReview(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list credit reviews", "message": err.Error()})
		return
	}
	if queue == nil {
		queue = []*trades.Trade{}
	}

	c.JSON(http.StatusOK, gin.H{"trades": queue, "count": len(queue)})
}

func (h *Handler) approveCredits(c *gin.Context) {
	if h.trades == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "trade adjudication not configured"})
		return
	}

	trade, err := h.trades.ApproveCredits(c.Request.Context(), c.Param("tradeId"))
	if err != nil {
		respondAdjudicationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trade": trade})
}

func (h *Handler) listDisputes(c *gin.Context) {
	if h.trades == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "trade adjudication not configured"})
		return
	}

	open, err := h.trades.ListDisputed(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list disputes", "message": err.Error()})
		return
	}
	if open == nil {
		open = []*trades.Trade{}
	}

	c.JSON(http.StatusOK, gin.H{"trades": open, "count": len(open)})
}

func (h *Handler) disputeLogs(c *gin.Context) {
	if h.transcripts == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "chat transcripts not configured"})
		return
	}

	log, err := h.transcripts.Transcript(c.Request.Context(), c.Param("tradeId"))
	if err != nil {
		respondAdjudicationError(c, err)
		return
	}
	if log == nil {
		log = []*messages.Message{}
	}

	c.JSON(http.StatusOK, gin.H{"messages": log, "count": len(log)})
}

func (h *Handler) resolveDispute(c *gin.Context) {
	if h.trades == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "trade adjudication not configured"})
		return
	}

	trade, err := h.trades.ResolveDispute(c.Request.Context(), c.Param("tradeId"))
	if err != nil {
		respondAdjudicationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trade": trade})
}

func respondAdjudicationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, trades.ErrTradeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": err.Error()})
	case errors.Is(err, trades.ErrInvalidTransition),
		errors.Is(err, trades.ErrNoEscrowToRefund),
		errors.Is(err, trades.ErrCreditsNotInReview):
		c.JSON(http.StatusConflict, gin.H{"error": "precondition_failed", "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "Adjudication failed"})
	}
}
