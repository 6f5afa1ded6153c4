package trades

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kripa621/swapit-io/internal/auth"
	"github.com/Kripa621/swapit-io/internal/items"
	"github.com/Kripa621/swapit-io/internal/validation"
)

// Handlers provides HTTP handlers for the trade lifecycle.
type Handlers struct {
	service *Service
}

// NewHandlers creates trade handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers authenticated trade routes.
func (h *Handlers) RegisterRoutes(r gin.IRouter) {
	r.POST("/trades", h.create)
	r.GET("/trades", h.list)
	r.GET("/trades/:id", h.get)
	r.PUT("/trades/:id/lock", h.lock)
	r.PUT("/trades/:id/accept", h.accept)
	r.PUT("/trades/:id/complete", h.complete)
	r.PUT("/trades/:id/reject", h.reject)
	r.PUT("/trades/:id/dispute", h.dispute)
}

type createRequest struct {
	ReceiverID     string   `json:"receiverId"`
	OfferedItems   []string `json:"offeredItems"`
	RequestedItems []string `json:"requestedItems"`
}

func (h *Handlers) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON body",
		})
		return
	}

	if errs := validation.Validate(
		validation.Required("receiverId", req.ReceiverID),
		validation.NonEmptyIDList("offeredItems", req.OfferedItems),
		validation.NonEmptyIDList("requestedItems", req.RequestedItems),
	); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": errs.Error(),
			"details": errs,
		})
		return
	}

	trade, err := h.service.Create(c.Request.Context(), auth.UserID(c), req.ReceiverID,
		req.OfferedItems, req.RequestedItems)
	if err != nil {
		respondTradeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"trade": trade})
}

func (h *Handlers) list(c *gin.Context) {
	result, err := h.service.ListForUser(c.Request.Context(), auth.UserID(c))
	if err != nil {
		respondTradeError(c, err)
		return
	}
	if result == nil {
		result = []*Trade{}
	}
	c.JSON(http.StatusOK, gin.H{"trades": result})
}

func (h *Handlers) get(c *gin.Context) {
	trade, err := h.service.Get(c.Request.Context(), c.Param("id"), auth.UserID(c))
	if err != nil {
		respondTradeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trade": trade})
}

func (h *Handlers) lock(c *gin.Context) {
	trade, link, err := h.service.LockTerms(c.Request.Context(), c.Param("id"), auth.UserID(c))
	if err != nil {
		respondTradeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"trade":       trade,
		"paymentLink": link,
	})
}

func (h *Handlers) accept(c *gin.Context) {
	trade, err := h.service.Accept(c.Request.Context(), c.Param("id"), auth.UserID(c))
	if err != nil {
		respondTradeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"trade":        trade,
		"escrowAmount": trade.EscrowAmount,
	})
}

func (h *Handlers) complete(c *gin.Context) {
	trade, err := h.service.Complete(c.Request.Context(), c.Param("id"), auth.UserID(c))
	if err != nil {
		respondTradeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trade": trade})
}

func (h *Handlers) reject(c *gin.Context) {
	trade, err := h.service.Reject(c.Request.Context(), c.Param("id"), auth.UserID(c))
	if err != nil {
		respondTradeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trade": trade})
}

func (h *Handlers) dispute(c *gin.Context) {
	trade, err := h.service.RaiseDispute(c.Request.Context(), c.Param("id"), auth.UserID(c))
	if err != nil {
		respondTradeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trade": trade})
}

// respondTradeError maps domain errors onto HTTP status codes.
func respondTradeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrTradeNotFound), errors.Is(err, items.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": err.Error(),
		})
	case errors.Is(err, ErrNotParty):
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": err.Error(),
		})
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrTermsNotLocked),
		errors.Is(err, items.ErrItemUnavailable),
		errors.Is(err, ErrNoEscrowToRefund), errors.Is(err, ErrCreditsNotInReview):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "precondition_failed",
			"message": err.Error(),
		})
	case errors.Is(err, ErrSelfTrade), errors.Is(err, ErrNotOfferedOwner),
		errors.Is(err, ErrNotRequestedOwner):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Trade operation failed",
		})
	}
}
