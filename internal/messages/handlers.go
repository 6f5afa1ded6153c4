package messages

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kripa621/swapit-io/internal/auth"
	"github.com/Kripa621/swapit-io/internal/trades"
	"github.com/Kripa621/swapit-io/internal/validation"
)

// Handlers provides HTTP handlers for trade chat.
type Handlers struct {
	service *Service
}

// NewHandlers creates message handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers authenticated chat routes.
func (h *Handlers) RegisterRoutes(r gin.IRouter) {
	r.POST("/messages", h.send)
	r.GET("/messages/:tradeId", h.list)
}

type sendRequest struct {
	TradeID string `json:"tradeId"`
	Text    string `json:"text"`
}

func (h *Handlers) send(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON body",
		})
		return
	}

	if errs := validation.Validate(
		validation.Required("tradeId", req.TradeID),
		validation.Required("text", req.Text),
		validation.MaxLength("text", req.Text, validation.MaxStringLength),
	); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": errs.Error(),
			"details": errs,
		})
		return
	}

	msg, err := h.service.Send(c.Request.Context(), req.TradeID, auth.UserID(c), req.Text)
	if err != nil {
		respondMessageError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

func (h *Handlers) list(c *gin.Context) {
	msgs, err := h.service.ListForTrade(c.Request.Context(), c.Param("tradeId"), auth.UserID(c))
	if err != nil {
		respondMessageError(c, err)
		return
	}
	if msgs == nil {
		msgs = []*Message{}
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func respondMessageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, trades.ErrTradeNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": err.Error(),
		})
	case errors.Is(err, trades.ErrNotParty):
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": err.Error(),
		})
	case errors.Is(err, ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Message operation failed",
		})
	}
}
