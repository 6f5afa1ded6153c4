package ledger

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Kripa621/swapit-io/internal/auth"
)

// Handlers provides HTTP handlers for balance and history reads.
type Handlers struct {
	service *Service
}

// NewHandlers creates ledger handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers authenticated ledger routes.
func (h *Handlers) RegisterRoutes(r gin.IRouter) {
	r.GET("/users/me/balance", h.balance)
	r.GET("/users/me/ledger", h.history)
}

func (h *Handlers) balance(c *gin.Context) {
	userID := auth.UserID(c)

	balance, err := h.service.Balance(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to read balance",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

func (h *Handlers) history(c *gin.Context) {
	userID := auth.UserID(c)

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	entries, err := h.service.History(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to read ledger history",
		})
		return
	}
	if entries == nil {
		entries = []*Entry{}
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
