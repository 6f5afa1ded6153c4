package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kripa621/swapit-io/internal/validation"
)

// Handlers provides HTTP handlers for registration and account info.
type Handlers struct {
	manager *Manager
}

// NewHandlers creates auth handlers.
func NewHandlers(manager *Manager) *Handlers {
	return &Handlers{manager: manager}
}

// RegisterRoutes registers the public auth routes.
func (h *Handlers) RegisterRoutes(r gin.IRouter) {
	r.POST("/auth/register", h.register)
}

// RegisterProtectedRoutes registers routes that require authentication.
func (h *Handlers) RegisterProtectedRoutes(r gin.IRouter) {
	r.GET("/auth/me", h.me)
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (h *Handlers) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON body",
		})
		return
	}

	if errs := validation.Validate(
		validation.Required("username", req.Username),
		validation.Required("email", req.Email),
	); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": errs.Error(),
			"details": errs,
		})
		return
	}
	if !validation.IsValidUsername(req.Username) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": "username must be 3-30 characters (letters, digits, underscores)",
		})
		return
	}

	user, rawKey, err := h.manager.Register(c.Request.Context(), req.Username, req.Email)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "username_taken",
				"message": "That username is already registered.",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to register user",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":   user,
		"apiKey": rawKey, // Shown once, never stored in plain text
	})
}

func (h *Handlers) me(c *gin.Context) {
	user, ok := GetUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "API key required.",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
