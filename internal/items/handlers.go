package items

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Kripa621/swapit-io/internal/auth"
	"github.com/Kripa621/swapit-io/internal/pagination"
	"github.com/Kripa621/swapit-io/internal/validation"
)

// Handlers provides HTTP handlers for item listings.
type Handlers struct {
	service *Service
}

// NewHandlers creates item handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers the public item routes.
func (h *Handlers) RegisterRoutes(r gin.IRouter) {
	r.GET("/items", h.feed)
	r.GET("/items/:id", h.get)
}

// RegisterProtectedRoutes registers routes that require authentication.
func (h *Handlers) RegisterProtectedRoutes(r gin.IRouter) {
	r.POST("/items", h.create)
	r.GET("/items/mine/list", h.listMine)
}

func (h *Handlers) create(c *gin.Context) {
	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON body",
		})
		return
	}

	if errs := validation.Validate(
		validation.Required("title", in.Title),
		validation.Required("category", in.Category),
		validation.Required("condition", in.Condition),
		validation.Required("receiptImage", in.ReceiptImage),
		validation.PositivePrice("manualPrice", in.ManualPrice),
		validation.MaxLength("title", in.Title, 200),
		validation.MaxLength("description", in.Description, validation.MaxStringLength),
	); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": errs.Error(),
			"details": errs,
		})
		return
	}

	item, err := h.service.Create(c.Request.Context(), auth.UserID(c), in)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to create item",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"item": item})
}

func (h *Handlers) feed(c *gin.Context) {
	cursor, err := pagination.Decode(c.Query("cursor"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_cursor",
			"message": "Malformed pagination cursor",
		})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	q := FeedQuery{
		Category:     c.Query("category"),
		Search:       validation.SanitizeString(c.Query("search"), 200),
		ExcludeOwner: auth.UserID(c), // empty for anonymous browsing
		Cursor:       cursor,
		Limit:        limit,
	}

	page, next, hasMore, err := h.service.Feed(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to load feed",
		})
		return
	}
	if page == nil {
		page = []*Item{}
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       page,
		"next_cursor": next,
		"has_more":    hasMore,
	})
}

func (h *Handlers) get(c *gin.Context) {
	id := c.Param("id")
	if !validation.IsValidID(id) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Malformed item id",
		})
		return
	}

	item, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Item not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to load item",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

func (h *Handlers) listMine(c *gin.Context) {
	result, err := h.service.ListMine(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to load items",
		})
		return
	}
	if result == nil {
		result = []*Item{}
	}

	c.JSON(http.StatusOK, gin.H{"items": result})
}
