package valuation

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Handlers provides the HTTP surface for price estimation.
type Handlers struct{}

// NewHandlers creates valuation handlers.
func NewHandlers() *Handlers {
	return &Handlers{}
}

// RegisterRoutes registers the public valuation route.
func (h *Handlers) RegisterRoutes(r gin.IRouter) {
	r.GET("/valuation/estimate", h.estimate)
}

func (h *Handlers) estimate(c *gin.Context) {
	price, err := strconv.ParseInt(c.Query("price"), 10, 64)
	if err != nil || price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": "price must be a positive integer",
		})
		return
	}

	condition := c.Query("condition")
	category := c.Query("category")

	c.JSON(http.StatusOK, gin.H{
		"estimate":  Estimate(price, condition, category),
		"condition": condition,
		"category":  category,
	})
}
