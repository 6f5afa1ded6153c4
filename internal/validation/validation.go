// Package validation provides input validation helpers for the SwapIt API.
package validation

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// MaxRequestSize is the maximum request body size (1MB)
const MaxRequestSize = 1 << 20 // 1MB

// MaxStringLength is the maximum length for free-text fields
const MaxStringLength = 10000

// idRegex validates prefixed entity IDs (e.g. itm_a1b2..., trd_c3d4...)
var idRegex = regexp.MustCompile(`^[a-z]{2,8}_[a-f0-9]{24}$`)

// usernameRegex validates usernames: letters, digits, underscores, 3-30 chars
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

// RequestSizeMiddleware limits request body size
func RequestSizeMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// IsValidID checks if a string is a well-formed entity ID
func IsValidID(id string) bool {
	return idRegex.MatchString(id)
}

// IsValidUsername checks if a string is a well-formed username
func IsValidUsername(s string) bool {
	return usernameRegex.MatchString(s)
}

// SanitizeString removes dangerous characters and limits length
func SanitizeString(s string, maxLen int) string {
	s = strings.TrimSpace(s)

	if len(s) > maxLen {
		s = s[:maxLen]
	}

	// Remove null bytes
	s = strings.ReplaceAll(s, "\x00", "")

	return s
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return e[0].Field + ": " + e[0].Message
}

// Validate validates a request and returns errors
func Validate(validators ...func() *ValidationError) ValidationErrors {
	var errors ValidationErrors
	for _, v := range validators {
		if err := v(); err != nil {
			errors = append(errors, *err)
		}
	}
	return errors
}

// Required checks if a field is non-empty
func Required(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if strings.TrimSpace(value) == "" {
			return &ValidationError{Field: field, Message: "is required"}
		}
		return nil
	}
}

// PositivePrice checks that a declared price is a positive integer
func PositivePrice(field string, value int64) func() *ValidationError {
	return func() *ValidationError {
		if value <= 0 {
			return &ValidationError{Field: field, Message: "must be a positive integer"}
		}
		return nil
	}
}

// MaxLength checks if a field exceeds max length
func MaxLength(field, value string, max int) func() *ValidationError {
	return func() *ValidationError {
		if len(value) > max {
			return &ValidationError{Field: field, Message: "exceeds maximum length"}
		}
		return nil
	}
}

// NonEmptyIDList checks that a list of entity IDs is non-empty and well-formed
func NonEmptyIDList(field string, ids []string) func() *ValidationError {
	return func() *ValidationError {
		if len(ids) == 0 {
			return &ValidationError{Field: field, Message: "must contain at least one item"}
		}
		for _, id := range ids {
			if !IsValidID(id) {
				return &ValidationError{Field: field, Message: "contains a malformed item id"}
			}
		}
		return nil
	}
}
