// internal/interfaces/http/handlers/errors.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/domain/wishlist"
)

// respondError maps domain sentinel errors onto HTTP status codes so
// every handler reports failures the same way.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, wishlist.ErrItemNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrPaymentNotFound),
		errors.Is(err, user.ErrNotFound):
		status = http.StatusNotFound

	case errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, user.ErrAccountDisabled):
		status = http.StatusUnauthorized

	case errors.Is(err, user.ErrEmailExists),
		errors.Is(err, order.ErrDuplicatePayment),
		errors.Is(err, product.ErrDuplicateReview):
		status = http.StatusConflict

	// A disallowed status change is a validation failure on the request,
	// not a resource conflict
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrInsufficientStock),
		errors.Is(err, order.ErrInsufficientFunds),
		errors.Is(err, order.ErrInvalidMethod),
		errors.Is(err, product.ErrInvalidCategory),
		errors.Is(err, product.ErrInvalidSeason),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, product.ErrInvalidStock),
		errors.Is(err, product.ErrInvalidRating),
		errors.Is(err, user.ErrInvalidAmount):
		status = http.StatusBadRequest
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		// Internal details stay in the logs
		message = "Internal server error"
	}

	c.JSON(status, gin.H{
		"error": message,
	})
}

// respondBindError reports a malformed request body or parameter
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"details": err.Error(),
	})
}

// parseID parses a numeric path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
		})
		return 0, false
	}
	return uint(id), true
}

// parseDecimal parses a monetary string into an exact decimal
func parseDecimal(value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal value %q", value)
	}
	return d, nil
}
