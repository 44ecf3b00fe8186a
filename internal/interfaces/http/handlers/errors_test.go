// internal/interfaces/http/handlers/errors_test.go
package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"product not found", product.ErrNotFound, http.StatusNotFound},
		{"order not found", order.ErrOrderNotFound, http.StatusNotFound},
		{"invalid credentials", user.ErrInvalidCredentials, http.StatusUnauthorized},
		{"duplicate payment", order.ErrDuplicatePayment, http.StatusConflict},
		{"email exists", user.ErrEmailExists, http.StatusConflict},
		{"invalid transition", order.ErrInvalidTransition, http.StatusBadRequest},
		{"insufficient stock", order.ErrInsufficientStock, http.StatusBadRequest},
		{"insufficient funds", order.ErrInsufficientFunds, http.StatusBadRequest},
		{"empty cart", order.ErrEmptyCart, http.StatusBadRequest},
		{"unmapped error", errors.New("database exploded"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			respondError(c, tc.err)
			if rec.Code != tc.want {
				t.Errorf("expected status %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestRespondErrorMasksInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	respondError(c, errors.New("pq: connection refused to 10.0.0.5"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.5") {
		t.Errorf("expected internal details masked, got %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Internal server error") {
		t.Errorf("expected generic message, got %s", rec.Body.String())
	}
}

func TestRespondErrorWrappedSentinel(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	// Services wrap sentinels with context; the mapping must still hold
	respondError(c, errors.Join(order.ErrInvalidTransition, errors.New("shipped to pending")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for wrapped sentinel, got %d", rec.Code)
	}
}
