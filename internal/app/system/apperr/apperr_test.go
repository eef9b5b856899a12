package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/dalemusser/quizmart/internal/app/system/apperr"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", apperr.NotFoundf("quiz %d", 1), http.StatusNotFound},
		{"conflict", apperr.Conflictf("dup"), http.StatusConflict},
		{"forbidden", apperr.Forbiddenf("no"), http.StatusForbidden},
		{"bad request", apperr.BadRequestf("empty cart"), http.StatusBadRequest},
		{"unauthorized", apperr.Unauthorizedf("token"), http.StatusUnauthorized},
		{"internal", apperr.Internalf(errors.New("boom"), "db"), http.StatusInternalServerError},
		{"plain error", errors.New("plain"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("ctx: %w", apperr.Forbiddenf("no")), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apperr.Status(tt.err); got != tt.want {
				t.Errorf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDetail_HidesInternalCause(t *testing.T) {
	err := apperr.Internalf(errors.New("connection refused"), "insert order")
	if got := apperr.Detail(err); got != "internal server error" {
		t.Errorf("Detail() = %q, want generic message", got)
	}
	if got := apperr.Detail(apperr.NotFoundf("Cart not found")); got != "Cart not found" {
		t.Errorf("Detail() = %q, want %q", got, "Cart not found")
	}
}

func TestIs_SentinelsSurviveWrapping(t *testing.T) {
	sentinel := apperr.BadRequestf("Cart is empty")
	wrapped := fmt.Errorf("checkout: %w", sentinel)
	if !errors.Is(wrapped, sentinel) {
		t.Error("errors.Is should match wrapped sentinel")
	}
	if errors.Is(wrapped, apperr.NotFoundf("Cart not found")) {
		t.Error("errors.Is should not match a different sentinel")
	}
	if !apperr.Is(wrapped, apperr.BadRequest) {
		t.Error("apperr.Is should report BadRequest")
	}
}
