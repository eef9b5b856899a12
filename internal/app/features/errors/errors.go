// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"go.uber.org/zap"
)

// Write renders err as {"detail": "..."} with its status. Server errors are
// logged with their cause and reach the client as a generic message.
func Write(w http.ResponseWriter, log *zap.Logger, err error) {
	jsonio.WriteError(w, log, err)
}

// NotFound is the router's fallback for unknown paths.
func NotFound(w http.ResponseWriter, r *http.Request) {
	jsonio.WriteError(w, nil, apperr.NotFoundf("Not Found"))
}

// MethodNotAllowed is the router's fallback for a known path with the
// wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	jsonio.Write(w, http.StatusMethodNotAllowed, jsonio.Message("Method Not Allowed"))
}

// Unauthorized writes a 401 for handlers reached without a caller.
func Unauthorized(w http.ResponseWriter) {
	jsonio.WriteError(w, nil, apperr.Unauthorizedf("Not authenticated"))
}
