// Package jsonio reads and writes the JSON bodies of the API.
package jsonio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"go.uber.org/zap"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 1 << 20

// Write encodes v with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the shape of every error response.
type errorBody struct {
	Detail string `json:"detail"`
}

// WriteError maps err to its status and writes {"detail": "..."}.
// Internal errors are logged with their cause; the client sees a generic
// message.
func WriteError(w http.ResponseWriter, log *zap.Logger, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError && log != nil {
		log.Error("request failed", zap.Error(err))
	}
	Write(w, status, errorBody{Detail: apperr.Detail(err)})
}

// Decode reads a JSON body into dst. Unknown fields, trailing data and
// oversized bodies are BadRequest.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperr.BadRequestf("request body is empty")
		case errors.As(err, &mbe):
			return apperr.BadRequestf("request body exceeds %d bytes", MaxBodyBytes)
		}
		return apperr.BadRequestf("invalid JSON body: %v", err)
	}
	if dec.More() {
		return apperr.BadRequestf("request body must contain a single JSON object")
	}
	return nil
}

// Message is a convenience body for operations that only confirm success.
func Message(format string, args ...any) map[string]string {
	return map[string]string{"detail": fmt.Sprintf(format, args...)}
}
