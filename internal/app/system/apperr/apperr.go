// Package apperr defines the error kinds that services return and the HTTP
// status each kind maps to.
//
// Services return *Error values (or wrap them); handlers resolve the status
// with Status and the client-facing text with Detail. Errors that are not
// *Error are treated as Internal, and their cause is never shown to clients.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind int

const (
	Internal Kind = iota
	NotFound
	Conflict
	Forbidden
	BadRequest
	Unauthorized
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Forbidden:
		return "forbidden"
	case BadRequest:
		return "bad_request"
	case Unauthorized:
		return "unauthorized"
	}
	return "internal"
}

// Status returns the HTTP status code for k.
func (k Kind) Status() int {
	switch k {
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Forbidden:
		return http.StatusForbidden
	case BadRequest:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// Error is a classified failure with a human-readable detail.
type Error struct {
	Kind   Kind
	Detail string
	Err    error // optional cause
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return e.Kind.String() + ": " + e.Detail
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match two *Error values of the same kind and detail,
// so package-level sentinels built with these constructors compare equal
// after wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Detail == e.Detail
}

func newf(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Detail: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error     { return newf(NotFound, format, args...) }
func Conflictf(format string, args ...any) *Error     { return newf(Conflict, format, args...) }
func Forbiddenf(format string, args ...any) *Error    { return newf(Forbidden, format, args...) }
func BadRequestf(format string, args ...any) *Error   { return newf(BadRequest, format, args...) }
func Unauthorizedf(format string, args ...any) *Error { return newf(Unauthorized, format, args...) }

// Internalf wraps an unexpected backend failure. detail is logged but the
// client only sees a generic message.
func Internalf(err error, format string, args ...any) *Error {
	return &Error{Kind: Internal, Detail: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of err, or Internal if err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// Status returns the HTTP status code for err.
func Status(err error) int {
	return KindOf(err).Status()
}

// Detail returns the client-facing message for err.
func Detail(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Detail
	}
	return "internal server error"
}
