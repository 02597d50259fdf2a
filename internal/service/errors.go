package service

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Kind classifies service errors for callers.
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindConflict
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	}
	return "internal"
}

// HTTPStatus maps the kind onto a response code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// Error is returned by every ReservationService operation that fails.
// Message is safe to show to API callers; Err keeps the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error

	// Conflicts lists the reservations that blocked a create.
	Conflicts []model.Reservation
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err, or KindInternal for errors that did not
// originate in this package.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func badRequest(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func internal(err error, format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...), Err: err}
}
