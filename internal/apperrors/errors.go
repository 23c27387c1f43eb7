package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error so handlers can map it to a response
// without string matching.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindBadRequest
	KindInvalidTransition
	KindConflict
	KindAlreadyExists
	KindConcurrentModification
	KindInsufficientStock
	KindCapacityExceeded
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

func BadRequest(format string, args ...interface{}) *Error {
	return newError(KindBadRequest, format, args...)
}

func InvalidTransition(format string, args ...interface{}) *Error {
	return newError(KindInvalidTransition, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return newError(KindConflict, format, args...)
}

func AlreadyExists(format string, args ...interface{}) *Error {
	return newError(KindAlreadyExists, format, args...)
}

func ConcurrentModification(format string, args ...interface{}) *Error {
	return newError(KindConcurrentModification, format, args...)
}

func InsufficientStock(format string, args ...interface{}) *Error {
	return newError(KindInsufficientStock, format, args...)
}

func CapacityExceeded(format string, args ...interface{}) *Error {
	return newError(KindCapacityExceeded, format, args...)
}

// Wrap attaches an underlying cause to a classified error.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the classification of err, or KindUnknown for
// unclassified errors (driver failures, context cancellation, ...).
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
