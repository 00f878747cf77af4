// Package errors provides structured error types for nodecanvas.
//
// Errors carry a machine-readable [Code] so the CLI and the HTTP API can
// react to the category of a failure without string matching:
//   - INVALID_*: input validation failures
//   - *NOT_FOUND: unknown nodes, anchors or stored diagrams
//   - STORAGE / TRANSACTION: persistence boundary failures
//   - INTERNAL / UNSUPPORTED: everything else
//
// Lookups inside the canvas model never return errors; they report misses
// with a boolean. Coded errors appear at the edges: configuration, storage
// and request handling.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidNode, "node id %q is empty", id)
//	if errors.Is(err, errors.ErrCodeInvalidNode) {
//	    // handle validation error
//	}
//
//	err := errors.Wrap(errors.ErrCodeStorage, origErr, "save diagram %s", name)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidNode   Code = "INVALID_NODE"
	ErrCodeInvalidAnchor Code = "INVALID_ANCHOR"
	ErrCodeInvalidName   Code = "INVALID_NAME"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeNodeNotFound   Code = "NODE_NOT_FOUND"
	ErrCodeAnchorNotFound Code = "ANCHOR_NOT_FOUND"

	// Persistence errors
	ErrCodeStorage     Code = "STORAGE"
	ErrCodeTransaction Code = "TRANSACTION"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Category groups codes that callers handle alike.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryInvalid
	CategoryNotFound
	CategoryStorage
	CategoryInternal
)

var categories = map[Code]Category{
	ErrCodeInvalidInput:   CategoryInvalid,
	ErrCodeInvalidNode:    CategoryInvalid,
	ErrCodeInvalidAnchor:  CategoryInvalid,
	ErrCodeInvalidName:    CategoryInvalid,
	ErrCodeInvalidConfig:  CategoryInvalid,
	ErrCodeNotFound:       CategoryNotFound,
	ErrCodeNodeNotFound:   CategoryNotFound,
	ErrCodeAnchorNotFound: CategoryNotFound,
	ErrCodeStorage:        CategoryStorage,
	ErrCodeTransaction:    CategoryStorage,
	ErrCodeInternal:       CategoryInternal,
	ErrCodeUnsupported:    CategoryInternal,
}

// Category returns the category of c. Codes outside this package are
// CategoryUnknown.
func (c Code) Category() Category { return categories[c] }

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns err's message without the code prefix or cause.
// Uncoded errors are returned as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsNotFound reports whether err carries one of the not-found codes.
func IsNotFound(err error) bool { return GetCode(err).Category() == CategoryNotFound }

// IsInvalid reports whether err carries one of the validation codes.
func IsInvalid(err error) bool { return GetCode(err).Category() == CategoryInvalid }
