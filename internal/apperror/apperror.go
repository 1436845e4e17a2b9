// Package apperror carries operational errors from handlers to the
// global error responder, tagged with the HTTP status they map to.
package apperror

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Error is the one error type the HTTP layer responds with. Status is
// "fail" for 4xx and "error" for everything else.
type Error struct {
	Message    string
	StatusCode int
	Status     string
	Stack      string
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func New(message string, statusCode int) *Error {
	status := "error"

	if statusCode >= 400 && statusCode < 500 {
		status = "fail"
	}

	return &Error{
		Message:    message,
		StatusCode: statusCode,
		Status:     status,
		Stack:      captureStack(),
	}
}

// Wrap keeps the underlying cause reachable via errors.Is/As while the
// response only exposes message and status.
func Wrap(cause error, message string, statusCode int) *Error {
	e := New(message, statusCode)
	e.cause = cause

	return e
}

func BadRequest(message string) *Error {
	return New(message, 400)
}

func Unauthorized(message string) *Error {
	return New(message, 401)
}

func Forbidden(message string) *Error {
	return New(message, 403)
}

func NotFound(message string) *Error {
	return New(message, 404)
}

func Internal(message string) *Error {
	return New(message, 500)
}

// NoDocument is the lookup-miss error every by-id operation shares.
func NoDocument(id string) *Error {
	return NotFound(fmt.Sprintf("No document for this id %s", id))
}

// captureStack trims the two frames belonging to this package so the
// dev-mode stack starts at the caller.
func captureStack() string {
	lines := strings.Split(string(debug.Stack()), "\n")

	if len(lines) > 7 {
		return lines[0] + "\n" + strings.Join(lines[7:], "\n")
	}

	return strings.Join(lines, "\n")
}
