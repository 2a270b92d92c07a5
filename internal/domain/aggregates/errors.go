package aggregates

import (
	"errors"
	"strings"
)

// ErrorCode classifies why an aggregate write did not commit.
type ErrorCode string

const (
	CodeValidation         ErrorCode = "validation"
	CodeNotFound           ErrorCode = "not_found"
	CodeConflict           ErrorCode = "conflict"
	CodeInvariantViolation ErrorCode = "invariant_violation"
	CodePreconditionFailed ErrorCode = "precondition_failed"
	CodeLimitExceeded      ErrorCode = "limit_exceeded" // per-entity cap used up
	CodeRetryable          ErrorCode = "retryable"
	CodeInternal           ErrorCode = "internal"
)

// Concurrent reports whether the code means another writer got there first.
// Such failures are safe for the client to retry after re-reading.
func (c ErrorCode) Concurrent() bool {
	switch c {
	case CodeConflict, CodeRetryable, CodePreconditionFailed:
		return true
	}
	return false
}

// Error is returned by every aggregate write method.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	parts := make([]string, 0, 2)
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if len(parts) == 0 {
		return string(e.Code)
	}
	return strings.Join(parts, ": ") + " (" + string(e.Code) + ")"
}

func (e *Error) Unwrap() error { return e.Cause }

func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap tags err with code, keeping its text as the message.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

func asError(err error) (*Error, bool) {
	var aggErr *Error
	ok := errors.As(err, &aggErr)
	return aggErr, ok
}

func IsCode(err error, code ErrorCode) bool {
	aggErr, ok := asError(err)
	return ok && aggErr.Code == code
}

// CodeOf returns the code carried by err, or "".
func CodeOf(err error) ErrorCode {
	if aggErr, ok := asError(err); ok {
		return aggErr.Code
	}
	return ""
}

// MessageOf returns the bare message, without op or code decoration.
func MessageOf(err error) string {
	if aggErr, ok := asError(err); ok {
		return aggErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
