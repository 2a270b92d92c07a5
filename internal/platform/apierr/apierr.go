package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status int
	Code   string
	Err    error
	// Retryable marks transient upstream failures the client may retry.
	Retryable bool
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Validation(code, msg string) *Error {
	return New(http.StatusBadRequest, code, errors.New(msg))
}

func Unauthorized(msg string) *Error {
	return New(http.StatusUnauthorized, "unauthorized", errors.New(msg))
}

func NotFound(code, msg string) *Error {
	return New(http.StatusNotFound, code, errors.New(msg))
}

// Ownership deliberately reports 404 so callers cannot probe for
// resources they do not own.
func Ownership(code string) *Error {
	return New(http.StatusNotFound, code, errors.New("not found"))
}

func Conflict(code, msg string) *Error {
	return New(http.StatusConflict, code, errors.New(msg))
}

func RevisionLimit(msg string) *Error {
	return New(http.StatusBadRequest, "revision_limit", errors.New(msg))
}

func Unprocessable(code string, err error) *Error {
	return New(http.StatusUnprocessableEntity, code, err)
}

func Upstream(code string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: code, Err: err, Retryable: true}
}

func Internal(code string, err error) *Error {
	return New(http.StatusInternalServerError, code, err)
}

// StatusOf returns the HTTP status carried by err, or 500.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// CodeOf returns the code carried by err, or "".
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
