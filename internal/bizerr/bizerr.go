// Package bizerr defines the business error returned to API clients.
package bizerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a business error category. Base codes share their value
// with the matching HTTP status.
type Code int

const (
	CodeSystemError  Code = 500
	CodeParamError   Code = 400
	CodeUnauthorized Code = 401
	CodeForbidden    Code = 403
	CodeNotFound     Code = 404
)

var defaultMessages = map[Code]string{
	CodeSystemError:  "system error",
	CodeParamError:   "invalid parameter",
	CodeUnauthorized: "unauthorized",
	CodeForbidden:    "access forbidden",
	CodeNotFound:     "resource not found",
}

// Message returns the default message of the code
func (c Code) Message() string {
	if msg, ok := defaultMessages[c]; ok {
		return msg
	}
	return defaultMessages[CodeSystemError]
}

// HTTPStatus maps the code to an HTTP status; unknown codes map to 500
func (c Code) HTTPStatus() int {
	if c >= 400 && c < 600 && http.StatusText(int(c)) != "" {
		return int(c)
	}
	return http.StatusInternalServerError
}

// BizError is an error meant to be shown to the client
type BizError struct {
	Code    Code
	Message string
	Data    any
	Err     error
}

// Error implements the error interface
func (e *BizError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *BizError) Unwrap() error {
	return e.Err
}

// Is matches any BizError with the same code
func (e *BizError) Is(target error) bool {
	t, ok := target.(*BizError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithData returns a copy of e carrying data
func (e *BizError) WithData(data any) *BizError {
	cp := *e
	cp.Data = data
	return &cp
}

// New creates a BizError with the default message of code
func New(code Code) *BizError {
	return &BizError{Code: code, Message: code.Message()}
}

// Newf creates a BizError with a formatted message
func Newf(code Code, format string, args ...any) *BizError {
	return &BizError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a BizError caused by err
func Wrap(code Code, message string, err error) *BizError {
	if message == "" {
		message = code.Message()
	}
	return &BizError{Code: code, Message: message, Err: err}
}

var (
	ErrSystem       = New(CodeSystemError)
	ErrParam        = New(CodeParamError)
	ErrUnauthorized = New(CodeUnauthorized)
	ErrForbidden    = New(CodeForbidden)
	ErrNotFound     = New(CodeNotFound)
)

// As extracts the BizError from err's chain
func As(err error) (*BizError, bool) {
	var bizErr *BizError
	if errors.As(err, &bizErr) {
		return bizErr, true
	}
	return nil, false
}

// CodeOf returns the code of err, CodeSystemError when err is not a BizError
func CodeOf(err error) Code {
	if bizErr, ok := As(err); ok {
		return bizErr.Code
	}
	return CodeSystemError
}
