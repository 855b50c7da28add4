package server

import (
	"errors"
	"fmt"
)

type ErrorCode uint

const (
	ErrUnknown ErrorCode = iota
	ErrInternalServerError
	ErrNotFound
	ErrBadParamInput
	ErrConflict
)

// Error wraps an error with a user facing message and an ErrorCode.
type Error struct {
	orig error
	msg  string
	code ErrorCode
}

func WrapErrorf(orig error, code ErrorCode, format string, a ...interface{}) error {
	return &Error{
		code: code,
		orig: orig,
		msg:  fmt.Sprintf(format, a...),
	}
}

func NewErrorf(code ErrorCode, format string, a ...interface{}) error {
	return WrapErrorf(nil, code, format, a...)
}

func (e *Error) Error() string {
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.orig
}

func (e *Error) Code() ErrorCode {
	return e.code
}

// Message returns the message without the wrapped error, safe to show to clients.
func (e *Error) Message() string {
	return e.msg
}

// CodeOf returns the code of the outermost *Error in err's chain, ErrUnknown if there is none.
func CodeOf(err error) ErrorCode {
	var ierr *Error
	if !errors.As(err, &ierr) {
		return ErrUnknown
	}
	return ierr.Code()
}
