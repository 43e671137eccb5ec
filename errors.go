package pagesort

import (
	"errors"
	"fmt"
)

// Error represents a pagesort error with an error code
type Error struct {
	Code    ErrorCode
	Message string
	Err     error // wrapped error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pagesort: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("pagesort: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode classifies sorter failures
type ErrorCode int

const (
	// Success indicates the operation completed successfully
	Success ErrorCode = 0

	// ErrInvalid indicates a bad argument or misuse of the Sorter
	ErrInvalid ErrorCode = -1

	// ErrCorrupted indicates a page whose record count exceeds capacity
	ErrCorrupted ErrorCode = -2

	// ErrIO indicates a failed file operation (wraps the OS error)
	ErrIO ErrorCode = -3

	// ErrBusy indicates the scratch directory is locked by another sorter
	ErrBusy ErrorCode = -4
)

// Error descriptions
var errorMessages = map[ErrorCode]string{
	Success:      "success",
	ErrInvalid:   "invalid argument or sorter state",
	ErrCorrupted: "page record count exceeds capacity",
	ErrIO:        "file operation failed",
	ErrBusy:      "scratch directory locked by another sorter",
}

// NewError creates a new Error with the given code
func NewError(code ErrorCode) *Error {
	msg, ok := errorMessages[code]
	if !ok {
		msg = fmt.Sprintf("unknown error code %d", code)
	}
	return &Error{Code: code, Message: msg}
}

// WrapError creates a new Error wrapping another error
func WrapError(code ErrorCode, err error) *Error {
	e := NewError(code)
	e.Err = err
	return e
}

// Code returns the error code from an error, or ErrIO if not a pagesort error
func Code(err error) ErrorCode {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrIO
}

// IsCorrupted returns true if the error indicates a corrupted page
func IsCorrupted(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == ErrCorrupted
	}
	return false
}

// IsBusy returns true if the error indicates a locked scratch directory
func IsBusy(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == ErrBusy
	}
	return false
}
