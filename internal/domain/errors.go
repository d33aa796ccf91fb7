package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is a stable machine-readable classification carried by every
// error the service surfaces to callers.
type ErrorKind string

const (
	KindValidation       ErrorKind = "validation_error"
	KindUpload           ErrorKind = "upload_error"
	KindFetch            ErrorKind = "fetch_error"
	KindMalformedLocator ErrorKind = "malformed_locator_error"
	KindPersistence      ErrorKind = "persistence_error"
	KindInternal         ErrorKind = "internal_error"
)

// Error pairs an ErrorKind with a human-readable message and an optional
// wrapped cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func NewUploadError(msg string, cause error) *Error {
	return &Error{Kind: KindUpload, Message: msg, Err: cause}
}

func NewFetchError(msg string, cause error) *Error {
	return &Error{Kind: KindFetch, Message: msg, Err: cause}
}

func NewMalformedLocatorError(msg string) *Error {
	return &Error{Kind: KindMalformedLocator, Message: msg}
}

func NewPersistenceError(msg string, cause error) *Error {
	return &Error{Kind: KindPersistence, Message: msg, Err: cause}
}

// KindOf extracts the ErrorKind of err, walking wrapped causes. Errors
// outside the taxonomy report KindInternal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the human-readable message of err without the kind
// prefix, falling back to err.Error() for errors outside the taxonomy.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
