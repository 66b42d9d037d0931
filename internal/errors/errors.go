package errors

import (
	stderrors "errors"
	"fmt"
)

type ErrorType string

const (
	ErrorTypeNotFound           ErrorType = "NOT_FOUND"
	ErrorTypeCommitNotFound     ErrorType = "COMMIT_NOT_FOUND"
	ErrorTypeAlreadyInitialized ErrorType = "ALREADY_INITIALIZED"
	ErrorTypeIOFailure          ErrorType = "IO_FAILURE"
	ErrorTypeValidation         ErrorType = "VALIDATION"
)

// Sentinels for errors.Is. Matching is by type, not message.
var (
	ErrNotFound           = &Error{Type: ErrorTypeNotFound, Message: "not found"}
	ErrCommitNotFound     = &Error{Type: ErrorTypeCommitNotFound, Message: "commit not found"}
	ErrAlreadyInitialized = &Error{Type: ErrorTypeAlreadyInitialized, Message: "already initialized"}
	ErrIOFailure          = &Error{Type: ErrorTypeIOFailure, Message: "i/o failure"}
	ErrValidation         = &Error{Type: ErrorTypeValidation, Message: "validation failed"}
)

type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
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

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

func NotFound(message string) *Error {
	return &Error{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

func CommitNotFound(id string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeCommitNotFound,
		Message: fmt.Sprintf("commit not found: %s", id),
		Err:     cause,
	}
}

func AlreadyInitialized(path string) *Error {
	return &Error{
		Type:    ErrorTypeAlreadyInitialized,
		Message: fmt.Sprintf("repository already initialized in %s", path),
	}
}

func IOFailure(op string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeIOFailure,
		Message: op,
		Err:     cause,
	}
}

func ValidationError(message string) *Error {
	return &Error{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// IsType reports whether any error in err's chain is an *Error of type t.
func IsType(err error, t ErrorType) bool {
	var e *Error
	for err != nil {
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Type == t {
			return true
		}
		err = e.Err
	}
	return false
}
