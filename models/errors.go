package models

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services, store implementations and handlers.
// Handlers translate these into HTTP status codes with errors.Is/errors.As.
var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicateInvite  = errors.New("User already invited")
	ErrDuplicateItem    = errors.New("Item is already on the list")
	ErrInvalidOperation = errors.New("Invalid operation")
	ErrAuth             = errors.New("invalid or missing credentials")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries one entry per rejected field so the API can return
// a structured error array instead of a single opaque message.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		return fmt.Sprintf("%s %s", e.Fields[0].Field, e.Fields[0].Message)
	}
	return fmt.Sprintf("validation failed on %d fields", len(e.Fields))
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// StorageError wraps a failure from the persistence layer with the operation
// that produced it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
