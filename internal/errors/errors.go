package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrQueryTooLong is returned when a query has more tokens than the service accepts
	ErrQueryTooLong = errors.New("query too long")

	// ErrEmptyBatch is returned when a batch request carries no queries
	ErrEmptyBatch = errors.New("empty batch")
)

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// QueryTooLongError reports a query whose normalized token count exceeds the limit
type QueryTooLongError struct {
	Tokens int
	Limit  int
}

func (e *QueryTooLongError) Error() string {
	return fmt.Sprintf("query has %d tokens after normalization, limit is %d", e.Tokens, e.Limit)
}

func (e *QueryTooLongError) Is(target error) bool {
	return target == ErrQueryTooLong
}

// NewQueryTooLongError creates a new QueryTooLongError
func NewQueryTooLongError(tokens, limit int) *QueryTooLongError {
	return &QueryTooLongError{Tokens: tokens, Limit: limit}
}

// BatchQueryError wraps the failure of one named query inside a batch
type BatchQueryError struct {
	Name string
	Err  error
}

func (e *BatchQueryError) Error() string {
	return fmt.Sprintf("error executing query '%s': %v", e.Name, e.Err)
}

func (e *BatchQueryError) Unwrap() error {
	return e.Err
}

// NewBatchQueryError creates a new BatchQueryError
func NewBatchQueryError(name string, err error) *BatchQueryError {
	return &BatchQueryError{Name: name, Err: err}
}
