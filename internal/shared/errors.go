package shared

import (
	"fmt"
	"strings"
)

// Error types carried in StructuredError.ErrorType.
const (
	ErrorTypeValidation       = "validation_error"
	ErrorTypeNotFound         = "not_found"
	ErrorTypeUnauthorized     = "unauthorized"
	ErrorTypeDivisionByZero   = "division_by_zero"
	ErrorTypeRateLimited      = "rate_limited"
	ErrorTypeMethodNotAllowed = "method_not_allowed"
	ErrorTypeInternal         = "internal_error"
)

// Violation is one field-level failure inside a ValidationError.
type Violation struct {
	Field      string `json:"field"`
	Location   string `json:"location"` // body | path
	Constraint string `json:"constraint"`
	Message    string `json:"message"`
	Value      any    `json:"value,omitempty"`
}

type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// AuthError never carries the supplied or configured key.
type AuthError struct {
	Missing bool
}

func (e *AuthError) Error() string {
	if e.Missing {
		return "missing API key"
	}
	return "invalid API key"
}

type DivisionByZeroError struct{}

func (e *DivisionByZeroError) Error() string {
	return "division by zero is not allowed"
}

type RateLimitError struct {
	Key string
}

func (e *RateLimitError) Error() string {
	return "rate limit exceeded for " + e.Key
}

// ConfigError is fatal: the server must not start serving when one is returned.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "config: " + e.Err.Error()
	}
	return "config: " + e.Field + ": " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error { return e.Err }
