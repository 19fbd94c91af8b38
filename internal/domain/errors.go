package domain

import "fmt"

// APIError represents a standardized API error with HTTP status code
type APIError struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// Common error types for RFC 7807 Problem Details
const (
	ErrorTypeValidation   = "validation_error"
	ErrorTypePrecondition = "precondition_error"
	ErrorTypeDependency   = "dependency_error"
	ErrorTypeNotFound     = "not_found"
	ErrorTypeBadRequest   = "bad_request"
	ErrorTypeConflict     = "conflict"
	ErrorTypeUnauthorized = "unauthorized"
	ErrorTypeForbidden    = "forbidden"
	ErrorTypeInternal     = "internal_error"
)

// ValidationError reports invalid input to a rules-engine operation, e.g. a
// missing or non-positive sell price. It is returned as a value so the API
// layer can render a precise, user-actionable message.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
	}
	return "validation failed: " + e.Reason
}

// NewValidationError builds a ValidationError for a field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// PreconditionError reports an operation attempted out of order, e.g. marking
// the partner paid before the customer has paid, or advancing a terminal job.
type PreconditionError struct {
	Operation string
	Reason    string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Operation, e.Reason)
}

// NewPreconditionError builds a PreconditionError
func NewPreconditionError(operation, reason string) *PreconditionError {
	return &PreconditionError{Operation: operation, Reason: reason}
}

// DependencyError reports an unset/clear action blocked because a later
// milestone still depends on the value being removed.
type DependencyError struct {
	Operation string
	DependsOn string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s blocked: %s must be unset first", e.Operation, e.DependsOn)
}

// NewDependencyError builds a DependencyError
func NewDependencyError(operation, dependsOn string) *DependencyError {
	return &DependencyError{Operation: operation, DependsOn: dependsOn}
}

// ConflictError reports a lost optimistic-locking race on a job aggregate.
// The losing writer must reload and retry; nothing was merged.
type ConflictError struct {
	Entity string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("concurrent update conflict on %s, reload and retry", e.Entity)
}

// NewConflictError builds a ConflictError
func NewConflictError(entity string) *ConflictError {
	return &ConflictError{Entity: entity}
}

// ValidationMessages provides human-readable validation error messages
// These map validator tags to user-friendly messages
var ValidationMessages = map[string]string{
	"required": "This field is required",
	"email":    "Must be a valid email address",
	"max":      "Exceeds maximum length",
	"min":      "Below minimum length",
	"gte":      "Must be greater than or equal to minimum value",
	"gt":       "Must be greater than minimum value",
	"lte":      "Must be less than or equal to maximum value",
	"lt":       "Must be less than maximum value",
	"uuid":     "Must be a valid UUID",
	"oneof":    "Must be one of the allowed values",
	"numeric":  "Must be a numeric value",
}

// GetValidationMessage returns a human-readable message for a validation tag
func GetValidationMessage(tag string) string {
	if msg, ok := ValidationMessages[tag]; ok {
		return msg
	}
	return "Validation failed: " + tag
}
