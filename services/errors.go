package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeProvider      ErrorType = "provider"
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeNotFound      ErrorType = "not_found"
	ErrorTypeInternal      ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is. Two domain errors match when their types match.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Domain error variables

var (
	// Configuration Errors
	ErrMissingCredential    = NewDomainError(ErrorTypeConfiguration, "missing credential", nil)
	ErrInvalidEmbedMode     = NewDomainError(ErrorTypeConfiguration, "unsupported embedding mode", nil)
	ErrInvalidDatabaseURL   = NewDomainError(ErrorTypeConfiguration, "invalid database URL", nil)
	ErrStorageNotConfigured = NewDomainError(ErrorTypeConfiguration, "object storage not configured", nil)

	// Provider Errors
	ErrEmbeddingFailed    = NewDomainError(ErrorTypeProvider, "embedding request failed", nil)
	ErrMalformedEmbedding = NewDomainError(ErrorTypeProvider, "malformed embedding payload", nil)
	ErrSearchFailed       = NewDomainError(ErrorTypeProvider, "similarity search failed", nil)

	// Validation Errors
	ErrInvalidInput      = NewDomainError(ErrorTypeValidation, "invalid input", nil)
	ErrEmptyQuestion     = NewDomainError(ErrorTypeValidation, "question cannot be empty", nil)
	ErrTopKOutOfRange    = NewDomainError(ErrorTypeValidation, "top_k out of range", nil)
	ErrLengthMismatch    = NewDomainError(ErrorTypeValidation, "chunks and embeddings must have same length", nil)
	ErrDimensionMismatch = NewDomainError(ErrorTypeValidation, "embedding dimension mismatch", nil)
	ErrInvalidEvent      = NewDomainError(ErrorTypeValidation, "invalid ingestion event", nil)

	// Not Found Errors
	ErrObjectNotFound   = NewDomainError(ErrorTypeNotFound, "object not found", nil)
	ErrDocumentNotFound = NewDomainError(ErrorTypeNotFound, "document not found", nil)
)

// Error type checking helper functions

func hasType(err error, t ErrorType) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == t
	}
	return false
}

// IsConfigurationError checks if an error is a configuration error
func IsConfigurationError(err error) bool {
	return hasType(err, ErrorTypeConfiguration)
}

// IsProviderError checks if an error came from the embedding or search backend
func IsProviderError(err error) bool {
	return hasType(err, ErrorTypeProvider)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return hasType(err, ErrorTypeValidation)
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return hasType(err, ErrorTypeNotFound)
}

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool {
	return hasType(err, ErrorTypeInternal)
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapConfiguration wraps an error as a configuration error
func WrapConfiguration(message string, err error) error {
	return NewDomainError(ErrorTypeConfiguration, message, err)
}

// WrapProvider wraps an error as an embedding/search backend error
func WrapProvider(message string, err error) error {
	return NewDomainError(ErrorTypeProvider, message, err)
}

// WrapValidation wraps an error as a validation error
func WrapValidation(message string, err error) error {
	return NewDomainError(ErrorTypeValidation, message, err)
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}
