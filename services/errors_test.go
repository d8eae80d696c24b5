package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDomainError(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeNotFound, "object not found", baseErr)

	assert.Equal(t, ErrorTypeNotFound, domainErr.Type)
	assert.Equal(t, "object not found", domainErr.Message)
	assert.Equal(t, baseErr, domainErr.Err)
	assert.NotNil(t, domainErr.Details)
}

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *DomainError
		wantMsg string
	}{
		{
			name: "error with wrapped error",
			err: &DomainError{
				Type:    ErrorTypeProvider,
				Message: "embedding request failed",
				Err:     errors.New("OpenAI API error (401): bad key"),
			},
			wantMsg: "provider: embedding request failed (OpenAI API error (401): bad key)",
		},
		{
			name: "error without wrapped error",
			err: &DomainError{
				Type:    ErrorTypeValidation,
				Message: "invalid input",
			},
			wantMsg: "validation: invalid input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeInternal, "internal error", baseErr)

	assert.Equal(t, baseErr, errors.Unwrap(domainErr))
}

func TestDomainError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "same error type",
			err:    NewDomainError(ErrorTypeValidation, "bad top_k", nil),
			target: ErrTopKOutOfRange,
			want:   true,
		},
		{
			name:   "different error type",
			err:    NewDomainError(ErrorTypeProvider, "boom", nil),
			target: ErrLengthMismatch,
			want:   false,
		},
		{
			name:   "not a domain error",
			err:    NewDomainError(ErrorTypeNotFound, "not found", nil),
			target: errors.New("regular error"),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestDomainError_WithDetail(t *testing.T) {
	err := NewDomainError(ErrorTypeValidation, "validation error", nil)

	err.WithDetail("chunks", 3).WithDetail("embeddings", 2)

	assert.Equal(t, 3, err.Details["chunks"])
	assert.Equal(t, 2, err.Details["embeddings"])
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"configuration", ErrMissingCredential, IsConfigurationError, true},
		{"wrapped configuration", fmt.Errorf("startup: %w", ErrInvalidEmbedMode), IsConfigurationError, true},
		{"provider", ErrEmbeddingFailed, IsProviderError, true},
		{"wrapped provider", WrapProvider("search", errors.New("conn refused")), IsProviderError, true},
		{"validation", ErrLengthMismatch, IsValidationError, true},
		{"validation is not provider", ErrLengthMismatch, IsProviderError, false},
		{"not found", ErrObjectNotFound, IsNotFoundError, true},
		{"internal", WrapInternal("query documents", errors.New("connection refused")), IsInternalError, true},
		{"regular error", errors.New("regular"), IsInternalError, false},
		{"nil error", nil, IsValidationError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, ErrorTypeProvider, GetErrorType(ErrSearchFailed))
	assert.Equal(t, ErrorTypeValidation, GetErrorType(fmt.Errorf("x: %w", ErrEmptyQuestion)))
	assert.Equal(t, ErrorType(""), GetErrorType(errors.New("plain")))
}

func TestGetErrorDetails(t *testing.T) {
	err := NewDomainError(ErrorTypeValidation, "mismatch", nil).WithDetail("expected", 1536)
	details := GetErrorDetails(err)
	require.NotNil(t, details)
	assert.Equal(t, 1536, details["expected"])

	assert.Nil(t, GetErrorDetails(errors.New("plain")))
}

func TestWrapHelpers(t *testing.T) {
	base := errors.New("base")

	tests := []struct {
		name     string
		err      error
		wantType ErrorType
	}{
		{"wrap configuration", WrapConfiguration("no key", base), ErrorTypeConfiguration},
		{"wrap provider", WrapProvider("remote", base), ErrorTypeProvider},
		{"wrap validation", WrapValidation("bad", base), ErrorTypeValidation},
		{"wrap internal", WrapInternal("db", base), ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, GetErrorType(tt.err))
			assert.ErrorIs(t, tt.err, base)
		})
	}
}
