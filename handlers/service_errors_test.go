package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/upb/proof-layer/services"
	"github.com/upb/proof-layer/utils"
)

func TestHandleServiceError(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "validation error",
			err:            services.ErrTopKOutOfRange,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "bad_request",
		},
		{
			name:           "not found error",
			err:            services.ErrDocumentNotFound,
			expectedStatus: http.StatusNotFound,
			expectedError:  "not_found",
		},
		{
			name:           "provider error",
			err:            services.WrapProvider("OpenAI API error (500): boom", errors.New("500")),
			expectedStatus: http.StatusBadGateway,
			expectedError:  "bad_gateway",
		},
		{
			name:           "configuration error",
			err:            services.WrapConfiguration("OPENAI_API_KEY is required", services.ErrMissingCredential),
			expectedStatus: http.StatusServiceUnavailable,
			expectedError:  "service_unavailable",
		},
		{
			name:           "internal error",
			err:            services.WrapInternal("query documents", errors.New("connection refused")),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "internal_error",
		},
		{
			name:           "unknown error",
			err:            errors.New("something unexpected"),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			HandleServiceError(w, tt.err, logger)

			assert.Equal(t, tt.expectedStatus, w.Code)
			var response utils.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, tt.expectedError, response.Error)
		})
	}
}

func TestHandleServiceError_Details(t *testing.T) {
	err := services.NewDomainError(services.ErrorTypeValidation, "embedding dimension mismatch", services.ErrDimensionMismatch).
		WithDetail("expected", 1536).
		WithDetail("actual", 3)

	w := httptest.NewRecorder()
	HandleServiceError(w, err, zap.NewNop())

	var response utils.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.EqualValues(t, 1536, response.Details["expected"])
	assert.EqualValues(t, 3, response.Details["actual"])
}

func TestHandleServiceError_InternalMessageHidden(t *testing.T) {
	w := httptest.NewRecorder()
	HandleServiceError(w, services.WrapInternal("pq: password authentication failed", errors.New("x")), zap.NewNop())

	assert.NotContains(t, w.Body.String(), "password")
}

func TestHandleServiceError_Nil(t *testing.T) {
	w := httptest.NewRecorder()
	HandleServiceError(w, nil, zap.NewNop())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestHandleValidationError(t *testing.T) {
	t.Run("field errors", func(t *testing.T) {
		type body struct {
			Filename string `json:"filename" validate:"required"`
		}
		err := utils.ValidateStruct(&body{})
		require.Error(t, err)

		w := httptest.NewRecorder()
		HandleValidationError(w, err, zap.NewNop())

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var response utils.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "Validation failed", response.Message)
		assert.Equal(t, "filename is required", response.Details["filename"])
	})

	t.Run("plain error", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleValidationError(w, errors.New("bad input"), zap.NewNop())

		var response utils.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "bad input", response.Message)
	})
}
