package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/MohauMushi/FluxStore-App/pkg/errors"
	"github.com/MohauMushi/FluxStore-App/pkg/logger"
	"github.com/MohauMushi/FluxStore-App/pkg/validator"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestWriteJSON_SetsContentTypeAndStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusTeapot, Response{Data: "hello"})

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestWriteData(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteData(rec, http.StatusCreated, map[string]string{"id": "001"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decode(t, rec)
	assert.Nil(t, resp.Error)
	assert.Equal(t, map[string]any{"id": "001"}, resp.Data)
}

func TestWriteError_AppError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/products/1/reviews", nil)
	req = req.WithContext(logger.WithCorrelationID(req.Context(), "corr-1"))

	WriteError(rec, req, apperrors.Forbidden("not the review owner"), logger.Discard())

	assert.Equal(t, http.StatusForbidden, rec.Code)
	resp := decode(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)
	assert.Equal(t, "not the review owner", resp.Error.Message)
	assert.False(t, resp.Error.Retryable)
	assert.Equal(t, "corr-1", resp.Error.RequestID)
}

func TestWriteError_RetryableAppErrors(t *testing.T) {
	for _, err := range []error{
		apperrors.Conflict("product changed"),
		apperrors.StoreUnavailable(errors.New("dial tcp")),
		fmt.Errorf("list: %w", apperrors.Timeout("list products")),
	} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		WriteError(rec, req, err, logger.Discard())

		resp := decode(t, rec)
		require.NotNil(t, resp.Error)
		assert.True(t, resp.Error.Retryable, resp.Error.Code)
	}
}

func TestWriteError_PlainErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("x: %w", apperrors.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("x: %w", apperrors.ErrInvalidInput), http.StatusBadRequest, "INVALID_INPUT"},
		{context.DeadlineExceeded, http.StatusGatewayTimeout, "TIMEOUT"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		WriteError(rec, req, tt.err, logger.Discard())

		assert.Equal(t, tt.status, rec.Code)
		resp := decode(t, rec)
		require.NotNil(t, resp.Error)
		assert.Equal(t, tt.code, resp.Error.Code)
	}
}

func TestWriteValidationError(t *testing.T) {
	type body struct {
		Rating int `json:"rating" validate:"required,min=1,max=5"`
	}
	rec := httptest.NewRecorder()
	WriteValidationError(rec, validator.Validate(body{Rating: 9}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "rating")
}

func TestWriteValidationError_Generic(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteValidationError(rec, errors.New("decode request body: EOF"))

	resp := decode(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}
