package httpclient

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/MohauMushi/FluxStore-App/pkg/errors"
)

func response(status int, body string) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body))}
}

func TestParseResponseError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		contains string
	}{
		{"structured 401", http.StatusUnauthorized, `{"error":{"code":"UNAUTHENTICATED","message":"token expired"}}`, apperrors.ErrUnauthenticated, "token expired"},
		{"403", http.StatusForbidden, `{"error":{"code":"FORBIDDEN","message":"revoked"}}`, apperrors.ErrForbidden, "revoked"},
		{"404", http.StatusNotFound, `{"error":{"code":"NOT_FOUND","message":"user"}}`, apperrors.ErrNotFound, "identity"},
		{"409", http.StatusConflict, `{}`, apperrors.ErrConflict, "identity"},
		{"400 plain body", http.StatusBadRequest, "bad token format", apperrors.ErrInvalidInput, "bad token format"},
		{"503", http.StatusServiceUnavailable, `{"error":{"code":"X","message":"maintenance"}}`, apperrors.ErrUnavailable, "maintenance"},
		{"502 html", http.StatusBadGateway, "<html>bad gateway</html>", apperrors.ErrUnavailable, "502"},
		{"504", http.StatusGatewayTimeout, "", apperrors.ErrTimeout, "identity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseResponseError(response(tt.status, tt.body), "identity")
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(400))
	assert.True(t, IsClientError(499))
	assert.False(t, IsClientError(399))
	assert.False(t, IsClientError(500))
}
