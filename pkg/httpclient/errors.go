package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/MohauMushi/FluxStore-App/pkg/errors"
)

// downstreamError mirrors the error half of the httputil envelope.
type downstreamError struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// converts it into an AppError from this service's taxonomy. Callers must
// only pass error responses.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apperrors.Unavailable(serviceName, fmt.Errorf("status %d, reading body: %w", resp.StatusCode, err))
	}

	message := string(body)
	var parsed downstreamError
	if json.Unmarshal(body, &parsed) == nil && parsed.Error != nil {
		message = parsed.Error.Message
	}
	qualified := fmt.Sprintf("%s: %s", serviceName, message)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return apperrors.Unauthenticated(qualified)
	case resp.StatusCode == http.StatusForbidden:
		return apperrors.Forbidden(qualified)
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NotFound(serviceName, message)
	case resp.StatusCode == http.StatusConflict:
		return apperrors.Conflict(qualified)
	case resp.StatusCode == http.StatusGatewayTimeout:
		return apperrors.Timeout(serviceName)
	case resp.StatusCode >= 500:
		return apperrors.Unavailable(serviceName, fmt.Errorf("status %d: %s", resp.StatusCode, message))
	case resp.StatusCode >= 400:
		return apperrors.InvalidInput(qualified)
	default:
		return apperrors.Internal(fmt.Errorf("%s returned unexpected status %d", serviceName, resp.StatusCode))
	}
}

// IsClientError reports whether status is a 4xx.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
