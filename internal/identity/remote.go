package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	apperrors "github.com/MohauMushi/FluxStore-App/pkg/errors"
	"github.com/MohauMushi/FluxStore-App/pkg/httpclient"
)

const remoteServiceName = "identity service"

// introspection is the identity provider's answer for a valid credential.
type introspection struct {
	Identity string `json:"identity"`
	Subject  string `json:"sub"`
}

// RemoteVerifier asks an identity provider to resolve the credential. The
// provider is called with the bearer token forwarded as-is and must answer
// 200 with {"identity": "..."} (or a "sub" claim).
type RemoteVerifier struct {
	url    string
	client httpclient.Doer
	logger *slog.Logger
}

// NewRemoteVerifier creates a verifier calling url through client, which is
// expected to be circuit-breaker protected.
func NewRemoteVerifier(url string, client httpclient.Doer, logger *slog.Logger) *RemoteVerifier {
	return &RemoteVerifier{url: url, client: client, logger: logger}
}

// Verify resolves token. 4xx answers are Unauthenticated; transport
// failures, 5xx answers and an open breaker are Unavailable.
func (v *RemoteVerifier) Verify(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.url, nil)
	if err != nil {
		return "", apperrors.Internal(fmt.Errorf("build identity request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := v.client.Do(ctx, req)
	if err != nil {
		if httpclient.IsBreakerOpen(err) {
			v.logger.WarnContext(ctx, "identity service breaker open")
		}
		return "", apperrors.Unavailable(remoteServiceName, err)
	}

	if resp.StatusCode != http.StatusOK {
		if httpclient.IsClientError(resp.StatusCode) {
			_ = resp.Body.Close()
			return "", apperrors.Unauthenticated("invalid credential")
		}
		return "", httpclient.ParseResponseError(resp, remoteServiceName)
	}
	defer func() { _ = resp.Body.Close() }()

	var body introspection
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err != nil {
		return "", apperrors.Unavailable(remoteServiceName, fmt.Errorf("decode identity response: %w", err))
	}

	identity := body.Identity
	if identity == "" {
		identity = body.Subject
	}
	if identity == "" {
		return "", apperrors.Unauthenticated("credential carries no identity")
	}
	return identity, nil
}
