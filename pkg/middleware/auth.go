package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/MohauMushi/FluxStore-App/pkg/errors"
	"github.com/MohauMushi/FluxStore-App/pkg/httputil"
	"github.com/MohauMushi/FluxStore-App/pkg/logger"
)

// IdentityVerifier resolves a bearer credential to a stable user identifier.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// IdentityVerifierFunc adapts a function to IdentityVerifier.
type IdentityVerifierFunc func(ctx context.Context, token string) (string, error)

func (f IdentityVerifierFunc) Verify(ctx context.Context, token string) (string, error) {
	return f(ctx, token)
}

// BearerToken extracts the credential from an "Authorization: Bearer <t>"
// header. The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Authenticate rejects requests without a verifiable bearer credential and
// stores the verified identity in the context (see IdentityFromContext).
// Verifier errors that are already AppErrors keep their status, so an
// unreachable identity service answers 503 rather than 401.
func Authenticate(v IdentityVerifier, fallback *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				httputil.WriteError(w, r, apperrors.Unauthenticated("missing or malformed bearer credential"), fallback)
				return
			}

			identity, err := v.Verify(r.Context(), token)
			if err != nil {
				var appErr *apperrors.AppError
				if !errors.As(err, &appErr) {
					err = apperrors.Unauthenticated("invalid or expired credential")
				}
				httputil.WriteError(w, r, err, fallback)
				return
			}
			if identity == "" {
				httputil.WriteError(w, r, apperrors.Unauthenticated("credential carries no identity"), fallback)
				return
			}

			ctx := logger.WithIdentity(r.Context(), identity)
			ctx = logger.NewContext(ctx, logger.FromContext(ctx).With(slog.String("identity", identity)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext returns the identity set by Authenticate, or "".
func IdentityFromContext(ctx context.Context) string {
	return logger.IdentityFromContext(ctx)
}
