package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"conreach/internal/delivery/http/helpers"
	"conreach/internal/domain"
)

type contextKey string

const principalKey contextKey = "principal"

// SetPrincipal returns a context carrying the verified token holder.
func SetPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the verified token holder, if present.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey).(domain.Principal)
	return p, ok && p.Subject != ""
}

// SubjectFromContext returns the authenticated subject, if present.
func SubjectFromContext(ctx context.Context) (string, bool) {
	p, ok := PrincipalFromContext(ctx)
	return p.Subject, ok
}

// VisitorFromContext returns the account ID of a signed-in visitor. Vendor and operator
// tokens never count as a visitor account.
func VisitorFromContext(ctx context.Context) (string, bool) {
	p, ok := PrincipalFromContext(ctx)
	if !ok || !p.HasRole(domain.RoleVisitor) {
		return "", false
	}
	return p.Subject, true
}

// RequireAuth returns a wrapper that validates the Bearer token and stores the principal in the
// request context. A missing or invalid token gets 401. When roles are given, a token carrying
// none of them gets 403.
func RequireAuth(verifier domain.TokenVerifier, logger *slog.Logger, roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, msg := bearerToken(r.Header.Get("Authorization"))
			if msg != "" {
				helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, msg)
				return
			}
			principal, err := verifier.Verify(token)
			if err != nil {
				logger.DebugContext(r.Context(), "token rejected", "path", r.URL.Path, "err", err)
				helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			if len(roles) > 0 && !principal.HasRole(roles...) {
				logger.InfoContext(r.Context(), "role denied", "path", r.URL.Path, "subject", principal.Subject, "roles", principal.Roles)
				helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "insufficient role")
				return
			}
			next(w, r.WithContext(SetPrincipal(r.Context(), principal)))
		}
	}
}

func bearerToken(header string) (token, problem string) {
	if header == "" {
		return "", "missing authorization header"
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", "invalid authorization format"
	}
	token = strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", "missing token"
	}
	return token, ""
}

// OptionalAuth is RequireAuth for public routes: a request without an Authorization header
// passes through anonymously, but a header that is present must carry a valid token.
func OptionalAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	required := RequireAuth(verifier, logger)
	return func(next http.HandlerFunc) http.HandlerFunc {
		guarded := required(next)
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next(w, r)
				return
			}
			guarded(w, r)
		}
	}
}
