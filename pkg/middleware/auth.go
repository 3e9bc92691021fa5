package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Aphidet6/earth-bettashop/internal/domain"
	"github.com/Aphidet6/earth-bettashop/pkg/httputil"
	"github.com/Aphidet6/earth-bettashop/pkg/logger"
)

type contextKeyType string

const identityKey contextKeyType = "identity"

// TokenValidator verifies a bearer token and returns the live identity it
// belongs to. Implementations re-derive role and existence from the store so
// that stale or forged claims never reach a handler.
type TokenValidator func(ctx context.Context, token string) (*domain.User, error)

// Auth validates the Authorization header and injects the authenticated
// identity into the request context. Missing, malformed, expired, or forged
// tokens all produce 401. On success the request-scoped logger is rebuilt
// with the user id, so log lines emitted past this point carry it.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeAuthError(w, "invalid authorization header format")
				return
			}

			user, err := validate(r.Context(), parts[1])
			if err != nil {
				writeAuthError(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, user)

			uid := strconv.FormatInt(user.ID, 10)
			ctx = logger.WithUserID(ctx, uid)
			ctx = logger.NewContext(ctx, logger.FromContext(ctx).With(slog.String("user_id", uid)))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole checks that the authenticated identity carries one of the given
// roles. Admins pass every role gate.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := IdentityFromContext(r.Context())
			if user == nil {
				writeAuthError(w, "unauthorized")
				return
			}
			if _, ok := roleSet[user.Role]; !ok && user.Role != domain.RoleAdmin {
				httputil.WriteJSON(w, http.StatusForbidden, httputil.Response{
					Success: false,
					Error:   "forbidden",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromContext extracts the authenticated user from the request
// context, or nil when the request is unauthenticated.
func IdentityFromContext(ctx context.Context) *domain.User {
	if u, ok := ctx.Value(identityKey).(*domain.User); ok {
		return u
	}
	return nil
}

// WithIdentity returns a context carrying the given identity. Exposed for
// handler tests that bypass the Auth middleware.
func WithIdentity(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, identityKey, user)
}

func writeAuthError(w http.ResponseWriter, message string) {
	httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
		Success: false,
		Error:   message,
	})
}
