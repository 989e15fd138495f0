package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/stocktrackhq/stocktrack-backend/internal/api/response"
	"github.com/stocktrackhq/stocktrack-backend/internal/model"
)

type contextKey string

const userKey contextKey = "user"

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (model.User, error)
}

// RequireAuth rejects requests without a valid "Authorization: Bearer"
// session token and stores the resolved user in the request context.
func RequireAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				response.RespondError(w, http.StatusUnauthorized, "authentication required", nil)
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				response.RespondError(w, http.StatusUnauthorized, "invalid or expired session", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a context carrying the given user, as RequireAuth
// would produce.
func WithUser(ctx context.Context, user model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFrom returns the authenticated user stored by RequireAuth.
func UserFrom(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(userKey).(model.User)
	return user, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
