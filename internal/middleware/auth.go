package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/abhijaymovva/LinkedIN-Messenger/internal/httpx"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/router"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/token"
)

type ctxKey struct{}

var userIDKey ctxKey

type tokenVerifier interface {
	Validate(raw string) (token.Claims, error)
}

// Auth guards every route behind it with a bearer token check. The header
// must be exactly "Authorization: Bearer <token>"; any missing, malformed or
// expired token yields 401 and the downstream handler never runs.
func Auth(verifier tokenVerifier) router.Middleware {
	return func(next http.Handler) http.Handler {
		return authMiddleware(next, verifier)
	}
}

func authMiddleware(next http.Handler, verifier tokenVerifier) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := BearerToken(r)
		if !ok {
			httpx.WriteError(w, http.StatusUnauthorized, "no token provided")
			return
		}

		claims, err := verifier.Validate(raw)
		if err != nil {
			authError("token verification failed", w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BearerToken extracts the token from the Authorization header. It reports
// false when the header is absent or not in the "Bearer <token>" form.
func BearerToken(r *http.Request) (string, bool) {
	raw := r.Header.Get("Authorization")
	tk, ok := strings.CutPrefix(raw, "Bearer ")
	if !ok || tk == "" {
		return "", false
	}

	return tk, true
}

func authError(msg string, w http.ResponseWriter, r *http.Request, err error) {
	slog.Error(msg,
		"error", err,
		"method", r.Method,
		"url", r.URL.String(),
		"remote_addr", r.RemoteAddr,
	)
	httpx.WriteError(w, http.StatusUnauthorized, "invalid token")
}

func UserIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(userIDKey).(string)
	return uid
}

// ContextWithUserID attaches a user id the way the auth middleware does.
// Handlers behind the gate read it back with UserIDFromContext.
func ContextWithUserID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, userIDKey, uid)
}
