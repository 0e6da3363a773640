package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/estateadmin/internal/auth"
)

// TokenParser verifies a session token. *auth.TokenService implements it.
type TokenParser interface {
	Parse(raw string) (auth.Principal, error)
}

type holderKey struct{}

func withHolder(ctx context.Context, h *principalHolder) context.Context {
	return context.WithValue(ctx, holderKey{}, h)
}

// SessionAuth attaches the principal of a valid session token to the
// request context. The token comes from "Authorization: Bearer" or, for
// browsers, the session cookie. Requests without a valid token continue
// anonymously; RequireAuth rejects them where a user is needed.
func SessionAuth(parser TokenParser, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				if c, err := r.Cookie(cookieName); err == nil {
					raw = c.Value
				}
			}
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			p, err := parser.Parse(raw)
			if err != nil {
				slog.Warn("auth: rejected session token",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			if h, ok := r.Context().Value(holderKey{}).(*principalHolder); ok {
				h.p = &p
			}
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RequireAuth rejects requests without a principal with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.FromContext(r.Context()); !ok {
			writeAuthError(w, http.StatusUnauthorized, "not authenticated", "AUTH001")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects principals holding none of roles with 403.
// Anonymous requests get 401.
func RequireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := auth.FromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "not authenticated", "AUTH001")
				return
			}
			if !p.HasRole(roles...) {
				slog.Warn("auth: role not allowed",
					"path", r.URL.Path,
					"user_id", p.UserID,
					"role", p.Role,
				)
				writeAuthError(w, http.StatusForbidden, "insufficient permissions", "AUTH002")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, msg, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `","code":"` + code + `"}`))
}
