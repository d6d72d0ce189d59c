package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// RoleLookup returns the role currently stored for account id.
type RoleLookup func(ctx context.Context, id string) (string, error)

// Authenticate attaches the principal named by a valid bearer token to the
// request context. Requests without a usable token pass through anonymously;
// RequireUser and RequireAdmin decide whether that is acceptable.
//
// When lookup is set the token's role claim is replaced by the stored role,
// and a token whose account cannot be resolved is treated as absent.
func Authenticate(tm *TokenManager, lookup RoleLookup, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			p, err := tm.Verify(token)
			if err != nil {
				logger.Debug("rejected bearer token", "path", r.URL.Path, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if lookup != nil {
				role, err := lookup(r.Context(), p.ID)
				if err != nil {
					level := slog.LevelWarn
					if errors.Is(err, ErrUnknownPrincipal) {
						level = slog.LevelDebug
					}
					logger.Log(r.Context(), level, "could not resolve token subject", "user_id", p.ID, "error", err)
					next.ServeHTTP(w, r)
					return
				}
				p.Role = role
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireUser rejects anonymous requests with 401.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "not authorized, no valid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects anonymous requests with 401 and non-privileged
// principals with 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := FromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "not authorized, no valid token")
			return
		}
		if !p.Privileged() {
			writeError(w, http.StatusForbidden, "not authorized as an admin")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
