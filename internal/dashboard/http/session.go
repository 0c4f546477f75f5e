package dashboardhttp

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// SessionHeader carries the dashboard session id.
	SessionHeader = "X-Dashboard-Session"
	// SessionCookie is the cookie fallback for browsers.
	SessionCookie = "posdash_session"
)

type sessionKey struct{}

// SessionID returns the session id attached by SessionMiddleware.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// WithSession attaches id to ctx.
func WithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionMiddleware resolves the caller's session from the header or the
// cookie. Missing or malformed ids start a new session, echoed back in both.
func SessionMiddleware(ttl time.Duration, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := requestSession(r)
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set(SessionHeader, id)
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), id)))
		})
	}
}

func requestSession(r *http.Request) string {
	candidate := strings.TrimSpace(r.Header.Get(SessionHeader))
	if candidate == "" {
		if c, err := r.Cookie(SessionCookie); err == nil {
			candidate = strings.TrimSpace(c.Value)
		}
	}
	if candidate == "" {
		return ""
	}
	parsed, err := uuid.Parse(candidate)
	if err != nil {
		return ""
	}
	return parsed.String()
}
