// internal/app/system/auth/auth.go

// Package auth provides cookie-session authentication for the JSON API.
// Sessions carry the member's ID, username, and role; handlers read the
// signed-in member from the request context via CurrentMember.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	// SessionName is the cookie name.
	SessionName = "sandogh-session"

	isAuthKey   = "is_authenticated"
	memberIDKey = "member_id"
	usernameKey = "username"
	roleKey     = "role"
)

// Store is initialized once via InitSessionStore.
var Store *sessions.CookieStore

// SessionMember is what we cache in the session and inject into r.Context().
type SessionMember struct {
	ID       string
	Username string
	Role     string
}

type ctxKey string

const currentMemberKey ctxKey = "currentMember"

// CurrentMember returns the signed-in member and a "found?" flag.
func CurrentMember(r *http.Request) (*SessionMember, bool) {
	m, ok := r.Context().Value(currentMemberKey).(*SessionMember)
	return m, ok
}

// InitSessionStore initializes the global session Store. An empty session
// key gets a random one, which invalidates sessions on every restart; fine
// for dev, logged loudly so it never ships that way.
func InitSessionStore(sessionKey, domain string, secure bool, logger *zap.Logger) error {
	key := []byte(sessionKey)
	if sessionKey == "" {
		key = securecookie.GenerateRandomKey(32)
		if key == nil {
			return fmt.Errorf("generate random session key")
		}
		logger.Warn("no session key configured; generated a random one (sessions reset on restart)")
	} else if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended", zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	Store = store

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))
	return nil
}

// SignIn writes the member into a fresh session cookie.
func SignIn(w http.ResponseWriter, r *http.Request, m SessionMember) error {
	sess, _ := Store.Get(r, SessionName)
	sess.Values[isAuthKey] = true
	sess.Values[memberIDKey] = m.ID
	sess.Values[usernameKey] = m.Username
	sess.Values[roleKey] = m.Role
	return sess.Save(r, w)
}

// SignOut clears the session cookie.
func SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := Store.Get(r, SessionName)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// LoadSessionMember injects the member into context if they are signed in.
// A nil Store (tests, early startup) makes this a no-op.
func LoadSessionMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Store == nil {
			next.ServeHTTP(w, r)
			return
		}

		sess, _ := Store.Get(r, SessionName)
		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			m := &SessionMember{
				ID:       getString(sess, memberIDKey),
				Username: getString(sess, usernameKey),
				Role:     getString(sess, roleKey),
			}
			r = withMember(r, m)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn rejects requests with no member in context with a 401.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentMember(r); !ok {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects members whose role is not in the allowed set: 401 if
// not signed in, 403 otherwise.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m, ok := CurrentMember(r)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if _, has := set[strings.ToLower(m.Role)]; !has {
				writeJSONError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithTestMember injects a member directly into the request context,
// bypassing the session middleware. Test helper only.
func WithTestMember(r *http.Request, m *SessionMember) *http.Request {
	return withMember(r, m)
}

func withMember(r *http.Request, m *SessionMember) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentMemberKey, m))
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func writeJSONError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
