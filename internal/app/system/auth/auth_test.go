package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/sandoghapp/sandogh/internal/app/system/auth"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireSignedIn_NoMember(t *testing.T) {
	req := httptest.NewRequest("GET", "/loans/history", nil)
	rec := httptest.NewRecorder()

	auth.RequireSignedIn(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: got %q, want application/json", ct)
	}
}

func TestRequireSignedIn_WithMember(t *testing.T) {
	req := httptest.NewRequest("GET", "/loans/history", nil)
	req = auth.WithTestMember(req, &auth.SessionMember{ID: "m1", Username: "maryam", Role: "member"})
	rec := httptest.NewRecorder()

	auth.RequireSignedIn(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name   string
		member *auth.SessionMember
		want   int
	}{
		{"not signed in", nil, http.StatusUnauthorized},
		{"wrong role", &auth.SessionMember{ID: "m1", Role: "member"}, http.StatusForbidden},
		{"allowed role", &auth.SessionMember{ID: "m1", Role: "admin"}, http.StatusOK},
		{"case-insensitive role", &auth.SessionMember{ID: "m1", Role: "Admin"}, http.StatusOK},
	}

	mw := auth.RequireRole("admin")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/members", nil)
			if tt.member != nil {
				req = auth.WithTestMember(req, tt.member)
			}
			rec := httptest.NewRecorder()

			mw(okHandler()).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestSessionRoundTrip(t *testing.T) {
	if err := auth.InitSessionStore("test-session-key-for-testing-0123456789", "", false, zap.NewNop()); err != nil {
		t.Fatalf("InitSessionStore failed: %v", err)
	}

	// Sign in and capture the cookie.
	signinRec := httptest.NewRecorder()
	signinReq := httptest.NewRequest("POST", "/login", nil)
	err := auth.SignIn(signinRec, signinReq, auth.SessionMember{ID: "m1", Username: "maryam", Role: "member"})
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	cookies := signinRec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}

	// Replay the cookie through the middleware.
	req := httptest.NewRequest("GET", "/loans/mine", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	var got *auth.SessionMember
	handler := auth.LoadSessionMember(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentMember(r)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected member in context after session round trip")
	}
	if got.ID != "m1" || got.Username != "maryam" || got.Role != "member" {
		t.Errorf("member: got %+v", got)
	}
}
