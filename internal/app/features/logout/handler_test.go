// internal/app/features/logout/handler_test.go
package logout_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/sandoghapp/sandogh/internal/app/features/logout"
	"github.com/sandoghapp/sandogh/internal/app/system/auth"
	"github.com/sandoghapp/sandogh/internal/testutil"
)

func newTestHandler(t *testing.T) *logout.Handler {
	t.Helper()
	logger := zap.NewNop()
	if err := auth.InitSessionStore("", "", false, logger); err != nil {
		t.Fatalf("init session store: %v", err)
	}
	return logout.NewHandler(nil, logger)
}

func TestLogoutSignedIn(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest("POST", "/logout", nil)
	req = testutil.WithMember(req, testutil.RegularMember())
	rec := httptest.NewRecorder()
	handler.HandleLogout(rec, req)

	if rec.Code != 204 {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	cookie := rec.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, auth.SessionName) {
		t.Errorf("expected session cookie to be cleared, got %q", cookie)
	}
}

func TestLogoutNotSignedIn(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest("POST", "/logout", nil)
	rec := httptest.NewRecorder()
	handler.HandleLogout(rec, req)

	// Logging out an empty session is not an error.
	if rec.Code != 204 {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}
