// internal/testutil/http.go
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sandoghapp/sandogh/internal/app/system/auth"
)

// TestMember represents member data for testing HTTP handlers.
type TestMember struct {
	ID       string
	Username string
	Role     string
}

// AdminMember returns a TestMember with admin role.
func AdminMember() TestMember {
	return TestMember{
		ID:       primitive.NewObjectID().Hex(),
		Username: "testadmin",
		Role:     "admin",
	}
}

// RegularMember returns a TestMember with member role.
func RegularMember() TestMember {
	return TestMember{
		ID:       primitive.NewObjectID().Hex(),
		Username: "testmember",
		Role:     "member",
	}
}

// MemberWithID returns a TestMember with member role and a known ID.
func MemberWithID(id primitive.ObjectID) TestMember {
	return TestMember{
		ID:       id.Hex(),
		Username: "testmember",
		Role:     "member",
	}
}

// WithMember adds a member to the request context for testing authenticated
// handlers. This bypasses the session middleware.
func WithMember(r *http.Request, m TestMember) *http.Request {
	return auth.WithTestMember(r, &auth.SessionMember{
		ID:       m.ID,
		Username: m.Username,
		Role:     m.Role,
	})
}

// NewJSONRequest creates an HTTP request carrying a JSON body.
func NewJSONRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()

	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		rd = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DecodeJSON unmarshals a recorded response body into out.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response body %q: %v", rec.Body.String(), err)
	}
}
