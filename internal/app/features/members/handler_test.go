// internal/app/features/members/handler_test.go
package members_test

import (
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/sandoghapp/sandogh/internal/app/features/members"
	memberstore "github.com/sandoghapp/sandogh/internal/app/store/members"
	"github.com/sandoghapp/sandogh/internal/app/system/indexes"
	"github.com/sandoghapp/sandogh/internal/testutil"
)

func newTestHandler(t *testing.T) (*members.Handler, *mongo.Database, *memberstore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	if err := indexes.EnsureAll(testutil.TestContext(t), db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	store := memberstore.New(db)
	return members.NewHandler(store, nil, zap.NewNop()), db, store
}

type memberResponse struct {
	ID                string          `json:"id"`
	Username          string          `json:"username"`
	FullName          string          `json:"full_name"`
	Email             string          `json:"email"`
	Role              string          `json:"role"`
	Status            string          `json:"status"`
	Balance           decimal.Decimal `json:"balance"`
	LoanRequestAmount decimal.Decimal `json:"loan_request_amount"`
}

func TestCreateMember(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	req := testutil.NewJSONRequest(t, "POST", "/members", map[string]string{
		"username":  "Bob",
		"full_name": "<b>Bob</b> Smith",
		"email":     "bob@test.com",
		"password":  "password1",
		"role":      "member",
	})
	req = testutil.WithMember(req, testutil.AdminMember())
	rec := httptest.NewRecorder()
	handler.HandleCreate(rec, req)

	if rec.Code != 201 {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}

	var resp memberResponse
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Username != "bob" {
		t.Errorf("username = %q, want normalized %q", resp.Username, "bob")
	}
	if resp.FullName != "Bob Smith" {
		t.Errorf("full_name = %q, want markup stripped %q", resp.FullName, "Bob Smith")
	}
	if resp.Status != "active" {
		t.Errorf("status = %q, want %q", resp.Status, "active")
	}
	if !resp.Balance.IsZero() {
		t.Errorf("balance = %s, want 0", resp.Balance)
	}
}

func TestCreateMemberWeakPassword(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	req := testutil.NewJSONRequest(t, "POST", "/members", map[string]string{
		"username": "bob",
		"email":    "bob@test.com",
		"password": "short",
	})
	req = testutil.WithMember(req, testutil.AdminMember())
	rec := httptest.NewRecorder()
	handler.HandleCreate(rec, req)

	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateMemberDuplicateUsername(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	body := map[string]string{
		"username": "bob",
		"email":    "bob@test.com",
		"password": "password1",
	}

	req := testutil.NewJSONRequest(t, "POST", "/members", body)
	req = testutil.WithMember(req, testutil.AdminMember())
	rec := httptest.NewRecorder()
	handler.HandleCreate(rec, req)
	if rec.Code != 201 {
		t.Fatalf("first create: status = %d, want 201", rec.Code)
	}

	body["email"] = "bob2@test.com"
	req = testutil.NewJSONRequest(t, "POST", "/members", body)
	req = testutil.WithMember(req, testutil.AdminMember())
	rec = httptest.NewRecorder()
	handler.HandleCreate(rec, req)
	if rec.Code != 409 {
		t.Fatalf("second create: status = %d, want 409", rec.Code)
	}
}

func TestViewMemberNotFound(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	req := httptest.NewRequest("GET", "/members/x", nil)
	req = testutil.WithMember(req, testutil.AdminMember())
	req = testutil.WithChiURLParam(req, "id", primitive.NewObjectID().Hex())
	rec := httptest.NewRecorder()
	handler.HandleView(rec, req)

	if rec.Code != 404 {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestEditMember(t *testing.T) {
	handler, db, _ := newTestHandler(t)
	ctx := testutil.TestContext(t)
	f := testutil.NewFixtures(t, db)
	m := f.CreateMember(ctx, "amy", decimal.Zero, decimal.Zero)

	req := testutil.NewJSONRequest(t, "POST", "/members/"+m.ID.Hex()+"/edit", map[string]string{
		"full_name": "Amy Jones",
		"email":     "amy2@test.com",
		"role":      "member",
		"status":    "disabled",
	})
	req = testutil.WithMember(req, testutil.AdminMember())
	req = testutil.WithChiURLParam(req, "id", m.ID.Hex())
	rec := httptest.NewRecorder()
	handler.HandleEdit(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	var resp memberResponse
	testutil.DecodeJSON(t, rec, &resp)
	if resp.FullName != "Amy Jones" {
		t.Errorf("full_name = %q, want %q", resp.FullName, "Amy Jones")
	}
	if resp.Status != "disabled" {
		t.Errorf("status = %q, want %q", resp.Status, "disabled")
	}
}

func TestSetLoanRequest(t *testing.T) {
	handler, db, _ := newTestHandler(t)
	ctx := testutil.TestContext(t)
	f := testutil.NewFixtures(t, db)
	m := f.CreateMember(ctx, "amy", decimal.NewFromInt(200), decimal.Zero)

	req := testutil.NewJSONRequest(t, "POST", "/members/me/request", map[string]interface{}{
		"amount": decimal.NewFromInt(150),
	})
	req = testutil.WithMember(req, testutil.MemberWithID(m.ID))
	rec := httptest.NewRecorder()
	handler.HandleSetLoanRequest(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	var resp memberResponse
	testutil.DecodeJSON(t, rec, &resp)
	if !resp.LoanRequestAmount.Equal(decimal.NewFromInt(150)) {
		t.Errorf("loan_request_amount = %s, want 150", resp.LoanRequestAmount)
	}
}

func TestSetLoanRequestNegative(t *testing.T) {
	handler, db, _ := newTestHandler(t)
	ctx := testutil.TestContext(t)
	f := testutil.NewFixtures(t, db)
	m := f.CreateMember(ctx, "amy", decimal.Zero, decimal.Zero)

	req := testutil.NewJSONRequest(t, "POST", "/members/me/request", map[string]interface{}{
		"amount": decimal.NewFromInt(-5),
	})
	req = testutil.WithMember(req, testutil.MemberWithID(m.ID))
	rec := httptest.NewRecorder()
	handler.HandleSetLoanRequest(rec, req)

	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestListMembers(t *testing.T) {
	handler, db, _ := newTestHandler(t)
	ctx := testutil.TestContext(t)
	f := testutil.NewFixtures(t, db)
	f.CreateMember(ctx, "amy", decimal.Zero, decimal.Zero)
	f.CreateMember(ctx, "bob", decimal.Zero, decimal.Zero)

	req := httptest.NewRequest("GET", "/members", nil)
	req = testutil.WithMember(req, testutil.AdminMember())
	rec := httptest.NewRecorder()
	handler.HandleList(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp []memberResponse
	testutil.DecodeJSON(t, rec, &resp)
	if len(resp) != 2 {
		t.Fatalf("got %d members, want 2", len(resp))
	}
}
