// internal/app/features/payments/handler_test.go
package payments_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/sandoghapp/sandogh/internal/app/features/payments"
	loanstore "github.com/sandoghapp/sandogh/internal/app/store/loans"
	memberstore "github.com/sandoghapp/sandogh/internal/app/store/members"
	paymentstore "github.com/sandoghapp/sandogh/internal/app/store/payments"
	policystore "github.com/sandoghapp/sandogh/internal/app/store/policy"
	"github.com/sandoghapp/sandogh/internal/app/system/indexes"
	"github.com/sandoghapp/sandogh/internal/app/system/jalali"
	"github.com/sandoghapp/sandogh/internal/domain/models"
	"github.com/sandoghapp/sandogh/internal/testutil"
)

type deps struct {
	handler *payments.Handler
	db      *mongo.Database
	members *memberstore.Store
	loans   *loanstore.Store
}

func newTestHandler(t *testing.T) deps {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	members := memberstore.New(db)
	loans := loanstore.New(db)
	pstore := paymentstore.New(db)
	policy := policystore.New(db)

	// Seeds the default fund policy (min fee 20, min installment 20).
	if _, err := policy.Get(ctx); err != nil {
		t.Fatalf("seed fund policy: %v", err)
	}

	h := payments.NewHandler(db.Client(), members, loans, pstore, policy, nil, zap.NewNop())
	return deps{handler: h, db: db, members: members, loans: loans}
}

func TestRecordPayment(t *testing.T) {
	d := newTestHandler(t)
	ctx := testutil.TestContext(t)
	f := testutil.NewFixtures(t, d.db)
	m := f.CreateMember(ctx, "amy", decimal.NewFromInt(100), decimal.Zero)

	req := testutil.NewJSONRequest(t, "POST", "/payments", map[string]interface{}{
		"membership_fee": decimal.NewFromInt(25),
		"gateway_ref":    "gw-001",
	})
	req = testutil.WithMember(req, testutil.MemberWithID(m.ID))
	rec := httptest.NewRecorder()
	d.handler.HandleCreate(rec, req)

	if rec.Code != 201 {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}

	var created models.Payment
	testutil.DecodeJSON(t, rec, &created)
	if !created.Amount.Equal(decimal.NewFromInt(25)) {
		t.Errorf("amount = %s, want 25", created.Amount)
	}

	got, err := d.members.GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("reload member: %v", err)
	}
	if !got.Balance.Equal(decimal.NewFromInt(125)) {
		t.Errorf("balance = %s, want 125", got.Balance)
	}
}

func TestRecordPaymentBelowMinimumFee(t *testing.T) {
	d := newTestHandler(t)
	ctx := testutil.TestContext(t)
	f := testutil.NewFixtures(t, d.db)
	m := f.CreateMember(ctx, "amy", decimal.Zero, decimal.Zero)

	req := testutil.NewJSONRequest(t, "POST", "/payments", map[string]interface{}{
		"membership_fee": decimal.NewFromInt(5),
		"gateway_ref":    "gw-001",
	})
	req = testutil.WithMember(req, testutil.MemberWithID(m.ID))
	rec := httptest.NewRecorder()
	d.handler.HandleCreate(rec, req)

	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "membership fee must be at least") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestRecordPaymentMissingGatewayRef(t *testing.T) {
	d := newTestHandler(t)
	ctx := testutil.TestContext(t)
	f := testutil.NewFixtures(t, d.db)
	m := f.CreateMember(ctx, "amy", decimal.Zero, decimal.Zero)

	req := testutil.NewJSONRequest(t, "POST", "/payments", map[string]interface{}{
		"membership_fee": decimal.NewFromInt(25),
	})
	req = testutil.WithMember(req, testutil.MemberWithID(m.ID))
	rec := httptest.NewRecorder()
	d.handler.HandleCreate(rec, req)

	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRecordPaymentDuplicatePeriod(t *testing.T) {
	d := newTestHandler(t)
	ctx := testutil.TestContext(t)
	f := testutil.NewFixtures(t, d.db)
	m := f.CreateMember(ctx, "amy", decimal.Zero, decimal.Zero)

	body := map[string]interface{}{
		"membership_fee": decimal.NewFromInt(25),
		"gateway_ref":    "gw-001",
	}

	req := testutil.NewJSONRequest(t, "POST", "/payments", body)
	req = testutil.WithMember(req, testutil.MemberWithID(m.ID))
	rec := httptest.NewRecorder()
	d.handler.HandleCreate(rec, req)
	if rec.Code != 201 {
		t.Fatalf("first payment: status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}

	req = testutil.NewJSONRequest(t, "POST", "/payments", body)
	req = testutil.WithMember(req, testutil.MemberWithID(m.ID))
	rec = httptest.NewRecorder()
	d.handler.HandleCreate(rec, req)
	if rec.Code != 409 {
		t.Fatalf("second payment: status = %d, want 409 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestRepaymentWithoutActiveLoan(t *testing.T) {
	d := newTestHandler(t)
	ctx := testutil.TestContext(t)
	f := testutil.NewFixtures(t, d.db)
	m := f.CreateMember(ctx, "amy", decimal.Zero, decimal.Zero)

	req := testutil.NewJSONRequest(t, "POST", "/payments", map[string]interface{}{
		"membership_fee": decimal.NewFromInt(25),
		"loan_repayment": decimal.NewFromInt(20),
		"gateway_ref":    "gw-001",
	})
	req = testutil.WithMember(req, testutil.MemberWithID(m.ID))
	rec := httptest.NewRecorder()
	d.handler.HandleCreate(rec, req)

	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "no active loan to repay") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestRepaymentSettlesLoan(t *testing.T) {
	d := newTestHandler(t)
	ctx := testutil.TestContext(t)
	f := testutil.NewFixtures(t, d.db)
	m := f.CreateMember(ctx, "amy", decimal.NewFromInt(100), decimal.Zero)
	loan := f.CreateLoan(ctx, m.ID, 1403, 1, decimal.NewFromInt(40), models.LoanStateActive)

	req := testutil.NewJSONRequest(t, "POST", "/payments", map[string]interface{}{
		"membership_fee": decimal.NewFromInt(20),
		"loan_repayment": decimal.NewFromInt(40),
		"gateway_ref":    "gw-001",
	})
	req = testutil.WithMember(req, testutil.MemberWithID(m.ID))
	rec := httptest.NewRecorder()
	d.handler.HandleCreate(rec, req)

	if rec.Code != 201 {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}

	got, err := d.loans.GetByID(ctx, loan.ID)
	if err != nil {
		t.Fatalf("reload loan: %v", err)
	}
	if got.State != models.LoanStateSettled {
		t.Errorf("loan state = %q, want %q", got.State, models.LoanStateSettled)
	}

	// Only the fee portion lands on the member's balance.
	member, err := d.members.GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("reload member: %v", err)
	}
	if !member.Balance.Equal(decimal.NewFromInt(120)) {
		t.Errorf("balance = %s, want 120", member.Balance)
	}
}

func TestRepaymentExceedsRemaining(t *testing.T) {
	d := newTestHandler(t)
	ctx := testutil.TestContext(t)
	f := testutil.NewFixtures(t, d.db)
	m := f.CreateMember(ctx, "amy", decimal.Zero, decimal.Zero)
	f.CreateLoan(ctx, m.ID, 1403, 1, decimal.NewFromInt(40), models.LoanStateActive)

	req := testutil.NewJSONRequest(t, "POST", "/payments", map[string]interface{}{
		"membership_fee": decimal.NewFromInt(20),
		"loan_repayment": decimal.NewFromInt(50),
		"gateway_ref":    "gw-001",
	})
	req = testutil.WithMember(req, testutil.MemberWithID(m.ID))
	rec := httptest.NewRecorder()
	d.handler.HandleCreate(rec, req)

	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "exceeds remaining balance") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestRepaymentBelowMinInstallment(t *testing.T) {
	d := newTestHandler(t)
	ctx := testutil.TestContext(t)
	f := testutil.NewFixtures(t, d.db)
	m := f.CreateMember(ctx, "amy", decimal.Zero, decimal.Zero)
	f.CreateLoan(ctx, m.ID, 1403, 1, decimal.NewFromInt(100), models.LoanStateActive)

	req := testutil.NewJSONRequest(t, "POST", "/payments", map[string]interface{}{
		"membership_fee": decimal.NewFromInt(20),
		"loan_repayment": decimal.NewFromInt(10),
		"gateway_ref":    "gw-001",
	})
	req = testutil.WithMember(req, testutil.MemberWithID(m.ID))
	rec := httptest.NewRecorder()
	d.handler.HandleCreate(rec, req)

	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "repayment must be at least") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestListMine(t *testing.T) {
	d := newTestHandler(t)
	ctx := testutil.TestContext(t)
	f := testutil.NewFixtures(t, d.db)
	m := f.CreateMember(ctx, "amy", decimal.Zero, decimal.Zero)
	other := f.CreateMember(ctx, "bob", decimal.Zero, decimal.Zero)
	p := jalali.Current()
	f.CreatePayment(ctx, m.ID, p.Year, p.Month, decimal.NewFromInt(20))
	f.CreatePayment(ctx, other.ID, p.Year, p.Month, decimal.NewFromInt(20))

	req := httptest.NewRequest("GET", "/payments/mine", nil)
	req = testutil.WithMember(req, testutil.MemberWithID(m.ID))
	rec := httptest.NewRecorder()
	d.handler.HandleMine(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var list []models.Payment
	testutil.DecodeJSON(t, rec, &list)
	if len(list) != 1 {
		t.Fatalf("got %d payments, want 1", len(list))
	}
	if list[0].MemberID != m.ID {
		t.Errorf("payment member = %s, want %s", list[0].MemberID.Hex(), m.ID.Hex())
	}
}
