// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sandoghapp/sandogh/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateMember inserts an active member with the given balance and loan
// request amount.
func (f *Fixtures) CreateMember(ctx context.Context, username string, balance, requested decimal.Decimal) models.Member {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Member{
		ID:                primitive.NewObjectID(),
		Username:          username,
		FullName:          "Test " + username,
		Email:             username + "@test.com",
		PasswordHash:      "x",
		Role:              models.RoleMember,
		Status:            models.StatusActive,
		Balance:           balance,
		LoanRequestAmount: requested,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if _, err := f.db.Collection("members").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test member: %v", err)
	}
	return m
}

// CreateAdmin inserts an active admin member.
func (f *Fixtures) CreateAdmin(ctx context.Context, username string) models.Member {
	f.t.Helper()

	m := f.CreateMember(ctx, username, decimal.Zero, decimal.Zero)
	_, err := f.db.Collection("members").UpdateByID(ctx, m.ID,
		map[string]interface{}{"$set": map[string]interface{}{"role": models.RoleAdmin}})
	if err != nil {
		f.t.Fatalf("failed to promote test member: %v", err)
	}
	m.Role = models.RoleAdmin
	return m
}

// CreatePayment inserts a payment for the member in the given Jalali
// period. The whole amount counts as membership fee.
func (f *Fixtures) CreatePayment(ctx context.Context, memberID primitive.ObjectID, year, month int, amount decimal.Decimal) models.Payment {
	f.t.Helper()

	p := models.Payment{
		ID:            uuid.NewString(),
		MemberID:      memberID,
		Amount:        amount,
		JalaliYear:    year,
		JalaliMonth:   month,
		GatewayRef:    "test-ref",
		MembershipFee: amount,
		CreatedAt:     time.Now().UTC(),
	}

	if _, err := f.db.Collection("payments").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test payment: %v", err)
	}
	return p
}

// CreateRepayment inserts a payment whose amount is split between the
// membership fee and a repayment against loanID.
func (f *Fixtures) CreateRepayment(ctx context.Context, memberID primitive.ObjectID, year, month int, fee, repaid decimal.Decimal, loanID string) models.Payment {
	f.t.Helper()

	p := models.Payment{
		ID:            uuid.NewString(),
		MemberID:      memberID,
		Amount:        fee.Add(repaid),
		JalaliYear:    year,
		JalaliMonth:   month,
		GatewayRef:    "test-ref",
		MembershipFee: fee,
		LoanRepayment: &models.LoanRepayment{LoanID: loanID, Amount: repaid},
		CreatedAt:     time.Now().UTC(),
	}

	if _, err := f.db.Collection("payments").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test repayment: %v", err)
	}
	return p
}

// CreateLoan inserts a loan in the given state for the member and period.
func (f *Fixtures) CreateLoan(ctx context.Context, memberID primitive.ObjectID, year, month int, amount decimal.Decimal, state string) models.Loan {
	f.t.Helper()

	loan := models.Loan{
		ID:             uuid.NewString(),
		MemberID:       &memberID,
		Amount:         &amount,
		State:          state,
		JalaliYear:     year,
		JalaliMonth:    month,
		MinInstallment: decimal.NewFromInt(20),
		CreatedAt:      time.Now().UTC(),
	}

	if _, err := f.db.Collection("loans").InsertOne(ctx, loan); err != nil {
		f.t.Fatalf("failed to create test loan: %v", err)
	}
	return loan
}
