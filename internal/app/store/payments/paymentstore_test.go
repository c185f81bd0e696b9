package paymentstore

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sandoghapp/sandogh/internal/app/system/jalali"
	"github.com/sandoghapp/sandogh/internal/domain/models"
	"github.com/sandoghapp/sandogh/internal/testutil"
)

func uniqueMemberPeriodIndex(t *testing.T, db *mongo.Database) {
	t.Helper()
	ctx := testutil.TestContext(t)
	_, err := db.Collection("payments").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "member_id", Value: 1},
			{Key: "jalali_year", Value: 1},
			{Key: "jalali_month", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		t.Fatalf("create unique index: %v", err)
	}
}

func TestInsertRejectsSecondPaymentForPeriod(t *testing.T) {
	db := testutil.SetupTestDB(t)
	uniqueMemberPeriodIndex(t, db)
	ctx := testutil.TestContext(t)
	s := New(db)
	f := testutil.NewFixtures(t, db)

	m := f.CreateMember(ctx, "alice", decimal.NewFromInt(100), decimal.Zero)

	p := models.Payment{
		MemberID:      m.ID,
		Amount:        decimal.NewFromInt(20),
		JalaliYear:    1403,
		JalaliMonth:   5,
		GatewayRef:    "ref-1",
		MembershipFee: decimal.NewFromInt(20),
	}
	first, err := s.Insert(ctx, p)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if first.ID == "" {
		t.Fatal("Insert did not assign a UUID")
	}

	p.GatewayRef = "ref-2"
	if _, err := s.Insert(ctx, p); !errors.Is(err, ErrDuplicatePayment) {
		t.Fatalf("second Insert err = %v, want ErrDuplicatePayment", err)
	}
}

func TestPaidMemberIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	s := New(db)
	f := testutil.NewFixtures(t, db)

	alice := f.CreateMember(ctx, "alice", decimal.NewFromInt(100), decimal.Zero)
	bob := f.CreateMember(ctx, "bob", decimal.NewFromInt(100), decimal.Zero)

	f.CreatePayment(ctx, alice.ID, 1403, 5, decimal.NewFromInt(20))
	f.CreatePayment(ctx, bob.ID, 1403, 4, decimal.NewFromInt(20)) // previous month

	paid, err := s.PaidMemberIDs(ctx, jalali.YearMonth{Year: 1403, Month: 5})
	if err != nil {
		t.Fatalf("PaidMemberIDs: %v", err)
	}
	if !paid[alice.ID] {
		t.Error("alice paid this period but is missing from the set")
	}
	if paid[bob.ID] {
		t.Error("bob paid a different period but appears in the set")
	}
}

func TestStatsByMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	s := New(db)
	f := testutil.NewFixtures(t, db)

	m := f.CreateMember(ctx, "carol", decimal.NewFromInt(100), decimal.Zero)
	loan := f.CreateLoan(ctx, m.ID, 1402, 10, decimal.NewFromInt(60), models.LoanStateActive)

	f.CreatePayment(ctx, m.ID, 1402, 11, decimal.NewFromInt(20))
	f.CreateRepayment(ctx, m.ID, 1402, 12, decimal.NewFromInt(20), decimal.NewFromInt(30), loan.ID)
	f.CreateRepayment(ctx, m.ID, 1403, 1, decimal.NewFromInt(20), decimal.NewFromInt(10), loan.ID)

	stats, err := s.StatsByMember(ctx, m.ID)
	if err != nil {
		t.Fatalf("StatsByMember: %v", err)
	}
	if !stats.HasPayments {
		t.Error("HasPayments = false")
	}
	if stats.PeriodsPaid != 3 {
		t.Errorf("PeriodsPaid = %d, want 3", stats.PeriodsPaid)
	}
	if stats.RepaymentCount != 2 {
		t.Errorf("RepaymentCount = %d, want 2", stats.RepaymentCount)
	}
	// Last payment is 1403/1: fee 20 + repayment 10.
	if !stats.LastPaymentAmount.Equal(decimal.NewFromInt(30)) {
		t.Errorf("LastPaymentAmount = %s, want 30", stats.LastPaymentAmount)
	}
	if !stats.LastRepayment.Equal(decimal.NewFromInt(10)) {
		t.Errorf("LastRepayment = %s, want 10", stats.LastRepayment)
	}
}

func TestStatsByMemberEmpty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	s := New(db)
	f := testutil.NewFixtures(t, db)

	m := f.CreateMember(ctx, "dave", decimal.NewFromInt(100), decimal.Zero)

	stats, err := s.StatsByMember(ctx, m.ID)
	if err != nil {
		t.Fatalf("StatsByMember: %v", err)
	}
	if stats.HasPayments {
		t.Error("HasPayments = true with no payments")
	}
	if stats.PeriodsPaid != 0 || stats.RepaymentCount != 0 {
		t.Errorf("stats = %+v, want zeroes", stats)
	}
}

func TestTotalRepaid(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	s := New(db)
	f := testutil.NewFixtures(t, db)

	m := f.CreateMember(ctx, "erin", decimal.NewFromInt(100), decimal.Zero)
	loan := f.CreateLoan(ctx, m.ID, 1402, 8, decimal.NewFromInt(60), models.LoanStateActive)
	otherLoan := f.CreateLoan(ctx, m.ID, 1401, 2, decimal.NewFromInt(40), models.LoanStateSettled)

	f.CreateRepayment(ctx, m.ID, 1402, 9, decimal.NewFromInt(20), decimal.NewFromInt(25), loan.ID)
	f.CreateRepayment(ctx, m.ID, 1402, 10, decimal.NewFromInt(20), decimal.NewFromInt(35), loan.ID)
	f.CreateRepayment(ctx, m.ID, 1401, 3, decimal.NewFromInt(20), decimal.NewFromInt(40), otherLoan.ID)

	total, err := s.TotalRepaid(ctx, loan.ID)
	if err != nil {
		t.Fatalf("TotalRepaid: %v", err)
	}
	if !total.Equal(decimal.NewFromInt(60)) {
		t.Errorf("TotalRepaid = %s, want 60", total)
	}
}
