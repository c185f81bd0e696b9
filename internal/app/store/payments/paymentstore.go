// internal/app/store/payments/paymentstore.go
package paymentstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sandoghapp/sandogh/internal/app/system/jalali"
	"github.com/sandoghapp/sandogh/internal/domain/models"
)

// ErrDuplicatePayment is returned when the member already has a payment
// recorded for the same Jalali period.
var ErrDuplicatePayment = errors.New("a payment already exists for this member and period")

// Store manages payment records.
type Store struct {
	c *mongo.Collection
}

// New creates a payment Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("payments")}
}

// Insert persists a new payment. The unique index on
// (member_id, jalali_year, jalali_month) enforces one payment per member
// per period.
func (s *Store) Insert(ctx context.Context, p models.Payment) (models.Payment, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now()

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Payment{}, ErrDuplicatePayment
		}
		return models.Payment{}, err
	}
	return p, nil
}

// PaidMemberIDs returns the set of members who have a payment recorded for
// the given period.
func (s *Store) PaidMemberIDs(ctx context.Context, p jalali.YearMonth) (map[primitive.ObjectID]bool, error) {
	filter := bson.M{"jalali_year": p.Year, "jalali_month": p.Month}
	cursor, err := s.c.Find(ctx, filter, options.Find().SetProjection(bson.M{"member_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	paid := make(map[primitive.ObjectID]bool)
	for cursor.Next(ctx) {
		var doc struct {
			MemberID primitive.ObjectID `bson:"member_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		paid[doc.MemberID] = true
	}
	return paid, cursor.Err()
}

// MemberStats summarizes one member's payment history for scoring.
//
// Because a member has at most one payment per period, RepaymentCount also
// equals the number of distinct periods with a repayment.
type MemberStats struct {
	HasPayments       bool
	LastPaymentAmount decimal.Decimal
	PeriodsPaid       int
	RepaymentCount    int
	LastRepayment     decimal.Decimal
}

// StatsByMember walks the member's payments oldest-first and derives the
// aggregate figures the assignment scoring needs.
func (s *Store) StatsByMember(ctx context.Context, memberID primitive.ObjectID) (MemberStats, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "jalali_year", Value: 1},
		{Key: "jalali_month", Value: 1},
	})
	cursor, err := s.c.Find(ctx, bson.M{"member_id": memberID}, opts)
	if err != nil {
		return MemberStats{}, err
	}
	defer cursor.Close(ctx)

	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return MemberStats{}, err
	}

	stats := MemberStats{}
	for _, p := range payments {
		stats.HasPayments = true
		stats.LastPaymentAmount = p.Amount
		stats.PeriodsPaid++
		if p.LoanRepayment != nil {
			stats.RepaymentCount++
			stats.LastRepayment = p.LoanRepayment.Amount
		}
	}
	return stats, nil
}

// TotalRepaid sums the repayment portions recorded against a loan.
func (s *Store) TotalRepaid(ctx context.Context, loanID string) (decimal.Decimal, error) {
	cursor, err := s.c.Find(ctx, bson.M{"loan_repayment.loan_id": loanID})
	if err != nil {
		return decimal.Decimal{}, err
	}
	defer cursor.Close(ctx)

	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return decimal.Decimal{}, err
	}

	total := decimal.Decimal{}
	for _, p := range payments {
		if p.LoanRepayment != nil {
			total = total.Add(p.LoanRepayment.Amount)
		}
	}
	return total, nil
}

// ByMember returns the member's payments, most recent period first.
func (s *Store) ByMember(ctx context.Context, memberID primitive.ObjectID) ([]models.Payment, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "jalali_year", Value: -1},
		{Key: "jalali_month", Value: -1},
	})
	cursor, err := s.c.Find(ctx, bson.M{"member_id": memberID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// List returns recent payments across all members.
func (s *Store) List(ctx context.Context, limit int64) ([]models.Payment, error) {
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cursor, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}
