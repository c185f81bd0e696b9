// internal/app/store/loans/loanstore.go
package loanstore

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

// ErrDuplicatePeriod is returned when a loan record already exists for the
// same Jalali year and month. The unique index on (jalali_year,
// jalali_month) is the serialization point for assignment runs.
var ErrDuplicatePeriod = errors.New("a loan record already exists for this period")

// grantedStates are the states that count as "a loan was granted":
// settled loans remain part of a member's grant history.
var grantedStates = bson.A{models.LoanStateActive, models.LoanStateSettled}

// Store manages loan records.
type Store struct {
	c *mongo.Collection
}

// New creates a loan Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("loans")}
}

// Insert persists a new loan record. The caller fills in state, period and
// audit; the store assigns the UUID and timestamp.
func (s *Store) Insert(ctx context.Context, loan models.Loan) (models.Loan, error) {
	if loan.ID == "" {
		loan.ID = uuid.NewString()
	}
	loan.CreatedAt = time.Now()

	if _, err := s.c.InsertOne(ctx, loan); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Loan{}, ErrDuplicatePeriod
		}
		return models.Loan{}, err
	}
	return loan, nil
}

// GetByID loads a loan by its UUID.
func (s *Store) GetByID(ctx context.Context, id string) (*models.Loan, error) {
	var loan models.Loan
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&loan); err != nil {
		return nil, err
	}
	return &loan, nil
}

// ByPeriod returns the loan record for a Jalali period, or
// mongo.ErrNoDocuments when the period has not been run.
func (s *Store) ByPeriod(ctx context.Context, p jalali.YearMonth) (*models.Loan, error) {
	var loan models.Loan
	filter := bson.M{"jalali_year": p.Year, "jalali_month": p.Month}
	if err := s.c.FindOne(ctx, filter).Decode(&loan); err != nil {
		return nil, err
	}
	return &loan, nil
}

// HasActiveLoan reports whether the member currently holds an unsettled
// loan.
func (s *Store) HasActiveLoan(ctx context.Context, memberID primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"member_id": memberID,
		"state":     models.LoanStateActive,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ActiveByMember returns the member's current active loan, or
// mongo.ErrNoDocuments if they have none.
func (s *Store) ActiveByMember(ctx context.Context, memberID primitive.ObjectID) (*models.Loan, error) {
	var loan models.Loan
	filter := bson.M{"member_id": memberID, "state": models.LoanStateActive}
	if err := s.c.FindOne(ctx, filter).Decode(&loan); err != nil {
		return nil, err
	}
	return &loan, nil
}

// GrantStats summarizes a member's loan history across active and settled
// loans.
type GrantStats struct {
	TotalGranted decimal.Decimal
	GrantCount   int
	LastGrant    decimal.Decimal
}

// GrantStatsByMember aggregates the total amount, count and most recent
// amount of loans ever granted to the member.
func (s *Store) GrantStatsByMember(ctx context.Context, memberID primitive.ObjectID) (GrantStats, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := s.c.Find(ctx, bson.M{
		"member_id": memberID,
		"state":     bson.M{"$in": grantedStates},
	}, opts)
	if err != nil {
		return GrantStats{}, err
	}
	defer cursor.Close(ctx)

	var loans []models.Loan
	if err := cursor.All(ctx, &loans); err != nil {
		return GrantStats{}, err
	}

	stats := GrantStats{}
	for _, loan := range loans {
		if loan.Amount == nil {
			continue
		}
		stats.TotalGranted = stats.TotalGranted.Add(*loan.Amount)
		stats.GrantCount++
		stats.LastGrant = *loan.Amount
	}
	return stats, nil
}

// MarkSettled transitions an active loan to settled. Returns
// mongo.ErrNoDocuments if the loan is missing or not active.
func (s *Store) MarkSettled(ctx context.Context, loanID string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": loanID, "state": models.LoanStateActive},
		bson.M{"$set": bson.M{"state": models.LoanStateSettled}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// List returns loan records, most recent period first.
func (s *Store) List(ctx context.Context, limit int64) ([]models.Loan, error) {
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "jalali_year", Value: -1}, {Key: "jalali_month", Value: -1}}).
		SetLimit(limit)
	cursor, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var loans []models.Loan
	if err := cursor.All(ctx, &loans); err != nil {
		return nil, err
	}
	return loans, nil
}

// ByMember returns every loan ever granted to the member, most recent
// first.
func (s *Store) ByMember(ctx context.Context, memberID primitive.ObjectID) ([]models.Loan, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "jalali_year", Value: -1}, {Key: "jalali_month", Value: -1}})
	cursor, err := s.c.Find(ctx, bson.M{"member_id": memberID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var loans []models.Loan
	if err := cursor.All(ctx, &loans); err != nil {
		return nil, err
	}
	return loans, nil
}
