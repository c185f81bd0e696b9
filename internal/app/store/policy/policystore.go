// internal/app/store/policy/policystore.go
package policystore

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sandoghapp/sandogh/internal/domain/models"
)

var errBadPolicy = errors.New("policy amounts must be positive")

// Store manages the fund policy singleton.
type Store struct {
	c *mongo.Collection
}

// New creates a policy Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("fund_policy")}
}

// Get returns the fund policy, seeding the default document on first read.
func (s *Store) Get(ctx context.Context) (models.FundPolicy, error) {
	var p models.FundPolicy
	err := s.c.FindOne(ctx, bson.M{"_id": models.FundPolicyID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		p = models.DefaultFundPolicy()
		if _, insErr := s.c.InsertOne(ctx, p); insErr != nil {
			// Lost a seed race; the other writer's document wins.
			err = s.c.FindOne(ctx, bson.M{"_id": models.FundPolicyID}).Decode(&p)
			if err != nil {
				return models.FundPolicy{}, err
			}
		}
		return p, nil
	}
	if err != nil {
		return models.FundPolicy{}, err
	}
	return p, nil
}

// Update replaces the policy values.
func (s *Store) Update(ctx context.Context, minFee, minInstallment decimal.Decimal, maxMonths int) (models.FundPolicy, error) {
	if !minFee.IsPositive() || !minInstallment.IsPositive() || maxMonths <= 0 {
		return models.FundPolicy{}, errBadPolicy
	}

	p := models.FundPolicy{
		ID:                   models.FundPolicyID,
		MinMembershipFee:     minFee,
		MinLoanInstallment:   minInstallment,
		MaxInstallmentMonths: maxMonths,
		UpdatedAt:            time.Now(),
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.c.ReplaceOne(ctx, bson.M{"_id": models.FundPolicyID}, p, opts); err != nil {
		return models.FundPolicy{}, err
	}
	return p, nil
}
