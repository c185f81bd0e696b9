// internal/domain/models/fundpolicy.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FundPolicy is the fund's single configuration document. The assignment
// engine reads it once per run and snapshots MinLoanInstallment onto the
// created Loan; it never writes it back.
type FundPolicy struct {
	ID                   string          `bson:"_id" json:"-"` // always "fund_policy"
	MinMembershipFee     decimal.Decimal `bson:"min_membership_fee" json:"min_membership_fee"`
	MinLoanInstallment   decimal.Decimal `bson:"min_loan_installment" json:"min_loan_installment"`
	MaxInstallmentMonths int             `bson:"max_installment_months" json:"max_installment_months"`
	UpdatedAt            time.Time       `bson:"updated_at" json:"updated_at"`
}

// FundPolicyID is the fixed _id of the singleton policy document.
const FundPolicyID = "fund_policy"

// DefaultFundPolicy returns the policy seeded on first startup.
func DefaultFundPolicy() FundPolicy {
	return FundPolicy{
		ID:                   FundPolicyID,
		MinMembershipFee:     decimal.NewFromInt(20),
		MinLoanInstallment:   decimal.NewFromInt(20),
		MaxInstallmentMonths: 24,
	}
}
