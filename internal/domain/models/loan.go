// internal/domain/models/loan.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Loan states.
//
//   - pending: an assignment run has started for this period (transient,
//     never observed once the run commits)
//   - active: a member won the assignment and is repaying
//   - unfulfilled: the run completed but nobody could receive the loan
//   - settled: the loan has been fully repaid
const (
	LoanStatePending     = "pending"
	LoanStateActive      = "active"
	LoanStateUnfulfilled = "unfulfilled"
	LoanStateSettled     = "settled"
)

// Loan is one period's assignment outcome. At most one Loan exists per
// (jalali_year, jalali_month); the unique index on that pair is what makes
// concurrent assignment runs safe.
//
// MinInstallment is copied from the fund policy when the loan is created and
// never changes afterward, even if the policy does.
type Loan struct {
	ID       string              `bson:"_id" json:"id"` // uuid
	MemberID *primitive.ObjectID `bson:"member_id,omitempty" json:"member_id,omitempty"`
	Amount   *decimal.Decimal    `bson:"amount,omitempty" json:"amount,omitempty"`
	State    string              `bson:"state" json:"state"`

	JalaliYear  int `bson:"jalali_year" json:"jalali_year"`
	JalaliMonth int `bson:"jalali_month" json:"jalali_month"`

	MinInstallment decimal.Decimal `bson:"min_installment" json:"min_installment"`
	Audit          AssignmentAudit `bson:"audit" json:"audit"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// AssignmentAudit is the immutable record of how an assignment run treated
// every active member. Each member active in the period appears in exactly
// one of Participated or NotParticipated.
type AssignmentAudit struct {
	Participated    []ParticipantEntry    `bson:"participated" json:"participated"`
	NotParticipated []NonParticipantEntry `bson:"not_participated" json:"not_participated"`

	// SelectedID is the winner, present iff the loan is active.
	SelectedID *primitive.ObjectID `bson:"selected_id,omitempty" json:"selected_id,omitempty"`

	// Pool holds every member the winner was drawn from, even when it had
	// exactly one entry.
	Pool []primitive.ObjectID `bson:"pool" json:"pool"`

	// UnfulfilledReason distinguishes why an unfulfilled run produced no
	// winner: no_eligible_members or insufficient_fund_balance.
	UnfulfilledReason string `bson:"unfulfilled_reason,omitempty" json:"unfulfilled_reason,omitempty"`
}

// ParticipantEntry records a scored member. Score is "unlimited" or the
// decimal rendering of the finite score.
type ParticipantEntry struct {
	MemberID primitive.ObjectID `bson:"member_id" json:"member_id"`
	Username string             `bson:"username" json:"username"`
	Score    string             `bson:"score" json:"score"`
}

// NonParticipantEntry records a member excluded before scoring, with one of
// the closed reason codes from the assign package.
type NonParticipantEntry struct {
	MemberID primitive.ObjectID `bson:"member_id" json:"member_id"`
	Username string             `bson:"username" json:"username"`
	Reason   string             `bson:"reason" json:"reason"`
}
