// internal/domain/models/payment.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment is one member's payment for one Jalali month. A member can have at
// most one payment per period (unique index on member_id+year+month).
//
// Amount is the full transferred sum: the membership fee portion plus an
// optional loan repayment portion. GatewayRef is the exchange-side payment
// identifier the operator used to verify the transfer; verification itself
// happens outside this service.
type Payment struct {
	ID       string             `bson:"_id" json:"id"` // uuid
	MemberID primitive.ObjectID `bson:"member_id" json:"member_id"`
	Amount   decimal.Decimal    `bson:"amount" json:"amount"`

	JalaliYear  int `bson:"jalali_year" json:"jalali_year"`
	JalaliMonth int `bson:"jalali_month" json:"jalali_month"`

	GatewayRef string `bson:"gateway_ref" json:"gateway_ref"`

	MembershipFee decimal.Decimal `bson:"membership_fee" json:"membership_fee"`
	LoanRepayment *LoanRepayment  `bson:"loan_repayment,omitempty" json:"loan_repayment,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// LoanRepayment is the portion of a payment that repays an active loan.
type LoanRepayment struct {
	LoanID string          `bson:"loan_id" json:"loan_id"`
	Amount decimal.Decimal `bson:"amount" json:"amount"`
}
