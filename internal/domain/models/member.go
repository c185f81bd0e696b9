// internal/domain/models/member.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member is a participant in the fund.
//
// Balance is the running total of every membership fee the member has paid;
// it only grows. LoanRequestAmount is what the member wants from the next
// assignment run — zero means they are sitting this period out.
type Member struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	FullName     string             `bson:"full_name" json:"full_name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"`     // admin | member
	Status       string             `bson:"status" json:"status"` // active | disabled

	Balance           decimal.Decimal `bson:"balance" json:"balance"`
	LoanRequestAmount decimal.Decimal `bson:"loan_request_amount" json:"loan_request_amount"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsAdmin reports whether the member is an administrative (main) member.
// Admins bypass the balance-sufficiency eligibility rule.
func (m *Member) IsAdmin() bool { return m.Role == RoleAdmin }

// Member roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Member statuses.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)
