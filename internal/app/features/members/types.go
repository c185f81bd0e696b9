// internal/app/features/members/types.go
package members

import (
	"github.com/shopspring/decimal"

	"github.com/sandoghapp/sandogh/internal/domain/models"
)

// memberView is the JSON shape members are rendered as. Password hashes
// never leave the store layer.
type memberView struct {
	ID                string          `json:"id"`
	Username          string          `json:"username"`
	FullName          string          `json:"full_name"`
	Email             string          `json:"email"`
	Role              string          `json:"role"`
	Status            string          `json:"status"`
	Balance           decimal.Decimal `json:"balance"`
	LoanRequestAmount decimal.Decimal `json:"loan_request_amount"`
}

func toView(m models.Member) memberView {
	return memberView{
		ID:                m.ID.Hex(),
		Username:          m.Username,
		FullName:          m.FullName,
		Email:             m.Email,
		Role:              m.Role,
		Status:            m.Status,
		Balance:           m.Balance,
		LoanRequestAmount: m.LoanRequestAmount,
	}
}
