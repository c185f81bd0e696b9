// internal/domain/assign/eligibility.go
package assign

import "github.com/shopspring/decimal"

// Exclusion reason codes. These are a closed set recorded verbatim in audit
// logs and shown to members, so they must stay stable.
const (
	ReasonRequestExceedsBalance = "request_exceeds_balance"
	ReasonActiveLoan            = "active_loan"
	ReasonOptedOut              = "opted_out"
	ReasonInsufficientFund      = "insufficient_fund_balance"
)

// MemberSnapshot is the engine's view of one active member, captured before
// the run starts. IDs are opaque strings; the engine never touches storage.
type MemberSnapshot struct {
	ID              string
	Username        string
	Balance         decimal.Decimal
	RequestedAmount decimal.Decimal
	HasActiveLoan   bool
	Privileged      bool
}

// Classification is the outcome of the eligibility filter for one member.
type Classification struct {
	Eligible bool
	Reason   string // reason code, set iff !Eligible
}

// Classify applies the eligibility rules in fixed order; the first matching
// rule wins and ties favor exclusion.
func Classify(m MemberSnapshot) Classification {
	if !m.Privileged && m.RequestedAmount.Cmp(m.Balance) > 0 {
		return Classification{Reason: ReasonRequestExceedsBalance}
	}
	if m.HasActiveLoan {
		return Classification{Reason: ReasonActiveLoan}
	}
	if m.RequestedAmount.Sign() <= 0 {
		return Classification{Reason: ReasonOptedOut}
	}
	return Classification{Eligible: true}
}

// Solvent splits the eligible set into members whose request fits within the
// fund balance and those it cannot cover. Members in the second group stay
// "eligible" in classification terms but are excluded from scoring.
func Solvent(eligible []MemberSnapshot, fundBalance decimal.Decimal) (in, out []MemberSnapshot) {
	for _, m := range eligible {
		if m.RequestedAmount.Cmp(fundBalance) <= 0 {
			in = append(in, m)
		} else {
			out = append(out, m)
		}
	}
	return in, out
}
