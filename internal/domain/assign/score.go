// internal/domain/assign/score.go
package assign

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Score is a member's assignment priority: either the unlimited sentinel or
// a non-negative finite value. Unlimited outranks every finite score; among
// finite scores, higher wins. It is an explicit tagged value rather than a
// floating-point infinity so comparisons stay exact.
type Score struct {
	unlimited bool
	value     decimal.Decimal
}

// UnlimitedScore returns the highest-priority score, given to members with
// no prior loan history.
func UnlimitedScore() Score { return Score{unlimited: true} }

// FiniteScore returns a ranked finite score.
func FiniteScore(v decimal.Decimal) Score { return Score{value: v} }

// IsUnlimited reports whether the score is the unlimited sentinel.
func (s Score) IsUnlimited() bool { return s.unlimited }

// Value returns the finite value; only meaningful when !IsUnlimited().
func (s Score) Value() decimal.Decimal { return s.value }

// Cmp orders scores: -1 if s ranks below o, 0 if equal rank, +1 if above.
func (s Score) Cmp(o Score) int {
	switch {
	case s.unlimited && o.unlimited:
		return 0
	case s.unlimited:
		return 1
	case o.unlimited:
		return -1
	default:
		return s.value.Cmp(o.value)
	}
}

// String renders the score for audit records: "unlimited" or the decimal
// value. These strings are part of the user-visible audit contract.
func (s Score) String() string {
	if s.unlimited {
		return "unlimited"
	}
	return s.value.String()
}

// History is everything the scoring function needs to know about a member's
// payment and borrowing past. The payment ledger assembles it; the engine
// never queries storage itself.
type History struct {
	// HasPayments is false when the member has never paid at all.
	HasPayments bool
	// LastPaymentAmount is the total amount of the most recent payment.
	LastPaymentAmount decimal.Decimal
	// RepaymentCount is the number of loan repayment records ever made.
	RepaymentCount int
	// TotalGranted is the cumulative amount granted across all loans the
	// member has received.
	TotalGranted decimal.Decimal
	// GrantCount is the number of loans the member has received.
	GrantCount int
	// LastGrantAmount is the amount of the most recent loan received, zero
	// if none.
	LastGrantAmount decimal.Decimal
	// PeriodsContributed is the number of periods the member paid in.
	PeriodsContributed int
	// PeriodsWithRepayment is the number of distinct periods in which the
	// member made a loan repayment.
	PeriodsWithRepayment int
}

var one = decimal.NewFromInt(1)

// ComputeScore implements the fairness scoring rule.
//
// The denominator is evaluated first; any factor that would make it zero or
// negative short-circuits to the unlimited score, so a member with no prior
// loan history always outranks one with any. A collapsed numerator yields
// finite zero, which still ranks (at the bottom of the finite range) and is
// deliberately distinct from unlimited.
//
// Monetary arithmetic stays in decimals; logarithms go through a float
// approximation because they only feed ranking, not money. The guards above
// each log make a domain error unreachable, so one actually occurring is an
// invariant violation and returns an error.
func ComputeScore(m MemberSnapshot, h History) (Score, error) {
	// Denominator factors, in rule order.
	if !h.HasPayments || h.LastPaymentAmount.Sign() <= 0 {
		return UnlimitedScore(), nil
	}
	if h.RepaymentCount == 0 {
		return UnlimitedScore(), nil
	}
	if h.TotalGranted.Cmp(one) <= 0 {
		return UnlimitedScore(), nil
	}
	lnTotalGranted, err := lnAboveOne(h.TotalGranted)
	if err != nil {
		return Score{}, err
	}
	if h.GrantCount == 0 {
		return UnlimitedScore(), nil
	}
	if m.RequestedAmount.Cmp(one) <= 0 {
		return UnlimitedScore(), nil
	}
	lnRequested, err := lnAboveOne(m.RequestedAmount)
	if err != nil {
		return Score{}, err
	}

	denominator := h.LastPaymentAmount.
		Mul(decimal.NewFromInt(int64(h.RepaymentCount))).
		Mul(lnTotalGranted).
		Mul(decimal.NewFromInt(int64(h.GrantCount))).
		Mul(lnRequested)
	if denominator.Sign() <= 0 {
		return UnlimitedScore(), nil
	}

	// Numerator factors: each log floors at zero instead of short-circuiting.
	monthsWithoutGrant := h.PeriodsContributed - h.PeriodsWithRepayment
	if monthsWithoutGrant < 0 {
		monthsWithoutGrant = 0
	}

	numerator := lnFloorZero(h.LastGrantAmount).
		Mul(lnFloorZero(m.Balance)).
		Mul(decimal.NewFromInt(int64(monthsWithoutGrant)))
	if numerator.Sign() <= 0 {
		return FiniteScore(decimal.Zero), nil
	}

	return FiniteScore(numerator.Div(denominator)), nil
}

// lnAboveOne takes the natural log of a value the caller has already checked
// to be > 1, so the result must be strictly positive.
func lnAboveOne(d decimal.Decimal) (decimal.Decimal, error) {
	l := math.Log(d.InexactFloat64())
	if math.IsNaN(l) || math.IsInf(l, 0) || l <= 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: ln(%s) = %v despite >1 guard", ErrInvariant, d, l)
	}
	return decimal.NewFromFloat(l), nil
}

// lnFloorZero returns ln(d) when that is positive, otherwise zero.
func lnFloorZero(d decimal.Decimal) decimal.Decimal {
	if d.Cmp(one) <= 0 {
		return decimal.Zero
	}
	l := math.Log(d.InexactFloat64())
	if math.IsNaN(l) || math.IsInf(l, 0) || l <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(l)
}
