// internal/app/features/loans/collaborators.go
package loans

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	loanstore "github.com/sandoghapp/sandogh/internal/app/store/loans"
	memberstore "github.com/sandoghapp/sandogh/internal/app/store/members"
	paymentstore "github.com/sandoghapp/sandogh/internal/app/store/payments"
	policystore "github.com/sandoghapp/sandogh/internal/app/store/policy"
	"github.com/sandoghapp/sandogh/internal/app/system/jalali"
	"github.com/sandoghapp/sandogh/internal/domain/assign"
	"github.com/sandoghapp/sandogh/internal/domain/models"
)

// The engine works on opaque string IDs and (year, month) pairs; these
// adapters translate between that world and the mongo stores.

type memberSource struct {
	members *memberstore.Store
	loans   *loanstore.Store
}

func (s memberSource) ActiveMembers(ctx context.Context) ([]assign.MemberSnapshot, error) {
	active, err := s.members.ActiveMembers(ctx)
	if err != nil {
		return nil, err
	}

	snaps := make([]assign.MemberSnapshot, 0, len(active))
	for _, m := range active {
		hasLoan, err := s.loans.HasActiveLoan(ctx, m.ID)
		if err != nil {
			return nil, fmt.Errorf("active loan check for %s: %w", m.ID.Hex(), err)
		}
		snaps = append(snaps, assign.MemberSnapshot{
			ID:              m.ID.Hex(),
			Username:        m.Username,
			Balance:         m.Balance,
			RequestedAmount: m.LoanRequestAmount,
			HasActiveLoan:   hasLoan,
			Privileged:      m.IsAdmin(),
		})
	}
	return snaps, nil
}

type ledger struct {
	payments *paymentstore.Store
	loans    *loanstore.Store
}

func (l ledger) PaidMembers(ctx context.Context, p assign.Period) (map[string]bool, error) {
	paid, err := l.payments.PaidMemberIDs(ctx, jalali.YearMonth{Year: p.Year, Month: p.Month})
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(paid))
	for id := range paid {
		out[id.Hex()] = true
	}
	return out, nil
}

func (l ledger) History(ctx context.Context, memberID string) (assign.History, error) {
	oid, err := primitive.ObjectIDFromHex(memberID)
	if err != nil {
		return assign.History{}, fmt.Errorf("bad member id %q: %w", memberID, err)
	}

	pay, err := l.payments.StatsByMember(ctx, oid)
	if err != nil {
		return assign.History{}, err
	}
	grants, err := l.loans.GrantStatsByMember(ctx, oid)
	if err != nil {
		return assign.History{}, err
	}

	return assign.History{
		HasPayments:        pay.HasPayments,
		LastPaymentAmount:  pay.LastPaymentAmount,
		RepaymentCount:     pay.RepaymentCount,
		TotalGranted:       grants.TotalGranted,
		GrantCount:         grants.GrantCount,
		LastGrantAmount:    grants.LastGrant,
		PeriodsContributed: pay.PeriodsPaid,
		// One payment per member per period, so repayment records and
		// repayment periods coincide.
		PeriodsWithRepayment: pay.RepaymentCount,
	}, nil
}

type policySource struct {
	policy *policystore.Store
}

func (s policySource) MinInstallment(ctx context.Context) (decimal.Decimal, error) {
	p, err := s.policy.Get(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return p.MinLoanInstallment, nil
}

type assignmentStore struct {
	loans *loanstore.Store
}

func (s assignmentStore) Existing(ctx context.Context, p assign.Period) (string, bool, error) {
	loan, err := s.loans.ByPeriod(ctx, jalali.YearMonth{Year: p.Year, Month: p.Month})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return loan.ID, true, nil
}

func (s assignmentStore) Commit(ctx context.Context, rec assign.Record) (string, error) {
	loan := models.Loan{
		State:          rec.State,
		JalaliYear:     rec.Period.Year,
		JalaliMonth:    rec.Period.Month,
		MinInstallment: rec.MinInstallment,
		Audit:          toModelAudit(rec.Audit),
	}
	if rec.State == assign.StateActive {
		oid, err := primitive.ObjectIDFromHex(rec.WinnerID)
		if err != nil {
			return "", fmt.Errorf("bad winner id %q: %w", rec.WinnerID, err)
		}
		amount := rec.Amount
		loan.MemberID = &oid
		loan.Amount = &amount
	}

	created, err := s.loans.Insert(ctx, loan)
	if errors.Is(err, loanstore.ErrDuplicatePeriod) {
		return "", assign.ErrPeriodTaken
	}
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

func toModelAudit(a assign.Audit) models.AssignmentAudit {
	out := models.AssignmentAudit{
		Participated:      make([]models.ParticipantEntry, 0, len(a.Participated)),
		NotParticipated:   make([]models.NonParticipantEntry, 0, len(a.NotParticipated)),
		Pool:              make([]primitive.ObjectID, 0, len(a.Pool)),
		UnfulfilledReason: a.UnfulfilledReason,
	}
	for _, p := range a.Participated {
		out.Participated = append(out.Participated, models.ParticipantEntry{
			MemberID: mustOID(p.MemberID),
			Username: p.Username,
			Score:    p.Score,
		})
	}
	for _, n := range a.NotParticipated {
		out.NotParticipated = append(out.NotParticipated, models.NonParticipantEntry{
			MemberID: mustOID(n.MemberID),
			Username: n.Username,
			Reason:   n.Reason,
		})
	}
	for _, id := range a.Pool {
		out.Pool = append(out.Pool, mustOID(id))
	}
	if a.SelectedID != "" {
		oid := mustOID(a.SelectedID)
		out.SelectedID = &oid
	}
	return out
}

// mustOID converts IDs that originated from ObjectIDs in memberSource; a
// bad one can only mean memory corruption, so a zero ID is acceptable.
func mustOID(hex string) primitive.ObjectID {
	oid, _ := primitive.ObjectIDFromHex(hex)
	return oid
}
