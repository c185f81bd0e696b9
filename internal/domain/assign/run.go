// internal/domain/assign/run.go

// Package assign implements the loan assignment engine: the eligibility
// filter, the fairness scoring rule, the solvency check, tie-break
// selection, and the orchestrator that runs them once per period and commits
// exactly one assignment record.
//
// The engine is pure computation between two I/O edges: all fund state is
// read up front through the collaborator interfaces, and the single write is
// the final atomic commit. The at-most-one-assignment-per-period guarantee
// rests on the store enforcing period uniqueness at commit time; a losing
// racer observes ErrPeriodTaken and reports a conflict with no partial
// state.
package assign

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/shopspring/decimal"
)

// Period identifies one fund accounting cycle. The engine treats it as an
// opaque key; the calendar package owns its meaning.
type Period struct {
	Year  int
	Month int
}

func (p Period) String() string { return fmt.Sprintf("%d/%d", p.Year, p.Month) }

// Committed assignment states.
const (
	StateActive      = "active"
	StateUnfulfilled = "unfulfilled"
)

// Unfulfilled reason codes, recorded so "nobody was eligible" and "nobody's
// request fit the fund balance" stay distinguishable in the audit trail.
const (
	UnfulfilledNoEligible       = "no_eligible_members"
	UnfulfilledInsufficientFund = "insufficient_fund_balance"
)

// ErrPeriodTaken is returned by AssignmentStore.Commit when an assignment
// already exists for the period. It is an expected race outcome, not a
// failure.
var ErrPeriodTaken = errors.New("assignment already exists for period")

// ErrInvariant marks conditions the scoring contract says cannot happen. A
// run that hits one aborts before committing anything.
var ErrInvariant = errors.New("assignment invariant violated")

// MemberSource provides the active membership with the balances and flags
// the run needs.
type MemberSource interface {
	ActiveMembers(ctx context.Context) ([]MemberSnapshot, error)
}

// Ledger provides payment facts: who has paid for a period, and each
// member's scoring history.
type Ledger interface {
	PaidMembers(ctx context.Context, p Period) (map[string]bool, error)
	History(ctx context.Context, memberID string) (History, error)
}

// PolicySource supplies the fund policy snapshot for the run.
type PolicySource interface {
	MinInstallment(ctx context.Context) (decimal.Decimal, error)
}

// AssignmentStore persists assignment records. Commit must be atomic and
// must reject a second record for the same period with ErrPeriodTaken.
type AssignmentStore interface {
	Existing(ctx context.Context, p Period) (id string, found bool, err error)
	Commit(ctx context.Context, rec Record) (id string, err error)
}

// Record is the assignment the engine asks the store to persist.
type Record struct {
	Period         Period
	State          string // StateActive | StateUnfulfilled
	WinnerID       string // set iff StateActive
	Amount         decimal.Decimal
	MinInstallment decimal.Decimal
	Audit          Audit
}

// Audit is the per-run fairness record. Every member active in the period
// lands in exactly one of Participated or NotParticipated.
type Audit struct {
	Participated      []Participant
	NotParticipated   []NonParticipant
	SelectedID        string
	Pool              []string
	UnfulfilledReason string
}

// Participant is a member who was scored, with the score as rendered for
// the audit trail ("unlimited" or a decimal string).
type Participant struct {
	MemberID string
	Username string
	Score    string
}

// NonParticipant is a member excluded before scoring.
type NonParticipant struct {
	MemberID string
	Username string
	Reason   string
}

// Outcome kinds.
type OutcomeKind string

const (
	OutcomeActive      OutcomeKind = "active"
	OutcomeUnfulfilled OutcomeKind = "unfulfilled"
	OutcomeConflict    OutcomeKind = "conflict"
	OutcomeNotReady    OutcomeKind = "not_ready"
)

// Outcome is the structured result of a run. Which fields are set depends
// on Kind: LoanID/Audit for committed runs, WinnerID/Amount for active,
// ExistingLoanID for conflicts, Unpaid for not-ready.
type Outcome struct {
	Kind           OutcomeKind
	LoanID         string
	WinnerID       string
	Amount         decimal.Decimal
	Audit          *Audit
	ExistingLoanID string
	Unpaid         []string // usernames of members missing a payment
}

// Engine coordinates one assignment run per period.
type Engine struct {
	Members MemberSource
	Ledger  Ledger
	Policy  PolicySource
	Loans   AssignmentStore

	// Pick draws an index in [0,n) for the tie-break; nil means an
	// unbiased math/rand draw. Tests inject it for determinism.
	Pick func(n int) int
}

// NewEngine wires an engine over its collaborators.
func NewEngine(members MemberSource, ledger Ledger, policy PolicySource, loans AssignmentStore) *Engine {
	return &Engine{Members: members, Ledger: ledger, Policy: policy, Loans: loans}
}

// Run executes the assignment for the given period.
//
// Guards run before any scoring work: an existing assignment yields a
// conflict outcome, and any active member without a payment for the period
// yields a not-ready outcome. Neither touches shared state. After the
// guards, the run classifies every active member, drops requests the fund
// cannot cover, scores the remainder, draws the winner from the tie-break
// pool, and commits a single record carrying the full audit log.
//
// An error return means an invariant violation or a collaborator failure;
// in either case nothing was persisted.
func (e *Engine) Run(ctx context.Context, period Period) (Outcome, error) {
	if id, found, err := e.Loans.Existing(ctx, period); err != nil {
		return Outcome{}, fmt.Errorf("check existing assignment: %w", err)
	} else if found {
		return Outcome{Kind: OutcomeConflict, ExistingLoanID: id}, nil
	}

	members, err := e.Members.ActiveMembers(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("load active members: %w", err)
	}

	paid, err := e.Ledger.PaidMembers(ctx, period)
	if err != nil {
		return Outcome{}, fmt.Errorf("load paid members: %w", err)
	}
	var unpaid []string
	for _, m := range members {
		if !paid[m.ID] {
			unpaid = append(unpaid, m.Username)
		}
	}
	if len(unpaid) > 0 {
		return Outcome{Kind: OutcomeNotReady, Unpaid: unpaid}, nil
	}

	minInstallment, err := e.Policy.MinInstallment(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("load fund policy: %w", err)
	}

	// The fund balance counts every active member, ineligible ones included.
	fundBalance := decimal.Zero
	for _, m := range members {
		fundBalance = fundBalance.Add(m.Balance)
	}

	var audit Audit
	var eligible []MemberSnapshot
	for _, m := range members {
		c := Classify(m)
		if !c.Eligible {
			audit.NotParticipated = append(audit.NotParticipated, NonParticipant{
				MemberID: m.ID, Username: m.Username, Reason: c.Reason,
			})
			continue
		}
		eligible = append(eligible, m)
	}

	solvent, unfundable := Solvent(eligible, fundBalance)
	for _, m := range unfundable {
		audit.NotParticipated = append(audit.NotParticipated, NonParticipant{
			MemberID: m.ID, Username: m.Username, Reason: ReasonInsufficientFund,
		})
	}

	if len(solvent) == 0 {
		if len(eligible) == 0 {
			audit.UnfulfilledReason = UnfulfilledNoEligible
		} else {
			audit.UnfulfilledReason = UnfulfilledInsufficientFund
		}
		return e.commit(ctx, Record{
			Period:         period,
			State:          StateUnfulfilled,
			MinInstallment: minInstallment,
			Audit:          audit,
		})
	}

	scored := make([]ScoredMember, 0, len(solvent))
	for _, m := range solvent {
		history, err := e.Ledger.History(ctx, m.ID)
		if err != nil {
			return Outcome{}, fmt.Errorf("load history for %s: %w", m.ID, err)
		}
		score, err := ComputeScore(m, history)
		if err != nil {
			return Outcome{}, err
		}
		scored = append(scored, ScoredMember{Member: m, Score: score})
		audit.Participated = append(audit.Participated, Participant{
			MemberID: m.ID, Username: m.Username, Score: score.String(),
		})
	}

	pool := SelectionPool(scored)
	if len(pool) == 0 {
		return Outcome{}, fmt.Errorf("%w: %d solvent members produced an empty selection pool", ErrInvariant, len(scored))
	}

	for _, c := range pool {
		audit.Pool = append(audit.Pool, c.Member.ID)
	}
	winner := pool[0]
	if len(pool) > 1 {
		winner = pool[e.pick(len(pool))]
	}
	audit.SelectedID = winner.Member.ID

	return e.commit(ctx, Record{
		Period:         period,
		State:          StateActive,
		WinnerID:       winner.Member.ID,
		Amount:         winner.Member.RequestedAmount,
		MinInstallment: minInstallment,
		Audit:          audit,
	})
}

func (e *Engine) pick(n int) int {
	if e.Pick != nil {
		return e.Pick(n)
	}
	return rand.IntN(n)
}

// commit persists the record and translates a period-uniqueness loss into a
// conflict outcome so concurrent callers fail cleanly.
func (e *Engine) commit(ctx context.Context, rec Record) (Outcome, error) {
	id, err := e.Loans.Commit(ctx, rec)
	if errors.Is(err, ErrPeriodTaken) {
		existingID, _, lookupErr := e.Loans.Existing(ctx, rec.Period)
		if lookupErr != nil {
			return Outcome{}, fmt.Errorf("lookup conflicting assignment: %w", lookupErr)
		}
		return Outcome{Kind: OutcomeConflict, ExistingLoanID: existingID}, nil
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("commit assignment: %w", err)
	}

	out := Outcome{
		Kind:   OutcomeKind(rec.State),
		LoanID: id,
		Audit:  &rec.Audit,
	}
	if rec.State == StateActive {
		out.WinnerID = rec.WinnerID
		out.Amount = rec.Amount
	}
	return out, nil
}
