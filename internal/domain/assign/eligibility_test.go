package assign_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sandoghapp/sandogh/internal/domain/assign"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		member     assign.MemberSnapshot
		eligible   bool
		wantReason string
	}{
		{
			name: "request exceeds balance",
			member: assign.MemberSnapshot{
				Balance:         dec("150"),
				RequestedAmount: dec("200"),
			},
			wantReason: assign.ReasonRequestExceedsBalance,
		},
		{
			name: "privileged member bypasses balance rule",
			member: assign.MemberSnapshot{
				Balance:         dec("150"),
				RequestedAmount: dec("200"),
				Privileged:      true,
			},
			eligible: true,
		},
		{
			name: "active loan",
			member: assign.MemberSnapshot{
				Balance:         dec("100"),
				RequestedAmount: dec("50"),
				HasActiveLoan:   true,
			},
			wantReason: assign.ReasonActiveLoan,
		},
		{
			name: "balance rule outranks active loan rule",
			member: assign.MemberSnapshot{
				Balance:         dec("10"),
				RequestedAmount: dec("50"),
				HasActiveLoan:   true,
			},
			wantReason: assign.ReasonRequestExceedsBalance,
		},
		{
			name: "opted out",
			member: assign.MemberSnapshot{
				Balance:         dec("100"),
				RequestedAmount: decimal.Zero,
			},
			wantReason: assign.ReasonOptedOut,
		},
		{
			name: "privileged member with active loan still excluded",
			member: assign.MemberSnapshot{
				Balance:         dec("10"),
				RequestedAmount: dec("50"),
				Privileged:      true,
				HasActiveLoan:   true,
			},
			wantReason: assign.ReasonActiveLoan,
		},
		{
			name: "eligible",
			member: assign.MemberSnapshot{
				Balance:         dec("100"),
				RequestedAmount: dec("50"),
			},
			eligible: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := assign.Classify(tt.member)
			if c.Eligible != tt.eligible {
				t.Fatalf("Eligible: got %v, want %v", c.Eligible, tt.eligible)
			}
			if c.Reason != tt.wantReason {
				t.Errorf("Reason: got %q, want %q", c.Reason, tt.wantReason)
			}
		})
	}
}

func TestSolvent(t *testing.T) {
	a := assign.MemberSnapshot{ID: "a", RequestedAmount: dec("30")}
	b := assign.MemberSnapshot{ID: "b", RequestedAmount: dec("80")}
	c := assign.MemberSnapshot{ID: "c", RequestedAmount: dec("50")}

	in, out := assign.Solvent([]assign.MemberSnapshot{a, b, c}, dec("50"))

	if len(in) != 2 || in[0].ID != "a" || in[1].ID != "c" {
		t.Errorf("solvent set: got %v", in)
	}
	if len(out) != 1 || out[0].ID != "b" {
		t.Errorf("unfundable set: got %v", out)
	}
}

func TestSolvent_AllDropped(t *testing.T) {
	a := assign.MemberSnapshot{ID: "a", RequestedAmount: dec("50")}
	b := assign.MemberSnapshot{ID: "b", RequestedAmount: dec("50")}

	in, out := assign.Solvent([]assign.MemberSnapshot{a, b}, dec("30"))
	if len(in) != 0 {
		t.Errorf("expected empty solvent set, got %v", in)
	}
	if len(out) != 2 {
		t.Errorf("expected both members unfundable, got %v", out)
	}
}
