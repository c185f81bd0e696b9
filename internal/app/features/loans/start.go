// internal/app/features/loans/start.go
package loans

import (
	"context"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/sandoghapp/sandogh/internal/app/features/shared/jsonapi"
	"github.com/sandoghapp/sandogh/internal/app/store/audit"
	"github.com/sandoghapp/sandogh/internal/app/system/auth"
	"github.com/sandoghapp/sandogh/internal/app/system/jalali"
	"github.com/sandoghapp/sandogh/internal/app/system/timeouts"
	"github.com/sandoghapp/sandogh/internal/domain/assign"
)

type startResponse struct {
	LoanID   string `json:"loan_id"`
	State    string `json:"state"`
	WinnerID string `json:"winner_id,omitempty"`
	Amount   string `json:"amount,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// HandleStart handles POST /loans/start. Any signed-in member can trigger
// the assignment run for the current Jalali period; the unique period index
// makes concurrent triggers safe.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	now := jalali.Current()
	period := assign.Period{Year: now.Year, Month: now.Month}

	outcome, err := h.engine.Run(ctx, period)
	if err != nil {
		jsonapi.ServerError(w, h.Log, "assignment run failed", err)
		return
	}

	switch outcome.Kind {
	case assign.OutcomeConflict:
		jsonapi.Write(w, http.StatusConflict, startResponse{
			LoanID: outcome.ExistingLoanID,
			State:  "conflict",
			Reason: "an assignment already exists for " + period.String(),
		})

	case assign.OutcomeNotReady:
		jsonapi.Error(w, http.StatusBadRequest,
			"members have not paid for "+period.String()+": "+strings.Join(outcome.Unpaid, ", "))

	case assign.OutcomeUnfulfilled:
		h.logRun(ctx, r, outcome, period)
		jsonapi.Write(w, http.StatusCreated, startResponse{
			LoanID: outcome.LoanID,
			State:  assign.StateUnfulfilled,
			Reason: outcome.Audit.UnfulfilledReason,
		})

	case assign.OutcomeActive:
		h.logRun(ctx, r, outcome, period)
		jsonapi.Write(w, http.StatusCreated, startResponse{
			LoanID:   outcome.LoanID,
			State:    assign.StateActive,
			WinnerID: outcome.WinnerID,
			Amount:   outcome.Amount.String(),
		})

	default:
		h.Log.Error("assignment run returned unknown outcome", zap.String("kind", string(outcome.Kind)))
		jsonapi.Error(w, http.StatusInternalServerError, "a server error occurred")
	}
}

func (h *Handler) logRun(ctx context.Context, r *http.Request, outcome assign.Outcome, period assign.Period) {
	details := map[string]string{
		"loan_id": outcome.LoanID,
		"period":  period.String(),
		"state":   string(outcome.Kind),
	}
	var winner *primitive.ObjectID
	if outcome.WinnerID != "" {
		if oid, err := primitive.ObjectIDFromHex(outcome.WinnerID); err == nil {
			winner = &oid
		}
		details["amount"] = outcome.Amount.String()
	}
	if outcome.Audit != nil && outcome.Audit.UnfulfilledReason != "" {
		details["reason"] = outcome.Audit.UnfulfilledReason
	}

	var actor *primitive.ObjectID
	if sm, ok := auth.CurrentMember(r); ok {
		if oid, err := primitive.ObjectIDFromHex(sm.ID); err == nil {
			actor = &oid
		}
	}

	h.AuditLog.Fund(ctx, r, audit.EventAssignmentRun, actor, winner, details)
	h.Log.Info("assignment run committed",
		zap.String("loan_id", outcome.LoanID),
		zap.String("period", period.String()),
		zap.String("state", string(outcome.Kind)))
}
