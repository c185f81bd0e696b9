// internal/app/features/members/request.go
package members

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/sandoghapp/sandogh/internal/app/features/shared/jsonapi"
	"github.com/sandoghapp/sandogh/internal/app/store/audit"
	"github.com/sandoghapp/sandogh/internal/app/system/timeouts"
)

type loanRequestBody struct {
	Amount decimal.Decimal `json:"amount"`
}

// HandleSetLoanRequest handles POST /members/me/request. Any signed-in
// member may set the amount they want from the next assignment run; zero
// opts them out entirely.
func (h *Handler) HandleSetLoanRequest(w http.ResponseWriter, r *http.Request) {
	me := actorID(r)
	if me == nil {
		jsonapi.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req loanRequestBody
	if err := jsonapi.Decode(r, &req); err != nil {
		jsonapi.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Amount.IsNegative() {
		jsonapi.Error(w, http.StatusBadRequest, "amount must not be negative")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Members.SetLoanRequest(ctx, *me, req.Amount); err != nil {
		jsonapi.ServerError(w, h.Log, "set loan request", err)
		return
	}

	h.AuditLog.Fund(ctx, r, audit.EventLoanRequestSet, me, me, map[string]string{
		"amount": req.Amount.String(),
	})

	m, err := h.Members.GetByID(ctx, *me)
	if err != nil {
		jsonapi.ServerError(w, h.Log, "set loan request: reload", err)
		return
	}
	jsonapi.Write(w, http.StatusOK, toView(*m))
}
