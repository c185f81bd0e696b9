// internal/app/features/loans/list.go
package loans

import (
	"context"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sandoghapp/sandogh/internal/app/features/shared/jsonapi"
	"github.com/sandoghapp/sandogh/internal/app/system/auth"
	"github.com/sandoghapp/sandogh/internal/app/system/jalali"
	"github.com/sandoghapp/sandogh/internal/app/system/timeouts"
	"github.com/sandoghapp/sandogh/internal/domain/models"
)

// HandleCurrent handles GET /loans/current: the loan record for the
// current Jalali period, 404 when the period has not been run.
func (h *Handler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	loan, err := h.Loans.ByPeriod(ctx, jalali.Current())
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		jsonapi.Error(w, http.StatusNotFound, "no assignment has run for the current period")
		return
	case err != nil:
		jsonapi.ServerError(w, h.Log, "load current loan", err)
		return
	}
	jsonapi.Write(w, http.StatusOK, loan)
}

// HandleHistory handles GET /loans/history (admin only): every period's
// record, newest first, audit trail included.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	loans, err := h.Loans.List(ctx, 0)
	if err != nil {
		jsonapi.ServerError(w, h.Log, "load loan history", err)
		return
	}
	if loans == nil {
		loans = []models.Loan{}
	}
	jsonapi.Write(w, http.StatusOK, loans)
}

// HandleMine handles GET /loans/mine: the signed-in member's loans.
func (h *Handler) HandleMine(w http.ResponseWriter, r *http.Request) {
	sm, ok := auth.CurrentMember(r)
	if !ok {
		jsonapi.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	memberID, err := primitive.ObjectIDFromHex(sm.ID)
	if err != nil {
		jsonapi.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	loans, err := h.Loans.ByMember(ctx, memberID)
	if err != nil {
		jsonapi.ServerError(w, h.Log, "load my loans", err)
		return
	}
	if loans == nil {
		loans = []models.Loan{}
	}
	jsonapi.Write(w, http.StatusOK, loans)
}
