// internal/app/features/payments/list.go
package payments

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sandoghapp/sandogh/internal/app/features/shared/jsonapi"
	"github.com/sandoghapp/sandogh/internal/app/system/auth"
	"github.com/sandoghapp/sandogh/internal/app/system/timeouts"
	"github.com/sandoghapp/sandogh/internal/domain/models"
)

// HandleMine handles GET /payments/mine.
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

	list, err := h.Payments.ByMember(ctx, memberID)
	if err != nil {
		jsonapi.ServerError(w, h.Log, "list my payments", err)
		return
	}
	if list == nil {
		list = []models.Payment{}
	}
	jsonapi.Write(w, http.StatusOK, list)
}

// HandleList handles GET /payments (admin only).
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Payments.List(ctx, 0)
	if err != nil {
		jsonapi.ServerError(w, h.Log, "list payments", err)
		return
	}
	if list == nil {
		list = []models.Payment{}
	}
	jsonapi.Write(w, http.StatusOK, list)
}
