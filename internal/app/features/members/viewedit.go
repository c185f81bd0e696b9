// internal/app/features/members/viewedit.go
package members

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sandoghapp/sandogh/internal/app/features/shared/jsonapi"
	"github.com/sandoghapp/sandogh/internal/app/store/audit"
	memberstore "github.com/sandoghapp/sandogh/internal/app/store/members"
	"github.com/sandoghapp/sandogh/internal/app/system/htmlsanitize"
	"github.com/sandoghapp/sandogh/internal/app/system/timeouts"
)

// HandleView handles GET /members/{id} (admin only).
func (h *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonapi.Error(w, http.StatusBadRequest, "invalid member id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.Members.GetByID(ctx, oid)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		jsonapi.Error(w, http.StatusNotFound, "member not found")
		return
	case err != nil:
		jsonapi.ServerError(w, h.Log, "view member", err)
		return
	}

	jsonapi.Write(w, http.StatusOK, toView(*m))
}

type editRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

// HandleEdit handles POST /members/{id}/edit (admin only).
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonapi.Error(w, http.StatusBadRequest, "invalid member id")
		return
	}

	var req editRequest
	if err := jsonapi.Decode(r, &req); err != nil {
		jsonapi.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Members.GetByID(ctx, oid); errors.Is(err, mongo.ErrNoDocuments) {
		jsonapi.Error(w, http.StatusNotFound, "member not found")
		return
	} else if err != nil {
		jsonapi.ServerError(w, h.Log, "edit member: load", err)
		return
	}

	err = h.Members.UpdateMember(ctx, oid, memberstore.Update{
		FullName: htmlsanitize.StripTags(req.FullName),
		Email:    req.Email,
		Role:     req.Role,
		Status:   req.Status,
	})
	switch {
	case errors.Is(err, memberstore.ErrDuplicate):
		jsonapi.Error(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		jsonapi.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	h.AuditLog.Fund(ctx, r, audit.EventMemberUpdated, actorID(r), &oid, map[string]string{
		"role":   req.Role,
		"status": req.Status,
	})

	m, err := h.Members.GetByID(ctx, oid)
	if err != nil {
		jsonapi.ServerError(w, h.Log, "edit member: reload", err)
		return
	}
	jsonapi.Write(w, http.StatusOK, toView(*m))
}
