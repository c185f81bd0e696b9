// internal/app/features/members/create.go
package members

import (
	"context"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sandoghapp/sandogh/internal/app/features/shared/jsonapi"
	"github.com/sandoghapp/sandogh/internal/app/store/audit"
	memberstore "github.com/sandoghapp/sandogh/internal/app/store/members"
	"github.com/sandoghapp/sandogh/internal/app/system/auth"
	"github.com/sandoghapp/sandogh/internal/app/system/authutil"
	"github.com/sandoghapp/sandogh/internal/app/system/htmlsanitize"
	"github.com/sandoghapp/sandogh/internal/app/system/timeouts"
	"github.com/sandoghapp/sandogh/internal/domain/models"
)

type createRequest struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// HandleCreate handles POST /members (admin only).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := jsonapi.Decode(r, &req); err != nil {
		jsonapi.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Email == "" {
		jsonapi.Error(w, http.StatusBadRequest, "username and email are required")
		return
	}
	if err := authutil.ValidatePassword(req.Password); err != nil {
		jsonapi.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		jsonapi.ServerError(w, h.Log, "create member: hash password", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.Members.Create(ctx, models.Member{
		Username:     req.Username,
		FullName:     htmlsanitize.StripTags(req.FullName),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
	})
	switch {
	case errors.Is(err, memberstore.ErrDuplicate):
		jsonapi.Error(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		jsonapi.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	h.AuditLog.Fund(ctx, r, audit.EventMemberCreated, actorID(r), &m.ID, map[string]string{
		"username": m.Username,
	})

	jsonapi.Write(w, http.StatusCreated, toView(m))
}

// actorID resolves the signed-in member's ObjectID, nil when unknown.
func actorID(r *http.Request) *primitive.ObjectID {
	sm, ok := auth.CurrentMember(r)
	if !ok {
		return nil
	}
	oid, err := primitive.ObjectIDFromHex(sm.ID)
	if err != nil {
		return nil
	}
	return &oid
}
