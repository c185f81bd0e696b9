// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/sandoghapp/sandogh/internal/app/features/shared/jsonapi"
	"github.com/sandoghapp/sandogh/internal/app/store/audit"
	memberstore "github.com/sandoghapp/sandogh/internal/app/store/members"
	"github.com/sandoghapp/sandogh/internal/app/system/auditlog"
	"github.com/sandoghapp/sandogh/internal/app/system/auth"
	"github.com/sandoghapp/sandogh/internal/app/system/authutil"
	"github.com/sandoghapp/sandogh/internal/app/system/ratelimit"
	"github.com/sandoghapp/sandogh/internal/app/system/timeouts"
	"github.com/sandoghapp/sandogh/internal/domain/models"
)

type Handler struct {
	Members  *memberstore.Store
	AuditLog *auditlog.Logger
	Log      *zap.Logger
	limiter  *ratelimit.Limiter
}

func NewHandler(members *memberstore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Members:  members,
		AuditLog: audit,
		Log:      logger,
		// 10 attempts per IP per minute.
		limiter: ratelimit.New(10, time.Minute),
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// HandleLogin handles POST /auth/login. Failed attempts always get the
// same 401 body so usernames cannot be probed; the audit trail records the
// real reason.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ip := ratelimit.ClientIP(r)
	if !h.limiter.Allow(ip) {
		jsonapi.Error(w, http.StatusTooManyRequests, "too many login attempts; try again later")
		return
	}

	var req loginRequest
	if err := jsonapi.Decode(r, &req); err != nil {
		jsonapi.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		jsonapi.Error(w, http.StatusBadRequest, "username and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.Members.GetByUsername(ctx, req.Username)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		h.AuditLog.Auth(ctx, r, audit.EventLoginFailedNotFound, nil, false, "member not found")
		jsonapi.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	case err != nil:
		jsonapi.ServerError(w, h.Log, "login: load member", err)
		return
	}

	if !authutil.CheckPassword(req.Password, m.PasswordHash) {
		h.AuditLog.Auth(ctx, r, audit.EventLoginFailedWrongPassword, &m.ID, false, "wrong password")
		jsonapi.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if m.Status == models.StatusDisabled {
		h.AuditLog.Auth(ctx, r, audit.EventLoginFailedDisabled, &m.ID, false, "member disabled")
		jsonapi.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	sm := auth.SessionMember{
		ID:       m.ID.Hex(),
		Username: m.Username,
		Role:     m.Role,
	}
	if err := auth.SignIn(w, r, sm); err != nil {
		jsonapi.ServerError(w, h.Log, "login: save session", err)
		return
	}

	h.limiter.Reset(ip)
	h.AuditLog.Auth(ctx, r, audit.EventLoginSuccess, &m.ID, true, "")
	h.Log.Info("member signed in", zap.String("member_id", m.ID.Hex()), zap.String("username", m.Username))

	jsonapi.Write(w, http.StatusOK, loginResponse{
		ID:       m.ID.Hex(),
		Username: m.Username,
		FullName: m.FullName,
		Role:     m.Role,
	})
}
