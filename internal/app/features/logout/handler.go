// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/sandoghapp/sandogh/internal/app/features/shared/jsonapi"
	"github.com/sandoghapp/sandogh/internal/app/store/audit"
	"github.com/sandoghapp/sandogh/internal/app/system/auditlog"
	"github.com/sandoghapp/sandogh/internal/app/system/auth"
)

type Handler struct {
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(auditLogger *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{AuditLog: auditLogger, Log: logger}
}

// HandleLogout handles POST /auth/logout. Clearing an already-empty
// session is fine; logout never fails from the client's point of view.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if m, ok := auth.CurrentMember(r); ok {
		h.AuditLog.Auth(r.Context(), r, audit.EventLogout, nil, true, "")
		h.Log.Info("member signed out", zap.String("member_id", m.ID))
	}

	if err := auth.SignOut(w, r); err != nil {
		h.Log.Warn("logout: save session", zap.Error(err))
	}
	jsonapi.Write(w, http.StatusNoContent, nil)
}
