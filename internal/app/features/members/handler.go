// internal/app/features/members/handler.go
package members

import (
	"go.uber.org/zap"

	memberstore "github.com/sandoghapp/sandogh/internal/app/store/members"
	"github.com/sandoghapp/sandogh/internal/app/system/auditlog"
)

type Handler struct {
	Members  *memberstore.Store
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(members *memberstore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Members: members, AuditLog: audit, Log: logger}
}
