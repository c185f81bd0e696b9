// internal/app/features/loans/handler.go
package loans

import (
	"go.uber.org/zap"

	loanstore "github.com/sandoghapp/sandogh/internal/app/store/loans"
	memberstore "github.com/sandoghapp/sandogh/internal/app/store/members"
	paymentstore "github.com/sandoghapp/sandogh/internal/app/store/payments"
	policystore "github.com/sandoghapp/sandogh/internal/app/store/policy"
	"github.com/sandoghapp/sandogh/internal/app/system/auditlog"
	"github.com/sandoghapp/sandogh/internal/domain/assign"
)

type Handler struct {
	Members  *memberstore.Store
	Loans    *loanstore.Store
	Payments *paymentstore.Store
	Policy   *policystore.Store
	AuditLog *auditlog.Logger
	Log      *zap.Logger

	engine *assign.Engine
}

func NewHandler(
	members *memberstore.Store,
	loans *loanstore.Store,
	payments *paymentstore.Store,
	policy *policystore.Store,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Members:  members,
		Loans:    loans,
		Payments: payments,
		Policy:   policy,
		AuditLog: audit,
		Log:      logger,
		engine: assign.NewEngine(
			memberSource{members: members, loans: loans},
			ledger{payments: payments, loans: loans},
			policySource{policy: policy},
			assignmentStore{loans: loans},
		),
	}
}
