// internal/app/features/payments/handler.go
package payments

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	loanstore "github.com/sandoghapp/sandogh/internal/app/store/loans"
	memberstore "github.com/sandoghapp/sandogh/internal/app/store/members"
	paymentstore "github.com/sandoghapp/sandogh/internal/app/store/payments"
	policystore "github.com/sandoghapp/sandogh/internal/app/store/policy"
	"github.com/sandoghapp/sandogh/internal/app/system/auditlog"
)

type Handler struct {
	Client   *mongo.Client
	Members  *memberstore.Store
	Loans    *loanstore.Store
	Payments *paymentstore.Store
	Policy   *policystore.Store
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(
	client *mongo.Client,
	members *memberstore.Store,
	loans *loanstore.Store,
	payments *paymentstore.Store,
	policy *policystore.Store,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Client:   client,
		Members:  members,
		Loans:    loans,
		Payments: payments,
		Policy:   policy,
		AuditLog: audit,
		Log:      logger,
	}
}
