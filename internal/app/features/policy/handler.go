// internal/app/features/policy/handler.go
package policy

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/sandoghapp/sandogh/internal/app/features/shared/jsonapi"
	"github.com/sandoghapp/sandogh/internal/app/store/audit"
	policystore "github.com/sandoghapp/sandogh/internal/app/store/policy"
	"github.com/sandoghapp/sandogh/internal/app/system/auditlog"
	"github.com/sandoghapp/sandogh/internal/app/system/auth"
	"github.com/sandoghapp/sandogh/internal/app/system/timeouts"
)

type Handler struct {
	Policy   *policystore.Store
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(policy *policystore.Store, auditLogger *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Policy: policy, AuditLog: auditLogger, Log: logger}
}

// HandleGet handles GET /policy.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Policy.Get(ctx)
	if err != nil {
		jsonapi.ServerError(w, h.Log, "load fund policy", err)
		return
	}
	jsonapi.Write(w, http.StatusOK, p)
}

type updateRequest struct {
	MinMembershipFee     decimal.Decimal `json:"min_membership_fee"`
	MinLoanInstallment   decimal.Decimal `json:"min_loan_installment"`
	MaxInstallmentMonths int             `json:"max_installment_months"`
}

// HandleUpdate handles POST /policy (admin only).
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := jsonapi.Decode(r, &req); err != nil {
		jsonapi.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Policy.Update(ctx, req.MinMembershipFee, req.MinLoanInstallment, req.MaxInstallmentMonths)
	if err != nil {
		jsonapi.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	var actor *primitive.ObjectID
	if sm, ok := auth.CurrentMember(r); ok {
		if oid, err := primitive.ObjectIDFromHex(sm.ID); err == nil {
			actor = &oid
		}
	}
	h.AuditLog.Fund(ctx, r, audit.EventFundPolicyUpdated, actor, nil, map[string]string{
		"min_membership_fee":   p.MinMembershipFee.String(),
		"min_loan_installment": p.MinLoanInstallment.String(),
	})

	jsonapi.Write(w, http.StatusOK, p)
}
