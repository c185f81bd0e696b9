// internal/app/features/payments/create.go
package payments

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sandoghapp/sandogh/internal/app/features/shared/jsonapi"
	"github.com/sandoghapp/sandogh/internal/app/store/audit"
	paymentstore "github.com/sandoghapp/sandogh/internal/app/store/payments"
	"github.com/sandoghapp/sandogh/internal/app/system/auth"
	"github.com/sandoghapp/sandogh/internal/app/system/htmlsanitize"
	"github.com/sandoghapp/sandogh/internal/app/system/jalali"
	"github.com/sandoghapp/sandogh/internal/app/system/timeouts"
	"github.com/sandoghapp/sandogh/internal/app/system/txn"
	"github.com/sandoghapp/sandogh/internal/domain/models"
)

type createRequest struct {
	MembershipFee decimal.Decimal  `json:"membership_fee"`
	LoanRepayment *decimal.Decimal `json:"loan_repayment,omitempty"`
	GatewayRef    string           `json:"gateway_ref"`
}

// HandleCreate handles POST /payments. The signed-in member records their
// own payment for the current Jalali period: a membership fee at or above
// the policy minimum, plus an optional repayment against their active
// loan. The member's balance grows by the fee portion; fully repaying the
// loan settles it. All writes happen in one transaction when the
// deployment supports them.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
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

	var req createRequest
	if err := jsonapi.Decode(r, &req); err != nil {
		jsonapi.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.GatewayRef == "" {
		jsonapi.Error(w, http.StatusBadRequest, "gateway_ref is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	policy, err := h.Policy.Get(ctx)
	if err != nil {
		jsonapi.ServerError(w, h.Log, "record payment: load policy", err)
		return
	}
	if req.MembershipFee.LessThan(policy.MinMembershipFee) {
		jsonapi.Error(w, http.StatusBadRequest,
			fmt.Sprintf("membership fee must be at least %s", policy.MinMembershipFee))
		return
	}

	payment := models.Payment{
		MemberID:      memberID,
		MembershipFee: req.MembershipFee,
		Amount:        req.MembershipFee,
		GatewayRef:    htmlsanitize.StripTags(req.GatewayRef),
	}
	period := jalali.Current()
	payment.JalaliYear = period.Year
	payment.JalaliMonth = period.Month

	// A repayment needs an active loan and must meet the loan's installment
	// floor, except when less than one installment remains.
	var activeLoan *models.Loan
	var totalRepaid decimal.Decimal
	if req.LoanRepayment != nil && req.LoanRepayment.IsPositive() {
		activeLoan, err = h.Loans.ActiveByMember(ctx, memberID)
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonapi.Error(w, http.StatusBadRequest, "no active loan to repay")
			return
		}
		if err != nil {
			jsonapi.ServerError(w, h.Log, "record payment: load loan", err)
			return
		}

		if activeLoan.Amount == nil {
			jsonapi.ServerError(w, h.Log, "record payment: active loan without amount",
				errors.New("loan "+activeLoan.ID+" has no amount"))
			return
		}

		totalRepaid, err = h.Payments.TotalRepaid(ctx, activeLoan.ID)
		if err != nil {
			jsonapi.ServerError(w, h.Log, "record payment: sum repayments", err)
			return
		}
		remaining := activeLoan.Amount.Sub(totalRepaid)
		if req.LoanRepayment.GreaterThan(remaining) {
			jsonapi.Error(w, http.StatusBadRequest,
				fmt.Sprintf("repayment exceeds remaining balance of %s", remaining))
			return
		}
		if req.LoanRepayment.LessThan(activeLoan.MinInstallment) && req.LoanRepayment.LessThan(remaining) {
			jsonapi.Error(w, http.StatusBadRequest,
				fmt.Sprintf("repayment must be at least %s", activeLoan.MinInstallment))
			return
		}

		payment.LoanRepayment = &models.LoanRepayment{
			LoanID: activeLoan.ID,
			Amount: *req.LoanRepayment,
		}
		payment.Amount = payment.Amount.Add(*req.LoanRepayment)
	}

	var created models.Payment
	settled := false
	err = txn.WithTransaction(ctx, h.Client, h.Log, func(ctx context.Context) error {
		var err error
		created, err = h.Payments.Insert(ctx, payment)
		if err != nil {
			return err
		}
		if err := h.Members.AddToBalance(ctx, memberID, payment.MembershipFee); err != nil {
			return err
		}
		if activeLoan != nil {
			repaidNow := totalRepaid.Add(payment.LoanRepayment.Amount)
			if repaidNow.GreaterThanOrEqual(*activeLoan.Amount) {
				if err := h.Loans.MarkSettled(ctx, activeLoan.ID); err != nil {
					return err
				}
				settled = true
			}
		}
		return nil
	})
	switch {
	case errors.Is(err, paymentstore.ErrDuplicatePayment):
		jsonapi.Error(w, http.StatusConflict, "a payment for this period already exists")
		return
	case err != nil:
		jsonapi.ServerError(w, h.Log, "record payment", err)
		return
	}

	details := map[string]string{
		"amount":      created.Amount.String(),
		"gateway_ref": created.GatewayRef,
		"period":      period.String(),
	}
	h.AuditLog.Fund(ctx, r, audit.EventPaymentRecorded, &memberID, &memberID, details)
	if settled {
		h.AuditLog.Fund(ctx, r, audit.EventLoanSettled, &memberID, &memberID, map[string]string{
			"loan_id": activeLoan.ID,
		})
	}

	jsonapi.Write(w, http.StatusCreated, created)
}
