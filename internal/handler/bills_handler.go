package handler

import (
	"net/http"

	"github.com/netwave/isp-portal-bfa-go/internal/domain"
	"github.com/netwave/isp-portal-bfa-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Bills & payments
// ============================================================

type invoiceView struct {
	domain.Invoice
	TotalDisplay string `json:"total_display"`
}

type billingTotalsView struct {
	domain.BillingTotals
	OutstandingDisplay  string `json:"outstanding_display"`
	DueThisMonthDisplay string `json:"due_this_month_display"`
	LifetimePaidDisplay string `json:"lifetime_paid_display"`
}

func listBillsHandler(svc *service.BillingService, money *moneyFormatter, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/bills")
		defer span.End()

		id := IdentityFromContext(ctx)
		invoices, totals, err := svc.InvoicesForUser(ctx, id.Session.UserID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		views := make([]invoiceView, 0, len(invoices))
		for _, inv := range invoices {
			views = append(views, invoiceView{
				Invoice:      inv,
				TotalDisplay: money.format(inv.TotalAmount.Float64()),
			})
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"invoices": views,
			"totals": billingTotalsView{
				BillingTotals:       *totals,
				OutstandingDisplay:  money.format(totals.Outstanding),
				DueThisMonthDisplay: money.format(totals.DueThisMonth),
				LifetimePaidDisplay: money.format(totals.LifetimePaid),
			},
		})
	}
}

func recordPaymentHandler(svc *service.BillingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/payments")
		defer span.End()

		var req domain.NewPaymentRequest
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		id := IdentityFromContext(ctx)
		payment, err := svc.RecordPayment(ctx, id.Session.UserID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, payment)
	}
}
