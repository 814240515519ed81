package service

import (
	"context"
	"fmt"
	"time"

	"github.com/netwave/isp-portal-bfa-go/internal/domain"
	"github.com/netwave/isp-portal-bfa-go/internal/infra/observability"
	"github.com/netwave/isp-portal-bfa-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var billingTracer = otel.Tracer("service/billing")

// BillingService serves invoices and records payments for a customer.
type BillingService struct {
	store     port.BillingStore
	directory port.DirectoryStore
	metrics   *observability.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewBillingService creates the billing service.
func NewBillingService(store port.BillingStore, directory port.DirectoryStore, metrics *observability.Metrics, logger *zap.Logger) *BillingService {
	return &BillingService{store: store, directory: directory, metrics: metrics, logger: logger, now: time.Now}
}

// WithClock overrides the evaluation clock. Tests use this to pin the
// current month.
func (s *BillingService) WithClock(now func() time.Time) *BillingService {
	s.now = now
	return s
}

// InvoicesForUser returns the caller's invoices newest-first with billing
// rollups. Invoice-total mismatches are validated here and logged as
// integrity warnings; the list still renders.
func (s *BillingService) InvoicesForUser(ctx context.Context, userID string) ([]domain.Invoice, *domain.BillingTotals, error) {
	ctx, span := billingTracer.Start(ctx, "BillingService.InvoicesForUser")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	customer, err := s.directory.GetCustomerByUserID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return []domain.Invoice{}, &domain.BillingTotals{}, nil
		}
		return nil, nil, err
	}

	invoices, err := s.store.ListInvoicesByCustomer(ctx, customer.ID, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("list invoices: %w", err)
	}

	totals := &domain.BillingTotals{}
	month, year := s.now().Month(), s.now().Year()
	for i := range invoices {
		inv := &invoices[i]
		if ierr := inv.CheckTotals(); ierr != nil {
			s.metrics.IncrIntegrityWarning("invoice")
			s.logger.Warn("billing: invoice totals mismatch", zap.Error(ierr))
		}

		amt := inv.TotalAmount.Float64()
		switch {
		case inv.Status == domain.InvoicePaid:
			totals.LifetimePaid += amt
		case inv.Status != domain.InvoiceCancelled && inv.Status != domain.InvoiceDraft:
			totals.Outstanding += amt
			totals.OutstandingCount++
		}

		if due, derr := time.Parse("2006-01-02", inv.DueDate); derr == nil {
			if due.Month() == month && due.Year() == year && inv.Status != domain.InvoicePaid {
				totals.DueThisMonth += amt
			}
		}
	}

	return invoices, totals, nil
}

// RecordPayment records a payment against one of the caller's invoices with
// a generated payment reference. The invoice status stays store-of-record;
// no reconciliation happens here.
func (s *BillingService) RecordPayment(ctx context.Context, userID string, req *domain.NewPaymentRequest) (*domain.Payment, error) {
	ctx, span := billingTracer.Start(ctx, "BillingService.RecordPayment")
	defer span.End()

	if req.InvoiceID == "" {
		return nil, &domain.ErrValidation{Field: "invoiceId", Message: "required"}
	}
	if req.Amount <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}
	if !req.Method.Valid() {
		return nil, &domain.ErrValidation{Field: "method", Message: "must be mpesa, bank_transfer, cash or card"}
	}

	invoice, err := s.store.GetInvoice(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}

	customer, err := s.directory.GetCustomerByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if invoice.CustomerID != customer.ID {
		return nil, &domain.ErrForbidden{Action: "pay another customer's invoice"}
	}

	row := map[string]any{
		"invoice_id":        req.InvoiceID,
		"amount":            req.Amount,
		"method":            string(req.Method),
		"status":            string(domain.PaymentPending),
		"payment_reference": fmt.Sprintf("PAY-%s", uuid.New().String()[:8]),
		"transaction_date":  s.now().Format(time.RFC3339),
	}
	if req.MpesaReceipt != "" {
		row["mpesa_receipt_number"] = req.MpesaReceipt
	}
	if req.Notes != "" {
		row["notes"] = req.Notes
	}

	payment, err := s.store.CreatePayment(ctx, row)
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	s.logger.Info("payment recorded",
		zap.String("payment_id", payment.ID),
		zap.String("invoice_id", req.InvoiceID),
		zap.Float64("amount", req.Amount),
	)
	return payment, nil
}
