package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/netwave/isp-portal-bfa-go/internal/domain"
	"github.com/netwave/isp-portal-bfa-go/internal/infra/resilience"
)

// ============================================================
// Invoices & payments — billing via PostgREST
// ============================================================

// paymentRow maps payment table columns. The transaction date arrives as a
// string because older rows carry date-only values.
type paymentRow struct {
	ID              string               `json:"id"`
	InvoiceID       string               `json:"invoice_id"`
	Amount          domain.Amount        `json:"amount"`
	Method          domain.PaymentMethod `json:"method"`
	Status          domain.PaymentStatus `json:"status"`
	Reference       string               `json:"payment_reference"`
	MpesaReceipt    string               `json:"mpesa_receipt_number"`
	Notes           string               `json:"notes"`
	TransactionDate string               `json:"transaction_date"`
}

func (r paymentRow) toDomain() domain.Payment {
	return domain.Payment{
		ID:              r.ID,
		InvoiceID:       r.InvoiceID,
		Amount:          r.Amount,
		Method:          r.Method,
		Status:          r.Status,
		Reference:       r.Reference,
		MpesaReceipt:    r.MpesaReceipt,
		Notes:           r.Notes,
		TransactionDate: parseDate(r.TransactionDate),
	}
}

// ListCompletedPayments fetches all completed payments for the revenue
// rollups. Summary source, so it carries the circuit breaker and retry
// treatment.
func (c *Client) ListCompletedPayments(ctx context.Context) ([]domain.Payment, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCompletedPayments")
	defer span.End()

	var payments []domain.Payment

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := "payments?status=eq.completed&select=id,amount,transaction_date"
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				payments = []domain.Payment{}
				return nil
			}

			var rows []paymentRow
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode payments: %w", err)
			}

			payments = make([]domain.Payment, 0, len(rows))
			for _, r := range rows {
				payments = append(payments, r.toDomain())
			}
			return nil
		})
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/payments", Err: err}
	}
	return payments, nil
}

// CountPendingInvoices counts invoices still awaiting payment. Summary
// source, so it carries the circuit breaker and retry treatment.
func (c *Client) CountPendingInvoices(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CountPendingInvoices")
	defer span.End()

	var count int

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := "invoices?status=in.(sent,overdue)&select=id"
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}

			count = 0
			if body == nil {
				return nil
			}

			var rows []struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode invoice count: %w", err)
			}
			count = len(rows)
			return nil
		})
	})

	if err != nil {
		return 0, &domain.ErrExternalService{Service: "supabase/invoices", Err: err}
	}
	return count, nil
}

// ListInvoicesByCustomer fetches a customer's invoices newest-first. A limit
// of zero means all of them.
func (c *Client) ListInvoicesByCustomer(ctx context.Context, customerID string, limit int) ([]domain.Invoice, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListInvoicesByCustomer")
	defer span.End()

	path := fmt.Sprintf("invoices?customer_id=eq.%s&order=created_at.desc", customerID)
	if limit > 0 {
		path = fmt.Sprintf("%s&limit=%d", path, limit)
	}
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/invoices", Err: err}
	}

	var rows []domain.Invoice
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode invoices: %w", err)
		}
	}
	return rows, nil
}

// GetInvoice fetches one invoice by ID.
func (c *Client) GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetInvoice")
	defer span.End()

	path := fmt.Sprintf("invoices?id=eq.%s&limit=1", invoiceID)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/invoices", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "invoice", ID: invoiceID}
	}

	var rows []domain.Invoice
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode invoice: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "invoice", ID: invoiceID}
	}
	return &rows[0], nil
}

// CreatePayment inserts a payment row and returns the stored record.
func (c *Client) CreatePayment(ctx context.Context, row map[string]any) (*domain.Payment, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreatePayment")
	defer span.End()

	body, err := c.doPost(ctx, "payments", row)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/payments", Err: err}
	}

	var rows []paymentRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode created payment: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("create payment: empty representation")
	}
	payment := rows[0].toDomain()
	return &payment, nil
}
