package domain

import (
	"fmt"
	"math"
	"time"
)

// InvoiceStatus is the billing state of an invoice. It is store-of-record:
// the displayed status is not derived live from the invoice's payments.
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceSent      InvoiceStatus = "sent"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// Outstanding reports whether the invoice still awaits payment.
func (s InvoiceStatus) Outstanding() bool {
	return s == InvoiceSent || s == InvoiceOverdue
}

// Invoice belongs to one customer and carries its own monetary breakdown.
type Invoice struct {
	ID                 string        `json:"id"`
	CustomerID         string        `json:"customer_id"`
	InvoiceNumber      string        `json:"invoice_number"`
	BillingPeriodStart string        `json:"billing_period_start"`
	BillingPeriodEnd   string        `json:"billing_period_end"`
	Subtotal           Amount        `json:"subtotal"`
	TaxAmount          Amount        `json:"tax_amount"`
	DiscountAmount     Amount        `json:"discount_amount"`
	TotalAmount        Amount        `json:"total_amount"`
	Status             InvoiceStatus `json:"status"`
	IssuedDate         string        `json:"issued_date,omitempty"`
	DueDate            string        `json:"due_date"`
	PaidDate           string        `json:"paid_date,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
}

// CheckTotals validates the invariant total = subtotal - discount + tax.
// A mismatch is an ErrIntegrity; callers log it and keep rendering.
func (i *Invoice) CheckTotals() error {
	expected := i.Subtotal.Float64() - i.DiscountAmount.Float64() + i.TaxAmount.Float64()
	if math.Abs(expected-i.TotalAmount.Float64()) > 0.01 {
		return &ErrIntegrity{
			Resource: "invoice",
			ID:       i.ID,
			Detail: fmt.Sprintf("total %.2f != subtotal %.2f - discount %.2f + tax %.2f",
				i.TotalAmount.Float64(), i.Subtotal.Float64(), i.DiscountAmount.Float64(), i.TaxAmount.Float64()),
		}
	}
	return nil
}

// BillingTotals are the rollups shown at the top of the bills page.
type BillingTotals struct {
	Outstanding      float64 `json:"outstanding"`
	OutstandingCount int     `json:"outstandingCount"`
	DueThisMonth     float64 `json:"dueThisMonth"`
	LifetimePaid     float64 `json:"lifetimePaid"`
}
