package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Amount is a monetary value in the local currency unit. Store rows are not
// always clean: the decoder accepts numbers and numeric strings, and coerces
// null or garbage to zero so a bad row can never poison a sum with NaN.
type Amount float64

// UnmarshalJSON implements the coercion rule.
func (a *Amount) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*a = Amount(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*a = Amount(f)
			return nil
		}
	}
	*a = 0
	return nil
}

// Float64 returns the amount as a plain float64.
func (a Amount) Float64() float64 { return float64(a) }

// PaymentMethod enumerates how a payment was made.
type PaymentMethod string

const (
	PayMpesa        PaymentMethod = "mpesa"
	PayBankTransfer PaymentMethod = "bank_transfer"
	PayCash         PaymentMethod = "cash"
	PayCard         PaymentMethod = "card"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PayMpesa, PayBankTransfer, PayCash, PayCard:
		return true
	}
	return false
}

// PaymentStatus is the settlement state of a payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Payment is one payment against an invoice.
type Payment struct {
	ID              string        `json:"id"`
	InvoiceID       string        `json:"invoice_id"`
	Amount          Amount        `json:"amount"`
	Method          PaymentMethod `json:"method"`
	Status          PaymentStatus `json:"status"`
	Reference       string        `json:"payment_reference"`
	MpesaReceipt    string        `json:"mpesa_receipt_number,omitempty"`
	Notes           string        `json:"notes,omitempty"`
	TransactionDate time.Time     `json:"transaction_date"`
}

// NewPaymentRequest is the body for recording a payment.
type NewPaymentRequest struct {
	InvoiceID    string        `json:"invoiceId"`
	Amount       float64       `json:"amount"`
	Method       PaymentMethod `json:"method"`
	MpesaReceipt string        `json:"mpesaReceipt,omitempty"`
	Notes        string        `json:"notes,omitempty"`
}
