// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/netwave/isp-portal-bfa-go/internal/domain"
)

// ProfileStore retrieves and mutates identity profiles.
type ProfileStore interface {
	GetProfileByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, userID string, patch map[string]any) (*domain.Profile, error)
}

// The aggregation engine consumes one narrow port per record source so each
// fetch stays independent and failure-isolated.

// CustomerSource lists customer records.
type CustomerSource interface {
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
}

// PlanSource lists the active plan catalog.
type PlanSource interface {
	ListActivePlans(ctx context.Context) ([]domain.ServicePlan, error)
}

// PaymentSource lists completed payments.
type PaymentSource interface {
	ListCompletedPayments(ctx context.Context) ([]domain.Payment, error)
}

// InvoiceSource counts invoices still awaiting payment.
type InvoiceSource interface {
	CountPendingInvoices(ctx context.Context) (int, error)
}

// DirectoryStore is the admin customer directory.
type DirectoryStore interface {
	CustomerSource
	ListCustomerListings(ctx context.Context) ([]domain.CustomerListing, error)
	GetCustomerByUserID(ctx context.Context, userID string) (*domain.Customer, error)
	GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, row map[string]any) (*domain.Customer, error)
	UpdateCustomerStatus(ctx context.Context, customerID string, status domain.CustomerStatus) error
}

// CatalogStore manages service plans and subscriptions.
type CatalogStore interface {
	PlanSource
	ListPlanListings(ctx context.Context) ([]domain.PlanListing, error)
	CreatePlan(ctx context.Context, row map[string]any) (*domain.ServicePlan, error)
	SetPlanActive(ctx context.Context, planID string, active bool) error
	DeletePlan(ctx context.Context, planID string) error
	CountActiveSubscribers(ctx context.Context, planID string) (int, error)
	ListActiveSubscriptions(ctx context.Context, customerID string) ([]domain.Subscription, error)
	GetPlan(ctx context.Context, planID string) (*domain.ServicePlan, error)
}

// BillingStore manages invoices and payments.
type BillingStore interface {
	PaymentSource
	InvoiceSource
	ListInvoicesByCustomer(ctx context.Context, customerID string, limit int) ([]domain.Invoice, error)
	GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error)
	CreatePayment(ctx context.Context, row map[string]any) (*domain.Payment, error)
}

// TicketStore manages support tickets.
type TicketStore interface {
	ListTicketsByCustomer(ctx context.Context, customerID string) ([]domain.SupportTicket, error)
	ListAllTickets(ctx context.Context) ([]domain.SupportTicket, error)
	CreateTicket(ctx context.Context, row map[string]any) (*domain.SupportTicket, error)
}

// UsageStore reads metered usage.
type UsageStore interface {
	ListUsageSince(ctx context.Context, customerID, fromDate string) ([]domain.UsageLog, error)
}

// CredentialStore backs the dev-mode login path.
type CredentialStore interface {
	GetDevCredential(ctx context.Context, email string) (userID, passwordHash string, err error)
}

// SessionVerifier turns a bearer token into a session, or an
// ErrUnauthorized when the token is missing, invalid or revoked.
type SessionVerifier interface {
	VerifySession(ctx context.Context, token string) (*domain.Session, error)
}

// SessionEvents is the subscription for session lifecycle changes.
type SessionEvents interface {
	Subscribe() (<-chan domain.SessionEvent, func())
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
