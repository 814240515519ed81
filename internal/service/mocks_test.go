package service_test

import (
	"context"

	"github.com/netwave/isp-portal-bfa-go/internal/domain"
)

// Hand-rolled fakes for the store ports. Each method returns its configured
// error first, then its configured rows; lookups fall back to ErrNotFound.

type fakeDirectory struct {
	customers []domain.Customer
	listings  []domain.CustomerListing
	byUserID  map[string]*domain.Customer

	customersErr error
	listingsErr  error

	createdRow    map[string]any
	statusUpdates map[string]domain.CustomerStatus
}

func (f *fakeDirectory) ListCustomers(_ context.Context) ([]domain.Customer, error) {
	if f.customersErr != nil {
		return nil, f.customersErr
	}
	return f.customers, nil
}

func (f *fakeDirectory) ListCustomerListings(_ context.Context) ([]domain.CustomerListing, error) {
	if f.listingsErr != nil {
		return nil, f.listingsErr
	}
	return f.listings, nil
}

func (f *fakeDirectory) GetCustomerByUserID(_ context.Context, userID string) (*domain.Customer, error) {
	if c, ok := f.byUserID[userID]; ok {
		return c, nil
	}
	return nil, &domain.ErrNotFound{Resource: "customer", ID: userID}
}

func (f *fakeDirectory) GetCustomer(_ context.Context, customerID string) (*domain.Customer, error) {
	for i := range f.customers {
		if f.customers[i].ID == customerID {
			return &f.customers[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "customer", ID: customerID}
}

func (f *fakeDirectory) CreateCustomer(_ context.Context, row map[string]any) (*domain.Customer, error) {
	f.createdRow = row
	code, _ := row["customer_code"].(string)
	return &domain.Customer{ID: "cust-new", CustomerCode: code, Status: domain.CustomerActive}, nil
}

func (f *fakeDirectory) UpdateCustomerStatus(_ context.Context, customerID string, status domain.CustomerStatus) error {
	if f.statusUpdates == nil {
		f.statusUpdates = map[string]domain.CustomerStatus{}
	}
	f.statusUpdates[customerID] = status
	return nil
}

type fakeCatalog struct {
	plans    []domain.ServicePlan
	listings []domain.PlanListing
	subs     map[string][]domain.Subscription // customer ID -> active subs

	plansErr error
	subsErr  error
	planErr  error

	activeCalls int
	createdRow  map[string]any
	subscribers map[string]int
	deleted     []string
	toggled     map[string]bool
}

func (f *fakeCatalog) ListActivePlans(_ context.Context) ([]domain.ServicePlan, error) {
	f.activeCalls++
	if f.plansErr != nil {
		return nil, f.plansErr
	}
	return f.plans, nil
}

func (f *fakeCatalog) ListPlanListings(_ context.Context) ([]domain.PlanListing, error) {
	return f.listings, nil
}

func (f *fakeCatalog) CreatePlan(_ context.Context, row map[string]any) (*domain.ServicePlan, error) {
	f.createdRow = row
	name, _ := row["name"].(string)
	return &domain.ServicePlan{ID: "plan-new", Name: name, IsActive: true}, nil
}

func (f *fakeCatalog) SetPlanActive(_ context.Context, planID string, active bool) error {
	if f.toggled == nil {
		f.toggled = map[string]bool{}
	}
	f.toggled[planID] = active
	return nil
}

func (f *fakeCatalog) DeletePlan(_ context.Context, planID string) error {
	f.deleted = append(f.deleted, planID)
	return nil
}

func (f *fakeCatalog) CountActiveSubscribers(_ context.Context, planID string) (int, error) {
	return f.subscribers[planID], nil
}

func (f *fakeCatalog) ListActiveSubscriptions(_ context.Context, customerID string) ([]domain.Subscription, error) {
	if f.subsErr != nil {
		return nil, f.subsErr
	}
	return f.subs[customerID], nil
}

func (f *fakeCatalog) GetPlan(_ context.Context, planID string) (*domain.ServicePlan, error) {
	if f.planErr != nil {
		return nil, f.planErr
	}
	for i := range f.plans {
		if f.plans[i].ID == planID {
			return &f.plans[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "service_plan", ID: planID}
}

type fakeBilling struct {
	payments   []domain.Payment
	pending    int
	byCustomer map[string][]domain.Invoice
	byID       map[string]*domain.Invoice

	paymentsErr error
	pendingErr  error
	invoicesErr error

	createdRow map[string]any
}

func (f *fakeBilling) ListCompletedPayments(_ context.Context) ([]domain.Payment, error) {
	if f.paymentsErr != nil {
		return nil, f.paymentsErr
	}
	return f.payments, nil
}

func (f *fakeBilling) CountPendingInvoices(_ context.Context) (int, error) {
	if f.pendingErr != nil {
		return 0, f.pendingErr
	}
	return f.pending, nil
}

func (f *fakeBilling) ListInvoicesByCustomer(_ context.Context, customerID string, limit int) ([]domain.Invoice, error) {
	if f.invoicesErr != nil {
		return nil, f.invoicesErr
	}
	invoices := f.byCustomer[customerID]
	if limit > 0 && len(invoices) > limit {
		invoices = invoices[:limit]
	}
	return invoices, nil
}

func (f *fakeBilling) GetInvoice(_ context.Context, invoiceID string) (*domain.Invoice, error) {
	if inv, ok := f.byID[invoiceID]; ok {
		return inv, nil
	}
	return nil, &domain.ErrNotFound{Resource: "invoice", ID: invoiceID}
}

func (f *fakeBilling) CreatePayment(_ context.Context, row map[string]any) (*domain.Payment, error) {
	f.createdRow = row
	ref, _ := row["payment_reference"].(string)
	return &domain.Payment{ID: "pay-new", Reference: ref, Status: domain.PaymentPending}, nil
}

type fakeUsage struct {
	logs []domain.UsageLog
	err  error
}

func (f *fakeUsage) ListUsageSince(_ context.Context, _, _ string) ([]domain.UsageLog, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.logs, nil
}

type fakeTickets struct {
	byCustomer map[string][]domain.SupportTicket
	all        []domain.SupportTicket
	createdRow map[string]any
}

func (f *fakeTickets) ListTicketsByCustomer(_ context.Context, customerID string) ([]domain.SupportTicket, error) {
	return f.byCustomer[customerID], nil
}

func (f *fakeTickets) ListAllTickets(_ context.Context) ([]domain.SupportTicket, error) {
	return f.all, nil
}

func (f *fakeTickets) CreateTicket(_ context.Context, row map[string]any) (*domain.SupportTicket, error) {
	f.createdRow = row
	subject, _ := row["subject"].(string)
	priority, _ := row["priority"].(string)
	return &domain.SupportTicket{
		ID:       "tick-new",
		Subject:  subject,
		Status:   domain.TicketOpen,
		Priority: domain.TicketPriority(priority),
	}, nil
}

type fakeProfiles struct {
	profile *domain.Profile
	err     error
	patch   map[string]any
}

func (f *fakeProfiles) GetProfileByUserID(_ context.Context, userID string) (*domain.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.profile == nil {
		return nil, &domain.ErrNotFound{Resource: "profile", ID: userID}
	}
	return f.profile, nil
}

func (f *fakeProfiles) UpdateProfile(_ context.Context, userID string, patch map[string]any) (*domain.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.patch = patch
	updated := *f.profile
	if name, ok := patch["full_name"].(string); ok {
		updated.FullName = name
	}
	if phone, ok := patch["phone"].(string); ok {
		updated.Phone = phone
	}
	return &updated, nil
}

type fakeCredentials struct {
	userID string
	hash   string
	err    error
}

func (f *fakeCredentials) GetDevCredential(_ context.Context, email string) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	if f.userID == "" {
		return "", "", &domain.ErrNotFound{Resource: "dev_login", ID: email}
	}
	return f.userID, f.hash, nil
}
