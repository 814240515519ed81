package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/netwave/isp-portal-bfa-go/internal/domain"
	"github.com/netwave/isp-portal-bfa-go/internal/infra/observability"
	"github.com/netwave/isp-portal-bfa-go/internal/service"

	"go.uber.org/zap"
)

func pinnedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newReporting(dir *fakeDirectory, cat *fakeCatalog, bill *fakeBilling, usage *fakeUsage) *service.ReportingService {
	return service.NewReportingService(dir, cat, bill, usage, observability.NewMetrics(), zap.NewNop())
}

func TestOverviewStats_Folds(t *testing.T) {
	march := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

	dir := &fakeDirectory{customers: []domain.Customer{
		{ID: "c1", Status: domain.CustomerActive},
		{ID: "c2", Status: domain.CustomerSuspended},
		{ID: "c3", Status: domain.CustomerActive},
	}}
	cat := &fakeCatalog{plans: []domain.ServicePlan{
		{ID: "p1", IsActive: true},
		{ID: "p2", IsActive: true},
	}}
	bill := &fakeBilling{
		payments: []domain.Payment{
			{ID: "pay1", Amount: 1000, TransactionDate: time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC)},
			{ID: "pay2", Amount: 500, TransactionDate: time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC)},
			{ID: "pay3", Amount: 5000, TransactionDate: time.Date(2025, time.January, 8, 0, 0, 0, 0, time.UTC)},
		},
		pending: 4,
	}

	svc := newReporting(dir, cat, bill, &fakeUsage{}).WithClock(pinnedClock(march))
	stats := svc.OverviewStats(context.Background())

	if stats.TotalCustomers != 3 {
		t.Errorf("TotalCustomers = %d, want 3", stats.TotalCustomers)
	}
	if stats.ActiveCustomers != 2 {
		t.Errorf("ActiveCustomers = %d, want 2", stats.ActiveCustomers)
	}
	if stats.TotalPlans != 2 {
		t.Errorf("TotalPlans = %d, want 2", stats.TotalPlans)
	}
	if stats.TotalRevenue != 6500 {
		t.Errorf("TotalRevenue = %f, want 6500", stats.TotalRevenue)
	}
	if stats.MonthlyRevenue != 1500 {
		t.Errorf("MonthlyRevenue = %f, want 1500", stats.MonthlyRevenue)
	}
	if stats.PendingPayments != 4 {
		t.Errorf("PendingPayments = %d, want 4", stats.PendingPayments)
	}
}

// With a pinned clock and unchanged store records, repeated aggregation
// yields identical statistics.
func TestOverviewStats_RepeatableOnUnchangedRecords(t *testing.T) {
	march := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

	dir := &fakeDirectory{customers: []domain.Customer{
		{ID: "c1", Status: domain.CustomerActive},
		{ID: "c2", Status: domain.CustomerSuspended},
	}}
	cat := &fakeCatalog{plans: []domain.ServicePlan{{ID: "p1", IsActive: true}}}
	bill := &fakeBilling{
		payments: []domain.Payment{
			{ID: "pay1", Amount: 1200, TransactionDate: time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC)},
			{ID: "pay2", Amount: 800, TransactionDate: time.Date(2025, time.February, 4, 0, 0, 0, 0, time.UTC)},
		},
		pending: 3,
	}

	svc := newReporting(dir, cat, bill, &fakeUsage{}).WithClock(pinnedClock(march))

	first := svc.OverviewStats(context.Background())
	second := svc.OverviewStats(context.Background())

	if *first != *second {
		t.Errorf("stats changed between runs over unchanged records:\nfirst  %+v\nsecond %+v", first, second)
	}
	if first.TotalRevenue != 2000 || first.MonthlyRevenue != 1200 {
		t.Errorf("unexpected revenue fold: %+v", first)
	}
}

// One failing source degrades its own statistic to zero and leaves the rest
// intact.
func TestOverviewStats_SourceFailureIsIsolated(t *testing.T) {
	dir := &fakeDirectory{customers: []domain.Customer{{ID: "c1", Status: domain.CustomerActive}}}
	cat := &fakeCatalog{plansErr: errors.New("upstream 500")}
	bill := &fakeBilling{
		payments: []domain.Payment{{ID: "pay1", Amount: 750, TransactionDate: time.Now()}},
		pending:  2,
	}

	stats := newReporting(dir, cat, bill, &fakeUsage{}).OverviewStats(context.Background())

	if stats.TotalPlans != 0 {
		t.Errorf("TotalPlans = %d, want 0 from the failed source", stats.TotalPlans)
	}
	if stats.TotalCustomers != 1 || stats.ActiveCustomers != 1 {
		t.Errorf("customer stats degraded unexpectedly: %+v", stats)
	}
	if stats.TotalRevenue != 750 {
		t.Errorf("TotalRevenue = %f, want 750", stats.TotalRevenue)
	}
	if stats.PendingPayments != 2 {
		t.Errorf("PendingPayments = %d, want 2", stats.PendingPayments)
	}
}

func TestOverviewStats_AllSourcesDown(t *testing.T) {
	boom := errors.New("store unreachable")
	dir := &fakeDirectory{customersErr: boom}
	cat := &fakeCatalog{plansErr: boom}
	bill := &fakeBilling{paymentsErr: boom, pendingErr: boom}

	stats := newReporting(dir, cat, bill, &fakeUsage{}).OverviewStats(context.Background())

	if *stats != (domain.SummaryStats{}) {
		t.Errorf("expected all-zero stats, got %+v", stats)
	}
}

// Malformed amounts in store rows coerce to zero instead of poisoning the
// revenue sum.
func TestOverviewStats_MalformedAmountsCoerce(t *testing.T) {
	raw := `[
		{"id":"pay1","amount":1000,"transaction_date":"2025-03-02T00:00:00Z"},
		{"id":"pay2","amount":"not-a-number","transaction_date":"2025-03-03T00:00:00Z"},
		{"id":"pay3","amount":null,"transaction_date":"2025-03-04T00:00:00Z"},
		{"id":"pay4","amount":"500","transaction_date":"2025-03-05T00:00:00Z"}
	]`
	var payments []domain.Payment
	if err := json.Unmarshal([]byte(raw), &payments); err != nil {
		t.Fatalf("decode payments: %v", err)
	}

	march := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	svc := newReporting(&fakeDirectory{}, &fakeCatalog{}, &fakeBilling{payments: payments}, &fakeUsage{}).
		WithClock(pinnedClock(march))

	stats := svc.OverviewStats(context.Background())
	if stats.TotalRevenue != 1500 {
		t.Errorf("TotalRevenue = %f, want 1500", stats.TotalRevenue)
	}
	if stats.MonthlyRevenue != 1500 {
		t.Errorf("MonthlyRevenue = %f, want 1500", stats.MonthlyRevenue)
	}
}

func TestCustomerOverview_Assembles(t *testing.T) {
	limit := 100.0
	march := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

	dir := &fakeDirectory{byUserID: map[string]*domain.Customer{
		"user-1": {ID: "c1", CustomerCode: "NWS25ABC123", Status: domain.CustomerActive},
	}}
	cat := &fakeCatalog{
		plans: []domain.ServicePlan{{ID: "p1", Name: "Home Fiber 20", DataLimitGB: &limit}},
		subs: map[string][]domain.Subscription{
			"c1": {{ID: "s1", CustomerID: "c1", PlanID: "p1", StartDate: "2025-01-01", IsActive: true}},
		},
	}
	bill := &fakeBilling{byCustomer: map[string][]domain.Invoice{
		"c1": {
			{ID: "i1", CustomerID: "c1", Subtotal: 2000, TaxAmount: 320, TotalAmount: 2320, Status: domain.InvoiceSent, DueDate: "2025-03-28"},
			{ID: "i2", CustomerID: "c1", Subtotal: 2000, TaxAmount: 320, TotalAmount: 2320, Status: domain.InvoicePaid, DueDate: "2025-02-28"},
		},
	}}
	// 45.2 GB used this month.
	usage := &fakeUsage{logs: []domain.UsageLog{
		{CustomerID: "c1", Date: "2025-03-01", DataUsedMB: 20000},
		{CustomerID: "c1", Date: "2025-03-10", DataUsedMB: 26284.8},
	}}

	svc := newReporting(dir, cat, bill, usage).WithClock(pinnedClock(march))
	overview, err := svc.CustomerOverview(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if overview.Customer == nil || overview.Customer.ID != "c1" {
		t.Fatalf("expected customer c1, got %+v", overview.Customer)
	}
	if overview.Plan == nil || overview.Plan.Name != "Home Fiber 20" {
		t.Errorf("expected plan joined through the subscription, got %+v", overview.Plan)
	}
	if len(overview.RecentInvoices) != 2 {
		t.Errorf("expected 2 recent invoices, got %d", len(overview.RecentInvoices))
	}
	if overview.Usage == nil {
		t.Fatal("expected usage summary")
	}
	if overview.Usage.UsedGB != 45.2 {
		t.Errorf("UsedGB = %f, want 45.2", overview.Usage.UsedGB)
	}
	pct, ok := overview.Usage.Percent()
	if !ok {
		t.Fatal("expected a usage percentage for a limited plan")
	}
	if pct < 45.19 || pct > 45.21 {
		t.Errorf("usage percent = %f, want ~45.2", pct)
	}
}

func TestCustomerOverview_UnlimitedPlan(t *testing.T) {
	dir := &fakeDirectory{byUserID: map[string]*domain.Customer{
		"user-1": {ID: "c1"},
	}}
	cat := &fakeCatalog{
		plans: []domain.ServicePlan{{ID: "p1", Name: "Business Unlimited"}}, // nil DataLimitGB
		subs: map[string][]domain.Subscription{
			"c1": {{ID: "s1", PlanID: "p1", IsActive: true}},
		},
	}

	overview, err := newReporting(dir, cat, &fakeBilling{}, &fakeUsage{
		logs: []domain.UsageLog{{DataUsedMB: 102400}},
	}).CustomerOverview(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if overview.Usage == nil {
		t.Fatal("expected usage summary")
	}
	if _, ok := overview.Usage.Percent(); ok {
		t.Error("unlimited plan must not report a usage percentage")
	}
}

// A session holder without a customer record still gets a renderable, empty
// overview.
func TestCustomerOverview_NoCustomerRecord(t *testing.T) {
	overview, err := newReporting(&fakeDirectory{}, &fakeCatalog{}, &fakeBilling{}, &fakeUsage{}).
		CustomerOverview(context.Background(), "user-unknown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if overview.Customer != nil {
		t.Error("expected no customer")
	}
	if overview.RecentInvoices == nil {
		t.Error("expected an empty, non-nil invoice list")
	}
}

// Data anomaly: more than one active subscription. The most recent start
// date wins.
func TestCustomerOverview_MultipleActiveSubscriptions(t *testing.T) {
	dir := &fakeDirectory{byUserID: map[string]*domain.Customer{
		"user-1": {ID: "c1"},
	}}
	cat := &fakeCatalog{
		plans: []domain.ServicePlan{
			{ID: "p-old", Name: "Legacy 10"},
			{ID: "p-new", Name: "Fiber 50"},
		},
		subs: map[string][]domain.Subscription{
			"c1": {
				{ID: "s1", PlanID: "p-old", StartDate: "2024-06-01", IsActive: true},
				{ID: "s2", PlanID: "p-new", StartDate: "2025-02-01", IsActive: true},
			},
		},
	}

	overview, err := newReporting(dir, cat, &fakeBilling{}, &fakeUsage{}).
		CustomerOverview(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if overview.Plan == nil || overview.Plan.ID != "p-new" {
		t.Errorf("expected the most recent subscription's plan, got %+v", overview.Plan)
	}
}

func TestCustomerOverview_InvoiceFetchFailureDegrades(t *testing.T) {
	dir := &fakeDirectory{byUserID: map[string]*domain.Customer{
		"user-1": {ID: "c1"},
	}}
	bill := &fakeBilling{invoicesErr: errors.New("timeout")}

	overview, err := newReporting(dir, &fakeCatalog{}, bill, &fakeUsage{}).
		CustomerOverview(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(overview.RecentInvoices) != 0 {
		t.Errorf("expected empty invoices after fetch failure, got %d", len(overview.RecentInvoices))
	}
	if overview.Customer == nil {
		t.Error("customer slot must survive an invoice failure")
	}
}
