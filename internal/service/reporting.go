package service

import (
	"context"
	"errors"
	"time"

	"github.com/netwave/isp-portal-bfa-go/internal/domain"
	"github.com/netwave/isp-portal-bfa-go/internal/infra/observability"
	"github.com/netwave/isp-portal-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var reportTracer = otel.Tracer("service/reporting")

// ReportingService folds raw billing records into dashboard statistics.
type ReportingService struct {
	customers port.CustomerSource
	plans     port.PlanSource
	payments  port.PaymentSource
	invoices  port.InvoiceSource

	directory port.DirectoryStore
	catalog   port.CatalogStore
	billing   port.BillingStore
	usage     port.UsageStore

	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewReportingService creates the reporting service. The four summary
// sources are taken from the same stores the portal operations use.
func NewReportingService(
	directory port.DirectoryStore,
	catalog port.CatalogStore,
	billing port.BillingStore,
	usage port.UsageStore,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ReportingService {
	return &ReportingService{
		customers: directory,
		plans:     catalog,
		payments:  billing,
		invoices:  billing,
		directory: directory,
		catalog:   catalog,
		billing:   billing,
		usage:     usage,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the evaluation clock. Tests use this to pin the
// current month.
func (s *ReportingService) WithClock(now func() time.Time) *ReportingService {
	s.now = now
	return s
}

// OverviewStats issues the four source fetches concurrently and joins them
// all-settled: a failing source degrades its statistic to zero instead of
// failing the whole aggregation. Partial data beats no data.
func (s *ReportingService) OverviewStats(ctx context.Context) *domain.SummaryStats {
	ctx, span := reportTracer.Start(ctx, "ReportingService.OverviewStats")
	defer span.End()

	start := s.now()
	defer func() {
		s.metrics.RecordRequestDuration("overview_stats", time.Since(start))
	}()

	var (
		customers []domain.Customer
		plans     []domain.ServicePlan
		payments  []domain.Payment
		pending   int
	)

	// Each goroutine writes to its own slot and swallows its own failure, so
	// errgroup here only provides the join and context plumbing — Wait never
	// returns a non-nil error.
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := s.customers.ListCustomers(gCtx)
		if err != nil {
			s.sourceFailed("customers", err)
			return nil
		}
		customers = rows
		return nil
	})

	g.Go(func() error {
		rows, err := s.plans.ListActivePlans(gCtx)
		if err != nil {
			s.sourceFailed("plans", err)
			return nil
		}
		plans = rows
		return nil
	})

	g.Go(func() error {
		rows, err := s.payments.ListCompletedPayments(gCtx)
		if err != nil {
			s.sourceFailed("payments", err)
			return nil
		}
		payments = rows
		return nil
	})

	g.Go(func() error {
		n, err := s.invoices.CountPendingInvoices(gCtx)
		if err != nil {
			s.sourceFailed("invoices", err)
			return nil
		}
		pending = n
		return nil
	})

	_ = g.Wait()

	stats := &domain.SummaryStats{
		TotalCustomers:  len(customers),
		TotalPlans:      len(plans),
		PendingPayments: pending,
	}
	for _, c := range customers {
		if c.Status == domain.CustomerActive {
			stats.ActiveCustomers++
		}
	}

	month, year := s.now().Month(), s.now().Year()
	for _, p := range payments {
		amt := p.Amount.Float64()
		stats.TotalRevenue += amt
		if p.TransactionDate.Month() == month && p.TransactionDate.Year() == year {
			stats.MonthlyRevenue += amt
		}
	}

	span.SetAttributes(
		attribute.Int("stats.total_customers", stats.TotalCustomers),
		attribute.Float64("stats.total_revenue", stats.TotalRevenue),
	)
	return stats
}

func (s *ReportingService) sourceFailed(source string, err error) {
	s.metrics.IncrSourceError(source)
	s.logger.Warn("reporting: source fetch failed, using zero value",
		zap.String("source", source),
		zap.Error(err),
	)
}

// CustomerOverview assembles the customer dashboard: the caller's customer
// record, active subscription and plan, recent invoices, and current-month
// usage. Invoice fetch failure degrades to an empty list; a missing customer
// record is returned as an overview with only nil slots so the view still
// renders.
func (s *ReportingService) CustomerOverview(ctx context.Context, userID string) (*domain.CustomerOverview, error) {
	ctx, span := reportTracer.Start(ctx, "ReportingService.CustomerOverview")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	overview := &domain.CustomerOverview{RecentInvoices: []domain.Invoice{}}

	customer, err := s.directory.GetCustomerByUserID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return overview, nil
		}
		return nil, err
	}
	overview.Customer = customer

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sub, err := s.activeSubscription(gCtx, customer.ID)
		if err != nil || sub == nil {
			return nil
		}
		overview.Subscription = sub

		plan, err := s.catalog.GetPlan(gCtx, sub.PlanID)
		if err != nil {
			s.sourceFailed("plan", err)
			return nil
		}
		overview.Plan = plan
		return nil
	})

	g.Go(func() error {
		invoices, err := s.billing.ListInvoicesByCustomer(gCtx, customer.ID, 5)
		if err != nil {
			s.sourceFailed("invoices", err)
			return nil
		}
		for i := range invoices {
			if ierr := invoices[i].CheckTotals(); ierr != nil {
				s.metrics.IncrIntegrityWarning("invoice")
				s.logger.Warn("reporting: invoice totals mismatch", zap.Error(ierr))
			}
		}
		overview.RecentInvoices = invoices
		return nil
	})

	g.Go(func() error {
		used, err := s.monthUsageGB(gCtx, customer.ID)
		if err != nil {
			s.sourceFailed("usage", err)
			return nil
		}
		overview.Usage = &domain.UsageSummary{UsedGB: used}
		return nil
	})

	_ = g.Wait()

	if overview.Usage != nil && overview.Plan != nil {
		overview.Usage.LimitGB = overview.Plan.DataLimitGB
	}

	return overview, nil
}

// activeSubscription returns the customer's single active subscription.
// More than one active row is a data-integrity anomaly; we log it and pick
// the most recent start date rather than refusing to render.
func (s *ReportingService) activeSubscription(ctx context.Context, customerID string) (*domain.Subscription, error) {
	subs, err := s.catalog.ListActiveSubscriptions(ctx, customerID)
	if err != nil {
		s.sourceFailed("subscription", err)
		return nil, err
	}
	switch len(subs) {
	case 0:
		return nil, nil
	case 1:
		return &subs[0], nil
	}

	s.logger.Warn("reporting: multiple active subscriptions",
		zap.String("customer_id", customerID),
		zap.Int("count", len(subs)),
	)
	latest := subs[0]
	for _, sub := range subs[1:] {
		if sub.StartDate > latest.StartDate {
			latest = sub
		}
	}
	return &latest, nil
}

func (s *ReportingService) monthUsageGB(ctx context.Context, customerID string) (float64, error) {
	monthStart := time.Date(s.now().Year(), s.now().Month(), 1, 0, 0, 0, 0, s.now().Location())
	logs, err := s.usage.ListUsageSince(ctx, customerID, monthStart.Format("2006-01-02"))
	if err != nil {
		return 0, err
	}
	var mb float64
	for _, l := range logs {
		mb += l.DataUsedMB
	}
	return mb / 1024, nil
}

func isNotFound(err error) bool {
	var notFound *domain.ErrNotFound
	return errors.As(err, &notFound)
}
