package handler

import (
	"net/http"
	"time"

	"github.com/netwave/isp-portal-bfa-go/internal/domain"
	"github.com/netwave/isp-portal-bfa-go/internal/infra/observability"
	"github.com/netwave/isp-portal-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services bundles everything the router serves.
type Services struct {
	Page      *service.PageService
	Identity  *service.IdentityService
	Sessions  *service.SessionService
	Directory *service.DirectoryService
	Catalog   *service.CatalogService
	Billing   *service.BillingService
	Tickets   *service.TicketService
	Account   *service.AccountService
	Reporting *service.ReportingService
}

// NewRouter creates the HTTP router with all routes and middleware.
// Every /v1 route gets the session middleware; access requirements are
// applied per route group.
func NewRouter(svcs *Services, metrics *observability.Metrics, locale, currency string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	money := newMoneyFormatter(locale, currency)

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(MetricsMiddleware(metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svcs.Catalog))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Use(SessionMiddleware(svcs.Sessions, svcs.Identity, logger))

		// Public
		r.Post("/auth/dev-login", devLoginHandler(svcs.Sessions, logger))
		r.Get("/plans", listActivePlansHandler(svcs.Catalog, money, logger))

		// The dashboard runs the full page state machine itself, so the
		// guard decision comes back in the body instead of a middleware
		// rejection.
		r.Get("/dashboard", dashboardHandler(svcs.Page, domain.RequireAuthenticated, logger))

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(RequireAccess(domain.RequireAuthenticated, logger))

			r.Post("/auth/logout", logoutHandler(svcs.Sessions))

			r.Get("/bills", listBillsHandler(svcs.Billing, money, logger))
			r.Post("/payments", recordPaymentHandler(svcs.Billing, logger))

			r.Get("/tickets", listTicketsHandler(svcs.Tickets, logger))
			r.Post("/tickets", createTicketHandler(svcs.Tickets, logger))

			r.Get("/account/profile", getProfileHandler(svcs.Account, logger))
			r.Patch("/account/profile", updateProfileHandler(svcs.Account, logger))
		})

		// Admin
		r.Route("/admin", func(r chi.Router) {
			// The admin dashboard runs the page state machine with the admin
			// requirement baked in, so it skips the middleware guard.
			r.Get("/dashboard", dashboardHandler(svcs.Page, domain.RequireAdmin, logger))

			r.Group(func(r chi.Router) {
				r.Use(RequireAccess(domain.RequireAdmin, logger))
				adminRoutes(r, svcs, metrics, logger)
			})
		})
	})

	return r
}

func adminRoutes(r chi.Router, svcs *Services, metrics *observability.Metrics, logger *zap.Logger) {
	r.Get("/customers", listCustomersHandler(svcs.Directory, logger))
	r.Post("/customers", createCustomerHandler(svcs.Directory, logger))
	r.Patch("/customers/{customerId}/status", updateCustomerStatusHandler(svcs.Directory, logger))

	r.Get("/plans", listPlanListingsHandler(svcs.Catalog, logger))
	r.Post("/plans", createPlanHandler(svcs.Catalog, logger))
	r.Patch("/plans/{planId}/active", setPlanActiveHandler(svcs.Catalog, logger))
	r.Delete("/plans/{planId}", deletePlanHandler(svcs.Catalog, logger))

	r.Get("/stats", adminStatsHandler(svcs.Reporting))
	r.Get("/ops", opsSnapshotHandler(metrics))
}

// healthzHandler probes the record store through the plan catalog, the
// cheapest read path it has.
func healthzHandler(catalog *service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		status := "healthy"
		start := time.Now()
		_, err := catalog.ActivePlans(r.Context())
		latency := time.Since(start).Milliseconds()
		if err != nil {
			status = "degraded"
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status": status,
			"services": []map[string]any{
				{"name": "portal-api", "status": "healthy", "latency_ms": 0, "last_checked": now},
				{"name": "record-store", "status": status, "latency_ms": latency, "last_checked": now},
			},
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
