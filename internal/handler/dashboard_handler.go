package handler

import (
	"context"
	"net/http"

	"github.com/netwave/isp-portal-bfa-go/internal/domain"
	"github.com/netwave/isp-portal-bfa-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Dashboard — the page state machine over HTTP
// ============================================================

// dashboardHandler runs one full page load: resolve, guard, select the view
// and pull its aggregation. The mount token is tied to the request context,
// so a client that disconnects mid-aggregation never gets a half-applied
// state.
func dashboardHandler(svc *service.PageService, req domain.Requirement, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/dashboard")
		defer span.End()

		id := IdentityFromContext(ctx)

		mount := service.NewMount()
		stop := context.AfterFunc(ctx, mount.Unmount)
		defer stop()

		state := svc.Load(ctx, id.Session, req, mount)

		switch state.Decision.Kind {
		case domain.DecisionAllow:
			writeJSON(w, http.StatusOK, state)
		case domain.DecisionRedirect:
			writeJSON(w, http.StatusUnauthorized, state)
		case domain.DecisionPending:
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusServiceUnavailable, state)
		case domain.DecisionDeny:
			logger.Warn("dashboard access denied", zap.String("reason", state.Decision.Reason))
			writeJSON(w, http.StatusForbidden, state)
		}
	}
}

// adminStatsHandler serves the raw summary statistics for the admin view.
func adminStatsHandler(svc *service.ReportingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/stats")
		defer span.End()

		writeJSON(w, http.StatusOK, svc.OverviewStats(ctx))
	}
}
