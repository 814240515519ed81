package handler

import (
	"net/http"

	"github.com/netwave/isp-portal-bfa-go/internal/domain"
	"github.com/netwave/isp-portal-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Service plan catalog
// ============================================================

// planView is a ServicePlan with a display price for the public listing.
type planView struct {
	domain.ServicePlan
	PriceDisplay string `json:"price_display"`
}

// listActivePlansHandler serves the public catalog.
func listActivePlansHandler(svc *service.CatalogService, money *moneyFormatter, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/plans")
		defer span.End()

		plans, err := svc.ActivePlans(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		views := make([]planView, 0, len(plans))
		for _, p := range plans {
			views = append(views, planView{
				ServicePlan:  p,
				PriceDisplay: money.format(p.MonthlyPrice.Float64()),
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"plans": views})
	}
}

func listPlanListingsHandler(svc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/plans")
		defer span.End()

		listings, err := svc.ListPlans(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"plans": listings})
	}
}

func createPlanHandler(svc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/plans")
		defer span.End()

		var req service.NewPlanRequest
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		plan, err := svc.CreatePlan(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, plan)
	}
}

type planActiveRequest struct {
	Active bool `json:"active"`
}

func setPlanActiveHandler(svc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/admin/plans/{planId}/active")
		defer span.End()

		var req planActiveRequest
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		planID := chi.URLParam(r, "planId")
		if err := svc.SetActive(ctx, planID, req.Active); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": planID, "active": req.Active})
	}
}

func deletePlanHandler(svc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/admin/plans/{planId}")
		defer span.End()

		planID := chi.URLParam(r, "planId")
		if err := svc.DeletePlan(ctx, planID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
