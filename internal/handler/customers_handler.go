package handler

import (
	"net/http"

	"github.com/netwave/isp-portal-bfa-go/internal/domain"
	"github.com/netwave/isp-portal-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Customer directory (admin)
// ============================================================

func listCustomersHandler(svc *service.DirectoryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/customers")
		defer span.End()

		listings, err := svc.ListCustomers(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		// Optional status filter, e.g. ?status=suspended
		if statusFilter := r.URL.Query().Get("status"); statusFilter != "" {
			filtered := make([]domain.CustomerListing, 0, len(listings))
			for _, l := range listings {
				if string(l.Status) == statusFilter {
					filtered = append(filtered, l)
				}
			}
			listings = filtered
		}

		writeJSON(w, http.StatusOK, map[string]any{"customers": listings})
	}
}

func createCustomerHandler(svc *service.DirectoryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/customers")
		defer span.End()

		var req domain.NewCustomerRequest
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		customer, err := svc.CreateCustomer(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, customer)
	}
}

type statusUpdateRequest struct {
	Status domain.CustomerStatus `json:"status"`
}

func updateCustomerStatusHandler(svc *service.DirectoryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/admin/customers/{customerId}/status")
		defer span.End()

		var req statusUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		customerID := chi.URLParam(r, "customerId")
		if err := svc.UpdateStatus(ctx, customerID, req.Status); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": customerID, "status": string(req.Status)})
	}
}
