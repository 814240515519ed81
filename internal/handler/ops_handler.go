package handler

import (
	"net/http"

	"github.com/netwave/isp-portal-bfa-go/internal/infra/observability"
)

// opsSnapshotHandler serves a lightweight operational rollup for the admin
// console, derived from the same counters Prometheus scrapes.
func opsSnapshotHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/admin/ops")
		defer span.End()

		writeJSON(w, http.StatusOK, metrics.GetOpsSnapshot())
	}
}
