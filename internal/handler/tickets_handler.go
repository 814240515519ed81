package handler

import (
	"net/http"

	"github.com/netwave/isp-portal-bfa-go/internal/domain"
	"github.com/netwave/isp-portal-bfa-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Support tickets
// ============================================================

func listTicketsHandler(svc *service.TicketService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/tickets")
		defer span.End()

		id := IdentityFromContext(ctx)
		tickets, err := svc.TicketsForUser(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tickets": tickets})
	}
}

func createTicketHandler(svc *service.TicketService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/tickets")
		defer span.End()

		var req domain.NewTicketRequest
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		id := IdentityFromContext(ctx)
		ticket, err := svc.OpenTicket(ctx, id.Session.UserID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, ticket)
	}
}
