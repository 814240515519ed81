package handler

import (
	"net/http"

	"github.com/netwave/isp-portal-bfa-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Account profile
// ============================================================

func getProfileHandler(svc *service.AccountService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/account/profile")
		defer span.End()

		id := IdentityFromContext(ctx)
		profile, err := svc.GetProfile(ctx, id.Session.UserID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

func updateProfileHandler(svc *service.AccountService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/account/profile")
		defer span.End()

		var req service.UpdateProfileRequest
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		id := IdentityFromContext(ctx)
		profile, err := svc.UpdateProfile(ctx, id.Session.UserID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}
