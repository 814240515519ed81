package handler

import (
	"net/http"

	"github.com/netwave/isp-portal-bfa-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Auth — dev login and logout
// ============================================================

type devLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func devLoginHandler(svc *service.SessionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/dev-login")
		defer span.End()

		var req devLoginRequest
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		token, expiresIn, err := svc.DevLogin(ctx, req.Email, req.Password)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, tokenResponse{
			AccessToken: token,
			TokenType:   "bearer",
			ExpiresIn:   expiresIn,
		})
	}
}

func logoutHandler(svc *service.SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/logout")
		defer span.End()

		id := IdentityFromContext(ctx)
		svc.Logout(ctx, id.Session.UserID)
		writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
	}
}
