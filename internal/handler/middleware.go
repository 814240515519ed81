package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/netwave/isp-portal-bfa-go/internal/domain"
	"github.com/netwave/isp-portal-bfa-go/internal/infra/observability"
	"github.com/netwave/isp-portal-bfa-go/internal/port"
	"github.com/netwave/isp-portal-bfa-go/internal/service"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// MetricsMiddleware feeds the request counters behind /v1/admin/ops. A 502
// response is the mapped record-store failure, so it also bumps the external
// error counter.
func MetricsMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			metrics.RecordRequestDuration(r.Method, time.Since(start))
			if ww.Status() >= http.StatusInternalServerError {
				metrics.IncrRequest("error")
			} else {
				metrics.IncrRequest("success")
			}
			if ww.Status() == http.StatusBadGateway {
				metrics.IncrExternalError("record-store")
			}
		})
	}
}

type contextKey string

const identityKey contextKey = "identity"

// SessionMiddleware verifies the bearer token (when present) and resolves
// the caller's identity into the request context. It never rejects on its
// own: a missing or bad token becomes an anonymous identity and the access
// guard downstream turns that into the right decision. Identity is resolved
// fresh on every request; nothing is remembered between navigations.
func SessionMiddleware(verifier port.SessionVerifier, identity *service.IdentityService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var session *domain.Session

			if authHeader := r.Header.Get("Authorization"); authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
					s, err := verifier.VerifySession(r.Context(), parts[1])
					if err != nil {
						logger.Warn("auth: token rejected",
							zap.String("path", r.URL.Path),
							zap.String("remote_addr", r.RemoteAddr),
							zap.Error(err),
						)
					} else {
						session = s
					}
				}
			}

			id := identity.Resolve(r.Context(), session)
			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext extracts the resolved identity from context. Returns
// an anonymous identity when the session middleware did not run.
func IdentityFromContext(ctx context.Context) *domain.Identity {
	if id, ok := ctx.Value(identityKey).(*domain.Identity); ok {
		return id
	}
	return &domain.Identity{State: domain.IdentityAnonymous}
}

// RequireAccess guards a route group with the access decision table:
// Redirect maps to 401 (the frontend sends the user to login), Pending to
// 503 (retry, identity is still loading), Deny to 403.
func RequireAccess(req domain.Requirement, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFromContext(r.Context())

			switch decision := service.Guard(req, id); decision.Kind {
			case domain.DecisionAllow:
				next.ServeHTTP(w, r)
			case domain.DecisionPending:
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusServiceUnavailable, "identity still resolving, retry")
			case domain.DecisionDeny:
				logger.Warn("access denied",
					zap.String("path", r.URL.Path),
					zap.String("requirement", req.String()),
					zap.String("reason", decision.Reason),
				)
				writeError(w, http.StatusForbidden, decision.Reason)
			default:
				writeError(w, http.StatusUnauthorized, "authentication required")
			}
		})
	}
}
