// Package service provides the business logic layer (use cases): identity
// resolution, access guarding, view selection, reporting and the billing
// portal operations behind them.
package service

import (
	"context"
	"errors"

	"github.com/netwave/isp-portal-bfa-go/internal/domain"
	"github.com/netwave/isp-portal-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var identityTracer = otel.Tracer("service/identity")

// IdentityService resolves a verified session to a profile, role and
// capability set.
type IdentityService struct {
	profiles port.ProfileStore
	logger   *zap.Logger
}

// NewIdentityService creates the identity resolver.
func NewIdentityService(profiles port.ProfileStore, logger *zap.Logger) *IdentityService {
	return &IdentityService{profiles: profiles, logger: logger}
}

// Resolve builds the identity context for one request. The three outcomes are
// deliberately distinct:
//   - nil session      -> IdentityAnonymous (terminal, render login)
//   - profile missing  -> IdentityResolved with no role (restricted view)
//   - transport error  -> IdentityPending (transient, render loading)
//
// A store hiccup must never look like a logout.
func (s *IdentityService) Resolve(ctx context.Context, session *domain.Session) *domain.Identity {
	ctx, span := identityTracer.Start(ctx, "IdentityService.Resolve")
	defer span.End()

	if session == nil {
		return &domain.Identity{State: domain.IdentityAnonymous}
	}
	span.SetAttributes(attribute.String("user.id", session.UserID))

	profile, err := s.profiles.GetProfileByUserID(ctx, session.UserID)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			// Authenticated but never provisioned; a handled case, not an error.
			s.logger.Warn("identity: session without profile",
				zap.String("user_id", session.UserID),
			)
			return &domain.Identity{State: domain.IdentityResolved, Session: session}
		}

		s.logger.Warn("identity: profile fetch failed, deferring",
			zap.String("user_id", session.UserID),
			zap.Error(err),
		)
		return &domain.Identity{State: domain.IdentityPending, Session: session}
	}

	return &domain.Identity{
		State:        domain.IdentityResolved,
		Session:      session,
		Profile:      profile,
		Role:         profile.Role,
		Capabilities: profile.Role.Capabilities(),
	}
}
