package service

import (
	"context"
	"sync/atomic"

	"github.com/netwave/isp-portal-bfa-go/internal/domain"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var pageTracer = otel.Tracer("service/page")

// Mount is the liveness token for one view-mount cycle. Fetches launched for
// a view carry its mount; once the view unmounts, late-arriving results are
// dropped instead of being applied to a stale view instance.
type Mount struct {
	alive atomic.Bool
}

// NewMount returns a live mount token.
func NewMount() *Mount {
	m := &Mount{}
	m.alive.Store(true)
	return m
}

// Unmount marks the cycle dead. Safe to call more than once.
func (m *Mount) Unmount() { m.alive.Store(false) }

// Alive reports whether the cycle is still live.
func (m *Mount) Alive() bool { return m.alive.Load() }

// Apply runs fn only while the mount is live and reports whether it ran.
func (m *Mount) Apply(fn func()) bool {
	if !m.alive.Load() {
		return false
	}
	fn()
	return true
}

// PageState is the terminal render decision for a dashboard load. Exactly one
// of the aggregation payloads is set, matching the selected variant.
type PageState struct {
	Decision domain.Decision          `json:"decision"`
	View     domain.ViewVariant       `json:"view,omitempty"`
	Identity *domain.Identity         `json:"identity,omitempty"`
	Stats    *domain.SummaryStats     `json:"stats,omitempty"`
	Overview *domain.CustomerOverview `json:"overview,omitempty"`
}

// PageService drives the page state machine:
//
//	Loading -> {Unauthenticated, AccessDenied, Allowed(view)}
//
// Every load starts from scratch — session verification, identity resolution
// and guarding are re-run on each navigation, never cached.
type PageService struct {
	identity  *IdentityService
	reporting *ReportingService
	logger    *zap.Logger
}

// NewPageService creates the page flow.
func NewPageService(identity *IdentityService, reporting *ReportingService, logger *zap.Logger) *PageService {
	return &PageService{identity: identity, reporting: reporting, logger: logger}
}

// Load resolves the identity, guards it against the requirement, selects the
// view variant for the role and pulls that variant's aggregation. The mount
// token fences the final state assignment: if the view unmounted while the
// aggregation was in flight, the state is discarded and a pending decision is
// returned instead.
func (s *PageService) Load(ctx context.Context, session *domain.Session, req domain.Requirement, mount *Mount) *PageState {
	ctx, span := pageTracer.Start(ctx, "PageService.Load")
	defer span.End()

	id := s.identity.Resolve(ctx, session)

	decision := Guard(req, id)
	if decision.Kind != domain.DecisionAllow {
		return &PageState{Decision: decision, Identity: id}
	}

	state := &PageState{
		Decision: decision,
		Identity: id,
		View:     SelectView(id.Role),
	}

	switch state.View {
	case domain.AdminView:
		stats := s.reporting.OverviewStats(ctx)
		if !mount.Apply(func() { state.Stats = stats }) {
			return s.stale(id)
		}
	case domain.CustomerView:
		overview, err := s.reporting.CustomerOverview(ctx, id.Session.UserID)
		if err != nil {
			// Degrade to an empty overview; the view must never be left
			// permanently blank.
			s.logger.Warn("page: customer overview failed", zap.Error(err))
			overview = &domain.CustomerOverview{RecentInvoices: []domain.Invoice{}}
		}
		if !mount.Apply(func() { state.Overview = overview }) {
			return s.stale(id)
		}
	}

	return state
}

func (s *PageService) stale(id *domain.Identity) *PageState {
	s.logger.Debug("page: view unmounted before results arrived, dropping")
	return &PageState{Decision: domain.Decision{Kind: domain.DecisionPending}, Identity: id}
}
