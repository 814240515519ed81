package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/netwave/isp-portal-bfa-go/internal/domain"
	"github.com/netwave/isp-portal-bfa-go/internal/infra/observability"
	"github.com/netwave/isp-portal-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var catalogTracer = otel.Tracer("service/catalog")

const activePlansCacheKey = "plans:active"

// CatalogService manages the service-plan catalog.
type CatalogService struct {
	store   port.CatalogStore
	cache   port.Cache[[]domain.ServicePlan]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewCatalogService creates the catalog service. The cache holds the public
// active-plan listing; admin views and mutations always hit the store.
func NewCatalogService(store port.CatalogStore, cache port.Cache[[]domain.ServicePlan], metrics *observability.Metrics, logger *zap.Logger) *CatalogService {
	return &CatalogService{store: store, cache: cache, metrics: metrics, logger: logger}
}

// ActivePlans returns the plans currently offered, cached briefly since the
// catalog changes rarely.
func (s *CatalogService) ActivePlans(ctx context.Context) ([]domain.ServicePlan, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.ActivePlans")
	defer span.End()

	if plans, ok := s.cache.Get(activePlansCacheKey); ok {
		s.metrics.IncrCacheHit("plans")
		return plans, nil
	}
	s.metrics.IncrCacheMiss("plans")

	plans, err := s.store.ListActivePlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active plans: %w", err)
	}
	s.cache.Set(activePlansCacheKey, plans)
	return plans, nil
}

// ListPlans returns the full catalog with subscriber counts (admin view).
func (s *CatalogService) ListPlans(ctx context.Context) ([]domain.PlanListing, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.ListPlans")
	defer span.End()

	return s.store.ListPlanListings(ctx)
}

// NewPlanRequest is the body for creating a plan.
type NewPlanRequest struct {
	Name         string          `json:"name"`
	Type         domain.PlanType `json:"type"`
	SpeedMbps    int             `json:"speedMbps"`
	DataLimitGB  *float64        `json:"dataLimitGB,omitempty"`
	MonthlyPrice float64         `json:"monthlyPrice"`
	SetupFee     float64         `json:"setupFee"`
	Description  string          `json:"description,omitempty"`
}

// CreatePlan adds a plan to the catalog.
func (s *CatalogService) CreatePlan(ctx context.Context, req *NewPlanRequest) (*domain.ServicePlan, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.CreatePlan")
	defer span.End()

	if strings.TrimSpace(req.Name) == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "required"}
	}
	if !req.Type.Valid() {
		return nil, &domain.ErrValidation{Field: "type", Message: "must be residential, business or enterprise"}
	}
	if req.SpeedMbps <= 0 {
		return nil, &domain.ErrValidation{Field: "speedMbps", Message: "must be positive"}
	}
	if req.MonthlyPrice <= 0 {
		return nil, &domain.ErrValidation{Field: "monthlyPrice", Message: "must be positive"}
	}
	if req.DataLimitGB != nil && *req.DataLimitGB <= 0 {
		return nil, &domain.ErrValidation{Field: "dataLimitGB", Message: "must be positive or omitted for unlimited"}
	}

	row := map[string]any{
		"name":          req.Name,
		"type":          string(req.Type),
		"speed_mbps":    req.SpeedMbps,
		"monthly_price": req.MonthlyPrice,
		"setup_fee":     req.SetupFee,
		"description":   req.Description,
		"is_active":     true,
	}
	if req.DataLimitGB != nil {
		row["data_limit_gb"] = *req.DataLimitGB
	}

	plan, err := s.store.CreatePlan(ctx, row)
	if err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}

	s.cache.Delete(activePlansCacheKey)
	s.logger.Info("plan created", zap.String("plan_id", plan.ID), zap.String("name", plan.Name))
	return plan, nil
}

// SetActive toggles whether a plan is offered.
func (s *CatalogService) SetActive(ctx context.Context, planID string, active bool) error {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.SetActive")
	defer span.End()

	if _, err := s.store.GetPlan(ctx, planID); err != nil {
		return err
	}
	if err := s.store.SetPlanActive(ctx, planID, active); err != nil {
		return fmt.Errorf("set plan active: %w", err)
	}

	s.cache.Delete(activePlansCacheKey)
	s.logger.Info("plan toggled", zap.String("plan_id", planID), zap.Bool("active", active))
	return nil
}

// DeletePlan removes a plan. Refused while the plan still has active
// subscribers.
func (s *CatalogService) DeletePlan(ctx context.Context, planID string) error {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.DeletePlan")
	defer span.End()

	subscribers, err := s.store.CountActiveSubscribers(ctx, planID)
	if err != nil {
		return fmt.Errorf("count subscribers: %w", err)
	}
	if subscribers > 0 {
		return &domain.ErrConflict{Message: fmt.Sprintf("plan has %d active subscribers", subscribers)}
	}

	if err := s.store.DeletePlan(ctx, planID); err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}

	s.cache.Delete(activePlansCacheKey)
	s.logger.Info("plan deleted", zap.String("plan_id", planID))
	return nil
}
