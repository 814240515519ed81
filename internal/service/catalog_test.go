package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/netwave/isp-portal-bfa-go/internal/domain"
	"github.com/netwave/isp-portal-bfa-go/internal/infra/cache"
	"github.com/netwave/isp-portal-bfa-go/internal/infra/observability"
	"github.com/netwave/isp-portal-bfa-go/internal/service"

	"go.uber.org/zap"
)

func newCatalog(store *fakeCatalog) *service.CatalogService {
	return service.NewCatalogService(store, cache.New[[]domain.ServicePlan](time.Minute), observability.NewMetrics(), zap.NewNop())
}

func TestActivePlans_Cached(t *testing.T) {
	store := &fakeCatalog{plans: []domain.ServicePlan{{ID: "p1", Name: "Home Fiber 20", IsActive: true}}}
	svc := newCatalog(store)

	for i := 0; i < 3; i++ {
		plans, err := svc.ActivePlans(context.Background())
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if len(plans) != 1 {
			t.Fatalf("call %d: got %d plans", i, len(plans))
		}
	}

	if store.activeCalls != 1 {
		t.Errorf("store hit %d times, want 1 (cached)", store.activeCalls)
	}
}

func TestCreatePlan_InvalidatesCache(t *testing.T) {
	store := &fakeCatalog{plans: []domain.ServicePlan{{ID: "p1", IsActive: true}}}
	svc := newCatalog(store)

	if _, err := svc.ActivePlans(context.Background()); err != nil {
		t.Fatal(err)
	}

	_, err := svc.CreatePlan(context.Background(), &service.NewPlanRequest{
		Name:         "Biz Fiber 100",
		Type:         domain.PlanBusiness,
		SpeedMbps:    100,
		MonthlyPrice: 7500,
	})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}

	if _, err := svc.ActivePlans(context.Background()); err != nil {
		t.Fatal(err)
	}
	if store.activeCalls != 2 {
		t.Errorf("store hit %d times, want 2 (cache invalidated by create)", store.activeCalls)
	}
}

func TestCreatePlan_Validation(t *testing.T) {
	svc := newCatalog(&fakeCatalog{})
	neg := -10.0

	tests := []struct {
		name string
		req  *service.NewPlanRequest
	}{
		{"blank name", &service.NewPlanRequest{Type: domain.PlanResidential, SpeedMbps: 10, MonthlyPrice: 1000}},
		{"bad type", &service.NewPlanRequest{Name: "X", Type: "satellite", SpeedMbps: 10, MonthlyPrice: 1000}},
		{"zero speed", &service.NewPlanRequest{Name: "X", Type: domain.PlanResidential, MonthlyPrice: 1000}},
		{"zero price", &service.NewPlanRequest{Name: "X", Type: domain.PlanResidential, SpeedMbps: 10}},
		{"negative data limit", &service.NewPlanRequest{Name: "X", Type: domain.PlanResidential, SpeedMbps: 10, MonthlyPrice: 1000, DataLimitGB: &neg}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePlan(context.Background(), tt.req)
			var validation *domain.ErrValidation
			if !errors.As(err, &validation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestDeletePlan_RefusedWithActiveSubscribers(t *testing.T) {
	store := &fakeCatalog{subscribers: map[string]int{"p1": 12}}
	svc := newCatalog(store)

	err := svc.DeletePlan(context.Background(), "p1")
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if len(store.deleted) != 0 {
		t.Error("plan must not be deleted while subscribed")
	}
}

func TestDeletePlan_NoSubscribers(t *testing.T) {
	store := &fakeCatalog{}
	svc := newCatalog(store)

	if err := svc.DeletePlan(context.Background(), "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "p1" {
		t.Errorf("deleted = %v, want [p1]", store.deleted)
	}
}

func TestSetActive_UnknownPlan(t *testing.T) {
	svc := newCatalog(&fakeCatalog{})

	err := svc.SetActive(context.Background(), "missing", false)
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
