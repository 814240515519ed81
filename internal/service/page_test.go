package service_test

import (
	"context"
	"testing"

	"github.com/netwave/isp-portal-bfa-go/internal/domain"
	"github.com/netwave/isp-portal-bfa-go/internal/service"

	"go.uber.org/zap"
)

func newPage(profiles *fakeProfiles, dir *fakeDirectory, cat *fakeCatalog, bill *fakeBilling) *service.PageService {
	identity := service.NewIdentityService(profiles, zap.NewNop())
	reporting := newReporting(dir, cat, bill, &fakeUsage{})
	return service.NewPageService(identity, reporting, zap.NewNop())
}

func TestLoad_NoSession(t *testing.T) {
	svc := newPage(&fakeProfiles{}, &fakeDirectory{}, &fakeCatalog{}, &fakeBilling{})

	state := svc.Load(context.Background(), nil, domain.RequireAuthenticated, service.NewMount())
	if state.Decision.Kind != domain.DecisionRedirect {
		t.Errorf("expected redirect, got %s", state.Decision.Kind)
	}
	if state.View != "" {
		t.Errorf("no view should be selected, got %s", state.View)
	}
	if state.Stats != nil || state.Overview != nil {
		t.Error("no aggregation should run before an Allow")
	}
}

func TestLoad_AdminGetsStats(t *testing.T) {
	profiles := &fakeProfiles{profile: &domain.Profile{ID: "user-1", Role: domain.RoleAdmin}}
	dir := &fakeDirectory{customers: []domain.Customer{{ID: "c1", Status: domain.CustomerActive}}}
	svc := newPage(profiles, dir, &fakeCatalog{}, &fakeBilling{pending: 3})

	state := svc.Load(context.Background(), &domain.Session{UserID: "user-1"}, domain.RequireAdmin, service.NewMount())
	if state.Decision.Kind != domain.DecisionAllow {
		t.Fatalf("expected allow, got %s", state.Decision.Kind)
	}
	if state.View != domain.AdminView {
		t.Errorf("expected admin view, got %s", state.View)
	}
	if state.Stats == nil {
		t.Fatal("expected summary stats")
	}
	if state.Stats.PendingPayments != 3 {
		t.Errorf("PendingPayments = %d, want 3", state.Stats.PendingPayments)
	}
	if state.Overview != nil {
		t.Error("admin load must not carry a customer overview")
	}
}

func TestLoad_CustomerGetsOverview(t *testing.T) {
	profiles := &fakeProfiles{profile: &domain.Profile{ID: "user-1", Role: domain.RoleCustomer}}
	dir := &fakeDirectory{byUserID: map[string]*domain.Customer{
		"user-1": {ID: "c1", Status: domain.CustomerActive},
	}}
	svc := newPage(profiles, dir, &fakeCatalog{}, &fakeBilling{})

	state := svc.Load(context.Background(), &domain.Session{UserID: "user-1"}, domain.RequireAuthenticated, service.NewMount())
	if state.View != domain.CustomerView {
		t.Fatalf("expected customer view, got %s", state.View)
	}
	if state.Overview == nil || state.Overview.Customer == nil {
		t.Fatal("expected customer overview")
	}
	if state.Stats != nil {
		t.Error("customer load must not carry admin stats")
	}
}

func TestLoad_NonAdminDenied(t *testing.T) {
	profiles := &fakeProfiles{profile: &domain.Profile{ID: "user-1", Role: domain.RoleCustomer}}
	svc := newPage(profiles, &fakeDirectory{}, &fakeCatalog{}, &fakeBilling{})

	state := svc.Load(context.Background(), &domain.Session{UserID: "user-1"}, domain.RequireAdmin, service.NewMount())
	if state.Decision.Kind != domain.DecisionDeny {
		t.Errorf("expected deny, got %s", state.Decision.Kind)
	}
	if state.Overview != nil || state.Stats != nil {
		t.Error("no aggregation should run after a Deny")
	}
}

func TestLoad_TechnicianGetsRestrictedView(t *testing.T) {
	profiles := &fakeProfiles{profile: &domain.Profile{ID: "user-1", Role: domain.RoleTechnician}}
	svc := newPage(profiles, &fakeDirectory{}, &fakeCatalog{}, &fakeBilling{})

	state := svc.Load(context.Background(), &domain.Session{UserID: "user-1"}, domain.RequireAuthenticated, service.NewMount())
	if state.Decision.Kind != domain.DecisionAllow {
		t.Fatalf("expected allow, got %s", state.Decision.Kind)
	}
	if state.View != domain.RestrictedView {
		t.Errorf("expected restricted view, got %s", state.View)
	}
	if state.Stats != nil || state.Overview != nil {
		t.Error("restricted view carries no aggregation payload")
	}
}

// Results arriving after the view unmounted are dropped, not applied.
func TestLoad_UnmountedViewDropsResults(t *testing.T) {
	profiles := &fakeProfiles{profile: &domain.Profile{ID: "user-1", Role: domain.RoleAdmin}}
	svc := newPage(profiles, &fakeDirectory{}, &fakeCatalog{}, &fakeBilling{})

	mount := service.NewMount()
	mount.Unmount()

	state := svc.Load(context.Background(), &domain.Session{UserID: "user-1"}, domain.RequireAdmin, mount)
	if state.Stats != nil {
		t.Error("stale mount must not receive stats")
	}
	if state.Decision.Kind != domain.DecisionPending {
		t.Errorf("expected pending for a stale mount, got %s", state.Decision.Kind)
	}
}

func TestMount_Apply(t *testing.T) {
	m := service.NewMount()
	if !m.Alive() {
		t.Fatal("new mount must be alive")
	}

	ran := false
	if ok := m.Apply(func() { ran = true }); !ok || !ran {
		t.Error("Apply on a live mount must run")
	}

	m.Unmount()
	m.Unmount() // idempotent

	ran = false
	if ok := m.Apply(func() { ran = true }); ok || ran {
		t.Error("Apply on a dead mount must not run")
	}
}
