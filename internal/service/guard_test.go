package service_test

import (
	"testing"

	"github.com/netwave/isp-portal-bfa-go/internal/domain"
	"github.com/netwave/isp-portal-bfa-go/internal/service"
)

func resolvedIdentity(role domain.Role) *domain.Identity {
	return &domain.Identity{
		State:        domain.IdentityResolved,
		Session:      &domain.Session{UserID: "user-1"},
		Role:         role,
		Capabilities: role.Capabilities(),
	}
}

func TestGuard_DecisionTable(t *testing.T) {
	tests := []struct {
		name string
		req  domain.Requirement
		id   *domain.Identity
		want domain.DecisionKind
	}{
		{"nil identity", domain.RequireAuthenticated, nil, domain.DecisionRedirect},
		{"anonymous", domain.RequireAuthenticated, &domain.Identity{State: domain.IdentityAnonymous}, domain.DecisionRedirect},
		{"anonymous admin route", domain.RequireAdmin, &domain.Identity{State: domain.IdentityAnonymous}, domain.DecisionRedirect},
		{"pending", domain.RequireAuthenticated, &domain.Identity{State: domain.IdentityPending, Session: &domain.Session{UserID: "u"}}, domain.DecisionPending},
		{"pending admin route", domain.RequireAdmin, &domain.Identity{State: domain.IdentityPending, Session: &domain.Session{UserID: "u"}}, domain.DecisionPending},
		{"customer on plain route", domain.RequireAuthenticated, resolvedIdentity(domain.RoleCustomer), domain.DecisionAllow},
		{"customer on admin route", domain.RequireAdmin, resolvedIdentity(domain.RoleCustomer), domain.DecisionDeny},
		{"technician on admin route", domain.RequireAdmin, resolvedIdentity(domain.RoleTechnician), domain.DecisionDeny},
		{"admin on admin route", domain.RequireAdmin, resolvedIdentity(domain.RoleAdmin), domain.DecisionAllow},
		{"admin on plain route", domain.RequireAuthenticated, resolvedIdentity(domain.RoleAdmin), domain.DecisionAllow},
		{"resolved without role", domain.RequireAuthenticated, &domain.Identity{State: domain.IdentityResolved, Session: &domain.Session{UserID: "u"}}, domain.DecisionAllow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.Guard(tt.req, tt.id)
			if got.Kind != tt.want {
				t.Errorf("Guard(%v) = %s, want %s", tt.req, got.Kind, tt.want)
			}
		})
	}
}

func TestGuard_DenyCarriesReason(t *testing.T) {
	got := service.Guard(domain.RequireAdmin, resolvedIdentity(domain.RoleCustomer))
	if got.Reason == "" {
		t.Error("expected a reason on Deny, got none")
	}
}

// A missing session must never produce Allow, whatever the requirement.
func TestGuard_NeverAllowsWithoutSession(t *testing.T) {
	for _, req := range []domain.Requirement{domain.RequireAuthenticated, domain.RequireAdmin} {
		for _, id := range []*domain.Identity{nil, {State: domain.IdentityAnonymous}} {
			if got := service.Guard(req, id); got.Kind == domain.DecisionAllow {
				t.Errorf("Guard(%v, %+v) allowed without a session", req, id)
			}
		}
	}
}

func TestSelectView_TotalMapping(t *testing.T) {
	tests := []struct {
		role domain.Role
		want domain.ViewVariant
	}{
		{domain.RoleAdmin, domain.AdminView},
		{domain.RoleCustomer, domain.CustomerView},
		{domain.RoleTechnician, domain.RestrictedView},
		{"", domain.RestrictedView},
		{"support", domain.RestrictedView},
	}

	for _, tt := range tests {
		if got := service.SelectView(tt.role); got != tt.want {
			t.Errorf("SelectView(%q) = %s, want %s", tt.role, got, tt.want)
		}
	}
}
