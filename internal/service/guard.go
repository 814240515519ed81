package service

import "github.com/netwave/isp-portal-bfa-go/internal/domain"

// Guard decides whether an identity may see content behind a requirement.
// It is a pure function and is evaluated fresh on every navigation: role can
// change between page loads and a stale capability snapshot must never be
// trusted.
//
//	session absent              -> Redirect (login/signup flow)
//	identity still loading      -> Pending (not a terminal decision)
//	RequireAdmin, not an admin  -> Deny("admin-only")
//	otherwise                   -> Allow
func Guard(req domain.Requirement, id *domain.Identity) domain.Decision {
	if id == nil || id.State == domain.IdentityAnonymous {
		return domain.Decision{Kind: domain.DecisionRedirect}
	}
	if id.State == domain.IdentityPending {
		return domain.Decision{Kind: domain.DecisionPending}
	}
	if req == domain.RequireAdmin && !id.Capabilities.IsAdmin {
		return domain.Decision{Kind: domain.DecisionDeny, Reason: "admin-only"}
	}
	return domain.Decision{Kind: domain.DecisionAllow}
}

// SelectView maps a role to its dashboard variant. The mapping is total:
// admin and customer get their own views, and every other tag, technician
// included, lands on the restricted view. That is "authenticated but no view
// defined for your role", which is not the same thing as a guard Deny.
func SelectView(role domain.Role) domain.ViewVariant {
	switch role {
	case domain.RoleAdmin:
		return domain.AdminView
	case domain.RoleCustomer:
		return domain.CustomerView
	default:
		return domain.RestrictedView
	}
}
