package domain

import "time"

// Session is a verified authentication session, produced by the session
// provider from a bearer token. A nil *Session means no session.
type Session struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionEventType enumerates session lifecycle changes.
type SessionEventType string

const (
	SessionLogin   SessionEventType = "login"
	SessionLogout  SessionEventType = "logout"
	SessionRefresh SessionEventType = "refresh"
)

// SessionEvent is published on login, logout and token refresh so identity
// state can be initialized and torn down explicitly rather than held in a
// hidden global.
type SessionEvent struct {
	Type   SessionEventType
	UserID string
	At     time.Time
}

// IdentityState distinguishes terminal identity outcomes from the transient
// "profile still loading" case. Conflating the two turns a transport blip
// into a logout.
type IdentityState string

const (
	// IdentityAnonymous: no session. Terminal; the caller renders the login flow.
	IdentityAnonymous IdentityState = "anonymous"
	// IdentityPending: a session exists but the backing profile fetch failed
	// transiently. Not a terminal decision.
	IdentityPending IdentityState = "pending"
	// IdentityResolved: session and profile state are known (the profile may
	// still be absent if none was ever provisioned).
	IdentityResolved IdentityState = "resolved"
)

// Identity is the resolved identity context for one request. It is built
// fresh on every navigation and passed down explicitly.
type Identity struct {
	State        IdentityState `json:"state"`
	Session      *Session      `json:"session,omitempty"`
	Profile      *Profile      `json:"profile,omitempty"`
	Role         Role          `json:"role,omitempty"`
	Capabilities Capabilities  `json:"capabilities"`
}

// Requirement is the access level a route demands.
type Requirement int

const (
	RequireAuthenticated Requirement = iota
	RequireAdmin
)

func (r Requirement) String() string {
	if r == RequireAdmin {
		return "admin"
	}
	return "authenticated"
}

// DecisionKind is the outcome of an access-guard evaluation.
type DecisionKind string

const (
	DecisionAllow    DecisionKind = "allow"
	DecisionRedirect DecisionKind = "redirect" // to the login/signup flow
	DecisionPending  DecisionKind = "pending"  // identity still loading
	DecisionDeny     DecisionKind = "deny"
)

// Decision is a guard outcome with an optional reason for Deny.
type Decision struct {
	Kind   DecisionKind `json:"kind"`
	Reason string       `json:"reason,omitempty"`
}

// ViewVariant is the dashboard composition selected for a role.
type ViewVariant string

const (
	AdminView    ViewVariant = "admin"
	CustomerView ViewVariant = "customer"
	// RestrictedView: authenticated, but no dashboard is defined for the role.
	// Distinct from a guard Deny.
	RestrictedView ViewVariant = "restricted"
)
