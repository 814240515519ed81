package domain

import "time"

// Role is the role tag attached to a profile.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleCustomer   Role = "customer"
	RoleTechnician Role = "technician"
)

// Capabilities are the boolean permissions derived from a role.
// They are a pure function of the role tag and are never stored.
type Capabilities struct {
	IsAdmin    bool `json:"isAdmin"`
	IsCustomer bool `json:"isCustomer"`
}

// Capabilities maps a role to its capability set. The technician role (and
// any unknown tag) maps to no capabilities; such users are authenticated but
// have no dashboard variant of their own.
func (r Role) Capabilities() Capabilities {
	switch r {
	case RoleAdmin:
		return Capabilities{IsAdmin: true}
	case RoleCustomer:
		return Capabilities{IsCustomer: true}
	default:
		return Capabilities{}
	}
}

// Profile is the identity record behind an authenticated user.
type Profile struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
