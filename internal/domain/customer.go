package domain

import "time"

// CustomerStatus is the service status of a customer.
type CustomerStatus string

const (
	CustomerActive       CustomerStatus = "active"
	CustomerSuspended    CustomerStatus = "suspended"
	CustomerDisconnected CustomerStatus = "disconnected"
)

// Valid reports whether s is a known status tag.
func (s CustomerStatus) Valid() bool {
	switch s {
	case CustomerActive, CustomerSuspended, CustomerDisconnected:
		return true
	}
	return false
}

// Customer is a service-subscriber record. UserID links to a Profile and is
// empty when staff created the customer before any account existed.
type Customer struct {
	ID               string         `json:"id"`
	UserID           string         `json:"user_id,omitempty"`
	CustomerCode     string         `json:"customer_code"`
	Address          string         `json:"address"`
	Status           CustomerStatus `json:"status"`
	BusinessName     string         `json:"business_name,omitempty"`
	Notes            string         `json:"notes,omitempty"`
	InstallationDate string         `json:"installation_date,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// CustomerListing is the admin directory row: a customer joined to its
// profile contact details and current plan, typed explicitly instead of the
// nested blob the store returns.
type CustomerListing struct {
	Customer
	FullName  string  `json:"full_name,omitempty"`
	Email     string  `json:"email,omitempty"`
	Phone     string  `json:"phone,omitempty"`
	PlanName  string  `json:"plan_name,omitempty"`
	PlanPrice float64 `json:"plan_price,omitempty"`
}

// NewCustomerRequest is the body for creating a customer from the directory.
type NewCustomerRequest struct {
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	Address      string `json:"address"`
	BusinessName string `json:"business_name,omitempty"`
	Notes        string `json:"notes,omitempty"`
}
