package domain

import "time"

// PlanType classifies a service plan.
type PlanType string

const (
	PlanResidential PlanType = "residential"
	PlanBusiness    PlanType = "business"
	PlanEnterprise  PlanType = "enterprise"
)

// Valid reports whether t is a known plan type.
func (t PlanType) Valid() bool {
	switch t {
	case PlanResidential, PlanBusiness, PlanEnterprise:
		return true
	}
	return false
}

// ServicePlan is an offered internet plan. A nil DataLimitGB means the plan
// is unlimited.
type ServicePlan struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         PlanType  `json:"type"`
	SpeedMbps    int       `json:"speed_mbps"`
	DataLimitGB  *float64  `json:"data_limit_gb,omitempty"`
	MonthlyPrice Amount    `json:"monthly_price"`
	SetupFee     Amount    `json:"setup_fee"`
	Description  string    `json:"description,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// PlanListing is a catalog row with its subscriber count for the admin view.
type PlanListing struct {
	ServicePlan
	Subscribers int `json:"subscribers"`
}

// Subscription links one customer to one plan. At most one subscription per
// customer should be active at a time; readers treat violations as a
// data-integrity anomaly, not a crash.
type Subscription struct {
	ID              string    `json:"id"`
	CustomerID      string    `json:"customer_id"`
	PlanID          string    `json:"plan_id"`
	StartDate       string    `json:"start_date"`
	EndDate         string    `json:"end_date,omitempty"`
	IsActive        bool      `json:"is_active"`
	MonthlyDiscount Amount    `json:"monthly_discount"`
	CreatedAt       time.Time `json:"created_at"`
}
