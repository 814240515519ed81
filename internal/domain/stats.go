package domain

// SummaryStats are the administrative dashboard statistics, folded from four
// independent record sources. A failed source contributes its zero value.
type SummaryStats struct {
	TotalCustomers  int     `json:"totalCustomers"`
	ActiveCustomers int     `json:"activeCustomers"`
	TotalRevenue    float64 `json:"totalRevenue"`
	MonthlyRevenue  float64 `json:"monthlyRevenue"`
	TotalPlans      int     `json:"totalPlans"`
	PendingPayments int     `json:"pendingPayments"`
}

// OpsSnapshot is a point-in-time view of the portal's own health counters,
// served on the admin ops endpoint as a cheap complement to /metrics.
type OpsSnapshot struct {
	TotalRequests     int64   `json:"totalRequests"`
	ErrorRate         float64 `json:"errorRate"`
	SourceErrors      int64   `json:"sourceErrors"`
	IntegrityWarnings int64   `json:"integrityWarnings"`
	CacheHitRate      float64 `json:"cacheHitRate"`
	Period            string  `json:"period"`
}

// CustomerOverview is the customer dashboard payload: the caller's customer
// record, its single active subscription and plan, recent invoices, and the
// current-month usage.
type CustomerOverview struct {
	Customer       *Customer     `json:"customer,omitempty"`
	Subscription   *Subscription `json:"subscription,omitempty"`
	Plan           *ServicePlan  `json:"plan,omitempty"`
	RecentInvoices []Invoice     `json:"recentInvoices"`
	Usage          *UsageSummary `json:"usage,omitempty"`
}
