package domain

// UsageLog is one day of metered usage for a customer.
type UsageLog struct {
	ID                 string  `json:"id"`
	CustomerID         string  `json:"customer_id"`
	Date               string  `json:"date"`
	DataUsedMB         float64 `json:"data_used_mb"`
	PeakSpeedMbps      float64 `json:"peak_speed_mbps,omitempty"`
	SessionDurationMin int     `json:"session_duration_minutes,omitempty"`
}

// UsageSummary is the current-month usage against the plan's data limit.
// LimitGB is nil for unlimited plans.
type UsageSummary struct {
	UsedGB  float64  `json:"usedGB"`
	LimitGB *float64 `json:"limitGB,omitempty"`
}

// Percent returns the usage percentage and true when the plan has a data
// limit. Unlimited plans report no percentage at all rather than a bogus
// number.
func (u UsageSummary) Percent() (float64, bool) {
	if u.LimitGB == nil || *u.LimitGB <= 0 {
		return 0, false
	}
	return u.UsedGB / *u.LimitGB * 100, true
}
