package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/netwave/isp-portal-bfa-go/internal/domain"
)

// ============================================================
// Usage logs via PostgREST
// ============================================================

// ListUsageSince fetches a customer's usage rows from fromDate (inclusive,
// YYYY-MM-DD) onward.
func (c *Client) ListUsageSince(ctx context.Context, customerID, fromDate string) ([]domain.UsageLog, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListUsageSince")
	defer span.End()

	path := fmt.Sprintf("usage_logs?customer_id=eq.%s&date=gte.%s&order=date.asc", customerID, fromDate)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/usage_logs", Err: err}
	}

	var rows []domain.UsageLog
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode usage logs: %w", err)
		}
	}
	return rows, nil
}
