package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/netwave/isp-portal-bfa-go/internal/domain"
	"github.com/netwave/isp-portal-bfa-go/internal/infra/resilience"
)

// ============================================================
// Service plans & subscriptions — catalog via PostgREST
// ============================================================

// ListActivePlans fetches the plans currently offered. Summary source, so it
// carries the circuit breaker and retry treatment.
func (c *Client) ListActivePlans(ctx context.Context) ([]domain.ServicePlan, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListActivePlans")
	defer span.End()

	var plans []domain.ServicePlan

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := "service_plans?is_active=eq.true&order=monthly_price.asc"
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				plans = []domain.ServicePlan{}
				return nil
			}

			var rows []domain.ServicePlan
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode plans: %w", err)
			}
			plans = rows
			return nil
		})
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/service_plans", Err: err}
	}
	return plans, nil
}

type planListingRow struct {
	domain.ServicePlan
	Subscriptions []struct {
		Count int `json:"count"`
	} `json:"customer_subscriptions"`
}

// ListPlanListings fetches the whole catalog with per-plan active subscriber
// counts for the admin view.
func (c *Client) ListPlanListings(ctx context.Context) ([]domain.PlanListing, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListPlanListings")
	defer span.End()

	path := "service_plans?select=*,customer_subscriptions(count)" +
		"&customer_subscriptions.is_active=eq.true&order=monthly_price.asc"
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/service_plans", Err: err}
	}

	var rows []planListingRow
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode plan listings: %w", err)
		}
	}

	listings := make([]domain.PlanListing, 0, len(rows))
	for _, r := range rows {
		l := domain.PlanListing{ServicePlan: r.ServicePlan}
		if len(r.Subscriptions) > 0 {
			l.Subscribers = r.Subscriptions[0].Count
		}
		listings = append(listings, l)
	}
	return listings, nil
}

// GetPlan fetches one plan by ID.
func (c *Client) GetPlan(ctx context.Context, planID string) (*domain.ServicePlan, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetPlan")
	defer span.End()

	path := fmt.Sprintf("service_plans?id=eq.%s&limit=1", planID)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/service_plans", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "service_plan", ID: planID}
	}

	var rows []domain.ServicePlan
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "service_plan", ID: planID}
	}
	return &rows[0], nil
}

// CreatePlan inserts a plan row and returns the stored record.
func (c *Client) CreatePlan(ctx context.Context, row map[string]any) (*domain.ServicePlan, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreatePlan")
	defer span.End()

	body, err := c.doPost(ctx, "service_plans", row)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/service_plans", Err: err}
	}

	var rows []domain.ServicePlan
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode created plan: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("create plan: empty representation")
	}
	return &rows[0], nil
}

// SetPlanActive toggles the is_active flag.
func (c *Client) SetPlanActive(ctx context.Context, planID string, active bool) error {
	ctx, span := tracer.Start(ctx, "Supabase.SetPlanActive")
	defer span.End()

	err := c.doPatch(ctx, fmt.Sprintf("service_plans?id=eq.%s", planID), map[string]any{
		"is_active": active,
	})
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/service_plans", Err: err}
	}
	return nil
}

// DeletePlan removes a plan row.
func (c *Client) DeletePlan(ctx context.Context, planID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeletePlan")
	defer span.End()

	if err := c.doDelete(ctx, fmt.Sprintf("service_plans?id=eq.%s", planID)); err != nil {
		return &domain.ErrExternalService{Service: "supabase/service_plans", Err: err}
	}
	return nil
}

// CountActiveSubscribers counts active subscriptions on a plan.
func (c *Client) CountActiveSubscribers(ctx context.Context, planID string) (int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CountActiveSubscribers")
	defer span.End()

	path := fmt.Sprintf("customer_subscriptions?plan_id=eq.%s&is_active=eq.true&select=id", planID)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return 0, &domain.ErrExternalService{Service: "supabase/customer_subscriptions", Err: err}
	}
	if body == nil {
		return 0, nil
	}

	var rows []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return 0, fmt.Errorf("decode subscription count: %w", err)
	}
	return len(rows), nil
}

// ListActiveSubscriptions fetches a customer's active subscriptions. More
// than one row is possible with dirty data; callers decide what to do.
func (c *Client) ListActiveSubscriptions(ctx context.Context, customerID string) ([]domain.Subscription, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListActiveSubscriptions")
	defer span.End()

	path := fmt.Sprintf("customer_subscriptions?customer_id=eq.%s&is_active=eq.true&order=start_date.desc", customerID)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/customer_subscriptions", Err: err}
	}

	var rows []domain.Subscription
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode subscriptions: %w", err)
		}
	}
	return rows, nil
}
