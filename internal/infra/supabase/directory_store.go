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
// Customers — directory CRUD via PostgREST
// ============================================================

// ListCustomers fetches every customer row. This is one of the four summary
// sources, so it carries the circuit breaker and retry treatment.
func (c *Client) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCustomers")
	defer span.End()

	var customers []domain.Customer

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := c.doRequest(ctx, http.MethodGet, "customers?select=id,status")
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				customers = []domain.Customer{}
				return nil
			}

			var rows []domain.Customer
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode customers: %w", err)
			}
			customers = rows
			return nil
		})
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/customers", Err: err}
	}
	return customers, nil
}

// customerListingRow carries the PostgREST embedding of a customer with its
// profile contact details and active plan.
type customerListingRow struct {
	domain.Customer
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Profile  *struct {
		FullName string `json:"full_name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
	} `json:"profiles"`
	Subscriptions []struct {
		IsActive bool `json:"is_active"`
		Plan     *struct {
			Name         string        `json:"name"`
			MonthlyPrice domain.Amount `json:"monthly_price"`
		} `json:"service_plans"`
	} `json:"customer_subscriptions"`
}

// ListCustomerListings fetches the admin directory: customers joined to
// profile contact details and the current plan. Contact details on the
// customer row win when no profile is linked yet.
func (c *Client) ListCustomerListings(ctx context.Context) ([]domain.CustomerListing, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCustomerListings")
	defer span.End()

	path := "customers?select=*,profiles(full_name,email,phone)," +
		"customer_subscriptions(is_active,service_plans(name,monthly_price))" +
		"&order=created_at.desc"
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/customers", Err: err}
	}

	var rows []customerListingRow
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode customer listings: %w", err)
		}
	}

	listings := make([]domain.CustomerListing, 0, len(rows))
	for _, r := range rows {
		l := domain.CustomerListing{
			Customer: r.Customer,
			FullName: r.FullName,
			Email:    r.Email,
			Phone:    r.Phone,
		}
		if r.Profile != nil {
			l.FullName = r.Profile.FullName
			l.Email = r.Profile.Email
			l.Phone = r.Profile.Phone
		}
		for _, sub := range r.Subscriptions {
			if sub.IsActive && sub.Plan != nil {
				l.PlanName = sub.Plan.Name
				l.PlanPrice = sub.Plan.MonthlyPrice.Float64()
				break
			}
		}
		listings = append(listings, l)
	}
	return listings, nil
}

// GetCustomerByUserID fetches a customer by its linked account.
func (c *Client) GetCustomerByUserID(ctx context.Context, userID string) (*domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCustomerByUserID")
	defer span.End()

	path := fmt.Sprintf("customers?user_id=eq.%s&limit=1", userID)
	return c.getCustomer(ctx, path, userID)
}

// GetCustomer fetches a customer by ID.
func (c *Client) GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCustomer")
	defer span.End()

	path := fmt.Sprintf("customers?id=eq.%s&limit=1", customerID)
	return c.getCustomer(ctx, path, customerID)
}

func (c *Client) getCustomer(ctx context.Context, path, id string) (*domain.Customer, error) {
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/customers", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "customer", ID: id}
	}

	var rows []domain.Customer
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode customer: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "customer", ID: id}
	}
	return &rows[0], nil
}

// CreateCustomer inserts a customer row and returns the stored record.
func (c *Client) CreateCustomer(ctx context.Context, row map[string]any) (*domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateCustomer")
	defer span.End()

	body, err := c.doPost(ctx, "customers", row)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/customers", Err: err}
	}

	var rows []domain.Customer
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode created customer: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("create customer: empty representation")
	}
	return &rows[0], nil
}

// UpdateCustomerStatus patches the status column.
func (c *Client) UpdateCustomerStatus(ctx context.Context, customerID string, status domain.CustomerStatus) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateCustomerStatus")
	defer span.End()

	err := c.doPatch(ctx, fmt.Sprintf("customers?id=eq.%s", customerID), map[string]any{
		"status": string(status),
	})
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/customers", Err: err}
	}
	return nil
}
