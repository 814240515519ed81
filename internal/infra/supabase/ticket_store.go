package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/netwave/isp-portal-bfa-go/internal/domain"
)

// ============================================================
// Support tickets via PostgREST
// ============================================================

func (c *Client) ListTicketsByCustomer(ctx context.Context, customerID string) ([]domain.SupportTicket, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListTicketsByCustomer")
	defer span.End()

	path := fmt.Sprintf("support_tickets?customer_id=eq.%s&order=created_at.desc", customerID)
	return c.listTickets(ctx, path)
}

func (c *Client) ListAllTickets(ctx context.Context) ([]domain.SupportTicket, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListAllTickets")
	defer span.End()

	return c.listTickets(ctx, "support_tickets?order=created_at.desc")
}

func (c *Client) listTickets(ctx context.Context, path string) ([]domain.SupportTicket, error) {
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/support_tickets", Err: err}
	}

	var rows []domain.SupportTicket
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode tickets: %w", err)
		}
	}
	return rows, nil
}

func (c *Client) CreateTicket(ctx context.Context, row map[string]any) (*domain.SupportTicket, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateTicket")
	defer span.End()

	body, err := c.doPost(ctx, "support_tickets", row)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/support_tickets", Err: err}
	}

	var rows []domain.SupportTicket
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode created ticket: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("create ticket: empty representation")
	}
	return &rows[0], nil
}
