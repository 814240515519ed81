package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/netwave/isp-portal-bfa-go/internal/domain"
	"github.com/netwave/isp-portal-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var ticketTracer = otel.Tracer("service/tickets")

// TicketService manages support tickets.
type TicketService struct {
	store     port.TicketStore
	directory port.DirectoryStore
	logger    *zap.Logger
}

// NewTicketService creates the ticket service.
func NewTicketService(store port.TicketStore, directory port.DirectoryStore, logger *zap.Logger) *TicketService {
	return &TicketService{store: store, directory: directory, logger: logger}
}

// TicketsForUser returns the caller's tickets; admins see every ticket.
func (s *TicketService) TicketsForUser(ctx context.Context, id *domain.Identity) ([]domain.SupportTicket, error) {
	ctx, span := ticketTracer.Start(ctx, "TicketService.TicketsForUser")
	defer span.End()

	if id.Capabilities.IsAdmin {
		return s.store.ListAllTickets(ctx)
	}

	customer, err := s.directory.GetCustomerByUserID(ctx, id.Session.UserID)
	if err != nil {
		if isNotFound(err) {
			return []domain.SupportTicket{}, nil
		}
		return nil, err
	}
	return s.store.ListTicketsByCustomer(ctx, customer.ID)
}

// OpenTicket creates a ticket for the caller's customer record.
func (s *TicketService) OpenTicket(ctx context.Context, userID string, req *domain.NewTicketRequest) (*domain.SupportTicket, error) {
	ctx, span := ticketTracer.Start(ctx, "TicketService.OpenTicket")
	defer span.End()

	if strings.TrimSpace(req.Subject) == "" {
		return nil, &domain.ErrValidation{Field: "subject", Message: "required"}
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, &domain.ErrValidation{Field: "description", Message: "required"}
	}
	priority := req.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	switch priority {
	case domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh:
	default:
		return nil, &domain.ErrValidation{Field: "priority", Message: "must be low, medium or high"}
	}

	customer, err := s.directory.GetCustomerByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	ticket, err := s.store.CreateTicket(ctx, map[string]any{
		"customer_id": customer.ID,
		"subject":     req.Subject,
		"description": req.Description,
		"status":      string(domain.TicketOpen),
		"priority":    string(priority),
	})
	if err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	s.logger.Info("ticket opened",
		zap.String("ticket_id", ticket.ID),
		zap.String("customer_id", customer.ID),
		zap.String("priority", string(priority)),
	)
	return ticket, nil
}
