package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/netwave/isp-portal-bfa-go/internal/domain"
	"github.com/netwave/isp-portal-bfa-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var directoryTracer = otel.Tracer("service/directory")

// DirectoryService is the admin customer directory.
type DirectoryService struct {
	store  port.DirectoryStore
	logger *zap.Logger
}

// NewDirectoryService creates the directory service.
func NewDirectoryService(store port.DirectoryStore, logger *zap.Logger) *DirectoryService {
	return &DirectoryService{store: store, logger: logger}
}

// ListCustomers returns every customer joined to profile and current plan.
func (s *DirectoryService) ListCustomers(ctx context.Context) ([]domain.CustomerListing, error) {
	ctx, span := directoryTracer.Start(ctx, "DirectoryService.ListCustomers")
	defer span.End()

	return s.store.ListCustomerListings(ctx)
}

// CreateCustomer provisions a new customer record with a generated customer
// code. The profile/account side is owned by the identity provider and is
// linked later, so user_id starts empty.
func (s *DirectoryService) CreateCustomer(ctx context.Context, req *domain.NewCustomerRequest) (*domain.Customer, error) {
	ctx, span := directoryTracer.Start(ctx, "DirectoryService.CreateCustomer")
	defer span.End()

	if strings.TrimSpace(req.FullName) == "" {
		return nil, &domain.ErrValidation{Field: "full_name", Message: "required"}
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "required"}
	}
	if strings.TrimSpace(req.Address) == "" {
		return nil, &domain.ErrValidation{Field: "address", Message: "required"}
	}

	code := newCustomerCode()
	row := map[string]any{
		"customer_code": code,
		"full_name":     req.FullName,
		"email":         req.Email,
		"address":       req.Address,
		"status":        string(domain.CustomerActive),
		"notes":         req.Notes,
	}
	if req.Phone != "" {
		row["phone"] = req.Phone
	}
	if req.BusinessName != "" {
		row["business_name"] = req.BusinessName
	}

	customer, err := s.store.CreateCustomer(ctx, row)
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}

	s.logger.Info("customer created",
		zap.String("customer_id", customer.ID),
		zap.String("customer_code", code),
	)
	span.SetAttributes(attribute.String("customer.code", code))
	return customer, nil
}

// UpdateStatus moves a customer between active, suspended and disconnected.
func (s *DirectoryService) UpdateStatus(ctx context.Context, customerID string, status domain.CustomerStatus) error {
	ctx, span := directoryTracer.Start(ctx, "DirectoryService.UpdateStatus")
	defer span.End()

	if !status.Valid() {
		return &domain.ErrValidation{Field: "status", Message: "must be active, suspended or disconnected"}
	}
	if _, err := s.store.GetCustomer(ctx, customerID); err != nil {
		return err
	}
	if err := s.store.UpdateCustomerStatus(ctx, customerID, status); err != nil {
		return fmt.Errorf("update customer status: %w", err)
	}

	s.logger.Info("customer status updated",
		zap.String("customer_id", customerID),
		zap.String("status", string(status)),
	)
	return nil
}

// newCustomerCode generates a human-readable unique customer code.
func newCustomerCode() string {
	short := strings.ToUpper(uuid.New().String()[:6])
	return fmt.Sprintf("NWS%s%s", time.Now().Format("06"), short)
}
