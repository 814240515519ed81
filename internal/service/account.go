package service

import (
	"context"
	"strings"

	"github.com/netwave/isp-portal-bfa-go/internal/domain"
	"github.com/netwave/isp-portal-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var accountTracer = otel.Tracer("service/account")

// AccountService reads and updates the caller's own profile.
type AccountService struct {
	profiles port.ProfileStore
	logger   *zap.Logger
}

// NewAccountService creates the account service.
func NewAccountService(profiles port.ProfileStore, logger *zap.Logger) *AccountService {
	return &AccountService{profiles: profiles, logger: logger}
}

// GetProfile returns the caller's profile record.
func (s *AccountService) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	ctx, span := accountTracer.Start(ctx, "AccountService.GetProfile")
	defer span.End()

	return s.profiles.GetProfileByUserID(ctx, userID)
}

// UpdateProfileRequest carries the editable profile fields. The role tag is
// deliberately absent; users cannot promote themselves.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

// UpdateProfile applies a partial update to the caller's profile.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*domain.Profile, error) {
	ctx, span := accountTracer.Start(ctx, "AccountService.UpdateProfile")
	defer span.End()

	patch := map[string]any{}
	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return nil, &domain.ErrValidation{Field: "full_name", Message: "cannot be blank"}
		}
		patch["full_name"] = name
	}
	if req.Phone != nil {
		patch["phone"] = strings.TrimSpace(*req.Phone)
	}
	if len(patch) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "no updatable fields supplied"}
	}

	profile, err := s.profiles.UpdateProfile(ctx, userID, patch)
	if err != nil {
		return nil, err
	}
	s.logger.Info("profile updated", zap.String("user_id", userID))
	return profile, nil
}
