package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/netwave/isp-portal-bfa-go/internal/domain"
	"github.com/netwave/isp-portal-bfa-go/internal/infra/resilience"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Profiles — identity records behind authenticated users
// ============================================================

// GetProfileByUserID fetches the profile for a user. Identity resolution
// happens on every navigation, so this path gets the circuit breaker and
// retry treatment.
func (c *Client) GetProfileByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetProfileByUserID")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var profile *domain.Profile

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("profiles?id=eq.%s&limit=1", userID)
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				return &domain.ErrNotFound{Resource: "profile", ID: userID}
			}

			var rows []domain.Profile
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode profile: %w", err)
			}
			if len(rows) == 0 {
				return &domain.ErrNotFound{Resource: "profile", ID: userID}
			}

			profile = &rows[0]
			return nil
		})
	})

	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, notFound
		}
		return nil, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}

	return profile, nil
}

// UpdateProfile applies a partial update and re-fetches the row to confirm
// the update persisted.
func (c *Client) UpdateProfile(ctx context.Context, userID string, patch map[string]any) (*domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateProfile")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if err := c.doPatch(ctx, fmt.Sprintf("profiles?id=eq.%s", userID), patch); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}

	updated, err := c.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("re-fetch after profile update: %w", err)
	}
	return updated, nil
}
