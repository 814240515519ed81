package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/netwave/isp-portal-bfa-go/internal/domain"
)

// ============================================================
// Dev credentials — backs DEV_AUTH only, never enabled in prod
// ============================================================

// GetDevCredential fetches the user ID and bcrypt hash for a dev login email.
func (c *Client) GetDevCredential(ctx context.Context, email string) (string, string, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetDevCredential")
	defer span.End()

	path := fmt.Sprintf("dev_logins?email=eq.%s&limit=1", email)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return "", "", &domain.ErrExternalService{Service: "supabase/dev_logins", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return "", "", &domain.ErrNotFound{Resource: "dev_login", ID: email}
	}

	var rows []struct {
		UserID       string `json:"user_id"`
		PasswordHash string `json:"password_hash"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return "", "", fmt.Errorf("decode dev login: %w", err)
	}
	if len(rows) == 0 {
		return "", "", &domain.ErrNotFound{Resource: "dev_login", ID: email}
	}
	return rows[0].UserID, rows[0].PasswordHash, nil
}
