package api

import (
	"context"
	"net/http"
	"net/url"

	"readyset/internal/models"
)

func (c *Client) ListUsers(ctx context.Context, creds Credentials) ([]models.User, error) {
	raw, err := c.do(ctx, creds, http.MethodGet, "/admin/users", nil)
	if err != nil {
		return nil, err
	}
	return normalizeUsers(raw), nil
}

func (c *Client) UpdateUserRole(ctx context.Context, creds Credentials, id string, role models.Role) error {
	body := map[string]string{"role": string(role)}
	return c.Do(ctx, creds, http.MethodPut, "/admin/users/"+url.PathEscape(id)+"/role", body, nil)
}

func (c *Client) DeleteUser(ctx context.Context, creds Credentials, id string) error {
	return c.Do(ctx, creds, http.MethodDelete, "/admin/users/"+url.PathEscape(id), nil, nil)
}

// ListAllKits returns every user's kits for the admin dashboard
func (c *Client) ListAllKits(ctx context.Context, creds Credentials) ([]models.Kit, error) {
	raw, err := c.do(ctx, creds, http.MethodGet, "/admin/kits", nil)
	if err != nil {
		return nil, err
	}
	return normalizeKits(raw), nil
}
