package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"readyset/internal/models"
)

// ListKits returns the signed-in user's kits
func (c *Client) ListKits(ctx context.Context, creds Credentials) ([]models.Kit, error) {
	raw, err := c.do(ctx, creds, http.MethodGet, "/kits", nil)
	if err != nil {
		return nil, err
	}
	return normalizeKits(raw), nil
}

func (c *Client) GetKit(ctx context.Context, creds Credentials, id string) (*models.Kit, error) {
	raw, err := c.do(ctx, creds, http.MethodGet, "/kits/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	kit, ok := normalizeKit(raw)
	if !ok {
		return nil, fmt.Errorf("unexpected kit response for %s", id)
	}
	return &kit, nil
}

// CreateKit submits the kit form; the backend fills in recommended items
func (c *Client) CreateKit(ctx context.Context, creds Credentials, kit models.Kit) (*models.Kit, error) {
	raw, err := c.do(ctx, creds, http.MethodPost, "/kits", kitToPayload(kit))
	if err != nil {
		return nil, err
	}
	created, ok := normalizeKit(raw)
	if !ok {
		return nil, fmt.Errorf("unexpected response creating kit")
	}
	return &created, nil
}

func (c *Client) UpdateKit(ctx context.Context, creds Credentials, kit models.Kit) error {
	return c.Do(ctx, creds, http.MethodPut, "/kits/"+url.PathEscape(kit.ID), kitToPayload(kit), nil)
}

func (c *Client) DeleteKit(ctx context.Context, creds Credentials, id string) error {
	return c.Do(ctx, creds, http.MethodDelete, "/kits/"+url.PathEscape(id), nil, nil)
}
