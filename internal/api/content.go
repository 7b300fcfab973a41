package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"readyset/internal/models"
)

// ListContent returns all educational content. The endpoint is public.
func (c *Client) ListContent(ctx context.Context, creds Credentials) ([]models.Content, error) {
	raw, err := c.do(ctx, creds, http.MethodGet, "/content", nil)
	if err != nil {
		return nil, err
	}
	return normalizeContents(raw), nil
}

func (c *Client) GetContent(ctx context.Context, creds Credentials, id string) (*models.Content, error) {
	raw, err := c.do(ctx, creds, http.MethodGet, "/content/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	content, ok := normalizeContent(raw)
	if !ok {
		return nil, fmt.Errorf("unexpected content response for %s", id)
	}
	return &content, nil
}

func (c *Client) CreateContent(ctx context.Context, creds Credentials, content models.Content) (*models.Content, error) {
	raw, err := c.do(ctx, creds, http.MethodPost, "/content", contentToPayload(content))
	if err != nil {
		return nil, err
	}
	created, ok := normalizeContent(raw)
	if !ok {
		return &content, nil
	}
	return &created, nil
}

func (c *Client) UpdateContent(ctx context.Context, creds Credentials, content models.Content) error {
	return c.Do(ctx, creds, http.MethodPut, "/content/"+url.PathEscape(content.ID), contentToPayload(content), nil)
}

func (c *Client) DeleteContent(ctx context.Context, creds Credentials, id string) error {
	return c.Do(ctx, creds, http.MethodDelete, "/content/"+url.PathEscape(id), nil, nil)
}
