package api

import (
	"context"
	"fmt"
	"net/http"

	"readyset/internal/models"
)

// AuthResult is what the backend returns on login and registration
type AuthResult struct {
	Token string
	User  *models.User
}

// SocialProfile is the identity a social provider vouched for
type SocialProfile struct {
	Provider  string `json:"provider"`
	Subject   string `json:"subject"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Identity returns the provider:subject key used for avatar caching
func (p SocialProfile) Identity() string {
	return p.Provider + ":" + p.Subject
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*AuthResult, error) {
	raw, err := c.do(ctx, nil, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	token, user, ok := normalizeAuth(raw)
	if !ok {
		return nil, fmt.Errorf("unexpected response from %s", path)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Login exchanges credentials for a token
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.authenticate(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// Register creates an account and signs it in
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	return c.authenticate(ctx, "/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
}

// SocialLogin exchanges a verified provider profile for a backend token
func (c *Client) SocialLogin(ctx context.Context, profile SocialProfile) (*AuthResult, error) {
	return c.authenticate(ctx, "/auth/oauth", profile)
}

// Me fetches the fields the backend reports for the signed-in user
func (c *Client) Me(ctx context.Context, creds Credentials) (models.UserPatch, error) {
	raw, err := c.do(ctx, creds, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return models.UserPatch{}, err
	}
	_, patch, ok := normalizeUserPatch(raw, creds.Token(ctx))
	if !ok {
		return models.UserPatch{}, fmt.Errorf("unexpected response from /auth/me")
	}
	return patch, nil
}

// ProfileUpdate is the editable part of a profile
type ProfileUpdate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateProfile saves profile fields and returns whatever user fields the backend echoed
func (c *Client) UpdateProfile(ctx context.Context, creds Credentials, update ProfileUpdate) (models.UserPatch, error) {
	raw, err := c.do(ctx, creds, http.MethodPut, "/users/me", update)
	if err != nil {
		return models.UserPatch{}, err
	}
	_, patch, _ := normalizeUserPatch(raw, "")
	return patch, nil
}
