package service

import (
	"context"

	"readyset/internal/models"
)

// Session is the auth state the services act on; *auth.Context implements it
type Session interface {
	Token(ctx context.Context) string
	Invalidate(ctx context.Context) bool
	User() *models.User
	Login(ctx context.Context, token string, user *models.User) error
	LoginExternal(ctx context.Context, token string, user *models.User, identity string) error
	Logout(ctx context.Context) error
	UpdateUser(ctx context.Context, patch models.UserPatch) error
}
