package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"readyset/internal/api"
	"readyset/internal/models"
	"readyset/internal/repository"
	"readyset/internal/validation"
)

// AuthService handles sign-in flows against the backend
type AuthService struct {
	client  *api.Client
	avatars *repository.AvatarRepository
	email   *EmailService
}

// NewAuthService creates a new auth service. avatars and email may be nil.
func NewAuthService(client *api.Client, avatars *repository.AvatarRepository, email *EmailService) *AuthService {
	return &AuthService{client: client, avatars: avatars, email: email}
}

// Login validates the form, exchanges credentials and stores the session
func (s *AuthService) Login(ctx context.Context, sess Session, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidateRequired("password", password); err != nil {
		return nil, err
	}

	res, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := sess.Login(ctx, res.Token, res.User); err != nil {
		return nil, err
	}
	return res.User, nil
}

// Register validates the form, creates the account and signs it in
func (s *AuthService) Register(ctx context.Context, sess Session, name, email, password, confirm string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidatePasswordConfirmation(password, confirm); err != nil {
		return nil, err
	}

	res, err := s.client.Register(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	if err := sess.Login(ctx, res.Token, res.User); err != nil {
		return nil, err
	}

	if s.email != nil {
		if err := s.email.SendWelcomeEmail(ctx, email, name); err != nil {
			log.Printf("Error sending welcome email to %s: %v", email, err)
		}
	}
	return res.User, nil
}

// SocialLogin signs in with a provider profile and caches its avatar
func (s *AuthService) SocialLogin(ctx context.Context, sess Session, profile api.SocialProfile) (*models.User, error) {
	if profile.Provider == "" || profile.Subject == "" {
		return nil, fmt.Errorf("incomplete social profile")
	}
	identity := profile.Identity()

	if s.avatars != nil {
		if profile.AvatarURL != "" {
			if err := s.avatars.Put(ctx, identity, profile.AvatarURL); err != nil {
				log.Printf("Error caching avatar for %s: %v", identity, err)
			}
		} else if cached, err := s.avatars.Get(ctx, identity); err == nil {
			profile.AvatarURL = cached
		}
	}

	res, err := s.client.SocialLogin(ctx, profile)
	if err != nil {
		return nil, err
	}
	if res.User.AvatarURL == "" {
		res.User.AvatarURL = profile.AvatarURL
	}
	if err := sess.LoginExternal(ctx, res.Token, res.User, identity); err != nil {
		return nil, err
	}
	return res.User, nil
}

// Logout clears the session
func (s *AuthService) Logout(ctx context.Context, sess Session) error {
	return sess.Logout(ctx)
}

// UpdateProfile saves name and email, then merges the result into the session
func (s *AuthService) UpdateProfile(ctx context.Context, sess Session, name, email string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if err := validation.ValidateName(name); err != nil {
		return err
	}
	if err := validation.ValidateEmail(email); err != nil {
		return err
	}

	updated, err := s.client.UpdateProfile(ctx, sess, api.ProfileUpdate{Name: name, Email: email})
	if err != nil {
		return err
	}

	// the submitted values stand unless the backend echoed its own
	patch := updated
	if patch.Name == nil {
		patch.Name = &name
	}
	if patch.Email == nil {
		patch.Email = &email
	}
	return sess.UpdateUser(ctx, patch)
}

// Refresh reloads the user from the backend and merges it into the session
func (s *AuthService) Refresh(ctx context.Context, sess Session) error {
	patch, err := s.client.Me(ctx, sess)
	if err != nil {
		return err
	}
	return sess.UpdateUser(ctx, patch)
}
