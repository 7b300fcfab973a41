// Package auth holds the per-request authentication state and the route guard decision.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"readyset/internal/models"
)

// ErrNotAuthenticated is returned by operations that need a signed-in user
var ErrNotAuthenticated = errors.New("not authenticated")

// Store persists the session for one browser
type Store interface {
	Load(ctx context.Context, id string) (models.Session, error)
	Save(ctx context.Context, id string, s models.Session) error
	Clear(ctx context.Context, id string) error
}

// State of an auth context
type State int

const (
	StateLoading State = iota
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Context is the authentication state of one browser session.
// It starts in StateLoading and reads the store at most once.
type Context struct {
	store     Store
	sessionID string

	loadOnce sync.Once
	loaded   chan struct{}

	mu      sync.Mutex
	state   State
	session models.Session
}

// New builds a context in StateLoading for the given browser session id
func New(store Store, sessionID string) *Context {
	return &Context{
		store:     store,
		sessionID: sessionID,
		loaded:    make(chan struct{}),
		state:     StateLoading,
	}
}

// SessionID returns the browser session id
func (c *Context) SessionID() string {
	return c.sessionID
}

// Await resolves the stored session and returns the resulting state.
// If ctx ends first StateLoading is returned; the read keeps going for later callers.
func (c *Context) Await(ctx context.Context) State {
	c.loadOnce.Do(func() {
		go c.load(context.WithoutCancel(ctx))
	})

	select {
	case <-c.loaded:
		return c.State()
	case <-ctx.Done():
		return StateLoading
	}
}

func (c *Context) load(ctx context.Context) {
	defer close(c.loaded)

	sess, err := c.store.Load(ctx, c.sessionID)
	if err != nil {
		log.Printf("Error loading session %s: %v", c.sessionID, err)
		sess = models.Session{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateLoading {
		return
	}
	c.set(sess)
}

// set must be called with mu held
func (c *Context) set(sess models.Session) {
	if sess.IsEmpty() {
		c.session = models.Session{}
		c.state = StateAnonymous
		return
	}
	c.session = sess
	c.state = StateAuthenticated
}

// State returns the current state without waiting
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Login persists token and user, then marks the context authenticated
func (c *Context) Login(ctx context.Context, token string, user *models.User) error {
	return c.login(ctx, models.Session{Token: token, User: user.Clone()})
}

// LoginExternal is Login for accounts from a social provider; identity is provider:subject
func (c *Context) LoginExternal(ctx context.Context, token string, user *models.User, identity string) error {
	return c.login(ctx, models.Session{Token: token, User: user.Clone(), Identity: identity})
}

func (c *Context) login(ctx context.Context, sess models.Session) error {
	if sess.IsEmpty() {
		return errors.New("login requires a token and a user")
	}
	c.Await(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.Save(ctx, c.sessionID, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	c.set(sess)
	return nil
}

// Logout clears the store and marks the context anonymous.
// The in-memory state is anonymous even when the store fails.
func (c *Context) Logout(ctx context.Context) error {
	c.Await(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(models.Session{})
	if err := c.store.Clear(ctx, c.sessionID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// UpdateUser merges patch into the current user and persists the result
func (c *Context) UpdateUser(ctx context.Context, patch models.UserPatch) error {
	c.Await(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateAuthenticated {
		return ErrNotAuthenticated
	}

	merged := c.session.User.Clone()
	patch.Apply(merged)
	next := models.Session{Token: c.session.Token, User: merged, Identity: c.session.Identity}
	if err := c.store.Save(ctx, c.sessionID, next); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	c.session = next
	return nil
}

// Invalidate drops the session after the backend rejected the token.
// It reports whether a token was held; later calls are no-ops.
func (c *Context) Invalidate(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.Token == "" {
		return false
	}
	c.set(models.Session{})
	if err := c.store.Clear(ctx, c.sessionID); err != nil {
		log.Printf("Error clearing expired session %s: %v", c.sessionID, err)
	}
	return true
}

// Token returns the bearer token, resolving the session first
func (c *Context) Token(ctx context.Context) string {
	c.Await(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Token
}

// User returns a copy of the signed-in user, or nil
func (c *Context) User() *models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.User.Clone()
}

// Identity returns the external identity of a social login, if any
func (c *Context) Identity() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Identity
}

// IsAdmin reports whether the signed-in user is an admin
func (c *Context) IsAdmin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.User.IsAdmin()
}

type contextKey struct{}

// WithContext attaches ac to ctx
func WithContext(ctx context.Context, ac *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

// FromContext returns the auth context attached to ctx, or nil
func FromContext(ctx context.Context) *Context {
	ac, _ := ctx.Value(contextKey{}).(*Context)
	return ac
}
