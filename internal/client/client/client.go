package client

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/notekeeper/internal/client/models"
)

// Client is the Identity Service contract consumed by the session store.
//
// SetToken selects the bearer token attached to authenticated calls; an
// empty token detaches it. The handler registered with OnUnauthorized is
// invoked whenever an authenticated call is answered with 401/403,
// regardless of which operation made it.
type Client interface {
	SetToken(token string)
	OnUnauthorized(fn func())

	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Register(ctx context.Context, name, email, password string) (*models.AuthResponse, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.User, error)
	RefreshToken(ctx context.Context) (string, error)
	UpdateProfile(ctx context.Context, p models.ProfileUpdate) (*models.User, error)
	ChangePassword(ctx context.Context, p models.PasswordChange) error
	Ping(ctx context.Context) error
	Close() error
}

// bearer holds the token and unauthorized handler shared by transports.
type bearer struct {
	mu             sync.RWMutex
	token          string
	onUnauthorized func()
}

// SetToken replaces the token attached to authenticated calls.
func (b *bearer) SetToken(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = token
}

// OnUnauthorized registers the global 401/403 handler.
func (b *bearer) OnUnauthorized(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onUnauthorized = fn
}

func (b *bearer) currentToken() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.token
}

func (b *bearer) unauthorized() {
	b.mu.RLock()
	fn := b.onUnauthorized
	b.mu.RUnlock()
	if fn != nil {
		fn()
	}
}
