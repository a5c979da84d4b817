package cli

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/notekeeper/internal/client/models"
)

// fakeAPI is a minimal client.Client for driving the App.
type fakeAPI struct {
	mu    sync.Mutex
	token string

	LoginResp   *models.AuthResponse
	LoginErr    error
	RegResp     *models.AuthResponse
	RegErr      error
	MeUser      *models.User
	MeErr       error
	RefreshTok  string
	RefreshErr  error
	ProfileUser *models.User
	ProfileErr  error
	PasswordErr error
	PingErr     error

	LastEmail    string
	LastPassword string
	LastName     string
	LastProfile  models.ProfileUpdate
	LastChange   models.PasswordChange
	LoginCalls   int
	LogoutCalls  int
	PingCalls    int
	Closed       bool
}

func (f *fakeAPI) SetToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

func (f *fakeAPI) OnUnauthorized(func()) {}

func (f *fakeAPI) Login(_ context.Context, email, password string) (*models.AuthResponse, error) {
	f.LoginCalls++
	f.LastEmail, f.LastPassword = email, password
	return f.LoginResp, f.LoginErr
}

func (f *fakeAPI) Register(_ context.Context, name, email, password string) (*models.AuthResponse, error) {
	f.LastName, f.LastEmail, f.LastPassword = name, email, password
	return f.RegResp, f.RegErr
}

func (f *fakeAPI) Logout(context.Context) error {
	f.LogoutCalls++
	return nil
}

func (f *fakeAPI) CurrentUser(context.Context) (*models.User, error) {
	return f.MeUser, f.MeErr
}

func (f *fakeAPI) RefreshToken(context.Context) (string, error) {
	return f.RefreshTok, f.RefreshErr
}

func (f *fakeAPI) UpdateProfile(_ context.Context, p models.ProfileUpdate) (*models.User, error) {
	f.LastProfile = p
	return f.ProfileUser, f.ProfileErr
}

func (f *fakeAPI) ChangePassword(_ context.Context, p models.PasswordChange) error {
	f.LastChange = p
	return f.PasswordErr
}

func (f *fakeAPI) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PingCalls++
	return f.PingErr
}

func (f *fakeAPI) Close() error {
	f.Closed = true
	return nil
}
