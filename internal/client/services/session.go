// Package services contains application services for the NoteKeeper client.
// This file defines the session store: the authentication state machine
// with token persistence and expiry-driven logout.
package services

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/client/client"
	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/client/notify"
	"github.com/dmitrijs2005/notekeeper/internal/client/token"
	"github.com/dmitrijs2005/notekeeper/internal/clock"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
)

// Status is the state of the session state machine.
type Status int

const (
	StatusUnauthenticated Status = iota
	StatusLoading
	StatusAuthenticated
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Failure messages used when the Identity Service supplies none.
const (
	MsgLoginFailed          = "Login failed"
	MsgRegistrationFailed   = "Registration failed"
	MsgLoadUserFailed       = "Failed to load user"
	MsgUpdateProfileFailed  = "Failed to update profile"
	MsgChangePasswordFailed = "Failed to change password"
	MsgRefreshFailed        = "Token refresh failed"

	MsgSessionExpired = "Your session has expired. Please sign in again."
)

// backgroundCallTimeout bounds remote calls made from timer callbacks and
// the unauthorized handler, which have no caller context.
const backgroundCallTimeout = 10 * time.Second

// State is a snapshot of the session. User and Token are set only in
// StatusAuthenticated. ExpiresAt is zero when the token expiry is unknown.
type State struct {
	Status    Status
	User      *models.User
	Token     string
	Error     string
	ExpiresAt time.Time
}

// Result is the outcome of a session command. Commands never return
// errors; failures are reported through Success and Error.
type Result struct {
	Success bool
	User    *models.User
	Error   string
}

// TokenStorage persists the session token between runs.
type TokenStorage interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Notifier receives the session's own user-facing messages.
// *notify.Queue satisfies it.
type Notifier interface {
	Warning(message string, opts ...notify.Option) string
}

// SessionStore owns the session state machine.
//
// Commands may be called from any goroutine. Overlapping commands are not
// serialized: each one publishes Loading when it starts (where applicable)
// and its own outcome when it completes, so the last completion wins.
type SessionStore struct {
	client   client.Client
	tokens   TokenStorage
	clock    clock.Clock
	log      logging.Logger
	notifier Notifier

	mu     sync.Mutex
	state  State
	timer  clock.Timer
	gen    uint64
	subs   map[int]func(State)
	nextID int
	// loggingOut counts explicit logouts waiting on the remote call.
	loggingOut int
}

// NewSessionStore wires the store to c and registers it as c's
// unauthorized handler.
func NewSessionStore(c client.Client, tokens TokenStorage, clk clock.Clock, log logging.Logger) *SessionStore {
	if log == nil {
		log = logging.Nop()
	}
	s := &SessionStore{
		client: c,
		tokens: tokens,
		clock:  clk,
		log:    log.With("component", "session"),
		subs:   make(map[int]func(State)),
	}
	c.OnUnauthorized(s.forceLogout)
	return s
}

// SetNotifier sets where expiry warnings go. nil disables them.
func (s *SessionStore) SetNotifier(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = n
}

// Snapshot returns a copy of the current state.
func (s *SessionStore) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to receive every published state. fn runs on the
// goroutine that caused the change and must not block.
func (s *SessionStore) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Bootstrap restores a persisted session, verifying it with the Identity
// Service. Without a stored token the store stays Unauthenticated.
func (s *SessionStore) Bootstrap(ctx context.Context) Result {
	tok, err := s.tokens.Load(ctx)
	if err != nil {
		s.log.Warn(ctx, "load persisted token failed", "error", err)
		tok = ""
	}
	if tok == "" {
		s.transition(func(st *State) bool {
			*st = State{Status: StatusUnauthenticated}
			return true
		})
		return Result{}
	}

	s.transition(func(st *State) bool {
		*st = State{Status: StatusLoading}
		s.client.SetToken(tok)
		return true
	})

	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		msg := failureMessage(err, MsgLoadUserFailed)
		s.log.Warn(ctx, "restore session failed", "error", err)
		s.transition(func(st *State) bool {
			s.clearLocked(ctx)
			*st = State{Status: StatusFailed, Error: msg}
			return true
		})
		s.transition(func(st *State) bool {
			*st = State{Status: StatusUnauthenticated, Error: msg}
			return true
		})
		return Result{Error: msg}
	}

	s.authenticate(ctx, user, tok, false)
	return s.resultFor(user)
}

// Login authenticates with email and password.
func (s *SessionStore) Login(ctx context.Context, email, password string) Result {
	s.startLoading()
	resp, err := s.client.Login(ctx, email, password)
	return s.completeAuth(ctx, resp, err, MsgLoginFailed)
}

// Register creates an account and signs into it.
func (s *SessionStore) Register(ctx context.Context, name, email, password string) Result {
	s.startLoading()
	resp, err := s.client.Register(ctx, name, email, password)
	return s.completeAuth(ctx, resp, err, MsgRegistrationFailed)
}

// Logout ends the session. The remote call is best effort; local state is
// always cleared.
func (s *SessionStore) Logout(ctx context.Context) Result {
	s.mu.Lock()
	hasToken := s.state.Token != ""
	// A 401/403 on the remote call must not count as an expired session.
	s.loggingOut++
	s.mu.Unlock()

	if hasToken {
		if err := s.client.Logout(ctx); err != nil {
			s.log.Warn(ctx, "remote logout failed", "error", err)
		}
	}

	s.mu.Lock()
	s.loggingOut--
	s.mu.Unlock()

	s.endSession(ctx, 0)
	return Result{Success: true}
}

// Refresh exchanges the current token for a new one. Any failure ends the
// session.
func (s *SessionStore) Refresh(ctx context.Context) Result {
	tok, err := s.client.RefreshToken(ctx)
	if err != nil {
		s.log.Warn(ctx, "token refresh failed", "error", err)
		s.Logout(ctx)
		return Result{Error: failureMessage(err, MsgRefreshFailed)}
	}

	s.mu.Lock()
	user := s.state.User.Clone()
	s.mu.Unlock()
	if user == nil {
		s.log.Warn(ctx, "token refreshed without an active session")
		s.Logout(ctx)
		return Result{Error: MsgRefreshFailed}
	}

	s.authenticate(ctx, user, tok, true)
	return s.resultFor(user)
}

// UpdateProfile patches the signed-in user with the server's answer.
func (s *SessionStore) UpdateProfile(ctx context.Context, p models.ProfileUpdate) Result {
	updated, err := s.client.UpdateProfile(ctx, p)
	if err != nil {
		s.log.Warn(ctx, "update profile failed", "error", err)
		return Result{Error: failureMessage(err, MsgUpdateProfileFailed)}
	}

	var user *models.User
	s.transition(func(st *State) bool {
		if st.Status != StatusAuthenticated || st.User == nil {
			user = updated.Clone()
			return false
		}
		next := st.User.Clone()
		next.Apply(updated)
		st.User = next
		st.Error = ""
		user = next.Clone()
		return true
	})
	return Result{Success: true, User: user}
}

// ChangePassword has no effect on session state.
func (s *SessionStore) ChangePassword(ctx context.Context, current, next string) Result {
	err := s.client.ChangePassword(ctx, models.PasswordChange{CurrentPassword: current, NewPassword: next})
	if err != nil {
		s.log.Warn(ctx, "change password failed", "error", err)
		return Result{Error: failureMessage(err, MsgChangePasswordFailed)}
	}
	return Result{Success: true}
}

// ClearError drops the last failure message and keeps the status.
func (s *SessionStore) ClearError() {
	s.transition(func(st *State) bool {
		if st.Error == "" {
			return false
		}
		st.Error = ""
		return true
	})
}

// IsTokenExpired reports whether there is no usable token right now.
func (s *SessionStore) IsTokenExpired() bool {
	s.mu.Lock()
	tok := s.state.Token
	s.mu.Unlock()
	return token.Expired(tok, s.clock.Now())
}

func (s *SessionStore) startLoading() {
	s.transition(func(st *State) bool {
		*st = State{Status: StatusLoading}
		return true
	})
}

func (s *SessionStore) completeAuth(ctx context.Context, resp *models.AuthResponse, err error, fallback string) Result {
	if err == nil && (resp == nil || resp.Token == "" || resp.User == nil) {
		err = client.ErrServer
	}
	if err != nil {
		msg := failureMessage(err, fallback)
		s.log.Warn(ctx, "authentication failed", "error", err)
		s.transition(func(st *State) bool {
			s.disarmLocked()
			s.client.SetToken("")
			*st = State{Status: StatusFailed, Error: msg}
			return true
		})
		return Result{Error: msg}
	}

	s.authenticate(ctx, resp.User, resp.Token, true)
	return Result{Success: true, User: resp.User.Clone()}
}

// authenticate enters Authenticated with tok and arms the expiry timer,
// replacing any earlier one. A token that is unreadable or already expired
// ends the session right away.
func (s *SessionStore) authenticate(ctx context.Context, user *models.User, tok string, persist bool) {
	var (
		gen     uint64
		expired bool
	)
	s.transition(func(st *State) bool {
		if persist {
			if err := s.tokens.Save(ctx, tok); err != nil {
				s.log.Warn(ctx, "persist token failed", "error", err)
			}
		}
		s.client.SetToken(tok)
		s.disarmLocked()
		gen = s.gen

		*st = State{Status: StatusAuthenticated, User: user.Clone(), Token: tok}

		exp, err := token.ExpiresAt(tok)
		if err != nil {
			s.log.Warn(ctx, "token expiry unreadable", "error", err)
			expired = true
			return true
		}
		st.ExpiresAt = exp

		remaining := exp.Sub(s.clock.Now())
		if remaining <= 0 {
			expired = true
			return true
		}
		s.timer = s.clock.AfterFunc(remaining, func() { s.expire(gen) })
		s.log.Debug(ctx, "expiry timer armed", "expires_at", exp, "in", remaining)
		return true
	})

	if expired {
		s.expire(gen)
	}
}

// expire logs out the session of generation gen if it is still current.
func (s *SessionStore) expire(gen uint64) {
	s.mu.Lock()
	current := s.gen == gen && s.state.Status == StatusAuthenticated
	s.mu.Unlock()
	if !current {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), backgroundCallTimeout)
	defer cancel()

	s.log.Info(ctx, "session expired")
	if err := s.client.Logout(ctx); err != nil {
		s.log.Warn(ctx, "remote logout failed", "error", err)
	}
	if s.endSession(ctx, gen) {
		s.warn(MsgSessionExpired)
	}
}

// forceLogout runs when an authenticated call is answered with 401/403.
// It tears the session down locally without calling the server again, and
// does nothing while an explicit Logout is in flight.
func (s *SessionStore) forceLogout() {
	s.mu.Lock()
	gen := s.gen
	active := s.state.Status == StatusAuthenticated && s.loggingOut == 0
	s.mu.Unlock()
	if !active {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), backgroundCallTimeout)
	defer cancel()

	s.log.Warn(ctx, "authenticated call rejected, signing out")
	if s.endSession(ctx, gen) {
		s.warn(MsgSessionExpired)
	}
}

// endSession clears the session and publishes Unauthenticated. A non-zero
// expect restricts it to that session generation. It reports whether the
// session was ended.
func (s *SessionStore) endSession(ctx context.Context, expect uint64) bool {
	ended := false
	s.transition(func(st *State) bool {
		if expect != 0 && s.gen != expect {
			return false
		}
		s.clearLocked(ctx)
		*st = State{Status: StatusUnauthenticated}
		ended = true
		return true
	})
	return ended
}

// clearLocked disarms the timer and forgets the token everywhere.
func (s *SessionStore) clearLocked(ctx context.Context) {
	s.disarmLocked()
	if err := s.tokens.Clear(ctx); err != nil {
		s.log.Warn(ctx, "clear persisted token failed", "error", err)
	}
	s.client.SetToken("")
}

// disarmLocked stops the expiry timer and starts a new generation, so a
// callback that already fired becomes a no-op.
func (s *SessionStore) disarmLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

// transition applies fn under the lock and, when fn reports a change,
// publishes the new state to subscribers after releasing it.
func (s *SessionStore) transition(fn func(st *State) bool) {
	s.mu.Lock()
	if !fn(&s.state) {
		s.mu.Unlock()
		return
	}
	snap := s.snapshotLocked()
	subs := make([]func(State), 0, len(s.subs))
	for _, f := range s.subs {
		subs = append(subs, f)
	}
	s.mu.Unlock()

	s.log.Debug(context.Background(), "session state", "status", snap.Status.String(), "error", snap.Error)
	for _, f := range subs {
		f(snap)
	}
}

func (s *SessionStore) snapshotLocked() State {
	st := s.state
	st.User = st.User.Clone()
	return st
}

func (s *SessionStore) resultFor(user *models.User) Result {
	return Result{Success: true, User: user.Clone()}
}

func (s *SessionStore) warn(msg string) {
	s.mu.Lock()
	n := s.notifier
	s.mu.Unlock()
	if n != nil {
		n.Warning(msg)
	}
}

// failureMessage prefers the server's message over fallback.
func failureMessage(err error, fallback string) string {
	if msg := client.Message(err); msg != "" {
		return msg
	}
	return fallback
}
