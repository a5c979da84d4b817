package cli

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/notekeeper/internal/client/client"
	"github.com/dmitrijs2005/notekeeper/internal/client/config"
	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/client/notify"
	"github.com/dmitrijs2005/notekeeper/internal/client/repositories/tokens"
	"github.com/dmitrijs2005/notekeeper/internal/client/services"
	"github.com/dmitrijs2005/notekeeper/internal/clock"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
)

var epoch = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

var ann = &models.User{ID: "1", Name: "Ann", Email: "ann@example.com"}

func mintToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

type harness struct {
	app   *App
	api   *fakeAPI
	clock *clock.Fake
	queue *notify.Queue
	out   *bytes.Buffer
	logs  *bytes.Buffer
}

func newHarness(t *testing.T, input string) *harness {
	t.Helper()
	h := &harness{
		api:   &fakeAPI{},
		clock: clock.NewFake(epoch),
		out:   &bytes.Buffer{},
		logs:  &bytes.Buffer{},
	}
	var cfg config.Config
	cfg.LoadDefaults()

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(h.logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	h.queue = notify.New(h.clock)
	session := services.NewSessionStore(h.api, &tokens.Memory{}, h.clock, log)
	session.SetNotifier(h.queue)
	h.app = newApp(&cfg, log, h.api, session, h.queue, strings.NewReader(input), h.out)
	t.Cleanup(h.queue.Close)
	return h
}

func (h *harness) messages() []string {
	var out []string
	for _, n := range h.queue.Snapshot() {
		out = append(out, string(n.Kind)+": "+n.Message)
	}
	return out
}

func (h *harness) signIn(t *testing.T) {
	t.Helper()
	h.api.LoginResp = &models.AuthResponse{Token: mintToken(t, epoch.Add(time.Hour)), User: ann}
	res := h.app.session.Login(context.Background(), ann.Email, "Secret1")
	require.True(t, res.Success)
}

func TestLogin_Success(t *testing.T) {
	h := newHarness(t, "ann@example.com\nSecret1\n")
	h.api.LoginResp = &models.AuthResponse{Token: mintToken(t, epoch.Add(time.Hour)), User: ann}

	require.NoError(t, h.app.Login(context.Background()))

	assert.True(t, h.app.isLoggedIn())
	assert.Equal(t, "ann@example.com", h.api.LastEmail)
	assert.Equal(t, "Secret1", h.api.LastPassword)
	assert.Equal(t, []string{"success: Welcome back, Ann!"}, h.messages())
}

func TestLogin_ValidationStopsBeforeRequest(t *testing.T) {
	h := newHarness(t, "not-an-email\n123\n")

	require.Error(t, h.app.Login(context.Background()))

	assert.Zero(t, h.api.LoginCalls)
	assert.Contains(t, h.out.String(), "email: Please enter a valid email address")
	assert.Contains(t, h.out.String(), "password: Password must be at least 6 characters")
	assert.Empty(t, h.messages())
}

func TestLogin_ServerRejectionBecomesErrorNotification(t *testing.T) {
	h := newHarness(t, "ann@example.com\nSecret1\n")
	h.api.LoginErr = &client.ResponseError{Status: 401, Message: "Invalid credentials"}

	require.Error(t, h.app.Login(context.Background()))

	assert.False(t, h.app.isLoggedIn())
	assert.Equal(t, []string{"error: Invalid credentials"}, h.messages())
	assert.Equal(t, "Invalid credentials", h.app.session.Snapshot().Error)
}

func TestLogin_UnreachableServerUsesDefaultMessage(t *testing.T) {
	h := newHarness(t, "ann@example.com\nSecret1\n")
	h.api.LoginErr = client.ErrUnavailable

	require.Error(t, h.app.Login(context.Background()))
	assert.Equal(t, []string{"error: " + services.MsgLoginFailed}, h.messages())
}

func TestRegister_Success(t *testing.T) {
	h := newHarness(t, "Ann Lee\nann@example.com\nSecret1\nSecret1\n")
	h.api.RegResp = &models.AuthResponse{
		Token: mintToken(t, epoch.Add(time.Hour)),
		User:  &models.User{ID: "2", Name: "Ann Lee", Email: "ann@example.com"},
	}

	require.NoError(t, h.app.Register(context.Background()))

	assert.Equal(t, "Ann Lee", h.api.LastName)
	assert.True(t, h.app.isLoggedIn())
	assert.Equal(t, []string{"success: Welcome to NoteKeeper, Ann Lee! Your account has been created."}, h.messages())
}

func TestRegister_PasswordMismatch(t *testing.T) {
	h := newHarness(t, "Ann Lee\nann@example.com\nSecret1\nSecret2\n")

	require.Error(t, h.app.Register(context.Background()))
	assert.Contains(t, h.out.String(), "Passwords do not match")
	assert.Empty(t, h.api.LastEmail)
}

func TestLogout(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)
	h.queue.DismissAll()

	require.NoError(t, h.app.Logout(context.Background()))

	assert.False(t, h.app.isLoggedIn())
	assert.Equal(t, 1, h.api.LogoutCalls)
	assert.Equal(t, []string{"success: Logged out successfully"}, h.messages())
}

func TestRefresh_FailureSignsOut(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)
	h.api.RefreshErr = &client.ResponseError{Status: 500}

	require.Error(t, h.app.Refresh(context.Background()))

	assert.False(t, h.app.isLoggedIn())
	assert.Equal(t, []string{"error: " + services.MsgRefreshFailed}, h.messages())
}

func TestProfile(t *testing.T) {
	h := newHarness(t, "Annie\n\n")
	h.signIn(t)
	h.api.ProfileUser = &models.User{Name: "Annie"}

	require.NoError(t, h.app.Profile(context.Background()))

	assert.Equal(t, models.ProfileUpdate{Name: "Annie"}, h.api.LastProfile)
	st := h.app.session.Snapshot()
	assert.Equal(t, "Annie", st.User.Name)
	assert.Equal(t, ann.Email, st.User.Email)
}

func TestProfile_NothingToUpdate(t *testing.T) {
	h := newHarness(t, "\n\n")
	h.signIn(t)

	require.Error(t, h.app.Profile(context.Background()))
	assert.Contains(t, h.out.String(), "Nothing to update")
}

func TestPassword(t *testing.T) {
	h := newHarness(t, "OldPass1\nNewPass1\nNewPass1\n")
	h.signIn(t)
	h.queue.DismissAll()

	require.NoError(t, h.app.Password(context.Background()))

	assert.Equal(t, models.PasswordChange{CurrentPassword: "OldPass1", NewPassword: "NewPass1"}, h.api.LastChange)
	assert.Equal(t, []string{"success: Password changed"}, h.messages())
}

func TestWhoAmI(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.app.WhoAmI(context.Background()))
	assert.Equal(t, "Not signed in\n", h.out.String())

	h.signIn(t)
	h.out.Reset()
	require.NoError(t, h.app.WhoAmI(context.Background()))
	assert.Contains(t, h.out.String(), "Name:  Ann")
	assert.Contains(t, h.out.String(), "Email: ann@example.com")
	assert.Contains(t, h.out.String(), "Session expires at")
}

func TestSessionExpiryShowsWarning(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)
	h.queue.DismissAll()

	h.clock.Advance(time.Hour)

	assert.False(t, h.app.isLoggedIn())
	assert.Equal(t, []string{"warning: " + services.MsgSessionExpired}, h.messages())
}

func TestStatus(t *testing.T) {
	h := newHarness(t, "")
	h.app.setMode(ModeOnline)
	h.signIn(t)

	require.NoError(t, h.app.Status(context.Background()))

	out := h.out.String()
	assert.Contains(t, out, "Session: authenticated")
	assert.Contains(t, out, "Connectivity: online")
	assert.Contains(t, out, "Token: valid")
}

func TestGetStatus(t *testing.T) {
	h := newHarness(t, "")
	assert.Equal(t, "", h.app.getStatus())

	h.app.setMode(ModeOffline)
	assert.Equal(t, "(offline)", h.app.getStatus())

	h.signIn(t)
	assert.Equal(t, "(ann@example.com offline)", h.app.getStatus())
}

func TestSetMode_LogsOnlyChanges(t *testing.T) {
	h := newHarness(t, "")

	h.app.setMode(ModeOnline)
	assert.Equal(t, ModeOnline, h.app.Mode())
	assert.Equal(t, 1, strings.Count(h.logs.String(), "connectivity changed"))

	h.app.setMode(ModeOnline)
	assert.Equal(t, 1, strings.Count(h.logs.String(), "connectivity changed"))

	h.app.setMode(ModeOffline)
	assert.Equal(t, 2, strings.Count(h.logs.String(), "connectivity changed"))
	assert.Contains(t, h.logs.String(), "mode=offline")
}

func TestProbe(t *testing.T) {
	h := newHarness(t, "")

	h.app.probe(context.Background())
	assert.Equal(t, ModeOnline, h.app.Mode())

	h.api.PingErr = client.ErrUnavailable
	h.app.probe(context.Background())
	assert.Equal(t, ModeOffline, h.app.Mode())
}

func TestStartOnlineStatusWatcher_StopsWithContext(t *testing.T) {
	h := newHarness(t, "")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		h.app.StartOnlineStatusWatcher(ctx, time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		h.api.mu.Lock()
		defer h.api.mu.Unlock()
		return h.api.PingCalls >= 2
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
	assert.Equal(t, ModeOnline, h.app.Mode())
}

func TestClose(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.app.Close())
	assert.True(t, h.api.Closed)
}

func TestNewClient(t *testing.T) {
	var cfg config.Config
	cfg.LoadDefaults()

	c, err := newClient(&cfg)
	require.NoError(t, err)
	assert.IsType(t, &client.HTTPClient{}, c)

	cfg.Transport = config.TransportGRPC
	c, err = newClient(&cfg)
	require.NoError(t, err)
	assert.IsType(t, &client.GRPCClient{}, c)
	require.NoError(t, c.Close())

	cfg.Transport = "smoke"
	_, err = newClient(&cfg)
	require.Error(t, err)
}

func TestReport_EmptyErrorUsesFallback(t *testing.T) {
	h := newHarness(t, "")
	err := h.app.report(services.Result{}, func() string { return "unused" })
	require.EqualError(t, err, msgUnexpected)
	assert.Equal(t, []string{"error: " + msgUnexpected}, h.messages())
}
