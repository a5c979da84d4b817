package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/client/client"
	"github.com/dmitrijs2005/notekeeper/internal/client/config"
	"github.com/dmitrijs2005/notekeeper/internal/client/notify"
	"github.com/dmitrijs2005/notekeeper/internal/client/repositories/tokens"
	"github.com/dmitrijs2005/notekeeper/internal/client/services"
	"github.com/dmitrijs2005/notekeeper/internal/clock"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"golang.org/x/term"
)

type Mode string

const (
	ModeUnknown Mode = ""
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// pingTimeout bounds a single connectivity probe.
const pingTimeout = 3 * time.Second

type App struct {
	config  *config.Config
	log     logging.Logger
	client  client.Client
	session *services.SessionStore
	queue   *notify.Queue
	db      *sql.DB

	reader *bufio.Reader
	out    io.Writer
	// secretFromTerminal switches password prompts to no-echo reads.
	secretFromTerminal bool

	modeMu sync.Mutex
	mode   Mode

	// seen holds the ids already shown by afterCommand.
	seenMu sync.Mutex
	seen   map[string]struct{}
}

// NewApp wires the transport, local database, session store and
// notification queue described by c.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	apiClient, err := newClient(c)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		_ = apiClient.Close()
		return nil, fmt.Errorf("init database: %w", err)
	}

	clk := clock.System{}
	queue := notify.New(clk,
		notify.WithTickInterval(c.ProgressInterval),
		notify.WithMaxLive(c.MaxNotifications),
	)
	session := services.NewSessionStore(apiClient, tokens.NewSQLiteStorage(db, clk), clk, log)
	session.SetNotifier(queue)

	a := newApp(c, log, apiClient, session, queue, os.Stdin, os.Stdout)
	a.db = db
	a.secretFromTerminal = term.IsTerminal(int(os.Stdin.Fd()))
	return a, nil
}

func newApp(c *config.Config, log logging.Logger, api client.Client, session *services.SessionStore,
	queue *notify.Queue, in io.Reader, out io.Writer) *App {
	if log == nil {
		log = logging.Nop()
	}
	return &App{
		config:  c,
		log:     log.With("component", "cli"),
		client:  api,
		session: session,
		queue:   queue,
		reader:  bufio.NewReader(in),
		out:     out,
	}
}

func newClient(c *config.Config) (client.Client, error) {
	switch c.Transport {
	case config.TransportGRPC:
		g, err := client.NewGRPCClient(c.GRPCEndpointAddr)
		if err != nil {
			return nil, err
		}
		return g, nil
	case config.TransportHTTP, "":
		return client.NewHTTPClient(c.APIBaseURL, c.RequestTimeout), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", c.Transport)
	}
}

// Run restores the previous session, starts the connectivity watcher and
// blocks in the REPL until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(a.out, "Welcome to NoteKeeper CLI (type 'help' for commands)")

	if res := a.session.Bootstrap(ctx); res.Success {
		a.queue.Success(fmt.Sprintf("Welcome back, %s!", res.User.Name))
	} else if res.Error != "" {
		a.queue.Error(res.Error)
	}
	a.afterCommand()

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

// Close releases the queue timers, the transport and the database.
func (a *App) Close() error {
	a.queue.Close()
	errs := []error{a.client.Close()}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

func (a *App) Mode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

// probe pings the Identity Service once and records the resulting mode.
func (a *App) probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := a.client.Ping(ctx); err != nil {
		a.log.Debug(ctx, "ping failed", "error", err)
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher probes connectivity immediately and then every
// interval until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.probe(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) getStatus() string {
	var parts []string
	if u := a.session.Snapshot().User; u != nil {
		parts = append(parts, u.Email)
	}
	if m := a.Mode(); m != ModeUnknown {
		parts = append(parts, string(m))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}
