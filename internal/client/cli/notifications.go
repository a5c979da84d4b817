package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/notekeeper/internal/client/notify"
)

const progressWidth = 10

// Notifications lists the live queue with the remaining time of each entry.
func (a *App) Notifications(context.Context) error {
	ns := a.queue.Snapshot()
	if len(ns) == 0 {
		fmt.Fprintln(a.out, "No notifications")
		return nil
	}
	for i, n := range ns {
		renderNotification(a.out, i+1, n)
	}
	return nil
}

// Dismiss removes the n-th notification as listed by Notifications.
func (a *App) Dismiss(_ context.Context, arg string) error {
	idx, err := strconv.Atoi(arg)
	ns := a.queue.Snapshot()
	if err != nil || idx < 1 || idx > len(ns) {
		fmt.Fprintf(a.out, "No notification #%s\n", arg)
		return fmt.Errorf("no notification %q", arg)
	}
	a.queue.Dismiss(ns[idx-1].ID)
	return nil
}

// Clear dismisses every notification and the session's last error.
func (a *App) Clear(context.Context) error {
	a.queue.DismissAll()
	a.session.ClearError()
	return nil
}

// Status prints the session and connectivity state.
func (a *App) Status(context.Context) error {
	st := a.session.Snapshot()
	fmt.Fprintf(a.out, "Session: %s\n", st.Status)
	if st.Error != "" {
		fmt.Fprintf(a.out, "Last error: %s\n", st.Error)
	}
	mode := a.Mode()
	if mode == ModeUnknown {
		mode = "unknown"
	}
	fmt.Fprintf(a.out, "Connectivity: %s\n", mode)
	if a.isLoggedIn() {
		if a.session.IsTokenExpired() {
			fmt.Fprintln(a.out, "Token: expired")
		} else {
			fmt.Fprintln(a.out, "Token: valid")
		}
	}
	return nil
}

// afterCommand prints notifications that appeared since the last call.
func (a *App) afterCommand() {
	ns := a.queue.Snapshot()

	a.seenMu.Lock()
	defer a.seenMu.Unlock()
	if a.seen == nil {
		a.seen = make(map[string]struct{})
	}
	live := make(map[string]struct{}, len(ns))
	for i, n := range ns {
		live[n.ID] = struct{}{}
		if _, ok := a.seen[n.ID]; ok {
			continue
		}
		renderNotification(a.out, i+1, n)
	}
	a.seen = live
}

func renderNotification(w io.Writer, pos int, n notify.Notification) {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. [%s] ", pos, n.Kind)
	if n.Title != "" {
		b.WriteString(n.Title + ": ")
	}
	b.WriteString(n.Message)
	if n.Timed() {
		b.WriteString(" " + progressBar(n.RemainingFraction))
	}
	for i, act := range n.Actions {
		fmt.Fprintf(&b, " (%d:%s)", i+1, act.Label)
	}
	fmt.Fprintln(w, b.String())
}

func progressBar(frac float64) string {
	frac = max(0, min(1, frac))
	filled := int(frac*progressWidth + 0.5)
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", progressWidth-filled) + "]"
}
