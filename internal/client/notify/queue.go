package notify

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/clock"
	"github.com/google/uuid"
)

// Kind is the severity of a notification.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Default auto-dismiss durations used by the kind helpers.
const (
	DefaultInfoDuration    = 4 * time.Second
	DefaultSuccessDuration = 4 * time.Second
	DefaultWarningDuration = 6 * time.Second
	DefaultErrorDuration   = 8 * time.Second
)

const (
	// DefaultTickInterval is how often progress is recomputed.
	DefaultTickInterval = 100 * time.Millisecond
	// DefaultMaxLive caps the number of live notifications.
	DefaultMaxLive = 5
)

// Action is a button attached to a notification. Invoking it dismisses
// the notification unless KeepOpen is set.
type Action struct {
	Label    string
	Do       func()
	KeepOpen bool
}

// Spec describes a notification to enqueue. A zero Duration or Persistent
// means the notification never auto-dismisses.
type Spec struct {
	Kind       Kind
	Title      string
	Message    string
	Duration   time.Duration
	Persistent bool
	Actions    []Action
}

// Notification is a live queue entry as seen by readers.
type Notification struct {
	ID         string
	Kind       Kind
	Title      string
	Message    string
	CreatedAt  time.Time
	Duration   time.Duration
	Persistent bool
	Actions    []Action

	// RemainingFraction goes from 1 to 0 over Duration. It stays 1 for
	// notifications that never auto-dismiss.
	RemainingFraction float64
}

// Timed reports whether the notification auto-dismisses.
func (n Notification) Timed() bool {
	return n.Duration > 0 && !n.Persistent
}

type entry struct {
	n     Notification
	timer clock.Timer
}

// Queue is safe for concurrent use. Subscribers and action callbacks are
// called without the queue lock held.
type Queue struct {
	clock   clock.Clock
	tick    time.Duration
	maxLive int

	mu      sync.Mutex
	items   []*entry
	ticker  clock.Timer
	subs    map[int]func([]Notification)
	nextSub int
	closed  bool
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithTickInterval sets the progress refresh period.
func WithTickInterval(d time.Duration) QueueOption {
	return func(q *Queue) { q.tick = d }
}

// WithMaxLive caps live notifications; the oldest is evicted when the cap
// is exceeded. n <= 0 disables the cap.
func WithMaxLive(n int) QueueOption {
	return func(q *Queue) { q.maxLive = n }
}

func New(clk clock.Clock, opts ...QueueOption) *Queue {
	q := &Queue{
		clock:   clk,
		tick:    DefaultTickInterval,
		maxLive: DefaultMaxLive,
		subs:    make(map[int]func([]Notification)),
	}
	for _, o := range opts {
		o(q)
	}
	return q
}

// Enqueue appends a notification and returns its id.
func (q *Queue) Enqueue(spec Spec) string {
	if spec.Kind == "" {
		spec.Kind = KindInfo
	}
	e := &entry{n: Notification{
		ID:         uuid.NewString(),
		Kind:       spec.Kind,
		Title:      spec.Title,
		Message:    spec.Message,
		CreatedAt:  q.clock.Now(),
		Duration:   spec.Duration,
		Persistent: spec.Persistent,
		Actions:    append([]Action(nil), spec.Actions...),
	}}
	id := e.n.ID

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return id
	}
	if e.n.Timed() {
		e.timer = q.clock.AfterFunc(e.n.Duration, func() { q.Dismiss(id) })
	}
	q.items = append(q.items, e)
	if q.maxLive > 0 {
		for len(q.items) > q.maxLive {
			q.removeLocked(0)
		}
	}
	q.syncTickerLocked()
	q.publishLocked()
	return id
}

// Dismiss removes the notification with id. It reports whether one was
// removed; dismissing an unknown or already removed id is a no-op.
func (q *Queue) Dismiss(id string) bool {
	q.mu.Lock()
	idx := q.indexLocked(id)
	if idx < 0 {
		q.mu.Unlock()
		return false
	}
	q.removeLocked(idx)
	q.syncTickerLocked()
	q.publishLocked()
	return true
}

// DismissAll removes every notification.
func (q *Queue) DismissAll() {
	q.mu.Lock()
	if len(q.items) == 0 {
		q.mu.Unlock()
		return
	}
	for len(q.items) > 0 {
		q.removeLocked(len(q.items) - 1)
	}
	q.syncTickerLocked()
	q.publishLocked()
}

// Invoke runs action i of notification id. It reports false when either
// does not exist.
func (q *Queue) Invoke(id string, i int) bool {
	q.mu.Lock()
	idx := q.indexLocked(id)
	if idx < 0 || i < 0 || i >= len(q.items[idx].n.Actions) {
		q.mu.Unlock()
		return false
	}
	a := q.items[idx].n.Actions[i]
	q.mu.Unlock()

	if a.Do != nil {
		a.Do()
	}
	if !a.KeepOpen {
		q.Dismiss(id)
	}
	return true
}

// Snapshot returns the live notifications in insertion order.
func (q *Queue) Snapshot() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshotLocked(q.clock.Now())
}

// Len returns the number of live notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Progress returns the remaining fraction of notification id.
func (q *Queue) Progress(id string) (float64, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	idx := q.indexLocked(id)
	if idx < 0 {
		return 0, false
	}
	return remaining(q.items[idx].n, q.clock.Now()), true
}

// Subscribe registers fn to receive the queue after every change and on
// every progress tick.
func (q *Queue) Subscribe(fn func([]Notification)) (unsubscribe func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	id := q.nextSub
	q.nextSub++
	q.subs[id] = fn
	return func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		delete(q.subs, id)
	}
}

// Close cancels every timer and drops all notifications. Later Enqueue
// calls are ignored.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	for len(q.items) > 0 {
		q.removeLocked(len(q.items) - 1)
	}
	q.syncTickerLocked()
}

func (q *Queue) onTick() {
	q.mu.Lock()
	now := q.clock.Now()
	for i := 0; i < len(q.items); {
		if n := q.items[i].n; n.Timed() && remaining(n, now) == 0 {
			q.removeLocked(i)
			continue
		}
		i++
	}
	q.syncTickerLocked()
	q.publishLocked()
}

func (q *Queue) indexLocked(id string) int {
	for i, e := range q.items {
		if e.n.ID == id {
			return i
		}
	}
	return -1
}

func (q *Queue) removeLocked(i int) {
	if t := q.items[i].timer; t != nil {
		t.Stop()
	}
	q.items = append(q.items[:i], q.items[i+1:]...)
}

// syncTickerLocked runs the progress ticker only while a timed
// notification is live.
func (q *Queue) syncTickerLocked() {
	timed := false
	for _, e := range q.items {
		if e.n.Timed() {
			timed = true
			break
		}
	}
	switch {
	case timed && q.ticker == nil:
		q.ticker = clock.Every(q.clock, q.tick, q.onTick)
	case !timed && q.ticker != nil:
		q.ticker.Stop()
		q.ticker = nil
	}
}

func (q *Queue) snapshotLocked(now time.Time) []Notification {
	out := make([]Notification, 0, len(q.items))
	for _, e := range q.items {
		n := e.n
		n.Actions = append([]Action(nil), n.Actions...)
		n.RemainingFraction = remaining(n, now)
		out = append(out, n)
	}
	return out
}

// publishLocked releases the lock and notifies subscribers.
func (q *Queue) publishLocked() {
	snap := q.snapshotLocked(q.clock.Now())
	subs := make([]func([]Notification), 0, len(q.subs))
	for _, f := range q.subs {
		subs = append(subs, f)
	}
	q.mu.Unlock()
	for _, f := range subs {
		f(snap)
	}
}

func remaining(n Notification, now time.Time) float64 {
	if !n.Timed() {
		return 1
	}
	f := 1 - float64(now.Sub(n.CreatedAt))/float64(n.Duration)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
