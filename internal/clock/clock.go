package clock

import (
	"sync"
	"time"
)

// Timer is a cancellable pending callback.
//
// Stop reports whether the call prevented the callback from running.
// Calling Stop on a fired or stopped timer is a no-op returning false.
type Timer interface {
	Stop() bool
}

// Clock provides the current time and one-shot delayed callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// System is the Clock backed by the time package.
type System struct{}

// Now returns time.Now().
func (System) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules f on its own goroutine after d.
func (System) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// minPeriod keeps a zero or negative period from spinning.
const minPeriod = time.Millisecond

// Every calls f every d on c until the returned Timer is stopped.
// The first call happens one period after Every returns.
func Every(c Clock, d time.Duration, f func()) Timer {
	if d < minPeriod {
		d = minPeriod
	}
	t := &periodic{clock: c, period: d, fn: f}
	t.schedule()
	return t
}

type periodic struct {
	mu      sync.Mutex
	clock   Clock
	period  time.Duration
	fn      func()
	current Timer
	stopped bool
}

func (t *periodic) schedule() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.current = t.clock.AfterFunc(t.period, t.fire)
}

func (t *periodic) fire() {
	t.mu.Lock()
	stopped := t.stopped
	t.mu.Unlock()
	if stopped {
		return
	}
	t.fn()
	t.schedule()
}

// Stop cancels all future calls.
func (t *periodic) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	if t.current != nil {
		t.current.Stop()
	}
	return true
}
