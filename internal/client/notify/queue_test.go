package notify

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newQueue(t *testing.T, opts ...QueueOption) (*Queue, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(epoch)
	q := New(clk, opts...)
	t.Cleanup(q.Close)
	return q, clk
}

func messages(ns []Notification) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.Message)
	}
	return out
}

func TestEnqueue_TimedNotificationExpiresOnce(t *testing.T) {
	q, clk := newQueue(t)

	removals := 0
	prev := 0
	q.Subscribe(func(ns []Notification) {
		if len(ns) < prev {
			removals++
		}
		prev = len(ns)
	})

	id := q.Enqueue(Spec{Kind: KindSuccess, Message: "Saved", Duration: 3 * time.Second})
	require.NotEmpty(t, id)
	require.Equal(t, 1, q.Len())

	clk.Advance(2999 * time.Millisecond)
	require.Equal(t, 1, q.Len(), "must be present before the duration elapses")

	clk.Advance(time.Millisecond)
	require.Equal(t, 0, q.Len(), "must be gone once the duration elapses")
	require.Equal(t, 1, removals)

	require.Equal(t, 0, clk.Pending(), "no timers or ticks may remain")
	require.False(t, q.Dismiss(id), "dismiss after expiry is a no-op")
}

func TestDismiss_BeforeExpiryCancelsTimer(t *testing.T) {
	q, clk := newQueue(t)

	id := q.Enqueue(Spec{Message: "x", Duration: time.Second})
	clk.Advance(500 * time.Millisecond)

	require.True(t, q.Dismiss(id))
	require.Equal(t, 0, q.Len())
	require.Equal(t, 0, clk.Pending())

	clk.Advance(time.Hour)
	require.Equal(t, 0, q.Len())
	require.False(t, q.Dismiss(id), "second dismiss has no effect")
}

func TestOrdering(t *testing.T) {
	q, _ := newQueue(t)

	a := q.Enqueue(Spec{Message: "A"})
	q.Enqueue(Spec{Message: "B"})
	q.Enqueue(Spec{Message: "C"})
	require.Equal(t, []string{"A", "B", "C"}, messages(q.Snapshot()))

	q.Dismiss(a)
	require.Equal(t, []string{"B", "C"}, messages(q.Snapshot()))
}

func TestOrdering_IndependentRemoval(t *testing.T) {
	q, clk := newQueue(t)

	q.Enqueue(Spec{Message: "A", Duration: 2 * time.Second})
	q.Enqueue(Spec{Message: "B", Duration: time.Second})
	q.Enqueue(Spec{Message: "C"})

	clk.Advance(time.Second)
	require.Equal(t, []string{"A", "C"}, messages(q.Snapshot()))

	clk.Advance(time.Second)
	require.Equal(t, []string{"C"}, messages(q.Snapshot()))
}

func TestPersistent_NeverExpires(t *testing.T) {
	q, clk := newQueue(t)

	q.Enqueue(Spec{Message: "forever"})
	q.Enqueue(Spec{Message: "pinned", Duration: time.Second, Persistent: true})

	require.Equal(t, 0, clk.Pending(), "persistent items arm no timer and no ticker")
	clk.Advance(24 * time.Hour)
	require.Equal(t, 2, q.Len())

	for _, n := range q.Snapshot() {
		require.False(t, n.Timed())
		require.Equal(t, 1.0, n.RemainingFraction)
	}
}

func TestDismissAll_CancelsTimers(t *testing.T) {
	q, clk := newQueue(t)

	q.Enqueue(Spec{Message: "a", Duration: time.Second})
	q.Enqueue(Spec{Message: "b", Duration: 2 * time.Second})
	q.Enqueue(Spec{Message: "c"})

	q.DismissAll()
	require.Equal(t, 0, q.Len())
	require.Equal(t, 0, clk.Pending())

	q.DismissAll()
}

func TestProgress_DecreasesToZero(t *testing.T) {
	q, clk := newQueue(t)

	id := q.Enqueue(Spec{Message: "p", Duration: time.Second})

	p, ok := q.Progress(id)
	require.True(t, ok)
	require.Equal(t, 1.0, p)

	clk.Advance(250 * time.Millisecond)
	p, _ = q.Progress(id)
	assert.InDelta(t, 0.75, p, 1e-9)

	clk.Advance(500 * time.Millisecond)
	p, _ = q.Progress(id)
	assert.InDelta(t, 0.25, p, 1e-9)

	clk.Advance(250 * time.Millisecond)
	_, ok = q.Progress(id)
	require.False(t, ok)
}

func TestProgress_TicksArePublishedMonotonically(t *testing.T) {
	q, clk := newQueue(t, WithTickInterval(100*time.Millisecond))

	var seen []float64
	q.Subscribe(func(ns []Notification) {
		if len(ns) == 1 {
			seen = append(seen, ns[0].RemainingFraction)
		}
	})

	q.Enqueue(Spec{Message: "p", Duration: time.Second})
	clk.Advance(time.Second)

	require.GreaterOrEqual(t, len(seen), 10)
	for i := 1; i < len(seen); i++ {
		require.LessOrEqual(t, seen[i], seen[i-1])
	}
	require.Equal(t, 0, q.Len())
}

func TestMaxLive_EvictsOldest(t *testing.T) {
	q, clk := newQueue(t, WithMaxLive(2))

	q.Enqueue(Spec{Message: "A", Duration: time.Second})
	q.Enqueue(Spec{Message: "B"})
	q.Enqueue(Spec{Message: "C"})

	require.Equal(t, []string{"B", "C"}, messages(q.Snapshot()))
	require.Equal(t, 0, clk.Pending(), "evicted item's timer must be cancelled")
}

func TestMaxLive_Disabled(t *testing.T) {
	q, _ := newQueue(t, WithMaxLive(0))
	for i := 0; i < 20; i++ {
		q.Enqueue(Spec{Message: "x"})
	}
	require.Equal(t, 20, q.Len())
}

func TestInvoke_DismissesByDefault(t *testing.T) {
	q, _ := newQueue(t)

	called := 0
	id := q.Info("undo?", Persistent(), WithAction("Undo", func() { called++ }))

	require.True(t, q.Invoke(id, 0))
	require.Equal(t, 1, called)
	require.Equal(t, 0, q.Len())

	require.False(t, q.Invoke(id, 0), "invoking on a removed item is a no-op")
	require.Equal(t, 1, called)
}

func TestInvoke_KeepOpen(t *testing.T) {
	q, _ := newQueue(t)

	called := 0
	id := q.Info("retry?", Persistent(), WithStickyAction("Retry", func() { called++ }))

	require.True(t, q.Invoke(id, 0))
	require.True(t, q.Invoke(id, 0))
	require.Equal(t, 2, called)
	require.Equal(t, 1, q.Len())

	require.False(t, q.Invoke(id, 1), "out of range action")
	require.False(t, q.Invoke(id, -1))
}

func TestInvoke_CallbackMayUseQueue(t *testing.T) {
	q, _ := newQueue(t)

	id := q.Warning("w", WithAction("Next", func() { q.Info("follow-up") }))
	require.True(t, q.Invoke(id, 0))
	require.Equal(t, []string{"follow-up"}, messages(q.Snapshot()))
}

func TestKindHelpers_DefaultDurations(t *testing.T) {
	q, _ := newQueue(t, WithMaxLive(0))

	q.Info("i")
	q.Success("s")
	q.Warning("w")
	q.Error("e", WithTitle("Oops"))
	q.Error("e2", WithDuration(time.Second))

	ns := q.Snapshot()
	require.Len(t, ns, 5)

	want := []struct {
		kind Kind
		d    time.Duration
	}{
		{KindInfo, DefaultInfoDuration},
		{KindSuccess, DefaultSuccessDuration},
		{KindWarning, DefaultWarningDuration},
		{KindError, DefaultErrorDuration},
		{KindError, time.Second},
	}
	for i, w := range want {
		assert.Equal(t, w.kind, ns[i].Kind)
		assert.Equal(t, w.d, ns[i].Duration)
		assert.Equal(t, epoch, ns[i].CreatedAt)
	}
	assert.Equal(t, "Oops", ns[3].Title)
}

func TestEnqueue_DefaultsAndUniqueIDs(t *testing.T) {
	q, _ := newQueue(t)

	a := q.Enqueue(Spec{Message: "a"})
	b := q.Enqueue(Spec{Message: "b"})
	require.NotEqual(t, a, b)
	require.Equal(t, KindInfo, q.Snapshot()[0].Kind)
}

func TestSnapshot_IsACopy(t *testing.T) {
	q, _ := newQueue(t)
	q.Info("a", WithAction("x", nil))

	snap := q.Snapshot()
	snap[0].Message = "mutated"
	snap[0].Actions[0].Label = "mutated"

	fresh := q.Snapshot()
	require.Equal(t, "a", fresh[0].Message)
	require.Equal(t, "x", fresh[0].Actions[0].Label)
}

func TestUnsubscribe(t *testing.T) {
	q, _ := newQueue(t)
	calls := 0
	unsub := q.Subscribe(func([]Notification) { calls++ })

	q.Info("a")
	unsub()
	q.Info("b")
	require.Equal(t, 1, calls)
}

func TestClose_IgnoresLaterEnqueue(t *testing.T) {
	clk := clock.NewFake(epoch)
	q := New(clk)

	q.Info("a")
	q.Close()
	require.Equal(t, 0, q.Len())
	require.Equal(t, 0, clk.Pending())

	q.Info("b")
	require.Equal(t, 0, q.Len())
}
