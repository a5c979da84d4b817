// Package notify implements the in-process notification queue.
//
// Notifications are kept in insertion order. Timed notifications are
// removed automatically once their duration elapses; persistent ones stay
// until dismissed. While a timed notification is live, its remaining
// fraction (1 at creation, 0 at expiry) is recomputed on every tick of a
// ticker that only runs while timed notifications exist.
//
// Typical use:
//
//	q := notify.New(clock.System{})
//	defer q.Close()
//	id := q.Success("Saved")
//	q.Dismiss(id)
package notify
