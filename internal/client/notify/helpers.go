package notify

import "time"

// Option adjusts the Spec built by the kind helpers.
type Option func(*Spec)

// WithTitle sets the title.
func WithTitle(title string) Option {
	return func(s *Spec) { s.Title = title }
}

// WithDuration overrides the kind's default duration.
func WithDuration(d time.Duration) Option {
	return func(s *Spec) { s.Duration = d }
}

// Persistent keeps the notification until it is dismissed.
func Persistent() Option {
	return func(s *Spec) { s.Persistent = true }
}

// WithAction appends an action that dismisses the notification when invoked.
func WithAction(label string, do func()) Option {
	return func(s *Spec) { s.Actions = append(s.Actions, Action{Label: label, Do: do}) }
}

// WithStickyAction appends an action that leaves the notification open.
func WithStickyAction(label string, do func()) Option {
	return func(s *Spec) {
		s.Actions = append(s.Actions, Action{Label: label, Do: do, KeepOpen: true})
	}
}

func (q *Queue) Info(message string, opts ...Option) string {
	return q.enqueueKind(KindInfo, DefaultInfoDuration, message, opts)
}

func (q *Queue) Success(message string, opts ...Option) string {
	return q.enqueueKind(KindSuccess, DefaultSuccessDuration, message, opts)
}

func (q *Queue) Warning(message string, opts ...Option) string {
	return q.enqueueKind(KindWarning, DefaultWarningDuration, message, opts)
}

func (q *Queue) Error(message string, opts ...Option) string {
	return q.enqueueKind(KindError, DefaultErrorDuration, message, opts)
}

func (q *Queue) enqueueKind(kind Kind, d time.Duration, message string, opts []Option) string {
	s := Spec{Kind: kind, Message: message, Duration: d}
	for _, o := range opts {
		o(&s)
	}
	return q.Enqueue(s)
}
