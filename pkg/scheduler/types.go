package scheduler

import (
	"context"
	"time"
)

// Work is a body the fake product runs off the request path: a publish, promote or
// sync task, or the host runs of a job invocation.
type Work func(ctx context.Context) (any, error)

// Outcome is what a piece of work returned, or why it never ran.
type Outcome struct {
	Name  string
	Value any
	Err   error
	// Took is zero when the work never started.
	Took time.Duration
}

// Ticket tracks submitted work until it resolves.
type Ticket struct {
	name   string
	done   chan Outcome
	cancel context.CancelFunc
}

func newTicket(name string, cancel context.CancelFunc) *Ticket {
	return &Ticket{name: name, done: make(chan Outcome, 1), cancel: cancel}
}

func (t *Ticket) Name() string { return t.name }

// Done delivers the outcome exactly once.
func (t *Ticket) Done() <-chan Outcome { return t.done }

// Cancel cancels the context the work runs with. Queued work still resolves,
// with context.Canceled once it reaches a worker.
func (t *Ticket) Cancel() { t.cancel() }

// Wait blocks until the work resolves or ctx ends. The work keeps running when
// ctx ends first.
func (t *Ticket) Wait(ctx context.Context) (Outcome, error) {
	select {
	case o := <-t.done:
		return o, o.Err
	case <-ctx.Done():
		return Outcome{Name: t.name}, ctx.Err()
	}
}

func (t *Ticket) resolve(o Outcome) {
	o.Name = t.name
	t.done <- o
}
