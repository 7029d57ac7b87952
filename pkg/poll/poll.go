package poll

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"k8s.io/utils/clock"

	srvErrors "github.com/renzon/robottelo/pkg/errors"
)

const (
	DefaultTimeout  = 5 * time.Minute
	DefaultInterval = 5 * time.Second
)

type State int

const (
	Pending State = iota
	Succeeded
	Failed
	TimedOut
	Unauthorized
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case TimedOut:
		return "timed_out"
	case Unauthorized:
		return "unauthorized"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) Terminal() bool {
	return s != Pending
}

// FetchFunc reads the current status of the observed operation. Each call is one
// network read against the remote system.
type FetchFunc[T any] func(ctx context.Context) (T, error)

type Predicate[T any] func(T) bool

// Result is what an observer knows once polling stops.
type Result[T any] struct {
	State State
	// Last is the most recent successfully fetched snapshot; only meaningful when Observed is true.
	Last     T
	Observed bool
	Polls    int
	Elapsed  time.Duration
	LastErr  error
	Name     string
}

// AsError converts a non-successful outcome into a typed error. It returns nil for Succeeded.
func (r Result[T]) AsError() error {
	last := "nothing"
	if r.Observed {
		last = fmt.Sprintf("%+v", r.Last)
	}
	switch r.State {
	case Succeeded:
		return nil
	case Failed:
		return srvErrors.NewOperationFailedError(r.Name, last)
	case Unauthorized:
		if r.LastErr != nil {
			return r.LastErr
		}
		return srvErrors.NewUnauthorizedError(r.Name)
	case TimedOut:
		return srvErrors.NewTimedOutError(r.Name, r.Elapsed, last)
	default:
		return fmt.Errorf("%s: still pending after %d polls", r.Name, r.Polls)
	}
}

// Poller is an explicit state machine Pending → Succeeded | Failed | TimedOut | Unauthorized.
// Time is read from the configured clock only, so a fake clock drives it deterministically.
type Poller[T any] struct {
	name         string
	fetch        FetchFunc[T]
	succeeded    Predicate[T]
	failed       Predicate[T]
	unauthorized func(error) bool
	timeout      time.Duration
	backOff      backoff.BackOff
	clock        clock.Clock

	state    State
	started  bool
	start    time.Time
	deadline time.Time
	last     T
	observed bool
	polls    int
	lastErr  error
	elapsed  time.Duration
}

type Option[T any] func(p *Poller[T])

func WithFailure[T any](failed Predicate[T]) Option[T] {
	return func(p *Poller[T]) {
		p.failed = failed
	}
}

func WithTimeout[T any](timeout time.Duration) Option[T] {
	return func(p *Poller[T]) {
		p.timeout = timeout
	}
}

// WithInterval polls at a fixed interval. A non-positive interval means DefaultInterval.
func WithInterval[T any](interval time.Duration) Option[T] {
	return func(p *Poller[T]) {
		p.backOff = backoff.NewConstantBackOff(interval)
	}
}

// WithBackOff sets the wait strategy between polls. A backoff.Stop wait means
// "sleep until the deadline".
func WithBackOff[T any](b backoff.BackOff) Option[T] {
	return func(p *Poller[T]) {
		p.backOff = b
	}
}

func WithClock[T any](c clock.Clock) Option[T] {
	return func(p *Poller[T]) {
		p.clock = c
	}
}

func WithName[T any](name string) Option[T] {
	return func(p *Poller[T]) {
		p.name = name
	}
}

// WithUnauthorized overrides how fetch errors are recognised as authentication failures.
func WithUnauthorized[T any](fn func(error) bool) Option[T] {
	return func(p *Poller[T]) {
		p.unauthorized = fn
	}
}

func New[T any](fetch FetchFunc[T], succeeded Predicate[T], opts ...Option[T]) *Poller[T] {
	p := &Poller[T]{
		name:         "operation",
		fetch:        fetch,
		succeeded:    succeeded,
		unauthorized: srvErrors.IsUnauthorizedError,
		timeout:      DefaultTimeout,
		backOff:      backoff.NewConstantBackOff(DefaultInterval),
		clock:        clock.RealClock{},
		state:        Pending,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Poll performs exactly one status read and advances the state machine.
// It returns how long to wait before the next call, or done once a terminal state is reached.
// The returned wait is positive and never extends past the deadline. A backoff yielding a
// non-positive wait falls back to DefaultInterval.
func (p *Poller[T]) Poll(ctx context.Context) (time.Duration, bool) {
	if p.state.Terminal() {
		return 0, true
	}

	if !p.started {
		p.started = true
		p.start = p.clock.Now()
		p.deadline = p.start.Add(p.timeout)
		p.backOff.Reset()
	}

	p.polls++
	v, err := p.fetch(ctx)
	p.elapsed = p.clock.Since(p.start)

	if err != nil {
		p.lastErr = err
		if p.unauthorized != nil && p.unauthorized(err) {
			return p.finish(Unauthorized)
		}
		zap.S().Named("poll").Debugw("transient error while polling", "name", p.name, "poll", p.polls, "error", err)
	} else {
		p.last = v
		p.observed = true
		p.lastErr = nil
		if p.succeeded(v) {
			return p.finish(Succeeded)
		}
		if p.failed != nil && p.failed(v) {
			return p.finish(Failed)
		}
	}

	remaining := p.deadline.Sub(p.clock.Now())
	if remaining <= 0 {
		return p.finish(TimedOut)
	}

	wait := p.backOff.NextBackOff()
	switch {
	case wait == backoff.Stop:
		wait = remaining
	case wait <= 0:
		// never poll back to back
		wait = DefaultInterval
	}
	return min(wait, remaining), false
}

// Run polls until a terminal state is reached. Cancelling ctx ends the observation as TimedOut.
func (p *Poller[T]) Run(ctx context.Context) Result[T] {
	for {
		wait, done := p.Poll(ctx)
		if done {
			return p.Result()
		}

		timer := p.clock.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.lastErr = ctx.Err()
			p.elapsed = p.clock.Since(p.start)
			p.finish(TimedOut)
			return p.Result()
		case <-timer.C():
		}
	}
}

func (p *Poller[T]) State() State {
	return p.state
}

func (p *Poller[T]) Result() Result[T] {
	return Result[T]{
		State:    p.state,
		Last:     p.last,
		Observed: p.observed,
		Polls:    p.polls,
		Elapsed:  p.elapsed,
		LastErr:  p.lastErr,
		Name:     p.name,
	}
}

func (p *Poller[T]) finish(s State) (time.Duration, bool) {
	p.state = s
	zap.S().Named("poll").Debugw("polling finished", "name", p.name, "state", s.String(), "polls", p.polls, "elapsed", p.elapsed)
	return 0, true
}

// Until builds a poller and runs it to completion.
func Until[T any](ctx context.Context, fetch FetchFunc[T], succeeded Predicate[T], opts ...Option[T]) Result[T] {
	return New(fetch, succeeded, opts...).Run(ctx)
}
