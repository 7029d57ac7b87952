package satellite

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	v1 "github.com/renzon/robottelo/api/v1"
	"github.com/renzon/robottelo/pkg/poll"
)

const (
	TaskStateStopped = "stopped"

	TaskResultSuccess = "success"
	TaskResultError   = "error"
	TaskResultWarning = "warning"

	JobStatusSucceeded = "succeeded"
	JobStatusFailed    = "failed"
)

// Observation is the outcome of one Wait call.
type Observation struct {
	Operation string
	State     poll.State
	Polls     int
	Elapsed   time.Duration
	// Last is a one-line rendering of the last observed snapshot.
	Last string
	Err  error
	// HostOutputs holds the per-host output of job invocations, keyed by host name.
	HostOutputs map[string][]string
}

func TaskSucceeded(t v1.Task) bool {
	return t.State == TaskStateStopped && t.Result == TaskResultSuccess
}

func TaskFailed(t v1.Task) bool {
	return t.State == TaskStateStopped && (t.Result == TaskResultError || t.Result == TaskResultWarning)
}

func JobSucceeded(j v1.JobInvocation) bool {
	return j.Status == JobStatusSucceeded
}

func JobFailed(j v1.JobInvocation) bool {
	return j.Status == JobStatusFailed
}

// pollOptions returns the client defaults followed by the caller's options.
func pollOptions[T any](c *Client, name string, opts []poll.Option[T]) []poll.Option[T] {
	defaults := []poll.Option[T]{
		poll.WithName[T](name),
		poll.WithClock[T](c.clock),
		poll.WithTimeout[T](c.pollTimeout),
		poll.WithInterval[T](c.pollInterval),
	}
	if c.newBackOff != nil {
		defaults = append(defaults, poll.WithBackOff[T](c.newBackOff()))
	}
	return append(defaults, opts...)
}

func (c *Client) observe(o Observation) {
	for _, fn := range c.observers {
		fn(o)
	}
}

// WaitTask polls a task until it stops. A task stopped with an error or warning result
// returns an OperationFailedError; an exhausted budget returns a TimedOutError.
func (c *Client) WaitTask(ctx context.Context, id string, opts ...poll.Option[v1.Task]) (*v1.Task, error) {
	name := "task " + id
	fetch := func(ctx context.Context) (v1.Task, error) {
		t, err := c.GetTask(ctx, id)
		if err != nil {
			return v1.Task{}, err
		}
		return *t, nil
	}

	all := append([]poll.Option[v1.Task]{poll.WithFailure(TaskFailed)}, pollOptions(c, name, opts)...)
	result := poll.Until(ctx, fetch, TaskSucceeded, all...)
	err := result.AsError()
	if result.State == poll.Failed && len(result.Last.Humanized.Errors) > 0 {
		err = fmt.Errorf("%w: %v", err, result.Last.Humanized.Errors)
	}

	c.observe(Observation{
		Operation: fmt.Sprintf("%s (%s)", name, result.Last.Label),
		State:     result.State,
		Polls:     result.Polls,
		Elapsed:   result.Elapsed,
		Last:      describeTask(result),
		Err:       err,
	})
	if !result.Observed {
		return nil, err
	}
	return &result.Last, err
}

// WaitJobInvocation polls a job invocation until every host finished. On failure or
// timeout the per-host output is collected for diagnostics.
func (c *Client) WaitJobInvocation(ctx context.Context, id int, opts ...poll.Option[v1.JobInvocation]) (*v1.JobInvocation, error) {
	name := fmt.Sprintf("job invocation %d", id)
	fetch := func(ctx context.Context) (v1.JobInvocation, error) {
		j, err := c.GetJobInvocation(ctx, id)
		if err != nil {
			return v1.JobInvocation{}, err
		}
		return *j, nil
	}

	all := append([]poll.Option[v1.JobInvocation]{poll.WithFailure(JobFailed)}, pollOptions(c, name, opts)...)
	result := poll.Until(ctx, fetch, JobSucceeded, all...)
	err := result.AsError()

	o := Observation{
		Operation: fmt.Sprintf("%s (%s)", name, result.Last.Description),
		State:     result.State,
		Polls:     result.Polls,
		Elapsed:   result.Elapsed,
		Err:       err,
	}
	if result.Observed {
		o.Last = fmt.Sprintf("status=%s succeeded=%d failed=%d pending=%d",
			result.Last.Status, result.Last.Succeeded, result.Last.Failed, result.Last.Pending)
		if result.State != poll.Succeeded {
			outputs, oerr := c.HostOutputs(context.WithoutCancel(ctx), &result.Last)
			if oerr == nil {
				o.HostOutputs = outputs
			}
		}
	}
	c.observe(o)

	if !result.Observed {
		return nil, err
	}
	return &result.Last, err
}

func describeTask(r poll.Result[v1.Task]) string {
	if !r.Observed {
		if r.LastErr != nil {
			return "error: " + r.LastErr.Error()
		}
		return ""
	}
	return fmt.Sprintf("state=%s result=%s progress=%.2f", r.Last.State, r.Last.Result, r.Last.Progress)
}

// ExponentialBackOff returns a factory for WithPollBackOff growing from interval to max.
func ExponentialBackOff(interval, maxInterval time.Duration) func() backoff.BackOff {
	return func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = interval
		b.MaxInterval = maxInterval
		return b
	}
}
