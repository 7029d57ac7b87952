// Package poll observes an asynchronous remote operation until it reaches a terminal state.
//
// A Poller is an explicit state machine:
//
//	          ┌──────────► Succeeded   success predicate matched
//	          │
//	Pending ──┼──────────► Failed      failure predicate matched
//	          │
//	          ├──────────► Unauthorized  fetch returned an authentication error
//	          │
//	          └──────────► TimedOut    deadline reached (or ctx cancelled)
//
// Each call to Poll issues exactly one fetch. Other fetch errors are transient: the
// poller keeps going and, if they persist, the budget runs out as TimedOut.
//
// TimedOut is an observation failure, not a remote state. The remote job may still
// finish after the poller gives up, which is why it is never reported as Failed.
//
// Waiting is delegated to a backoff.BackOff (constant by default) and clamped so the
// last wait ends exactly at the deadline. All time is read from a k8s.io/utils/clock.Clock;
// tests pass a FakeClock and step it by the wait returned from Poll:
//
//	p := poll.New(fetch, isDone, poll.WithClock[Status](fc), poll.WithTimeout[Status](time.Minute))
//	for {
//	    wait, done := p.Poll(ctx)
//	    if done {
//	        break
//	    }
//	    fc.Step(wait)
//	}
//
// Production callers use Run, which sleeps on the clock's timers between polls.
package poll
