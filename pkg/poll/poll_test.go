package poll_test

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	clocktesting "k8s.io/utils/clock/testing"

	srvErrors "github.com/renzon/robottelo/pkg/errors"
	"github.com/renzon/robottelo/pkg/poll"
)

const interval = 10 * time.Second

// fakeJob reports "running" until doneAt, then its final status.
type fakeJob struct {
	clock  *clocktesting.FakeClock
	doneAt time.Time
	final  string
	reads  int
}

func (j *fakeJob) fetch(_ context.Context) (string, error) {
	j.reads++
	if j.doneAt.IsZero() || j.clock.Now().Before(j.doneAt) {
		return "running", nil
	}
	return j.final, nil
}

func isSucceeded(s string) bool { return s == "succeeded" }
func isFailed(s string) bool    { return s == "failed" }

func drive[T any](ctx context.Context, p *poll.Poller[T], fc *clocktesting.FakeClock) poll.Result[T] {
	for {
		wait, done := p.Poll(ctx)
		if done {
			return p.Result()
		}
		fc.Step(wait)
	}
}

var _ = Describe("Poller", func() {
	var (
		ctx   context.Context
		fc    *clocktesting.FakeClock
		start time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		fc = clocktesting.NewFakeClock(start)
	})

	Context("success", func() {
		// Given a job that succeeds after 3 intervals and a timeout of 10 intervals
		// When we poll it
		// Then it should succeed on the 4th poll
		It("should return Succeeded at or before the 4th poll", func() {
			job := &fakeJob{clock: fc, doneAt: start.Add(3 * interval), final: "succeeded"}
			p := poll.New(job.fetch, isSucceeded,
				poll.WithClock[string](fc),
				poll.WithTimeout[string](10*interval),
				poll.WithInterval[string](interval),
			)

			result := drive(ctx, p, fc)

			Expect(result.State).To(Equal(poll.Succeeded))
			Expect(result.Polls).To(BeNumerically("<=", 4))
			Expect(result.Last).To(Equal("succeeded"))
			Expect(result.Observed).To(BeTrue())
			Expect(result.AsError()).To(BeNil())
		})

		It("should succeed on the first poll without waiting", func() {
			job := &fakeJob{clock: fc, doneAt: start, final: "succeeded"}
			p := poll.New(job.fetch, isSucceeded, poll.WithClock[string](fc), poll.WithInterval[string](interval))

			wait, done := p.Poll(ctx)

			Expect(done).To(BeTrue())
			Expect(wait).To(BeZero())
			Expect(p.State()).To(Equal(poll.Succeeded))
			Expect(fc.Since(start)).To(BeZero())
		})
	})

	Context("failure", func() {
		// Given a job that fails after 2 intervals and a large timeout
		// When we poll it
		// Then it should return Failed immediately without waiting out the timeout
		It("should return Failed as soon as the failure is observed", func() {
			job := &fakeJob{clock: fc, doneAt: start.Add(2 * interval), final: "failed"}
			p := poll.New(job.fetch, isSucceeded,
				poll.WithFailure(isFailed),
				poll.WithClock[string](fc),
				poll.WithTimeout[string](100*interval),
				poll.WithInterval[string](interval),
			)

			result := drive(ctx, p, fc)

			Expect(result.State).To(Equal(poll.Failed))
			Expect(result.Polls).To(Equal(3))
			Expect(fc.Since(start)).To(Equal(2 * interval))
			Expect(srvErrors.IsOperationFailedError(result.AsError())).To(BeTrue())
		})
	})

	Context("timeout", func() {
		// Given a job that never transitions and a timeout of 2 intervals
		// When we poll it
		// Then it should return TimedOut exactly when the timeout elapses
		It("should return TimedOut exactly at the deadline", func() {
			job := &fakeJob{clock: fc}
			p := poll.New(job.fetch, isSucceeded,
				poll.WithFailure(isFailed),
				poll.WithClock[string](fc),
				poll.WithTimeout[string](2*interval),
				poll.WithInterval[string](interval),
			)

			wait, done := p.Poll(ctx)
			Expect(done).To(BeFalse())
			Expect(wait).To(Equal(interval))
			fc.Step(wait)

			wait, done = p.Poll(ctx)
			Expect(done).To(BeFalse())
			Expect(p.State()).To(Equal(poll.Pending))
			fc.Step(wait)

			_, done = p.Poll(ctx)
			Expect(done).To(BeTrue())
			Expect(p.State()).To(Equal(poll.TimedOut))
			Expect(fc.Since(start)).To(Equal(2 * interval))

			err := p.Result().AsError()
			Expect(srvErrors.IsTimedOutError(err)).To(BeTrue())
			Expect(srvErrors.IsOperationFailedError(err)).To(BeFalse())
		})

		It("should clamp the last wait to the remaining budget", func() {
			job := &fakeJob{clock: fc}
			p := poll.New(job.fetch, isSucceeded,
				poll.WithClock[string](fc),
				poll.WithTimeout[string](25*time.Second),
				poll.WithInterval[string](interval),
			)

			var waits []time.Duration
			for {
				wait, done := p.Poll(ctx)
				if done {
					break
				}
				waits = append(waits, wait)
				fc.Step(wait)
			}

			Expect(waits).To(Equal([]time.Duration{interval, interval, 5 * time.Second}))
			Expect(fc.Since(start)).To(Equal(25 * time.Second))
			Expect(p.State()).To(Equal(poll.TimedOut))
		})

		It("should report TimedOut when transient errors exhaust the budget", func() {
			reads := 0
			fetch := func(context.Context) (string, error) {
				reads++
				return "", errors.New("connection refused")
			}
			p := poll.New(fetch, isSucceeded,
				poll.WithClock[string](fc),
				poll.WithTimeout[string](3*interval),
				poll.WithInterval[string](interval),
			)

			result := drive(ctx, p, fc)

			Expect(result.State).To(Equal(poll.TimedOut))
			Expect(result.Observed).To(BeFalse())
			Expect(result.LastErr).To(MatchError("connection refused"))
			Expect(reads).To(Equal(4))
		})

		It("should recover from transient errors", func() {
			reads := 0
			fetch := func(context.Context) (string, error) {
				reads++
				if reads < 3 {
					return "", errors.New("502 bad gateway")
				}
				return "succeeded", nil
			}
			p := poll.New(fetch, isSucceeded,
				poll.WithClock[string](fc),
				poll.WithTimeout[string](10*interval),
				poll.WithInterval[string](interval),
			)

			result := drive(ctx, p, fc)

			Expect(result.State).To(Equal(poll.Succeeded))
			Expect(result.LastErr).To(BeNil())
			Expect(result.Polls).To(Equal(3))
		})
	})

	Context("unauthorized", func() {
		It("should abort on the first authentication failure", func() {
			fetch := func(context.Context) (string, error) {
				return "", srvErrors.NewUnauthorizedError("invalid credentials")
			}
			p := poll.New(fetch, isSucceeded,
				poll.WithClock[string](fc),
				poll.WithTimeout[string](10*interval),
				poll.WithInterval[string](interval),
			)

			result := drive(ctx, p, fc)

			Expect(result.State).To(Equal(poll.Unauthorized))
			Expect(result.Polls).To(Equal(1))
			Expect(srvErrors.IsUnauthorizedError(result.AsError())).To(BeTrue())
		})
	})

	Context("backoff", func() {
		It("should follow the configured backoff", func() {
			b := &backoff.ExponentialBackOff{
				InitialInterval:     time.Second,
				RandomizationFactor: 0,
				Multiplier:          2,
				MaxInterval:         time.Minute,
			}
			job := &fakeJob{clock: fc}
			p := poll.New(job.fetch, isSucceeded,
				poll.WithClock[string](fc),
				poll.WithTimeout[string](10*time.Second),
				poll.WithBackOff[string](b),
			)

			var waits []time.Duration
			for {
				wait, done := p.Poll(ctx)
				if done {
					break
				}
				waits = append(waits, wait)
				fc.Step(wait)
			}

			Expect(waits).To(Equal([]time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 3 * time.Second}))
			Expect(p.State()).To(Equal(poll.TimedOut))
		})
	})

	Context("non-positive waits", func() {
		// Given a backoff that asks for no wait at all
		// When we poll a job that never finishes
		// Then the poller should wait DefaultInterval between reads instead of spinning
		DescribeTable("should fall back to the default interval",
			func(opt poll.Option[string]) {
				job := &fakeJob{clock: fc}
				p := poll.New(job.fetch, isSucceeded,
					poll.WithClock[string](fc),
					poll.WithTimeout[string](3*poll.DefaultInterval),
					opt,
				)

				var waits []time.Duration
				for {
					wait, done := p.Poll(ctx)
					if done {
						break
					}
					waits = append(waits, wait)
					fc.Step(wait)
				}

				Expect(waits).To(Equal([]time.Duration{poll.DefaultInterval, poll.DefaultInterval, poll.DefaultInterval}))
				Expect(job.reads).To(Equal(4))
				Expect(p.State()).To(Equal(poll.TimedOut))
			},
			Entry("zero interval", poll.WithInterval[string](0)),
			Entry("negative interval", poll.WithInterval[string](-time.Second)),
			Entry("zero backoff", poll.WithBackOff[string](&backoff.ZeroBackOff{})),
		)

		It("should bound the reads of Run on a real clock", func() {
			reads := 0
			fetch := func(context.Context) (string, error) {
				reads++
				return "running", nil
			}

			result := poll.Until(ctx, fetch, isSucceeded,
				poll.WithTimeout[string](200*time.Millisecond),
				poll.WithInterval[string](0),
			)

			Expect(result.State).To(Equal(poll.TimedOut))
			Expect(reads).To(Equal(2))
		})
	})

	Context("Run", func() {
		It("should wait on the clock between polls", func() {
			job := &fakeJob{clock: fc, doneAt: start.Add(2 * interval), final: "succeeded"}
			p := poll.New(job.fetch, isSucceeded,
				poll.WithClock[string](fc),
				poll.WithTimeout[string](10*interval),
				poll.WithInterval[string](interval),
			)

			results := make(chan poll.Result[string], 1)
			go func() {
				results <- p.Run(ctx)
			}()

			Eventually(func() int {
				if fc.HasWaiters() {
					fc.Step(interval)
				}
				return len(results)
			}, 2*time.Second, 5*time.Millisecond).Should(Equal(1))

			result := <-results
			Expect(result.State).To(Equal(poll.Succeeded))
			Expect(result.Polls).To(Equal(3))
		})

		It("should end as TimedOut when the context is cancelled", func() {
			job := &fakeJob{clock: fc}
			p := poll.New(job.fetch, isSucceeded,
				poll.WithClock[string](fc),
				poll.WithTimeout[string](10*interval),
				poll.WithInterval[string](interval),
			)

			cctx, cancel := context.WithCancel(ctx)
			results := make(chan poll.Result[string], 1)
			go func() {
				results <- p.Run(cctx)
			}()

			Eventually(fc.HasWaiters, time.Second, 5*time.Millisecond).Should(BeTrue())
			cancel()

			var result poll.Result[string]
			Eventually(results, time.Second).Should(Receive(&result))
			Expect(result.State).To(Equal(poll.TimedOut))
			Expect(result.LastErr).To(MatchError(context.Canceled))
			Expect(result.Polls).To(Equal(1))
		})

		It("should return immediately once terminal", func() {
			job := &fakeJob{clock: fc, doneAt: start, final: "succeeded"}
			result := poll.Until(ctx, job.fetch, isSucceeded, poll.WithClock[string](fc))

			Expect(result.State).To(Equal(poll.Succeeded))
			Expect(job.reads).To(Equal(1))
		})
	})

	Describe("State", func() {
		It("should name every state", func() {
			Expect(poll.Pending.String()).To(Equal("pending"))
			Expect(poll.Succeeded.String()).To(Equal("succeeded"))
			Expect(poll.Failed.String()).To(Equal("failed"))
			Expect(poll.TimedOut.String()).To(Equal("timed_out"))
			Expect(poll.Unauthorized.String()).To(Equal("unauthorized"))
			Expect(poll.Pending.Terminal()).To(BeFalse())
			Expect(poll.TimedOut.Terminal()).To(BeTrue())
		})
	})
})
