package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

type request struct {
	ticket *Ticket
	work   Work
	ctx    context.Context
}

// Scheduler runs work on a fixed number of workers. Submissions never block on
// busy workers: they wait in a FIFO queue.
type Scheduler struct {
	workers  int
	submit   chan request
	finished chan struct{}
	closing  chan struct{}
	stopped  chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	running  sync.WaitGroup
	once     sync.Once
}

func New(workers int) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		workers:  workers,
		submit:   make(chan request),
		finished: make(chan struct{}, workers),
		closing:  make(chan struct{}),
		stopped:  make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
	go s.loop()
	return s
}

// Submit queues w under name and returns its ticket. After Close the ticket
// resolves with context.Canceled without running w.
func (s *Scheduler) Submit(name string, w Work) *Ticket {
	ctx, cancel := context.WithCancel(s.ctx)
	t := newTicket(name, cancel)

	select {
	case <-s.ctx.Done():
		t.resolve(Outcome{Err: context.Canceled})
	case s.submit <- request{ticket: t, work: w, ctx: ctx}:
	}
	return t
}

// Go submits work whose outcome the caller records itself, a task row or a job
// target for instance. Failures other than cancellation are logged.
func (s *Scheduler) Go(name string, w Work) {
	t := s.Submit(name, w)
	go func() {
		o := <-t.Done()
		if o.Err != nil && !errors.Is(o.Err, context.Canceled) {
			zap.S().Named("scheduler").Warnw("background work failed", "work", name, "error", o.Err, "took", o.Took)
		}
	}()
}

// Close cancels running work, resolves queued work with context.Canceled and
// waits for the workers to return. It is safe to call more than once.
func (s *Scheduler) Close() {
	s.once.Do(func() {
		s.cancel()
		close(s.closing)
		<-s.stopped
	})
}

func (s *Scheduler) loop() {
	defer close(s.stopped)

	var pending []request
	idle := s.workers
	for {
		for idle > 0 && len(pending) > 0 {
			r := pending[0]
			pending = pending[1:]
			idle--
			s.running.Add(1)
			go s.execute(r)
		}

		select {
		case r := <-s.submit:
			pending = append(pending, r)
		case <-s.finished:
			idle++
		case <-s.closing:
			for _, r := range pending {
				r.ticket.resolve(Outcome{Err: context.Canceled})
			}
			s.running.Wait()
			return
		}
	}
}

func (s *Scheduler) execute(r request) {
	logger := zap.S().Named("scheduler").With("work", r.ticket.name)
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			logger.Errorw("work panicked", "panic", rec)
			r.ticket.resolve(Outcome{Err: fmt.Errorf("work %q panicked: %v", r.ticket.name, rec), Took: time.Since(start)})
		}
		s.running.Done()
		s.finished <- struct{}{}
	}()

	if err := r.ctx.Err(); err != nil {
		r.ticket.resolve(Outcome{Err: err})
		return
	}

	v, err := r.work(r.ctx)
	took := time.Since(start)
	if err != nil {
		logger.Debugw("work finished with error", "took", took, "error", err)
	} else {
		logger.Debugw("work finished", "took", took)
	}
	r.ticket.resolve(Outcome{Value: v, Err: err, Took: took})
}
