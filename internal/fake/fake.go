// Package fake assembles the in-process Satellite product: store, services, handlers
// and HTTP server wired from one configuration.
package fake

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/renzon/robottelo/internal/config"
	"github.com/renzon/robottelo/internal/handlers"
	"github.com/renzon/robottelo/internal/server"
	"github.com/renzon/robottelo/internal/services"
	"github.com/renzon/robottelo/internal/store"
	"github.com/renzon/robottelo/internal/store/migrations"
	"github.com/renzon/robottelo/pkg/scheduler"
)

// Version is reported by the status endpoints.
const Version = "6.15.0-fake"

type Product struct {
	store     *store.Store
	scheduler *scheduler.Scheduler
	server    *server.Server
	url       string

	wg       sync.WaitGroup
	errMu    sync.Mutex
	serveErr error
}

type Option func(o *options)

type options struct {
	clock clock.Clock
}

// WithClock sets the clock of tasks and job execution.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// New opens the database, applies migrations, seeds the admin account and the default
// job templates, and binds the listener. Call Start to serve.
func New(ctx context.Context, cfg *config.Configuration, opts ...Option) (*Product, error) {
	o := options{clock: clock.RealClock{}}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := store.NewDB(cfg.Fake.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database %q: %w", cfg.Fake.DatabasePath, err)
	}
	if err := migrations.Run(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	st := store.NewStore(db)

	listener, err := server.Listen(cfg)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	url := "http://" + listener.Addr().String()

	sched := scheduler.New(cfg.Fake.Workers)
	tasks := services.NewTaskService(st, sched, o.clock, cfg.Fake.TaskLatency)
	srvs := handlers.Services{
		Organizations:  services.NewOrganizationService(st),
		Users:          services.NewUserService(st),
		Tasks:          tasks,
		Content:        services.NewContentService(st, tasks),
		ContentViews:   services.NewContentViewService(st, tasks),
		Hosts:          services.NewHostService(st),
		JobTemplates:   services.NewJobTemplateService(st, url),
		JobInvocations: services.NewJobInvocationService(st, sched, o.clock, cfg.Fake.JobLatency, url),
	}

	cleanup := func() {
		_ = listener.Close()
		sched.Close()
		_ = st.Close()
	}
	if _, err := srvs.Users.EnsureAdmin(ctx, cfg.Server.AdminUsername, cfg.Server.AdminPassword); err != nil {
		cleanup()
		return nil, fmt.Errorf("seeding admin user: %w", err)
	}
	if err := srvs.JobTemplates.SeedDefaults(ctx); err != nil {
		cleanup()
		return nil, fmt.Errorf("seeding job templates: %w", err)
	}

	sessions, err := server.NewSessions(cfg.Fake.SessionSecret, server.DefaultSession)
	if err != nil {
		cleanup()
		return nil, err
	}

	h := handlers.New(srvs, sessions, Version)
	srv := server.NewServer(cfg, listener, srvs.Users, sessions, func(r server.Routes) {
		h.RegisterAPI(r.API)
		h.RegisterUI(r.Public, r.UI)
	})

	return &Product{store: st, scheduler: sched, server: srv, url: url}, nil
}

// Start serves in the background until Stop. Cancelling ctx does not stop the product.
func (p *Product) Start(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.server.Start(ctx); err != nil {
			zap.S().Named("fake").Errorw("server stopped unexpectedly", "error", err)
			p.errMu.Lock()
			p.serveErr = err
			p.errMu.Unlock()
		}
	}()
}

// Stop shuts the server down, cancels pending work and closes the database.
func (p *Product) Stop(ctx context.Context) error {
	err := p.server.Stop(ctx)
	p.wg.Wait()
	p.scheduler.Close()
	if cerr := p.store.Close(); err == nil {
		err = cerr
	}
	p.errMu.Lock()
	defer p.errMu.Unlock()
	if err == nil {
		err = p.serveErr
	}
	return err
}

func (p *Product) URL() string {
	return p.url
}
