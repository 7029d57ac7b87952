package fixtures

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	v1 "github.com/renzon/robottelo/api/v1"
	"github.com/renzon/robottelo/internal/config"
	"github.com/renzon/robottelo/pkg/satellite"
	"github.com/renzon/robottelo/pkg/ui"
)

// SessionContext is what every spec of a run shares. Specs must treat it as read-only.
type SessionContext struct {
	Settings *config.Configuration
	Admin    *satellite.Client
	// Org is the shared organization for specs that do not need their own.
	Org *v1.Organization
	// User is a non-admin account of Org.
	User         *v1.User
	UserPassword string
	// Browser is nil unless a browser is configured.
	Browser *ui.Session
	// Addresses hands out host addresses of the configured default subnet.
	Addresses *AddressPool
}

// SessionController owns the SessionContext: it builds it once before the specs and
// tears it down after them.
type SessionController struct {
	cfg     *config.Configuration
	baseURL string
	opts    []satellite.ClientOption
	session *SessionContext
}

func NewSessionController(cfg *config.Configuration, baseURL string, opts ...satellite.ClientOption) *SessionController {
	return &SessionController{cfg: cfg, baseURL: baseURL, opts: opts}
}

// ClientOptions turns the suite configuration into client options.
func ClientOptions(cfg *config.Configuration) []satellite.ClientOption {
	opts := []satellite.ClientOption{
		satellite.WithBasicAuth(cfg.Server.AdminUsername, cfg.Server.AdminPassword),
		satellite.WithRequestTimeout(cfg.Server.RequestTimeout),
		satellite.WithPollDefaults(cfg.Poll.Timeout, cfg.Poll.Interval),
	}
	if !cfg.Server.VerifySSL {
		opts = append(opts, satellite.WithInsecureTLS())
	}
	if cfg.Poll.BackOff == config.BackOffExponential {
		opts = append(opts, satellite.WithPollBackOff(satellite.ExponentialBackOff(cfg.Poll.Interval, cfg.Poll.MaxInterval)))
	}
	return opts
}

// Setup checks the server is reachable and creates the shared objects. On failure the
// objects created so far are removed.
func (c *SessionController) Setup(ctx context.Context) (_ *SessionContext, err error) {
	logger := zap.S().Named("session")
	admin := satellite.NewClient(c.baseURL, append(ClientOptions(c.cfg), c.opts...)...)

	status, err := admin.Ping(ctx)
	if err != nil {
		return nil, fmt.Errorf("pinging %s: %w", c.baseURL, err)
	}
	logger.Infow("server reachable", "url", c.baseURL, "version", status.Version)

	addresses, err := NewAddressPool(c.cfg.ComputeResources.DefaultSubnet)
	if err != nil {
		return nil, err
	}
	s := &SessionContext{Settings: c.cfg, Admin: admin, Addresses: addresses}
	c.session = s
	defer func() {
		if err != nil {
			_ = c.Teardown(context.WithoutCancel(ctx))
		}
	}()

	s.Org, err = admin.CreateOrganization(ctx, v1.OrganizationRequest{
		Name:        UniqueName("session-org"),
		Description: "shared organization of one suite run",
	})
	if err != nil {
		return nil, fmt.Errorf("creating session organization: %w", err)
	}

	s.UserPassword = RandomPassword()
	s.User, err = admin.CreateUser(ctx, v1.UserRequest{
		Login:                 UniqueName("user"),
		Password:              s.UserPassword,
		Mail:                  "robottelo@example.com",
		DefaultOrganizationID: &s.Org.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("creating session user: %w", err)
	}

	if c.cfg.Browser.Name == config.BrowserChrome {
		b, err := ui.NewBrowser(ctx, c.baseURL, ui.BrowserOptions{
			Headless:      c.cfg.Browser.Headless,
			WindowWidth:   c.cfg.Browser.WindowWidth,
			WindowHeight:  c.cfg.Browser.WindowHeight,
			ScreenshotDir: c.cfg.Browser.ScreenshotDir,
		})
		if err != nil {
			return nil, err
		}
		s.Browser = ui.NewSession(b)
		if err := s.Browser.Login(ctx, c.cfg.Server.AdminUsername, c.cfg.Server.AdminPassword); err != nil {
			return nil, fmt.Errorf("browser login: %w", err)
		}
	}

	logger.Infow("session ready", "organization", s.Org.Name, "user", s.User.Login, "browser", s.Browser != nil)
	return s, nil
}

func (c *SessionController) Context() *SessionContext {
	return c.session
}

// Teardown removes the shared objects. It is safe to call on a partial session.
func (c *SessionController) Teardown(ctx context.Context) error {
	s := c.session
	if s == nil {
		return nil
	}
	c.session = nil

	var errs []error
	if s.Browser != nil {
		s.Browser.Close()
	}
	if s.User != nil {
		errs = append(errs, ignoreNotFound(s.Admin.DeleteUser(ctx, s.User.ID)))
	}
	if s.Org != nil {
		errs = append(errs, DeleteOrganization(ctx, s.Admin, s.Org.ID))
	}
	return errors.Join(errs...)
}

// Deadline bounds one spec step by the configured poll budget plus slack for the calls
// around the wait.
func (s *SessionContext) Deadline(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.Settings.Poll.Timeout+time.Minute)
}
