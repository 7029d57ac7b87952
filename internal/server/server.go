package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/renzon/robottelo/api/v1"
	"github.com/renzon/robottelo/internal/config"
)

const readHeaderTimeout = 10 * time.Second

// Routes are the router groups handed to the registration callback.
type Routes struct {
	// API requires HTTP basic auth.
	API gin.IRouter
	// UI requires a session cookie and redirects to the login page otherwise.
	UI gin.IRouter
	// Public needs no credentials.
	Public gin.IRouter
}

type Server struct {
	srv      *http.Server
	listener net.Listener
}

// Listen binds the listen address of cfg.Fake. A ":0" port is resolved here, so callers
// know the server URL before the handlers are built.
func Listen(cfg *config.Configuration) (net.Listener, error) {
	l, err := net.Listen("tcp", cfg.Fake.ListenAddress)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", cfg.Fake.ListenAddress, err)
	}
	return l, nil
}

// NewServer builds the engine serving on listener.
func NewServer(cfg *config.Configuration, listener net.Listener, auth Authenticator, sessions *Sessions, registerHandlerFn func(Routes)) *Server {
	if lvl, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil && lvl.Level() == zap.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		ginzap.Ginzap(zap.L().Named("http"), time.RFC3339, true),
		ginzap.RecoveryWithZap(zap.L().Named("http"), true),
	)
	engine.NoRoute(func(c *gin.Context) {
		if isAPIPath(c.Request.URL.Path) {
			c.JSON(http.StatusNotFound, v1.ErrorResponse{
				DisplayMessage: "route not found",
				Errors:         []string{fmt.Sprintf("%s %s", c.Request.Method, c.Request.URL.Path)},
			})
			return
		}
		c.String(http.StatusNotFound, "page not found")
	})

	registerHandlerFn(Routes{
		API:    engine.Group("/", BasicAuth(auth)),
		UI:     engine.Group("/", sessions.RequireSession()),
		Public: engine.Group("/"),
	})

	return &Server{
		srv: &http.Server{
			Handler:           engine,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		listener: listener,
	}
}

// Start serves until Stop is called. It returns nil after a graceful shutdown.
// Requests carry the values of ctx but not its cancellation: only Stop ends the server.
func (s *Server) Start(ctx context.Context) error {
	base := context.WithoutCancel(ctx)
	s.srv.BaseContext = func(net.Listener) context.Context { return base }
	zap.S().Named("server").Infow("server started", "address", s.Addr())

	if err := s.srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop waits for in-flight requests to finish.
func (s *Server) Stop(ctx context.Context) error {
	zap.S().Named("server").Infow("stopping server", "address", s.Addr())
	return s.srv.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// URL is the base URL clients should use.
func (s *Server) URL() string {
	return "http://" + s.Addr()
}

func isAPIPath(path string) bool {
	for _, prefix := range []string{"/api/", "/katello/api/", "/foreman_tasks/api/"} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
