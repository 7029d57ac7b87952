// Package server provides the HTTP server of the fake Satellite product.
//
// # Architecture Overview
//
//	┌───────────────────────────────────────────────────────────────┐
//	│                         HTTP Server                           │
//	├───────────────────────────────────────────────────────────────┤
//	│                       Middleware Stack                        │
//	│  ┌─────────────────────────────────────────────────────────┐  │
//	│  │  ginzap.Ginzap (access log, "http" logger)              │  │
//	│  │  ginzap.RecoveryWithZap (panic → 500 with stack)        │  │
//	│  └─────────────────────────────────────────────────────────┘  │
//	├───────────────────────────────────────────────────────────────┤
//	│                        Router groups                          │
//	│  ┌──────────────────┬──────────────────┬───────────────────┐  │
//	│  │ API              │ UI               │ Public            │  │
//	│  │ BasicAuth        │ RequireSession   │ login, logout     │  │
//	│  └──────────────────┴──────────────────┴───────────────────┘  │
//	└───────────────────────────────────────────────────────────────┘
//
// # Server Lifecycle
//
// Listen binds the address first, so the URL is known while the handlers are built:
//
//	l, err := server.Listen(cfg)
//	srv := server.NewServer(cfg, l, userSrv, sessions, func(r server.Routes) {
//	    h.RegisterAPI(r.API)
//	    h.RegisterUI(r.Public, r.UI)
//	})
//
// Start blocks until Stop performs a graceful shutdown:
//
//	go func() { _ = srv.Start(ctx) }()
//	defer srv.Stop(ctx)
//
// # Authentication
//
// API routes take HTTP basic credentials checked by an Authenticator. Failures answer
// 401 with a WWW-Authenticate header and the Katello error body.
//
// UI routes take the _session_id cookie, an HS256 JWT whose subject is the login.
// Tokens expire after the session TTL; a missing, expired or tampered cookie redirects
// to /users/login. Both middlewares store the caller's login under SessionUserKey.
//
// Unknown API paths answer a JSON 404; other unknown paths a plain text 404.
package server
