/*
Package main is the end-to-end suite for Satellite content management and remote execution.

# Package Structure

	test/e2e/
	├── main.go            Entry point: flags, config, InfraManager setup, Ginkgo runner
	├── suite.go           Suite hooks: product start, session setup, screenshots, helpers
	├── contentview.go     Content view specs (create, update, publish, promote, composition)
	├── remoteexecution.go Job template and job invocation specs
	├── organizations.go   Organization specs (API and web UI)
	├── doc.go             This file
	├── infra/
	│   ├── infra.go       InfraManager interface + modes
	│   ├── fake.go        FakeInfraManager (in-process fake product)
	│   └── remote.go      RemoteInfraManager (no-op, externally managed server)
	├── fixtures/
	│   ├── session.go     SessionController + SessionContext (shared org, user, browser)
	│   ├── local.go       Per-spec organizations and cleanup
	│   └── hosts.go       Host addresses from the configured subnet
	└── report/
	    └── report.go      Poll outcome recorder, coloured summary, xlsx workbook

# InfraManager

	type InfraManager interface {
	    StartProduct(ctx) / StopProduct(ctx)
	    BaseURL()
	}

Two implementations, selected via the --infra-mode flag:
  - FakeInfraManager starts the fake product on a random loopback port with an in-memory
    database (default).
  - RemoteInfraManager points the suite at server.url; the server is managed externally.

# Fixtures

The SessionController creates one organization and one user per run, and logs a browser
in when browser.name is chrome. Specs treat the SessionContext as read-only. Anything a
spec mutates lives in its own organization (localOrg), removed by DeferCleanup:

	┌──────────────────┐    BeforeSuite     ┌──────────────────┐
	│ SessionController│──────────────────▶ │ SessionContext   │
	└──────────────────┘                    │  Admin client    │
	                                        │  Org, User       │
	                                        │  Browser (opt.)  │
	                                        └────────┬─────────┘
	                                                 │ every spec
	                                                 ▼
	                                        ┌──────────────────┐
	                                        │ local org        │
	                                        │  views, repos,   │
	                                        │  hosts, envs     │
	                                        └──────────────────┘

# Report

Every task and job invocation the suite waits on is recorded with its final poll state.
The summary is printed after the run; --report also writes it to an .xlsx workbook with
the per-host output of failed or timed out jobs.

# Running

	go run ./test/e2e                                    fake product, API specs only
	go run ./test/e2e --browser=chrome                   fake product, API and UI specs
	go run ./test/e2e --infra-mode=remote \
	    --server-url=https://satellite.example.com -c robottelo.yaml
	go run ./test/e2e --ginkgo.label-filter=contentview  one area only
*/
package main
