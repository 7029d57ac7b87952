// Package config defines the settings shared by the e2e suite and the fake product.
//
// # Configuration Structure
//
//	Configuration
//	├── Server            - product under test and admin credentials
//	├── Browser           - UI automation (none or chrome)
//	├── ComputeResources  - subnet the host fixtures take addresses from
//	├── Poll              - default budget of asynchronous observations
//	├── Fake              - in-process product settings
//	├── LogFormat         - console or json
//	└── LogLevel          - zap level
//
// # Server Configuration
//
//	┌────────────────┬─────────────────────────────────┬────────────────────────────────┐
//	│ Field          │ Default                         │ Description                    │
//	├────────────────┼─────────────────────────────────┼────────────────────────────────┤
//	│ URL            │ "https://satellite.example.com" │ Base URL of API and UI         │
//	│ AdminUsername  │ "admin"                         │ Basic auth user                │
//	│ AdminPassword  │ "changeme"                      │ Basic auth password (hidden)   │
//	│ VerifySSL      │ false                           │ Verify the server certificate  │
//	│ RequestTimeout │ 60s                             │ Per-request HTTP timeout       │
//	└────────────────┴─────────────────────────────────┴────────────────────────────────┘
//
// # Poll Configuration
//
//	┌─────────────┬────────────┬──────────────────────────────────────────┐
//	│ Field       │ Default    │ Description                              │
//	├─────────────┼────────────┼──────────────────────────────────────────┤
//	│ Timeout     │ 5m         │ Budget before an observation is TimedOut │
//	│ Interval    │ 5s         │ Wait between polls                       │
//	│ BackOff     │ "constant" │ constant or exponential                  │
//	│ MaxInterval │ 30s        │ Cap of the exponential wait              │
//	└─────────────┴────────────┴──────────────────────────────────────────┘
//
// # Fake Configuration
//
//	┌───────────────┬──────────────────┬─────────────────────────────────────────┐
//	│ Field         │ Default          │ Description                             │
//	├───────────────┼──────────────────┼─────────────────────────────────────────┤
//	│ ListenAddress │ "127.0.0.1:3000" │ HTTP listen address                     │
//	│ DatabasePath  │ ":memory:"       │ DuckDB file                             │
//	│ TaskLatency   │ 100ms            │ Delay before a task runs                │
//	│ JobLatency    │ 100ms            │ Delay before a job runs on each host    │
//	│ Workers       │ 4                │ Scheduler workers                       │
//	│ SessionSecret │ ""               │ UI cookie signing key (random if empty) │
//	└───────────────┴──────────────────┴─────────────────────────────────────────┘
//
// # Loading
//
// Defaults come from creasty/defaults struct tags. Load layers them with viper:
//
//	defaults < robottelo.yaml (or --config) < ROBOTTELO_* environment < overrides
//
// Environment keys replace dots with underscores: ROBOTTELO_SERVER_URL sets server.url.
//
//	cfg, err := config.Load(config.LoadOptions{
//	    ConfigPath: "robottelo.yaml",
//	    Overrides:  map[string]any{"browser.name": "chrome"},
//	})
//
// Validate reports every problem at once as a field.ErrorList aggregate.
//
// # Debug Logging
//
// Fields are tagged debugmap:"visible" or debugmap:"hidden". DebugMap masks hidden ones:
//
//	zap.S().Infow("configuration loaded", "config", cfg.DebugMap())
package config
