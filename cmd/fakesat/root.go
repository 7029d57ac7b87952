package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/renzon/robottelo/internal/config"
	"github.com/renzon/robottelo/internal/fake"
	"github.com/renzon/robottelo/internal/logger"
)

const shutdownTimeout = 10 * time.Second

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"listen-address": "fake.listen_address",
	"database":       "fake.database_path",
	"task-latency":   "fake.task_latency",
	"job-latency":    "fake.job_latency",
	"workers":        "fake.workers",
	"session-secret": "fake.session_secret",
	"admin-username": "server.admin_username",
	"admin-password": "server.admin_password",
	"log-level":      "log_level",
	"log-format":     "log_format",
}

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "fakesat",
		Short:         "In-process Satellite stand-in for hermetic end-to-end runs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCommand(), newVersionCommand())
	return root
}

func newRunCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Serve the REST API and the web UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(config.LoadOptions{
				ConfigPath: configPath,
				Overrides:  overrides(cmd.Flags()),
			})
			if err != nil {
				return err
			}

			undo, err := logger.Install(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			defer undo()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}

	flags := cmd.Flags()
	def := config.NewConfigurationWithDefaults()
	flags.StringVarP(&configPath, "config", "c", "", "configuration file (yaml or toml)")
	flags.String("listen-address", def.Fake.ListenAddress, "address to listen on")
	flags.String("database", def.Fake.DatabasePath, `duckdb database path, ":memory:" for a throwaway one`)
	flags.Duration("task-latency", def.Fake.TaskLatency, "delay before a task starts running")
	flags.Duration("job-latency", def.Fake.JobLatency, "delay before a job starts on its hosts")
	flags.Int("workers", def.Fake.Workers, "number of background workers")
	flags.String("session-secret", "", "secret signing UI sessions (random when empty)")
	flags.String("admin-username", def.Server.AdminUsername, "login of the seeded administrator")
	flags.String("admin-password", def.Server.AdminPassword, "password of the seeded administrator")
	flags.String("log-level", def.LogLevel, "debug, info, warn or error")
	flags.String("log-format", def.LogFormat, "console or json")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the product version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), fake.Version)
		},
	}
}

// overrides returns the flags set explicitly on the command line.
func overrides(flags *pflag.FlagSet) map[string]any {
	out := map[string]any{}
	flags.Visit(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			out[key] = f.Value.String()
		}
	})
	return out
}

func run(ctx context.Context, cfg *config.Configuration) error {
	zap.S().Named("fakesat").Infow("starting", "config", cfg.DebugMap())

	p, err := fake.New(ctx, cfg)
	if err != nil {
		return err
	}
	p.Start(ctx)
	zap.S().Named("fakesat").Infow("serving", "url", p.URL())

	<-ctx.Done()

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return p.Stop(sctx)
}
