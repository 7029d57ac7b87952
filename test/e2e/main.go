package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/renzon/robottelo/internal/config"
	"github.com/renzon/robottelo/internal/logger"
	"github.com/renzon/robottelo/test/e2e/fixtures"
	"github.com/renzon/robottelo/test/e2e/infra"
	"github.com/renzon/robottelo/test/e2e/report"
)

type options struct {
	InfraMode  string
	ConfigPath string
	ServerURL  string
	Browser    string
	ReportPath string
}

var (
	opts         options
	cfg          *config.Configuration
	infraManager infra.InfraManager
	controller   *fixtures.SessionController
	session      *fixtures.SessionContext
	recorder     = report.NewRecorder()
)

func (o options) Validate() error {
	if o.InfraMode != infra.ModeFake && o.InfraMode != infra.ModeRemote {
		return fmt.Errorf("invalid infra-mode %q: must be %q or %q", o.InfraMode, infra.ModeFake, infra.ModeRemote)
	}
	return nil
}

// overrides maps the explicitly set flags onto configuration keys.
func (o options) overrides(flags *pflag.FlagSet) map[string]any {
	out := map[string]any{}
	if flags.Changed("server-url") {
		out["server.url"] = o.ServerURL
	}
	if flags.Changed("browser") {
		out["browser.name"] = o.Browser
	}
	return out
}

// bind registers the suite's flags. They are GNU style: --browser=chrome, not -browser=chrome.
func (o *options) bind(flags *pflag.FlagSet) {
	flags.StringVar(&o.InfraMode, "infra-mode", infra.ModeFake, "Infrastructure mode: 'fake' (in-process product) or 'remote' (externally managed server)")
	flags.StringVarP(&o.ConfigPath, "config", "c", "", "Configuration file (robottelo.yaml or robottelo.toml in the working directory when empty)")
	flags.StringVar(&o.ServerURL, "server-url", "", "URL of the remote server, overrides server.url")
	flags.StringVar(&o.Browser, "browser", config.BrowserNone, "Browser for UI specs: 'none' or 'chrome'")
	flags.StringVar(&o.ReportPath, "report", "", "Write the poll outcomes to this .xlsx file")
}

func main() {
	opts.bind(pflag.CommandLine)
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	pflag.Parse()

	if err := opts.Validate(); err != nil {
		log.Fatalf("failed to validate options: %v", err)
	}

	var err error
	cfg, err = config.Load(config.LoadOptions{ConfigPath: opts.ConfigPath, Overrides: opts.overrides(pflag.CommandLine)})
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	undo, err := logger.Install(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer undo()
	zap.S().Named("e2e").Infow("configuration loaded", "infra_mode", opts.InfraMode, "config", cfg.DebugMap())

	switch opts.InfraMode {
	case infra.ModeFake:
		infraManager = infra.NewFakeInfraManager(cfg)
	case infra.ModeRemote:
		infraManager = infra.NewRemoteInfraManager(cfg.Server.URL)
	}

	RegisterFailHandler(Fail)
	passed := RunSpecs(&testing.T{}, "E2E Suite")

	fmt.Println()
	recorder.Summary(os.Stdout)
	if opts.ReportPath != "" {
		if err := recorder.WriteXLSX(opts.ReportPath); err != nil {
			zap.S().Named("e2e").Errorw("failed to write report", "path", opts.ReportPath, "error", err)
		}
	}

	if !passed {
		undo()
		os.Exit(1)
	}
}
