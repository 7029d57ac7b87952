package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/creasty/defaults"
	"github.com/spf13/viper"
)

const (
	EnvPrefix         = "ROBOTTELO"
	DefaultConfigName = "robottelo"
)

// LoadOptions controls configuration loading.
type LoadOptions struct {
	// ConfigPath is an explicit file. When empty, robottelo.{yaml,toml} is looked up in
	// the working directory and ignored when absent.
	ConfigPath string
	// Overrides are highest-priority values keyed by dotted path (server.url).
	Overrides map[string]any
}

// NewConfigurationWithDefaults returns a Configuration with every default applied.
func NewConfigurationWithDefaults() *Configuration {
	cfg := &Configuration{}
	if err := defaults.Set(cfg); err != nil {
		panic(fmt.Sprintf("invalid configuration defaults: %v", err))
	}
	return cfg
}

// Load returns the effective configuration after applying precedence:
// defaults < config file < environment (ROBOTTELO_*) < overrides.
func Load(opts LoadOptions) (*Configuration, error) {
	v := viper.New()
	setDefaults(v, NewConfigurationWithDefaults())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, opts.ConfigPath); err != nil {
		return nil, err
	}

	for k, val := range opts.Overrides {
		v.Set(k, val)
	}

	cfg := &Configuration{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("config file %s: %w", path, err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName(DefaultConfigName)
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// setDefaults seeds viper with every key so environment variables can override them.
func setDefaults(v *viper.Viper, def *Configuration) {
	v.SetDefault("server.url", def.Server.URL)
	v.SetDefault("server.admin_username", def.Server.AdminUsername)
	v.SetDefault("server.admin_password", def.Server.AdminPassword)
	v.SetDefault("server.verify_ssl", def.Server.VerifySSL)
	v.SetDefault("server.request_timeout", def.Server.RequestTimeout)

	v.SetDefault("browser.name", def.Browser.Name)
	v.SetDefault("browser.headless", def.Browser.Headless)
	v.SetDefault("browser.window_width", def.Browser.WindowWidth)
	v.SetDefault("browser.window_height", def.Browser.WindowHeight)
	v.SetDefault("browser.screenshot_dir", def.Browser.ScreenshotDir)

	v.SetDefault("compute_resources.default_subnet", def.ComputeResources.DefaultSubnet)

	v.SetDefault("poll.timeout", def.Poll.Timeout)
	v.SetDefault("poll.interval", def.Poll.Interval)
	v.SetDefault("poll.backoff", def.Poll.BackOff)
	v.SetDefault("poll.max_interval", def.Poll.MaxInterval)

	v.SetDefault("fake.listen_address", def.Fake.ListenAddress)
	v.SetDefault("fake.database_path", def.Fake.DatabasePath)
	v.SetDefault("fake.task_latency", def.Fake.TaskLatency)
	v.SetDefault("fake.job_latency", def.Fake.JobLatency)
	v.SetDefault("fake.workers", def.Fake.Workers)
	v.SetDefault("fake.session_secret", def.Fake.SessionSecret)

	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_format", def.LogFormat)
}
