package config

import "time"

const (
	BrowserNone   = "none"
	BrowserChrome = "chrome"

	BackOffConstant    = "constant"
	BackOffExponential = "exponential"

	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Configuration holds the settings of the e2e suite and of the fake product.
type Configuration struct {
	Server           Server           `mapstructure:"server"`
	Browser          Browser          `mapstructure:"browser"`
	ComputeResources ComputeResources `mapstructure:"compute_resources"`
	Poll             Poll             `mapstructure:"poll"`
	Fake             Fake             `mapstructure:"fake"`
	LogLevel         string           `mapstructure:"log_level" default:"info" debugmap:"visible"`
	LogFormat        string           `mapstructure:"log_format" default:"console" debugmap:"visible"`
}

// Server is the product under test.
type Server struct {
	URL            string        `mapstructure:"url" default:"https://satellite.example.com" debugmap:"visible"`
	AdminUsername  string        `mapstructure:"admin_username" default:"admin" debugmap:"visible"`
	AdminPassword  string        `mapstructure:"admin_password" default:"changeme" debugmap:"hidden"`
	VerifySSL      bool          `mapstructure:"verify_ssl" default:"false" debugmap:"visible"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" default:"60s" debugmap:"visible"`
}

type Browser struct {
	Name          string `mapstructure:"name" default:"none" debugmap:"visible"`
	Headless      bool   `mapstructure:"headless" default:"true" debugmap:"visible"`
	WindowWidth   int    `mapstructure:"window_width" default:"1920" debugmap:"visible"`
	WindowHeight  int    `mapstructure:"window_height" default:"1080" debugmap:"visible"`
	ScreenshotDir string `mapstructure:"screenshot_dir" default:"" debugmap:"visible"`
}

type ComputeResources struct {
	DefaultSubnet string `mapstructure:"default_subnet" default:"192.168.100.0/24" debugmap:"visible"`
}

// Poll is the default budget of every asynchronous observation.
type Poll struct {
	Timeout     time.Duration `mapstructure:"timeout" default:"5m" debugmap:"visible"`
	Interval    time.Duration `mapstructure:"interval" default:"5s" debugmap:"visible"`
	BackOff     string        `mapstructure:"backoff" default:"constant" debugmap:"visible"`
	MaxInterval time.Duration `mapstructure:"max_interval" default:"30s" debugmap:"visible"`
}

// Fake configures the in-process product used by hermetic runs and cmd/fakesat.
type Fake struct {
	ListenAddress string        `mapstructure:"listen_address" default:"127.0.0.1:3000" debugmap:"visible"`
	DatabasePath  string        `mapstructure:"database_path" default:":memory:" debugmap:"visible"`
	TaskLatency   time.Duration `mapstructure:"task_latency" default:"100ms" debugmap:"visible"`
	JobLatency    time.Duration `mapstructure:"job_latency" default:"100ms" debugmap:"visible"`
	Workers       int           `mapstructure:"workers" default:"4" debugmap:"visible"`
	SessionSecret string        `mapstructure:"session_secret" default:"" debugmap:"hidden"`
}
