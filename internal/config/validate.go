package config

import (
	"net/netip"
	"net/url"

	"go.uber.org/zap/zapcore"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

var (
	browsers  = sets.New(BrowserNone, BrowserChrome)
	backOffs  = sets.New(BackOffConstant, BackOffExponential)
	logFormat = sets.New(LogFormatConsole, LogFormatJSON)
)

// Validate checks the configuration for semantic errors.
func (c *Configuration) Validate() error {
	var errs field.ErrorList

	serverPath := field.NewPath("server")
	if u, err := url.Parse(c.Server.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, field.Invalid(serverPath.Child("url"), c.Server.URL, "must be an absolute URL"))
	}
	if c.Server.AdminUsername == "" {
		errs = append(errs, field.Required(serverPath.Child("admin_username"), ""))
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, field.Invalid(serverPath.Child("request_timeout"), c.Server.RequestTimeout.String(), "must be positive"))
	}

	browserPath := field.NewPath("browser")
	if !browsers.Has(c.Browser.Name) {
		errs = append(errs, field.NotSupported(browserPath.Child("name"), c.Browser.Name, sets.List(browsers)))
	}
	if c.Browser.WindowWidth <= 0 || c.Browser.WindowHeight <= 0 {
		errs = append(errs, field.Invalid(browserPath.Child("window_width"), c.Browser.WindowWidth, "window size must be positive"))
	}

	if _, err := netip.ParsePrefix(c.ComputeResources.DefaultSubnet); err != nil {
		errs = append(errs, field.Invalid(field.NewPath("compute_resources", "default_subnet"), c.ComputeResources.DefaultSubnet, "must be a CIDR prefix"))
	}

	pollPath := field.NewPath("poll")
	if c.Poll.Interval <= 0 {
		errs = append(errs, field.Invalid(pollPath.Child("interval"), c.Poll.Interval.String(), "must be positive"))
	}
	if c.Poll.Timeout < c.Poll.Interval {
		errs = append(errs, field.Invalid(pollPath.Child("timeout"), c.Poll.Timeout.String(), "must not be shorter than the interval"))
	}
	if !backOffs.Has(c.Poll.BackOff) {
		errs = append(errs, field.NotSupported(pollPath.Child("backoff"), c.Poll.BackOff, sets.List(backOffs)))
	}
	if c.Poll.BackOff == BackOffExponential && c.Poll.MaxInterval < c.Poll.Interval {
		errs = append(errs, field.Invalid(pollPath.Child("max_interval"), c.Poll.MaxInterval.String(), "must not be shorter than the interval"))
	}

	fakePath := field.NewPath("fake")
	if c.Fake.Workers < 1 {
		errs = append(errs, field.Invalid(fakePath.Child("workers"), c.Fake.Workers, "must be at least 1"))
	}
	if c.Fake.TaskLatency < 0 {
		errs = append(errs, field.Invalid(fakePath.Child("task_latency"), c.Fake.TaskLatency.String(), "must not be negative"))
	}
	if c.Fake.JobLatency < 0 {
		errs = append(errs, field.Invalid(fakePath.Child("job_latency"), c.Fake.JobLatency.String(), "must not be negative"))
	}

	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, field.Invalid(field.NewPath("log_level"), c.LogLevel, err.Error()))
	}
	if !logFormat.Has(c.LogFormat) {
		errs = append(errs, field.NotSupported(field.NewPath("log_format"), c.LogFormat, sets.List(logFormat)))
	}

	return errs.ToAggregate()
}
