package ui

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/renzon/robottelo/pkg/poll"
)

const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

var invocationPath = regexp.MustCompile(`/job_invocations/(\d+)`)

type JobForm struct {
	// TemplateName selects the job template; the first offered template when empty.
	TemplateName string
	Command      string
	StartAt      *time.Time
}

type JobsPage struct {
	b *Browser
}

// RunFromHost submits the run-job form of a host page and returns the new invocation id.
func (p *JobsPage) RunFromHost(ctx context.Context, hostID int, form JobForm) (int, error) {
	if err := p.b.Open(ctx, fmt.Sprintf("/hosts/%d", hostID)); err != nil {
		return 0, err
	}
	actions := []chromedp.Action{chromedp.WaitVisible("#run-job-form", chromedp.ByQuery)}
	if form.TemplateName != "" {
		var value string
		script := fmt.Sprintf(`(Array.from(document.querySelectorAll("#job_invocation_job_template_id option")).find(o => o.textContent.trim() === %q) || {}).value || ""`, form.TemplateName)
		if err := p.b.Run(ctx, chromedp.Evaluate(script, &value)); err != nil {
			return 0, err
		}
		if value == "" {
			return 0, fmt.Errorf("job template %q is not offered on host %d", form.TemplateName, hostID)
		}
		actions = append(actions, chromedp.SetValue("#job_invocation_job_template_id", value, chromedp.ByQuery))
	}
	actions = append(actions, chromedp.SendKeys("#job_invocation_command", form.Command, chromedp.ByQuery))
	if form.StartAt != nil {
		actions = append(actions, chromedp.SendKeys("#job_invocation_start_at", form.StartAt.UTC().Format(time.RFC3339), chromedp.ByQuery))
	}
	actions = append(actions,
		chromedp.Click("#run-job-submit", chromedp.ByQuery),
		chromedp.WaitVisible("#job-invocation, "+errorAlert, chromedp.ByQuery),
	)
	if err := p.b.Run(ctx, actions...); err != nil {
		return 0, fmt.Errorf("running job on host %d: %w", hostID, err)
	}
	if err := formError(ctx, p.b); err != nil {
		return 0, err
	}
	return p.InvocationID(ctx)
}

// InvocationID parses the invocation id from the current page URL.
func (p *JobsPage) InvocationID(ctx context.Context) (int, error) {
	loc, err := p.b.Location(ctx)
	if err != nil {
		return 0, err
	}
	return ParseInvocationID(loc)
}

func ParseInvocationID(location string) (int, error) {
	m := invocationPath.FindStringSubmatch(location)
	if m == nil {
		return 0, fmt.Errorf("%q is not a job invocation page", location)
	}
	return strconv.Atoi(m[1])
}

// Status reloads the invocation page and returns its status widget text.
func (p *JobsPage) Status(ctx context.Context, id int) (string, error) {
	if err := p.b.Open(ctx, fmt.Sprintf("/job_invocations/%d", id)); err != nil {
		return "", err
	}
	var status string
	if err := p.b.Run(ctx, chromedp.Text("#job-status", &status, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return strings.TrimSpace(status), nil
}

// Output returns the output shown for one host of the current invocation page.
func (p *JobsPage) Output(ctx context.Context, hostID int) (string, error) {
	var out string
	if err := p.b.Run(ctx, chromedp.Text(fmt.Sprintf("#output-%d", hostID), &out, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// WaitForStatus reloads the invocation page until it shows succeeded or failed. A failed
// job returns an OperationFailedError, an exhausted budget a TimedOutError.
func (p *JobsPage) WaitForStatus(ctx context.Context, id int, opts ...poll.Option[string]) (string, error) {
	fetch := func(ctx context.Context) (string, error) {
		return p.Status(ctx, id)
	}
	all := append([]poll.Option[string]{
		poll.WithName[string](fmt.Sprintf("job invocation %d page", id)),
		poll.WithFailure(func(s string) bool { return s == StatusFailed }),
	}, opts...)

	result := poll.Until(ctx, fetch, func(s string) bool { return s == StatusSucceeded }, all...)
	return result.Last, result.AsError()
}
