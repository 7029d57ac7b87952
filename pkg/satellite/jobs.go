package satellite

import (
	"context"
	"fmt"
	"net/url"

	v1 "github.com/renzon/robottelo/api/v1"
)

const (
	// ConnectByIPParameter makes remote execution reach a host by address instead of name.
	ConnectByIPParameter = "remote_execution_connect_by_ip"

	DefaultJobTemplate = "Run Command - SSH Default"
)

func (c *Client) CreateHost(ctx context.Context, req v1.HostRequest) (*v1.Host, error) {
	var h v1.Host
	if err := c.post(ctx, "/api/v2/hosts", req, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *Client) GetHost(ctx context.Context, id int) (*v1.Host, error) {
	var h v1.Host
	if err := c.get(ctx, fmt.Sprintf("/api/v2/hosts/%d", id), nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *Client) DeleteHost(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("/api/v2/hosts/%d", id))
}

func (c *Client) SetHostParameter(ctx context.Context, id int, name, value string) (*v1.Host, error) {
	var h v1.Host
	if err := c.post(ctx, fmt.Sprintf("/api/v2/hosts/%d/parameters", id), v1.HostParameter{Name: name, Value: value}, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func templatePath(id int) string {
	return fmt.Sprintf("/api/v2/job_templates/%d", id)
}

func (c *Client) CreateJobTemplate(ctx context.Context, req v1.JobTemplateRequest) (*v1.JobTemplate, error) {
	var t v1.JobTemplate
	if err := c.post(ctx, "/api/v2/job_templates", req, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) GetJobTemplate(ctx context.Context, id int) (*v1.JobTemplate, error) {
	var t v1.JobTemplate
	if err := c.get(ctx, templatePath(id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) SearchJobTemplates(ctx context.Context, search string) ([]v1.JobTemplate, error) {
	var list v1.List[v1.JobTemplate]
	if err := c.get(ctx, "/api/v2/job_templates", searchQuery(search), &list); err != nil {
		return nil, err
	}
	return list.Results, nil
}

// JobTemplateByName returns the template with exactly this name.
func (c *Client) JobTemplateByName(ctx context.Context, name string) (*v1.JobTemplate, error) {
	templates, err := c.SearchJobTemplates(ctx, fmt.Sprintf("name = %q", name))
	if err != nil {
		return nil, err
	}
	for i := range templates {
		if templates[i].Name == name {
			return &templates[i], nil
		}
	}
	return nil, fmt.Errorf("job template %q not found", name)
}

// CloneJobTemplate copies the body and inputs of a template under a new name.
func (c *Client) CloneJobTemplate(ctx context.Context, id int, name string) (*v1.JobTemplate, error) {
	var t v1.JobTemplate
	if err := c.post(ctx, templatePath(id)+"/clone", v1.CopyRequest{Name: name}, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteJobTemplate removes an unlocked template.
func (c *Client) DeleteJobTemplate(ctx context.Context, id int) error {
	return c.delete(ctx, templatePath(id))
}

// PreviewJobTemplate renders a template with the given inputs.
func (c *Client) PreviewJobTemplate(ctx context.Context, id int, req v1.PreviewRequest) (string, error) {
	var out string
	if err := c.post(ctx, templatePath(id)+"/preview", req, &out); err != nil {
		return "", err
	}
	return out, nil
}

// DiffJobTemplates returns a unified diff from one template body to another.
func (c *Client) DiffJobTemplates(ctx context.Context, id, otherID int) (string, error) {
	var out string
	q := url.Values{"other_id": {fmt.Sprint(otherID)}}
	if err := c.get(ctx, templatePath(id)+"/diff", q, &out); err != nil {
		return "", err
	}
	return out, nil
}

// RunJob creates a job invocation. Without a start time the job is queued immediately.
func (c *Client) RunJob(ctx context.Context, req v1.JobInvocationRequest) (*v1.JobInvocation, error) {
	var j v1.JobInvocation
	if err := c.post(ctx, "/api/v2/job_invocations", req, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

func (c *Client) GetJobInvocation(ctx context.Context, id int) (*v1.JobInvocation, error) {
	var j v1.JobInvocation
	if err := c.get(ctx, fmt.Sprintf("/api/v2/job_invocations/%d", id), nil, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

func (c *Client) JobInvocationOutput(ctx context.Context, id, hostID int) (*v1.JobOutput, error) {
	var o v1.JobOutput
	if err := c.get(ctx, fmt.Sprintf("/api/v2/job_invocations/%d/hosts/%d", id, hostID), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// HostOutputs collects the output lines of every targeted host, keyed by host name.
func (c *Client) HostOutputs(ctx context.Context, inv *v1.JobInvocation) (map[string][]string, error) {
	outputs := make(map[string][]string, len(inv.Targeting.HostIDs))
	for _, hostID := range inv.Targeting.HostIDs {
		o, err := c.JobInvocationOutput(ctx, inv.ID, hostID)
		if err != nil {
			return outputs, err
		}
		name := o.HostName
		if name == "" {
			name = fmt.Sprint(hostID)
		}
		lines := make([]string, 0, len(o.Output))
		for _, l := range o.Output {
			lines = append(lines, l.Output)
		}
		outputs[name] = lines
	}
	return outputs, nil
}

// RunJobAndWait runs a job and waits until every host finished.
func (c *Client) RunJobAndWait(ctx context.Context, req v1.JobInvocationRequest) (*v1.JobInvocation, error) {
	j, err := c.RunJob(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.WaitJobInvocation(ctx, j.ID)
}
