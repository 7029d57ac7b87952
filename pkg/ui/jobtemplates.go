package ui

import (
	"context"
	"fmt"
	"net/url"

	"github.com/chromedp/chromedp"
)

type JobTemplateForm struct {
	Name        string
	JobCategory string
	// ProviderType is SSH unless set.
	ProviderType  string
	Template      string
	InputName     string
	InputRequired bool
}

type JobTemplatesPage struct {
	b *Browser
}

func (p *JobTemplatesPage) Create(ctx context.Context, form JobTemplateForm) error {
	if err := p.b.Open(ctx, "/job_templates/new"); err != nil {
		return err
	}
	actions := []chromedp.Action{
		chromedp.WaitVisible("#job-template-form", chromedp.ByQuery),
		chromedp.SendKeys("#job_template_name", form.Name, chromedp.ByQuery),
		chromedp.SendKeys("#job_template_job_category", form.JobCategory, chromedp.ByQuery),
		chromedp.SetValue("#job_template_template", form.Template, chromedp.ByQuery),
	}
	if form.ProviderType != "" {
		actions = append(actions, chromedp.SetValue("#job_template_provider_type", form.ProviderType, chromedp.ByQuery))
	}
	if form.InputName != "" {
		actions = append(actions, chromedp.SendKeys("#job_template_input_name", form.InputName, chromedp.ByQuery))
		if form.InputRequired {
			actions = append(actions, chromedp.Click("#job_template_input_required", chromedp.ByQuery))
		}
	}
	actions = append(actions,
		chromedp.Click("#job-template-submit", chromedp.ByQuery),
		chromedp.WaitVisible(formDone, chromedp.ByQuery),
	)
	if err := p.b.Run(ctx, actions...); err != nil {
		return fmt.Errorf("creating job template %q: %w", form.Name, err)
	}
	return formError(ctx, p.b)
}

// Search returns the template names listed for a search query.
func (p *JobTemplatesPage) Search(ctx context.Context, query string) ([]string, error) {
	if err := p.b.Open(ctx, "/job_templates?search="+url.QueryEscape(query)); err != nil {
		return nil, err
	}
	return p.b.Texts(ctx, "#job-templates td.name")
}

// Clone copies the template named name under newName.
func (p *JobTemplatesPage) Clone(ctx context.Context, name, newName string) error {
	id, err := p.rowID(ctx, name)
	if err != nil {
		return err
	}
	if err := p.b.Open(ctx, fmt.Sprintf("/job_templates/%s/clone", id)); err != nil {
		return err
	}
	err = p.b.Run(ctx,
		chromedp.WaitVisible("#job-template-form", chromedp.ByQuery),
		chromedp.SetValue("#job_template_name", newName, chromedp.ByQuery),
		chromedp.Click("#job-template-submit", chromedp.ByQuery),
		chromedp.WaitVisible(formDone, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("cloning job template %q: %w", name, err)
	}
	return formError(ctx, p.b)
}

// Delete removes the template named name. Locked templates offer no delete action.
func (p *JobTemplatesPage) Delete(ctx context.Context, name string) error {
	id, err := p.rowID(ctx, name)
	if err != nil {
		return err
	}
	form := fmt.Sprintf(`tr.job-template[data-id="%s"] form.delete`, id)
	ok, err := p.b.Exists(ctx, form)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("job template %q cannot be deleted", name)
	}
	err = p.b.Run(ctx,
		chromedp.Submit(form, chromedp.ByQuery),
		chromedp.WaitVisible(formDone, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("deleting job template %q: %w", name, err)
	}
	return formError(ctx, p.b)
}

func (p *JobTemplatesPage) ErrorMessage(ctx context.Context) (string, error) {
	return ErrorMessage(ctx, p.b)
}

// rowID finds the id of the listed template named exactly name.
func (p *JobTemplatesPage) rowID(ctx context.Context, name string) (string, error) {
	if err := p.b.Open(ctx, "/job_templates?search="+url.QueryEscape(fmt.Sprintf("name = %q", name))); err != nil {
		return "", err
	}
	var id string
	script := fmt.Sprintf(`(Array.from(document.querySelectorAll("#job-templates tr.job-template")).find(r => r.querySelector("td.name").textContent.trim() === %q) || {dataset: {}}).dataset.id || ""`, name)
	if err := p.b.Run(ctx, chromedp.Evaluate(script, &id)); err != nil {
		return "", err
	}
	if id == "" {
		return "", fmt.Errorf("job template %q not listed", name)
	}
	return id, nil
}
