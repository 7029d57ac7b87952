package ui

import (
	"context"
	"fmt"
	"net/url"

	"github.com/chromedp/chromedp"
)

type OrganizationForm struct {
	Name        string
	Label       string
	Description string
}

type OrganizationsPage struct {
	b *Browser
}

// Create fills the new organization form. A rejected form returns a ValidationError
// carrying the page's error message.
func (p *OrganizationsPage) Create(ctx context.Context, form OrganizationForm) error {
	if err := p.b.Open(ctx, "/organizations/new"); err != nil {
		return err
	}
	actions := []chromedp.Action{
		chromedp.WaitVisible("#organization-form", chromedp.ByQuery),
		chromedp.SendKeys("#organization_name", form.Name, chromedp.ByQuery),
	}
	if form.Label != "" {
		actions = append(actions, chromedp.SendKeys("#organization_label", form.Label, chromedp.ByQuery))
	}
	if form.Description != "" {
		actions = append(actions, chromedp.SendKeys("#organization_description", form.Description, chromedp.ByQuery))
	}
	actions = append(actions,
		chromedp.Click("#organization-submit", chromedp.ByQuery),
		chromedp.WaitVisible(formDone, chromedp.ByQuery),
	)
	if err := p.b.Run(ctx, actions...); err != nil {
		return fmt.Errorf("creating organization %q: %w", form.Name, err)
	}
	return formError(ctx, p.b)
}

// Search returns the names listed for a search query.
func (p *OrganizationsPage) Search(ctx context.Context, query string) ([]string, error) {
	if err := p.b.Open(ctx, "/organizations?search="+url.QueryEscape(query)); err != nil {
		return nil, err
	}
	return p.b.Texts(ctx, "#organizations td.name")
}

type AutoCompleteItem struct {
	Label    string `json:"label"`
	Category string `json:"category"`
}

// AutoCompleteSearch returns the suggestions the search box offers for a partial term.
func (p *OrganizationsPage) AutoCompleteSearch(ctx context.Context, partial string) ([]string, error) {
	if err := p.b.Open(ctx, "/organizations"); err != nil {
		return nil, err
	}
	var (
		endpoint string
		ok       bool
	)
	if err := p.b.Run(ctx, chromedp.AttributeValue("#search", "data-autocomplete", &endpoint, &ok, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("reading autocomplete endpoint: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("the organization search box offers no autocompletion")
	}

	var items []AutoCompleteItem
	if err := p.b.Fetch(ctx, endpoint+"?search="+url.QueryEscape(partial), &items); err != nil {
		return nil, fmt.Errorf("autocomplete %q: %w", partial, err)
	}
	labels := make([]string, 0, len(items))
	for _, it := range items {
		labels = append(labels, it.Label)
	}
	return labels, nil
}
