package satellite

import (
	"context"
	"fmt"

	v1 "github.com/renzon/robottelo/api/v1"
)

const contentViewsPath = "/katello/api/v2/content_views"

func contentViewPath(id int) string {
	return fmt.Sprintf("%s/%d", contentViewsPath, id)
}

func versionPath(id int) string {
	return fmt.Sprintf("/katello/api/v2/content_view_versions/%d", id)
}

// CreateContentView creates a view. An empty or oversized name is rejected with a
// ValidationError.
func (c *Client) CreateContentView(ctx context.Context, req v1.ContentViewRequest) (*v1.ContentView, error) {
	var cv v1.ContentView
	if err := c.post(ctx, contentViewsPath, req, &cv); err != nil {
		return nil, err
	}
	return &cv, nil
}

// ListContentViews returns every view of an organization.
func (c *Client) ListContentViews(ctx context.Context, orgID int) ([]v1.ContentView, error) {
	q := searchQuery("")
	q.Set("organization_id", fmt.Sprint(orgID))
	var list v1.List[v1.ContentView]
	if err := c.get(ctx, contentViewsPath, q, &list); err != nil {
		return nil, err
	}
	return list.Results, nil
}

func (c *Client) GetContentView(ctx context.Context, id int) (*v1.ContentView, error) {
	var cv v1.ContentView
	if err := c.get(ctx, contentViewPath(id), nil, &cv); err != nil {
		return nil, err
	}
	return &cv, nil
}

// UpdateContentView changes the fields set in req. The label and the composite flag are
// fixed at creation.
func (c *Client) UpdateContentView(ctx context.Context, id int, req v1.ContentViewRequest) (*v1.ContentView, error) {
	var cv v1.ContentView
	if err := c.put(ctx, contentViewPath(id), req, &cv); err != nil {
		return nil, err
	}
	return &cv, nil
}

func (c *Client) DeleteContentView(ctx context.Context, id int) error {
	return c.delete(ctx, contentViewPath(id))
}

// SetRepositoryIDs replaces the repository set of a non-composite view.
func (c *Client) SetRepositoryIDs(ctx context.Context, id int, repoIDs ...int) (*v1.ContentView, error) {
	ids := append([]int{}, repoIDs...)
	return c.UpdateContentView(ctx, id, v1.ContentViewRequest{RepositoryIDs: &ids})
}

// SetComponentIDs replaces the component versions of a composite view.
func (c *Client) SetComponentIDs(ctx context.Context, id int, versionIDs ...int) (*v1.ContentView, error) {
	ids := append([]int{}, versionIDs...)
	return c.UpdateContentView(ctx, id, v1.ContentViewRequest{ComponentIDs: &ids})
}

// CopyContentView duplicates a view under a new name.
func (c *Client) CopyContentView(ctx context.Context, id int, name string) (*v1.ContentView, error) {
	var cv v1.ContentView
	if err := c.post(ctx, contentViewPath(id)+"/copy", v1.CopyRequest{Name: name}, &cv); err != nil {
		return nil, err
	}
	return &cv, nil
}

// PublishContentView starts a publish and returns its task.
func (c *Client) PublishContentView(ctx context.Context, id int, description string) (*v1.Task, error) {
	var t v1.Task
	if err := c.post(ctx, contentViewPath(id)+"/publish", v1.PublishRequest{Description: description}, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// PublishAndWait publishes a view, waits for the task and returns the new version.
func (c *Client) PublishAndWait(ctx context.Context, id int, description string) (*v1.ContentViewVersion, error) {
	task, err := c.PublishContentView(ctx, id, description)
	if err != nil {
		return nil, err
	}
	if _, err := c.WaitTask(ctx, task.ID); err != nil {
		return nil, err
	}

	cv, err := c.GetContentView(ctx, id)
	if err != nil {
		return nil, err
	}
	var latest *v1.ContentViewVersion
	for i := range cv.Versions {
		if latest == nil || cv.Versions[i].Major > latest.Major {
			latest = &cv.Versions[i]
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("content view %d has no version after publish", id)
	}
	return latest, nil
}

func (c *Client) RemoveContentViewFromEnvironment(ctx context.Context, id, envID int) error {
	return c.delete(ctx, fmt.Sprintf("%s/environments/%d", contentViewPath(id), envID))
}

// AvailablePuppetModules lists the modules of the organization's puppet repositories
// that can be added to the view.
func (c *Client) AvailablePuppetModules(ctx context.Context, id int) ([]v1.PuppetModule, error) {
	var list v1.List[v1.PuppetModule]
	if err := c.get(ctx, contentViewPath(id)+"/available_puppet_modules", nil, &list); err != nil {
		return nil, err
	}
	return list.Results, nil
}

// AddPuppetModule adds a module by id, or by author and name. Adding the same module
// twice returns a DuplicateReferenceError.
func (c *Client) AddPuppetModule(ctx context.Context, id int, req v1.PuppetModuleRequest) (*v1.ContentViewPuppetModule, error) {
	var m v1.ContentViewPuppetModule
	if err := c.post(ctx, contentViewPath(id)+"/content_view_puppet_modules", req, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) ListContentViewVersions(ctx context.Context, id int) ([]v1.ContentViewVersion, error) {
	var list v1.List[v1.ContentViewVersion]
	if err := c.get(ctx, contentViewPath(id)+"/content_view_versions", searchQuery(""), &list); err != nil {
		return nil, err
	}
	return list.Results, nil
}

func (c *Client) GetContentViewVersion(ctx context.Context, id int) (*v1.ContentViewVersion, error) {
	var v v1.ContentViewVersion
	if err := c.get(ctx, versionPath(id), nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// PromoteContentViewVersion starts promoting a version to an environment. Promoting to
// an environment the version is already in returns a DuplicateReferenceError.
func (c *Client) PromoteContentViewVersion(ctx context.Context, id, envID int) (*v1.Task, error) {
	var t v1.Task
	if err := c.post(ctx, versionPath(id)+"/promote", v1.PromoteRequest{EnvironmentID: envID}, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// PromoteAndWait promotes a version and returns it once the task succeeded.
func (c *Client) PromoteAndWait(ctx context.Context, id, envID int) (*v1.ContentViewVersion, error) {
	task, err := c.PromoteContentViewVersion(ctx, id, envID)
	if err != nil {
		return nil, err
	}
	if _, err := c.WaitTask(ctx, task.ID); err != nil {
		return nil, err
	}
	return c.GetContentViewVersion(ctx, id)
}

func (c *Client) DeleteContentViewVersion(ctx context.Context, id int) error {
	return c.delete(ctx, versionPath(id))
}
