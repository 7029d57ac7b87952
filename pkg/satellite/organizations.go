package satellite

import (
	"context"
	"fmt"
	"net/url"

	v1 "github.com/renzon/robottelo/api/v1"
)

// (POST /api/v2/organizations)
func (c *Client) CreateOrganization(ctx context.Context, req v1.OrganizationRequest) (*v1.Organization, error) {
	var org v1.Organization
	if err := c.post(ctx, "/api/v2/organizations", req, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

func (c *Client) GetOrganization(ctx context.Context, id int) (*v1.Organization, error) {
	var org v1.Organization
	if err := c.get(ctx, fmt.Sprintf("/api/v2/organizations/%d", id), nil, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// SearchOrganizations runs a scoped search such as `name = "ACME"`.
func (c *Client) SearchOrganizations(ctx context.Context, search string) ([]v1.Organization, error) {
	var list v1.List[v1.Organization]
	if err := c.get(ctx, "/api/v2/organizations", searchQuery(search), &list); err != nil {
		return nil, err
	}
	return list.Results, nil
}

func (c *Client) DeleteOrganization(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("/api/v2/organizations/%d", id))
}

func (c *Client) CreateUser(ctx context.Context, req v1.UserRequest) (*v1.User, error) {
	var u v1.User
	if err := c.post(ctx, "/api/v2/users", req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) DeleteUser(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("/api/v2/users/%d", id))
}

// CreateLifecycleEnvironment adds an environment to the organization's path. A nil prior
// appends it after Library.
func (c *Client) CreateLifecycleEnvironment(ctx context.Context, req v1.LifecycleEnvironmentRequest) (*v1.LifecycleEnvironment, error) {
	var env v1.LifecycleEnvironment
	if err := c.post(ctx, "/katello/api/v2/environments", req, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// ListLifecycleEnvironments returns every environment of an organization, Library first.
func (c *Client) ListLifecycleEnvironments(ctx context.Context, orgID int) ([]v1.LifecycleEnvironment, error) {
	q := searchQuery("")
	q.Set("organization_id", fmt.Sprint(orgID))
	var list v1.List[v1.LifecycleEnvironment]
	if err := c.get(ctx, "/katello/api/v2/environments", q, &list); err != nil {
		return nil, err
	}
	return list.Results, nil
}

// Library returns the Library environment of an organization.
func (c *Client) Library(ctx context.Context, orgID int) (*v1.LifecycleEnvironment, error) {
	envs, err := c.ListLifecycleEnvironments(ctx, orgID)
	if err != nil {
		return nil, err
	}
	for i := range envs {
		if envs[i].Library {
			return &envs[i], nil
		}
	}
	return nil, fmt.Errorf("organization %d has no Library environment", orgID)
}

// Ping checks that the server answers and the credentials are accepted.
func (c *Client) Ping(ctx context.Context) (*v1.Status, error) {
	var s v1.Status
	if err := c.get(ctx, "/katello/api/v2/ping", url.Values{}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
