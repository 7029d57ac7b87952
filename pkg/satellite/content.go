package satellite

import (
	"context"
	"fmt"

	v1 "github.com/renzon/robottelo/api/v1"
)

const (
	RepositoryTypeYum    = "yum"
	RepositoryTypePuppet = "puppet"
)

func (c *Client) CreateProduct(ctx context.Context, req v1.ProductRequest) (*v1.Product, error) {
	var p v1.Product
	if err := c.post(ctx, "/katello/api/v2/products", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreateRepository(ctx context.Context, req v1.RepositoryRequest) (*v1.Repository, error) {
	var r v1.Repository
	if err := c.post(ctx, "/katello/api/v2/repositories", req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) GetRepository(ctx context.Context, id int) (*v1.Repository, error) {
	var r v1.Repository
	if err := c.get(ctx, fmt.Sprintf("/katello/api/v2/repositories/%d", id), nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// SyncRepository starts a sync and returns its task.
func (c *Client) SyncRepository(ctx context.Context, id int) (*v1.Task, error) {
	var t v1.Task
	if err := c.post(ctx, fmt.Sprintf("/katello/api/v2/repositories/%d/sync", id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// SyncAndWait syncs a repository and returns it once the task succeeded.
func (c *Client) SyncAndWait(ctx context.Context, id int) (*v1.Repository, error) {
	task, err := c.SyncRepository(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := c.WaitTask(ctx, task.ID); err != nil {
		return nil, err
	}
	return c.GetRepository(ctx, id)
}

func (c *Client) GetTask(ctx context.Context, id string) (*v1.Task, error) {
	var t v1.Task
	if err := c.get(ctx, "/foreman_tasks/api/tasks/"+id, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}
