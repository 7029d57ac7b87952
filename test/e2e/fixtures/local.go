package fixtures

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"k8s.io/apimachinery/pkg/util/sets"

	v1 "github.com/renzon/robottelo/api/v1"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
	"github.com/renzon/robottelo/pkg/satellite"
)

// UniqueName returns prefix followed by a short random suffix.
func UniqueName(prefix string) string {
	return prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}

func RandomPassword() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// LocalOrganization creates an organization owned by one spec. The returned func
// deletes it.
func LocalOrganization(ctx context.Context, c *satellite.Client) (*v1.Organization, func(context.Context) error, error) {
	org, err := c.CreateOrganization(ctx, v1.OrganizationRequest{Name: UniqueName("org")})
	if err != nil {
		return nil, nil, err
	}
	return org, func(ctx context.Context) error {
		return DeleteOrganization(ctx, c, org.ID)
	}, nil
}

// DeleteOrganization removes an organization with its content views. Composite views go
// first since their components cannot be deleted while in use.
func DeleteOrganization(ctx context.Context, c *satellite.Client, orgID int) error {
	views, err := c.ListContentViews(ctx, orgID)
	if err != nil {
		return ignoreNotFound(err)
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Composite && !views[j].Composite
	})

	for _, cv := range views {
		versions, err := c.ListContentViewVersions(ctx, cv.ID)
		if err != nil {
			return err
		}
		envs := sets.New[int]()
		for _, v := range versions {
			envs.Insert(v.EnvironmentIDs...)
		}
		for _, envID := range sets.List(envs) {
			if err := c.RemoveContentViewFromEnvironment(ctx, cv.ID, envID); err != nil {
				return fmt.Errorf("removing content view %q from environment %d: %w", cv.Name, envID, err)
			}
		}
		if err := ignoreNotFound(c.DeleteContentView(ctx, cv.ID)); err != nil {
			return fmt.Errorf("deleting content view %q: %w", cv.Name, err)
		}
	}
	return ignoreNotFound(c.DeleteOrganization(ctx, orgID))
}

func ignoreNotFound(err error) error {
	if srvErrors.IsResourceNotFoundError(err) {
		return nil
	}
	return err
}
