package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/renzon/robottelo/internal/models"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
)

type EnvironmentStore struct {
	db QueryInterceptor
}

func NewEnvironmentStore(db QueryInterceptor) *EnvironmentStore {
	return &EnvironmentStore{db: db}
}

func (s *EnvironmentStore) Create(ctx context.Context, env models.LifecycleEnvironment) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, queryInsertEnvironment,
		env.OrganizationID, env.Name, env.Label, env.Description, nullInt(env.PriorID), env.Library,
	).Scan(&id)
	return id, err
}

func (s *EnvironmentStore) Get(ctx context.Context, id int) (*models.LifecycleEnvironment, error) {
	envs, err := s.List(ctx, ByID(id))
	if err != nil {
		return nil, err
	}
	if len(envs) == 0 {
		return nil, srvErrors.NewResourceNotFoundError("lifecycle environment", id)
	}
	return &envs[0], nil
}

// Library returns the root environment of an organization.
func (s *EnvironmentStore) Library(ctx context.Context, orgID int) (*models.LifecycleEnvironment, error) {
	envs, err := s.List(ctx, ByOrganization(orgID), func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"library": true})
	})
	if err != nil {
		return nil, err
	}
	if len(envs) == 0 {
		return nil, srvErrors.NewResourceNotFoundError("library of organization", orgID)
	}
	return &envs[0], nil
}

func (s *EnvironmentStore) List(ctx context.Context, opts ...ListOption) ([]models.LifecycleEnvironment, error) {
	builder := sq.Select("id", "organization_id", "name", "label", "description", "prior_id", "library", "created_at").
		From("lifecycle_environments")
	return list(ctx, s.db, builder, opts, func(r rowScanner) (models.LifecycleEnvironment, error) {
		var e models.LifecycleEnvironment
		err := r.Scan(&e.ID, &e.OrganizationID, &e.Name, &e.Label, &e.Description, &e.PriorID, &e.Library, &e.CreatedAt)
		return e, err
	})
}

func (s *EnvironmentStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	return count(ctx, s.db, "lifecycle_environments", opts)
}

func (s *EnvironmentStore) DeleteByOrganization(ctx context.Context, orgID int) error {
	_, err := s.db.ExecContext(ctx, queryDeleteEnvironmentsByOrganization, orgID)
	return err
}
