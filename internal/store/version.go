package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/renzon/robottelo/internal/models"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
)

const (
	contentKindRepository   = "repository"
	contentKindComponent    = "component"
	contentKindPuppetModule = "puppet_module"
)

type VersionStore struct {
	db QueryInterceptor
}

func NewVersionStore(db QueryInterceptor) *VersionStore {
	return &VersionStore{db: db}
}

// Create stores a published version together with the snapshot of its contents and environments.
func (s *VersionStore) Create(ctx context.Context, v models.ContentViewVersion) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, queryInsertVersion, v.ContentViewID, v.Major, v.Minor, v.Description, v.PackageCount).Scan(&id)
	if err != nil {
		return 0, err
	}

	contents := map[string][]int{
		contentKindRepository:   v.RepositoryIDs,
		contentKindComponent:    v.ComponentIDs,
		contentKindPuppetModule: v.PuppetModuleIDs,
	}
	for kind, ids := range contents {
		for _, ref := range ids {
			if _, err := s.db.ExecContext(ctx, queryInsertVersionContent, id, kind, ref); err != nil {
				return 0, err
			}
		}
	}

	for _, envID := range v.EnvironmentIDs {
		if err := s.AddEnvironment(ctx, id, envID); err != nil {
			return 0, err
		}
	}
	return id, nil
}

func (s *VersionStore) Get(ctx context.Context, id int) (*models.ContentViewVersion, error) {
	versions, err := s.List(ctx, ByID(id))
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, srvErrors.NewResourceNotFoundError("content view version", id)
	}
	return &versions[0], nil
}

func (s *VersionStore) List(ctx context.Context, opts ...ListOption) ([]models.ContentViewVersion, error) {
	builder := sq.Select("id", "content_view_id", "major", "minor", "description", "package_count", "created_at").
		From("content_view_versions")
	versions, err := list(ctx, s.db, builder, opts, func(r rowScanner) (models.ContentViewVersion, error) {
		var v models.ContentViewVersion
		err := r.Scan(&v.ID, &v.ContentViewID, &v.Major, &v.Minor, &v.Description, &v.PackageCount, &v.CreatedAt)
		return v, err
	})
	if err != nil {
		return nil, err
	}

	for i := range versions {
		v := &versions[i]
		if v.EnvironmentIDs, err = ints(ctx, s.db, queryVersionEnvironments, v.ID); err != nil {
			return nil, err
		}
		if v.RepositoryIDs, err = ints(ctx, s.db, queryVersionContents, v.ID, contentKindRepository); err != nil {
			return nil, err
		}
		if v.ComponentIDs, err = ints(ctx, s.db, queryVersionContents, v.ID, contentKindComponent); err != nil {
			return nil, err
		}
		if v.PuppetModuleIDs, err = ints(ctx, s.db, queryVersionContents, v.ID, contentKindPuppetModule); err != nil {
			return nil, err
		}
	}
	return versions, nil
}

func (s *VersionStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	return count(ctx, s.db, "content_view_versions", opts)
}

func (s *VersionStore) AddEnvironment(ctx context.Context, versionID, envID int) error {
	_, err := s.db.ExecContext(ctx, queryInsertVersionEnvironment, versionID, envID)
	return err
}

func (s *VersionStore) RemoveEnvironment(ctx context.Context, versionID, envID int) error {
	_, err := s.db.ExecContext(ctx, queryDeleteVersionEnvironment, versionID, envID)
	return err
}

func (s *VersionStore) Delete(ctx context.Context, id int) error {
	for _, q := range []string{queryDeleteVersionEnvironments, queryDeleteVersionContents} {
		if _, err := s.db.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	res, err := s.db.ExecContext(ctx, queryDeleteVersion, id)
	if err != nil {
		return err
	}
	return expectAffected(res, "content view version", id)
}
