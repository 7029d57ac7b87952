package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/renzon/robottelo/internal/models"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
)

type ContentViewStore struct {
	db QueryInterceptor
}

func NewContentViewStore(db QueryInterceptor) *ContentViewStore {
	return &ContentViewStore{db: db}
}

func (s *ContentViewStore) Create(ctx context.Context, cv models.ContentView) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, queryInsertContentView,
		cv.OrganizationID, cv.Name, cv.Label, cv.Description, cv.Composite,
	).Scan(&id)
	return id, err
}

func (s *ContentViewStore) Get(ctx context.Context, id int) (*models.ContentView, error) {
	views, err := s.List(ctx, ByID(id))
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, srvErrors.NewResourceNotFoundError("content view", id)
	}
	return &views[0], nil
}

// List returns content views with their repository, component and puppet module memberships.
func (s *ContentViewStore) List(ctx context.Context, opts ...ListOption) ([]models.ContentView, error) {
	builder := sq.Select("id", "organization_id", "name", "label", "description", "composite", "next_version", "created_at", "updated_at").
		From("content_views")
	views, err := list(ctx, s.db, builder, opts, func(r rowScanner) (models.ContentView, error) {
		var cv models.ContentView
		err := r.Scan(&cv.ID, &cv.OrganizationID, &cv.Name, &cv.Label, &cv.Description, &cv.Composite, &cv.NextVersion, &cv.CreatedAt, &cv.UpdatedAt)
		return cv, err
	})
	if err != nil {
		return nil, err
	}

	for i := range views {
		if err := s.loadMembership(ctx, &views[i]); err != nil {
			return nil, err
		}
	}
	return views, nil
}

func (s *ContentViewStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	return count(ctx, s.db, "content_views", opts)
}

func (s *ContentViewStore) loadMembership(ctx context.Context, cv *models.ContentView) error {
	var err error
	if cv.RepositoryIDs, err = ints(ctx, s.db, queryContentViewRepositories, cv.ID); err != nil {
		return err
	}
	if cv.ComponentIDs, err = ints(ctx, s.db, queryContentViewComponents, cv.ID); err != nil {
		return err
	}

	rows, err := s.db.QueryContext(ctx, queryContentViewPuppetModules, cv.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	cv.PuppetModules = nil
	for rows.Next() {
		var m models.ContentViewPuppetModule
		if err := rows.Scan(&m.ID, &m.ContentViewID, &m.PuppetModuleID, &m.Name, &m.Author); err != nil {
			return err
		}
		cv.PuppetModules = append(cv.PuppetModules, m)
	}
	return rows.Err()
}

// Update persists name and description. Label and composite never change after creation.
func (s *ContentViewStore) Update(ctx context.Context, cv models.ContentView) error {
	res, err := s.db.ExecContext(ctx, queryUpdateContentView, cv.Name, cv.Description, cv.ID)
	if err != nil {
		return err
	}
	return expectAffected(res, "content view", cv.ID)
}

func (s *ContentViewStore) SetRepositories(ctx context.Context, id int, repositoryIDs []int) error {
	if _, err := s.db.ExecContext(ctx, queryDeleteContentViewRepositories, id); err != nil {
		return err
	}
	for i, repoID := range repositoryIDs {
		if _, err := s.db.ExecContext(ctx, queryInsertContentViewRepository, id, repoID, i); err != nil {
			return err
		}
	}
	return nil
}

func (s *ContentViewStore) SetComponents(ctx context.Context, id int, versionIDs []int) error {
	if _, err := s.db.ExecContext(ctx, queryDeleteContentViewComponents, id); err != nil {
		return err
	}
	for i, versionID := range versionIDs {
		if _, err := s.db.ExecContext(ctx, queryInsertContentViewComponent, id, versionID, i); err != nil {
			return err
		}
	}
	return nil
}

func (s *ContentViewStore) AddPuppetModule(ctx context.Context, m models.ContentViewPuppetModule) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, queryInsertContentViewPuppetModule, m.ContentViewID, m.PuppetModuleID, m.Name, m.Author).Scan(&id)
	return id, err
}

// NextVersion reserves the next major version number of a content view.
func (s *ContentViewStore) NextVersion(ctx context.Context, id int) (int, error) {
	var next int
	if err := s.db.QueryRowContext(ctx, queryNextVersion, id).Scan(&next); err != nil {
		return 0, notFound(err, "content view", id)
	}
	if _, err := s.db.ExecContext(ctx, queryBumpNextVersion, next+1, id); err != nil {
		return 0, err
	}
	return next, nil
}

// CompositesUsing lists the composite content views holding versionID as a component.
func (s *ContentViewStore) CompositesUsing(ctx context.Context, versionID int) ([]int, error) {
	return ints(ctx, s.db, queryCompositesUsingVersion, versionID)
}

func (s *ContentViewStore) Delete(ctx context.Context, id int) error {
	for _, q := range []string{queryDeleteContentViewRepositories, queryDeleteContentViewComponents, queryDeleteContentViewPuppetModules} {
		if _, err := s.db.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	res, err := s.db.ExecContext(ctx, queryDeleteContentView, id)
	if err != nil {
		return err
	}
	return expectAffected(res, "content view", id)
}
