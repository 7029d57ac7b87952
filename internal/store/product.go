package store

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/renzon/robottelo/internal/models"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
)

type ProductStore struct {
	db QueryInterceptor
}

func NewProductStore(db QueryInterceptor) *ProductStore {
	return &ProductStore{db: db}
}

func (s *ProductStore) Create(ctx context.Context, p models.Product) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, queryInsertProduct, p.OrganizationID, p.Name, p.Label, p.Description).Scan(&id)
	return id, err
}

func (s *ProductStore) Get(ctx context.Context, id int) (*models.Product, error) {
	products, err := s.List(ctx, ByID(id))
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, srvErrors.NewResourceNotFoundError("product", id)
	}
	return &products[0], nil
}

func (s *ProductStore) List(ctx context.Context, opts ...ListOption) ([]models.Product, error) {
	builder := sq.Select("id", "organization_id", "name", "label", "description").From("products")
	return list(ctx, s.db, builder, opts, func(r rowScanner) (models.Product, error) {
		var p models.Product
		err := r.Scan(&p.ID, &p.OrganizationID, &p.Name, &p.Label, &p.Description)
		return p, err
	})
}

func (s *ProductStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	return count(ctx, s.db, "products", opts)
}

type RepositoryStore struct {
	db QueryInterceptor
}

func NewRepositoryStore(db QueryInterceptor) *RepositoryStore {
	return &RepositoryStore{db: db}
}

func (s *RepositoryStore) Create(ctx context.Context, r models.Repository) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, queryInsertRepository,
		r.ProductID, r.OrganizationID, r.Name, r.Label, string(r.ContentType), r.URL,
	).Scan(&id)
	return id, err
}

func (s *RepositoryStore) Get(ctx context.Context, id int) (*models.Repository, error) {
	repos, err := s.List(ctx, ByID(id))
	if err != nil {
		return nil, err
	}
	if len(repos) == 0 {
		return nil, srvErrors.NewResourceNotFoundError("repository", id)
	}
	return &repos[0], nil
}

func (s *RepositoryStore) List(ctx context.Context, opts ...ListOption) ([]models.Repository, error) {
	builder := sq.Select("id", "product_id", "organization_id", "name", "label", "content_type", "url", "package_count", "last_sync").
		From("repositories")
	return list(ctx, s.db, builder, opts, func(r rowScanner) (models.Repository, error) {
		var (
			repo        models.Repository
			contentType string
		)
		err := r.Scan(&repo.ID, &repo.ProductID, &repo.OrganizationID, &repo.Name, &repo.Label, &contentType, &repo.URL, &repo.PackageCount, &repo.LastSync)
		repo.ContentType = models.RepositoryType(contentType)
		return repo, err
	})
}

func (s *RepositoryStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	return count(ctx, s.db, "repositories", opts)
}

// Synced records a finished sync and replaces the repository's puppet modules.
func (s *RepositoryStore) Synced(ctx context.Context, id int, packages int, modules []models.PuppetModule, at time.Time) error {
	res, err := s.db.ExecContext(ctx, queryUpdateRepositorySync, packages, at, id)
	if err != nil {
		return err
	}
	if err := expectAffected(res, "repository", id); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, queryDeletePuppetModulesByRepository, id); err != nil {
		return err
	}
	for _, m := range modules {
		var moduleID int
		if err := s.db.QueryRowContext(ctx, queryInsertPuppetModule, id, m.Name, m.Author, m.Version).Scan(&moduleID); err != nil {
			return err
		}
	}
	return nil
}

func (s *RepositoryStore) PuppetModules(ctx context.Context, opts ...ListOption) ([]models.PuppetModule, error) {
	builder := sq.Select("id", "repository_id", "name", "author", "version").From("puppet_modules")
	return list(ctx, s.db, builder, opts, func(r rowScanner) (models.PuppetModule, error) {
		var m models.PuppetModule
		err := r.Scan(&m.ID, &m.RepositoryID, &m.Name, &m.Author, &m.Version)
		return m, err
	})
}
