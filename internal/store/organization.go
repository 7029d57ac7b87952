package store

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/renzon/robottelo/internal/models"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
)

type OrganizationStore struct {
	db QueryInterceptor
}

func NewOrganizationStore(db QueryInterceptor) *OrganizationStore {
	return &OrganizationStore{db: db}
}

func (s *OrganizationStore) Create(ctx context.Context, org models.Organization) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, queryInsertOrganization, org.Name, org.Label, org.Description).Scan(&id)
	return id, err
}

func (s *OrganizationStore) Get(ctx context.Context, id int) (*models.Organization, error) {
	orgs, err := s.List(ctx, ByID(id))
	if err != nil {
		return nil, err
	}
	if len(orgs) == 0 {
		return nil, srvErrors.NewResourceNotFoundError("organization", id)
	}
	return &orgs[0], nil
}

func (s *OrganizationStore) List(ctx context.Context, opts ...ListOption) ([]models.Organization, error) {
	builder := sq.Select("id", "name", "label", "description", "created_at").From("organizations")
	return list(ctx, s.db, builder, opts, func(r rowScanner) (models.Organization, error) {
		var o models.Organization
		err := r.Scan(&o.ID, &o.Name, &o.Label, &o.Description, &o.CreatedAt)
		return o, err
	})
}

func (s *OrganizationStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	return count(ctx, s.db, "organizations", opts)
}

func (s *OrganizationStore) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, queryDeleteOrganization, id)
	if err != nil {
		return err
	}
	return expectAffected(res, "organization", id)
}

func expectAffected(res sql.Result, kind string, id any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return srvErrors.NewResourceNotFoundError(kind, id)
	}
	return nil
}

func notFound(err error, kind string, id any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return srvErrors.NewResourceNotFoundError(kind, id)
	}
	return err
}
