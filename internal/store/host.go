package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/renzon/robottelo/internal/models"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
)

type HostStore struct {
	db QueryInterceptor
}

func NewHostStore(db QueryInterceptor) *HostStore {
	return &HostStore{db: db}
}

func (s *HostStore) Create(ctx context.Context, h models.Host) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, queryInsertHost,
		h.Name, h.OrganizationID, h.IP, nullInt(h.ContentViewID), nullInt(h.LifecycleEnvironmentID),
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	for name, value := range h.Parameters {
		if err := s.SetParameter(ctx, id, name, value); err != nil {
			return 0, err
		}
	}
	return id, nil
}

func (s *HostStore) Get(ctx context.Context, id int) (*models.Host, error) {
	hosts, err := s.List(ctx, ByID(id))
	if err != nil {
		return nil, err
	}
	if len(hosts) == 0 {
		return nil, srvErrors.NewResourceNotFoundError("host", id)
	}
	return &hosts[0], nil
}

func (s *HostStore) List(ctx context.Context, opts ...ListOption) ([]models.Host, error) {
	builder := sq.Select("id", "name", "organization_id", "ip", "content_view_id", "lifecycle_environment_id", "created_at").
		From("hosts")
	hosts, err := list(ctx, s.db, builder, opts, func(r rowScanner) (models.Host, error) {
		var h models.Host
		err := r.Scan(&h.ID, &h.Name, &h.OrganizationID, &h.IP, &h.ContentViewID, &h.LifecycleEnvironmentID, &h.CreatedAt)
		return h, err
	})
	if err != nil {
		return nil, err
	}

	for i := range hosts {
		if hosts[i].Parameters, err = s.parameters(ctx, hosts[i].ID); err != nil {
			return nil, err
		}
	}
	return hosts, nil
}

func (s *HostStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	return count(ctx, s.db, "hosts", opts)
}

func (s *HostStore) parameters(ctx context.Context, hostID int) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, queryHostParameters, hostID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	params := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		params[name] = value
	}
	return params, rows.Err()
}

// SetParameter creates or replaces a host parameter.
func (s *HostStore) SetParameter(ctx context.Context, hostID int, name, value string) error {
	if _, err := s.db.ExecContext(ctx, queryDeleteHostParameter, hostID, name); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, queryInsertHostParameter, hostID, name, value)
	return err
}

func (s *HostStore) Delete(ctx context.Context, id int) error {
	if _, err := s.db.ExecContext(ctx, queryDeleteHostParameters, id); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, queryDeleteHost, id)
	if err != nil {
		return err
	}
	return expectAffected(res, "host", id)
}
