package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/renzon/robottelo/internal/models"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
)

type UserStore struct {
	db QueryInterceptor
}

func NewUserStore(db QueryInterceptor) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, u models.User) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, queryInsertUser,
		u.Login, u.Password, u.Firstname, u.Lastname, u.Mail, u.Admin, nullInt(u.DefaultOrganizationID),
	).Scan(&id)
	return id, err
}

func (s *UserStore) Get(ctx context.Context, id int) (*models.User, error) {
	users, err := s.List(ctx, ByID(id))
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, srvErrors.NewResourceNotFoundError("user", id)
	}
	return &users[0], nil
}

func (s *UserStore) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	users, err := s.List(ctx, ByLogin(login))
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, srvErrors.NewResourceNotFoundError("user", login)
	}
	return &users[0], nil
}

func (s *UserStore) List(ctx context.Context, opts ...ListOption) ([]models.User, error) {
	builder := sq.Select("id", "login", "password", "firstname", "lastname", "mail", "admin", "default_organization_id", "created_at").
		From("users")
	return list(ctx, s.db, builder, opts, func(r rowScanner) (models.User, error) {
		var u models.User
		err := r.Scan(&u.ID, &u.Login, &u.Password, &u.Firstname, &u.Lastname, &u.Mail, &u.Admin, &u.DefaultOrganizationID, &u.CreatedAt)
		return u, err
	})
}

func (s *UserStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	return count(ctx, s.db, "users", opts)
}

func (s *UserStore) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, queryDeleteUser, id)
	if err != nil {
		return err
	}
	return expectAffected(res, "user", id)
}
