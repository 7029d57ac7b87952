package services

import (
	"context"
	"crypto/subtle"

	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/renzon/robottelo/internal/models"
	"github.com/renzon/robottelo/internal/store"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
)

type UserParams struct {
	Login                 string
	Password              string
	Firstname             string
	Lastname              string
	Mail                  string
	Admin                 bool
	DefaultOrganizationID *int
}

type UserService struct {
	store *store.Store
}

func NewUserService(st *store.Store) *UserService {
	return &UserService{store: st}
}

func (s *UserService) Create(ctx context.Context, params UserParams) (*models.User, error) {
	var errs field.ErrorList
	if params.Login == "" {
		errs = append(errs, field.Required(field.NewPath("login"), "can't be blank"))
	}
	if params.Password == "" {
		errs = append(errs, field.Required(field.NewPath("password"), "can't be blank"))
	}
	if err := toValidationError(errs); err != nil {
		return nil, err
	}

	var id int
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		if n, err := tx.User().Count(ctx, store.ByLogin(params.Login)); err != nil {
			return err
		} else if n > 0 {
			return toValidationError(field.ErrorList{taken(field.NewPath("login"), params.Login)})
		}
		if params.DefaultOrganizationID != nil {
			if _, err := tx.Organization().Get(ctx, *params.DefaultOrganizationID); err != nil {
				return err
			}
		}

		var err error
		id, err = tx.User().Create(ctx, models.User{
			Login:                 params.Login,
			Password:              params.Password,
			Firstname:             params.Firstname,
			Lastname:              params.Lastname,
			Mail:                  params.Mail,
			Admin:                 params.Admin,
			DefaultOrganizationID: params.DefaultOrganizationID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.store.User().Get(ctx, id)
}

func (s *UserService) Get(ctx context.Context, id int) (*models.User, error) {
	return s.store.User().Get(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, id int) error {
	return s.store.User().Delete(ctx, id)
}

// Authenticate checks a login and password pair.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	u, err := s.store.User().GetByLogin(ctx, login)
	if err != nil {
		if srvErrors.IsResourceNotFoundError(err) {
			return nil, srvErrors.NewUnauthorizedError("invalid credentials")
		}
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) != 1 {
		return nil, srvErrors.NewUnauthorizedError("invalid credentials")
	}
	return u, nil
}

// EnsureAdmin creates the administrator account when it does not exist yet.
func (s *UserService) EnsureAdmin(ctx context.Context, login, password string) (*models.User, error) {
	u, err := s.store.User().GetByLogin(ctx, login)
	if err == nil {
		return u, nil
	}
	if !srvErrors.IsResourceNotFoundError(err) {
		return nil, err
	}
	return s.Create(ctx, UserParams{Login: login, Password: password, Firstname: "Admin", Lastname: "User", Admin: true})
}
