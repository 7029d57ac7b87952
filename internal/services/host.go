package services

import (
	"context"
	"net"
	"strings"

	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/renzon/robottelo/internal/models"
	"github.com/renzon/robottelo/internal/store"
)

type HostParams struct {
	Name                   string
	OrganizationID         int
	IP                     string
	ContentViewID          *int
	LifecycleEnvironmentID *int
	Parameters             map[string]string
}

type HostService struct {
	store *store.Store
}

func NewHostService(st *store.Store) *HostService {
	return &HostService{store: st}
}

func (s *HostService) Create(ctx context.Context, params HostParams) (*models.Host, error) {
	errs := validateName(field.NewPath("name"), params.Name)
	if params.IP != "" && net.ParseIP(params.IP) == nil {
		errs = append(errs, field.Invalid(field.NewPath("ip"), params.IP, "must be a valid IP address"))
	}
	for name := range params.Parameters {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, field.Required(field.NewPath("host_parameters_attributes", "name"), "can't be blank"))
		}
	}
	if err := toValidationError(errs); err != nil {
		return nil, err
	}

	name := strings.ToLower(params.Name)
	var id int
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		if _, err := tx.Organization().Get(ctx, params.OrganizationID); err != nil {
			return err
		}
		if ok, err := nameTaken(ctx, tx.Host(), name); err != nil {
			return err
		} else if ok {
			return toValidationError(field.ErrorList{taken(field.NewPath("name"), name)})
		}

		var errs field.ErrorList
		if params.LifecycleEnvironmentID != nil {
			env, err := tx.Environment().Get(ctx, *params.LifecycleEnvironmentID)
			if err != nil {
				return err
			}
			if env.OrganizationID != params.OrganizationID {
				errs = append(errs, field.Invalid(field.NewPath("lifecycle_environment_id"), env.ID, "belongs to another organization"))
			}
		}
		if params.ContentViewID != nil {
			cv, err := tx.ContentView().Get(ctx, *params.ContentViewID)
			if err != nil {
				return err
			}
			if cv.OrganizationID != params.OrganizationID {
				errs = append(errs, field.Invalid(field.NewPath("content_view_id"), cv.ID, "belongs to another organization"))
			}
		}
		if err := toValidationError(errs); err != nil {
			return err
		}

		var err error
		id, err = tx.Host().Create(ctx, models.Host{
			Name:                   name,
			OrganizationID:         params.OrganizationID,
			IP:                     params.IP,
			ContentViewID:          params.ContentViewID,
			LifecycleEnvironmentID: params.LifecycleEnvironmentID,
			Parameters:             params.Parameters,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	zap.S().Named("host_service").Infow("host created", "id", id, "name", name)
	return s.store.Host().Get(ctx, id)
}

func (s *HostService) Get(ctx context.Context, id int) (*models.Host, error) {
	return s.store.Host().Get(ctx, id)
}

func (s *HostService) List(ctx context.Context, orgID int, params ListParams) (*ListResult[models.Host], error) {
	var scope []store.ListOption
	if orgID > 0 {
		scope = append(scope, store.ByOrganization(orgID))
	}
	return listPage(ctx, s.store.Host(), params, scope...)
}

// SetParameter creates or overwrites one host parameter.
func (s *HostService) SetParameter(ctx context.Context, id int, name, value string) (*models.Host, error) {
	if strings.TrimSpace(name) == "" {
		return nil, toValidationError(field.ErrorList{field.Required(field.NewPath("parameter", "name"), "can't be blank")})
	}
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		if _, err := tx.Host().Get(ctx, id); err != nil {
			return err
		}
		return tx.Host().SetParameter(ctx, id, name, value)
	})
	if err != nil {
		return nil, err
	}
	return s.store.Host().Get(ctx, id)
}

func (s *HostService) Delete(ctx context.Context, id int) error {
	return s.store.Host().Delete(ctx, id)
}
