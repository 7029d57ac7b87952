package services

import (
	"context"

	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/renzon/robottelo/internal/models"
	"github.com/renzon/robottelo/internal/store"
	"github.com/renzon/robottelo/internal/util"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
)

type OrganizationParams struct {
	Name        string
	Label       string
	Description string
}

type EnvironmentParams struct {
	Name        string
	Label       string
	Description string
	// PriorID defaults to the organization's Library.
	PriorID *int
}

type OrganizationService struct {
	store *store.Store
}

func NewOrganizationService(st *store.Store) *OrganizationService {
	return &OrganizationService{store: st}
}

// Create stores an organization together with its Library environment.
func (s *OrganizationService) Create(ctx context.Context, params OrganizationParams) (*models.Organization, error) {
	errs := validateName(field.NewPath("name"), params.Name)
	label := params.Label
	if label == "" {
		label = util.Labelize(params.Name)
	} else if !util.ValidLabel(label) {
		errs = append(errs, field.Invalid(field.NewPath("label"), label, "must only contain letters, digits, dashes and underscores"))
	}
	if err := toValidationError(errs); err != nil {
		return nil, err
	}

	var id int
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		var errs field.ErrorList
		if ok, err := nameTaken(ctx, tx.Organization(), params.Name); err != nil {
			return err
		} else if ok {
			errs = append(errs, taken(field.NewPath("name"), params.Name))
		}
		if n, err := tx.Organization().Count(ctx, store.ByLabel(label)); err != nil {
			return err
		} else if n > 0 {
			errs = append(errs, taken(field.NewPath("label"), label))
		}
		if err := toValidationError(errs); err != nil {
			return err
		}

		var err error
		id, err = tx.Organization().Create(ctx, models.Organization{Name: params.Name, Label: label, Description: params.Description})
		if err != nil {
			return err
		}
		_, err = tx.Environment().Create(ctx, models.LifecycleEnvironment{
			OrganizationID: id,
			Name:           models.LibraryEnvironmentName,
			Label:          models.LibraryEnvironmentName,
			Library:        true,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	zap.S().Named("organization_service").Infow("organization created", "id", id, "name", params.Name)
	return s.store.Organization().Get(ctx, id)
}

func (s *OrganizationService) Get(ctx context.Context, id int) (*models.Organization, error) {
	return s.store.Organization().Get(ctx, id)
}

func (s *OrganizationService) List(ctx context.Context, params ListParams) (*ListResult[models.Organization], error) {
	return listPage(ctx, s.store.Organization(), params)
}

func (s *OrganizationService) Delete(ctx context.Context, id int) error {
	return s.store.WithTx(ctx, func(tx *store.Store) error {
		if _, err := tx.Organization().Get(ctx, id); err != nil {
			return err
		}
		if n, err := tx.ContentView().Count(ctx, store.ByOrganization(id)); err != nil {
			return err
		} else if n > 0 {
			return srvErrors.NewValidationError("organization still owns content views")
		}
		if err := tx.Environment().DeleteByOrganization(ctx, id); err != nil {
			return err
		}
		return tx.Organization().Delete(ctx, id)
	})
}

func (s *OrganizationService) CreateEnvironment(ctx context.Context, orgID int, params EnvironmentParams) (*models.LifecycleEnvironment, error) {
	errs := validateName(field.NewPath("name"), params.Name)
	label := params.Label
	if label == "" {
		label = util.Labelize(params.Name)
	} else if !util.ValidLabel(label) {
		errs = append(errs, field.Invalid(field.NewPath("label"), label, "must only contain letters, digits, dashes and underscores"))
	}
	if params.Name == models.LibraryEnvironmentName {
		errs = append(errs, field.Invalid(field.NewPath("name"), params.Name, "is reserved"))
	}
	if err := toValidationError(errs); err != nil {
		return nil, err
	}

	var id int
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		if _, err := tx.Organization().Get(ctx, orgID); err != nil {
			return err
		}

		var priorID int
		if params.PriorID == nil {
			lib, err := tx.Environment().Library(ctx, orgID)
			if err != nil {
				return err
			}
			priorID = lib.ID
		} else {
			prior, err := tx.Environment().Get(ctx, *params.PriorID)
			if err != nil {
				return err
			}
			if prior.OrganizationID != orgID {
				return toValidationError(field.ErrorList{field.Invalid(field.NewPath("prior_id"), prior.ID, "belongs to another organization")})
			}
			priorID = prior.ID
		}

		if ok, err := nameTaken(ctx, tx.Environment(), params.Name, store.ByOrganization(orgID)); err != nil {
			return err
		} else if ok {
			return toValidationError(field.ErrorList{taken(field.NewPath("name"), params.Name)})
		}

		var err error
		id, err = tx.Environment().Create(ctx, models.LifecycleEnvironment{
			OrganizationID: orgID,
			Name:           params.Name,
			Label:          label,
			Description:    params.Description,
			PriorID:        &priorID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.store.Environment().Get(ctx, id)
}

func (s *OrganizationService) GetEnvironment(ctx context.Context, id int) (*models.LifecycleEnvironment, error) {
	return s.store.Environment().Get(ctx, id)
}

func (s *OrganizationService) ListEnvironments(ctx context.Context, orgID int, params ListParams) (*ListResult[models.LifecycleEnvironment], error) {
	if _, err := s.store.Organization().Get(ctx, orgID); err != nil {
		return nil, err
	}
	return listPage(ctx, s.store.Environment(), params, store.ByOrganization(orgID))
}
