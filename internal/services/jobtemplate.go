package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/renzon/robottelo/internal/models"
	"github.com/renzon/robottelo/internal/store"
	"github.com/renzon/robottelo/internal/util"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
)

var providerTypes = sets.New(models.DefaultProviderType, "Ansible")

type JobTemplateParams struct {
	Name         string
	JobCategory  string
	ProviderType string
	Description  string
	Template     string
	Snippet      bool
	Inputs       []models.TemplateInput
}

type JobTemplateUpdate struct {
	Name        *string
	JobCategory *string
	Description *string
	Template    *string
}

type JobTemplateService struct {
	store     *store.Store
	serverURL string
}

func NewJobTemplateService(st *store.Store, serverURL string) *JobTemplateService {
	return &JobTemplateService{store: st, serverURL: serverURL}
}

// SeedDefaults creates the locked templates every installation ships with.
func (s *JobTemplateService) SeedDefaults(ctx context.Context) error {
	return s.store.WithTx(ctx, func(tx *store.Store) error {
		if ok, err := nameTaken(ctx, tx.JobTemplate(), models.DefaultJobTemplateName); err != nil || ok {
			return err
		}
		_, err := tx.JobTemplate().Create(ctx, models.JobTemplate{
			Name:         models.DefaultJobTemplateName,
			JobCategory:  models.DefaultJobCategory,
			ProviderType: models.DefaultProviderType,
			Description:  "Run an arbitrary command on the host",
			Template:     `<%= input("command") %>`,
			Locked:       true,
			Inputs: []models.TemplateInput{
				{Name: "command", Required: true, InputType: "user", Description: "Command to run on the host"},
			},
		})
		return err
	})
}

func (s *JobTemplateService) Create(ctx context.Context, params JobTemplateParams) (*models.JobTemplate, error) {
	if params.ProviderType == "" {
		params.ProviderType = models.DefaultProviderType
	}
	errs := validateTemplate(params)
	if err := toValidationError(errs); err != nil {
		return nil, err
	}

	var id int
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		if ok, err := nameTaken(ctx, tx.JobTemplate(), params.Name); err != nil {
			return err
		} else if ok {
			return toValidationError(field.ErrorList{taken(field.NewPath("name"), params.Name)})
		}

		var err error
		id, err = tx.JobTemplate().Create(ctx, models.JobTemplate{
			Name:         params.Name,
			JobCategory:  params.JobCategory,
			ProviderType: params.ProviderType,
			Description:  params.Description,
			Template:     params.Template,
			Snippet:      params.Snippet,
			Inputs:       params.Inputs,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	zap.S().Named("job_template_service").Infow("job template created", "id", id, "name", params.Name)
	return s.store.JobTemplate().Get(ctx, id)
}

func validateTemplate(params JobTemplateParams) field.ErrorList {
	errs := validateName(field.NewPath("name"), params.Name)
	if strings.TrimSpace(params.JobCategory) == "" {
		errs = append(errs, field.Required(field.NewPath("job_category"), "can't be blank"))
	}
	if strings.TrimSpace(params.Template) == "" {
		errs = append(errs, field.Required(field.NewPath("template"), "can't be blank"))
	}
	if !providerTypes.Has(params.ProviderType) {
		errs = append(errs, field.NotSupported(field.NewPath("provider_type"), params.ProviderType, sets.List(providerTypes)))
	}

	names := make([]string, 0, len(params.Inputs))
	for i, in := range params.Inputs {
		p := field.NewPath("template_inputs").Index(i).Child("name")
		if strings.TrimSpace(in.Name) == "" {
			errs = append(errs, field.Required(p, "can't be blank"))
		}
		names = append(names, in.Name)
	}
	for _, name := range util.Dedup(names) {
		errs = append(errs, taken(field.NewPath("template_inputs", "name"), name))
	}
	return errs
}

func (s *JobTemplateService) Get(ctx context.Context, id int) (*models.JobTemplate, error) {
	return s.store.JobTemplate().Get(ctx, id)
}

// List pages through templates, restricted to one job category when set.
func (s *JobTemplateService) List(ctx context.Context, category string, params ListParams) (*ListResult[models.JobTemplate], error) {
	var scope []store.ListOption
	if category != "" {
		scope = append(scope, store.ByJobCategory(category))
	}
	return listPage(ctx, s.store.JobTemplate(), params, scope...)
}

func (s *JobTemplateService) Update(ctx context.Context, id int, update JobTemplateUpdate) (*models.JobTemplate, error) {
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		t, err := tx.JobTemplate().Get(ctx, id)
		if err != nil {
			return err
		}
		if t.Locked {
			return srvErrors.NewValidationError(fmt.Sprintf("job template %q is locked; clone it to make changes", t.Name))
		}

		params := JobTemplateParams{
			Name:         t.Name,
			JobCategory:  t.JobCategory,
			ProviderType: t.ProviderType,
			Description:  t.Description,
			Template:     t.Template,
		}
		if update.Name != nil {
			params.Name = *update.Name
		}
		if update.JobCategory != nil {
			params.JobCategory = *update.JobCategory
		}
		if update.Description != nil {
			params.Description = *update.Description
		}
		if update.Template != nil {
			params.Template = *update.Template
		}

		errs := validateTemplate(params)
		if len(errs) == 0 && params.Name != t.Name {
			if ok, err := nameTaken(ctx, tx.JobTemplate(), params.Name); err != nil {
				return err
			} else if ok {
				errs = append(errs, taken(field.NewPath("name"), params.Name))
			}
		}
		if err := toValidationError(errs); err != nil {
			return err
		}

		t.Name, t.JobCategory, t.Description, t.Template = params.Name, params.JobCategory, params.Description, params.Template
		return tx.JobTemplate().Update(ctx, *t)
	})
	if err != nil {
		return nil, err
	}
	return s.store.JobTemplate().Get(ctx, id)
}

func (s *JobTemplateService) AddInput(ctx context.Context, id int, input models.TemplateInput) (*models.JobTemplate, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, toValidationError(field.ErrorList{field.Required(field.NewPath("name"), "can't be blank")})
	}
	if input.InputType == "" {
		input.InputType = "user"
	}

	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		t, err := tx.JobTemplate().Get(ctx, id)
		if err != nil {
			return err
		}
		if t.Locked {
			return srvErrors.NewValidationError(fmt.Sprintf("job template %q is locked; clone it to make changes", t.Name))
		}
		if _, ok := t.Input(input.Name); ok {
			return toValidationError(field.ErrorList{taken(field.NewPath("name"), input.Name)})
		}
		input.TemplateID = id
		_, err = tx.JobTemplate().AddInput(ctx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.store.JobTemplate().Get(ctx, id)
}

// Clone copies the body and inputs of a template under a new, unlocked name.
func (s *JobTemplateService) Clone(ctx context.Context, id int, name string) (*models.JobTemplate, error) {
	src, err := s.store.JobTemplate().Get(ctx, id)
	if err != nil {
		return nil, err
	}

	inputs := make([]models.TemplateInput, 0, len(src.Inputs))
	for _, in := range src.Inputs {
		in.ID, in.TemplateID = 0, 0
		inputs = append(inputs, in)
	}
	return s.Create(ctx, JobTemplateParams{
		Name:         name,
		JobCategory:  src.JobCategory,
		ProviderType: src.ProviderType,
		Description:  src.Description,
		Template:     src.Template,
		Snippet:      src.Snippet,
		Inputs:       inputs,
	})
}

func (s *JobTemplateService) Delete(ctx context.Context, id int) error {
	return s.store.WithTx(ctx, func(tx *store.Store) error {
		t, err := tx.JobTemplate().Get(ctx, id)
		if err != nil {
			return err
		}
		if t.Locked {
			return srvErrors.NewValidationError(fmt.Sprintf("job template %q is locked and cannot be deleted", t.Name))
		}
		return tx.JobTemplate().Delete(ctx, id)
	})
}

// Preview renders a template for one host (or none) without running it.
// Inputs without a value render as $USER_INPUT[name].
func (s *JobTemplateService) Preview(ctx context.Context, id int, values map[string]string, hostID int) (string, error) {
	t, err := s.store.JobTemplate().Get(ctx, id)
	if err != nil {
		return "", err
	}

	rc := util.RenderContext{
		Declared:  declaredInputs(t),
		Values:    values,
		ServerURL: s.serverURL,
		Preview:   true,
	}
	if hostID > 0 {
		h, err := s.store.Host().Get(ctx, hostID)
		if err != nil {
			return "", err
		}
		rc.HostName = h.Name
	}

	out, err := util.RenderTemplate(t.Template, rc)
	if err != nil {
		return "", srvErrors.NewValidationError(fmt.Sprintf("template: %v", err))
	}
	return out, nil
}

// Diff returns a unified diff between the bodies of two templates.
func (s *JobTemplateService) Diff(ctx context.Context, id, otherID int) (string, error) {
	a, err := s.store.JobTemplate().Get(ctx, id)
	if err != nil {
		return "", err
	}
	b, err := s.store.JobTemplate().Get(ctx, otherID)
	if err != nil {
		return "", err
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a.Template),
		B:        difflib.SplitLines(b.Template),
		FromFile: a.Name,
		ToFile:   b.Name,
		Context:  3,
	})
}

func declaredInputs(t *models.JobTemplate) map[string]bool {
	declared := make(map[string]bool, len(t.Inputs))
	for _, in := range t.Inputs {
		declared[in.Name] = true
	}
	return declared
}
