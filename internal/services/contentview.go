package services

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/renzon/robottelo/internal/models"
	"github.com/renzon/robottelo/internal/store"
	"github.com/renzon/robottelo/internal/util"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
)

const (
	TaskLabelPublish = "Actions::Katello::ContentView::Publish"
	TaskLabelPromote = "Actions::Katello::ContentView::Promote"

	ResourceContentView        = "content_view"
	ResourceContentViewVersion = "content_view_version"
)

var reservedLabels = sets.New("Default_Organization_View", models.LibraryEnvironmentName)

type ContentViewParams struct {
	Name          string
	Label         string
	Description   string
	Composite     bool
	RepositoryIDs []int
	ComponentIDs  []int
}

// ContentViewUpdate only changes the fields that are set.
type ContentViewUpdate struct {
	Name          *string
	Label         *string
	Description   *string
	RepositoryIDs *[]int
	ComponentIDs  *[]int
}

// PuppetModuleParams selects a module by id, or by author and name.
type PuppetModuleParams struct {
	ID     int
	Author string
	Name   string
}

type PromoteParams struct {
	EnvironmentID int
	// Force skips the check that the prior environment already holds the version.
	Force bool
}

// ContentViewDetails is a content view with the records its memberships point to.
type ContentViewDetails struct {
	models.ContentView
	Versions     []models.ContentViewVersion
	Components   []models.ContentViewVersion
	Repositories []models.Repository
}

type ContentViewService struct {
	store *store.Store
	tasks *TaskService
}

func NewContentViewService(st *store.Store, tasks *TaskService) *ContentViewService {
	return &ContentViewService{store: st, tasks: tasks}
}

func (s *ContentViewService) Create(ctx context.Context, orgID int, params ContentViewParams) (*ContentViewDetails, error) {
	errs := validateName(field.NewPath("name"), params.Name)
	label := params.Label
	if label == "" {
		label = util.Labelize(params.Name)
	} else {
		errs = append(errs, validateLabel(field.NewPath("label"), label)...)
	}
	if err := toValidationError(errs); err != nil {
		return nil, err
	}

	var id int
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		if _, err := tx.Organization().Get(ctx, orgID); err != nil {
			return err
		}

		var errs field.ErrorList
		if ok, err := nameTaken(ctx, tx.ContentView(), params.Name, store.ByOrganization(orgID)); err != nil {
			return err
		} else if ok {
			errs = append(errs, taken(field.NewPath("name"), params.Name))
		}
		if n, err := tx.ContentView().Count(ctx, store.ByOrganization(orgID), store.ByLabel(label)); err != nil {
			return err
		} else if n > 0 {
			errs = append(errs, taken(field.NewPath("label"), label))
		}
		if err := toValidationError(errs); err != nil {
			return err
		}

		var err error
		id, err = tx.ContentView().Create(ctx, models.ContentView{
			OrganizationID: orgID,
			Name:           params.Name,
			Label:          label,
			Description:    params.Description,
			Composite:      params.Composite,
		})
		if err != nil {
			return err
		}

		cv, err := tx.ContentView().Get(ctx, id)
		if err != nil {
			return err
		}
		if len(params.RepositoryIDs) > 0 {
			if err := setRepositories(ctx, tx, cv, params.RepositoryIDs); err != nil {
				return err
			}
		}
		if len(params.ComponentIDs) > 0 {
			if err := setComponents(ctx, tx, cv, params.ComponentIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.S().Named("content_view_service").Infow("content view created", "id", id, "name", params.Name, "composite", params.Composite)
	return s.Get(ctx, id)
}

func (s *ContentViewService) Get(ctx context.Context, id int) (*ContentViewDetails, error) {
	cv, err := s.store.ContentView().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return details(ctx, s.store, *cv)
}

// List pages through content views, restricted to one organization when orgID is set.
func (s *ContentViewService) List(ctx context.Context, orgID int, params ListParams) (*ListResult[ContentViewDetails], error) {
	var scope []store.ListOption
	if orgID > 0 {
		scope = append(scope, store.ByOrganization(orgID))
	}
	page, err := listPage(ctx, s.store.ContentView(), params, scope...)
	if err != nil {
		return nil, err
	}

	result := &ListResult[ContentViewDetails]{
		Total:    page.Total,
		Subtotal: page.Subtotal,
		Page:     page.Page,
		PerPage:  page.PerPage,
		Search:   page.Search,
	}
	for _, cv := range page.Items {
		d, err := details(ctx, s.store, cv)
		if err != nil {
			return nil, err
		}
		result.Items = append(result.Items, *d)
	}
	return result, nil
}

func (s *ContentViewService) Update(ctx context.Context, id int, update ContentViewUpdate) (*ContentViewDetails, error) {
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		cv, err := tx.ContentView().Get(ctx, id)
		if err != nil {
			return err
		}

		var errs field.ErrorList
		if update.Label != nil && *update.Label != cv.Label {
			errs = append(errs, field.Invalid(field.NewPath("label"), *update.Label, "field is immutable"))
		}
		if update.Name != nil && *update.Name != cv.Name {
			errs = append(errs, validateName(field.NewPath("name"), *update.Name)...)
			if len(errs) == 0 {
				if ok, err := nameTaken(ctx, tx.ContentView(), *update.Name, store.ByOrganization(cv.OrganizationID)); err != nil {
					return err
				} else if ok {
					errs = append(errs, taken(field.NewPath("name"), *update.Name))
				}
			}
			cv.Name = *update.Name
		}
		if update.Description != nil {
			cv.Description = *update.Description
		}
		if err := toValidationError(errs); err != nil {
			return err
		}

		if err := tx.ContentView().Update(ctx, *cv); err != nil {
			return err
		}
		if update.RepositoryIDs != nil {
			if err := setRepositories(ctx, tx, cv, *update.RepositoryIDs); err != nil {
				return err
			}
		}
		if update.ComponentIDs != nil {
			if err := setComponents(ctx, tx, cv, *update.ComponentIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// SetRepositories replaces the repositories of a non-composite view.
func (s *ContentViewService) SetRepositories(ctx context.Context, id int, repositoryIDs []int) (*ContentViewDetails, error) {
	return s.Update(ctx, id, ContentViewUpdate{RepositoryIDs: &repositoryIDs})
}

// SetComponents replaces the component versions of a composite view.
func (s *ContentViewService) SetComponents(ctx context.Context, id int, versionIDs []int) (*ContentViewDetails, error) {
	return s.Update(ctx, id, ContentViewUpdate{ComponentIDs: &versionIDs})
}

// Delete removes a view and its versions. Versions still in an environment block it.
func (s *ContentViewService) Delete(ctx context.Context, id int) error {
	return s.store.WithTx(ctx, func(tx *store.Store) error {
		if _, err := tx.ContentView().Get(ctx, id); err != nil {
			return err
		}
		versions, err := tx.Version().List(ctx, store.ByContentView(id))
		if err != nil {
			return err
		}
		for _, v := range versions {
			if len(v.EnvironmentIDs) > 0 {
				return srvErrors.NewValidationError(fmt.Sprintf("version %s is still in %d lifecycle environment(s); remove it from them first", v.Version(), len(v.EnvironmentIDs)))
			}
		}
		for _, v := range versions {
			if err := deleteVersion(ctx, tx, &v); err != nil {
				return err
			}
		}
		return tx.ContentView().Delete(ctx, id)
	})
}

// RemoveFromEnvironment takes every version of a view out of one environment.
func (s *ContentViewService) RemoveFromEnvironment(ctx context.Context, id, envID int) error {
	return s.store.WithTx(ctx, func(tx *store.Store) error {
		if _, err := tx.ContentView().Get(ctx, id); err != nil {
			return err
		}
		versions, err := tx.Version().List(ctx, store.ByContentView(id))
		if err != nil {
			return err
		}

		removed := 0
		for _, v := range versions {
			if !v.InEnvironment(envID) {
				continue
			}
			if err := tx.Version().RemoveEnvironment(ctx, v.ID, envID); err != nil {
				return err
			}
			removed++
		}
		if removed == 0 {
			return srvErrors.NewValidationError(fmt.Sprintf("content view %d is not in lifecycle environment %d", id, envID))
		}
		return nil
	})
}

// Copy creates a new view with the same definition. Versions are not copied.
func (s *ContentViewService) Copy(ctx context.Context, id int, name string) (*ContentViewDetails, error) {
	if err := toValidationError(validateName(field.NewPath("name"), name)); err != nil {
		return nil, err
	}

	var newID int
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		src, err := tx.ContentView().Get(ctx, id)
		if err != nil {
			return err
		}
		if ok, err := nameTaken(ctx, tx.ContentView(), name, store.ByOrganization(src.OrganizationID)); err != nil {
			return err
		} else if ok {
			return toValidationError(field.ErrorList{taken(field.NewPath("name"), name)})
		}

		newID, err = tx.ContentView().Create(ctx, models.ContentView{
			OrganizationID: src.OrganizationID,
			Name:           name,
			Label:          util.Labelize(name),
			Description:    src.Description,
			Composite:      src.Composite,
		})
		if err != nil {
			return err
		}
		if err := tx.ContentView().SetRepositories(ctx, newID, src.RepositoryIDs); err != nil {
			return err
		}
		if err := tx.ContentView().SetComponents(ctx, newID, src.ComponentIDs); err != nil {
			return err
		}
		for _, m := range src.PuppetModules {
			m.ContentViewID = newID
			if _, err := tx.ContentView().AddPuppetModule(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, newID)
}

// AvailablePuppetModules lists the modules that can be added to a view.
func (s *ContentViewService) AvailablePuppetModules(ctx context.Context, id int) ([]models.PuppetModule, error) {
	cv, err := s.store.ContentView().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return puppetModulesOf(ctx, s.store, cv.OrganizationID)
}

func (s *ContentViewService) AddPuppetModule(ctx context.Context, id int, params PuppetModuleParams) (*models.ContentViewPuppetModule, error) {
	var added models.ContentViewPuppetModule
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		cv, err := tx.ContentView().Get(ctx, id)
		if err != nil {
			return err
		}
		if cv.Composite {
			return srvErrors.NewCompositionRuleViolationError("puppet modules cannot be added to a composite content view")
		}

		available, err := puppetModulesOf(ctx, tx, cv.OrganizationID)
		if err != nil {
			return err
		}
		module, ok := findPuppetModule(available, params)
		if !ok {
			return srvErrors.NewResourceNotFoundError("puppet module", moduleRef(params.Author, params.Name, params.ID))
		}

		for _, m := range cv.PuppetModules {
			if m.Author == module.Author && m.Name == module.Name {
				return srvErrors.NewDuplicateReferenceError("puppet module", module.Author+"/"+module.Name)
			}
		}

		added = models.ContentViewPuppetModule{ContentViewID: cv.ID, PuppetModuleID: module.ID, Name: module.Name, Author: module.Author}
		added.ID, err = tx.ContentView().AddPuppetModule(ctx, added)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

// Publish starts a task that snapshots the view into its next version and puts it in Library.
func (s *ContentViewService) Publish(ctx context.Context, id int, description string) (*models.Task, error) {
	if _, err := s.store.ContentView().Get(ctx, id); err != nil {
		return nil, err
	}
	return s.tasks.Start(ctx, TaskLabelPublish, "publish", ResourceContentView, id, func(ctx context.Context, tx *store.Store) error {
		return publish(ctx, tx, id, description)
	})
}

func publish(ctx context.Context, tx *store.Store, id int, description string) error {
	cv, err := tx.ContentView().Get(ctx, id)
	if err != nil {
		return err
	}
	lib, err := tx.Environment().Library(ctx, cv.OrganizationID)
	if err != nil {
		return err
	}

	packages := 0
	if cv.Composite {
		if len(cv.ComponentIDs) > 0 {
			components, err := tx.Version().List(ctx, store.ByID(cv.ComponentIDs...))
			if err != nil {
				return err
			}
			for _, c := range components {
				packages += c.PackageCount
			}
		}
	} else if len(cv.RepositoryIDs) > 0 {
		repos, err := tx.Repository().List(ctx, store.ByID(cv.RepositoryIDs...))
		if err != nil {
			return err
		}
		for _, r := range repos {
			packages += r.PackageCount
		}
	}

	moduleIDs := make([]int, 0, len(cv.PuppetModules))
	for _, m := range cv.PuppetModules {
		moduleIDs = append(moduleIDs, m.PuppetModuleID)
	}

	major, err := tx.ContentView().NextVersion(ctx, id)
	if err != nil {
		return err
	}
	versionID, err := tx.Version().Create(ctx, models.ContentViewVersion{
		ContentViewID:   id,
		Major:           major,
		Description:     description,
		PackageCount:    packages,
		EnvironmentIDs:  []int{lib.ID},
		RepositoryIDs:   cv.RepositoryIDs,
		ComponentIDs:    cv.ComponentIDs,
		PuppetModuleIDs: moduleIDs,
	})
	if err != nil {
		return err
	}

	zap.S().Named("content_view_service").Infow("content view published", "content_view", id, "version", fmt.Sprintf("%d.0", major), "version_id", versionID)
	return nil
}

func (s *ContentViewService) GetVersion(ctx context.Context, id int) (*models.ContentViewVersion, error) {
	return s.store.Version().Get(ctx, id)
}

func (s *ContentViewService) ListVersions(ctx context.Context, contentViewID int, params ListParams) (*ListResult[models.ContentViewVersion], error) {
	var scope []store.ListOption
	if contentViewID > 0 {
		scope = append(scope, store.ByContentView(contentViewID))
	}
	return listPage(ctx, s.store.Version(), ListParams{Page: params.Page, PerPage: params.PerPage, Order: params.Order}, scope...)
}

// Promote starts a task that adds an environment to a version. A version already in the
// environment is rejected up front and again when the task runs.
func (s *ContentViewService) Promote(ctx context.Context, versionID int, params PromoteParams) (*models.Task, error) {
	v, err := s.store.Version().Get(ctx, versionID)
	if err != nil {
		return nil, err
	}
	env, err := s.store.Environment().Get(ctx, params.EnvironmentID)
	if err != nil {
		return nil, err
	}
	cv, err := s.store.ContentView().Get(ctx, v.ContentViewID)
	if err != nil {
		return nil, err
	}
	if env.OrganizationID != cv.OrganizationID {
		return nil, toValidationError(field.ErrorList{field.Invalid(field.NewPath("environment_id"), env.ID, "belongs to another organization")})
	}
	if err := checkPromotion(v, env, params.Force); err != nil {
		return nil, err
	}

	return s.tasks.Start(ctx, TaskLabelPromote, "promote", ResourceContentViewVersion, versionID, func(ctx context.Context, tx *store.Store) error {
		v, err := tx.Version().Get(ctx, versionID)
		if err != nil {
			return err
		}
		if err := checkPromotion(v, env, params.Force); err != nil {
			return err
		}
		return tx.Version().AddEnvironment(ctx, v.ID, env.ID)
	})
}

func checkPromotion(v *models.ContentViewVersion, env *models.LifecycleEnvironment, force bool) error {
	if v.InEnvironment(env.ID) {
		return srvErrors.NewDuplicateReferenceError("lifecycle environment",
			fmt.Sprintf("version %s is already promoted to %s", v.Version(), env.Name))
	}
	if !force && env.PriorID != nil && !v.InEnvironment(*env.PriorID) {
		return srvErrors.NewValidationError(fmt.Sprintf("cannot promote version %s to %s out of sequence: it is not in the prior environment", v.Version(), env.Name))
	}
	return nil
}

// DeleteVersion removes a version that is in no environment and no composite uses.
func (s *ContentViewService) DeleteVersion(ctx context.Context, id int) error {
	return s.store.WithTx(ctx, func(tx *store.Store) error {
		v, err := tx.Version().Get(ctx, id)
		if err != nil {
			return err
		}
		if len(v.EnvironmentIDs) > 0 {
			return srvErrors.NewValidationError(fmt.Sprintf("version %s is still in %d lifecycle environment(s)", v.Version(), len(v.EnvironmentIDs)))
		}
		return deleteVersion(ctx, tx, v)
	})
}

func deleteVersion(ctx context.Context, tx *store.Store, v *models.ContentViewVersion) error {
	users, err := tx.ContentView().CompositesUsing(ctx, v.ID)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return srvErrors.NewValidationError(fmt.Sprintf("version %s is a component of content view(s) %v", v.Version(), users))
	}
	return tx.Version().Delete(ctx, v.ID)
}

func setRepositories(ctx context.Context, tx *store.Store, cv *models.ContentView, ids []int) error {
	if cv.Composite {
		return srvErrors.NewCompositionRuleViolationError("repositories cannot be added to a composite content view")
	}
	if dups := util.Dedup(ids); len(dups) > 0 {
		return srvErrors.NewDuplicateReferenceError("repository", itoa(dups)...)
	}

	for _, id := range ids {
		repo, err := tx.Repository().Get(ctx, id)
		if err != nil {
			return err
		}
		if repo.OrganizationID != cv.OrganizationID {
			return toValidationError(field.ErrorList{field.Invalid(field.NewPath("repository_ids"), id, "belongs to another organization")})
		}
		if repo.ContentType == models.RepositoryTypePuppet {
			return srvErrors.NewCompositionRuleViolationError(fmt.Sprintf("puppet repository %d cannot be added to a content view directly; add its puppet modules instead", id))
		}
	}
	return tx.ContentView().SetRepositories(ctx, cv.ID, ids)
}

func setComponents(ctx context.Context, tx *store.Store, cv *models.ContentView, ids []int) error {
	if !cv.Composite {
		return srvErrors.NewCompositionRuleViolationError("components cannot be added to a non-composite content view")
	}
	if dups := util.Dedup(ids); len(dups) > 0 {
		return srvErrors.NewDuplicateReferenceError("component", itoa(dups)...)
	}

	for _, id := range ids {
		v, err := tx.Version().Get(ctx, id)
		if err != nil {
			return err
		}
		owner, err := tx.ContentView().Get(ctx, v.ContentViewID)
		if err != nil {
			return err
		}
		if owner.OrganizationID != cv.OrganizationID {
			return toValidationError(field.ErrorList{field.Invalid(field.NewPath("component_ids"), id, "belongs to another organization")})
		}
		if owner.Composite {
			return srvErrors.NewCompositionRuleViolationError(fmt.Sprintf("version %d belongs to a composite content view and cannot be a component", id))
		}
	}
	return tx.ContentView().SetComponents(ctx, cv.ID, ids)
}

func details(ctx context.Context, st *store.Store, cv models.ContentView) (*ContentViewDetails, error) {
	d := &ContentViewDetails{ContentView: cv}

	var err error
	if d.Versions, err = st.Version().List(ctx, store.ByContentView(cv.ID), store.WithDefaultSort()); err != nil {
		return nil, err
	}
	if len(cv.ComponentIDs) > 0 {
		components, err := st.Version().List(ctx, store.ByID(cv.ComponentIDs...))
		if err != nil {
			return nil, err
		}
		d.Components = orderByIDs(components, cv.ComponentIDs, func(v models.ContentViewVersion) int { return v.ID })
	}
	if len(cv.RepositoryIDs) > 0 {
		repos, err := st.Repository().List(ctx, store.ByID(cv.RepositoryIDs...))
		if err != nil {
			return nil, err
		}
		d.Repositories = orderByIDs(repos, cv.RepositoryIDs, func(r models.Repository) int { return r.ID })
	}
	return d, nil
}

func validateLabel(path *field.Path, label string) field.ErrorList {
	var errs field.ErrorList
	if !util.ValidLabel(label) {
		errs = append(errs, field.Invalid(path, label, "must only contain letters, digits, dashes and underscores"))
	}
	if len(label) > MaxNameLength {
		errs = append(errs, field.TooLong(path, "", MaxNameLength))
	}
	if reservedLabels.Has(label) {
		errs = append(errs, field.Invalid(path, label, "is reserved"))
	}
	return errs
}

func findPuppetModule(available []models.PuppetModule, params PuppetModuleParams) (models.PuppetModule, bool) {
	for _, m := range available {
		if params.ID > 0 && m.ID == params.ID {
			return m, true
		}
		if params.ID == 0 && m.Author == params.Author && m.Name == params.Name {
			return m, true
		}
	}
	return models.PuppetModule{}, false
}

func moduleRef(author, name string, id int) string {
	if id > 0 {
		return strconv.Itoa(id)
	}
	return author + "/" + name
}

func orderByIDs[T any](items []T, ids []int, idOf func(T) int) []T {
	byID := make(map[int]T, len(items))
	for _, it := range items {
		byID[idOf(it)] = it
	}
	ordered := make([]T, 0, len(ids))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			ordered = append(ordered, it)
		}
	}
	return ordered
}

func itoa(ids []int) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, strconv.Itoa(id))
	}
	return out
}
