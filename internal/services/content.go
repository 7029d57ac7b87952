package services

import (
	"context"
	"fmt"
	"hash/fnv"

	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/renzon/robottelo/internal/models"
	"github.com/renzon/robottelo/internal/store"
	"github.com/renzon/robottelo/internal/util"
)

const (
	TaskLabelSync = "Actions::Katello::Repository::Sync"

	ResourceRepository = "repository"
)

// puppetCatalog is what every puppet feed serves.
var puppetCatalog = []models.PuppetModule{
	{Author: "puppetlabs", Name: "ntp", Version: "4.2.0"},
	{Author: "puppetlabs", Name: "stdlib", Version: "4.9.0"},
	{Author: "puppetlabs", Name: "apache", Version: "1.6.0"},
	{Author: "puppetlabs", Name: "motd", Version: "1.4.0"},
	{Author: "puppetlabs", Name: "concat", Version: "1.2.4"},
	{Author: "saz", Name: "ssh", Version: "2.8.1"},
}

type ProductParams struct {
	Name        string
	Label       string
	Description string
}

type RepositoryParams struct {
	ProductID   int
	Name        string
	Label       string
	ContentType models.RepositoryType
	URL         string
}

type ContentService struct {
	store *store.Store
	tasks *TaskService
}

func NewContentService(st *store.Store, tasks *TaskService) *ContentService {
	return &ContentService{store: st, tasks: tasks}
}

func (s *ContentService) CreateProduct(ctx context.Context, orgID int, params ProductParams) (*models.Product, error) {
	errs := validateName(field.NewPath("name"), params.Name)
	label := params.Label
	if label == "" {
		label = util.Labelize(params.Name)
	}
	if err := toValidationError(errs); err != nil {
		return nil, err
	}

	var id int
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		if _, err := tx.Organization().Get(ctx, orgID); err != nil {
			return err
		}
		if ok, err := nameTaken(ctx, tx.Product(), params.Name, store.ByOrganization(orgID)); err != nil {
			return err
		} else if ok {
			return toValidationError(field.ErrorList{taken(field.NewPath("name"), params.Name)})
		}

		var err error
		id, err = tx.Product().Create(ctx, models.Product{OrganizationID: orgID, Name: params.Name, Label: label, Description: params.Description})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.store.Product().Get(ctx, id)
}

func (s *ContentService) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	return s.store.Product().Get(ctx, id)
}

func (s *ContentService) ListProducts(ctx context.Context, orgID int, params ListParams) (*ListResult[models.Product], error) {
	return listPage(ctx, s.store.Product(), params, store.ByOrganization(orgID))
}

func (s *ContentService) CreateRepository(ctx context.Context, params RepositoryParams) (*models.Repository, error) {
	errs := validateName(field.NewPath("name"), params.Name)
	if params.ContentType == "" {
		params.ContentType = models.RepositoryTypeYum
	}
	if !params.ContentType.Valid() {
		errs = append(errs, field.NotSupported(field.NewPath("content_type"), string(params.ContentType),
			[]string{string(models.RepositoryTypeYum), string(models.RepositoryTypePuppet)}))
	}
	label := params.Label
	if label == "" {
		label = util.Labelize(params.Name)
	}
	if err := toValidationError(errs); err != nil {
		return nil, err
	}

	var id int
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		product, err := tx.Product().Get(ctx, params.ProductID)
		if err != nil {
			return err
		}
		if ok, err := nameTaken(ctx, tx.Repository(), params.Name, store.ByProduct(product.ID)); err != nil {
			return err
		} else if ok {
			return toValidationError(field.ErrorList{taken(field.NewPath("name"), params.Name)})
		}

		id, err = tx.Repository().Create(ctx, models.Repository{
			ProductID:      product.ID,
			OrganizationID: product.OrganizationID,
			Name:           params.Name,
			Label:          label,
			ContentType:    params.ContentType,
			URL:            params.URL,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.store.Repository().Get(ctx, id)
}

func (s *ContentService) GetRepository(ctx context.Context, id int) (*models.Repository, error) {
	return s.store.Repository().Get(ctx, id)
}

func (s *ContentService) ListRepositories(ctx context.Context, orgID int, params ListParams) (*ListResult[models.Repository], error) {
	return listPage(ctx, s.store.Repository(), params, store.ByOrganization(orgID))
}

// Sync starts a task that fills the repository from its feed. Yum feeds yield a
// package count derived from the URL, puppet feeds the module catalog.
func (s *ContentService) Sync(ctx context.Context, id int) (*models.Task, error) {
	repo, err := s.store.Repository().Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.tasks.Start(ctx, TaskLabelSync, "sync", ResourceRepository, id, func(ctx context.Context, tx *store.Store) error {
		current, err := tx.Repository().Get(ctx, repo.ID)
		if err != nil {
			return err
		}

		switch current.ContentType {
		case models.RepositoryTypePuppet:
			return tx.Repository().Synced(ctx, current.ID, 0, puppetCatalog, s.tasks.clock.Now())
		default:
			return tx.Repository().Synced(ctx, current.ID, feedPackageCount(current.URL), nil, s.tasks.clock.Now())
		}
	})
}

// PuppetModules lists the modules synced into the organization's puppet repositories.
func (s *ContentService) PuppetModules(ctx context.Context, orgID int) ([]models.PuppetModule, error) {
	return puppetModulesOf(ctx, s.store, orgID)
}

func puppetModulesOf(ctx context.Context, st *store.Store, orgID int) ([]models.PuppetModule, error) {
	repos, err := st.Repository().List(ctx, store.ByOrganization(orgID), store.ByContentType(string(models.RepositoryTypePuppet)))
	if err != nil {
		return nil, err
	}
	if len(repos) == 0 {
		return nil, nil
	}

	ids := make([]int, 0, len(repos))
	for _, r := range repos {
		ids = append(ids, r.ID)
	}
	return st.Repository().PuppetModules(ctx, store.ByRepository(ids...), store.WithDefaultSort())
}

// feedPackageCount is stable per URL and always positive.
func feedPackageCount(url string) int {
	h := fnv.New32a()
	_, _ = fmt.Fprint(h, url)
	return 16 + int(h.Sum32()%64)
}
