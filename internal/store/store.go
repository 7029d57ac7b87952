package store

import (
	"context"
	"database/sql"
	"sync"

	"go.uber.org/zap"
)

// Store provides access to all storage repositories.
type Store struct {
	db   *sql.DB
	mu   *sync.Mutex
	inTx bool

	organization  *OrganizationStore
	environment   *EnvironmentStore
	user          *UserStore
	product       *ProductStore
	repository    *RepositoryStore
	contentView   *ContentViewStore
	version       *VersionStore
	task          *TaskStore
	host          *HostStore
	jobTemplate   *JobTemplateStore
	jobInvocation *JobInvocationStore
}

func NewStore(db *sql.DB) *Store {
	return newStore(db, newQueryInterceptor(db), &sync.Mutex{}, false)
}

func newStore(db *sql.DB, qi QueryInterceptor, mu *sync.Mutex, inTx bool) *Store {
	return &Store{
		db:            db,
		mu:            mu,
		inTx:          inTx,
		organization:  NewOrganizationStore(qi),
		environment:   NewEnvironmentStore(qi),
		user:          NewUserStore(qi),
		product:       NewProductStore(qi),
		repository:    NewRepositoryStore(qi),
		contentView:   NewContentViewStore(qi),
		version:       NewVersionStore(qi),
		task:          NewTaskStore(qi),
		host:          NewHostStore(qi),
		jobTemplate:   NewJobTemplateStore(qi),
		jobInvocation: NewJobInvocationStore(qi),
	}
}

// WithTx runs fn inside a transaction. Writers are serialized so concurrent requests never
// hit duckdb's optimistic write conflicts. Nested calls reuse the outer transaction.
func (s *Store) WithTx(ctx context.Context, fn func(st *Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(newStore(s.db, newQueryInterceptor(tx), s.mu, true)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			zap.S().Named("store").Errorw("failed to rollback transaction", "error", rbErr)
		}
		return err
	}

	return tx.Commit()
}

func (s *Store) Organization() *OrganizationStore {
	return s.organization
}

func (s *Store) Environment() *EnvironmentStore {
	return s.environment
}

func (s *Store) User() *UserStore {
	return s.user
}

func (s *Store) Product() *ProductStore {
	return s.product
}

func (s *Store) Repository() *RepositoryStore {
	return s.repository
}

func (s *Store) ContentView() *ContentViewStore {
	return s.contentView
}

func (s *Store) Version() *VersionStore {
	return s.version
}

func (s *Store) Task() *TaskStore {
	return s.task
}

func (s *Store) Host() *HostStore {
	return s.host
}

func (s *Store) JobTemplate() *JobTemplateStore {
	return s.jobTemplate
}

func (s *Store) JobInvocation() *JobInvocationStore {
	return s.jobInvocation
}

func (s *Store) Close() error {
	return s.db.Close()
}
