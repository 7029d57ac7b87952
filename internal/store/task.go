package store

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/renzon/robottelo/internal/models"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
)

type TaskStore struct {
	db QueryInterceptor
}

func NewTaskStore(db QueryInterceptor) *TaskStore {
	return &TaskStore{db: db}
}

func (s *TaskStore) Create(ctx context.Context, t models.Task) error {
	_, err := s.db.ExecContext(ctx, queryInsertTask,
		t.ID, t.Label, t.Action, t.ResourceType, t.ResourceID, string(t.State), string(t.Result), t.Progress, joinErrors(t.Errors),
	)
	return err
}

func (s *TaskStore) Update(ctx context.Context, t models.Task) error {
	res, err := s.db.ExecContext(ctx, queryUpdateTask,
		string(t.State), string(t.Result), t.Progress, joinErrors(t.Errors), nullTime(t.StartedAt), nullTime(t.EndedAt), t.ID,
	)
	if err != nil {
		return err
	}
	return expectAffected(res, "task", t.ID)
}

func (s *TaskStore) Get(ctx context.Context, id string) (*models.Task, error) {
	tasks, err := s.List(ctx, func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"id": id})
	})
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, srvErrors.NewResourceNotFoundError("task", id)
	}
	return &tasks[0], nil
}

func (s *TaskStore) List(ctx context.Context, opts ...ListOption) ([]models.Task, error) {
	builder := sq.Select("id", "label", "action", "resource_type", "resource_id", "state", "result", "progress", "errors", "started_at", "ended_at", "created_at").
		From("tasks")
	return list(ctx, s.db, builder, opts, func(r rowScanner) (models.Task, error) {
		var (
			t             models.Task
			state, result string
			errs          string
		)
		err := r.Scan(&t.ID, &t.Label, &t.Action, &t.ResourceType, &t.ResourceID, &state, &result, &t.Progress, &errs, &t.StartedAt, &t.EndedAt, &t.CreatedAt)
		t.State = models.TaskState(state)
		t.Result = models.TaskResult(result)
		t.Errors = splitErrors(errs)
		return t, err
	})
}

func (s *TaskStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	return count(ctx, s.db, "tasks", opts)
}

func joinErrors(errs []string) string {
	return strings.Join(errs, "\n")
}

func splitErrors(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
