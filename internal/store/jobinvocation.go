package store

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/renzon/robottelo/internal/models"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
)

type JobInvocationStore struct {
	db QueryInterceptor
}

func NewJobInvocationStore(db QueryInterceptor) *JobInvocationStore {
	return &JobInvocationStore{db: db}
}

// Create stores the invocation, its inputs and one pending target per host.
func (s *JobInvocationStore) Create(ctx context.Context, inv models.JobInvocation) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, queryInsertJobInvocation,
		inv.TemplateID, inv.JobCategory, inv.Description, nullTime(inv.StartAt),
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	for name, value := range inv.Inputs {
		if _, err := s.db.ExecContext(ctx, queryInsertJobInvocationInput, id, name, value); err != nil {
			return 0, err
		}
	}
	for _, t := range inv.Targets {
		if _, err := s.db.ExecContext(ctx, queryInsertJobInvocationTarget, id, t.HostID, t.HostName, string(models.HostJobPending)); err != nil {
			return 0, err
		}
	}
	return id, nil
}

func (s *JobInvocationStore) Get(ctx context.Context, id int) (*models.JobInvocation, error) {
	invocations, err := s.List(ctx, ByID(id))
	if err != nil {
		return nil, err
	}
	if len(invocations) == 0 {
		return nil, srvErrors.NewResourceNotFoundError("job invocation", id)
	}
	return &invocations[0], nil
}

func (s *JobInvocationStore) List(ctx context.Context, opts ...ListOption) ([]models.JobInvocation, error) {
	builder := sq.Select("id", "template_id", "job_category", "description", "start_at", "created_at").
		From("job_invocations")
	invocations, err := list(ctx, s.db, builder, opts, func(r rowScanner) (models.JobInvocation, error) {
		var inv models.JobInvocation
		err := r.Scan(&inv.ID, &inv.TemplateID, &inv.JobCategory, &inv.Description, &inv.StartAt, &inv.CreatedAt)
		return inv, err
	})
	if err != nil {
		return nil, err
	}

	for i := range invocations {
		inv := &invocations[i]
		if inv.Inputs, err = s.inputs(ctx, inv.ID); err != nil {
			return nil, err
		}
		if inv.Targets, err = s.targets(ctx, inv.ID); err != nil {
			return nil, err
		}
	}
	return invocations, nil
}

func (s *JobInvocationStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	return count(ctx, s.db, "job_invocations", opts)
}

func (s *JobInvocationStore) inputs(ctx context.Context, id int) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, queryJobInvocationInputs, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	inputs := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		inputs[name] = value
	}
	return inputs, rows.Err()
}

func (s *JobInvocationStore) targets(ctx context.Context, id int) ([]models.JobTarget, error) {
	rows, err := s.db.QueryContext(ctx, queryJobInvocationTargets, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []models.JobTarget
	for rows.Next() {
		var (
			t      models.JobTarget
			status string
			output string
		)
		if err := rows.Scan(&t.InvocationID, &t.HostID, &t.HostName, &status, &t.ExitStatus, &output, &t.StartedAt, &t.EndedAt); err != nil {
			return nil, err
		}
		t.Status = models.HostJobStatus(status)
		if output != "" {
			t.Output = strings.Split(output, "\n")
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

func (s *JobInvocationStore) UpdateTarget(ctx context.Context, t models.JobTarget) error {
	res, err := s.db.ExecContext(ctx, queryUpdateJobInvocationTarget,
		string(t.Status), nullInt(t.ExitStatus), strings.Join(t.Output, "\n"), nullTime(t.StartedAt), nullTime(t.EndedAt),
		t.InvocationID, t.HostID,
	)
	if err != nil {
		return err
	}
	return expectAffected(res, "job invocation target", t.HostID)
}
