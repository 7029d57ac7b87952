package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/renzon/robottelo/internal/models"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
)

type JobTemplateStore struct {
	db QueryInterceptor
}

func NewJobTemplateStore(db QueryInterceptor) *JobTemplateStore {
	return &JobTemplateStore{db: db}
}

func (s *JobTemplateStore) Create(ctx context.Context, t models.JobTemplate) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, queryInsertJobTemplate,
		t.Name, t.JobCategory, t.ProviderType, t.Description, t.Template, t.Snippet, t.Locked,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	for _, in := range t.Inputs {
		in.TemplateID = id
		if _, err := s.AddInput(ctx, in); err != nil {
			return 0, err
		}
	}
	return id, nil
}

func (s *JobTemplateStore) Update(ctx context.Context, t models.JobTemplate) error {
	res, err := s.db.ExecContext(ctx, queryUpdateJobTemplate,
		t.Name, t.JobCategory, t.ProviderType, t.Description, t.Template, t.ID,
	)
	if err != nil {
		return err
	}
	return expectAffected(res, "job template", t.ID)
}

func (s *JobTemplateStore) AddInput(ctx context.Context, in models.TemplateInput) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, queryInsertTemplateInput,
		in.TemplateID, in.Name, in.Required, in.Description, in.InputType,
	).Scan(&id)
	return id, err
}

func (s *JobTemplateStore) Get(ctx context.Context, id int) (*models.JobTemplate, error) {
	templates, err := s.List(ctx, ByID(id))
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, srvErrors.NewResourceNotFoundError("job template", id)
	}
	return &templates[0], nil
}

func (s *JobTemplateStore) List(ctx context.Context, opts ...ListOption) ([]models.JobTemplate, error) {
	builder := sq.Select("id", "name", "job_category", "provider_type", "description", "template", "snippet", "locked", "created_at", "updated_at").
		From("job_templates")
	templates, err := list(ctx, s.db, builder, opts, func(r rowScanner) (models.JobTemplate, error) {
		var t models.JobTemplate
		err := r.Scan(&t.ID, &t.Name, &t.JobCategory, &t.ProviderType, &t.Description, &t.Template, &t.Snippet, &t.Locked, &t.CreatedAt, &t.UpdatedAt)
		return t, err
	})
	if err != nil {
		return nil, err
	}

	for i := range templates {
		if templates[i].Inputs, err = s.inputs(ctx, templates[i].ID); err != nil {
			return nil, err
		}
	}
	return templates, nil
}

func (s *JobTemplateStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	return count(ctx, s.db, "job_templates", opts)
}

func (s *JobTemplateStore) inputs(ctx context.Context, templateID int) ([]models.TemplateInput, error) {
	rows, err := s.db.QueryContext(ctx, queryTemplateInputs, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var inputs []models.TemplateInput
	for rows.Next() {
		var in models.TemplateInput
		if err := rows.Scan(&in.ID, &in.TemplateID, &in.Name, &in.Required, &in.Description, &in.InputType); err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, rows.Err()
}

func (s *JobTemplateStore) Delete(ctx context.Context, id int) error {
	if _, err := s.db.ExecContext(ctx, queryDeleteTemplateInput, id); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, queryDeleteJobTemplate, id)
	if err != nil {
		return err
	}
	return expectAffected(res, "job template", id)
}
