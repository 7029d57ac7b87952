package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/apimachinery/pkg/util/validation/field"
	"k8s.io/utils/clock"

	"github.com/renzon/robottelo/internal/models"
	"github.com/renzon/robottelo/internal/store"
	"github.com/renzon/robottelo/internal/util"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
	"github.com/renzon/robottelo/pkg/scheduler"
)

type JobInvocationParams struct {
	TemplateID  int
	Description string
	Inputs      map[string]string
	HostIDs     []int
	// StartAt postpones execution. Nil runs the job right away.
	StartAt *time.Time
}

type JobInvocationService struct {
	store     *store.Store
	scheduler *scheduler.Scheduler
	clock     clock.Clock
	latency   time.Duration
	serverURL string
}

func NewJobInvocationService(st *store.Store, sched *scheduler.Scheduler, c clock.Clock, latency time.Duration, serverURL string) *JobInvocationService {
	return &JobInvocationService{store: st, scheduler: sched, clock: c, latency: latency, serverURL: serverURL}
}

// Create validates and stores an invocation, renders the template once per host
// and schedules its execution.
func (s *JobInvocationService) Create(ctx context.Context, params JobInvocationParams) (*models.JobInvocation, error) {
	var errs field.ErrorList
	if params.TemplateID == 0 {
		errs = append(errs, field.Required(field.NewPath("job_template_id"), "can't be blank"))
	}
	if len(params.HostIDs) == 0 {
		errs = append(errs, field.Required(field.NewPath("targeting", "host_ids"), "at least one host must be targeted"))
	}
	if err := toValidationError(errs); err != nil {
		return nil, err
	}

	t, err := s.store.JobTemplate().Get(ctx, params.TemplateID)
	if err != nil {
		return nil, err
	}

	declared := declaredInputs(t)
	for _, in := range t.Inputs {
		if in.Required && params.Inputs[in.Name] == "" {
			errs = append(errs, field.Required(field.NewPath("inputs", in.Name), "is required"))
		}
	}
	for name := range params.Inputs {
		if !declared[name] {
			errs = append(errs, field.Invalid(field.NewPath("inputs", name), params.Inputs[name], fmt.Sprintf("is not an input of template %q", t.Name)))
		}
	}
	if err := toValidationError(errs); err != nil {
		return nil, err
	}

	hostIDs := sets.List(sets.New(params.HostIDs...))
	hosts := make([]models.Host, 0, len(hostIDs))
	scripts := make(map[int]string, len(hostIDs))
	for _, id := range hostIDs {
		h, err := s.store.Host().Get(ctx, id)
		if err != nil {
			return nil, err
		}
		script, err := util.RenderTemplate(t.Template, util.RenderContext{
			Declared:  declared,
			Values:    params.Inputs,
			ServerURL: s.serverURL,
			HostName:  h.Name,
		})
		if err != nil {
			return nil, srvErrors.NewValidationError(fmt.Sprintf("template: %v", err))
		}
		hosts = append(hosts, *h)
		scripts[h.ID] = script
	}

	description := params.Description
	if description == "" {
		description = t.Name
	}
	inv := models.JobInvocation{
		TemplateID:  t.ID,
		JobCategory: t.JobCategory,
		Description: description,
		Inputs:      params.Inputs,
		StartAt:     params.StartAt,
	}
	for _, h := range hosts {
		inv.Targets = append(inv.Targets, models.JobTarget{HostID: h.ID, HostName: h.Name, Status: models.HostJobPending})
	}

	id, err := s.store.JobInvocation().Create(ctx, inv)
	if err != nil {
		return nil, err
	}
	zap.S().Named("job_invocation_service").Infow("job invocation created", "id", id, "template", t.Name, "hosts", len(hosts), "start_at", params.StartAt)

	s.scheduler.Go(fmt.Sprintf("job invocation %d", id), func(ctx context.Context) (any, error) {
		return nil, s.execute(ctx, id, params.StartAt, hosts, scripts)
	})

	return s.store.JobInvocation().Get(ctx, id)
}

func (s *JobInvocationService) execute(ctx context.Context, id int, startAt *time.Time, hosts []models.Host, scripts map[int]string) error {
	logger := zap.S().Named("job_invocation_service").With("invocation", id)

	wait := s.latency
	if startAt != nil {
		if d := startAt.Sub(s.clock.Now()); d > wait {
			wait = d
		}
	}
	if wait > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.clock.After(wait):
		}
	}

	for _, h := range hosts {
		started := s.clock.Now()
		target := models.JobTarget{InvocationID: id, HostID: h.ID, HostName: h.Name, Status: models.HostJobRunning, StartedAt: &started}
		if err := s.store.JobInvocation().UpdateTarget(ctx, target); err != nil {
			return err
		}

		sh := &shell{clock: s.clock, host: h}
		code := sh.run(ctx, scripts[h.ID])

		ended := s.clock.Now()
		target.ExitStatus = &code
		target.EndedAt = &ended
		target.Output = append(sh.out, fmt.Sprintf("Exit status: %d", code))
		target.Status = models.HostJobSuccess
		if code != 0 {
			target.Status = models.HostJobError
		}
		if err := s.store.JobInvocation().UpdateTarget(context.WithoutCancel(ctx), target); err != nil {
			return err
		}
		logger.Debugw("host finished", "host", h.Name, "address", h.Address(), "exit_status", code)
	}
	return nil
}

func (s *JobInvocationService) Get(ctx context.Context, id int) (*models.JobInvocation, error) {
	return s.store.JobInvocation().Get(ctx, id)
}

func (s *JobInvocationService) List(ctx context.Context, params ListParams) (*ListResult[models.JobInvocation], error) {
	return listPage(ctx, s.store.JobInvocation(), ListParams{Page: params.Page, PerPage: params.PerPage, Order: params.Order})
}

// Output returns the execution of an invocation on one host.
func (s *JobInvocationService) Output(ctx context.Context, id, hostID int) (*models.JobTarget, error) {
	inv, err := s.store.JobInvocation().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	t, ok := inv.Target(hostID)
	if !ok {
		return nil, srvErrors.NewResourceNotFoundError("host", hostID)
	}
	return &t, nil
}
