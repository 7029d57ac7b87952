package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/renzon/robottelo/internal/models"
	"github.com/renzon/robottelo/internal/store"
	"github.com/renzon/robottelo/pkg/scheduler"
)

// Action is the asynchronous part of a task. It runs inside a transaction.
type Action func(ctx context.Context, tx *store.Store) error

type TaskService struct {
	store     *store.Store
	scheduler *scheduler.Scheduler
	clock     clock.Clock
	latency   time.Duration
}

func NewTaskService(st *store.Store, s *scheduler.Scheduler, c clock.Clock, latency time.Duration) *TaskService {
	return &TaskService{store: st, scheduler: s, clock: c, latency: latency}
}

func (s *TaskService) Get(ctx context.Context, id string) (*models.Task, error) {
	return s.store.Task().Get(ctx, id)
}

func (s *TaskService) List(ctx context.Context, params ListParams) (*ListResult[models.Task], error) {
	return listPage(ctx, s.store.Task(), params)
}

// Start records a planned task and hands action to the scheduler. The returned
// task is the planned snapshot; callers observe progress through Get.
func (s *TaskService) Start(ctx context.Context, label, action, resourceType string, resourceID int, fn Action) (*models.Task, error) {
	task := models.Task{
		ID:           uuid.NewString(),
		Label:        label,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		State:        models.TaskStatePlanned,
		Result:       models.TaskResultPending,
	}
	if err := s.store.Task().Create(ctx, task); err != nil {
		return nil, err
	}

	s.scheduler.Go(label, func(ctx context.Context) (any, error) {
		return nil, s.run(ctx, task, fn)
	})

	return s.store.Task().Get(ctx, task.ID)
}

func (s *TaskService) run(ctx context.Context, task models.Task, fn Action) error {
	logger := zap.S().Named("task_service").With("task", task.ID, "label", task.Label)

	if s.latency > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.clock.After(s.latency):
		}
	}

	started := s.clock.Now()
	task.State = models.TaskStateRunning
	task.Progress = 0.5
	task.StartedAt = &started
	if err := s.store.Task().Update(ctx, task); err != nil {
		return err
	}

	actionErr := s.store.WithTx(ctx, func(tx *store.Store) error {
		return fn(ctx, tx)
	})

	ended := s.clock.Now()
	task.State = models.TaskStateStopped
	task.Progress = 1
	task.EndedAt = &ended
	if actionErr != nil {
		task.Result = models.TaskResultError
		task.Errors = []string{actionErr.Error()}
		logger.Warnw("task failed", "error", actionErr)
	} else {
		task.Result = models.TaskResultSuccess
		logger.Debugw("task succeeded", "duration", ended.Sub(started))
	}

	return s.store.Task().Update(context.WithoutCancel(ctx), task)
}
