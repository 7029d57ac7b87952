package models

import "time"

type TaskState string

const (
	TaskStatePlanned TaskState = "planned"
	TaskStateRunning TaskState = "running"
	TaskStateStopped TaskState = "stopped"
)

type TaskResult string

const (
	TaskResultPending TaskResult = "pending"
	TaskResultSuccess TaskResult = "success"
	TaskResultWarning TaskResult = "warning"
	TaskResultError   TaskResult = "error"
)

// Task tracks one asynchronous action (publish, promote, sync) of the product.
type Task struct {
	ID           string
	Label        string
	Action       string
	ResourceType string
	ResourceID   int
	State        TaskState
	Result       TaskResult
	Progress     float64
	Errors       []string
	StartedAt    *time.Time
	EndedAt      *time.Time
	CreatedAt    time.Time
}

func (t Task) Pending() bool {
	return t.State != TaskStateStopped
}
