package models

import "time"

const (
	DefaultJobTemplateName = "Run Command - SSH Default"
	DefaultJobCategory     = "Commands"
	DefaultProviderType    = "SSH"
)

type JobTemplate struct {
	ID           int
	Name         string
	JobCategory  string
	ProviderType string
	Description  string
	Template     string
	Snippet      bool
	Locked       bool
	Inputs       []TemplateInput
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (t JobTemplate) Input(name string) (TemplateInput, bool) {
	for _, in := range t.Inputs {
		if in.Name == name {
			return in, true
		}
	}
	return TemplateInput{}, false
}

type TemplateInput struct {
	ID          int
	TemplateID  int
	Name        string
	Required    bool
	Description string
	InputType   string
}

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

type HostJobStatus string

const (
	HostJobPending HostJobStatus = "pending"
	HostJobRunning HostJobStatus = "running"
	HostJobSuccess HostJobStatus = "success"
	HostJobError   HostJobStatus = "error"
)

func (s HostJobStatus) Done() bool {
	return s == HostJobSuccess || s == HostJobError
}

type JobInvocation struct {
	ID          int
	TemplateID  int
	JobCategory string
	Description string
	Inputs      map[string]string
	StartAt     *time.Time
	Targets     []JobTarget
	CreatedAt   time.Time
}

// Status aggregates the per-host statuses.
func (j JobInvocation) Status() JobStatus {
	if len(j.Targets) == 0 {
		return JobStatusQueued
	}
	pending, failed, done := 0, 0, 0
	for _, t := range j.Targets {
		switch t.Status {
		case HostJobPending:
			pending++
		case HostJobError:
			failed++
			done++
		case HostJobSuccess:
			done++
		}
	}
	switch {
	case pending == len(j.Targets):
		return JobStatusQueued
	case done < len(j.Targets):
		return JobStatusRunning
	case failed > 0:
		return JobStatusFailed
	default:
		return JobStatusSucceeded
	}
}

func (j JobInvocation) Target(hostID int) (JobTarget, bool) {
	for _, t := range j.Targets {
		if t.HostID == hostID {
			return t, true
		}
	}
	return JobTarget{}, false
}

// JobTarget is the execution of an invocation on one host.
type JobTarget struct {
	InvocationID int
	HostID       int
	HostName     string
	Status       HostJobStatus
	ExitStatus   *int
	Output       []string
	StartedAt    *time.Time
	EndedAt      *time.Time
}
