package v1

import (
	"slices"
	"strings"

	"github.com/renzon/robottelo/internal/models"
	"github.com/renzon/robottelo/internal/services"
)

// NewList converts a service page into the list envelope.
func NewList[M any, T any](page *services.ListResult[M], convert func(M) T) List[T] {
	l := List[T]{
		Total:    page.Total,
		Subtotal: page.Subtotal,
		Page:     page.Page,
		PerPage:  page.PerPage,
		Results:  make([]T, 0, len(page.Items)),
	}
	if page.Search != "" {
		search := page.Search
		l.Search = &search
	}
	for _, m := range page.Items {
		l.Results = append(l.Results, convert(m))
	}
	return l
}

func NewOrganizationFromModel(m models.Organization) Organization {
	return Organization{ID: m.ID, Name: m.Name, Label: m.Label, Description: m.Description, CreatedAt: m.CreatedAt}
}

func NewLifecycleEnvironmentFromModel(m models.LifecycleEnvironment) LifecycleEnvironment {
	env := LifecycleEnvironment{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		Name:           m.Name,
		Label:          m.Label,
		Description:    m.Description,
		Library:        m.Library,
	}
	if m.PriorID != nil {
		env.Prior = &Reference{ID: *m.PriorID}
	}
	return env
}

func NewUserFromModel(m models.User) User {
	return User{
		ID:                    m.ID,
		Login:                 m.Login,
		Firstname:             m.Firstname,
		Lastname:              m.Lastname,
		Mail:                  m.Mail,
		Admin:                 m.Admin,
		DefaultOrganizationID: m.DefaultOrganizationID,
	}
}

func NewProductFromModel(m models.Product) Product {
	return Product{ID: m.ID, OrganizationID: m.OrganizationID, Name: m.Name, Label: m.Label, Description: m.Description}
}

func NewRepositoryFromModel(m models.Repository) Repository {
	return Repository{
		ID:             m.ID,
		ProductID:      m.ProductID,
		OrganizationID: m.OrganizationID,
		Name:           m.Name,
		Label:          m.Label,
		ContentType:    string(m.ContentType),
		URL:            m.URL,
		PackageCount:   m.PackageCount,
		LastSync:       m.LastSync,
	}
}

func NewPuppetModuleFromModel(m models.PuppetModule) PuppetModule {
	return PuppetModule{ID: m.ID, RepositoryID: m.RepositoryID, Name: m.Name, Author: m.Author, Version: m.Version}
}

func NewContentViewPuppetModuleFromModel(m models.ContentViewPuppetModule) ContentViewPuppetModule {
	return ContentViewPuppetModule{ID: m.ID, PuppetModuleID: m.PuppetModuleID, Name: m.Name, Author: m.Author}
}

func NewContentViewVersionFromModel(m models.ContentViewVersion) ContentViewVersion {
	return ContentViewVersion{
		ID:              m.ID,
		ContentViewID:   m.ContentViewID,
		Version:         m.Version(),
		Major:           m.Major,
		Minor:           m.Minor,
		Description:     m.Description,
		PackageCount:    m.PackageCount,
		EnvironmentIDs:  nonNil(m.EnvironmentIDs),
		RepositoryIDs:   nonNil(m.RepositoryIDs),
		ComponentIDs:    nonNil(m.ComponentIDs),
		PuppetModuleIDs: nonNil(m.PuppetModuleIDs),
		CreatedAt:       m.CreatedAt,
	}
}

func NewContentViewFromModel(d services.ContentViewDetails) ContentView {
	cv := ContentView{
		ID:             d.ID,
		OrganizationID: d.OrganizationID,
		Name:           d.Name,
		Label:          d.Label,
		Description:    d.Description,
		Composite:      d.Composite,
		NextVersion:    d.NextVersion,
		RepositoryIDs:  nonNil(d.RepositoryIDs),
		Repositories:   make([]Reference, 0, len(d.Repositories)),
		ComponentIDs:   nonNil(d.ComponentIDs),
		Components:     make([]ContentViewVersion, 0, len(d.Components)),
		PuppetModules:  make([]ContentViewPuppetModule, 0, len(d.PuppetModules)),
		Versions:       make([]ContentViewVersion, 0, len(d.Versions)),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	for _, r := range d.Repositories {
		cv.Repositories = append(cv.Repositories, Reference{ID: r.ID, Name: r.Name})
	}
	for _, c := range d.Components {
		cv.Components = append(cv.Components, NewContentViewVersionFromModel(c))
	}
	for _, m := range d.PuppetModules {
		cv.PuppetModules = append(cv.PuppetModules, NewContentViewPuppetModuleFromModel(m))
	}
	for _, v := range d.Versions {
		cv.Versions = append(cv.Versions, NewContentViewVersionFromModel(v))
	}
	return cv
}

func NewTaskFromModel(m models.Task) Task {
	return Task{
		ID:           m.ID,
		Label:        m.Label,
		State:        string(m.State),
		Result:       string(m.Result),
		Progress:     m.Progress,
		Pending:      m.Pending(),
		Humanized:    TaskHumanized{Action: m.Action, Errors: nonNil(m.Errors)},
		ResourceType: m.ResourceType,
		ResourceID:   m.ResourceID,
		StartedAt:    m.StartedAt,
		EndedAt:      m.EndedAt,
	}
}

func NewHostFromModel(m models.Host) Host {
	h := Host{
		ID:                     m.ID,
		Name:                   m.Name,
		OrganizationID:         m.OrganizationID,
		IP:                     m.IP,
		ContentViewID:          m.ContentViewID,
		LifecycleEnvironmentID: m.LifecycleEnvironmentID,
		Parameters:             make([]HostParameter, 0, len(m.Parameters)),
	}
	for name, value := range m.Parameters {
		h.Parameters = append(h.Parameters, HostParameter{Name: name, Value: value})
	}
	slices.SortFunc(h.Parameters, func(a, b HostParameter) int { return strings.Compare(a.Name, b.Name) })
	return h
}

func NewJobTemplateFromModel(m models.JobTemplate) JobTemplate {
	t := JobTemplate{
		ID:             m.ID,
		Name:           m.Name,
		JobCategory:    m.JobCategory,
		ProviderType:   m.ProviderType,
		Description:    m.Description,
		Template:       m.Template,
		Snippet:        m.Snippet,
		Locked:         m.Locked,
		TemplateInputs: make([]TemplateInput, 0, len(m.Inputs)),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	for _, in := range m.Inputs {
		t.TemplateInputs = append(t.TemplateInputs, TemplateInput{
			ID:          in.ID,
			Name:        in.Name,
			Required:    in.Required,
			Description: in.Description,
			InputType:   in.InputType,
		})
	}
	return t
}

// ToModel converts wire inputs for the service layer.
func (in TemplateInput) ToModel() models.TemplateInput {
	return models.TemplateInput{Name: in.Name, Required: in.Required, Description: in.Description, InputType: in.InputType}
}

func NewJobInvocationFromModel(m models.JobInvocation) JobInvocation {
	inv := JobInvocation{
		ID:          m.ID,
		TemplateID:  m.TemplateID,
		JobCategory: m.JobCategory,
		Description: m.Description,
		Status:      string(m.Status()),
		Total:       len(m.Targets),
		Inputs:      m.Inputs,
		Scheduling:  Scheduling{StartAt: m.StartAt},
		CreatedAt:   m.CreatedAt,
		Targeting:   Targeting{HostIDs: make([]int, 0, len(m.Targets))},
	}
	for _, t := range m.Targets {
		inv.Targeting.HostIDs = append(inv.Targeting.HostIDs, t.HostID)
		inv.Targeting.Hosts = append(inv.Targeting.Hosts, Reference{ID: t.HostID, Name: t.HostName})
		switch t.Status {
		case models.HostJobSuccess:
			inv.Succeeded++
		case models.HostJobError:
			inv.Failed++
		default:
			inv.Pending++
		}
	}
	return inv
}

func NewJobOutputFromModel(m models.JobTarget) JobOutput {
	out := JobOutput{
		HostID:     m.HostID,
		HostName:   m.HostName,
		Status:     string(m.Status),
		ExitStatus: m.ExitStatus,
		Complete:   m.Status.Done(),
		Output:     make([]OutputLine, 0, len(m.Output)),
	}
	for _, line := range m.Output {
		out.Output = append(out.Output, OutputLine{Output: line, OutputType: "stdout"})
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
