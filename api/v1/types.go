// Package v1 holds the JSON documents exchanged with the product's REST API.
// The fake server renders them and the client decodes them.
package v1

import "time"

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	DisplayMessage string   `json:"displayMessage"`
	Errors         []string `json:"errors"`
}

// List is the envelope of index endpoints.
type List[T any] struct {
	Total    int     `json:"total"`
	Subtotal int     `json:"subtotal"`
	Page     int     `json:"page"`
	PerPage  int     `json:"per_page"`
	Search   *string `json:"search"`
	Results  []T     `json:"results"`
}

type Reference struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Status struct {
	Result  string `json:"result"`
	Version string `json:"version"`
}

type Organization struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Label       string    `json:"label"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type OrganizationRequest struct {
	Name        string `json:"name"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
}

type LifecycleEnvironment struct {
	ID             int        `json:"id"`
	OrganizationID int        `json:"organization_id"`
	Name           string     `json:"name"`
	Label          string     `json:"label"`
	Description    string     `json:"description"`
	Library        bool       `json:"library"`
	Prior          *Reference `json:"prior"`
}

type LifecycleEnvironmentRequest struct {
	OrganizationID int    `json:"organization_id"`
	Name           string `json:"name"`
	Label          string `json:"label,omitempty"`
	Description    string `json:"description,omitempty"`
	PriorID        *int   `json:"prior_id,omitempty"`
}

type User struct {
	ID                    int    `json:"id"`
	Login                 string `json:"login"`
	Firstname             string `json:"firstname"`
	Lastname              string `json:"lastname"`
	Mail                  string `json:"mail"`
	Admin                 bool   `json:"admin"`
	DefaultOrganizationID *int   `json:"default_organization_id"`
}

type UserRequest struct {
	Login                 string `json:"login"`
	Password              string `json:"password"`
	Firstname             string `json:"firstname,omitempty"`
	Lastname              string `json:"lastname,omitempty"`
	Mail                  string `json:"mail,omitempty"`
	Admin                 bool   `json:"admin"`
	DefaultOrganizationID *int   `json:"default_organization_id,omitempty"`
}

type Product struct {
	ID             int    `json:"id"`
	OrganizationID int    `json:"organization_id"`
	Name           string `json:"name"`
	Label          string `json:"label"`
	Description    string `json:"description"`
}

type ProductRequest struct {
	OrganizationID int    `json:"organization_id"`
	Name           string `json:"name"`
	Label          string `json:"label,omitempty"`
	Description    string `json:"description,omitempty"`
}

type Repository struct {
	ID             int        `json:"id"`
	ProductID      int        `json:"product_id"`
	OrganizationID int        `json:"organization_id"`
	Name           string     `json:"name"`
	Label          string     `json:"label"`
	ContentType    string     `json:"content_type"`
	URL            string     `json:"url"`
	PackageCount   int        `json:"package_count"`
	LastSync       *time.Time `json:"last_sync"`
}

type RepositoryRequest struct {
	ProductID   int    `json:"product_id"`
	Name        string `json:"name"`
	Label       string `json:"label,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	URL         string `json:"url,omitempty"`
}

type PuppetModule struct {
	ID           int    `json:"id"`
	RepositoryID int    `json:"repository_id"`
	Name         string `json:"name"`
	Author       string `json:"author"`
	Version      string `json:"version"`
}

type ContentViewPuppetModule struct {
	ID             int    `json:"id"`
	PuppetModuleID int    `json:"puppet_module_id"`
	Name           string `json:"name"`
	Author         string `json:"author"`
}

type PuppetModuleRequest struct {
	ID     int    `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Author string `json:"author,omitempty"`
}

type ContentViewVersion struct {
	ID              int       `json:"id"`
	ContentViewID   int       `json:"content_view_id"`
	Version         string    `json:"version"`
	Major           int       `json:"major"`
	Minor           int       `json:"minor"`
	Description     string    `json:"description"`
	PackageCount    int       `json:"package_count"`
	EnvironmentIDs  []int     `json:"environment_ids"`
	RepositoryIDs   []int     `json:"repository_ids"`
	ComponentIDs    []int     `json:"component_ids"`
	PuppetModuleIDs []int     `json:"puppet_module_ids"`
	CreatedAt       time.Time `json:"created_at"`
}

type ContentView struct {
	ID             int                       `json:"id"`
	OrganizationID int                       `json:"organization_id"`
	Name           string                    `json:"name"`
	Label          string                    `json:"label"`
	Description    string                    `json:"description"`
	Composite      bool                      `json:"composite"`
	NextVersion    int                       `json:"next_version"`
	RepositoryIDs  []int                     `json:"repository_ids"`
	Repositories   []Reference               `json:"repositories"`
	ComponentIDs   []int                     `json:"component_ids"`
	Components     []ContentViewVersion      `json:"components"`
	PuppetModules  []ContentViewPuppetModule `json:"puppet_modules"`
	Versions       []ContentViewVersion      `json:"versions"`
	CreatedAt      time.Time                 `json:"created_at"`
	UpdatedAt      time.Time                 `json:"updated_at"`
}

// ContentViewRequest is used for create and update. On update only the
// fields present in the document change.
type ContentViewRequest struct {
	OrganizationID int     `json:"organization_id,omitempty"`
	Name           *string `json:"name,omitempty"`
	Label          *string `json:"label,omitempty"`
	Description    *string `json:"description,omitempty"`
	Composite      bool    `json:"composite,omitempty"`
	RepositoryIDs  *[]int  `json:"repository_ids,omitempty"`
	ComponentIDs   *[]int  `json:"component_ids,omitempty"`
}

type CopyRequest struct {
	Name string `json:"name"`
}

type PublishRequest struct {
	Description string `json:"description,omitempty"`
}

type PromoteRequest struct {
	EnvironmentID int  `json:"environment_id"`
	Force         bool `json:"force,omitempty"`
}

type RemoveFromEnvironmentRequest struct {
	EnvironmentID int `json:"environment_id"`
}

type TaskHumanized struct {
	Action string   `json:"action"`
	Errors []string `json:"errors"`
}

type Task struct {
	ID           string        `json:"id"`
	Label        string        `json:"label"`
	State        string        `json:"state"`
	Result       string        `json:"result"`
	Progress     float64       `json:"progress"`
	Pending      bool          `json:"pending"`
	Humanized    TaskHumanized `json:"humanized"`
	ResourceType string        `json:"resource_type"`
	ResourceID   int           `json:"resource_id"`
	StartedAt    *time.Time    `json:"started_at"`
	EndedAt      *time.Time    `json:"ended_at"`
}

type HostParameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Host struct {
	ID                     int             `json:"id"`
	Name                   string          `json:"name"`
	OrganizationID         int             `json:"organization_id"`
	IP                     string          `json:"ip"`
	ContentViewID          *int            `json:"content_view_id"`
	LifecycleEnvironmentID *int            `json:"lifecycle_environment_id"`
	Parameters             []HostParameter `json:"parameters"`
}

type HostRequest struct {
	Name                   string          `json:"name"`
	OrganizationID         int             `json:"organization_id"`
	IP                     string          `json:"ip,omitempty"`
	ContentViewID          *int            `json:"content_view_id,omitempty"`
	LifecycleEnvironmentID *int            `json:"lifecycle_environment_id,omitempty"`
	Parameters             []HostParameter `json:"host_parameters_attributes,omitempty"`
}

type TemplateInput struct {
	ID          int    `json:"id,omitempty"`
	Name        string `json:"name"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
	InputType   string `json:"input_type,omitempty"`
}

type JobTemplate struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	JobCategory    string          `json:"job_category"`
	ProviderType   string          `json:"provider_type"`
	Description    string          `json:"description"`
	Template       string          `json:"template"`
	Snippet        bool            `json:"snippet"`
	Locked         bool            `json:"locked"`
	TemplateInputs []TemplateInput `json:"template_inputs"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// JobTemplateRequest is used for create and update.
type JobTemplateRequest struct {
	Name           *string         `json:"name,omitempty"`
	JobCategory    *string         `json:"job_category,omitempty"`
	ProviderType   *string         `json:"provider_type,omitempty"`
	Description    *string         `json:"description,omitempty"`
	Template       *string         `json:"template,omitempty"`
	Snippet        bool            `json:"snippet,omitempty"`
	TemplateInputs []TemplateInput `json:"template_inputs,omitempty"`
}

type PreviewRequest struct {
	InputValues map[string]string `json:"input_values,omitempty"`
	HostID      int               `json:"host_id,omitempty"`
}

type Targeting struct {
	HostIDs []int       `json:"host_ids"`
	Hosts   []Reference `json:"hosts,omitempty"`
}

type Scheduling struct {
	StartAt *time.Time `json:"start_at,omitempty"`
}

type JobInvocation struct {
	ID          int               `json:"id"`
	TemplateID  int               `json:"job_template_id"`
	JobCategory string            `json:"job_category"`
	Description string            `json:"description"`
	Status      string            `json:"status_label"`
	Succeeded   int               `json:"succeeded"`
	Failed      int               `json:"failed"`
	Pending     int               `json:"pending"`
	Total       int               `json:"total"`
	Inputs      map[string]string `json:"inputs"`
	Targeting   Targeting         `json:"targeting"`
	Scheduling  Scheduling        `json:"scheduling"`
	CreatedAt   time.Time         `json:"created_at"`
}

type JobInvocationRequest struct {
	JobTemplateID     int               `json:"job_template_id"`
	Inputs            map[string]string `json:"inputs,omitempty"`
	Targeting         Targeting         `json:"targeting"`
	Scheduling        Scheduling        `json:"scheduling,omitempty"`
	DescriptionFormat string            `json:"description_format,omitempty"`
}

type OutputLine struct {
	Output     string `json:"output"`
	OutputType string `json:"output_type"`
}

type JobOutput struct {
	HostID     int          `json:"host_id"`
	HostName   string       `json:"host_name"`
	Status     string       `json:"status"`
	ExitStatus *int         `json:"exit_status"`
	Complete   bool         `json:"complete"`
	Output     []OutputLine `json:"output"`
}
