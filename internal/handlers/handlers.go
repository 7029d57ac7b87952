package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/renzon/robottelo/internal/services"
)

// Services are the dependencies of the handlers.
type Services struct {
	Organizations  *services.OrganizationService
	Users          *services.UserService
	Tasks          *services.TaskService
	Content        *services.ContentService
	ContentViews   *services.ContentViewService
	Hosts          *services.HostService
	JobTemplates   *services.JobTemplateService
	JobInvocations *services.JobInvocationService
}

// SessionIssuer creates the UI session token of a logged-in user.
type SessionIssuer interface {
	Issue(login string) (string, error)
	CookieName() string
}

type Handler struct {
	orgSrv      *services.OrganizationService
	userSrv     *services.UserService
	taskSrv     *services.TaskService
	contentSrv  *services.ContentService
	viewSrv     *services.ContentViewService
	hostSrv     *services.HostService
	templateSrv *services.JobTemplateService
	jobSrv      *services.JobInvocationService
	sessions    SessionIssuer
	version     string
}

func New(s Services, sessions SessionIssuer, version string) *Handler {
	return &Handler{
		orgSrv:      s.Organizations,
		userSrv:     s.Users,
		taskSrv:     s.Tasks,
		contentSrv:  s.Content,
		viewSrv:     s.ContentViews,
		hostSrv:     s.Hosts,
		templateSrv: s.JobTemplates,
		jobSrv:      s.JobInvocations,
		sessions:    sessions,
		version:     version,
	}
}

// RegisterAPI mounts the Foreman, Katello and task routes.
func (h *Handler) RegisterAPI(r gin.IRouter) {
	foreman := r.Group("/api/v2")
	katello := r.Group("/katello/api/v2")
	tasks := r.Group("/foreman_tasks/api")

	foreman.GET("/status", h.GetStatus)
	katello.GET("/ping", h.GetStatus)

	for _, g := range []*gin.RouterGroup{foreman, katello} {
		g.GET("/organizations", h.ListOrganizations)
		g.POST("/organizations", h.CreateOrganization)
		g.GET("/organizations/:id", h.GetOrganization)
		g.DELETE("/organizations/:id", h.DeleteOrganization)
	}

	foreman.POST("/users", h.CreateUser)
	foreman.GET("/users/:id", h.GetUser)
	foreman.DELETE("/users/:id", h.DeleteUser)

	katello.GET("/organizations/:id/environments", h.ListOrganizationEnvironments)
	katello.GET("/environments", h.ListEnvironments)
	katello.POST("/environments", h.CreateEnvironment)
	katello.GET("/environments/:id", h.GetEnvironment)

	katello.GET("/products", h.ListProducts)
	katello.POST("/products", h.CreateProduct)
	katello.GET("/products/:id", h.GetProduct)
	katello.GET("/repositories", h.ListRepositories)
	katello.POST("/repositories", h.CreateRepository)
	katello.GET("/repositories/:id", h.GetRepository)
	katello.POST("/repositories/:id/sync", h.SyncRepository)
	katello.GET("/puppet_modules", h.ListPuppetModules)

	katello.GET("/content_views", h.ListContentViews)
	katello.POST("/content_views", h.CreateContentView)
	katello.GET("/content_views/:id", h.GetContentView)
	katello.PUT("/content_views/:id", h.UpdateContentView)
	katello.DELETE("/content_views/:id", h.DeleteContentView)
	katello.POST("/content_views/:id/publish", h.PublishContentView)
	katello.POST("/content_views/:id/copy", h.CopyContentView)
	katello.DELETE("/content_views/:id/environments/:environment_id", h.RemoveContentViewFromEnvironment)
	katello.GET("/content_views/:id/available_puppet_modules", h.ListAvailablePuppetModules)
	katello.GET("/content_views/:id/content_view_puppet_modules", h.ListContentViewPuppetModules)
	katello.POST("/content_views/:id/content_view_puppet_modules", h.AddContentViewPuppetModule)
	katello.GET("/content_views/:id/content_view_versions", h.ListContentViewVersions)

	katello.GET("/content_view_versions", h.ListContentViewVersions)
	katello.GET("/content_view_versions/:id", h.GetContentViewVersion)
	katello.POST("/content_view_versions/:id/promote", h.PromoteContentViewVersion)
	katello.DELETE("/content_view_versions/:id", h.DeleteContentViewVersion)

	tasks.GET("/tasks", h.ListTasks)
	tasks.GET("/tasks/:id", h.GetTask)

	foreman.GET("/hosts", h.ListHosts)
	foreman.POST("/hosts", h.CreateHost)
	foreman.GET("/hosts/:id", h.GetHost)
	foreman.DELETE("/hosts/:id", h.DeleteHost)
	foreman.POST("/hosts/:id/parameters", h.SetHostParameter)

	foreman.GET("/job_templates", h.ListJobTemplates)
	foreman.POST("/job_templates", h.CreateJobTemplate)
	foreman.GET("/job_templates/:id", h.GetJobTemplate)
	foreman.PUT("/job_templates/:id", h.UpdateJobTemplate)
	foreman.DELETE("/job_templates/:id", h.DeleteJobTemplate)
	foreman.POST("/job_templates/:id/clone", h.CloneJobTemplate)
	foreman.POST("/job_templates/:id/preview", h.PreviewJobTemplate)
	foreman.GET("/job_templates/:id/diff", h.DiffJobTemplate)
	foreman.POST("/job_templates/:id/template_inputs", h.AddTemplateInput)

	foreman.GET("/job_invocations", h.ListJobInvocations)
	foreman.POST("/job_invocations", h.CreateJobInvocation)
	foreman.GET("/job_invocations/:id", h.GetJobInvocation)
	foreman.GET("/job_invocations/:id/hosts/:host_id", h.GetJobInvocationOutput)
}
