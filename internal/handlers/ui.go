package handlers

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"go.uber.org/zap"

	"github.com/renzon/robottelo/internal/models"
	"github.com/renzon/robottelo/internal/server"
	"github.com/renzon/robottelo/internal/services"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
)

const autoCompleteLimit = 10

//go:embed templates/*.html
var templatesFS embed.FS

var pages = parsePages(
	"login", "organizations", "organization_form",
	"job_templates", "job_template_form",
	"hosts", "host", "job_invocation",
)

var autoCompleteExpr = regexp.MustCompile(`^\s*name\s*[=~]?\s*"?([^"]*)"?\s*$`)

func parsePages(names ...string) map[string]*template.Template {
	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		out[name] = template.Must(template.ParseFS(templatesFS, "templates/layout.html", "templates/"+name+".html"))
	}
	return out
}

// page is the data every UI template renders.
type page struct {
	Title  string
	User   string
	Error  string
	Notice string
	Search string
	Action string
	Form   map[string]string

	Organizations []models.Organization
	Templates     []models.JobTemplate
	Template      *models.JobTemplate
	Hosts         []models.Host
	Host          *models.Host
	Invocation    *models.JobInvocation
}

// AutoCompleteItem is one suggestion of the search box.
type AutoCompleteItem struct {
	Label    string `json:"label"`
	Category string `json:"category"`
}

// RegisterUI mounts the web UI. Pages on protected require a session.
func (h *Handler) RegisterUI(public, protected gin.IRouter) {
	public.GET("/users/login", h.LoginPage)
	public.POST("/users/login", h.Login)
	public.GET("/users/logout", h.Logout)

	protected.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/organizations") })
	protected.GET("/organizations", h.OrganizationsPage)
	protected.GET("/organizations/new", h.NewOrganizationPage)
	protected.POST("/organizations", h.SubmitOrganization)
	protected.GET("/organizations/auto_complete_search", h.AutoCompleteOrganizations)

	protected.GET("/job_templates", h.JobTemplatesPage)
	protected.GET("/job_templates/new", h.NewJobTemplatePage)
	protected.POST("/job_templates", h.SubmitJobTemplate)
	protected.GET("/job_templates/:id/clone", h.CloneJobTemplatePage)
	protected.POST("/job_templates/:id/clone", h.SubmitJobTemplateClone)
	protected.POST("/job_templates/:id/delete", h.SubmitJobTemplateDelete)

	protected.GET("/hosts", h.HostsPage)
	protected.GET("/hosts/:id", h.HostPage)
	protected.POST("/job_invocations", h.SubmitJobInvocation)
	protected.GET("/job_invocations/:id", h.JobInvocationPage)
}

func (h *Handler) LoginPage(c *gin.Context) {
	h.renderPage(c, http.StatusOK, "login", page{Title: "Login"})
}

// Login checks the credentials and sets the session cookie.
func (h *Handler) Login(c *gin.Context) {
	login := c.PostForm("login")
	if _, err := h.userSrv.Authenticate(c.Request.Context(), login, c.PostForm("password")); err != nil {
		h.renderError(c, "login", page{Title: "Login"}, err)
		return
	}

	token, err := h.sessions.Issue(login)
	if err != nil {
		h.renderError(c, "login", page{Title: "Login"}, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.sessions.CookieName(), token, 0, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(h.sessions.CookieName(), "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/users/login")
}

func (h *Handler) OrganizationsPage(c *gin.Context) {
	p := page{Title: "Organizations", Search: c.Query("search")}
	result, err := h.orgSrv.List(c.Request.Context(), services.ListParams{Search: p.Search, PerPage: maxPerPage})
	if err != nil {
		h.renderError(c, "organizations", p, err)
		return
	}
	p.Organizations = result.Items
	p.Notice = c.Query("notice")
	h.renderPage(c, http.StatusOK, "organizations", p)
}

func (h *Handler) NewOrganizationPage(c *gin.Context) {
	h.renderPage(c, http.StatusOK, "organization_form", page{Title: "New Organization", Form: map[string]string{}})
}

func (h *Handler) SubmitOrganization(c *gin.Context) {
	form := postForm(c, "name", "label", "description")
	org, err := h.orgSrv.Create(c.Request.Context(), services.OrganizationParams{
		Name:        form["name"],
		Label:       form["label"],
		Description: form["description"],
	})
	if err != nil {
		h.renderError(c, "organization_form", page{Title: "New Organization", Form: form}, err)
		return
	}
	c.Redirect(http.StatusFound, "/organizations?notice="+url.QueryEscape("Successfully created "+org.Name))
}

// AutoCompleteOrganizations suggests `name = "..."` search terms for the typed prefix.
func (h *Handler) AutoCompleteOrganizations(c *gin.Context) {
	term := c.Query("search")
	if m := autoCompleteExpr.FindStringSubmatch(term); m != nil {
		term = m[1]
	}

	params := services.ListParams{PerPage: autoCompleteLimit, Order: "name"}
	if term = strings.TrimSpace(term); term != "" {
		params.Search = fmt.Sprintf("name ~ %q", term)
	}
	result, err := h.orgSrv.List(c.Request.Context(), params)
	if err != nil {
		abort(c, err)
		return
	}

	items := make([]AutoCompleteItem, 0, len(result.Items))
	for _, org := range result.Items {
		items = append(items, AutoCompleteItem{Label: fmt.Sprintf("name = %q", org.Name), Category: "name"})
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) JobTemplatesPage(c *gin.Context) {
	p := page{Title: "Job Templates", Search: c.Query("search"), Notice: c.Query("notice")}
	result, err := h.templateSrv.List(c.Request.Context(), "", services.ListParams{Search: p.Search, PerPage: maxPerPage})
	if err != nil {
		h.renderError(c, "job_templates", p, err)
		return
	}
	p.Templates = result.Items
	h.renderPage(c, http.StatusOK, "job_templates", p)
}

func (h *Handler) NewJobTemplatePage(c *gin.Context) {
	h.renderPage(c, http.StatusOK, "job_template_form", page{
		Title:  "New Job Template",
		Action: "/job_templates",
		Form:   map[string]string{"job_category": models.DefaultJobCategory},
	})
}

func (h *Handler) SubmitJobTemplate(c *gin.Context) {
	form := postForm(c, "name", "job_category", "provider_type", "template", "input_name", "input_required")
	params := services.JobTemplateParams{
		Name:         form["name"],
		JobCategory:  form["job_category"],
		ProviderType: form["provider_type"],
		Template:     form["template"],
	}
	if form["input_name"] != "" {
		params.Inputs = []models.TemplateInput{{Name: form["input_name"], Required: form["input_required"] == "true", InputType: "user"}}
	}

	t, err := h.templateSrv.Create(c.Request.Context(), params)
	if err != nil {
		h.renderError(c, "job_template_form", page{Title: "New Job Template", Action: "/job_templates", Form: form}, err)
		return
	}
	c.Redirect(http.StatusFound, "/job_templates?notice="+url.QueryEscape("Successfully created "+t.Name))
}

func (h *Handler) CloneJobTemplatePage(c *gin.Context) {
	t, ok := h.uiTemplate(c)
	if !ok {
		return
	}
	h.renderPage(c, http.StatusOK, "job_template_form", page{
		Title:    "Clone " + t.Name,
		Action:   fmt.Sprintf("/job_templates/%d/clone", t.ID),
		Template: t,
		Form:     map[string]string{},
	})
}

func (h *Handler) SubmitJobTemplateClone(c *gin.Context) {
	t, ok := h.uiTemplate(c)
	if !ok {
		return
	}
	form := postForm(c, "name")
	clone, err := h.templateSrv.Clone(c.Request.Context(), t.ID, form["name"])
	if err != nil {
		h.renderError(c, "job_template_form", page{
			Title:    "Clone " + t.Name,
			Action:   fmt.Sprintf("/job_templates/%d/clone", t.ID),
			Template: t,
			Form:     form,
		}, err)
		return
	}
	c.Redirect(http.StatusFound, "/job_templates?notice="+url.QueryEscape("Successfully created "+clone.Name))
}

func (h *Handler) SubmitJobTemplateDelete(c *gin.Context) {
	t, ok := h.uiTemplate(c)
	if !ok {
		return
	}
	if err := h.templateSrv.Delete(c.Request.Context(), t.ID); err != nil {
		p := page{Title: "Job Templates"}
		if result, lerr := h.templateSrv.List(c.Request.Context(), "", services.ListParams{PerPage: maxPerPage}); lerr == nil {
			p.Templates = result.Items
		}
		h.renderError(c, "job_templates", p, err)
		return
	}
	c.Redirect(http.StatusFound, "/job_templates?notice="+url.QueryEscape("Successfully deleted "+t.Name))
}

func (h *Handler) HostsPage(c *gin.Context) {
	p := page{Title: "Hosts"}
	result, err := h.hostSrv.List(c.Request.Context(), 0, services.ListParams{Search: c.Query("search"), PerPage: maxPerPage})
	if err != nil {
		h.renderError(c, "hosts", p, err)
		return
	}
	p.Hosts = result.Items
	h.renderPage(c, http.StatusOK, "hosts", p)
}

func (h *Handler) HostPage(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderError(c, "hosts", page{Title: "Hosts"}, srvErrors.NewResourceNotFoundError("host", c.Param("id")))
		return
	}
	host, err := h.hostSrv.Get(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, "hosts", page{Title: "Hosts"}, err)
		return
	}
	templates, err := h.templateSrv.List(c.Request.Context(), "", services.ListParams{PerPage: maxPerPage, Order: "name"})
	if err != nil {
		h.renderError(c, "hosts", page{Title: "Hosts"}, err)
		return
	}
	h.renderPage(c, http.StatusOK, "host", page{Title: host.Name, Host: host, Templates: templates.Items})
}

// SubmitJobInvocation runs the selected template on the host of the run-job form.
func (h *Handler) SubmitJobInvocation(c *gin.Context) {
	form := postForm(c, "host_id", "job_template_id", "command", "start_at")
	hostID, _ := strconv.Atoi(form["host_id"])
	templateID, _ := strconv.Atoi(form["job_template_id"])

	params := services.JobInvocationParams{
		TemplateID: templateID,
		HostIDs:    []int{hostID},
		Inputs:     map[string]string{},
	}
	if form["command"] != "" {
		params.Inputs["command"] = form["command"]
	}
	if form["start_at"] != "" {
		startAt, err := time.Parse(time.RFC3339, form["start_at"])
		if err != nil {
			h.rerenderHost(c, hostID, srvErrors.NewValidationError("start_at: must be an RFC 3339 timestamp"))
			return
		}
		params.StartAt = &startAt
	}

	inv, err := h.jobSrv.Create(c.Request.Context(), params)
	if err != nil {
		h.rerenderHost(c, hostID, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/job_invocations/%d", inv.ID))
}

func (h *Handler) JobInvocationPage(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderError(c, "hosts", page{Title: "Job Invocation"}, srvErrors.NewResourceNotFoundError("job invocation", c.Param("id")))
		return
	}
	inv, err := h.jobSrv.Get(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, "hosts", page{Title: "Job Invocation"}, err)
		return
	}
	h.renderPage(c, http.StatusOK, "job_invocation", page{Title: inv.Description, Invocation: inv})
}

func (h *Handler) rerenderHost(c *gin.Context, hostID int, cause error) {
	p := page{Title: "Hosts"}
	if host, err := h.hostSrv.Get(c.Request.Context(), hostID); err == nil {
		p.Title, p.Host = host.Name, host
		if templates, err := h.templateSrv.List(c.Request.Context(), "", services.ListParams{PerPage: maxPerPage, Order: "name"}); err == nil {
			p.Templates = templates.Items
		}
		h.renderError(c, "host", p, cause)
		return
	}
	h.renderError(c, "hosts", p, cause)
}

func (h *Handler) uiTemplate(c *gin.Context) (*models.JobTemplate, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err == nil {
		var t *models.JobTemplate
		if t, err = h.templateSrv.Get(c.Request.Context(), id); err == nil {
			return t, true
		}
	} else {
		err = srvErrors.NewResourceNotFoundError("job template", c.Param("id"))
	}
	h.renderError(c, "job_templates", page{Title: "Job Templates"}, err)
	return nil, false
}

func (h *Handler) renderError(c *gin.Context, name string, p page, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		zap.S().Named("ui").Errorw("page failed", "path", c.FullPath(), "error", err)
		p.Error = "internal server error"
	} else {
		p.Error = err.Error()
	}
	h.renderPage(c, status, name, p)
}

func (h *Handler) renderPage(c *gin.Context, status int, name string, p page) {
	p.User = c.GetString(server.SessionUserKey)
	c.Render(status, render.HTML{Template: pages[name], Name: "layout", Data: p})
}

func postForm(c *gin.Context, keys ...string) map[string]string {
	form := make(map[string]string, len(keys))
	for _, k := range keys {
		form[k] = strings.TrimSpace(c.PostForm(k))
	}
	return form
}
