package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/renzon/robottelo/api/v1"
	"github.com/renzon/robottelo/internal/services"
)

// (GET /api/v2/job_templates?job_category=)
func (h *Handler) ListJobTemplates(c *gin.Context) {
	page, err := h.templateSrv.List(c.Request.Context(), c.Query("job_category"), listParams(c))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v1.NewList(page, v1.NewJobTemplateFromModel))
}

// (POST /api/v2/job_templates)
func (h *Handler) CreateJobTemplate(c *gin.Context) {
	var req v1.JobTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	params := services.JobTemplateParams{
		Name:         deref(req.Name),
		JobCategory:  deref(req.JobCategory),
		ProviderType: deref(req.ProviderType),
		Description:  deref(req.Description),
		Template:     deref(req.Template),
		Snippet:      req.Snippet,
	}
	for _, in := range req.TemplateInputs {
		params.Inputs = append(params.Inputs, in.ToModel())
	}

	t, err := h.templateSrv.Create(c.Request.Context(), params)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, v1.NewJobTemplateFromModel(*t))
}

// (GET /api/v2/job_templates/{id})
func (h *Handler) GetJobTemplate(c *gin.Context) {
	id, ok := pathID(c, "id", "job template")
	if !ok {
		return
	}
	t, err := h.templateSrv.Get(c.Request.Context(), id)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v1.NewJobTemplateFromModel(*t))
}

// (PUT /api/v2/job_templates/{id})
func (h *Handler) UpdateJobTemplate(c *gin.Context) {
	id, ok := pathID(c, "id", "job template")
	if !ok {
		return
	}
	var req v1.JobTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	t, err := h.templateSrv.Update(c.Request.Context(), id, services.JobTemplateUpdate{
		Name:        req.Name,
		JobCategory: req.JobCategory,
		Description: req.Description,
		Template:    req.Template,
	})
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v1.NewJobTemplateFromModel(*t))
}

// (DELETE /api/v2/job_templates/{id})
func (h *Handler) DeleteJobTemplate(c *gin.Context) {
	id, ok := pathID(c, "id", "job template")
	if !ok {
		return
	}
	if err := h.templateSrv.Delete(c.Request.Context(), id); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// (POST /api/v2/job_templates/{id}/clone)
func (h *Handler) CloneJobTemplate(c *gin.Context) {
	id, ok := pathID(c, "id", "job template")
	if !ok {
		return
	}
	var req v1.CopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	t, err := h.templateSrv.Clone(c.Request.Context(), id, req.Name)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, v1.NewJobTemplateFromModel(*t))
}

// PreviewJobTemplate renders the template without running it
// (POST /api/v2/job_templates/{id}/preview)
func (h *Handler) PreviewJobTemplate(c *gin.Context) {
	id, ok := pathID(c, "id", "job template")
	if !ok {
		return
	}
	var req v1.PreviewRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	out, err := h.templateSrv.Preview(c.Request.Context(), id, req.InputValues, req.HostID)
	if err != nil {
		abort(c, err)
		return
	}
	c.String(http.StatusOK, out)
}

// DiffJobTemplate returns a unified diff of two template bodies
// (GET /api/v2/job_templates/{id}/diff?other_id=)
func (h *Handler) DiffJobTemplate(c *gin.Context) {
	id, ok := pathID(c, "id", "job template")
	if !ok {
		return
	}
	otherID, ok := queryID(c, "other_id")
	if !ok {
		return
	}

	diff, err := h.templateSrv.Diff(c.Request.Context(), id, otherID)
	if err != nil {
		abort(c, err)
		return
	}
	c.String(http.StatusOK, diff)
}

// (POST /api/v2/job_templates/{id}/template_inputs)
func (h *Handler) AddTemplateInput(c *gin.Context) {
	id, ok := pathID(c, "id", "job template")
	if !ok {
		return
	}
	var req v1.TemplateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	t, err := h.templateSrv.AddInput(c.Request.Context(), id, req.ToModel())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, v1.NewJobTemplateFromModel(*t))
}

// (GET /api/v2/job_invocations)
func (h *Handler) ListJobInvocations(c *gin.Context) {
	page, err := h.jobSrv.List(c.Request.Context(), listParams(c))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v1.NewList(page, v1.NewJobInvocationFromModel))
}

// CreateJobInvocation schedules a job on the targeted hosts
// (POST /api/v2/job_invocations)
func (h *Handler) CreateJobInvocation(c *gin.Context) {
	var req v1.JobInvocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	inv, err := h.jobSrv.Create(c.Request.Context(), services.JobInvocationParams{
		TemplateID:  req.JobTemplateID,
		Description: req.DescriptionFormat,
		Inputs:      req.Inputs,
		HostIDs:     req.Targeting.HostIDs,
		StartAt:     req.Scheduling.StartAt,
	})
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, v1.NewJobInvocationFromModel(*inv))
}

// (GET /api/v2/job_invocations/{id})
func (h *Handler) GetJobInvocation(c *gin.Context) {
	id, ok := pathID(c, "id", "job invocation")
	if !ok {
		return
	}
	inv, err := h.jobSrv.Get(c.Request.Context(), id)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v1.NewJobInvocationFromModel(*inv))
}

// (GET /api/v2/job_invocations/{id}/hosts/{host_id})
func (h *Handler) GetJobInvocationOutput(c *gin.Context) {
	id, ok := pathID(c, "id", "job invocation")
	if !ok {
		return
	}
	hostID, ok := pathID(c, "host_id", "host")
	if !ok {
		return
	}
	target, err := h.jobSrv.Output(c.Request.Context(), id, hostID)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v1.NewJobOutputFromModel(*target))
}
