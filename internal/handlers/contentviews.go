package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/renzon/robottelo/api/v1"
	"github.com/renzon/robottelo/internal/services"
)

// (GET /katello/api/v2/content_views?organization_id=)
func (h *Handler) ListContentViews(c *gin.Context) {
	orgID, ok := queryID(c, "organization_id")
	if !ok {
		return
	}
	page, err := h.viewSrv.List(c.Request.Context(), orgID, listParams(c))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v1.NewList(page, v1.NewContentViewFromModel))
}

// (POST /katello/api/v2/content_views)
func (h *Handler) CreateContentView(c *gin.Context) {
	var req v1.ContentViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	params := services.ContentViewParams{
		Name:        deref(req.Name),
		Label:       deref(req.Label),
		Description: deref(req.Description),
		Composite:   req.Composite,
	}
	if req.RepositoryIDs != nil {
		params.RepositoryIDs = *req.RepositoryIDs
	}
	if req.ComponentIDs != nil {
		params.ComponentIDs = *req.ComponentIDs
	}

	cv, err := h.viewSrv.Create(c.Request.Context(), req.OrganizationID, params)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, v1.NewContentViewFromModel(*cv))
}

// (GET /katello/api/v2/content_views/{id})
func (h *Handler) GetContentView(c *gin.Context) {
	id, ok := pathID(c, "id", "content view")
	if !ok {
		return
	}
	cv, err := h.viewSrv.Get(c.Request.Context(), id)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v1.NewContentViewFromModel(*cv))
}

// UpdateContentView changes the fields present in the body. Repository and
// component ids replace the current sets.
// (PUT /katello/api/v2/content_views/{id})
func (h *Handler) UpdateContentView(c *gin.Context) {
	id, ok := pathID(c, "id", "content view")
	if !ok {
		return
	}
	var req v1.ContentViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	cv, err := h.viewSrv.Update(c.Request.Context(), id, services.ContentViewUpdate{
		Name:          req.Name,
		Label:         req.Label,
		Description:   req.Description,
		RepositoryIDs: req.RepositoryIDs,
		ComponentIDs:  req.ComponentIDs,
	})
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v1.NewContentViewFromModel(*cv))
}

// (DELETE /katello/api/v2/content_views/{id})
func (h *Handler) DeleteContentView(c *gin.Context) {
	id, ok := pathID(c, "id", "content view")
	if !ok {
		return
	}
	if err := h.viewSrv.Delete(c.Request.Context(), id); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PublishContentView starts a publish task
// (POST /katello/api/v2/content_views/{id}/publish)
func (h *Handler) PublishContentView(c *gin.Context) {
	id, ok := pathID(c, "id", "content view")
	if !ok {
		return
	}
	var req v1.PublishRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	task, err := h.viewSrv.Publish(c.Request.Context(), id, req.Description)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusAccepted, v1.NewTaskFromModel(*task))
}

// (POST /katello/api/v2/content_views/{id}/copy)
func (h *Handler) CopyContentView(c *gin.Context) {
	id, ok := pathID(c, "id", "content view")
	if !ok {
		return
	}
	var req v1.CopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	cv, err := h.viewSrv.Copy(c.Request.Context(), id, req.Name)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, v1.NewContentViewFromModel(*cv))
}

// (DELETE /katello/api/v2/content_views/{id}/environments/{environment_id})
func (h *Handler) RemoveContentViewFromEnvironment(c *gin.Context) {
	id, ok := pathID(c, "id", "content view")
	if !ok {
		return
	}
	envID, ok := pathID(c, "environment_id", "lifecycle environment")
	if !ok {
		return
	}
	if err := h.viewSrv.RemoveFromEnvironment(c.Request.Context(), id, envID); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// (GET /katello/api/v2/content_views/{id}/available_puppet_modules)
func (h *Handler) ListAvailablePuppetModules(c *gin.Context) {
	id, ok := pathID(c, "id", "content view")
	if !ok {
		return
	}
	modules, err := h.viewSrv.AvailablePuppetModules(c.Request.Context(), id)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, fullList(modules, v1.NewPuppetModuleFromModel))
}

// (GET /katello/api/v2/content_views/{id}/content_view_puppet_modules)
func (h *Handler) ListContentViewPuppetModules(c *gin.Context) {
	id, ok := pathID(c, "id", "content view")
	if !ok {
		return
	}
	cv, err := h.viewSrv.Get(c.Request.Context(), id)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, fullList(cv.PuppetModules, v1.NewContentViewPuppetModuleFromModel))
}

// (POST /katello/api/v2/content_views/{id}/content_view_puppet_modules)
func (h *Handler) AddContentViewPuppetModule(c *gin.Context) {
	id, ok := pathID(c, "id", "content view")
	if !ok {
		return
	}
	var req v1.PuppetModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	m, err := h.viewSrv.AddPuppetModule(c.Request.Context(), id, services.PuppetModuleParams{
		ID:     req.ID,
		Author: req.Author,
		Name:   req.Name,
	})
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, v1.NewContentViewPuppetModuleFromModel(*m))
}

// ListContentViewVersions lists the versions of one view, or of all views
// (GET /katello/api/v2/content_view_versions?content_view_id=,
// GET /katello/api/v2/content_views/{id}/content_view_versions)
func (h *Handler) ListContentViewVersions(c *gin.Context) {
	cvID, ok := queryID(c, "content_view_id")
	if !ok {
		return
	}
	if c.Param("id") != "" {
		if cvID, ok = pathID(c, "id", "content view"); !ok {
			return
		}
	}

	page, err := h.viewSrv.ListVersions(c.Request.Context(), cvID, listParams(c))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v1.NewList(page, v1.NewContentViewVersionFromModel))
}

// (GET /katello/api/v2/content_view_versions/{id})
func (h *Handler) GetContentViewVersion(c *gin.Context) {
	id, ok := pathID(c, "id", "content view version")
	if !ok {
		return
	}
	v, err := h.viewSrv.GetVersion(c.Request.Context(), id)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v1.NewContentViewVersionFromModel(*v))
}

// PromoteContentViewVersion starts a promote task
// (POST /katello/api/v2/content_view_versions/{id}/promote)
func (h *Handler) PromoteContentViewVersion(c *gin.Context) {
	id, ok := pathID(c, "id", "content view version")
	if !ok {
		return
	}
	var req v1.PromoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	task, err := h.viewSrv.Promote(c.Request.Context(), id, services.PromoteParams{EnvironmentID: req.EnvironmentID, Force: req.Force})
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusAccepted, v1.NewTaskFromModel(*task))
}

// (DELETE /katello/api/v2/content_view_versions/{id})
func (h *Handler) DeleteContentViewVersion(c *gin.Context) {
	id, ok := pathID(c, "id", "content view version")
	if !ok {
		return
	}
	if err := h.viewSrv.DeleteVersion(c.Request.Context(), id); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
