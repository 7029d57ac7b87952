package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/renzon/robottelo/api/v1"
	"github.com/renzon/robottelo/internal/models"
	"github.com/renzon/robottelo/internal/services"
)

// (GET /katello/api/v2/products?organization_id=)
func (h *Handler) ListProducts(c *gin.Context) {
	orgID, ok := queryID(c, "organization_id")
	if !ok {
		return
	}
	page, err := h.contentSrv.ListProducts(c.Request.Context(), orgID, listParams(c))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v1.NewList(page, v1.NewProductFromModel))
}

// (POST /katello/api/v2/products)
func (h *Handler) CreateProduct(c *gin.Context) {
	var req v1.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	p, err := h.contentSrv.CreateProduct(c.Request.Context(), req.OrganizationID, services.ProductParams{
		Name:        req.Name,
		Label:       req.Label,
		Description: req.Description,
	})
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, v1.NewProductFromModel(*p))
}

// (GET /katello/api/v2/products/{id})
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "id", "product")
	if !ok {
		return
	}
	p, err := h.contentSrv.GetProduct(c.Request.Context(), id)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v1.NewProductFromModel(*p))
}

// (GET /katello/api/v2/repositories?organization_id=)
func (h *Handler) ListRepositories(c *gin.Context) {
	orgID, ok := queryID(c, "organization_id")
	if !ok {
		return
	}
	page, err := h.contentSrv.ListRepositories(c.Request.Context(), orgID, listParams(c))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v1.NewList(page, v1.NewRepositoryFromModel))
}

// (POST /katello/api/v2/repositories)
func (h *Handler) CreateRepository(c *gin.Context) {
	var req v1.RepositoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	r, err := h.contentSrv.CreateRepository(c.Request.Context(), services.RepositoryParams{
		ProductID:   req.ProductID,
		Name:        req.Name,
		Label:       req.Label,
		ContentType: models.RepositoryType(req.ContentType),
		URL:         req.URL,
	})
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, v1.NewRepositoryFromModel(*r))
}

// (GET /katello/api/v2/repositories/{id})
func (h *Handler) GetRepository(c *gin.Context) {
	id, ok := pathID(c, "id", "repository")
	if !ok {
		return
	}
	r, err := h.contentSrv.GetRepository(c.Request.Context(), id)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v1.NewRepositoryFromModel(*r))
}

// SyncRepository starts a sync task
// (POST /katello/api/v2/repositories/{id}/sync)
func (h *Handler) SyncRepository(c *gin.Context) {
	id, ok := pathID(c, "id", "repository")
	if !ok {
		return
	}
	task, err := h.contentSrv.Sync(c.Request.Context(), id)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusAccepted, v1.NewTaskFromModel(*task))
}

// (GET /katello/api/v2/puppet_modules?organization_id=)
func (h *Handler) ListPuppetModules(c *gin.Context) {
	orgID, ok := queryID(c, "organization_id")
	if !ok {
		return
	}
	modules, err := h.contentSrv.PuppetModules(c.Request.Context(), orgID)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, fullList(modules, v1.NewPuppetModuleFromModel))
}

// (GET /foreman_tasks/api/tasks)
func (h *Handler) ListTasks(c *gin.Context) {
	page, err := h.taskSrv.List(c.Request.Context(), listParams(c))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v1.NewList(page, v1.NewTaskFromModel))
}

// (GET /foreman_tasks/api/tasks/{id})
func (h *Handler) GetTask(c *gin.Context) {
	task, err := h.taskSrv.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v1.NewTaskFromModel(*task))
}

// fullList wraps an unpaged slice in the list envelope.
func fullList[M any, T any](items []M, convert func(M) T) v1.List[T] {
	return v1.NewList(&services.ListResult[M]{
		Items:    items,
		Total:    len(items),
		Subtotal: len(items),
		Page:     1,
		PerPage:  max(len(items), 1),
	}, convert)
}
