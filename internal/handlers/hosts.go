package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/renzon/robottelo/api/v1"
	"github.com/renzon/robottelo/internal/services"
)

// (GET /api/v2/hosts?organization_id=)
func (h *Handler) ListHosts(c *gin.Context) {
	orgID, ok := queryID(c, "organization_id")
	if !ok {
		return
	}
	page, err := h.hostSrv.List(c.Request.Context(), orgID, listParams(c))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v1.NewList(page, v1.NewHostFromModel))
}

// (POST /api/v2/hosts)
func (h *Handler) CreateHost(c *gin.Context) {
	var req v1.HostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	params := services.HostParams{
		Name:                   req.Name,
		OrganizationID:         req.OrganizationID,
		IP:                     req.IP,
		ContentViewID:          req.ContentViewID,
		LifecycleEnvironmentID: req.LifecycleEnvironmentID,
		Parameters:             make(map[string]string, len(req.Parameters)),
	}
	for _, p := range req.Parameters {
		params.Parameters[p.Name] = p.Value
	}

	host, err := h.hostSrv.Create(c.Request.Context(), params)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, v1.NewHostFromModel(*host))
}

// (GET /api/v2/hosts/{id})
func (h *Handler) GetHost(c *gin.Context) {
	id, ok := pathID(c, "id", "host")
	if !ok {
		return
	}
	host, err := h.hostSrv.Get(c.Request.Context(), id)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v1.NewHostFromModel(*host))
}

// (DELETE /api/v2/hosts/{id})
func (h *Handler) DeleteHost(c *gin.Context) {
	id, ok := pathID(c, "id", "host")
	if !ok {
		return
	}
	if err := h.hostSrv.Delete(c.Request.Context(), id); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetHostParameter creates or replaces one host parameter
// (POST /api/v2/hosts/{id}/parameters)
func (h *Handler) SetHostParameter(c *gin.Context) {
	id, ok := pathID(c, "id", "host")
	if !ok {
		return
	}
	var req v1.HostParameter
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	host, err := h.hostSrv.SetParameter(c.Request.Context(), id, req.Name, req.Value)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v1.NewHostFromModel(*host))
}
