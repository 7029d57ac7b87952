package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/renzon/robottelo/api/v1"
	"github.com/renzon/robottelo/internal/services"
)

// GetStatus reports that the product is up
// (GET /api/v2/status, GET /katello/api/v2/ping)
func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, v1.Status{Result: "ok", Version: h.version})
}

// (GET /api/v2/organizations)
func (h *Handler) ListOrganizations(c *gin.Context) {
	page, err := h.orgSrv.List(c.Request.Context(), listParams(c))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v1.NewList(page, v1.NewOrganizationFromModel))
}

// (POST /api/v2/organizations)
func (h *Handler) CreateOrganization(c *gin.Context) {
	var req v1.OrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	org, err := h.orgSrv.Create(c.Request.Context(), services.OrganizationParams{
		Name:        req.Name,
		Label:       req.Label,
		Description: req.Description,
	})
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, v1.NewOrganizationFromModel(*org))
}

// (GET /api/v2/organizations/{id})
func (h *Handler) GetOrganization(c *gin.Context) {
	id, ok := pathID(c, "id", "organization")
	if !ok {
		return
	}
	org, err := h.orgSrv.Get(c.Request.Context(), id)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v1.NewOrganizationFromModel(*org))
}

// (DELETE /api/v2/organizations/{id})
func (h *Handler) DeleteOrganization(c *gin.Context) {
	id, ok := pathID(c, "id", "organization")
	if !ok {
		return
	}
	if err := h.orgSrv.Delete(c.Request.Context(), id); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// (GET /katello/api/v2/organizations/{id}/environments)
func (h *Handler) ListOrganizationEnvironments(c *gin.Context) {
	id, ok := pathID(c, "id", "organization")
	if !ok {
		return
	}
	h.listEnvironments(c, id)
}

// (GET /katello/api/v2/environments?organization_id=)
func (h *Handler) ListEnvironments(c *gin.Context) {
	orgID, ok := queryID(c, "organization_id")
	if !ok {
		return
	}
	h.listEnvironments(c, orgID)
}

func (h *Handler) listEnvironments(c *gin.Context, orgID int) {
	page, err := h.orgSrv.ListEnvironments(c.Request.Context(), orgID, listParams(c))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v1.NewList(page, v1.NewLifecycleEnvironmentFromModel))
}

// (POST /katello/api/v2/environments)
func (h *Handler) CreateEnvironment(c *gin.Context) {
	var req v1.LifecycleEnvironmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	env, err := h.orgSrv.CreateEnvironment(c.Request.Context(), req.OrganizationID, services.EnvironmentParams{
		Name:        req.Name,
		Label:       req.Label,
		Description: req.Description,
		PriorID:     req.PriorID,
	})
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, v1.NewLifecycleEnvironmentFromModel(*env))
}

// (GET /katello/api/v2/environments/{id})
func (h *Handler) GetEnvironment(c *gin.Context) {
	id, ok := pathID(c, "id", "lifecycle environment")
	if !ok {
		return
	}
	env, err := h.orgSrv.GetEnvironment(c.Request.Context(), id)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v1.NewLifecycleEnvironmentFromModel(*env))
}

// (POST /api/v2/users)
func (h *Handler) CreateUser(c *gin.Context) {
	var req v1.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	u, err := h.userSrv.Create(c.Request.Context(), services.UserParams{
		Login:                 req.Login,
		Password:              req.Password,
		Firstname:             req.Firstname,
		Lastname:              req.Lastname,
		Mail:                  req.Mail,
		Admin:                 req.Admin,
		DefaultOrganizationID: req.DefaultOrganizationID,
	})
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, v1.NewUserFromModel(*u))
}

// (GET /api/v2/users/{id})
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id", "user")
	if !ok {
		return
	}
	u, err := h.userSrv.Get(c.Request.Context(), id)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v1.NewUserFromModel(*u))
}

// (DELETE /api/v2/users/{id})
func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c, "id", "user")
	if !ok {
		return
	}
	if err := h.userSrv.Delete(c.Request.Context(), id); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
