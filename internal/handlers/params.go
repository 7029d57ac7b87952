package handlers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/renzon/robottelo/internal/services"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
)

const maxPerPage = 1000

func listParams(c *gin.Context) services.ListParams {
	page, _ := strconv.Atoi(c.Query("page"))
	perPage, _ := strconv.Atoi(c.Query("per_page"))
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return services.ListParams{
		Search:  c.Query("search"),
		Order:   c.Query("order"),
		Page:    page,
		PerPage: perPage,
	}
}

// pathID reads an integer path parameter. Unparseable ids are reported as not found.
func pathID(c *gin.Context, name, kind string) (int, bool) {
	raw := c.Param(name)
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		abort(c, srvErrors.NewResourceNotFoundError(kind, raw))
		return 0, false
	}
	return id, true
}

// queryID reads an optional integer query parameter.
func queryID(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		abort(c, srvErrors.NewValidationError(fmt.Sprintf("%s: must be an integer", name)))
		return 0, false
	}
	return id, true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
