package handler

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskhub/task-manager/internal/core/ports"
)

type createTaskRequest struct {
	Description string `json:"description" validate:"required"`
	Completed   bool   `json:"completed"`
}

// allowedTaskKeys is the exhaustive set of JSON keys a PATCH /tasks/:id
// payload may carry; any other key rejects the whole request.
var allowedTaskKeys = map[string]struct{}{
	"description": {},
	"completed":   {},
}

// parseListQuery translates the list query string into a repository filter.
//
//	completed: present means filter; only the literal "true" selects
//	           completed tasks, anything else selects incomplete ones.
//	orderBy:   "field" or "field:desc"; any suffix other than "desc" sorts
//	           ascending.
//	limit/skip: applied only when they parse as integers.
func parseListQuery(c echo.Context, ownerID string) ports.ListTasksFilter {
	filter := ports.ListTasksFilter{
		OwnerID: ownerID,
		Limit:   -1,
		Skip:    -1,
	}

	if completed := c.QueryParam("completed"); completed != "" {
		v := completed == "true"
		filter.Completed = &v
	}

	if orderBy := c.QueryParam("orderBy"); orderBy != "" {
		parts := strings.SplitN(orderBy, ":", 2)
		filter.SortField = parts[0]
		filter.SortDesc = len(parts) == 2 && parts[1] == "desc"
	}

	if limit, err := strconv.ParseInt(c.QueryParam("limit"), 10, 64); err == nil {
		filter.Limit = limit
	}
	if skip, err := strconv.ParseInt(c.QueryParam("skip"), 10, 64); err == nil {
		filter.Skip = skip
	}

	return filter
}
