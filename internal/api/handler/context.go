package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskhub/task-manager/internal/api/middleware"
	"github.com/taskhub/task-manager/internal/core/domain"
)

// ctxUser extracts the authenticated user and the request's bearer token
// injected by the Auth middleware. Presence of the user proves the middleware
// ran; its absence on a protected route is an authentication failure, not a
// programming error the client should see details of.
func ctxUser(c echo.Context) (*domain.User, string, error) {
	user, ok := c.Get(middleware.ContextUserKey).(*domain.User)
	if !ok || user == nil {
		return nil, "", echo.NewHTTPError(http.StatusUnauthorized, domain.ErrUnauthenticated.Error())
	}
	token, _ := c.Get(middleware.ContextTokenKey).(string)
	return user, token, nil
}
