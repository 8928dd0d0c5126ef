package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskhub/task-manager/internal/api/metrics"
	"github.com/taskhub/task-manager/internal/core/domain"
	"github.com/taskhub/task-manager/internal/core/ports"
)

// UserHandler handles HTTP requests for accounts, sessions, and avatars.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Signup creates a new account and issues the first session token.
//
// @Summary      Sign up
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /users [post]
func (h *UserHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	user, token, err := h.service.Signup(c.Request().Context(), ports.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrEmailTaken) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return err
	}

	metrics.SignupsTotal.Inc()
	return c.JSON(http.StatusCreated, authResponse{User: user, Token: token})
}

// Login authenticates by email/password and issues a fresh session token.
//
// @Summary      Log in
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Router       /users/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	user, token, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidLogin) {
			metrics.LoginsTotal.WithLabelValues("rejected").Inc()
			return c.JSON(http.StatusBadRequest, errorResponse{Error: domain.ErrInvalidLogin.Error()})
		}
		return err
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, authResponse{User: user, Token: token})
}

// Logout ends the current session only; other issued tokens stay valid.
//
// @Summary      Log out the current session
// @Tags         users
// @Security     BearerAuth
// @Success      200
// @Failure      401  {object}  errorResponse
// @Router       /users/logout [post]
func (h *UserHandler) Logout(c echo.Context) error {
	user, token, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.service.Logout(c.Request().Context(), user, token); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}

// LogoutAll ends every session of the authenticated user.
//
// @Summary      Log out all sessions
// @Tags         users
// @Security     BearerAuth
// @Success      200
// @Failure      401  {object}  errorResponse
// @Router       /users/logoutAll [post]
func (h *UserHandler) LogoutAll(c echo.Context) error {
	user, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.service.LogoutAll(c.Request().Context(), user); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}

// Me returns the authenticated user's profile.
//
// @Summary      Get own profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateMe applies a partial profile update. Keys outside
// {name, email, password, age} reject the whole request with 400.
// Validation failures on allowed fields surface as a 500 with the raw error;
// signup returns 400 for the same input. Kept as-is for client compatibility.
//
// @Summary      Update own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /users/me [patch]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	user, _, err := ctxUser(c)
	if err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	for key := range raw {
		if _, ok := allowedProfileKeys[key]; !ok {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: domain.ErrInvalidUpdate.Error()})
		}
	}

	update, err := decodeProfileUpdate(raw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	updated, err := h.service.UpdateProfile(c.Request().Context(), user, update)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrEmailTaken) {
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteMe removes the account and all its tasks, then responds with the
// deleted user.
//
// @Summary      Delete own account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Router       /users/me [delete]
func (h *UserHandler) DeleteMe(c echo.Context) error {
	user, _, err := ctxUser(c)
	if err != nil {
		return err
	}

	deleted, err := h.service.DeleteAccount(c.Request().Context(), user)
	if err != nil {
		return err
	}

	metrics.AccountsDeletedTotal.Inc()
	return c.JSON(http.StatusOK, deleted)
}

// UploadAvatar accepts a multipart "avatar" file (jpg/jpeg/png, up to 1MB)
// and stores it resized to 250x250 PNG.
//
// @Summary      Upload avatar
// @Tags         users
// @Accept       multipart/form-data
// @Security     BearerAuth
// @Param        avatar  formData  file  true  "Image file (jpg, jpeg, png; max 1MB)"
// @Success      200
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Router       /users/me/avatar [post]
func (h *UserHandler) UploadAvatar(c echo.Context) error {
	user, _, err := ctxUser(c)
	if err != nil {
		return err
	}

	data, err := readImageUpload(c, "avatar")
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("avatar", "rejected").Inc()
		return err
	}
	png, err := normalizeUpload(data)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("avatar", "rejected").Inc()
		return err
	}

	if err := h.service.UpdateAvatar(c.Request().Context(), user, png); err != nil {
		metrics.UploadsTotal.WithLabelValues("avatar", "error").Inc()
		return err
	}

	metrics.UploadsTotal.WithLabelValues("avatar", "ok").Inc()
	return c.NoContent(http.StatusOK)
}

// Avatar serves a user's avatar publicly. A missing user or avatar responds
// 204, never 404.
//
// @Summary      Fetch a user's avatar
// @Tags         users
// @Produce      png
// @Param        id   path  string  true  "User id"
// @Success      200  {file}  binary
// @Success      204
// @Router       /users/{id}/avatar [get]
func (h *UserHandler) Avatar(c echo.Context) error {
	data, err := h.service.Avatar(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNoImage) {
			return c.NoContent(http.StatusNoContent)
		}
		return err
	}
	return c.Blob(http.StatusOK, "image/png", data)
}

// DeleteAvatar clears the stored avatar.
//
// @Summary      Delete own avatar
// @Tags         users
// @Security     BearerAuth
// @Success      200
// @Failure      401  {object}  errorResponse
// @Router       /users/me/avatar [delete]
func (h *UserHandler) DeleteAvatar(c echo.Context) error {
	user, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteAvatar(c.Request().Context(), user); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}

// decodeProfileUpdate unmarshals the allowed keys of a raw PATCH payload into
// a partial update.
func decodeProfileUpdate(raw map[string]json.RawMessage) (ports.ProfileUpdate, error) {
	var update ports.ProfileUpdate
	if v, ok := raw["name"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return update, err
		}
		update.Name = &s
	}
	if v, ok := raw["email"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return update, err
		}
		update.Email = &s
	}
	if v, ok := raw["password"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return update, err
		}
		update.Password = &s
	}
	if v, ok := raw["age"]; ok {
		var n int
		if err := json.Unmarshal(v, &n); err != nil {
			return update, err
		}
		update.Age = &n
	}
	return update, nil
}
