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

// TaskHandler handles HTTP requests for task operations.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// Create adds a task owned by the authenticated user.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task fields"
// @Success      201   {object}  domain.Task
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	user, _, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	task, err := h.service.Create(c.Request().Context(), user.ID, ports.CreateTaskInput{
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return err
	}

	metrics.TasksCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, task)
}

// List returns the requester's tasks, optionally filtered, sorted, and
// paginated.
//
// @Summary      List own tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        completed  query  string  false  "Filter: true or false"
// @Param        orderBy    query  string  false  "field or field:desc"
// @Param        limit      query  int     false  "Max results"
// @Param        skip       query  int     false  "Results to skip"
// @Success      200  {array}  domain.Task
// @Failure      401  {object}  errorResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	user, _, err := ctxUser(c)
	if err != nil {
		return err
	}

	tasks, err := h.service.List(c.Request().Context(), parseListQuery(c, user.ID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

// Get fetches one of the requester's tasks by id. A miss, including a task
// owned by someone else, responds 204, never 404.
//
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  domain.Task
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	user, _, err := ctxUser(c)
	if err != nil {
		return err
	}

	task, err := h.service.Get(c.Request().Context(), user.ID, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return c.NoContent(http.StatusNoContent)
		}
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// Update applies a partial change to one of the requester's tasks. Only
// description and completed are mutable.
//
// @Summary      Update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  domain.Task
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Update(c echo.Context) error {
	user, _, err := ctxUser(c)
	if err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	for key := range raw {
		if _, ok := allowedTaskKeys[key]; !ok {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: domain.ErrInvalidUpdate.Error()})
		}
	}

	update, err := decodeTaskUpdate(raw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	task, err := h.service.Update(c.Request().Context(), user.ID, c.Param("id"), update)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return c.NoContent(http.StatusNoContent)
		}
		if errors.Is(err, domain.ErrValidation) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// Delete removes one of the requester's tasks and responds with the deleted
// record.
//
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  domain.Task
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	user, _, err := ctxUser(c)
	if err != nil {
		return err
	}

	task, err := h.service.Delete(c.Request().Context(), user.ID, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return c.NoContent(http.StatusNoContent)
		}
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// UploadImage accepts a multipart "image" file (jpg/jpeg/png, up to 1MB) and
// stores it resized to 250x250 PNG on the requester's task.
//
// @Summary      Upload a task image
// @Tags         tasks
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true  "Task id"
// @Param        image  formData  file    true  "Image file (jpg, jpeg, png; max 1MB)"
// @Success      200  {object}  domain.Task
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Router       /tasks/{id}/image [post]
func (h *TaskHandler) UploadImage(c echo.Context) error {
	user, _, err := ctxUser(c)
	if err != nil {
		return err
	}

	data, err := readImageUpload(c, "image")
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("task_image", "rejected").Inc()
		return err
	}
	png, err := normalizeUpload(data)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("task_image", "rejected").Inc()
		return err
	}

	task, err := h.service.UpdateImage(c.Request().Context(), user.ID, c.Param("id"), png)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return c.NoContent(http.StatusNoContent)
		}
		metrics.UploadsTotal.WithLabelValues("task_image", "error").Inc()
		return err
	}

	metrics.UploadsTotal.WithLabelValues("task_image", "ok").Inc()
	return c.JSON(http.StatusOK, task)
}

// Image serves a task's image publicly. A missing task or image responds 204.
//
// @Summary      Fetch a task's image
// @Tags         tasks
// @Produce      png
// @Param        id   path  string  true  "Task id"
// @Success      200  {file}  binary
// @Success      204
// @Router       /tasks/{id}/image [get]
func (h *TaskHandler) Image(c echo.Context) error {
	data, err := h.service.Image(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNoImage) {
			return c.NoContent(http.StatusNoContent)
		}
		return err
	}
	return c.Blob(http.StatusOK, "image/png", data)
}

// DeleteImage clears the stored image on the requester's task.
//
// @Summary      Delete a task's image
// @Tags         tasks
// @Security     BearerAuth
// @Param        id   path  string  true  "Task id"
// @Success      200
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /tasks/{id}/image [delete]
func (h *TaskHandler) DeleteImage(c echo.Context) error {
	user, _, err := ctxUser(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteImage(c.Request().Context(), user.ID, c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return c.NoContent(http.StatusNoContent)
		}
		return err
	}
	return c.NoContent(http.StatusOK)
}

// decodeTaskUpdate unmarshals the allowed keys of a raw PATCH payload into a
// partial update.
func decodeTaskUpdate(raw map[string]json.RawMessage) (ports.TaskUpdate, error) {
	var update ports.TaskUpdate
	if v, ok := raw["description"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return update, err
		}
		update.Description = &s
	}
	if v, ok := raw["completed"]; ok {
		var b bool
		if err := json.Unmarshal(v, &b); err != nil {
			return update, err
		}
		update.Completed = &b
	}
	return update, nil
}
