package handler

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/taskhub/task-manager/internal/core/domain"
	"github.com/taskhub/task-manager/internal/core/ports"
)

type stubTaskService struct {
	createFn      func(ctx context.Context, ownerID string, input ports.CreateTaskInput) (*domain.Task, error)
	listFn        func(ctx context.Context, filter ports.ListTasksFilter) ([]*domain.Task, error)
	getFn         func(ctx context.Context, ownerID, taskID string) (*domain.Task, error)
	updateFn      func(ctx context.Context, ownerID, taskID string, update ports.TaskUpdate) (*domain.Task, error)
	deleteFn      func(ctx context.Context, ownerID, taskID string) (*domain.Task, error)
	updateImageFn func(ctx context.Context, ownerID, taskID string, png []byte) (*domain.Task, error)
	imageFn       func(ctx context.Context, taskID string) ([]byte, error)
	deleteImageFn func(ctx context.Context, ownerID, taskID string) error
}

func (s *stubTaskService) Create(ctx context.Context, ownerID string, input ports.CreateTaskInput) (*domain.Task, error) {
	return s.createFn(ctx, ownerID, input)
}

func (s *stubTaskService) List(ctx context.Context, filter ports.ListTasksFilter) ([]*domain.Task, error) {
	return s.listFn(ctx, filter)
}

func (s *stubTaskService) Get(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	return s.getFn(ctx, ownerID, taskID)
}

func (s *stubTaskService) Update(ctx context.Context, ownerID, taskID string, update ports.TaskUpdate) (*domain.Task, error) {
	return s.updateFn(ctx, ownerID, taskID, update)
}

func (s *stubTaskService) Delete(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	return s.deleteFn(ctx, ownerID, taskID)
}

func (s *stubTaskService) UpdateImage(ctx context.Context, ownerID, taskID string, data []byte) (*domain.Task, error) {
	return s.updateImageFn(ctx, ownerID, taskID, data)
}

func (s *stubTaskService) Image(ctx context.Context, taskID string) ([]byte, error) {
	return s.imageFn(ctx, taskID)
}

func (s *stubTaskService) DeleteImage(ctx context.Context, ownerID, taskID string) error {
	return s.deleteImageFn(ctx, ownerID, taskID)
}

func TestTaskHandler_Create(t *testing.T) {
	task := &domain.Task{ID: "task_1", Description: "buy milk", OwnerID: "user_1"}
	svc := &stubTaskService{
		createFn: func(_ context.Context, ownerID string, input ports.CreateTaskInput) (*domain.Task, error) {
			if ownerID != "user_1" {
				t.Fatalf("expected owner from the context, got %q", ownerID)
			}
			if input.Description != "buy milk" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return task, nil
		},
	}

	c, rec := newJSONContext(http.MethodPost, "/tasks", `{"description":"buy milk"}`)
	setAuth(c, authedUser(), "tok")

	if err := NewTaskHandler(svc).Create(c); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"owner":"user_1"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestParseListQuery(t *testing.T) {
	cases := []struct {
		name  string
		query string
		check func(t *testing.T, f ports.ListTasksFilter)
	}{
		{"empty", "", func(t *testing.T, f ports.ListTasksFilter) {
			if f.Completed != nil || f.SortField != "" || f.Limit != -1 || f.Skip != -1 {
				t.Fatalf("expected neutral filter, got %+v", f)
			}
		}},
		{"completed true", "completed=true", func(t *testing.T, f ports.ListTasksFilter) {
			if f.Completed == nil || !*f.Completed {
				t.Fatalf("expected completed filter, got %+v", f)
			}
		}},
		{"completed anything else means false", "completed=yes", func(t *testing.T, f ports.ListTasksFilter) {
			if f.Completed == nil || *f.Completed {
				t.Fatalf("expected incomplete filter, got %+v", f)
			}
		}},
		{"order ascending", "orderBy=createdAt", func(t *testing.T, f ports.ListTasksFilter) {
			if f.SortField != "createdAt" || f.SortDesc {
				t.Fatalf("expected ascending createdAt, got %+v", f)
			}
		}},
		{"order descending", "orderBy=createdAt:desc", func(t *testing.T, f ports.ListTasksFilter) {
			if f.SortField != "createdAt" || !f.SortDesc {
				t.Fatalf("expected descending createdAt, got %+v", f)
			}
		}},
		{"unknown direction sorts ascending", "orderBy=createdAt:up", func(t *testing.T, f ports.ListTasksFilter) {
			if f.SortField != "createdAt" || f.SortDesc {
				t.Fatalf("expected ascending fallback, got %+v", f)
			}
		}},
		{"pagination", "limit=10&skip=20", func(t *testing.T, f ports.ListTasksFilter) {
			if f.Limit != 10 || f.Skip != 20 {
				t.Fatalf("expected limit 10 skip 20, got %+v", f)
			}
		}},
		{"non-numeric pagination ignored", "limit=ten&skip=twenty", func(t *testing.T, f ports.ListTasksFilter) {
			if f.Limit != -1 || f.Skip != -1 {
				t.Fatalf("expected pagination to stay unset, got %+v", f)
			}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/tasks?"+tc.query, nil)
			c := e.NewContext(req, httptest.NewRecorder())

			f := parseListQuery(c, "user_1")
			if f.OwnerID != "user_1" {
				t.Fatalf("expected owner scoping, got %+v", f)
			}
			tc.check(t, f)
		})
	}
}

func TestTaskHandler_Get_MissReturns204(t *testing.T) {
	svc := &stubTaskService{
		getFn: func(context.Context, string, string) (*domain.Task, error) {
			return nil, domain.ErrTaskNotFound
		},
	}

	c, rec := newJSONContext(http.MethodGet, "/tasks/task_404", "")
	setAuth(c, authedUser(), "tok")
	c.SetParamNames("id")
	c.SetParamValues("task_404")

	if err := NewTaskHandler(svc).Get(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for a miss, got %d", rec.Code)
	}
}

func TestTaskHandler_Update(t *testing.T) {
	updated := &domain.Task{ID: "task_1", Description: "buy milk", Completed: true, OwnerID: "user_1"}
	svc := &stubTaskService{
		updateFn: func(_ context.Context, ownerID, taskID string, update ports.TaskUpdate) (*domain.Task, error) {
			if ownerID != "user_1" || taskID != "task_1" {
				t.Fatalf("unexpected scope: %s/%s", ownerID, taskID)
			}
			if update.Completed == nil || !*update.Completed || update.Description != nil {
				t.Fatalf("unexpected update: %+v", update)
			}
			return updated, nil
		},
	}

	c, rec := newJSONContext(http.MethodPatch, "/tasks/task_1", `{"completed":true}`)
	setAuth(c, authedUser(), "tok")
	c.SetParamNames("id")
	c.SetParamValues("task_1")

	if err := NewTaskHandler(svc).Update(c); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"completed":true`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestTaskHandler_Update_UnknownKey(t *testing.T) {
	svc := &stubTaskService{
		updateFn: func(context.Context, string, string, ports.TaskUpdate) (*domain.Task, error) {
			t.Fatal("service must not be called for a disallowed key")
			return nil, nil
		},
	}

	c, rec := newJSONContext(http.MethodPatch, "/tasks/task_1", `{"completed":true,"priority":5}`)
	setAuth(c, authedUser(), "tok")
	c.SetParamNames("id")
	c.SetParamValues("task_1")

	if err := NewTaskHandler(svc).Update(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid updates!") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestTaskHandler_Delete(t *testing.T) {
	deleted := &domain.Task{ID: "task_1", Description: "buy milk", OwnerID: "user_1"}
	svc := &stubTaskService{
		deleteFn: func(context.Context, string, string) (*domain.Task, error) {
			return deleted, nil
		},
	}

	c, rec := newJSONContext(http.MethodDelete, "/tasks/task_1", "")
	setAuth(c, authedUser(), "tok")
	c.SetParamNames("id")
	c.SetParamValues("task_1")

	if err := NewTaskHandler(svc).Delete(c); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "buy milk") {
		t.Fatalf("expected the deleted task in the body, got %s", rec.Body.String())
	}
}

// newMultipartContext builds an echo context carrying one uploaded file.
func newMultipartContext(t *testing.T, target, field, filename string, content []byte) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("multipart setup failed: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("multipart write failed: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("multipart close failed: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}
	return buf.Bytes()
}

func TestTaskHandler_UploadImage(t *testing.T) {
	task := &domain.Task{ID: "task_1", Description: "buy milk", OwnerID: "user_1"}
	var stored []byte
	svc := &stubTaskService{
		updateImageFn: func(_ context.Context, _, _ string, data []byte) (*domain.Task, error) {
			stored = data
			return task, nil
		},
	}

	c, rec := newMultipartContext(t, "/tasks/task_1/image", "image", "photo.png", tinyPNG(t))
	setAuth(c, authedUser(), "tok")
	c.SetParamNames("id")
	c.SetParamValues("task_1")

	if err := NewTaskHandler(svc).UploadImage(c); err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "buy milk") {
		t.Fatalf("expected the task in the body, got %s", rec.Body.String())
	}

	// The stored blob is the normalized 250x250 PNG, not the original upload.
	img, err := png.Decode(bytes.NewReader(stored))
	if err != nil {
		t.Fatalf("stored blob is not a png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 250 || b.Dy() != 250 {
		t.Fatalf("expected 250x250, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestTaskHandler_UploadImage_Rejections(t *testing.T) {
	svc := &stubTaskService{
		updateImageFn: func(context.Context, string, string, []byte) (*domain.Task, error) {
			t.Fatal("service must not be called for a rejected upload")
			return nil, nil
		},
	}
	h := NewTaskHandler(svc)

	cases := []struct {
		name     string
		field    string
		filename string
		content  []byte
		message  string
	}{
		{"wrong field", "file", "photo.png", tinyPNG(t), "Upload an image please"},
		{"disallowed extension", "image", "notes.txt", []byte("hello"), "Upload an image please"},
		{"undecodable image", "image", "photo.png", []byte("not a png"), "Upload an image please"},
		{"oversized file", "image", "photo.png", make([]byte, maxUploadBytes+1), "File too large"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newMultipartContext(t, "/tasks/task_1/image", tc.field, tc.filename, tc.content)
			setAuth(c, authedUser(), "tok")
			c.SetParamNames("id")
			c.SetParamValues("task_1")

			err := h.UploadImage(c)
			httpErr, ok := err.(*echo.HTTPError)
			if !ok {
				t.Fatalf("expected *echo.HTTPError, got %v", err)
			}
			if httpErr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", httpErr.Code)
			}
			if httpErr.Message != tc.message {
				t.Fatalf("expected %q, got %v", tc.message, httpErr.Message)
			}
		})
	}
}

func TestTaskHandler_Image(t *testing.T) {
	data := []byte{0x89, 'P', 'N', 'G'}
	svc := &stubTaskService{
		imageFn: func(_ context.Context, taskID string) ([]byte, error) {
			if taskID == "task_1" {
				return data, nil
			}
			return nil, domain.ErrNoImage
		},
	}
	h := NewTaskHandler(svc)

	c, rec := newJSONContext(http.MethodGet, "/tasks/task_1/image", "")
	c.SetParamNames("id")
	c.SetParamValues("task_1")
	if err := h.Image(c); err != nil {
		t.Fatalf("image fetch failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "image/png" {
		t.Fatalf("expected image/png, got %q", ct)
	}

	c, rec = newJSONContext(http.MethodGet, "/tasks/task_404/image", "")
	c.SetParamNames("id")
	c.SetParamValues("task_404")
	if err := h.Image(c); err != nil {
		t.Fatalf("image fetch failed: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for a miss, got %d", rec.Code)
	}
}
