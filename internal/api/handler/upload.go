package handler

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskhub/task-manager/internal/api/metrics"
	"github.com/taskhub/task-manager/internal/pkg/images"
)

// maxUploadBytes caps uploaded image files.
const maxUploadBytes = 1_000_000

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// readImageUpload pulls the multipart file from field and enforces the
// type-by-extension and size constraints. Violations come back as 400s with
// a descriptive message.
func readImageUpload(c echo.Context, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Upload an image please")
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Upload an image please")
	}
	if fh.Size > maxUploadBytes {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "File too large")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxUploadBytes {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "File too large")
	}
	return data, nil
}

// normalizeUpload resizes data to the stored 250x250 PNG form. Undecodable
// payloads are a client error, not a server one.
func normalizeUpload(data []byte) ([]byte, error) {
	start := time.Now()
	png, err := images.Normalize(data)
	metrics.ImageResizeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, images.ErrNotAnImage) {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Upload an image please")
		}
		return nil, err
	}
	return png, nil
}
