package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"incubation-backend/internal/middleware"
	"incubation-backend/internal/models"
	"incubation-backend/internal/workflow"
)

// maxUploadSize bounds a single attached file.
const maxUploadSize = 10 << 20

// base carries what every handler group needs.
type base struct {
	service *workflow.Service
	logger  *slog.Logger
}

func newBase(service *workflow.Service, logger *slog.Logger) base {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return base{service: service, logger: logger}
}

// respondError maps workflow failure kinds onto HTTP status codes.
func (b base) respondError(c *gin.Context, err error) {
	var status int
	var label string
	switch {
	case errors.Is(err, workflow.ErrValidation):
		status, label = http.StatusBadRequest, "validation failed"
	case errors.Is(err, workflow.ErrForbidden):
		status, label = http.StatusForbidden, "forbidden"
	case errors.Is(err, workflow.ErrNotFound):
		status, label = http.StatusNotFound, "not found"
	case errors.Is(err, workflow.ErrConflict):
		status, label = http.StatusConflict, "conflict"
	default:
		b.logger.Error("request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal error",
			Message: "the request could not be completed",
		})
		return
	}
	c.JSON(status, models.ErrorResponse{Error: label, Message: err.Error()})
}

func (b base) caller(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return uuid.Nil, false
	}
	return userID, true
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   fmt.Sprintf("invalid %s", strings.ReplaceAll(name, "_", " ")),
			Message: err.Error(),
		})
		return uuid.Nil, false
	}
	return id, true
}

// bind decodes a JSON or form body according to the request content type.
func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBind(req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return false
	}
	return true
}

// readUpload returns the named multipart file, or nil when the request
// carries none.
func readUpload(c *gin.Context, field string) (*models.Upload, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, nil
	}
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	if header.Size > maxUploadSize {
		return nil, fmt.Errorf("%s exceeds %d bytes", header.Filename, maxUploadSize)
	}

	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		return nil, err
	}

	return &models.Upload{
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Data:     data,
	}, nil
}

func upload(c *gin.Context, field string) (*models.Upload, bool) {
	file, err := readUpload(c, field)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   fmt.Sprintf("invalid %s file", field),
			Message: err.Error(),
		})
		return nil, false
	}
	return file, true
}
