package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/custor/portal-api/internal/dto"
	apierrors "github.com/custor/portal-api/internal/errors"
	"github.com/custor/portal-api/internal/middleware"
	"github.com/custor/portal-api/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FileHandler serves project file uploads and metadata.
type FileHandler struct {
	fileService *services.FileService
	logger      *zap.Logger
}

func NewFileHandler(fileService *services.FileService, logger *zap.Logger) *FileHandler {
	return &FileHandler{fileService: fileService, logger: logger}
}

// Upload stores the multipart field "file" as the next version of that name
// in the project.
func (h *FileHandler) Upload(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	projectID, ok := parseIDParam(c, "projectId", "project ID")
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		apierrors.BadRequest(c, "File is required")
		return
	}
	body, err := header.Open()
	if err != nil {
		respondInternal(c, h.logger, fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer body.Close()

	file, err := h.fileService.Upload(c.Request.Context(), services.UploadInput{
		ProjectID:   projectID,
		UploaderID:  userID,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        body,
	})
	if err != nil {
		h.respondFileError(c, err)
		return
	}

	c.Header("Location", fmt.Sprintf("/api/files/%d", file.ID))
	c.JSON(http.StatusCreated, dto.ToFileDTO(*file))
}

// ListProjectFiles lists the current version of every file in the project.
func (h *FileHandler) ListProjectFiles(c *gin.Context) {
	projectID, ok := parseIDParam(c, "projectId", "project ID")
	if !ok {
		return
	}

	files, err := h.fileService.ListProjectFiles(c.Request.Context(), projectID)
	if err != nil {
		h.respondFileError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToFileDTOs(files))
}

func (h *FileHandler) GetFile(c *gin.Context) {
	fileID, ok := parseIDParam(c, "fileId", "file ID")
	if !ok {
		return
	}

	file, err := h.fileService.GetFile(c.Request.Context(), fileID)
	if err != nil {
		h.respondFileError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToFileDTO(*file))
}

func (h *FileHandler) respondFileError(c *gin.Context, err error) {
	if respondValidation(c, err) {
		return
	}
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, "Project not found")
	case errors.Is(err, services.ErrFileNotFound):
		apierrors.NotFound(c, "File not found")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	default:
		respondInternal(c, h.logger, err)
	}
}
