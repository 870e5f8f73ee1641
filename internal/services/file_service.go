package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/custor/portal-api/internal/constants"
	"github.com/custor/portal-api/internal/metrics"
	"github.com/custor/portal-api/internal/models"
	"github.com/custor/portal-api/internal/repository"
	"github.com/custor/portal-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FileService stores uploaded files and keeps one current version per
// (project, name).
type FileService struct {
	store         repository.Store
	blobs         storage.Storage
	notifications *NotificationService
	maxUpload     int64
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

// NewFileService creates a new FileService. maxUpload <= 0 disables the size limit.
func NewFileService(
	store repository.Store,
	blobs storage.Storage,
	notifications *NotificationService,
	maxUpload int64,
	appMetrics *metrics.Metrics,
	logger *zap.Logger,
) *FileService {
	return &FileService{
		store:         store,
		blobs:         blobs,
		notifications: notifications,
		maxUpload:     maxUpload,
		metrics:       appMetrics,
		logger:        logger,
	}
}

// UploadInput describes one uploaded file.
type UploadInput struct {
	ProjectID   uint64
	UploaderID  uint64
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// cleanFileName drops any directory part a client sent with the name.
func cleanFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// Upload writes the blob and records it as the new current version. The
// previous current version is flipped in the same transaction.
func (s *FileService) Upload(ctx context.Context, input UploadInput) (*models.File, error) {
	name := cleanFileName(input.FileName)
	if name == "" || input.Body == nil {
		return nil, invalidInput("File is required")
	}
	if tooLong(name, models.FileNameSize) {
		return nil, invalidInput(fmt.Sprintf("File name must be at most %d characters", models.FileNameSize))
	}
	if s.maxUpload > 0 && input.Size > s.maxUpload {
		return nil, invalidInput(fmt.Sprintf("File exceeds the %d byte upload limit", s.maxUpload))
	}
	contentType := input.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	project, err := s.store.Projects().FindByID(ctx, input.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	uploader, err := s.store.Users().FindByID(ctx, input.UploaderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	key := storage.NewKey(project.ID, name)
	if err := s.blobs.Put(ctx, key, input.Body, input.Size, contentType); err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	file := &models.File{
		ProjectID:   project.ID,
		Name:        name,
		ContentType: contentType,
		StorageKey:  key,
		Size:        input.Size,
		UploaderID:  uploader.ID,
		IsCurrent:   true,
		UploadedAt:  time.Now().UTC(),
	}
	var notification *models.Notification

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		latest, err := tx.Files().MaxVersion(ctx, project.ID, name)
		if err != nil {
			return fmt.Errorf("failed to read file version: %w", err)
		}
		if err := tx.Files().ClearCurrent(ctx, project.ID, name); err != nil {
			return fmt.Errorf("failed to supersede file: %w", err)
		}

		file.Version = latest + 1
		if err := tx.Files().Create(ctx, file); err != nil {
			return fmt.Errorf("failed to create file: %w", err)
		}

		if project.CreatorID == uploader.ID {
			return nil
		}
		relatedID := file.ID
		relatedType := constants.RelatedTypeFile
		notification = &models.Notification{
			UserID: project.CreatorID,
			Title:  "New File Uploaded",
			Message: clip(fmt.Sprintf("%s uploaded %s (version %d) to project %s",
				uploader.FullName(), file.Name, file.Version, project.Name), models.NotificationMessageSize),
			Type:        constants.NotificationTypeFileUpload,
			RelatedID:   &relatedID,
			RelatedType: &relatedType,
		}
		return tx.Notifications().Create(ctx, notification)
	})
	if err != nil {
		if delErr := s.blobs.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			s.logger.Error("failed to remove orphaned blob", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}

	if notification != nil {
		s.notifications.Delivered(ctx, *notification)
	}
	s.metrics.IncrementFilesUploaded()
	s.logger.Info("file uploaded",
		zap.Uint64("file_id", file.ID),
		zap.Uint64("project_id", project.ID),
		zap.Int("version", file.Version),
		zap.Int64("size", file.Size),
	)

	file.Uploader = *uploader
	return file, nil
}

// ListProjectFiles lists the current versions of a project's files.
func (s *FileService) ListProjectFiles(ctx context.Context, projectID uint64) ([]models.File, error) {
	if _, err := s.store.Projects().FindByID(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	files, err := s.store.Files().ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return files, nil
}

func (s *FileService) GetFile(ctx context.Context, id uint64) (*models.File, error) {
	file, err := s.store.Files().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to find file: %w", err)
	}
	return file, nil
}
