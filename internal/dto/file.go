package dto

import (
	"time"

	"github.com/custor/portal-api/internal/models"
)

// FileDTO is file metadata. The storage key stays internal.
type FileDTO struct {
	ID          uint64         `json:"id"`
	ProjectID   uint64         `json:"projectId"`
	Name        string         `json:"name"`
	ContentType string         `json:"contentType"`
	Size        int64          `json:"size"`
	Version     int            `json:"version"`
	IsCurrent   bool           `json:"isCurrent"`
	UploadedAt  time.Time      `json:"uploadedAt"`
	UploaderID  uint64         `json:"uploaderId"`
	Uploader    *UserDetailDTO `json:"uploader,omitempty"`
}

func ToFileDTO(file models.File) FileDTO {
	dto := FileDTO{
		ID:          file.ID,
		ProjectID:   file.ProjectID,
		Name:        file.Name,
		ContentType: file.ContentType,
		Size:        file.Size,
		Version:     file.Version,
		IsCurrent:   file.IsCurrent,
		UploadedAt:  file.UploadedAt,
		UploaderID:  file.UploaderID,
	}
	if file.Uploader.ID != 0 {
		uploader := ToUserDetailDTO(file.Uploader)
		dto.Uploader = &uploader
	}
	return dto
}

func ToFileDTOs(files []models.File) []FileDTO {
	out := make([]FileDTO, len(files))
	for i, f := range files {
		out[i] = ToFileDTO(f)
	}
	return out
}
