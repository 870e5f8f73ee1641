package models

import "time"

// FileNameSize is the width of File.Name in characters.
const FileNameSize = 255

type File struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	ProjectID   uint64    `gorm:"not null;index:idx_files_project_name" json:"project_id"`
	Name        string    `gorm:"type:varchar(255);not null;index:idx_files_project_name" json:"name"`
	ContentType string    `gorm:"type:varchar(100);not null" json:"content_type"`
	StorageKey  string    `gorm:"type:varchar(512);not null" json:"-"`
	Size        int64     `gorm:"not null" json:"size"`
	Version     int       `gorm:"not null;default:1" json:"version"`
	UploaderID  uint64    `gorm:"not null;index" json:"uploader_id"`
	IsCurrent   bool      `gorm:"not null;default:true" json:"is_current"`
	UploadedAt  time.Time `json:"uploaded_at"`

	// Relations
	Project  Project `gorm:"foreignKey:ProjectID" json:"-"`
	Uploader User    `gorm:"foreignKey:UploaderID" json:"uploader,omitempty"`
}
