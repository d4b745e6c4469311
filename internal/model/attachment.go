package model

import (
	"time"

	"github.com/google/uuid"
)

// Attachment is a file stored for an entity (photos, scanned documents).
// Rows are soft-deleted through IsActive; the blob itself lives in the store.
type Attachment struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	EntityType   string     `gorm:"type:varchar(50);not null;index" json:"entity_type"`
	EntityID     string     `gorm:"type:varchar(50);not null;index" json:"entity_id"`
	FileName     string     `gorm:"type:varchar(255);not null" json:"file_name"`
	StoragePath  string     `gorm:"type:varchar(500);not null" json:"storage_path"`
	MimeType     string     `gorm:"type:varchar(100)" json:"mime_type"`
	SizeBytes    int64      `json:"size_bytes"`
	UploadedByID *uuid.UUID `gorm:"type:uuid" json:"uploaded_by"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
