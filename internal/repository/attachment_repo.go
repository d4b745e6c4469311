package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *model.Attachment) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Attachment, error)
	ListByEntity(ctx context.Context, tenantID uuid.UUID, entityType, entityID string) ([]model.Attachment, error)
	Update(ctx context.Context, attachment *model.Attachment) error
}

type attachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *model.Attachment) error {
	return GetDB(ctx, r.db).Create(attachment).Error
}

func (r *attachmentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Attachment, error) {
	var attachment model.Attachment
	if err := GetDB(ctx, r.db).First(&attachment, "id = ? AND tenant_id = ? AND is_active = ?", id, tenantID, true).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *attachmentRepository) ListByEntity(ctx context.Context, tenantID uuid.UUID, entityType, entityID string) ([]model.Attachment, error) {
	var attachments []model.Attachment
	if err := GetDB(ctx, r.db).
		Where("tenant_id = ? AND entity_type = ? AND entity_id = ? AND is_active = ?", tenantID, entityType, entityID, true).
		Order("created_at desc").
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

func (r *attachmentRepository) Update(ctx context.Context, attachment *model.Attachment) error {
	return GetDB(ctx, r.db).Save(attachment).Error
}
