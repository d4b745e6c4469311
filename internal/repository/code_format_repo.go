package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CodeFormatRepository interface {
	Create(ctx context.Context, format *model.CodeFormat) error
	Find(ctx context.Context, tenantID uuid.UUID, entityType string) (*model.CodeFormat, error)
	// FindForUpdate loads the row with a row-level lock so the sequence
	// increment is atomic; must be called inside a transaction.
	FindForUpdate(ctx context.Context, tenantID uuid.UUID, entityType string) (*model.CodeFormat, error)
	Update(ctx context.Context, format *model.CodeFormat) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.CodeFormat, error)
}

type codeFormatRepository struct {
	db *gorm.DB
}

func NewCodeFormatRepository(db *gorm.DB) CodeFormatRepository {
	return &codeFormatRepository{db: db}
}

func (r *codeFormatRepository) Create(ctx context.Context, format *model.CodeFormat) error {
	return GetDB(ctx, r.db).Create(format).Error
}

func (r *codeFormatRepository) Find(ctx context.Context, tenantID uuid.UUID, entityType string) (*model.CodeFormat, error) {
	var format model.CodeFormat
	if err := GetDB(ctx, r.db).First(&format, "tenant_id = ? AND entity_type = ?", tenantID, entityType).Error; err != nil {
		return nil, err
	}
	return &format, nil
}

func (r *codeFormatRepository) FindForUpdate(ctx context.Context, tenantID uuid.UUID, entityType string) (*model.CodeFormat, error) {
	var format model.CodeFormat
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&format, "tenant_id = ? AND entity_type = ?", tenantID, entityType).Error; err != nil {
		return nil, err
	}
	return &format, nil
}

func (r *codeFormatRepository) Update(ctx context.Context, format *model.CodeFormat) error {
	return GetDB(ctx, r.db).Save(format).Error
}

func (r *codeFormatRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.CodeFormat, error) {
	var formats []model.CodeFormat
	if err := GetDB(ctx, r.db).Where("tenant_id = ?", tenantID).Order("entity_type asc").Find(&formats).Error; err != nil {
		return nil, err
	}
	return formats, nil
}
