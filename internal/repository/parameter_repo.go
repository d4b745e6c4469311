package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ParameterRepository interface {
	// LoadForTenant fetches global rows plus the tenant's overrides in one query
	LoadForTenant(ctx context.Context, tenantID uuid.UUID) ([]model.Parameter, error)
	Upsert(ctx context.Context, param *model.Parameter) error
	Delete(ctx context.Context, tenantID uuid.UUID, key string) error
}

type parameterRepository struct {
	db *gorm.DB
}

func NewParameterRepository(db *gorm.DB) ParameterRepository {
	return &parameterRepository{db: db}
}

func (r *parameterRepository) LoadForTenant(ctx context.Context, tenantID uuid.UUID) ([]model.Parameter, error) {
	var params []model.Parameter
	if err := GetDB(ctx, r.db).
		Where("tenant_id IS NULL OR tenant_id = ?", tenantID).
		Find(&params).Error; err != nil {
		return nil, err
	}
	return params, nil
}

func (r *parameterRepository) Upsert(ctx context.Context, param *model.Parameter) error {
	db := GetDB(ctx, r.db)

	var existing model.Parameter
	query := db.Where("key = ?", param.Key)
	if param.TenantID != nil {
		query = query.Where("tenant_id = ?", *param.TenantID)
	} else {
		query = query.Where("tenant_id IS NULL")
	}
	err := query.First(&existing).Error
	if err == nil {
		existing.Value = param.Value
		return db.Save(&existing).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return db.Create(param).Error
}

func (r *parameterRepository) Delete(ctx context.Context, tenantID uuid.UUID, key string) error {
	return GetDB(ctx, r.db).Where("tenant_id = ? AND key = ?", tenantID, key).Delete(&model.Parameter{}).Error
}
