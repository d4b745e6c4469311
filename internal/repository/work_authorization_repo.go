package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkAuthorizationRepository interface {
	Create(ctx context.Context, authorization *model.InterventionWorkAuthorization) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.InterventionWorkAuthorization, error)
	FindByIDWithLines(ctx context.Context, tenantID, id uuid.UUID) (*model.InterventionWorkAuthorization, error)
	FindByQuoteID(ctx context.Context, tenantID, quoteID uuid.UUID) (*model.InterventionWorkAuthorization, error)
	ListByIntervention(ctx context.Context, tenantID, interventionID uuid.UUID) ([]model.InterventionWorkAuthorization, error)
	Update(ctx context.Context, authorization *model.InterventionWorkAuthorization) error
}

type workAuthorizationRepository struct {
	db *gorm.DB
}

func NewWorkAuthorizationRepository(db *gorm.DB) WorkAuthorizationRepository {
	return &workAuthorizationRepository{db: db}
}

func (r *workAuthorizationRepository) Create(ctx context.Context, authorization *model.InterventionWorkAuthorization) error {
	return GetDB(ctx, r.db).Create(authorization).Error
}

func (r *workAuthorizationRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.InterventionWorkAuthorization, error) {
	var authorization model.InterventionWorkAuthorization
	if err := GetDB(ctx, r.db).First(&authorization, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		return nil, err
	}
	return &authorization, nil
}

func (r *workAuthorizationRepository) FindByIDWithLines(ctx context.Context, tenantID, id uuid.UUID) (*model.InterventionWorkAuthorization, error) {
	var authorization model.InterventionWorkAuthorization
	if err := GetDB(ctx, r.db).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_number asc") }).
		First(&authorization, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		return nil, err
	}
	return &authorization, nil
}

func (r *workAuthorizationRepository) FindByQuoteID(ctx context.Context, tenantID, quoteID uuid.UUID) (*model.InterventionWorkAuthorization, error) {
	var authorization model.InterventionWorkAuthorization
	if err := GetDB(ctx, r.db).First(&authorization, "quote_id = ? AND tenant_id = ?", quoteID, tenantID).Error; err != nil {
		return nil, err
	}
	return &authorization, nil
}

func (r *workAuthorizationRepository) ListByIntervention(ctx context.Context, tenantID, interventionID uuid.UUID) ([]model.InterventionWorkAuthorization, error) {
	var authorizations []model.InterventionWorkAuthorization
	if err := GetDB(ctx, r.db).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_number asc") }).
		Where("tenant_id = ? AND intervention_id = ?", tenantID, interventionID).
		Order("created_at desc").
		Find(&authorizations).Error; err != nil {
		return nil, err
	}
	return authorizations, nil
}

func (r *workAuthorizationRepository) Update(ctx context.Context, authorization *model.InterventionWorkAuthorization) error {
	return GetDB(ctx, r.db).Save(authorization).Error
}
