package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuoteRepository interface {
	Create(ctx context.Context, quote *model.InterventionQuote) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.InterventionQuote, error)
	FindByIDWithLines(ctx context.Context, tenantID, id uuid.UUID) (*model.InterventionQuote, error)
	ListByIntervention(ctx context.Context, tenantID, interventionID uuid.UUID) ([]model.InterventionQuote, error)
	Update(ctx context.Context, quote *model.InterventionQuote) error
}

type quoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) QuoteRepository {
	return &quoteRepository{db: db}
}

func (r *quoteRepository) Create(ctx context.Context, quote *model.InterventionQuote) error {
	return GetDB(ctx, r.db).Create(quote).Error
}

func (r *quoteRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.InterventionQuote, error) {
	var quote model.InterventionQuote
	if err := GetDB(ctx, r.db).First(&quote, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *quoteRepository) FindByIDWithLines(ctx context.Context, tenantID, id uuid.UUID) (*model.InterventionQuote, error) {
	var quote model.InterventionQuote
	if err := GetDB(ctx, r.db).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_number asc") }).
		First(&quote, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *quoteRepository) ListByIntervention(ctx context.Context, tenantID, interventionID uuid.UUID) ([]model.InterventionQuote, error) {
	var quotes []model.InterventionQuote
	if err := GetDB(ctx, r.db).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_number asc") }).
		Where("tenant_id = ? AND intervention_id = ?", tenantID, interventionID).
		Order("created_at desc").
		Find(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}

func (r *quoteRepository) Update(ctx context.Context, quote *model.InterventionQuote) error {
	return GetDB(ctx, r.db).Save(quote).Error
}
