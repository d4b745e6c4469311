package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InterventionListFilter narrows intervention listings
type InterventionListFilter struct {
	Status    string
	Priority  string
	VehicleID string
	Page      int
	Limit     int
}

type InterventionRepository interface {
	Create(ctx context.Context, intervention *model.Intervention) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Intervention, error)
	FindByIDWithVehicle(ctx context.Context, tenantID, id uuid.UUID) (*model.Intervention, error)
	List(ctx context.Context, tenantID uuid.UUID, filter InterventionListFilter) ([]model.Intervention, int64, error)
	Update(ctx context.Context, intervention *model.Intervention) error
	CountByStatus(ctx context.Context, tenantID uuid.UUID, statuses ...string) (int64, error)
	CountReportedBetween(ctx context.Context, tenantID uuid.UUID, start, end time.Time) (int64, error)
}

type interventionRepository struct {
	db *gorm.DB
}

func NewInterventionRepository(db *gorm.DB) InterventionRepository {
	return &interventionRepository{db: db}
}

func (r *interventionRepository) Create(ctx context.Context, intervention *model.Intervention) error {
	return GetDB(ctx, r.db).Create(intervention).Error
}

func (r *interventionRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Intervention, error) {
	var intervention model.Intervention
	if err := GetDB(ctx, r.db).First(&intervention, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		return nil, err
	}
	return &intervention, nil
}

func (r *interventionRepository) FindByIDWithVehicle(ctx context.Context, tenantID, id uuid.UUID) (*model.Intervention, error) {
	var intervention model.Intervention
	if err := GetDB(ctx, r.db).Preload("Vehicle").First(&intervention, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		return nil, err
	}
	return &intervention, nil
}

func (r *interventionRepository) List(ctx context.Context, tenantID uuid.UUID, filter InterventionListFilter) ([]model.Intervention, int64, error) {
	db := GetDB(ctx, r.db)

	apply := func(q *gorm.DB) *gorm.DB {
		q = q.Where("tenant_id = ?", tenantID)
		if filter.Status != "" {
			q = q.Where("current_status = ?", filter.Status)
		}
		if filter.Priority != "" {
			q = q.Where("priority = ?", filter.Priority)
		}
		if filter.VehicleID != "" {
			q = q.Where("vehicle_id = ?", filter.VehicleID)
		}
		return q
	}

	var total int64
	if err := apply(db.Model(&model.Intervention{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var interventions []model.Intervention
	if err := apply(db.Preload("Vehicle")).
		Order("reported_date desc").
		Offset(offset).Limit(filter.Limit).
		Find(&interventions).Error; err != nil {
		return nil, 0, err
	}

	return interventions, total, nil
}

func (r *interventionRepository) Update(ctx context.Context, intervention *model.Intervention) error {
	return GetDB(ctx, r.db).Save(intervention).Error
}

func (r *interventionRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, statuses ...string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Intervention{}).
		Where("tenant_id = ? AND current_status IN ?", tenantID, statuses).
		Count(&count).Error
	return count, err
}

func (r *interventionRepository) CountReportedBetween(ctx context.Context, tenantID uuid.UUID, start, end time.Time) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Intervention{}).
		Where("tenant_id = ? AND reported_date >= ? AND reported_date < ?", tenantID, start, end).
		Count(&count).Error
	return count, err
}
