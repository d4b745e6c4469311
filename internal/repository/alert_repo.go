package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AlertListFilter narrows alert listings
type AlertListFilter struct {
	Type       string
	Severity   string
	UnreadOnly bool
	Page       int
	Limit      int
}

type AlertRepository interface {
	Create(ctx context.Context, alert *model.Alert) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Alert, error)
	List(ctx context.Context, tenantID uuid.UUID, filter AlertListFilter) ([]model.Alert, int64, error)
	Update(ctx context.Context, alert *model.Alert) error
	CountUnread(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

type alertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(ctx context.Context, alert *model.Alert) error {
	return GetDB(ctx, r.db).Create(alert).Error
}

func (r *alertRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Alert, error) {
	var alert model.Alert
	if err := GetDB(ctx, r.db).First(&alert, "id = ? AND tenant_id = ? AND is_active = ?", id, tenantID, true).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *alertRepository) List(ctx context.Context, tenantID uuid.UUID, filter AlertListFilter) ([]model.Alert, int64, error) {
	db := GetDB(ctx, r.db)

	apply := func(q *gorm.DB) *gorm.DB {
		q = q.Where("tenant_id = ? AND is_active = ? AND is_dismissed = ?", tenantID, true, false)
		if filter.Type != "" {
			q = q.Where("type = ?", filter.Type)
		}
		if filter.Severity != "" {
			q = q.Where("severity = ?", filter.Severity)
		}
		if filter.UnreadOnly {
			q = q.Where("is_read = ?", false)
		}
		return q
	}

	var total int64
	if err := apply(db.Model(&model.Alert{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var alerts []model.Alert
	if err := apply(db).
		Order("created_at desc").
		Offset(offset).Limit(filter.Limit).
		Find(&alerts).Error; err != nil {
		return nil, 0, err
	}

	return alerts, total, nil
}

func (r *alertRepository) Update(ctx context.Context, alert *model.Alert) error {
	return GetDB(ctx, r.db).Save(alert).Error
}

func (r *alertRepository) CountUnread(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Alert{}).
		Where("tenant_id = ? AND is_active = ? AND is_dismissed = ? AND is_read = ?", tenantID, true, false, false).
		Count(&count).Error
	return count, err
}
