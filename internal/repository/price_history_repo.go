package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PriceHistoryRepository interface {
	Create(ctx context.Context, record *model.SupplyPriceHistory) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.SupplyPriceHistory, error)
	// FindComparable returns the comparison population for anomaly detection:
	// records for the same supply (or free-text description when supplyID is
	// nil) and vehicle model recorded on or after the cutoff date.
	FindComparable(ctx context.Context, tenantID uuid.UUID, supplyID *uuid.UUID, description, vehicleModel string, since time.Time) ([]model.SupplyPriceHistory, error)
	List(ctx context.Context, tenantID uuid.UUID, anomaliesOnly bool, page, limit int) ([]model.SupplyPriceHistory, int64, error)
	CountAnomaliesBetween(ctx context.Context, tenantID uuid.UUID, start, end time.Time) (int64, error)
}

type priceHistoryRepository struct {
	db *gorm.DB
}

func NewPriceHistoryRepository(db *gorm.DB) PriceHistoryRepository {
	return &priceHistoryRepository{db: db}
}

func (r *priceHistoryRepository) Create(ctx context.Context, record *model.SupplyPriceHistory) error {
	return GetDB(ctx, r.db).Create(record).Error
}

func (r *priceHistoryRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.SupplyPriceHistory, error) {
	var record model.SupplyPriceHistory
	if err := GetDB(ctx, r.db).First(&record, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *priceHistoryRepository) FindComparable(ctx context.Context, tenantID uuid.UUID, supplyID *uuid.UUID, description, vehicleModel string, since time.Time) ([]model.SupplyPriceHistory, error) {
	query := GetDB(ctx, r.db).
		Where("tenant_id = ? AND recorded_date >= ?", tenantID, since)

	if supplyID != nil {
		query = query.Where("supply_id = ?", *supplyID)
	} else {
		query = query.Where("supply_id IS NULL AND description = ?", description)
	}
	if vehicleModel != "" {
		query = query.Where("vehicle_model = ?", vehicleModel)
	}

	var records []model.SupplyPriceHistory
	if err := query.Order("recorded_date asc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *priceHistoryRepository) List(ctx context.Context, tenantID uuid.UUID, anomaliesOnly bool, page, limit int) ([]model.SupplyPriceHistory, int64, error) {
	db := GetDB(ctx, r.db)

	apply := func(q *gorm.DB) *gorm.DB {
		q = q.Where("tenant_id = ?", tenantID)
		if anomaliesOnly {
			q = q.Where("is_anomaly = ?", true)
		}
		return q
	}

	var total int64
	if err := apply(db.Model(&model.SupplyPriceHistory{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	var records []model.SupplyPriceHistory
	if err := apply(db.Preload("Supply")).
		Order("recorded_date desc").
		Offset(offset).Limit(limit).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *priceHistoryRepository) CountAnomaliesBetween(ctx context.Context, tenantID uuid.UUID, start, end time.Time) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.SupplyPriceHistory{}).
		Where("tenant_id = ? AND is_anomaly = ? AND recorded_date >= ? AND recorded_date < ?", tenantID, true, start, end).
		Count(&count).Error
	return count, err
}
