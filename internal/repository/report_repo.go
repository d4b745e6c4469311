package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportRepository interface {
	Create(ctx context.Context, report *model.Report) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Report, error)
	// FindCached returns the freshest non-expired cache row for the given
	// type and parameter hash, or gorm.ErrRecordNotFound.
	FindCached(ctx context.Context, tenantID uuid.UUID, reportType, paramsHash string, now time.Time) (*model.Report, error)
	DeleteByID(ctx context.Context, tenantID, id uuid.UUID) error
	DeleteByType(ctx context.Context, tenantID uuid.UUID, reportType string) error
	DeleteByTenant(ctx context.Context, tenantID uuid.UUID) error
	// DeleteStale removes expired rows and superseded duplicates for a tenant,
	// returning the number of rows removed.
	DeleteStale(ctx context.Context, tenantID uuid.UUID, now time.Time) (int64, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *model.Report) error {
	return GetDB(ctx, r.db).Create(report).Error
}

func (r *reportRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Report, error) {
	var report model.Report
	if err := GetDB(ctx, r.db).First(&report, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) FindCached(ctx context.Context, tenantID uuid.UUID, reportType, paramsHash string, now time.Time) (*model.Report, error) {
	var report model.Report
	if err := GetDB(ctx, r.db).
		Where("tenant_id = ? AND report_type = ? AND params_hash = ? AND cached_until > ? AND cached_data IS NOT NULL AND cached_data <> ''",
			tenantID, reportType, paramsHash, now).
		Order("created_at desc").
		First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) DeleteByID(ctx context.Context, tenantID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&model.Report{}).Error
}

func (r *reportRepository) DeleteByType(ctx context.Context, tenantID uuid.UUID, reportType string) error {
	return GetDB(ctx, r.db).Where("tenant_id = ? AND report_type = ?", tenantID, reportType).Delete(&model.Report{}).Error
}

func (r *reportRepository) DeleteByTenant(ctx context.Context, tenantID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("tenant_id = ?", tenantID).Delete(&model.Report{}).Error
}

func (r *reportRepository) DeleteStale(ctx context.Context, tenantID uuid.UUID, now time.Time) (int64, error) {
	db := GetDB(ctx, r.db)

	expired := db.Where("tenant_id = ? AND cached_until <= ?", tenantID, now).Delete(&model.Report{})
	if expired.Error != nil {
		return 0, expired.Error
	}
	removed := expired.RowsAffected

	// Superseded duplicates: same type+hash rows older than the newest one.
	// Two concurrent cache misses can both insert; keep only the latest.
	dup := db.Exec(`
		DELETE FROM reports
		WHERE tenant_id = ?
		  AND EXISTS (
			SELECT 1 FROM reports newer
			WHERE newer.tenant_id = reports.tenant_id
			  AND newer.report_type = reports.report_type
			  AND newer.params_hash = reports.params_hash
			  AND newer.created_at > reports.created_at
		  )`, tenantID)
	if dup.Error != nil {
		return removed, dup.Error
	}
	return removed + dup.RowsAffected, nil
}
