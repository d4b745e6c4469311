package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupplierRepository interface {
	Create(ctx context.Context, supplier *model.Supplier) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Supplier, error)
	List(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]model.Supplier, int64, error)
	Update(ctx context.Context, supplier *model.Supplier) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	CreateSupply(ctx context.Context, supply *model.Supply) error
	FindSupplyByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Supply, error)
	ListSupplies(ctx context.Context, tenantID uuid.UUID, supplierID string, page, limit int) ([]model.Supply, int64, error)
	UpdateSupply(ctx context.Context, supply *model.Supply) error
}

type supplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) SupplierRepository {
	return &supplierRepository{db: db}
}

func (r *supplierRepository) Create(ctx context.Context, supplier *model.Supplier) error {
	return GetDB(ctx, r.db).Create(supplier).Error
}

func (r *supplierRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Supplier, error) {
	var supplier model.Supplier
	if err := GetDB(ctx, r.db).First(&supplier, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *supplierRepository) List(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]model.Supplier, int64, error) {
	db := GetDB(ctx, r.db)

	var total int64
	if err := db.Model(&model.Supplier{}).Where("tenant_id = ?", tenantID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	var suppliers []model.Supplier
	if err := db.Where("tenant_id = ?", tenantID).
		Order("company_name asc").
		Offset(offset).Limit(limit).
		Find(&suppliers).Error; err != nil {
		return nil, 0, err
	}

	return suppliers, total, nil
}

func (r *supplierRepository) Update(ctx context.Context, supplier *model.Supplier) error {
	return GetDB(ctx, r.db).Save(supplier).Error
}

func (r *supplierRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&model.Supplier{}).Error
}

func (r *supplierRepository) CreateSupply(ctx context.Context, supply *model.Supply) error {
	return GetDB(ctx, r.db).Create(supply).Error
}

func (r *supplierRepository) FindSupplyByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Supply, error) {
	var supply model.Supply
	if err := GetDB(ctx, r.db).First(&supply, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		return nil, err
	}
	return &supply, nil
}

func (r *supplierRepository) ListSupplies(ctx context.Context, tenantID uuid.UUID, supplierID string, page, limit int) ([]model.Supply, int64, error) {
	db := GetDB(ctx, r.db)

	apply := func(q *gorm.DB) *gorm.DB {
		q = q.Where("tenant_id = ? AND is_active = ?", tenantID, true)
		if supplierID != "" {
			q = q.Where("supplier_id = ?", supplierID)
		}
		return q
	}

	var total int64
	if err := apply(db.Model(&model.Supply{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	var supplies []model.Supply
	if err := apply(db.Preload("Supplier")).
		Order("name asc").
		Offset(offset).Limit(limit).
		Find(&supplies).Error; err != nil {
		return nil, 0, err
	}

	return supplies, total, nil
}

func (r *supplierRepository) UpdateSupply(ctx context.Context, supply *model.Supply) error {
	return GetDB(ctx, r.db).Save(supply).Error
}
