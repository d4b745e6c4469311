package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceListFilter narrows invoice listings
type InvoiceListFilter struct {
	PaymentStatus string
	InvoiceNumber string
	Page          int
	Limit         int
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.InterventionInvoice) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.InterventionInvoice, error)
	FindByIDWithLines(ctx context.Context, tenantID, id uuid.UUID) (*model.InterventionInvoice, error)
	FindByInterventionID(ctx context.Context, tenantID, interventionID uuid.UUID) (*model.InterventionInvoice, error)
	List(ctx context.Context, tenantID uuid.UUID, filter InvoiceListFilter) ([]model.InterventionInvoice, int64, error)
	Update(ctx context.Context, invoice *model.InterventionInvoice) error
	SumInvoicedBetween(ctx context.Context, tenantID uuid.UUID, start, end time.Time) (float64, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.InterventionInvoice) error {
	return GetDB(ctx, r.db).Create(invoice).Error
}

func (r *invoiceRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.InterventionInvoice, error) {
	var invoice model.InterventionInvoice
	if err := GetDB(ctx, r.db).First(&invoice, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindByIDWithLines(ctx context.Context, tenantID, id uuid.UUID) (*model.InterventionInvoice, error) {
	var invoice model.InterventionInvoice
	if err := GetDB(ctx, r.db).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_number asc") }).
		First(&invoice, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindByInterventionID(ctx context.Context, tenantID, interventionID uuid.UUID) (*model.InterventionInvoice, error) {
	var invoice model.InterventionInvoice
	if err := GetDB(ctx, r.db).First(&invoice, "intervention_id = ? AND tenant_id = ?", interventionID, tenantID).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) List(ctx context.Context, tenantID uuid.UUID, filter InvoiceListFilter) ([]model.InterventionInvoice, int64, error) {
	db := GetDB(ctx, r.db)

	apply := func(q *gorm.DB) *gorm.DB {
		q = q.Where("tenant_id = ?", tenantID)
		if filter.PaymentStatus != "" {
			q = q.Where("payment_status = ?", filter.PaymentStatus)
		}
		if filter.InvoiceNumber != "" {
			q = q.Where("invoice_number LIKE ?", "%"+filter.InvoiceNumber+"%")
		}
		return q
	}

	var total int64
	if err := apply(db.Model(&model.InterventionInvoice{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var invoices []model.InterventionInvoice
	if err := apply(db).
		Order("created_at desc").
		Offset(offset).Limit(filter.Limit).
		Find(&invoices).Error; err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *model.InterventionInvoice) error {
	return GetDB(ctx, r.db).Save(invoice).Error
}

func (r *invoiceRepository) SumInvoicedBetween(ctx context.Context, tenantID uuid.UUID, start, end time.Time) (float64, error) {
	var result struct {
		Value float64
	}
	err := GetDB(ctx, r.db).Model(&model.InterventionInvoice{}).
		Select("COALESCE(SUM(total_amount), 0) as value").
		Where("tenant_id = ? AND issued_date >= ? AND issued_date < ? AND payment_status <> ?",
			tenantID, start, end, model.PaymentCancelled).
		Scan(&result).Error
	return result.Value, err
}
