package model

import (
	"time"

	"github.com/google/uuid"
)

// Alert type constants
const (
	AlertTypeStatusChange   = "workflow_status_change"
	AlertTypePriceAnomaly   = "price_anomaly"
	AlertTypeInvoiceCreated = "invoice_created"
	AlertTypeInvoiceOverdue = "invoice_overdue"
	AlertTypeMaintenanceDue = "maintenance_due"
)

// Alert severity constants
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Alert is a persisted notification. EntityType/EntityID form a weak, untyped
// back-reference to the record that triggered it, not a foreign key.
// Alerts are soft-deleted through IsActive, never removed.
type Alert struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Type          string     `gorm:"type:varchar(50);not null;index" json:"type"`
	Severity      string     `gorm:"type:varchar(20);not null;default:'info'" json:"severity"`
	Title         string     `gorm:"type:varchar(255);not null" json:"title"`
	Message       string     `gorm:"type:text" json:"message"`
	EntityType    string     `gorm:"type:varchar(50);index" json:"entity_type"`
	EntityID      string     `gorm:"type:varchar(50);index" json:"entity_id"`
	IsRead        bool       `gorm:"default:false;index" json:"is_read"`
	ReadByID      *uuid.UUID `gorm:"type:uuid" json:"read_by"`
	ReadAt        *time.Time `json:"read_at"`
	IsDismissed   bool       `gorm:"default:false" json:"is_dismissed"`
	DismissedByID *uuid.UUID `gorm:"type:uuid" json:"dismissed_by"`
	DismissedAt   *time.Time `json:"dismissed_at"`
	IsActive      bool       `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
