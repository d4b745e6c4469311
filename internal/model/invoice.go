package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus enum constants
const (
	PaymentPending   = "pending"
	PaymentPaid      = "paid"
	PaymentOverdue   = "overdue"
	PaymentCancelled = "cancelled"
)

// InvoiceTaxRate is the flat tax applied on invoice subtotals (18%)
var InvoiceTaxRate = decimal.NewFromFloat(0.18)

// InterventionInvoice is the financial document created from exactly one
// validated work authorization. Unique indexes on InterventionID and
// WorkAuthorizationID enforce the one-to-one chain at the database level.
type InterventionInvoice struct {
	ID                  uuid.UUID                      `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID            uuid.UUID                      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	InterventionID      uuid.UUID                      `gorm:"type:uuid;not null;uniqueIndex" json:"intervention_id"`
	WorkAuthorizationID uuid.UUID                      `gorm:"type:uuid;not null;uniqueIndex" json:"work_authorization_id"`
	WorkAuthorization   *InterventionWorkAuthorization `gorm:"foreignKey:WorkAuthorizationID" json:"work_authorization,omitempty"`
	InvoiceNumber       string                         `gorm:"type:varchar(30);uniqueIndex;not null" json:"invoice_number"`
	Subtotal            decimal.Decimal                `gorm:"type:decimal(18,4);not null" json:"subtotal"`
	TaxAmount           decimal.Decimal                `gorm:"type:decimal(18,4);not null;default:0" json:"tax_amount"`
	TotalAmount         decimal.Decimal                `gorm:"type:decimal(18,4);not null" json:"total_amount"`
	PaymentStatus       string                         `gorm:"type:varchar(20);not null;default:'pending';index" json:"payment_status"`
	IssuedDate          time.Time                      `gorm:"not null" json:"issued_date"`
	DueDate             *time.Time                     `json:"due_date"`
	PaidAt              *time.Time                     `json:"paid_at"`
	Notes               string                         `gorm:"type:text" json:"notes"`
	Lines               []InvoiceLine                  `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"lines"`
	CreatedAt           time.Time                      `json:"created_at"`
	UpdatedAt           time.Time                      `json:"updated_at"`
}

// InvoiceLine is a value copy of an authorization line at invoicing time
type InvoiceLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	SupplyID    *uuid.UUID      `gorm:"type:uuid" json:"supply_id"`
	LineNumber  int             `gorm:"not null" json:"line_number"`
	Description string          `gorm:"type:varchar(255);not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"line_total"`
	CreatedAt   time.Time       `json:"created_at"`
}
