package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionReportIntervention     = "REPORT_INTERVENTION"
	ActionTransitionIntervention = "TRANSITION_INTERVENTION"
	ActionCreateQuote            = "CREATE_QUOTE"
	ActionApproveQuote           = "APPROVE_QUOTE"
	ActionCreateAuthorization    = "CREATE_WORK_AUTHORIZATION"
	ActionValidateAuthorization  = "VALIDATE_WORK_AUTHORIZATION"
	ActionCreateInvoice          = "CREATE_INVOICE"
	ActionMarkInvoicePaid        = "MARK_INVOICE_PAID"
	ActionRecordPrice            = "RECORD_PRICE"
	ActionCreateVehicle          = "CREATE_VEHICLE"
	ActionUpdateVehicle          = "UPDATE_VEHICLE"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID   *uuid.UUID `gorm:"type:uuid;index" json:"tenant_id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated bot
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
