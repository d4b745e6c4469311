package model

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is an isolated customer/organization partition. Nearly every table
// carries a tenant_id foreign key and every query is scoped by it.
type Tenant struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	ContactEmail string    `gorm:"type:varchar(255)" json:"contact_email"`
	LogoPath     string    `gorm:"type:varchar(500)" json:"logo_path"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
