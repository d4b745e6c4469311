package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vehicle represents a fleet vehicle
type Vehicle struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	LicensePlate string         `gorm:"type:varchar(20);uniqueIndex;not null" json:"license_plate"`
	Brand        string         `gorm:"type:varchar(100);not null" json:"brand"`
	Model        string         `gorm:"type:varchar(100);not null;index" json:"model"`
	Year         int            `json:"year"`
	Odometer     int64          `gorm:"default:0" json:"odometer"`
	TrackingID   string         `gorm:"type:varchar(100)" json:"tracking_id"` // external tracking API identifier
	DriverID     *uuid.UUID     `gorm:"type:uuid;index" json:"driver_id"`
	Driver       *Driver        `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Driver represents a person who can be assigned to a vehicle
type Driver struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID      uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	FullName      string    `gorm:"type:varchar(255);not null" json:"full_name"`
	LicenseNumber string    `gorm:"type:varchar(50)" json:"license_number"`
	Phone         string    `gorm:"type:varchar(50)" json:"phone"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
