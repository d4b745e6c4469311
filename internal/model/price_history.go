package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceRank enum constants, ordered from cheapest to most expensive
const (
	RankVeryLow      = "very_low"
	RankLow          = "low"
	RankBelowAverage = "below_average"
	RankAverage      = "average"
	RankAboveAverage = "above_average"
	RankHigh         = "high"
	RankVeryHigh     = "very_high"
)

// PriceSource enum constants
const (
	PriceSourceQuote   = "quote"
	PriceSourceInvoice = "invoice"
	PriceSourceManual  = "manual"
)

// SupplyPriceHistory is an immutable-by-convention price observation.
// IsAnomaly, PriceRank and DeviationPercent are computed once at creation by
// the price analysis service and never updated afterwards.
type SupplyPriceHistory struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	SupplyID         *uuid.UUID      `gorm:"type:uuid;index" json:"supply_id"`
	Supply           *Supply         `gorm:"foreignKey:SupplyID" json:"supply,omitempty"`
	Description      string          `gorm:"type:varchar(255);index" json:"description"` // free text fallback when SupplyID is nil
	VehicleID        *uuid.UUID      `gorm:"type:uuid" json:"vehicle_id"`
	VehicleModel     string          `gorm:"type:varchar(100);index" json:"vehicle_model"`
	RecordedDate     time.Time       `gorm:"not null;index" json:"recorded_date"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	SourceType       string          `gorm:"type:varchar(20);not null;default:'manual'" json:"source_type"` // quote, invoice, manual
	IsAnomaly        bool            `gorm:"default:false;index" json:"is_anomaly"`
	DeviationPercent decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"deviation_percent"`
	PriceRank        string          `gorm:"type:varchar(20);not null;default:'average'" json:"price_rank"`
	CreatedAt        time.Time       `json:"created_at"`
}
