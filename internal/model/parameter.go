package model

import (
	"time"

	"github.com/google/uuid"
)

// Well-known parameter keys
const (
	ParamPriceWindowMonths      = "price.analysis.window_months"
	ParamPriceMinSamples        = "price.analysis.min_samples"
	ParamPriceThresholdCritical = "price.analysis.threshold_critical"
	ParamPriceThresholdHigh     = "price.analysis.threshold_high"
	ParamPriceThresholdMedium   = "price.analysis.threshold_medium"
	ParamPriceThresholdLow      = "price.analysis.threshold_low"
)

// Parameter is a configuration value. A nil TenantID marks a global default;
// a tenant row with the same key overrides it.
type Parameter struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_parameter_tenant_key" json:"tenant_id"`
	Key       string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_parameter_tenant_key;index" json:"key"`
	Value     string     `gorm:"type:varchar(255);not null" json:"value"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
