package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Code entity type constants
const (
	CodeEntityIntervention  = "intervention"
	CodeEntityQuote         = "quote"
	CodeEntityAuthorization = "work_authorization"
	CodeEntityInvoice       = "invoice"
	CodeEntityVehicle       = "vehicle"
)

// CodeFormat holds a per-tenant-per-entity-type reference code template, e.g.
// INT-{YEAR}-{MONTH}-{SEQUENCE}. The sequence restarts whenever the period key
// derived from the date placeholders changes.
type CodeFormat struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_code_format_tenant_entity" json:"tenant_id"`
	EntityType      string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_code_format_tenant_entity" json:"entity_type"`
	Pattern         string    `gorm:"type:varchar(100);not null" json:"pattern"`
	SequenceLength  int       `gorm:"not null;default:4" json:"sequence_length"`
	CurrentSequence int       `gorm:"not null;default:0" json:"current_sequence"`
	CurrentPeriod   string    `gorm:"type:varchar(20)" json:"current_period"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PeriodKey returns the reset scope implied by the date placeholders present in
// the pattern: day, month, year granularity, or "" when the pattern carries no
// date placeholder at all.
func (f *CodeFormat) PeriodKey(now time.Time) string {
	switch {
	case strings.Contains(f.Pattern, "{DAY}"):
		return now.Format("2006-01-02")
	case strings.Contains(f.Pattern, "{MONTH}"):
		return now.Format("2006-01")
	case strings.Contains(f.Pattern, "{YEAR}"):
		return now.Format("2006")
	default:
		return ""
	}
}

// Render substitutes the placeholders for the given sequence number and time
func (f *CodeFormat) Render(seq int, now time.Time) string {
	length := f.SequenceLength
	if length <= 0 {
		length = 4
	}
	code := f.Pattern
	code = strings.ReplaceAll(code, "{YEAR}", now.Format("2006"))
	code = strings.ReplaceAll(code, "{MONTH}", now.Format("01"))
	code = strings.ReplaceAll(code, "{DAY}", now.Format("02"))
	code = strings.ReplaceAll(code, "{SEQUENCE}", fmt.Sprintf("%0*d", length, seq))
	return code
}
