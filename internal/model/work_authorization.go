package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InterventionWorkAuthorization permits repair work derived from exactly one
// approved quote. The unique index on QuoteID is what enforces the one-to-one
// relationship under concurrent requests.
type InterventionWorkAuthorization struct {
	ID                  uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID            uuid.UUID           `gorm:"type:uuid;not null;index" json:"tenant_id"`
	InterventionID      uuid.UUID           `gorm:"type:uuid;not null;index" json:"intervention_id"`
	QuoteID             uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex" json:"quote_id"`
	Quote               *InterventionQuote  `gorm:"foreignKey:QuoteID" json:"quote,omitempty"`
	AuthorizationNumber string              `gorm:"type:varchar(50);uniqueIndex;not null" json:"authorization_number"`
	TotalAmount         decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0" json:"total_amount"`
	AuthorizedByID      uuid.UUID           `gorm:"type:uuid;not null" json:"authorized_by"`
	AuthorizedBy        *User               `gorm:"foreignKey:AuthorizedByID" json:"authorized_by_user,omitempty"`
	AuthorizedAt        time.Time           `gorm:"not null" json:"authorized_at"`
	IsValidated         bool                `gorm:"default:false" json:"is_validated"`
	ValidatedByID       *uuid.UUID          `gorm:"type:uuid" json:"validated_by"`
	ValidatedAt         *time.Time          `json:"validated_at"`
	Notes               string              `gorm:"type:text" json:"notes"`
	Lines               []AuthorizationLine `gorm:"foreignKey:AuthorizationID;constraint:OnDelete:CASCADE" json:"lines"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// RecalculateTotal recomputes TotalAmount by summing line totals
func (a *InterventionWorkAuthorization) RecalculateTotal() {
	total := decimal.Zero
	for i := range a.Lines {
		total = total.Add(a.Lines[i].LineTotal)
	}
	a.TotalAmount = total
}

// AuthorizationLine is a value copy of a quote line. Copies, not references:
// later quote edits must not retroactively change the authorized scope.
type AuthorizationLine struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorizationID uuid.UUID       `gorm:"type:uuid;not null;index" json:"authorization_id"`
	SupplyID        *uuid.UUID      `gorm:"type:uuid" json:"supply_id"`
	LineNumber      int             `gorm:"not null" json:"line_number"`
	Description     string          `gorm:"type:varchar(255);not null" json:"description"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(10,4);default:0" json:"discount_percent"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(18,4);default:0" json:"discount_amount"`
	TaxRate         decimal.Decimal `gorm:"type:decimal(10,4);default:0" json:"tax_rate"`
	LineTotal       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"line_total"`
	Notes           string          `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CalculateLineTotal recomputes and stores the line total using the same
// arithmetic as quote lines
func (l *AuthorizationLine) CalculateLineTotal() decimal.Decimal {
	l.LineTotal = computeLineTotal(l.Quantity, l.UnitPrice, l.DiscountPercent, l.DiscountAmount, l.TaxRate)
	return l.LineTotal
}
