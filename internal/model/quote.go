package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InterventionQuote is a supplier cost estimate for an intervention.
// Once validated it is treated as immutable by the services.
type InterventionQuote struct {
	ID             uuid.UUID               `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID       uuid.UUID               `gorm:"type:uuid;not null;index" json:"tenant_id"`
	InterventionID uuid.UUID               `gorm:"type:uuid;not null;index" json:"intervention_id"`
	Intervention   *Intervention           `gorm:"foreignKey:InterventionID" json:"intervention,omitempty"`
	SupplierID     *uuid.UUID              `gorm:"type:uuid;index" json:"supplier_id"`
	Supplier       *Supplier               `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	QuoteNumber    string                  `gorm:"type:varchar(50);uniqueIndex;not null" json:"quote_number"`
	TotalAmount    decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0" json:"total_amount"`
	MaxAmount      *decimal.Decimal        `gorm:"type:decimal(18,4)" json:"max_amount"` // budget cap, nullable
	IsApproved     bool                    `gorm:"default:false;index" json:"is_approved"`
	ApprovedByID   *uuid.UUID              `gorm:"type:uuid" json:"approved_by"`
	ApprovedAt     *time.Time              `json:"approved_at"`
	IsValidated    bool                    `gorm:"default:false" json:"is_validated"`
	ValidatedAt    *time.Time              `json:"validated_at"`
	ValidUntil     *time.Time              `json:"valid_until"`
	Notes          string                  `gorm:"type:text" json:"notes"`
	Lines          []InterventionQuoteLine `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"lines"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

// RecalculateTotal recomputes TotalAmount by summing line totals
func (q *InterventionQuote) RecalculateTotal() {
	total := decimal.Zero
	for i := range q.Lines {
		total = total.Add(q.Lines[i].LineTotal)
	}
	q.TotalAmount = total
}

// InterventionQuoteLine is one ordered line of a quote
type InterventionQuoteLine struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	QuoteID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"quote_id"`
	SupplyID        *uuid.UUID      `gorm:"type:uuid;index" json:"supply_id"`
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

// CalculateLineTotal recomputes and stores the line total. The calculation is
// idempotent: quantity times unit price, then the percentage discount (which
// takes precedence over the flat discount amount when both are set), then the
// tax rate, rounded to 2 decimals.
func (l *InterventionQuoteLine) CalculateLineTotal() decimal.Decimal {
	l.LineTotal = computeLineTotal(l.Quantity, l.UnitPrice, l.DiscountPercent, l.DiscountAmount, l.TaxRate)
	return l.LineTotal
}

var hundred = decimal.NewFromInt(100)

func computeLineTotal(qty, unitPrice, discountPercent, discountAmount, taxRate decimal.Decimal) decimal.Decimal {
	subtotal := qty.Mul(unitPrice)
	if discountPercent.IsPositive() {
		subtotal = subtotal.Sub(subtotal.Mul(discountPercent).Div(hundred))
	} else if discountAmount.IsPositive() {
		subtotal = subtotal.Sub(discountAmount)
	}
	total := subtotal.Add(subtotal.Mul(taxRate).Div(hundred))
	return total.Round(2)
}
