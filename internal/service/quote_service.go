package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type QuoteLineRequest struct {
	SupplyID        string `json:"supply_id"`
	Description     string `json:"description" binding:"required"`
	Quantity        string `json:"quantity" binding:"required"`
	UnitPrice       string `json:"unit_price" binding:"required"`
	DiscountPercent string `json:"discount_percent"`
	DiscountAmount  string `json:"discount_amount"`
	TaxRate         string `json:"tax_rate"`
	Notes           string `json:"notes"`
}

type CreateQuoteRequest struct {
	InterventionID string             `json:"intervention_id" binding:"required"`
	SupplierID     string             `json:"supplier_id"`
	MaxAmount      string             `json:"max_amount"` // optional budget cap
	ValidUntil     string             `json:"valid_until"`
	Notes          string             `json:"notes"`
	Lines          []QuoteLineRequest `json:"lines" binding:"required,min=1,dive"`
}

type QuoteLineResponse struct {
	LineNumber      int    `json:"line_number"`
	Description     string `json:"description"`
	Quantity        string `json:"quantity"`
	UnitPrice       string `json:"unit_price"`
	DiscountPercent string `json:"discount_percent"`
	DiscountAmount  string `json:"discount_amount"`
	TaxRate         string `json:"tax_rate"`
	LineTotal       string `json:"line_total"`
}

type QuoteResponse struct {
	ID             string              `json:"id"`
	QuoteNumber    string              `json:"quote_number"`
	InterventionID string              `json:"intervention_id"`
	SupplierID     *string             `json:"supplier_id"`
	TotalAmount    string              `json:"total_amount"`
	MaxAmount      *string             `json:"max_amount"`
	IsApproved     bool                `json:"is_approved"`
	ApprovedAt     *string             `json:"approved_at"`
	IsValidated    bool                `json:"is_validated"`
	ValidUntil     *string             `json:"valid_until"`
	Notes          string              `json:"notes"`
	Lines          []QuoteLineResponse `json:"lines"`
	CreatedAt      string              `json:"created_at"`
}

// --- Interface ---

type QuoteService interface {
	CreateQuote(ctx context.Context, tenantID uuid.UUID, userID string, req CreateQuoteRequest) (QuoteResponse, error)
	GetQuote(ctx context.Context, tenantID uuid.UUID, id string) (QuoteResponse, error)
	ListByIntervention(ctx context.Context, tenantID uuid.UUID, interventionID string) ([]QuoteResponse, error)
	// ApproveQuote marks a quote approved. Fails when the quote is already
	// approved or its total exceeds the budget cap.
	ApproveQuote(ctx context.Context, tenantID uuid.UUID, userID string, id string) (QuoteResponse, error)
}

type quoteService struct {
	quoteRepo        repository.QuoteRepository
	interventionRepo repository.InterventionRepository
	auditRepo        repository.AuditRepository
	codeSvc          CodeService
	priceSvc         PriceService
	txManager        repository.TransactionManager
	now              func() time.Time
}

func NewQuoteService(
	quoteRepo repository.QuoteRepository,
	interventionRepo repository.InterventionRepository,
	auditRepo repository.AuditRepository,
	codeSvc CodeService,
	priceSvc PriceService,
	txManager repository.TransactionManager,
) QuoteService {
	return &quoteService{
		quoteRepo:        quoteRepo,
		interventionRepo: interventionRepo,
		auditRepo:        auditRepo,
		codeSvc:          codeSvc,
		priceSvc:         priceSvc,
		txManager:        txManager,
		now:              time.Now,
	}
}

// --- Implementation ---

func (s *quoteService) CreateQuote(ctx context.Context, tenantID uuid.UUID, userID string, req CreateQuoteRequest) (QuoteResponse, error) {
	interventionID, err := uuid.Parse(req.InterventionID)
	if err != nil {
		return QuoteResponse{}, fmt.Errorf("invalid intervention_id: %w", err)
	}

	var supplierID *uuid.UUID
	if req.SupplierID != "" {
		parsed, parseErr := uuid.Parse(req.SupplierID)
		if parseErr != nil {
			return QuoteResponse{}, fmt.Errorf("invalid supplier_id: %w", parseErr)
		}
		supplierID = &parsed
	}

	var maxAmount *decimal.Decimal
	if req.MaxAmount != "" {
		parsed, parseErr := decimal.NewFromString(req.MaxAmount)
		if parseErr != nil {
			return QuoteResponse{}, fmt.Errorf("invalid max_amount: %w", parseErr)
		}
		maxAmount = &parsed
	}

	var validUntil *time.Time
	if req.ValidUntil != "" {
		parsed, parseErr := time.Parse(time.RFC3339, req.ValidUntil)
		if parseErr != nil {
			return QuoteResponse{}, fmt.Errorf("invalid valid_until: %w", parseErr)
		}
		validUntil = &parsed
	}

	lines, err := buildQuoteLines(req.Lines)
	if err != nil {
		return QuoteResponse{}, err
	}

	var quote model.InterventionQuote
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		intervention, findErr := s.interventionRepo.FindByID(txCtx, tenantID, interventionID)
		if findErr != nil {
			return fmt.Errorf("intervention not found: %w", findErr)
		}
		if intervention.CurrentStatus == model.StatusCancelled || intervention.CurrentStatus == model.StatusVehicleReceived {
			return fmt.Errorf("cannot quote a closed intervention (%s)", intervention.CurrentStatus)
		}

		number, codeErr := s.codeSvc.NextCode(txCtx, tenantID, model.CodeEntityQuote)
		if codeErr != nil {
			return codeErr
		}

		quote = model.InterventionQuote{
			TenantID:       tenantID,
			InterventionID: interventionID,
			SupplierID:     supplierID,
			QuoteNumber:    number,
			MaxAmount:      maxAmount,
			ValidUntil:     validUntil,
			Notes:          req.Notes,
			Lines:          lines,
		}
		quote.RecalculateTotal()

		if createErr := s.quoteRepo.Create(txCtx, &quote); createErr != nil {
			return fmt.Errorf("failed to create quote: %w", createErr)
		}

		s.logAudit(txCtx, tenantID, userID, model.ActionCreateQuote, &quote)
		return nil
	})
	if err != nil {
		return QuoteResponse{}, err
	}

	// Feed the anomaly engine with each quoted unit price, best effort
	s.recordQuotePrices(ctx, tenantID, userID, &quote)

	return s.reload(ctx, tenantID, quote.ID)
}

func buildQuoteLines(requests []QuoteLineRequest) ([]model.InterventionQuoteLine, error) {
	lines := make([]model.InterventionQuoteLine, 0, len(requests))
	for i, lr := range requests {
		qty, err := decimal.NewFromString(lr.Quantity)
		if err != nil || !qty.IsPositive() {
			return nil, fmt.Errorf("line %d: invalid quantity", i+1)
		}
		unitPrice, err := decimal.NewFromString(lr.UnitPrice)
		if err != nil || unitPrice.IsNegative() {
			return nil, fmt.Errorf("line %d: invalid unit_price", i+1)
		}

		discountPercent, err := optionalDecimal(lr.DiscountPercent)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid discount_percent", i+1)
		}
		discountAmount, err := optionalDecimal(lr.DiscountAmount)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid discount_amount", i+1)
		}
		taxRate, err := optionalDecimal(lr.TaxRate)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid tax_rate", i+1)
		}

		var supplyID *uuid.UUID
		if lr.SupplyID != "" {
			parsed, parseErr := uuid.Parse(lr.SupplyID)
			if parseErr != nil {
				return nil, fmt.Errorf("line %d: invalid supply_id", i+1)
			}
			supplyID = &parsed
		}

		line := model.InterventionQuoteLine{
			SupplyID:        supplyID,
			LineNumber:      i + 1,
			Description:     lr.Description,
			Quantity:        qty,
			UnitPrice:       unitPrice,
			DiscountPercent: discountPercent,
			DiscountAmount:  discountAmount,
			TaxRate:         taxRate,
			Notes:           lr.Notes,
		}
		line.CalculateLineTotal()
		lines = append(lines, line)
	}
	return lines, nil
}

func optionalDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid decimal %q", s)
	}
	return d, nil
}

func (s *quoteService) recordQuotePrices(ctx context.Context, tenantID uuid.UUID, userID string, quote *model.InterventionQuote) {
	if s.priceSvc == nil {
		return
	}
	for i := range quote.Lines {
		line := &quote.Lines[i]
		req := RecordPriceRequest{
			Description: line.Description,
			UnitPrice:   line.UnitPrice.String(),
			SourceType:  model.PriceSourceQuote,
		}
		if line.SupplyID != nil {
			req.SupplyID = line.SupplyID.String()
		}
		_, _ = s.priceSvc.RecordPrice(ctx, tenantID, userID, req)
	}
}

func (s *quoteService) GetQuote(ctx context.Context, tenantID uuid.UUID, id string) (QuoteResponse, error) {
	quoteID, err := uuid.Parse(id)
	if err != nil {
		return QuoteResponse{}, fmt.Errorf("invalid quote id: %w", err)
	}
	return s.reload(ctx, tenantID, quoteID)
}

func (s *quoteService) ListByIntervention(ctx context.Context, tenantID uuid.UUID, interventionID string) ([]QuoteResponse, error) {
	parsed, err := uuid.Parse(interventionID)
	if err != nil {
		return nil, fmt.Errorf("invalid intervention id: %w", err)
	}

	quotes, err := s.quoteRepo.ListByIntervention(ctx, tenantID, parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quotes: %w", err)
	}

	result := make([]QuoteResponse, 0, len(quotes))
	for i := range quotes {
		result = append(result, toQuoteResponse(&quotes[i]))
	}
	return result, nil
}

func (s *quoteService) ApproveQuote(ctx context.Context, tenantID uuid.UUID, userID string, id string) (QuoteResponse, error) {
	quoteID, err := uuid.Parse(id)
	if err != nil {
		return QuoteResponse{}, fmt.Errorf("invalid quote id: %w", err)
	}
	approverID, err := uuid.Parse(userID)
	if err != nil {
		return QuoteResponse{}, fmt.Errorf("invalid user id: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		quote, findErr := s.quoteRepo.FindByIDWithLines(txCtx, tenantID, quoteID)
		if findErr != nil {
			return fmt.Errorf("quote not found: %w", findErr)
		}

		if quote.IsApproved {
			return fmt.Errorf("quote %s is already approved", quote.QuoteNumber)
		}
		if quote.MaxAmount != nil && quote.TotalAmount.GreaterThan(*quote.MaxAmount) {
			return fmt.Errorf("quote total %s exceeds budget cap %s",
				quote.TotalAmount.StringFixed(2), quote.MaxAmount.StringFixed(2))
		}

		now := s.now()
		quote.IsApproved = true
		quote.ApprovedByID = &approverID
		quote.ApprovedAt = &now

		if updateErr := s.quoteRepo.Update(txCtx, quote); updateErr != nil {
			return fmt.Errorf("failed to approve quote: %w", updateErr)
		}

		// Move the intervention along when it is sitting in approval
		intervention, findErr := s.interventionRepo.FindByID(txCtx, tenantID, quote.InterventionID)
		if findErr == nil && intervention.CanTransitionTo(model.StatusApproved) {
			if applyErr := intervention.ApplyTransition(model.StatusApproved, now); applyErr == nil {
				if updateErr := s.interventionRepo.Update(txCtx, intervention); updateErr != nil {
					return fmt.Errorf("failed to update intervention: %w", updateErr)
				}
			}
		}

		s.logAudit(txCtx, tenantID, userID, model.ActionApproveQuote, quote)
		return nil
	})
	if err != nil {
		return QuoteResponse{}, err
	}

	return s.reload(ctx, tenantID, quoteID)
}

func (s *quoteService) reload(ctx context.Context, tenantID, id uuid.UUID) (QuoteResponse, error) {
	quote, err := s.quoteRepo.FindByIDWithLines(ctx, tenantID, id)
	if err != nil {
		return QuoteResponse{}, fmt.Errorf("quote not found: %w", err)
	}
	return toQuoteResponse(quote), nil
}

func (s *quoteService) logAudit(ctx context.Context, tenantID uuid.UUID, userID string, action string, quote *model.InterventionQuote) {
	var actorID *uuid.UUID
	if parsed, err := uuid.Parse(userID); err == nil {
		actorID = &parsed
	}
	details, _ := json.Marshal(map[string]interface{}{
		"intervention_id": quote.InterventionID.String(),
		"total_amount":    quote.TotalAmount.StringFixed(2),
		"line_count":      len(quote.Lines),
	})
	_ = s.auditRepo.Log(ctx, &model.AuditLog{
		TenantID:   &tenantID,
		UserID:     actorID,
		Action:     action,
		EntityID:   quote.ID.String(),
		EntityName: quote.QuoteNumber,
		Details:    string(details),
	})
}

// --- Mapping ---

func toQuoteResponse(q *model.InterventionQuote) QuoteResponse {
	resp := QuoteResponse{
		ID:             q.ID.String(),
		QuoteNumber:    q.QuoteNumber,
		InterventionID: q.InterventionID.String(),
		TotalAmount:    q.TotalAmount.StringFixed(2),
		IsApproved:     q.IsApproved,
		IsValidated:    q.IsValidated,
		Notes:          q.Notes,
		Lines:          make([]QuoteLineResponse, 0, len(q.Lines)),
		CreatedAt:      q.CreatedAt.Format(time.RFC3339),
	}
	if q.SupplierID != nil {
		s := q.SupplierID.String()
		resp.SupplierID = &s
	}
	if q.MaxAmount != nil {
		s := q.MaxAmount.StringFixed(2)
		resp.MaxAmount = &s
	}
	if q.ApprovedAt != nil {
		s := q.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &s
	}
	if q.ValidUntil != nil {
		s := q.ValidUntil.Format(time.RFC3339)
		resp.ValidUntil = &s
	}
	for i := range q.Lines {
		l := &q.Lines[i]
		resp.Lines = append(resp.Lines, QuoteLineResponse{
			LineNumber:      l.LineNumber,
			Description:     l.Description,
			Quantity:        l.Quantity.String(),
			UnitPrice:       l.UnitPrice.StringFixed(2),
			DiscountPercent: l.DiscountPercent.String(),
			DiscountAmount:  l.DiscountAmount.StringFixed(2),
			TaxRate:         l.TaxRate.String(),
			LineTotal:       l.LineTotal.StringFixed(2),
		})
	}
	return resp
}
