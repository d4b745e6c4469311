package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type GenerateAuthorizationRequest struct {
	QuoteID string `json:"quote_id" binding:"required"`
	Notes   string `json:"notes"`
}

type AuthorizationLineResponse struct {
	LineNumber  int    `json:"line_number"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
}

type AuthorizationResponse struct {
	ID                  string                      `json:"id"`
	AuthorizationNumber string                      `json:"authorization_number"`
	InterventionID      string                      `json:"intervention_id"`
	QuoteID             string                      `json:"quote_id"`
	TotalAmount         string                      `json:"total_amount"`
	AuthorizedBy        string                      `json:"authorized_by"`
	AuthorizedAt        string                      `json:"authorized_at"`
	IsValidated         bool                        `json:"is_validated"`
	ValidatedAt         *string                     `json:"validated_at"`
	Notes               string                      `json:"notes"`
	Lines               []AuthorizationLineResponse `json:"lines"`
	CreatedAt           string                      `json:"created_at"`
}

// ValidationResult bundles the validated authorization with the invoice the
// validation produced
type ValidationResult struct {
	Authorization AuthorizationResponse `json:"authorization"`
	Invoice       InvoiceResult         `json:"invoice"`
}

type InvoiceResult struct {
	ID            string `json:"id"`
	InvoiceNumber string `json:"invoice_number"`
	Subtotal      string `json:"subtotal"`
	TaxAmount     string `json:"tax_amount"`
	TotalAmount   string `json:"total_amount"`
	PaymentStatus string `json:"payment_status"`
	IssuedDate    string `json:"issued_date"`
}

// --- Interface ---

type AuthorizationService interface {
	// GenerateFromQuote creates the single work authorization an approved
	// quote may have, copying the quote lines by value. The unique index on
	// quote_id turns a concurrent second call into an "already exists" error.
	GenerateFromQuote(ctx context.Context, tenantID uuid.UUID, userID string, req GenerateAuthorizationRequest) (AuthorizationResponse, error)
	// ValidateAuthorization marks the authorization validated and creates its
	// invoice in the same transaction; callers never observe one without the
	// other. The parent intervention advances to in_repair.
	ValidateAuthorization(ctx context.Context, tenantID uuid.UUID, userID string, id string) (ValidationResult, error)
	GetAuthorization(ctx context.Context, tenantID uuid.UUID, id string) (AuthorizationResponse, error)
	ListByIntervention(ctx context.Context, tenantID uuid.UUID, interventionID string) ([]AuthorizationResponse, error)
}

type authorizationService struct {
	authRepo         repository.WorkAuthorizationRepository
	quoteRepo        repository.QuoteRepository
	invoiceRepo      repository.InvoiceRepository
	interventionRepo repository.InterventionRepository
	auditRepo        repository.AuditRepository
	codeSvc          CodeService
	alertSvc         AlertService
	priceSvc         PriceService
	txManager        repository.TransactionManager
	now              func() time.Time
}

func NewAuthorizationService(
	authRepo repository.WorkAuthorizationRepository,
	quoteRepo repository.QuoteRepository,
	invoiceRepo repository.InvoiceRepository,
	interventionRepo repository.InterventionRepository,
	auditRepo repository.AuditRepository,
	codeSvc CodeService,
	alertSvc AlertService,
	priceSvc PriceService,
	txManager repository.TransactionManager,
) AuthorizationService {
	return &authorizationService{
		authRepo:         authRepo,
		quoteRepo:        quoteRepo,
		invoiceRepo:      invoiceRepo,
		interventionRepo: interventionRepo,
		auditRepo:        auditRepo,
		codeSvc:          codeSvc,
		alertSvc:         alertSvc,
		priceSvc:         priceSvc,
		txManager:        txManager,
		now:              time.Now,
	}
}

// --- Implementation ---

func (s *authorizationService) GenerateFromQuote(ctx context.Context, tenantID uuid.UUID, userID string, req GenerateAuthorizationRequest) (AuthorizationResponse, error) {
	quoteID, err := uuid.Parse(req.QuoteID)
	if err != nil {
		return AuthorizationResponse{}, fmt.Errorf("invalid quote_id: %w", err)
	}
	authorizerID, err := uuid.Parse(userID)
	if err != nil {
		return AuthorizationResponse{}, fmt.Errorf("invalid user id: %w", err)
	}

	var authorization model.InterventionWorkAuthorization
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		quote, findErr := s.quoteRepo.FindByIDWithLines(txCtx, tenantID, quoteID)
		if findErr != nil {
			return fmt.Errorf("quote not found: %w", findErr)
		}
		if !quote.IsApproved {
			return fmt.Errorf("quote %s is not approved", quote.QuoteNumber)
		}
		if len(quote.Lines) == 0 {
			return fmt.Errorf("quote %s has no lines", quote.QuoteNumber)
		}

		number, codeErr := s.codeSvc.NextCode(txCtx, tenantID, model.CodeEntityAuthorization)
		if codeErr != nil {
			return codeErr
		}

		now := s.now()
		authorization = model.InterventionWorkAuthorization{
			TenantID:            tenantID,
			InterventionID:      quote.InterventionID,
			QuoteID:             quote.ID,
			AuthorizationNumber: number,
			AuthorizedByID:      authorizerID,
			AuthorizedAt:        now,
			Notes:               req.Notes,
			Lines:               copyQuoteLines(quote.Lines),
		}
		authorization.RecalculateTotal()

		if createErr := s.authRepo.Create(txCtx, &authorization); createErr != nil {
			if errors.Is(createErr, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("quote %s already has a work authorization", quote.QuoteNumber)
			}
			return fmt.Errorf("failed to create work authorization: %w", createErr)
		}

		s.logAudit(txCtx, tenantID, &authorizerID, model.ActionCreateAuthorization, authorization.ID.String(), number, map[string]interface{}{
			"quote_id":     quote.ID.String(),
			"total_amount": authorization.TotalAmount.StringFixed(2),
		})
		return nil
	})
	if err != nil {
		return AuthorizationResponse{}, err
	}

	return s.reload(ctx, tenantID, authorization.ID)
}

// copyQuoteLines duplicates quote lines by value and recomputes each total so
// the authorized scope is frozen at authorization time
func copyQuoteLines(quoteLines []model.InterventionQuoteLine) []model.AuthorizationLine {
	lines := make([]model.AuthorizationLine, 0, len(quoteLines))
	for i := range quoteLines {
		src := &quoteLines[i]
		line := model.AuthorizationLine{
			SupplyID:        src.SupplyID,
			LineNumber:      src.LineNumber,
			Description:     src.Description,
			Quantity:        src.Quantity,
			UnitPrice:       src.UnitPrice,
			DiscountPercent: src.DiscountPercent,
			DiscountAmount:  src.DiscountAmount,
			TaxRate:         src.TaxRate,
			Notes:           src.Notes,
		}
		line.CalculateLineTotal()
		lines = append(lines, line)
	}
	return lines
}

func (s *authorizationService) ValidateAuthorization(ctx context.Context, tenantID uuid.UUID, userID string, id string) (ValidationResult, error) {
	authID, err := uuid.Parse(id)
	if err != nil {
		return ValidationResult{}, fmt.Errorf("invalid authorization id: %w", err)
	}
	validatorID, err := uuid.Parse(userID)
	if err != nil {
		return ValidationResult{}, fmt.Errorf("invalid user id: %w", err)
	}

	var authorization *model.InterventionWorkAuthorization
	var invoice model.InterventionInvoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		authorization, findErr = s.authRepo.FindByIDWithLines(txCtx, tenantID, authID)
		if findErr != nil {
			return fmt.Errorf("work authorization not found: %w", findErr)
		}

		if authorization.IsValidated {
			return fmt.Errorf("work authorization %s is already validated", authorization.AuthorizationNumber)
		}
		if len(authorization.Lines) == 0 {
			return fmt.Errorf("work authorization %s has no lines", authorization.AuthorizationNumber)
		}

		now := s.now()
		authorization.IsValidated = true
		authorization.ValidatedByID = &validatorID
		authorization.ValidatedAt = &now
		if updateErr := s.authRepo.Update(txCtx, authorization); updateErr != nil {
			return fmt.Errorf("failed to validate work authorization: %w", updateErr)
		}

		var invoiceErr error
		invoice, invoiceErr = s.createInvoice(txCtx, tenantID, authorization, now)
		if invoiceErr != nil {
			return invoiceErr
		}

		// Validation releases the repair work on the parent intervention
		intervention, findErr := s.interventionRepo.FindByID(txCtx, tenantID, authorization.InterventionID)
		if findErr == nil && intervention.CanTransitionTo(model.StatusInRepair) {
			if applyErr := intervention.ApplyTransition(model.StatusInRepair, now); applyErr == nil {
				if updateErr := s.interventionRepo.Update(txCtx, intervention); updateErr != nil {
					return fmt.Errorf("failed to update intervention: %w", updateErr)
				}
			}
		}

		s.logAudit(txCtx, tenantID, &validatorID, model.ActionValidateAuthorization, authorization.ID.String(), authorization.AuthorizationNumber, map[string]interface{}{
			"invoice_id":     invoice.ID.String(),
			"invoice_number": invoice.InvoiceNumber,
		})
		s.logAudit(txCtx, tenantID, &validatorID, model.ActionCreateInvoice, invoice.ID.String(), invoice.InvoiceNumber, map[string]interface{}{
			"subtotal":     invoice.Subtotal.StringFixed(2),
			"tax_amount":   invoice.TaxAmount.StringFixed(2),
			"total_amount": invoice.TotalAmount.StringFixed(2),
		})
		return nil
	})
	if err != nil {
		return ValidationResult{}, err
	}

	if s.alertSvc != nil {
		_, _ = s.alertSvc.Notify(ctx, tenantID, CreateAlertInput{
			Type:       model.AlertTypeInvoiceCreated,
			Severity:   model.SeverityInfo,
			Title:      fmt.Sprintf("Invoice %s created", invoice.InvoiceNumber),
			Message:    fmt.Sprintf("Invoice %s for %s was created from work authorization %s", invoice.InvoiceNumber, invoice.TotalAmount.StringFixed(2), authorization.AuthorizationNumber),
			EntityType: "intervention_invoice",
			EntityID:   invoice.ID.String(),
		})
	}

	// Invoiced unit prices feed the anomaly engine too, best effort
	s.recordInvoicePrices(ctx, tenantID, userID, &invoice)

	authResp, err := s.reload(ctx, tenantID, authID)
	if err != nil {
		return ValidationResult{}, err
	}
	return ValidationResult{
		Authorization: authResp,
		Invoice:       toInvoiceResult(&invoice),
	}, nil
}

// createInvoice builds the invoice for a validated authorization: subtotal is
// the sum of authorization line totals, tax a flat 18% of the subtotal. The
// invoice number comes from the same locked code sequence the other reference
// numbers use, so concurrent validations cannot render the same number.
func (s *authorizationService) createInvoice(ctx context.Context, tenantID uuid.UUID, authorization *model.InterventionWorkAuthorization, now time.Time) (model.InterventionInvoice, error) {
	if existing, findErr := s.invoiceRepo.FindByInterventionID(ctx, tenantID, authorization.InterventionID); findErr == nil {
		return model.InterventionInvoice{}, fmt.Errorf("intervention already has invoice %s", existing.InvoiceNumber)
	} else if !errors.Is(findErr, gorm.ErrRecordNotFound) {
		return model.InterventionInvoice{}, fmt.Errorf("failed to check for an existing invoice: %w", findErr)
	}

	number, err := s.codeSvc.NextCode(ctx, tenantID, model.CodeEntityInvoice)
	if err != nil {
		return model.InterventionInvoice{}, fmt.Errorf("failed to generate invoice number: %w", err)
	}

	subtotal := authorization.TotalAmount
	taxAmount := subtotal.Mul(model.InvoiceTaxRate).Round(2)
	dueDate := now.AddDate(0, 1, 0)

	invoice := model.InterventionInvoice{
		TenantID:            tenantID,
		InterventionID:      authorization.InterventionID,
		WorkAuthorizationID: authorization.ID,
		InvoiceNumber:       number,
		Subtotal:            subtotal,
		TaxAmount:           taxAmount,
		TotalAmount:         subtotal.Add(taxAmount),
		PaymentStatus:       model.PaymentPending,
		IssuedDate:          now,
		DueDate:             &dueDate,
		Lines:               copyAuthorizationLines(authorization.Lines),
	}

	if err := s.invoiceRepo.Create(ctx, &invoice); err != nil {
		// The intervention check above ran first, so a duplicate here can only
		// be the invoice_number index
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.InterventionInvoice{}, fmt.Errorf("invoice number %s is already taken", number)
		}
		return model.InterventionInvoice{}, fmt.Errorf("failed to create invoice: %w", err)
	}
	return invoice, nil
}

func copyAuthorizationLines(authLines []model.AuthorizationLine) []model.InvoiceLine {
	lines := make([]model.InvoiceLine, 0, len(authLines))
	for i := range authLines {
		src := &authLines[i]
		lines = append(lines, model.InvoiceLine{
			SupplyID:    src.SupplyID,
			LineNumber:  src.LineNumber,
			Description: src.Description,
			Quantity:    src.Quantity,
			UnitPrice:   src.UnitPrice,
			LineTotal:   src.LineTotal,
		})
	}
	return lines
}

func (s *authorizationService) recordInvoicePrices(ctx context.Context, tenantID uuid.UUID, userID string, invoice *model.InterventionInvoice) {
	if s.priceSvc == nil {
		return
	}
	for i := range invoice.Lines {
		line := &invoice.Lines[i]
		req := RecordPriceRequest{
			Description: line.Description,
			UnitPrice:   line.UnitPrice.String(),
			SourceType:  model.PriceSourceInvoice,
		}
		if line.SupplyID != nil {
			req.SupplyID = line.SupplyID.String()
		}
		_, _ = s.priceSvc.RecordPrice(ctx, tenantID, userID, req)
	}
}

func (s *authorizationService) GetAuthorization(ctx context.Context, tenantID uuid.UUID, id string) (AuthorizationResponse, error) {
	authID, err := uuid.Parse(id)
	if err != nil {
		return AuthorizationResponse{}, fmt.Errorf("invalid authorization id: %w", err)
	}
	return s.reload(ctx, tenantID, authID)
}

func (s *authorizationService) ListByIntervention(ctx context.Context, tenantID uuid.UUID, interventionID string) ([]AuthorizationResponse, error) {
	parsed, err := uuid.Parse(interventionID)
	if err != nil {
		return nil, fmt.Errorf("invalid intervention id: %w", err)
	}

	authorizations, err := s.authRepo.ListByIntervention(ctx, tenantID, parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch work authorizations: %w", err)
	}

	result := make([]AuthorizationResponse, 0, len(authorizations))
	for i := range authorizations {
		result = append(result, toAuthorizationResponse(&authorizations[i]))
	}
	return result, nil
}

func (s *authorizationService) reload(ctx context.Context, tenantID, id uuid.UUID) (AuthorizationResponse, error) {
	authorization, err := s.authRepo.FindByIDWithLines(ctx, tenantID, id)
	if err != nil {
		return AuthorizationResponse{}, fmt.Errorf("work authorization not found: %w", err)
	}
	return toAuthorizationResponse(authorization), nil
}

func (s *authorizationService) logAudit(ctx context.Context, tenantID uuid.UUID, actorID *uuid.UUID, action, entityID, entityName string, details map[string]interface{}) {
	payload, _ := json.Marshal(details)
	_ = s.auditRepo.Log(ctx, &model.AuditLog{
		TenantID:   &tenantID,
		UserID:     actorID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(payload),
	})
}

// --- Mapping ---

func toAuthorizationResponse(a *model.InterventionWorkAuthorization) AuthorizationResponse {
	resp := AuthorizationResponse{
		ID:                  a.ID.String(),
		AuthorizationNumber: a.AuthorizationNumber,
		InterventionID:      a.InterventionID.String(),
		QuoteID:             a.QuoteID.String(),
		TotalAmount:         a.TotalAmount.StringFixed(2),
		AuthorizedBy:        a.AuthorizedByID.String(),
		AuthorizedAt:        a.AuthorizedAt.Format(time.RFC3339),
		IsValidated:         a.IsValidated,
		Notes:               a.Notes,
		Lines:               make([]AuthorizationLineResponse, 0, len(a.Lines)),
		CreatedAt:           a.CreatedAt.Format(time.RFC3339),
	}
	if a.ValidatedAt != nil {
		s := a.ValidatedAt.Format(time.RFC3339)
		resp.ValidatedAt = &s
	}
	for i := range a.Lines {
		l := &a.Lines[i]
		resp.Lines = append(resp.Lines, AuthorizationLineResponse{
			LineNumber:  l.LineNumber,
			Description: l.Description,
			Quantity:    l.Quantity.String(),
			UnitPrice:   l.UnitPrice.StringFixed(2),
			LineTotal:   l.LineTotal.StringFixed(2),
		})
	}
	return resp
}

func toInvoiceResult(inv *model.InterventionInvoice) InvoiceResult {
	return InvoiceResult{
		ID:            inv.ID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		Subtotal:      inv.Subtotal.StringFixed(2),
		TaxAmount:     inv.TaxAmount.StringFixed(2),
		TotalAmount:   inv.TotalAmount.StringFixed(2),
		PaymentStatus: inv.PaymentStatus,
		IssuedDate:    inv.IssuedDate.Format(time.RFC3339),
	}
}
