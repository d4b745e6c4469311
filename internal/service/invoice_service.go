package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type InvoiceFilter struct {
	PaymentStatus string // pending, paid, overdue, cancelled or empty for all
	InvoiceNumber string // partial match
	Page          int
	Limit         int
}

type InvoiceLineResponse struct {
	LineNumber  int    `json:"line_number"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
}

type InvoiceResponse struct {
	ID                  string                `json:"id"`
	InvoiceNumber       string                `json:"invoice_number"`
	InterventionID      string                `json:"intervention_id"`
	WorkAuthorizationID string                `json:"work_authorization_id"`
	Subtotal            string                `json:"subtotal"`
	TaxAmount           string                `json:"tax_amount"`
	TotalAmount         string                `json:"total_amount"`
	PaymentStatus       string                `json:"payment_status"`
	IssuedDate          string                `json:"issued_date"`
	DueDate             *string               `json:"due_date"`
	PaidAt              *string               `json:"paid_at"`
	Notes               string                `json:"notes"`
	Lines               []InvoiceLineResponse `json:"lines,omitempty"`
	CreatedAt           string                `json:"created_at"`
}

// --- Interface ---

type InvoiceService interface {
	ListInvoices(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) ([]InvoiceResponse, int64, error)
	GetInvoice(ctx context.Context, tenantID uuid.UUID, id string) (InvoiceResponse, error)
	MarkPaid(ctx context.Context, tenantID uuid.UUID, userID string, id string) (InvoiceResponse, error)
	CancelInvoice(ctx context.Context, tenantID uuid.UUID, userID string, id string) (InvoiceResponse, error)
	// SweepOverdue flips pending invoices past their due date to overdue and
	// raises an alert per invoice. Returns the number flipped.
	SweepOverdue(ctx context.Context, tenantID uuid.UUID) (int, error)
}

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	auditRepo   repository.AuditRepository
	alertSvc    AlertService
	txManager   repository.TransactionManager
	now         func() time.Time
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	auditRepo repository.AuditRepository,
	alertSvc AlertService,
	txManager repository.TransactionManager,
) InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		auditRepo:   auditRepo,
		alertSvc:    alertSvc,
		txManager:   txManager,
		now:         time.Now,
	}
}

// --- Implementation ---

func (s *invoiceService) ListInvoices(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) ([]InvoiceResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	invoices, total, err := s.invoiceRepo.List(ctx, tenantID, repository.InvoiceListFilter{
		PaymentStatus: filter.PaymentStatus,
		InvoiceNumber: filter.InvoiceNumber,
		Page:          filter.Page,
		Limit:         filter.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch invoices: %w", err)
	}

	result := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		result = append(result, toInvoiceResponse(&invoices[i]))
	}
	return result, total, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, tenantID uuid.UUID, id string) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid invoice id: %w", err)
	}

	invoice, err := s.invoiceRepo.FindByIDWithLines(ctx, tenantID, invoiceID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invoice not found: %w", err)
	}
	return toInvoiceResponse(invoice), nil
}

func (s *invoiceService) MarkPaid(ctx context.Context, tenantID uuid.UUID, userID string, id string) (InvoiceResponse, error) {
	return s.updatePaymentStatus(ctx, tenantID, userID, id, model.PaymentPaid)
}

func (s *invoiceService) CancelInvoice(ctx context.Context, tenantID uuid.UUID, userID string, id string) (InvoiceResponse, error) {
	return s.updatePaymentStatus(ctx, tenantID, userID, id, model.PaymentCancelled)
}

func (s *invoiceService) updatePaymentStatus(ctx context.Context, tenantID uuid.UUID, userID string, id string, status string) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid invoice id: %w", err)
	}

	var actorID *uuid.UUID
	if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
		actorID = &parsed
	}

	var invoice *model.InterventionInvoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		invoice, findErr = s.invoiceRepo.FindByID(txCtx, tenantID, invoiceID)
		if findErr != nil {
			return fmt.Errorf("invoice not found: %w", findErr)
		}

		switch invoice.PaymentStatus {
		case model.PaymentPaid, model.PaymentCancelled:
			return fmt.Errorf("invoice %s is already %s", invoice.InvoiceNumber, invoice.PaymentStatus)
		}

		now := s.now()
		invoice.PaymentStatus = status
		if status == model.PaymentPaid {
			invoice.PaidAt = &now
		}
		if updateErr := s.invoiceRepo.Update(txCtx, invoice); updateErr != nil {
			return fmt.Errorf("failed to update invoice: %w", updateErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"payment_status": status,
			"total_amount":   invoice.TotalAmount.StringFixed(2),
		})
		_ = s.auditRepo.Log(txCtx, &model.AuditLog{
			TenantID:   &tenantID,
			UserID:     actorID,
			Action:     model.ActionMarkInvoicePaid,
			EntityID:   invoice.ID.String(),
			EntityName: invoice.InvoiceNumber,
			Details:    string(details),
		})
		return nil
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	return toInvoiceResponse(invoice), nil
}

func (s *invoiceService) SweepOverdue(ctx context.Context, tenantID uuid.UUID) (int, error) {
	now := s.now()

	// Pending invoices are few per tenant; paging through them is fine
	invoices, _, err := s.invoiceRepo.List(ctx, tenantID, repository.InvoiceListFilter{
		PaymentStatus: model.PaymentPending,
		Page:          1,
		Limit:         500,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to fetch pending invoices: %w", err)
	}

	flipped := 0
	for i := range invoices {
		invoice := &invoices[i]
		if invoice.DueDate == nil || !invoice.DueDate.Before(now) {
			continue
		}

		invoice.PaymentStatus = model.PaymentOverdue
		if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
			return flipped, fmt.Errorf("failed to mark invoice %s overdue: %w", invoice.InvoiceNumber, err)
		}
		flipped++

		if s.alertSvc != nil {
			_, _ = s.alertSvc.Notify(ctx, tenantID, CreateAlertInput{
				Type:       model.AlertTypeInvoiceOverdue,
				Severity:   model.SeverityWarning,
				Title:      fmt.Sprintf("Invoice %s is overdue", invoice.InvoiceNumber),
				Message:    fmt.Sprintf("Invoice %s for %s was due on %s", invoice.InvoiceNumber, invoice.TotalAmount.StringFixed(2), invoice.DueDate.Format("2006-01-02")),
				EntityType: "intervention_invoice",
				EntityID:   invoice.ID.String(),
			})
		}
	}
	return flipped, nil
}

// --- Mapping ---

func toInvoiceResponse(inv *model.InterventionInvoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:                  inv.ID.String(),
		InvoiceNumber:       inv.InvoiceNumber,
		InterventionID:      inv.InterventionID.String(),
		WorkAuthorizationID: inv.WorkAuthorizationID.String(),
		Subtotal:            inv.Subtotal.StringFixed(2),
		TaxAmount:           inv.TaxAmount.StringFixed(2),
		TotalAmount:         inv.TotalAmount.StringFixed(2),
		PaymentStatus:       inv.PaymentStatus,
		IssuedDate:          inv.IssuedDate.Format(time.RFC3339),
		Notes:               inv.Notes,
		CreatedAt:           inv.CreatedAt.Format(time.RFC3339),
	}
	if inv.DueDate != nil {
		s := inv.DueDate.Format(time.RFC3339)
		resp.DueDate = &s
	}
	if inv.PaidAt != nil {
		s := inv.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &s
	}
	for i := range inv.Lines {
		l := &inv.Lines[i]
		resp.Lines = append(resp.Lines, InvoiceLineResponse{
			LineNumber:  l.LineNumber,
			Description: l.Description,
			Quantity:    l.Quantity.String(),
			UnitPrice:   l.UnitPrice.StringFixed(2),
			LineTotal:   l.LineTotal.StringFixed(2),
		})
	}
	return resp
}
