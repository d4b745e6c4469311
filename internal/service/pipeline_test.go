package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// pipelineFixture wires the full quote -> authorization -> invoice pipeline
// against one database, with every service clock pinned to the same instant
type pipelineFixture struct {
	db            *gorm.DB
	tenantID      uuid.UUID
	userID        string
	vehicleID     string
	interventions *interventionService
	quotes        *quoteService
	authorized    *authorizationService
	invoices      *invoiceService
}

func newPipeline(t *testing.T, at time.Time) *pipelineFixture {
	t.Helper()
	db := newTestDB(t)
	tenantID := seedTenant(t, db)
	user := seedUser(t, db, tenantID, "manager")
	vehicle := seedVehicle(t, db, tenantID)

	txManager := repository.NewTransactionManager(db)
	auditRepo := repository.NewAuditRepository(db)
	interventionRepo := repository.NewInterventionRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	authRepo := repository.NewWorkAuthorizationRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)

	paramSvc := NewParameterService(repository.NewParameterRepository(db))
	alertSvc := NewAlertService(repository.NewAlertRepository(db), repository.NewTenantRepository(db), nil, nil)

	codeSvc := NewCodeService(repository.NewCodeFormatRepository(db)).(*codeService)
	codeSvc.now = fixedClock(at)

	priceSvc := NewPriceService(repository.NewPriceHistoryRepository(db), paramSvc, alertSvc, auditRepo).(*priceService)
	priceSvc.now = fixedClock(at)

	interventionSvc := NewInterventionService(interventionRepo, repository.NewVehicleRepository(db), auditRepo, codeSvc, alertSvc, txManager).(*interventionService)
	interventionSvc.now = fixedClock(at)

	quoteSvc := NewQuoteService(quoteRepo, interventionRepo, auditRepo, codeSvc, priceSvc, txManager).(*quoteService)
	quoteSvc.now = fixedClock(at)

	authSvc := NewAuthorizationService(authRepo, quoteRepo, invoiceRepo, interventionRepo, auditRepo, codeSvc, alertSvc, priceSvc, txManager).(*authorizationService)
	authSvc.now = fixedClock(at)

	invoiceSvc := NewInvoiceService(invoiceRepo, auditRepo, alertSvc, txManager).(*invoiceService)
	invoiceSvc.now = fixedClock(at)

	return &pipelineFixture{
		db:            db,
		tenantID:      tenantID,
		userID:        user.ID.String(),
		vehicleID:     vehicle.ID.String(),
		interventions: interventionSvc,
		quotes:        quoteSvc,
		authorized:    authSvc,
		invoices:      invoiceSvc,
	}
}

func (fx *pipelineFixture) advance(t *testing.T, ctx context.Context, interventionID string, statuses ...string) InterventionResponse {
	t.Helper()
	var resp InterventionResponse
	var err error
	for _, status := range statuses {
		resp, err = fx.interventions.TransitionIntervention(ctx, fx.tenantID, fx.userID, interventionID, TransitionRequest{TargetStatus: status})
		require.NoError(t, err, "transition to %s", status)
	}
	return resp
}

func TestQuoteToInvoicePipeline(t *testing.T) {
	june := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	fx := newPipeline(t, june)
	ctx := context.Background()

	// Report the breakdown
	intervention, err := fx.interventions.ReportIntervention(ctx, fx.tenantID, fx.userID, ReportInterventionRequest{
		VehicleID:   fx.vehicleID,
		Title:       "Clutch slipping under load",
		Priority:    model.PriorityHigh,
	})
	require.NoError(t, err)
	assert.Equal(t, "INT-2025-06-0001", intervention.Number)
	assert.Equal(t, model.StatusReported, intervention.CurrentStatus)

	// Walk the workflow up to approval
	fx.advance(t, ctx, intervention.ID,
		model.StatusInPrediagnostic,
		model.StatusPrediagnosticCompleted,
		model.StatusInQuote,
	)

	quote, err := fx.quotes.CreateQuote(ctx, fx.tenantID, fx.userID, CreateQuoteRequest{
		InterventionID: intervention.ID,
		MaxAmount:      "500",
		Lines: []QuoteLineRequest{
			{Description: "Clutch kit", Quantity: "2", UnitPrice: "100", TaxRate: "18"},
			{Description: "Labor", Quantity: "1", UnitPrice: "50", DiscountAmount: "5"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "DEV-2025-0001", quote.QuoteNumber)
	assert.Equal(t, "281.00", quote.TotalAmount)
	require.Len(t, quote.Lines, 2)
	assert.Equal(t, "236.00", quote.Lines[0].LineTotal)
	assert.Equal(t, "45.00", quote.Lines[1].LineTotal)

	// Authorization requires an approved quote
	_, err = fx.authorized.GenerateFromQuote(ctx, fx.tenantID, fx.userID, GenerateAuthorizationRequest{QuoteID: quote.ID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not approved")

	fx.advance(t, ctx, intervention.ID, model.StatusQuoteReceived, model.StatusInApproval)

	quote, err = fx.quotes.ApproveQuote(ctx, fx.tenantID, fx.userID, quote.ID)
	require.NoError(t, err)
	assert.True(t, quote.IsApproved)
	require.NotNil(t, quote.ApprovedAt)

	current, err := fx.interventions.GetIntervention(ctx, fx.tenantID, intervention.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, current.CurrentStatus, "approval drags the intervention along")

	authorization, err := fx.authorized.GenerateFromQuote(ctx, fx.tenantID, fx.userID, GenerateAuthorizationRequest{QuoteID: quote.ID})
	require.NoError(t, err)
	assert.Equal(t, "OT-2025-0001", authorization.AuthorizationNumber)
	assert.Equal(t, "281.00", authorization.TotalAmount)
	assert.False(t, authorization.IsValidated)

	// One authorization per quote
	_, err = fx.authorized.GenerateFromQuote(ctx, fx.tenantID, fx.userID, GenerateAuthorizationRequest{QuoteID: quote.ID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already has a work authorization")

	// Validation produces the invoice atomically and releases the repair
	result, err := fx.authorized.ValidateAuthorization(ctx, fx.tenantID, fx.userID, authorization.ID)
	require.NoError(t, err)
	assert.True(t, result.Authorization.IsValidated)
	assert.Equal(t, "FACT-202506-0001", result.Invoice.InvoiceNumber)
	assert.Equal(t, "281.00", result.Invoice.Subtotal)
	assert.Equal(t, "50.58", result.Invoice.TaxAmount)
	assert.Equal(t, "331.58", result.Invoice.TotalAmount)
	assert.Equal(t, model.PaymentPending, result.Invoice.PaymentStatus)

	current, err = fx.interventions.GetIntervention(ctx, fx.tenantID, intervention.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInRepair, current.CurrentStatus)

	_, err = fx.authorized.ValidateAuthorization(ctx, fx.tenantID, fx.userID, authorization.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already validated")

	// The invoice carries the frozen lines
	invoice, err := fx.invoices.GetInvoice(ctx, fx.tenantID, result.Invoice.ID)
	require.NoError(t, err)
	require.Len(t, invoice.Lines, 2)
	assert.Equal(t, "Clutch kit", invoice.Lines[0].Description)

	// Settle it; a second settlement is refused
	paid, err := fx.invoices.MarkPaid(ctx, fx.tenantID, fx.userID, result.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, paid.PaymentStatus)
	require.NotNil(t, paid.PaidAt)

	_, err = fx.invoices.MarkPaid(ctx, fx.tenantID, fx.userID, result.Invoice.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already paid")
}

// invoiceFor walks one intervention from report to validated invoice
func (fx *pipelineFixture) invoiceFor(t *testing.T, ctx context.Context, title string) ValidationResult {
	t.Helper()
	intervention, err := fx.interventions.ReportIntervention(ctx, fx.tenantID, fx.userID, ReportInterventionRequest{
		VehicleID: fx.vehicleID,
		Title:     title,
	})
	require.NoError(t, err)
	fx.advance(t, ctx, intervention.ID,
		model.StatusInPrediagnostic,
		model.StatusPrediagnosticCompleted,
		model.StatusInQuote,
		model.StatusQuoteReceived,
		model.StatusInApproval,
	)
	quote, err := fx.quotes.CreateQuote(ctx, fx.tenantID, fx.userID, CreateQuoteRequest{
		InterventionID: intervention.ID,
		Lines: []QuoteLineRequest{
			{Description: title, Quantity: "1", UnitPrice: "100"},
		},
	})
	require.NoError(t, err)
	_, err = fx.quotes.ApproveQuote(ctx, fx.tenantID, fx.userID, quote.ID)
	require.NoError(t, err)
	authorization, err := fx.authorized.GenerateFromQuote(ctx, fx.tenantID, fx.userID, GenerateAuthorizationRequest{QuoteID: quote.ID})
	require.NoError(t, err)
	result, err := fx.authorized.ValidateAuthorization(ctx, fx.tenantID, fx.userID, authorization.ID)
	require.NoError(t, err)
	return result
}

func TestInvoiceNumbersFollowOneSequence(t *testing.T) {
	june := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	fx := newPipeline(t, june)
	ctx := context.Background()

	first := fx.invoiceFor(t, ctx, "Brake pads front")
	second := fx.invoiceFor(t, ctx, "Brake pads rear")

	assert.Equal(t, "FACT-202506-0001", first.Invoice.InvoiceNumber)
	assert.Equal(t, "FACT-202506-0002", second.Invoice.InvoiceNumber)
}

func TestValidateRefusesAlreadyInvoicedIntervention(t *testing.T) {
	june := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	fx := newPipeline(t, june)
	ctx := context.Background()

	result := fx.invoiceFor(t, ctx, "Exhaust replacement")

	// A second quote on the same intervention can still be raised and
	// authorized, but its validation must not mint a second invoice
	quote, err := fx.quotes.CreateQuote(ctx, fx.tenantID, fx.userID, CreateQuoteRequest{
		InterventionID: result.Authorization.InterventionID,
		Lines: []QuoteLineRequest{
			{Description: "Extra bracket", Quantity: "1", UnitPrice: "20"},
		},
	})
	require.NoError(t, err)
	_, err = fx.quotes.ApproveQuote(ctx, fx.tenantID, fx.userID, quote.ID)
	require.NoError(t, err)
	authorization, err := fx.authorized.GenerateFromQuote(ctx, fx.tenantID, fx.userID, GenerateAuthorizationRequest{QuoteID: quote.ID})
	require.NoError(t, err)

	_, err = fx.authorized.ValidateAuthorization(ctx, fx.tenantID, fx.userID, authorization.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already has invoice "+result.Invoice.InvoiceNumber)
}

func TestApproveQuoteRefusesBudgetOverrun(t *testing.T) {
	june := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	fx := newPipeline(t, june)
	ctx := context.Background()

	intervention, err := fx.interventions.ReportIntervention(ctx, fx.tenantID, fx.userID, ReportInterventionRequest{
		VehicleID: fx.vehicleID,
		Title:     "Gearbox overhaul",
	})
	require.NoError(t, err)

	quote, err := fx.quotes.CreateQuote(ctx, fx.tenantID, fx.userID, CreateQuoteRequest{
		InterventionID: intervention.ID,
		MaxAmount:      "200",
		Lines: []QuoteLineRequest{
			{Description: "Gearbox", Quantity: "1", UnitPrice: "250"},
		},
	})
	require.NoError(t, err)

	_, err = fx.quotes.ApproveQuote(ctx, fx.tenantID, fx.userID, quote.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds budget cap")
}

func TestCreateQuoteRefusesClosedIntervention(t *testing.T) {
	june := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	fx := newPipeline(t, june)
	ctx := context.Background()

	intervention, err := fx.interventions.ReportIntervention(ctx, fx.tenantID, fx.userID, ReportInterventionRequest{
		VehicleID: fx.vehicleID,
		Title:     "Flat tyre",
	})
	require.NoError(t, err)

	fx.advance(t, ctx, intervention.ID, model.StatusCancelled)

	_, err = fx.quotes.CreateQuote(ctx, fx.tenantID, fx.userID, CreateQuoteRequest{
		InterventionID: intervention.ID,
		Lines: []QuoteLineRequest{
			{Description: "Tyre", Quantity: "1", UnitPrice: "80"},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed intervention")
}

func TestSweepOverdueFlipsPastDueInvoices(t *testing.T) {
	june := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	fx := newPipeline(t, june)
	ctx := context.Background()

	intervention, err := fx.interventions.ReportIntervention(ctx, fx.tenantID, fx.userID, ReportInterventionRequest{
		VehicleID: fx.vehicleID,
		Title:     "Brake service",
	})
	require.NoError(t, err)
	fx.advance(t, ctx, intervention.ID,
		model.StatusInPrediagnostic,
		model.StatusPrediagnosticCompleted,
		model.StatusInQuote,
		model.StatusQuoteReceived,
		model.StatusInApproval,
	)

	quote, err := fx.quotes.CreateQuote(ctx, fx.tenantID, fx.userID, CreateQuoteRequest{
		InterventionID: intervention.ID,
		Lines: []QuoteLineRequest{
			{Description: "Brake pads", Quantity: "1", UnitPrice: "120"},
		},
	})
	require.NoError(t, err)
	_, err = fx.quotes.ApproveQuote(ctx, fx.tenantID, fx.userID, quote.ID)
	require.NoError(t, err)
	authorization, err := fx.authorized.GenerateFromQuote(ctx, fx.tenantID, fx.userID, GenerateAuthorizationRequest{QuoteID: quote.ID})
	require.NoError(t, err)
	result, err := fx.authorized.ValidateAuthorization(ctx, fx.tenantID, fx.userID, authorization.ID)
	require.NoError(t, err)

	// Due date is a month out; nothing to sweep yet
	flipped, err := fx.invoices.SweepOverdue(ctx, fx.tenantID)
	require.NoError(t, err)
	assert.Equal(t, 0, flipped)

	fx.invoices.now = fixedClock(june.AddDate(0, 2, 0))
	flipped, err = fx.invoices.SweepOverdue(ctx, fx.tenantID)
	require.NoError(t, err)
	assert.Equal(t, 1, flipped)

	invoice, err := fx.invoices.GetInvoice(ctx, fx.tenantID, result.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentOverdue, invoice.PaymentStatus)

	var overdueAlerts int64
	require.NoError(t, fx.db.Model(&model.Alert{}).Where("type = ?", model.AlertTypeInvoiceOverdue).Count(&overdueAlerts).Error)
	assert.EqualValues(t, 1, overdueAlerts)

	// Idempotent: a second sweep finds nothing pending
	flipped, err = fx.invoices.SweepOverdue(ctx, fx.tenantID)
	require.NoError(t, err)
	assert.Equal(t, 0, flipped)
}
