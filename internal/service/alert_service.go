package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"backend/internal/model"
	"backend/internal/notifier"
	"backend/internal/repository"
	ws "backend/internal/websocket"

	"github.com/google/uuid"
)

// --- DTOs ---

// CreateAlertInput is used by other services, not bound from HTTP
type CreateAlertInput struct {
	Type       string
	Severity   string
	Title      string
	Message    string
	EntityType string
	EntityID   string
}

type AlertFilter struct {
	Type       string
	Severity   string
	UnreadOnly bool
	Page       int
	Limit      int
}

type AlertResponse struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Severity   string  `json:"severity"`
	Title      string  `json:"title"`
	Message    string  `json:"message"`
	EntityType string  `json:"entity_type"`
	EntityID   string  `json:"entity_id"`
	IsRead     bool    `json:"is_read"`
	ReadAt     *string `json:"read_at"`
	CreatedAt  string  `json:"created_at"`
}

// AlertEvent is the websocket payload pushed on alert creation
type AlertEvent struct {
	Event string        `json:"event"`
	Data  AlertResponse `json:"data"`
}

// --- Interface ---

type AlertService interface {
	// Notify persists the alert, pushes it over websocket and, for critical
	// severity, mails the tenant contact. Websocket and mail delivery are
	// best-effort; only the database write can fail the call.
	Notify(ctx context.Context, tenantID uuid.UUID, input CreateAlertInput) (*model.Alert, error)
	ListAlerts(ctx context.Context, tenantID uuid.UUID, filter AlertFilter) ([]AlertResponse, int64, error)
	CountUnread(ctx context.Context, tenantID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, tenantID uuid.UUID, id string, userID string) (AlertResponse, error)
	Dismiss(ctx context.Context, tenantID uuid.UUID, id string, userID string) error
}

type alertService struct {
	alertRepo  repository.AlertRepository
	tenantRepo repository.TenantRepository
	hub        *ws.Hub
	mailer     notifier.Mailer
}

// NewAlertService creates an AlertService. hub and mailer may be nil; the
// corresponding delivery channel is then skipped.
func NewAlertService(
	alertRepo repository.AlertRepository,
	tenantRepo repository.TenantRepository,
	hub *ws.Hub,
	mailer notifier.Mailer,
) AlertService {
	return &alertService{
		alertRepo:  alertRepo,
		tenantRepo: tenantRepo,
		hub:        hub,
		mailer:     mailer,
	}
}

// --- Implementation ---

func (s *alertService) Notify(ctx context.Context, tenantID uuid.UUID, input CreateAlertInput) (*model.Alert, error) {
	severity := input.Severity
	if severity == "" {
		severity = model.SeverityInfo
	}

	alert := model.Alert{
		TenantID:   tenantID,
		Type:       input.Type,
		Severity:   severity,
		Title:      input.Title,
		Message:    input.Message,
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
		IsActive:   true,
	}
	if err := s.alertRepo.Create(ctx, &alert); err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}

	if s.hub != nil {
		s.hub.Publish(tenantID, AlertEvent{Event: "alert.created", Data: toAlertResponse(alert)})
	}

	if s.mailer != nil && severity == model.SeverityCritical {
		s.mailCritical(ctx, tenantID, &alert)
	}

	return &alert, nil
}

func (s *alertService) mailCritical(ctx context.Context, tenantID uuid.UUID, alert *model.Alert) {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil || tenant.ContactEmail == "" {
		return
	}
	subject := fmt.Sprintf("[%s] %s", alert.Severity, alert.Title)
	if err := s.mailer.Send([]string{tenant.ContactEmail}, subject, alert.Message); err != nil {
		log.Printf("alert mail delivery failed: %v", err)
	}
}

func (s *alertService) ListAlerts(ctx context.Context, tenantID uuid.UUID, filter AlertFilter) ([]AlertResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	alerts, total, err := s.alertRepo.List(ctx, tenantID, repository.AlertListFilter{
		Type:       filter.Type,
		Severity:   filter.Severity,
		UnreadOnly: filter.UnreadOnly,
		Page:       filter.Page,
		Limit:      filter.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch alerts: %w", err)
	}

	result := make([]AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		result = append(result, toAlertResponse(a))
	}
	return result, total, nil
}

func (s *alertService) CountUnread(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return s.alertRepo.CountUnread(ctx, tenantID)
}

func (s *alertService) MarkRead(ctx context.Context, tenantID uuid.UUID, id string, userID string) (AlertResponse, error) {
	alertID, err := uuid.Parse(id)
	if err != nil {
		return AlertResponse{}, fmt.Errorf("invalid alert id: %w", err)
	}
	readerID, err := uuid.Parse(userID)
	if err != nil {
		return AlertResponse{}, fmt.Errorf("invalid user id: %w", err)
	}

	alert, err := s.alertRepo.FindByID(ctx, tenantID, alertID)
	if err != nil {
		return AlertResponse{}, fmt.Errorf("alert not found: %w", err)
	}

	// Marking twice keeps the first reader, the operation stays idempotent
	if !alert.IsRead {
		now := time.Now()
		alert.IsRead = true
		alert.ReadByID = &readerID
		alert.ReadAt = &now
		if err := s.alertRepo.Update(ctx, alert); err != nil {
			return AlertResponse{}, fmt.Errorf("failed to update alert: %w", err)
		}
	}
	return toAlertResponse(*alert), nil
}

func (s *alertService) Dismiss(ctx context.Context, tenantID uuid.UUID, id string, userID string) error {
	alertID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid alert id: %w", err)
	}
	dismisserID, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	alert, err := s.alertRepo.FindByID(ctx, tenantID, alertID)
	if err != nil {
		return fmt.Errorf("alert not found: %w", err)
	}

	if alert.IsDismissed {
		return nil
	}
	now := time.Now()
	alert.IsDismissed = true
	alert.DismissedByID = &dismisserID
	alert.DismissedAt = &now
	if err := s.alertRepo.Update(ctx, alert); err != nil {
		return fmt.Errorf("failed to dismiss alert: %w", err)
	}
	return nil
}

// --- Mapping ---

func toAlertResponse(a model.Alert) AlertResponse {
	resp := AlertResponse{
		ID:         a.ID.String(),
		Type:       a.Type,
		Severity:   a.Severity,
		Title:      a.Title,
		Message:    a.Message,
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		IsRead:     a.IsRead,
		CreatedAt:  a.CreatedAt.Format(time.RFC3339),
	}
	if a.ReadAt != nil {
		s := a.ReadAt.Format(time.RFC3339)
		resp.ReadAt = &s
	}
	return resp
}
