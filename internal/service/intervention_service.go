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

type ReportInterventionRequest struct {
	VehicleID       string `json:"vehicle_id" binding:"required"`
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	Priority        string `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	OdometerReading *int64 `json:"odometer_reading"`
}

type TransitionRequest struct {
	TargetStatus string `json:"target_status" binding:"required"`
	Comment      string `json:"comment"`
}

type InterventionFilter struct {
	Status    string
	Priority  string
	VehicleID string
	Page      int
	Limit     int
}

type InterventionResponse struct {
	ID                 string   `json:"id"`
	Number             string   `json:"number"`
	VehicleID          string   `json:"vehicle_id"`
	LicensePlate       string   `json:"license_plate,omitempty"`
	VehicleModel       string   `json:"vehicle_model,omitempty"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Priority           string   `json:"priority"`
	CurrentStatus      string   `json:"current_status"`
	ProgressPercent    int      `json:"progress_percent"`
	WorkflowStage      string   `json:"workflow_stage"`
	AllowedTransitions []string `json:"allowed_transitions"`
	OdometerReading    *int64   `json:"odometer_reading"`
	ReportedDate       string   `json:"reported_date"`
	StartedDate        *string  `json:"started_date"`
	CompletedDate      *string  `json:"completed_date"`
	ClosedDate         *string  `json:"closed_date"`
	CreatedAt          string   `json:"created_at"`
}

// --- Interface ---

type InterventionService interface {
	ReportIntervention(ctx context.Context, tenantID uuid.UUID, userID string, req ReportInterventionRequest) (InterventionResponse, error)
	// TransitionIntervention moves the intervention along the workflow. The
	// read-check-write runs in one transaction so two concurrent transitions
	// cannot both succeed from the same state.
	TransitionIntervention(ctx context.Context, tenantID uuid.UUID, userID string, id string, req TransitionRequest) (InterventionResponse, error)
	GetIntervention(ctx context.Context, tenantID uuid.UUID, id string) (InterventionResponse, error)
	ListInterventions(ctx context.Context, tenantID uuid.UUID, filter InterventionFilter) ([]InterventionResponse, int64, error)
}

type interventionService struct {
	interventionRepo repository.InterventionRepository
	vehicleRepo      repository.VehicleRepository
	auditRepo        repository.AuditRepository
	codeSvc          CodeService
	alertSvc         AlertService
	txManager        repository.TransactionManager
	now              func() time.Time
}

func NewInterventionService(
	interventionRepo repository.InterventionRepository,
	vehicleRepo repository.VehicleRepository,
	auditRepo repository.AuditRepository,
	codeSvc CodeService,
	alertSvc AlertService,
	txManager repository.TransactionManager,
) InterventionService {
	return &interventionService{
		interventionRepo: interventionRepo,
		vehicleRepo:      vehicleRepo,
		auditRepo:        auditRepo,
		codeSvc:          codeSvc,
		alertSvc:         alertSvc,
		txManager:        txManager,
		now:              time.Now,
	}
}

// --- Implementation ---

func (s *interventionService) ReportIntervention(ctx context.Context, tenantID uuid.UUID, userID string, req ReportInterventionRequest) (InterventionResponse, error) {
	vehicleID, err := uuid.Parse(req.VehicleID)
	if err != nil {
		return InterventionResponse{}, fmt.Errorf("invalid vehicle_id: %w", err)
	}

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	var reporterID *uuid.UUID
	if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
		reporterID = &parsed
	}

	var intervention model.Intervention
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		vehicle, findErr := s.vehicleRepo.FindByID(txCtx, tenantID, vehicleID)
		if findErr != nil {
			return fmt.Errorf("vehicle not found: %w", findErr)
		}
		if !vehicle.IsActive {
			return fmt.Errorf("vehicle %s is inactive", vehicle.LicensePlate)
		}

		number, codeErr := s.codeSvc.NextCode(txCtx, tenantID, model.CodeEntityIntervention)
		if codeErr != nil {
			return codeErr
		}

		intervention = model.Intervention{
			TenantID:        tenantID,
			VehicleID:       vehicleID,
			Number:          number,
			Title:           req.Title,
			Description:     req.Description,
			Priority:        priority,
			CurrentStatus:   model.StatusReported,
			OdometerReading: req.OdometerReading,
			ReportedDate:    s.now(),
			ReportedByID:    reporterID,
		}
		if createErr := s.interventionRepo.Create(txCtx, &intervention); createErr != nil {
			return fmt.Errorf("failed to create intervention: %w", createErr)
		}

		s.logAudit(txCtx, tenantID, reporterID, model.ActionReportIntervention, &intervention, map[string]interface{}{
			"vehicle_id": vehicleID.String(),
			"priority":   priority,
		})
		return nil
	})
	if err != nil {
		return InterventionResponse{}, err
	}

	if s.alertSvc != nil && priority == model.PriorityUrgent {
		_, _ = s.alertSvc.Notify(ctx, tenantID, CreateAlertInput{
			Type:       model.AlertTypeStatusChange,
			Severity:   model.SeverityWarning,
			Title:      "Urgent intervention reported",
			Message:    fmt.Sprintf("Intervention %s (%s) was reported with urgent priority", intervention.Number, intervention.Title),
			EntityType: "intervention",
			EntityID:   intervention.ID.String(),
		})
	}

	return s.reload(ctx, tenantID, intervention.ID)
}

func (s *interventionService) TransitionIntervention(ctx context.Context, tenantID uuid.UUID, userID string, id string, req TransitionRequest) (InterventionResponse, error) {
	interventionID, err := uuid.Parse(id)
	if err != nil {
		return InterventionResponse{}, fmt.Errorf("invalid intervention id: %w", err)
	}

	var actorID *uuid.UUID
	if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
		actorID = &parsed
	}

	var intervention *model.Intervention
	var previousStatus string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		intervention, findErr = s.interventionRepo.FindByID(txCtx, tenantID, interventionID)
		if findErr != nil {
			return fmt.Errorf("intervention not found: %w", findErr)
		}

		previousStatus = intervention.CurrentStatus
		if applyErr := intervention.ApplyTransition(req.TargetStatus, s.now()); applyErr != nil {
			return fmt.Errorf("cannot move intervention %s from %s to %s: %w",
				intervention.Number, previousStatus, req.TargetStatus, applyErr)
		}

		if updateErr := s.interventionRepo.Update(txCtx, intervention); updateErr != nil {
			return fmt.Errorf("failed to update intervention: %w", updateErr)
		}

		s.logAudit(txCtx, tenantID, actorID, model.ActionTransitionIntervention, intervention, map[string]interface{}{
			"from":    previousStatus,
			"to":      req.TargetStatus,
			"comment": req.Comment,
		})
		return nil
	})
	if err != nil {
		return InterventionResponse{}, err
	}

	if s.alertSvc != nil {
		severity := model.SeverityInfo
		if req.TargetStatus == model.StatusCancelled {
			severity = model.SeverityWarning
		}
		_, _ = s.alertSvc.Notify(ctx, tenantID, CreateAlertInput{
			Type:       model.AlertTypeStatusChange,
			Severity:   severity,
			Title:      fmt.Sprintf("Intervention %s: %s", intervention.Number, req.TargetStatus),
			Message:    fmt.Sprintf("Intervention %s moved from %s to %s", intervention.Number, previousStatus, req.TargetStatus),
			EntityType: "intervention",
			EntityID:   intervention.ID.String(),
		})
	}

	return s.reload(ctx, tenantID, interventionID)
}

func (s *interventionService) GetIntervention(ctx context.Context, tenantID uuid.UUID, id string) (InterventionResponse, error) {
	interventionID, err := uuid.Parse(id)
	if err != nil {
		return InterventionResponse{}, fmt.Errorf("invalid intervention id: %w", err)
	}
	return s.reload(ctx, tenantID, interventionID)
}

func (s *interventionService) ListInterventions(ctx context.Context, tenantID uuid.UUID, filter InterventionFilter) ([]InterventionResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Status != "" && !model.IsValidStatus(filter.Status) {
		return nil, 0, fmt.Errorf("unknown status %q", filter.Status)
	}

	interventions, total, err := s.interventionRepo.List(ctx, tenantID, repository.InterventionListFilter{
		Status:    filter.Status,
		Priority:  filter.Priority,
		VehicleID: filter.VehicleID,
		Page:      filter.Page,
		Limit:     filter.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch interventions: %w", err)
	}

	result := make([]InterventionResponse, 0, len(interventions))
	for i := range interventions {
		result = append(result, toInterventionResponse(&interventions[i]))
	}
	return result, total, nil
}

func (s *interventionService) reload(ctx context.Context, tenantID, id uuid.UUID) (InterventionResponse, error) {
	intervention, err := s.interventionRepo.FindByIDWithVehicle(ctx, tenantID, id)
	if err != nil {
		return InterventionResponse{}, fmt.Errorf("intervention not found: %w", err)
	}
	return toInterventionResponse(intervention), nil
}

func (s *interventionService) logAudit(ctx context.Context, tenantID uuid.UUID, actorID *uuid.UUID, action string, intervention *model.Intervention, details map[string]interface{}) {
	payload, _ := json.Marshal(details)
	_ = s.auditRepo.Log(ctx, &model.AuditLog{
		TenantID:   &tenantID,
		UserID:     actorID,
		Action:     action,
		EntityID:   intervention.ID.String(),
		EntityName: intervention.Number,
		Details:    string(payload),
	})
}

// --- Mapping ---

func toInterventionResponse(i *model.Intervention) InterventionResponse {
	resp := InterventionResponse{
		ID:                 i.ID.String(),
		Number:             i.Number,
		VehicleID:          i.VehicleID.String(),
		Title:              i.Title,
		Description:        i.Description,
		Priority:           i.Priority,
		CurrentStatus:      i.CurrentStatus,
		ProgressPercent:    i.ProgressPercent(),
		WorkflowStage:      i.WorkflowStage(),
		AllowedTransitions: model.AllowedTransitions(i.CurrentStatus),
		OdometerReading:    i.OdometerReading,
		ReportedDate:       i.ReportedDate.Format(time.RFC3339),
		CreatedAt:          i.CreatedAt.Format(time.RFC3339),
	}
	if i.Vehicle != nil {
		resp.LicensePlate = i.Vehicle.LicensePlate
		resp.VehicleModel = i.Vehicle.Model
	}
	if i.StartedDate != nil {
		s := i.StartedDate.Format(time.RFC3339)
		resp.StartedDate = &s
	}
	if i.CompletedDate != nil {
		s := i.CompletedDate.Format(time.RFC3339)
		resp.CompletedDate = &s
	}
	if i.ClosedDate != nil {
		s := i.ClosedDate.Format(time.RFC3339)
		resp.ClosedDate = &s
	}
	return resp
}
