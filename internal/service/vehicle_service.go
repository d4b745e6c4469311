package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backend/internal/client"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateVehicleRequest struct {
	LicensePlate string `json:"license_plate" binding:"required"`
	Brand        string `json:"brand" binding:"required"`
	Model        string `json:"model" binding:"required"`
	Year         int    `json:"year"`
	Odometer     int64  `json:"odometer"`
	TrackingID   string `json:"tracking_id"`
	DriverID     string `json:"driver_id"`
}

type UpdateVehicleRequest struct {
	Brand      *string `json:"brand"`
	Model      *string `json:"model"`
	Year       *int    `json:"year"`
	Odometer   *int64  `json:"odometer"`
	TrackingID *string `json:"tracking_id"`
	DriverID   *string `json:"driver_id"`
	IsActive   *bool   `json:"is_active"`
}

type VehicleResponse struct {
	ID           string  `json:"id"`
	LicensePlate string  `json:"license_plate"`
	Brand        string  `json:"brand"`
	Model        string  `json:"model"`
	Year         int     `json:"year"`
	Odometer     int64   `json:"odometer"`
	TrackingID   string  `json:"tracking_id,omitempty"`
	DriverID     *string `json:"driver_id"`
	DriverName   string  `json:"driver_name,omitempty"`
	IsActive     bool    `json:"is_active"`
	CreatedAt    string  `json:"created_at"`
}

// --- Interface ---

type VehicleService interface {
	CreateVehicle(ctx context.Context, tenantID uuid.UUID, userID string, req CreateVehicleRequest) (VehicleResponse, error)
	GetVehicle(ctx context.Context, tenantID uuid.UUID, id string) (VehicleResponse, error)
	ListVehicles(ctx context.Context, tenantID uuid.UUID, activeOnly bool, page, limit int) ([]VehicleResponse, int64, error)
	UpdateVehicle(ctx context.Context, tenantID uuid.UUID, userID string, id string, req UpdateVehicleRequest) (VehicleResponse, error)
	DeactivateVehicle(ctx context.Context, tenantID uuid.UUID, id string) error
	// SyncOdometer pulls the current mileage from the tracking API. The
	// reading only ever moves forward; a lower remote value is ignored.
	SyncOdometer(ctx context.Context, tenantID uuid.UUID, id string) (VehicleResponse, error)
}

type vehicleService struct {
	vehicleRepo repository.VehicleRepository
	auditRepo   repository.AuditRepository
	tracking    client.TrackingClient
}

// NewVehicleService creates a VehicleService. tracking may be nil when the
// integration is disabled.
func NewVehicleService(
	vehicleRepo repository.VehicleRepository,
	auditRepo repository.AuditRepository,
	tracking client.TrackingClient,
) VehicleService {
	return &vehicleService{
		vehicleRepo: vehicleRepo,
		auditRepo:   auditRepo,
		tracking:    tracking,
	}
}

// --- Implementation ---

func (s *vehicleService) CreateVehicle(ctx context.Context, tenantID uuid.UUID, userID string, req CreateVehicleRequest) (VehicleResponse, error) {
	var driverID *uuid.UUID
	if req.DriverID != "" {
		parsed, err := uuid.Parse(req.DriverID)
		if err != nil {
			return VehicleResponse{}, fmt.Errorf("invalid driver_id: %w", err)
		}
		driverID = &parsed
	}

	vehicle := model.Vehicle{
		TenantID:     tenantID,
		LicensePlate: req.LicensePlate,
		Brand:        req.Brand,
		Model:        req.Model,
		Year:         req.Year,
		Odometer:     req.Odometer,
		TrackingID:   req.TrackingID,
		DriverID:     driverID,
		IsActive:     true,
	}
	if err := s.vehicleRepo.Create(ctx, &vehicle); err != nil {
		return VehicleResponse{}, fmt.Errorf("failed to create vehicle: %w", err)
	}

	s.logAudit(ctx, tenantID, userID, model.ActionCreateVehicle, &vehicle)
	return toVehicleResponse(&vehicle), nil
}

func (s *vehicleService) GetVehicle(ctx context.Context, tenantID uuid.UUID, id string) (VehicleResponse, error) {
	vehicleID, err := uuid.Parse(id)
	if err != nil {
		return VehicleResponse{}, fmt.Errorf("invalid vehicle id: %w", err)
	}

	vehicle, err := s.vehicleRepo.FindByID(ctx, tenantID, vehicleID)
	if err != nil {
		return VehicleResponse{}, fmt.Errorf("vehicle not found: %w", err)
	}
	return toVehicleResponse(vehicle), nil
}

func (s *vehicleService) ListVehicles(ctx context.Context, tenantID uuid.UUID, activeOnly bool, page, limit int) ([]VehicleResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	vehicles, total, err := s.vehicleRepo.List(ctx, tenantID, activeOnly, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch vehicles: %w", err)
	}

	result := make([]VehicleResponse, 0, len(vehicles))
	for i := range vehicles {
		result = append(result, toVehicleResponse(&vehicles[i]))
	}
	return result, total, nil
}

func (s *vehicleService) UpdateVehicle(ctx context.Context, tenantID uuid.UUID, userID string, id string, req UpdateVehicleRequest) (VehicleResponse, error) {
	vehicleID, err := uuid.Parse(id)
	if err != nil {
		return VehicleResponse{}, fmt.Errorf("invalid vehicle id: %w", err)
	}

	vehicle, err := s.vehicleRepo.FindByID(ctx, tenantID, vehicleID)
	if err != nil {
		return VehicleResponse{}, fmt.Errorf("vehicle not found: %w", err)
	}

	if req.Brand != nil {
		vehicle.Brand = *req.Brand
	}
	if req.Model != nil {
		vehicle.Model = *req.Model
	}
	if req.Year != nil {
		vehicle.Year = *req.Year
	}
	if req.Odometer != nil {
		vehicle.Odometer = *req.Odometer
	}
	if req.TrackingID != nil {
		vehicle.TrackingID = *req.TrackingID
	}
	if req.DriverID != nil {
		if *req.DriverID == "" {
			vehicle.DriverID = nil
		} else {
			parsed, parseErr := uuid.Parse(*req.DriverID)
			if parseErr != nil {
				return VehicleResponse{}, fmt.Errorf("invalid driver_id: %w", parseErr)
			}
			vehicle.DriverID = &parsed
		}
	}
	if req.IsActive != nil {
		vehicle.IsActive = *req.IsActive
	}

	if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
		return VehicleResponse{}, fmt.Errorf("failed to update vehicle: %w", err)
	}

	s.logAudit(ctx, tenantID, userID, model.ActionUpdateVehicle, vehicle)
	return toVehicleResponse(vehicle), nil
}

func (s *vehicleService) DeactivateVehicle(ctx context.Context, tenantID uuid.UUID, id string) error {
	vehicleID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid vehicle id: %w", err)
	}

	vehicle, err := s.vehicleRepo.FindByID(ctx, tenantID, vehicleID)
	if err != nil {
		return fmt.Errorf("vehicle not found: %w", err)
	}

	vehicle.IsActive = false
	if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
		return fmt.Errorf("failed to deactivate vehicle: %w", err)
	}
	return nil
}

func (s *vehicleService) SyncOdometer(ctx context.Context, tenantID uuid.UUID, id string) (VehicleResponse, error) {
	if s.tracking == nil {
		return VehicleResponse{}, fmt.Errorf("tracking integration is not configured")
	}

	vehicleID, err := uuid.Parse(id)
	if err != nil {
		return VehicleResponse{}, fmt.Errorf("invalid vehicle id: %w", err)
	}

	vehicle, err := s.vehicleRepo.FindByID(ctx, tenantID, vehicleID)
	if err != nil {
		return VehicleResponse{}, fmt.Errorf("vehicle not found: %w", err)
	}
	if vehicle.TrackingID == "" {
		return VehicleResponse{}, fmt.Errorf("vehicle %s has no tracking id", vehicle.LicensePlate)
	}

	mileage, err := s.tracking.GetMileage(ctx, vehicle.TrackingID)
	if err != nil {
		return VehicleResponse{}, fmt.Errorf("failed to read tracking mileage: %w", err)
	}

	if mileage > vehicle.Odometer {
		vehicle.Odometer = mileage
		if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
			return VehicleResponse{}, fmt.Errorf("failed to update vehicle: %w", err)
		}
	}
	return toVehicleResponse(vehicle), nil
}

func (s *vehicleService) logAudit(ctx context.Context, tenantID uuid.UUID, userID string, action string, vehicle *model.Vehicle) {
	var actorID *uuid.UUID
	if parsed, err := uuid.Parse(userID); err == nil {
		actorID = &parsed
	}
	details, _ := json.Marshal(map[string]interface{}{
		"license_plate": vehicle.LicensePlate,
		"brand":         vehicle.Brand,
		"model":         vehicle.Model,
	})
	_ = s.auditRepo.Log(ctx, &model.AuditLog{
		TenantID:   &tenantID,
		UserID:     actorID,
		Action:     action,
		EntityID:   vehicle.ID.String(),
		EntityName: vehicle.LicensePlate,
		Details:    string(details),
	})
}

// --- Mapping ---

func toVehicleResponse(v *model.Vehicle) VehicleResponse {
	resp := VehicleResponse{
		ID:           v.ID.String(),
		LicensePlate: v.LicensePlate,
		Brand:        v.Brand,
		Model:        v.Model,
		Year:         v.Year,
		Odometer:     v.Odometer,
		TrackingID:   v.TrackingID,
		IsActive:     v.IsActive,
		CreatedAt:    v.CreatedAt.Format(time.RFC3339),
	}
	if v.DriverID != nil {
		s := v.DriverID.String()
		resp.DriverID = &s
	}
	if v.Driver != nil {
		resp.DriverName = v.Driver.FullName
	}
	return resp
}
