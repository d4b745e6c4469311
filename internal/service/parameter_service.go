package service

import (
	"context"
	"fmt"
	"strconv"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// Default price analysis settings, used when no parameter row overrides them
const (
	DefaultPriceWindowMonths      = 6
	DefaultPriceMinSamples        = 3
	DefaultPriceThresholdCritical = 50.0
	DefaultPriceThresholdHigh     = 30.0
	DefaultPriceThresholdMedium   = 20.0
	DefaultPriceThresholdLow      = 10.0
)

// --- DTOs ---

type SetParameterRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value" binding:"required"`
}

type ParameterResponse struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	IsGlobal bool   `json:"is_global"`
}

// PriceAnalysisSettings is the resolved configuration of the anomaly engine
type PriceAnalysisSettings struct {
	WindowMonths      int
	MinSamples        int
	ThresholdCritical float64
	ThresholdHigh     float64
	ThresholdMedium   float64
	ThresholdLow      float64
}

// --- Interface ---

type ParameterService interface {
	// List returns the effective parameter set for a tenant: global defaults
	// shadowed by tenant overrides.
	List(ctx context.Context, tenantID uuid.UUID) ([]ParameterResponse, error)
	Set(ctx context.Context, tenantID uuid.UUID, req SetParameterRequest) (ParameterResponse, error)
	Delete(ctx context.Context, tenantID uuid.UUID, key string) error
	// ResolvePriceSettings snapshots the price analysis configuration so one
	// operation sees a consistent set of thresholds.
	ResolvePriceSettings(ctx context.Context, tenantID uuid.UUID) (PriceAnalysisSettings, error)
}

type parameterService struct {
	paramRepo repository.ParameterRepository
}

func NewParameterService(paramRepo repository.ParameterRepository) ParameterService {
	return &parameterService{paramRepo: paramRepo}
}

// --- Implementation ---

func (s *parameterService) List(ctx context.Context, tenantID uuid.UUID) ([]ParameterResponse, error) {
	resolved, err := s.resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	result := make([]ParameterResponse, 0, len(resolved))
	for _, p := range resolved {
		result = append(result, ParameterResponse{
			Key:      p.Key,
			Value:    p.Value,
			IsGlobal: p.TenantID == nil,
		})
	}
	return result, nil
}

func (s *parameterService) Set(ctx context.Context, tenantID uuid.UUID, req SetParameterRequest) (ParameterResponse, error) {
	param := model.Parameter{
		TenantID: &tenantID,
		Key:      req.Key,
		Value:    req.Value,
	}
	if err := s.paramRepo.Upsert(ctx, &param); err != nil {
		return ParameterResponse{}, fmt.Errorf("failed to save parameter: %w", err)
	}
	return ParameterResponse{Key: param.Key, Value: param.Value, IsGlobal: false}, nil
}

func (s *parameterService) Delete(ctx context.Context, tenantID uuid.UUID, key string) error {
	return s.paramRepo.Delete(ctx, tenantID, key)
}

func (s *parameterService) ResolvePriceSettings(ctx context.Context, tenantID uuid.UUID) (PriceAnalysisSettings, error) {
	settings := PriceAnalysisSettings{
		WindowMonths:      DefaultPriceWindowMonths,
		MinSamples:        DefaultPriceMinSamples,
		ThresholdCritical: DefaultPriceThresholdCritical,
		ThresholdHigh:     DefaultPriceThresholdHigh,
		ThresholdMedium:   DefaultPriceThresholdMedium,
		ThresholdLow:      DefaultPriceThresholdLow,
	}

	resolved, err := s.resolve(ctx, tenantID)
	if err != nil {
		return settings, err
	}

	for _, p := range resolved {
		switch p.Key {
		case model.ParamPriceWindowMonths:
			if v, err := strconv.Atoi(p.Value); err == nil && v > 0 {
				settings.WindowMonths = v
			}
		case model.ParamPriceMinSamples:
			if v, err := strconv.Atoi(p.Value); err == nil && v > 0 {
				settings.MinSamples = v
			}
		case model.ParamPriceThresholdCritical:
			if v, err := strconv.ParseFloat(p.Value, 64); err == nil && v > 0 {
				settings.ThresholdCritical = v
			}
		case model.ParamPriceThresholdHigh:
			if v, err := strconv.ParseFloat(p.Value, 64); err == nil && v > 0 {
				settings.ThresholdHigh = v
			}
		case model.ParamPriceThresholdMedium:
			if v, err := strconv.ParseFloat(p.Value, 64); err == nil && v > 0 {
				settings.ThresholdMedium = v
			}
		case model.ParamPriceThresholdLow:
			if v, err := strconv.ParseFloat(p.Value, 64); err == nil && v > 0 {
				settings.ThresholdLow = v
			}
		}
	}
	return settings, nil
}

// resolve loads global rows plus tenant overrides and collapses them so a
// tenant row always wins over a global row with the same key.
func (s *parameterService) resolve(ctx context.Context, tenantID uuid.UUID) (map[string]model.Parameter, error) {
	params, err := s.paramRepo.LoadForTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load parameters: %w", err)
	}

	resolved := make(map[string]model.Parameter, len(params))
	for _, p := range params {
		existing, ok := resolved[p.Key]
		if !ok || (existing.TenantID == nil && p.TenantID != nil) {
			resolved[p.Key] = p
		}
	}
	return resolved, nil
}
