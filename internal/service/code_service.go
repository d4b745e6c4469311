package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// defaultCodePatterns seeds a tenant that has never configured its formats
var defaultCodePatterns = map[string]string{
	model.CodeEntityIntervention:  "INT-{YEAR}-{MONTH}-{SEQUENCE}",
	model.CodeEntityQuote:         "DEV-{YEAR}-{SEQUENCE}",
	model.CodeEntityAuthorization: "OT-{YEAR}-{SEQUENCE}",
	model.CodeEntityInvoice:       "FACT-{YEAR}{MONTH}-{SEQUENCE}",
	model.CodeEntityVehicle:       "VEH-{SEQUENCE}",
}

// --- DTOs ---

type UpdateCodeFormatRequest struct {
	EntityType     string `json:"entity_type" binding:"required,oneof=intervention quote work_authorization invoice vehicle"`
	Pattern        string `json:"pattern" binding:"required"`
	SequenceLength int    `json:"sequence_length"`
}

type CodeFormatResponse struct {
	EntityType      string `json:"entity_type"`
	Pattern         string `json:"pattern"`
	SequenceLength  int    `json:"sequence_length"`
	CurrentSequence int    `json:"current_sequence"`
	CurrentPeriod   string `json:"current_period"`
	Preview         string `json:"preview"`
}

// --- Interface ---

type CodeService interface {
	// NextCode atomically reserves and renders the next reference code for an
	// entity type. Must be called inside a transaction: the underlying row is
	// locked until commit so two concurrent calls cannot render the same code.
	NextCode(ctx context.Context, tenantID uuid.UUID, entityType string) (string, error)
	ListFormats(ctx context.Context, tenantID uuid.UUID) ([]CodeFormatResponse, error)
	UpdateFormat(ctx context.Context, tenantID uuid.UUID, req UpdateCodeFormatRequest) (CodeFormatResponse, error)
}

type codeService struct {
	formatRepo repository.CodeFormatRepository
	now        func() time.Time
}

func NewCodeService(formatRepo repository.CodeFormatRepository) CodeService {
	return &codeService{formatRepo: formatRepo, now: time.Now}
}

// --- Implementation ---

func (s *codeService) NextCode(ctx context.Context, tenantID uuid.UUID, entityType string) (string, error) {
	now := s.now()

	format, err := s.formatRepo.FindForUpdate(ctx, tenantID, entityType)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		format, err = s.seedDefault(ctx, tenantID, entityType)
	}
	if err != nil {
		return "", fmt.Errorf("failed to load code format: %w", err)
	}

	// Sequence restarts when the period derived from the pattern rolls over
	period := format.PeriodKey(now)
	if period != format.CurrentPeriod {
		format.CurrentPeriod = period
		format.CurrentSequence = 0
	}
	format.CurrentSequence++

	if err := s.formatRepo.Update(ctx, format); err != nil {
		return "", fmt.Errorf("failed to advance code sequence: %w", err)
	}

	return format.Render(format.CurrentSequence, now), nil
}

func (s *codeService) seedDefault(ctx context.Context, tenantID uuid.UUID, entityType string) (*model.CodeFormat, error) {
	pattern, ok := defaultCodePatterns[entityType]
	if !ok {
		return nil, fmt.Errorf("unknown code entity type %q", entityType)
	}

	format := model.CodeFormat{
		TenantID:       tenantID,
		EntityType:     entityType,
		Pattern:        pattern,
		SequenceLength: 4,
	}
	if err := s.formatRepo.Create(ctx, &format); err != nil {
		// Lost the insert race: another request seeded it first
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.formatRepo.FindForUpdate(ctx, tenantID, entityType)
		}
		return nil, err
	}
	return &format, nil
}

func (s *codeService) ListFormats(ctx context.Context, tenantID uuid.UUID) ([]CodeFormatResponse, error) {
	formats, err := s.formatRepo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch code formats: %w", err)
	}

	now := s.now()
	result := make([]CodeFormatResponse, 0, len(formats))
	for i := range formats {
		result = append(result, toCodeFormatResponse(&formats[i], now))
	}
	return result, nil
}

func (s *codeService) UpdateFormat(ctx context.Context, tenantID uuid.UUID, req UpdateCodeFormatRequest) (CodeFormatResponse, error) {
	if !strings.Contains(req.Pattern, "{SEQUENCE}") {
		return CodeFormatResponse{}, fmt.Errorf("pattern must contain the {SEQUENCE} placeholder")
	}

	length := req.SequenceLength
	if length <= 0 {
		length = 4
	}

	format, err := s.formatRepo.Find(ctx, tenantID, req.EntityType)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		format = &model.CodeFormat{
			TenantID:       tenantID,
			EntityType:     req.EntityType,
			Pattern:        req.Pattern,
			SequenceLength: length,
		}
		if createErr := s.formatRepo.Create(ctx, format); createErr != nil {
			return CodeFormatResponse{}, fmt.Errorf("failed to create code format: %w", createErr)
		}
		return toCodeFormatResponse(format, s.now()), nil
	}
	if err != nil {
		return CodeFormatResponse{}, fmt.Errorf("failed to load code format: %w", err)
	}

	// Changing the pattern resets the sequence scope on the next generation
	format.Pattern = req.Pattern
	format.SequenceLength = length
	if err := s.formatRepo.Update(ctx, format); err != nil {
		return CodeFormatResponse{}, fmt.Errorf("failed to update code format: %w", err)
	}
	return toCodeFormatResponse(format, s.now()), nil
}

// --- Mapping ---

func toCodeFormatResponse(f *model.CodeFormat, now time.Time) CodeFormatResponse {
	return CodeFormatResponse{
		EntityType:      f.EntityType,
		Pattern:         f.Pattern,
		SequenceLength:  f.SequenceLength,
		CurrentSequence: f.CurrentSequence,
		CurrentPeriod:   f.CurrentPeriod,
		Preview:         f.Render(f.CurrentSequence+1, now),
	}
}
