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

type RecordPriceRequest struct {
	SupplyID     string `json:"supply_id"`
	Description  string `json:"description"`
	VehicleID    string `json:"vehicle_id"`
	VehicleModel string `json:"vehicle_model"`
	UnitPrice    string `json:"unit_price" binding:"required"`
	SourceType   string `json:"source_type" binding:"omitempty,oneof=quote invoice manual"`
	RecordedDate string `json:"recorded_date"` // RFC3339, defaults to now
}

type PriceRecordResponse struct {
	ID               string  `json:"id"`
	SupplyID         *string `json:"supply_id"`
	Description      string  `json:"description"`
	VehicleModel     string  `json:"vehicle_model"`
	RecordedDate     string  `json:"recorded_date"`
	UnitPrice        string  `json:"unit_price"`
	SourceType       string  `json:"source_type"`
	IsAnomaly        bool    `json:"is_anomaly"`
	DeviationPercent string  `json:"deviation_percent"`
	PriceRank        string  `json:"price_rank"`
}

// PriceSuggestion summarizes the recent price history for an item and proposes
// an acceptable band around the average
type PriceSuggestion struct {
	SampleSize     int     `json:"sample_size"`
	Confidence     string  `json:"confidence"` // none, low, medium, high
	AveragePrice   *string `json:"average_price"`
	MinPrice       *string `json:"min_price"`
	MaxPrice       *string `json:"max_price"`
	LastPrice      *string `json:"last_price"`
	SuggestedLow   *string `json:"suggested_low"`
	SuggestedHigh  *string `json:"suggested_high"`
	WindowMonths   int     `json:"window_months"`
}

// --- Interface ---

type PriceService interface {
	// RecordPrice stores an observation with its anomaly classification
	// computed against the rolling comparison window. The classification is
	// final: later observations never rewrite it.
	RecordPrice(ctx context.Context, tenantID uuid.UUID, userID string, req RecordPriceRequest) (PriceRecordResponse, error)
	ListPrices(ctx context.Context, tenantID uuid.UUID, anomaliesOnly bool, page, limit int) ([]PriceRecordResponse, int64, error)
	GetSuggestion(ctx context.Context, tenantID uuid.UUID, supplyID, description, vehicleModel string) (PriceSuggestion, error)
}

type priceService struct {
	priceRepo repository.PriceHistoryRepository
	paramSvc  ParameterService
	alertSvc  AlertService
	auditRepo repository.AuditRepository
	now       func() time.Time
}

func NewPriceService(
	priceRepo repository.PriceHistoryRepository,
	paramSvc ParameterService,
	alertSvc AlertService,
	auditRepo repository.AuditRepository,
) PriceService {
	return &priceService{
		priceRepo: priceRepo,
		paramSvc:  paramSvc,
		alertSvc:  alertSvc,
		auditRepo: auditRepo,
		now:       time.Now,
	}
}

// --- Implementation ---

func (s *priceService) RecordPrice(ctx context.Context, tenantID uuid.UUID, userID string, req RecordPriceRequest) (PriceRecordResponse, error) {
	unitPrice, err := decimal.NewFromString(req.UnitPrice)
	if err != nil || !unitPrice.IsPositive() {
		return PriceRecordResponse{}, fmt.Errorf("invalid unit_price")
	}

	var supplyID *uuid.UUID
	if req.SupplyID != "" {
		parsed, parseErr := uuid.Parse(req.SupplyID)
		if parseErr != nil {
			return PriceRecordResponse{}, fmt.Errorf("invalid supply_id: %w", parseErr)
		}
		supplyID = &parsed
	}
	if supplyID == nil && req.Description == "" {
		return PriceRecordResponse{}, fmt.Errorf("either supply_id or description is required")
	}

	var vehicleID *uuid.UUID
	if req.VehicleID != "" {
		parsed, parseErr := uuid.Parse(req.VehicleID)
		if parseErr != nil {
			return PriceRecordResponse{}, fmt.Errorf("invalid vehicle_id: %w", parseErr)
		}
		vehicleID = &parsed
	}

	recordedDate := s.now()
	if req.RecordedDate != "" {
		recordedDate, err = time.Parse(time.RFC3339, req.RecordedDate)
		if err != nil {
			return PriceRecordResponse{}, fmt.Errorf("invalid recorded_date: %w", err)
		}
	}

	sourceType := req.SourceType
	if sourceType == "" {
		sourceType = model.PriceSourceManual
	}

	settings, err := s.paramSvc.ResolvePriceSettings(ctx, tenantID)
	if err != nil {
		return PriceRecordResponse{}, fmt.Errorf("failed to resolve price settings: %w", err)
	}

	since := recordedDate.AddDate(0, -settings.WindowMonths, 0)
	population, err := s.priceRepo.FindComparable(ctx, tenantID, supplyID, req.Description, req.VehicleModel, since)
	if err != nil {
		return PriceRecordResponse{}, fmt.Errorf("failed to load price history: %w", err)
	}

	deviation, rank, isAnomaly := classifyPrice(unitPrice, population, settings)

	record := model.SupplyPriceHistory{
		TenantID:         tenantID,
		SupplyID:         supplyID,
		Description:      req.Description,
		VehicleID:        vehicleID,
		VehicleModel:     req.VehicleModel,
		RecordedDate:     recordedDate,
		UnitPrice:        unitPrice,
		SourceType:       sourceType,
		IsAnomaly:        isAnomaly,
		DeviationPercent: deviation,
		PriceRank:        rank,
	}
	if err := s.priceRepo.Create(ctx, &record); err != nil {
		return PriceRecordResponse{}, fmt.Errorf("failed to record price: %w", err)
	}

	s.logAudit(ctx, tenantID, userID, &record)

	if isAnomaly && s.alertSvc != nil {
		severity := model.SeverityWarning
		if deviation.Abs().GreaterThan(decimal.NewFromFloat(settings.ThresholdCritical)) {
			severity = model.SeverityCritical
		}
		label := record.Description
		if label == "" && supplyID != nil {
			label = supplyID.String()
		}
		_, _ = s.alertSvc.Notify(ctx, tenantID, CreateAlertInput{
			Type:       model.AlertTypePriceAnomaly,
			Severity:   severity,
			Title:      "Price anomaly detected",
			Message:    fmt.Sprintf("Recorded price %s for %q deviates %s%% from the recent average", unitPrice.StringFixed(2), label, deviation.StringFixed(2)),
			EntityType: "supply_price_history",
			EntityID:   record.ID.String(),
		})
	}

	return toPriceRecordResponse(record), nil
}

var hundred = decimal.NewFromInt(100)

// classifyPrice computes the deviation from the population mean and maps it to
// a rank. Below the minimum sample size the outcome is a defined non-anomaly:
// rank average, deviation zero. Note the medium and high bands deliberately
// share the high/low rank.
func classifyPrice(unitPrice decimal.Decimal, population []model.SupplyPriceHistory, settings PriceAnalysisSettings) (decimal.Decimal, string, bool) {
	if len(population) < settings.MinSamples {
		return decimal.Zero, model.RankAverage, false
	}

	sum := decimal.Zero
	for i := range population {
		sum = sum.Add(population[i].UnitPrice)
	}
	mean := sum.Div(decimal.NewFromInt(int64(len(population))))
	if mean.IsZero() {
		return decimal.Zero, model.RankAverage, false
	}

	deviation := unitPrice.Sub(mean).Div(mean).Mul(hundred).Round(2)
	abs, _ := deviation.Abs().Float64()
	highSide := deviation.Sign() >= 0

	switch {
	case abs > settings.ThresholdCritical:
		if highSide {
			return deviation, model.RankVeryHigh, true
		}
		return deviation, model.RankVeryLow, true
	case abs > settings.ThresholdHigh, abs > settings.ThresholdMedium:
		if highSide {
			return deviation, model.RankHigh, true
		}
		return deviation, model.RankLow, true
	case abs > settings.ThresholdLow:
		if highSide {
			return deviation, model.RankAboveAverage, false
		}
		return deviation, model.RankBelowAverage, false
	default:
		return deviation, model.RankAverage, false
	}
}

func (s *priceService) ListPrices(ctx context.Context, tenantID uuid.UUID, anomaliesOnly bool, page, limit int) ([]PriceRecordResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	records, total, err := s.priceRepo.List(ctx, tenantID, anomaliesOnly, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch price history: %w", err)
	}

	result := make([]PriceRecordResponse, 0, len(records))
	for _, r := range records {
		result = append(result, toPriceRecordResponse(r))
	}
	return result, total, nil
}

func (s *priceService) GetSuggestion(ctx context.Context, tenantID uuid.UUID, supplyID, description, vehicleModel string) (PriceSuggestion, error) {
	var parsedSupplyID *uuid.UUID
	if supplyID != "" {
		parsed, err := uuid.Parse(supplyID)
		if err != nil {
			return PriceSuggestion{}, fmt.Errorf("invalid supply_id: %w", err)
		}
		parsedSupplyID = &parsed
	}
	if parsedSupplyID == nil && description == "" {
		return PriceSuggestion{}, fmt.Errorf("either supply_id or description is required")
	}

	settings, err := s.paramSvc.ResolvePriceSettings(ctx, tenantID)
	if err != nil {
		return PriceSuggestion{}, fmt.Errorf("failed to resolve price settings: %w", err)
	}

	since := s.now().AddDate(0, -settings.WindowMonths, 0)
	population, err := s.priceRepo.FindComparable(ctx, tenantID, parsedSupplyID, description, vehicleModel, since)
	if err != nil {
		return PriceSuggestion{}, fmt.Errorf("failed to load price history: %w", err)
	}

	suggestion := PriceSuggestion{
		SampleSize:   len(population),
		Confidence:   confidenceTier(len(population)),
		WindowMonths: settings.WindowMonths,
	}
	if len(population) == 0 {
		return suggestion, nil
	}

	sum := decimal.Zero
	minPrice := population[0].UnitPrice
	maxPrice := population[0].UnitPrice
	for i := range population {
		p := population[i].UnitPrice
		sum = sum.Add(p)
		if p.LessThan(minPrice) {
			minPrice = p
		}
		if p.GreaterThan(maxPrice) {
			maxPrice = p
		}
	}
	mean := sum.Div(decimal.NewFromInt(int64(len(population)))).Round(2)
	// Population is ordered by recorded date ascending
	last := population[len(population)-1].UnitPrice

	band := mean.Mul(decimal.NewFromFloat(0.10)).Round(2)
	low := mean.Sub(band)
	high := mean.Add(band)

	suggestion.AveragePrice = decimalString(mean)
	suggestion.MinPrice = decimalString(minPrice)
	suggestion.MaxPrice = decimalString(maxPrice)
	suggestion.LastPrice = decimalString(last)
	suggestion.SuggestedLow = decimalString(low)
	suggestion.SuggestedHigh = decimalString(high)
	return suggestion, nil
}

// confidenceTier maps sample size to a confidence label
func confidenceTier(samples int) string {
	switch {
	case samples >= 10:
		return "high"
	case samples >= 5:
		return "medium"
	case samples >= 3:
		return "low"
	default:
		return "none"
	}
}

func (s *priceService) logAudit(ctx context.Context, tenantID uuid.UUID, userID string, record *model.SupplyPriceHistory) {
	var actorID *uuid.UUID
	if parsed, err := uuid.Parse(userID); err == nil {
		actorID = &parsed
	}
	details, _ := json.Marshal(map[string]interface{}{
		"unit_price":        record.UnitPrice.StringFixed(2),
		"source_type":       record.SourceType,
		"is_anomaly":        record.IsAnomaly,
		"deviation_percent": record.DeviationPercent.StringFixed(2),
		"price_rank":        record.PriceRank,
	})
	_ = s.auditRepo.Log(ctx, &model.AuditLog{
		TenantID:   &record.TenantID,
		UserID:     actorID,
		Action:     model.ActionRecordPrice,
		EntityID:   record.ID.String(),
		EntityName: record.Description,
		Details:    string(details),
	})
}

// --- Mapping ---

func toPriceRecordResponse(r model.SupplyPriceHistory) PriceRecordResponse {
	resp := PriceRecordResponse{
		ID:               r.ID.String(),
		Description:      r.Description,
		VehicleModel:     r.VehicleModel,
		RecordedDate:     r.RecordedDate.Format(time.RFC3339),
		UnitPrice:        r.UnitPrice.StringFixed(2),
		SourceType:       r.SourceType,
		IsAnomaly:        r.IsAnomaly,
		DeviationPercent: r.DeviationPercent.StringFixed(2),
		PriceRank:        r.PriceRank,
	}
	if r.SupplyID != nil {
		s := r.SupplyID.String()
		resp.SupplyID = &s
	}
	return resp
}

func decimalString(d decimal.Decimal) *string {
	s := d.StringFixed(2)
	return &s
}
