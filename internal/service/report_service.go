package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// reportTTL is the per-type cache lifetime; unlisted types fall back to
// defaultReportTTL
var reportTTL = map[string]time.Duration{
	model.ReportDashboard:            5 * time.Minute,
	model.ReportKPIs:                 10 * time.Minute,
	model.ReportMaintenanceSchedule:  30 * time.Minute,
	model.ReportCostsByVehicle:       time.Hour,
	model.ReportFailureAnalysis:      time.Hour,
	model.ReportInterventionAnalysis: time.Hour,
	model.ReportFinancialSummary:     2 * time.Hour,
}

const defaultReportTTL = time.Hour

// maxReportAge bounds staleness regardless of TTL
const maxReportAge = 24 * time.Hour

// maintenanceIntervalDays is the service interval used by the maintenance
// schedule generator
const maintenanceIntervalDays = 180

// warmUpTypes are generated eagerly by WarmUp
var warmUpTypes = []string{
	model.ReportDashboard,
	model.ReportKPIs,
	model.ReportMaintenanceSchedule,
	model.ReportCostsByVehicle,
	model.ReportFailureAnalysis,
}

// --- DTOs ---

// ReportResult is a report payload plus its cache metadata
type ReportResult struct {
	ReportID    string          `json:"report_id"`
	ReportType  string          `json:"report_type"`
	Cached      bool            `json:"cached"`
	GeneratedAt time.Time       `json:"generated_at"`
	CachedUntil *time.Time      `json:"cached_until"`
	Data        json.RawMessage `json:"data"`
}

// --- Interface ---

type ReportService interface {
	// GetOrGenerate returns the cached payload for (type, params) when fresh,
	// otherwise runs the generator and caches the result. forceRefresh skips
	// the cache lookup entirely.
	GetOrGenerate(ctx context.Context, tenantID uuid.UUID, reportType string, params map[string]string, userID string, forceRefresh bool) (ReportResult, error)
	InvalidateByID(ctx context.Context, tenantID uuid.UUID, reportID string) error
	InvalidateType(ctx context.Context, tenantID uuid.UUID, reportType string) error
	InvalidateTenant(ctx context.Context, tenantID uuid.UUID) error
	// WarmUp pre-generates the common report types. Failures are captured
	// per type so one broken generator does not abort the batch.
	WarmUp(ctx context.Context, tenantID uuid.UUID, userID string) map[string]error
	// OptimizeCache sweeps expired rows and duplicate cache entries
	OptimizeCache(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

type reportService struct {
	db               *gorm.DB
	reportRepo       repository.ReportRepository
	interventionRepo repository.InterventionRepository
	invoiceRepo      repository.InvoiceRepository
	vehicleRepo      repository.VehicleRepository
	priceRepo        repository.PriceHistoryRepository
	alertRepo        repository.AlertRepository
	now              func() time.Time
}

func NewReportService(
	db *gorm.DB,
	reportRepo repository.ReportRepository,
	interventionRepo repository.InterventionRepository,
	invoiceRepo repository.InvoiceRepository,
	vehicleRepo repository.VehicleRepository,
	priceRepo repository.PriceHistoryRepository,
	alertRepo repository.AlertRepository,
) ReportService {
	return &reportService{
		db:               db,
		reportRepo:       reportRepo,
		interventionRepo: interventionRepo,
		invoiceRepo:      invoiceRepo,
		vehicleRepo:      vehicleRepo,
		priceRepo:        priceRepo,
		alertRepo:        alertRepo,
		now:              time.Now,
	}
}

// --- Cache plumbing ---

func (s *reportService) GetOrGenerate(ctx context.Context, tenantID uuid.UUID, reportType string, params map[string]string, userID string, forceRefresh bool) (ReportResult, error) {
	now := s.now()
	hash := hashParams(params)

	if !forceRefresh {
		cached, err := s.reportRepo.FindCached(ctx, tenantID, reportType, hash, now)
		if err == nil && !s.shouldRegenerate(cached, now) {
			until := cached.CachedUntil
			return ReportResult{
				ReportID:    cached.ID.String(),
				ReportType:  reportType,
				Cached:      true,
				GeneratedAt: cached.CreatedAt,
				CachedUntil: until,
				Data:        json.RawMessage(cached.CachedData),
			}, nil
		}
		if err != nil && err != gorm.ErrRecordNotFound {
			return ReportResult{}, fmt.Errorf("cache lookup failed: %w", err)
		}
	}

	payload, err := s.generate(ctx, tenantID, reportType, params, now)
	if err != nil {
		return ReportResult{}, err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return ReportResult{}, fmt.Errorf("failed to serialize report: %w", err)
	}
	paramsJSON, _ := json.Marshal(params)

	ttl, ok := reportTTL[reportType]
	if !ok {
		ttl = defaultReportTTL
	}
	until := now.Add(ttl)

	var generatedBy *uuid.UUID
	if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
		generatedBy = &parsed
	}

	report := model.Report{
		TenantID:      tenantID,
		ReportType:    reportType,
		Parameters:    string(paramsJSON),
		ParamsHash:    hash,
		CachedData:    string(data),
		CachedUntil:   &until,
		GeneratedByID: generatedBy,
	}
	if err := s.reportRepo.Create(ctx, &report); err != nil {
		return ReportResult{}, fmt.Errorf("failed to cache report: %w", err)
	}

	return ReportResult{
		ReportID:    report.ID.String(),
		ReportType:  reportType,
		Cached:      false,
		GeneratedAt: now,
		CachedUntil: &until,
		Data:        data,
	}, nil
}

// shouldRegenerate applies the staleness bound on top of the TTL: anything
// older than a day is regenerated even when its TTL has not expired yet
func (s *reportService) shouldRegenerate(report *model.Report, now time.Time) bool {
	if report.CachedUntil == nil || !report.CachedUntil.After(now) {
		return true
	}
	return now.Sub(report.CreatedAt) > maxReportAge
}

// hashParams produces a stable digest of the parameter set so lookups match
// by value regardless of map iteration order
func hashParams(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{'='})
		h.Write([]byte(params[k]))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (s *reportService) InvalidateByID(ctx context.Context, tenantID uuid.UUID, reportID string) error {
	parsed, err := uuid.Parse(reportID)
	if err != nil {
		return fmt.Errorf("invalid report id: %w", err)
	}
	return s.reportRepo.DeleteByID(ctx, tenantID, parsed)
}

func (s *reportService) InvalidateType(ctx context.Context, tenantID uuid.UUID, reportType string) error {
	return s.reportRepo.DeleteByType(ctx, tenantID, reportType)
}

func (s *reportService) InvalidateTenant(ctx context.Context, tenantID uuid.UUID) error {
	return s.reportRepo.DeleteByTenant(ctx, tenantID)
}

func (s *reportService) WarmUp(ctx context.Context, tenantID uuid.UUID, userID string) map[string]error {
	results := make(map[string]error, len(warmUpTypes))
	for _, reportType := range warmUpTypes {
		_, err := s.GetOrGenerate(ctx, tenantID, reportType, nil, userID, false)
		results[reportType] = err
	}
	return results
}

func (s *reportService) OptimizeCache(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return s.reportRepo.DeleteStale(ctx, tenantID, s.now())
}

// --- Generators ---

func (s *reportService) generate(ctx context.Context, tenantID uuid.UUID, reportType string, params map[string]string, now time.Time) (interface{}, error) {
	switch reportType {
	case model.ReportDashboard:
		return s.generateDashboard(ctx, tenantID, now)
	case model.ReportKPIs:
		return s.generateKPIs(ctx, tenantID, params, now)
	case model.ReportCostsByVehicle:
		return s.generateCostsByVehicle(ctx, tenantID, params, now)
	case model.ReportMaintenanceSchedule:
		return s.generateMaintenanceSchedule(ctx, tenantID, now)
	case model.ReportFailureAnalysis:
		return s.generateFailureAnalysis(ctx, tenantID, params, now)
	case model.ReportFinancialSummary:
		return s.generateFinancialSummary(ctx, tenantID, params, now)
	case model.ReportInterventionAnalysis:
		return s.generateInterventionAnalysis(ctx, tenantID, now)
	default:
		return nil, fmt.Errorf("unknown report type %q", reportType)
	}
}

func (s *reportService) generateDashboard(ctx context.Context, tenantID uuid.UUID, now time.Time) (interface{}, error) {
	totalVehicles, err := s.vehicleRepo.CountActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	closed, err := s.interventionRepo.CountByStatus(ctx, tenantID, model.StatusVehicleReceived, model.StatusCancelled)
	if err != nil {
		return nil, err
	}

	var open int64
	if err := s.db.WithContext(ctx).Model(&model.Intervention{}).
		Where("tenant_id = ? AND current_status NOT IN ?", tenantID, []string{model.StatusVehicleReceived, model.StatusCancelled}).
		Count(&open).Error; err != nil {
		return nil, err
	}

	var urgent int64
	if err := s.db.WithContext(ctx).Model(&model.Intervention{}).
		Where("tenant_id = ? AND priority = ? AND current_status NOT IN ?", tenantID, model.PriorityUrgent, []string{model.StatusVehicleReceived, model.StatusCancelled}).
		Count(&urgent).Error; err != nil {
		return nil, err
	}

	unreadAlerts, err := s.alertRepo.CountUnread(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var byStatus []model.StatusCount
	if err := s.db.WithContext(ctx).Model(&model.Intervention{}).
		Select("current_status as status, COUNT(*) as count").
		Where("tenant_id = ?", tenantID).
		Group("current_status").
		Scan(&byStatus).Error; err != nil {
		return nil, err
	}

	return model.DashboardReport{
		TotalVehicles:       totalVehicles,
		OpenInterventions:   open,
		ClosedInterventions: closed,
		UrgentInterventions: urgent,
		UnreadAlerts:        unreadAlerts,
		CountsByStatus:      byStatus,
		GeneratedAt:         now,
	}, nil
}

func (s *reportService) generateKPIs(ctx context.Context, tenantID uuid.UUID, params map[string]string, now time.Time) (interface{}, error) {
	start, end := periodFromParams(params, now)
	prevStart := start.Add(-end.Sub(start))

	opened, err := s.interventionRepo.CountReportedBetween(ctx, tenantID, start, end)
	if err != nil {
		return nil, err
	}
	prevOpened, err := s.interventionRepo.CountReportedBetween(ctx, tenantID, prevStart, start)
	if err != nil {
		return nil, err
	}

	var closed int64
	if err := s.db.WithContext(ctx).Model(&model.Intervention{}).
		Where("tenant_id = ? AND completed_date >= ? AND completed_date < ?", tenantID, start, end).
		Count(&closed).Error; err != nil {
		return nil, err
	}

	invoiced, err := s.invoiceRepo.SumInvoicedBetween(ctx, tenantID, start, end)
	if err != nil {
		return nil, err
	}
	prevInvoiced, err := s.invoiceRepo.SumInvoicedBetween(ctx, tenantID, prevStart, start)
	if err != nil {
		return nil, err
	}

	repairDays, err := s.averageRepairDays(ctx, tenantID, start, end)
	if err != nil {
		return nil, err
	}
	prevRepairDays, err := s.averageRepairDays(ctx, tenantID, prevStart, start)
	if err != nil {
		return nil, err
	}

	anomalies, err := s.priceRepo.CountAnomaliesBetween(ctx, tenantID, start, end)
	if err != nil {
		return nil, err
	}

	return model.KPIReport{
		PeriodStart:         start,
		PeriodEnd:           end,
		InterventionsOpened: opened,
		InterventionsClosed: closed,
		TotalInvoiced:       invoiced,
		AverageRepairDays:   repairDays,
		AnomalousPriceCount: anomalies,
		OpenedTrend:         computeTrend(float64(opened), float64(prevOpened), false),
		InvoicedTrend:       computeTrend(invoiced, prevInvoiced, true),
		RepairDelayTrend:    computeTrend(repairDays, prevRepairDays, true),
		GeneratedAt:         now,
	}, nil
}

// averageRepairDays loads interventions completed in the window and averages
// started-to-completed duration in Go; the date arithmetic stays portable
// across database engines that way
func (s *reportService) averageRepairDays(ctx context.Context, tenantID uuid.UUID, start, end time.Time) (float64, error) {
	var interventions []model.Intervention
	if err := s.db.WithContext(ctx).
		Select("started_date", "completed_date").
		Where("tenant_id = ? AND completed_date >= ? AND completed_date < ? AND started_date IS NOT NULL", tenantID, start, end).
		Find(&interventions).Error; err != nil {
		return 0, err
	}
	if len(interventions) == 0 {
		return 0, nil
	}

	var totalDays float64
	for i := range interventions {
		iv := &interventions[i]
		totalDays += iv.CompletedDate.Sub(*iv.StartedDate).Hours() / 24
	}
	return totalDays / float64(len(interventions)), nil
}

func (s *reportService) generateCostsByVehicle(ctx context.Context, tenantID uuid.UUID, params map[string]string, now time.Time) (interface{}, error) {
	start, end := rangeFromParams(params, now)

	var rows []model.VehicleCostRow
	if err := s.db.WithContext(ctx).
		Table("intervention_invoices").
		Select(`vehicles.id as vehicle_id,
			vehicles.license_plate,
			vehicles.brand,
			vehicles.model,
			COUNT(intervention_invoices.id) as invoice_count,
			COALESCE(SUM(intervention_invoices.total_amount), 0) as total_cost,
			COALESCE(AVG(intervention_invoices.total_amount), 0) as average_cost`).
		Joins("JOIN interventions ON interventions.id = intervention_invoices.intervention_id").
		Joins("JOIN vehicles ON vehicles.id = interventions.vehicle_id").
		Where("intervention_invoices.tenant_id = ? AND intervention_invoices.issued_date >= ? AND intervention_invoices.issued_date < ? AND intervention_invoices.payment_status <> ?",
			tenantID, start, end, model.PaymentCancelled).
		Group("vehicles.id, vehicles.license_plate, vehicles.brand, vehicles.model").
		Order("total_cost desc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	// Immobilization days per vehicle, computed in Go for portability
	var completed []model.Intervention
	if err := s.db.WithContext(ctx).
		Select("vehicle_id", "started_date", "completed_date").
		Where("tenant_id = ? AND completed_date >= ? AND completed_date < ? AND started_date IS NOT NULL", tenantID, start, end).
		Find(&completed).Error; err != nil {
		return nil, err
	}
	daysByVehicle := make(map[string]float64)
	for i := range completed {
		iv := &completed[i]
		daysByVehicle[iv.VehicleID.String()] += iv.CompletedDate.Sub(*iv.StartedDate).Hours() / 24
	}

	var totalCost float64
	for i := range rows {
		rows[i].InterventionDays = daysByVehicle[rows[i].VehicleID]
		totalCost += rows[i].TotalCost
	}

	return model.CostsByVehicleReport{
		StartDate:   start,
		EndDate:     end,
		Rows:        rows,
		TotalCost:   totalCost,
		GeneratedAt: now,
	}, nil
}

func (s *reportService) generateMaintenanceSchedule(ctx context.Context, tenantID uuid.UUID, now time.Time) (interface{}, error) {
	var vehicles []model.Vehicle
	if err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Order("license_plate asc").
		Find(&vehicles).Error; err != nil {
		return nil, err
	}

	// Latest completed service per vehicle
	type lastService struct {
		VehicleID uuid.UUID
		LastDate  time.Time
	}
	var lastServices []lastService
	if err := s.db.WithContext(ctx).Model(&model.Intervention{}).
		Select("vehicle_id, MAX(completed_date) as last_date").
		Where("tenant_id = ? AND completed_date IS NOT NULL", tenantID).
		Group("vehicle_id").
		Scan(&lastServices).Error; err != nil {
		return nil, err
	}
	lastByVehicle := make(map[uuid.UUID]time.Time, len(lastServices))
	for _, ls := range lastServices {
		lastByVehicle[ls.VehicleID] = ls.LastDate
	}

	entries := make([]model.MaintenanceScheduleEntry, 0, len(vehicles))
	for i := range vehicles {
		v := &vehicles[i]
		entry := model.MaintenanceScheduleEntry{
			VehicleID:    v.ID.String(),
			LicensePlate: v.LicensePlate,
			Model:        v.Model,
			Odometer:     v.Odometer,
		}
		if last, ok := lastByVehicle[v.ID]; ok {
			l := last
			entry.LastService = &l
			entry.DaysSinceLast = int64(now.Sub(last).Hours() / 24)
			entry.OverdueService = entry.DaysSinceLast > maintenanceIntervalDays
		} else {
			// Never serviced counts as overdue
			entry.OverdueService = true
		}
		entries = append(entries, entry)
	}

	return model.MaintenanceScheduleReport{
		Entries:     entries,
		GeneratedAt: now,
	}, nil
}

func (s *reportService) generateFailureAnalysis(ctx context.Context, tenantID uuid.UUID, params map[string]string, now time.Time) (interface{}, error) {
	start, end := rangeFromParams(params, now)

	var rows []model.FailureAnalysisRow
	if err := s.db.WithContext(ctx).
		Table("interventions").
		Select(`vehicles.brand,
			vehicles.model,
			COUNT(interventions.id) as count,
			SUM(CASE WHEN interventions.priority = 'urgent' THEN 1 ELSE 0 END) as urgent_count`).
		Joins("JOIN vehicles ON vehicles.id = interventions.vehicle_id").
		Where("interventions.tenant_id = ? AND interventions.reported_date >= ? AND interventions.reported_date < ?", tenantID, start, end).
		Group("vehicles.brand, vehicles.model").
		Order("count desc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	// Average resolution days per brand/model, computed in Go
	var completed []model.Intervention
	if err := s.db.WithContext(ctx).Preload("Vehicle").
		Where("tenant_id = ? AND reported_date >= ? AND reported_date < ? AND completed_date IS NOT NULL AND started_date IS NOT NULL", tenantID, start, end).
		Find(&completed).Error; err != nil {
		return nil, err
	}
	type key struct{ brand, model string }
	sums := make(map[key]float64)
	counts := make(map[key]int64)
	for i := range completed {
		iv := &completed[i]
		if iv.Vehicle == nil {
			continue
		}
		k := key{iv.Vehicle.Brand, iv.Vehicle.Model}
		sums[k] += iv.CompletedDate.Sub(*iv.StartedDate).Hours() / 24
		counts[k]++
	}
	for i := range rows {
		k := key{rows[i].Brand, rows[i].Model}
		if counts[k] > 0 {
			rows[i].AverageDays = sums[k] / float64(counts[k])
		}
	}

	return model.FailureAnalysisReport{
		StartDate:   start,
		EndDate:     end,
		Rows:        rows,
		GeneratedAt: now,
	}, nil
}

func (s *reportService) generateFinancialSummary(ctx context.Context, tenantID uuid.UUID, params map[string]string, now time.Time) (interface{}, error) {
	start, end := rangeFromParams(params, now)

	type statusSum struct {
		PaymentStatus string  `json:"payment_status"`
		Count         int64   `json:"count"`
		Total         float64 `json:"total"`
	}
	var sums []statusSum
	if err := s.db.WithContext(ctx).Model(&model.InterventionInvoice{}).
		Select("payment_status, COUNT(*) as count, COALESCE(SUM(total_amount), 0) as total").
		Where("tenant_id = ? AND issued_date >= ? AND issued_date < ?", tenantID, start, end).
		Group("payment_status").
		Scan(&sums).Error; err != nil {
		return nil, err
	}

	var grandTotal float64
	for _, row := range sums {
		if row.PaymentStatus != model.PaymentCancelled {
			grandTotal += row.Total
		}
	}

	return map[string]interface{}{
		"start_date":   start,
		"end_date":     end,
		"by_status":    sums,
		"total":        grandTotal,
		"generated_at": now,
	}, nil
}

func (s *reportService) generateInterventionAnalysis(ctx context.Context, tenantID uuid.UUID, now time.Time) (interface{}, error) {
	var byStatus []model.StatusCount
	if err := s.db.WithContext(ctx).Model(&model.Intervention{}).
		Select("current_status as status, COUNT(*) as count").
		Where("tenant_id = ?", tenantID).
		Group("current_status").
		Scan(&byStatus).Error; err != nil {
		return nil, err
	}

	type priorityCount struct {
		Priority string `json:"priority"`
		Count    int64  `json:"count"`
	}
	var byPriority []priorityCount
	if err := s.db.WithContext(ctx).Model(&model.Intervention{}).
		Select("priority, COUNT(*) as count").
		Where("tenant_id = ?", tenantID).
		Group("priority").
		Scan(&byPriority).Error; err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"by_status":    byStatus,
		"by_priority":  byPriority,
		"generated_at": now,
	}, nil
}

// --- Helpers ---

// computeTrend compares the current period against the previous equal-length
// one. Changes within ±5% are neutral. inverse marks metrics where a drop is
// the good outcome (costs, delays).
func computeTrend(current, previous float64, inverse bool) model.Trend {
	var change float64
	switch {
	case previous == 0 && current == 0:
		change = 0
	case previous == 0:
		change = 100
	default:
		change = (current - previous) / previous * 100
	}

	direction := model.TrendNeutral
	if change > 5 {
		direction = model.TrendUp
	} else if change < -5 {
		direction = model.TrendDown
	}

	isPositive := true
	switch direction {
	case model.TrendUp:
		isPositive = !inverse
	case model.TrendDown:
		isPositive = inverse
	}

	return model.Trend{
		ChangePercent: change,
		Direction:     direction,
		IsPositive:    isPositive,
	}
}

// periodFromParams reads start_date/end_date, defaulting to the current month
func periodFromParams(params map[string]string, now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0)
	return overrideRange(params, start, end)
}

// rangeFromParams reads start_date/end_date, defaulting to the last 12 months
func rangeFromParams(params map[string]string, now time.Time) (time.Time, time.Time) {
	return overrideRange(params, now.AddDate(-1, 0, 0), now)
}

func overrideRange(params map[string]string, start, end time.Time) (time.Time, time.Time) {
	if params == nil {
		return start, end
	}
	if raw, ok := params["start_date"]; ok {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			start = parsed
		}
	}
	if raw, ok := params["end_date"]; ok {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			end = parsed
		}
	}
	return start, end
}
