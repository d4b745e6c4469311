package model

import (
	"time"

	"github.com/google/uuid"
)

// Report type constants
const (
	ReportDashboard            = "dashboard"
	ReportKPIs                 = "kpis"
	ReportMaintenanceSchedule  = "maintenance_schedule"
	ReportCostsByVehicle       = "costs_by_vehicle"
	ReportFailureAnalysis      = "failure_analysis"
	ReportFinancialSummary     = "financial_summary"
	ReportInterventionAnalysis = "intervention_analysis"
)

// Report is a cached computed report payload. A cache miss creates a new row
// rather than updating in place; expired duplicates are swept opportunistically.
type Report struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ReportType    string     `gorm:"type:varchar(50);not null;index" json:"report_type"`
	Parameters    string     `gorm:"type:jsonb" json:"parameters"`
	ParamsHash    string     `gorm:"type:varchar(64);index" json:"params_hash"`
	CachedData    string     `gorm:"type:jsonb" json:"cached_data"`
	CachedUntil   *time.Time `gorm:"index" json:"cached_until"`
	GeneratedByID *uuid.UUID `gorm:"type:uuid" json:"generated_by"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
}

// --- Report payload shapes ---

// TrendDirection constants for period-over-period comparisons
const (
	TrendUp      = "up"
	TrendDown    = "down"
	TrendNeutral = "neutral"
)

// Trend compares the current period against the immediately preceding
// equal-length period. IsPositive accounts for metrics where lower is better.
type Trend struct {
	ChangePercent float64 `json:"change_percent"`
	Direction     string  `json:"direction"`
	IsPositive    bool    `json:"is_positive"`
}

// StatusCount is a count of interventions per workflow status
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// DashboardReport is the payload of the dashboard report type
type DashboardReport struct {
	TotalVehicles       int64         `json:"total_vehicles"`
	OpenInterventions   int64         `json:"open_interventions"`
	ClosedInterventions int64         `json:"closed_interventions"`
	UrgentInterventions int64         `json:"urgent_interventions"`
	UnreadAlerts        int64         `json:"unread_alerts"`
	CountsByStatus      []StatusCount `json:"counts_by_status"`
	GeneratedAt         time.Time     `json:"generated_at"`
}

// VehicleCostRow aggregates invoiced cost per vehicle
type VehicleCostRow struct {
	VehicleID        string  `json:"vehicle_id"`
	LicensePlate     string  `json:"license_plate"`
	Brand            string  `json:"brand"`
	Model            string  `json:"model"`
	InvoiceCount     int64   `json:"invoice_count"`
	TotalCost        float64 `json:"total_cost"`
	AverageCost      float64 `json:"average_cost"`
	InterventionDays float64 `json:"intervention_days"`
}

// CostsByVehicleReport is the payload of the costs_by_vehicle report type
type CostsByVehicleReport struct {
	StartDate   time.Time        `json:"start_date"`
	EndDate     time.Time        `json:"end_date"`
	Rows        []VehicleCostRow `json:"rows"`
	TotalCost   float64          `json:"total_cost"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// KPIReport is the payload of the kpis report type
type KPIReport struct {
	PeriodStart          time.Time `json:"period_start"`
	PeriodEnd            time.Time `json:"period_end"`
	InterventionsOpened  int64     `json:"interventions_opened"`
	InterventionsClosed  int64     `json:"interventions_closed"`
	TotalInvoiced        float64   `json:"total_invoiced"`
	AverageRepairDays    float64   `json:"average_repair_days"`
	AnomalousPriceCount  int64     `json:"anomalous_price_count"`
	OpenedTrend          Trend     `json:"opened_trend"`
	InvoicedTrend        Trend     `json:"invoiced_trend"`
	RepairDelayTrend     Trend     `json:"repair_delay_trend"`
	GeneratedAt          time.Time `json:"generated_at"`
}

// MaintenanceScheduleEntry is one upcoming maintenance line
type MaintenanceScheduleEntry struct {
	VehicleID      string     `json:"vehicle_id"`
	LicensePlate   string     `json:"license_plate"`
	Model          string     `json:"model"`
	Odometer       int64      `json:"odometer"`
	LastService    *time.Time `json:"last_service"`
	DaysSinceLast  int64      `json:"days_since_last"`
	OverdueService bool       `json:"overdue_service"`
}

// MaintenanceScheduleReport is the payload of the maintenance_schedule report type
type MaintenanceScheduleReport struct {
	Entries     []MaintenanceScheduleEntry `json:"entries"`
	GeneratedAt time.Time                  `json:"generated_at"`
}

// FailureAnalysisRow aggregates interventions per vehicle brand/model
type FailureAnalysisRow struct {
	Brand        string  `json:"brand"`
	Model        string  `json:"model"`
	Count        int64   `json:"count"`
	UrgentCount  int64   `json:"urgent_count"`
	AverageDays  float64 `json:"average_days"`
}

// FailureAnalysisReport is the payload of the failure_analysis report type
type FailureAnalysisReport struct {
	StartDate   time.Time            `json:"start_date"`
	EndDate     time.Time            `json:"end_date"`
	Rows        []FailureAnalysisRow `json:"rows"`
	GeneratedAt time.Time            `json:"generated_at"`
}
