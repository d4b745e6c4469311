package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Intervention workflow statuses
const (
	StatusReported               = "reported"
	StatusInPrediagnostic        = "in_prediagnostic"
	StatusPrediagnosticCompleted = "prediagnostic_completed"
	StatusInQuote                = "in_quote"
	StatusQuoteReceived          = "quote_received"
	StatusInApproval             = "in_approval"
	StatusApproved               = "approved"
	StatusInRepair               = "in_repair"
	StatusRepairCompleted        = "repair_completed"
	StatusInReception            = "in_reception"
	StatusVehicleReceived        = "vehicle_received"
	StatusCancelled              = "cancelled"
)

// Priority enum constants
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// ErrInvalidTransition is returned when a status change is not in the transition table
var ErrInvalidTransition = errors.New("invalid status transition")

// statusTransitions is the full workflow table. Every non-terminal status allows
// its single happy-path successor plus cancellation. cancelled is terminal.
var statusTransitions = map[string][]string{
	StatusReported:               {StatusInPrediagnostic, StatusCancelled},
	StatusInPrediagnostic:        {StatusPrediagnosticCompleted, StatusCancelled},
	StatusPrediagnosticCompleted: {StatusInQuote, StatusCancelled},
	StatusInQuote:                {StatusQuoteReceived, StatusCancelled},
	StatusQuoteReceived:          {StatusInApproval, StatusCancelled},
	StatusInApproval:             {StatusApproved, StatusCancelled},
	StatusApproved:               {StatusInRepair, StatusCancelled},
	StatusInRepair:               {StatusRepairCompleted, StatusCancelled},
	StatusRepairCompleted:        {StatusInReception, StatusCancelled},
	StatusInReception:            {StatusVehicleReceived, StatusCancelled},
	StatusVehicleReceived:        {StatusCancelled},
	StatusCancelled:              {},
}

// statusProgress maps each status to a display-only completion percentage
var statusProgress = map[string]int{
	StatusReported:               5,
	StatusInPrediagnostic:        15,
	StatusPrediagnosticCompleted: 25,
	StatusInQuote:                35,
	StatusQuoteReceived:          45,
	StatusInApproval:             55,
	StatusApproved:               60,
	StatusInRepair:               75,
	StatusRepairCompleted:        85,
	StatusInReception:            95,
	StatusVehicleReceived:        100,
	StatusCancelled:              0,
}

// statusStage maps each status to a coarse workflow stage for dashboards
var statusStage = map[string]string{
	StatusReported:               "diagnostic",
	StatusInPrediagnostic:        "diagnostic",
	StatusPrediagnosticCompleted: "diagnostic",
	StatusInQuote:                "quoting",
	StatusQuoteReceived:          "quoting",
	StatusInApproval:             "quoting",
	StatusApproved:               "quoting",
	StatusInRepair:               "repair",
	StatusRepairCompleted:        "repair",
	StatusInReception:            "delivery",
	StatusVehicleReceived:        "delivery",
	StatusCancelled:              "closed",
}

// ValidStatuses returns every status known to the workflow
func ValidStatuses() []string {
	statuses := make([]string, 0, len(statusTransitions))
	for s := range statusTransitions {
		statuses = append(statuses, s)
	}
	return statuses
}

// IsValidStatus reports whether s is a known workflow status
func IsValidStatus(s string) bool {
	_, ok := statusTransitions[s]
	return ok
}

// AllowedTransitions returns the statuses reachable from the given status
func AllowedTransitions(from string) []string {
	return statusTransitions[from]
}

// TransitionResult is the outcome of a successful workflow transition: the new
// status plus the timestamps that must be stamped when entering it.
type TransitionResult struct {
	Status        string
	StartedDate   *time.Time
	CompletedDate *time.Time
	ClosedDate    *time.Time
}

// Transition computes the effect of moving from one status to another at the
// given time. It is a pure function; persisting the result is the caller's job.
func Transition(current, target string, now time.Time) (TransitionResult, error) {
	if !IsValidStatus(target) {
		return TransitionResult{}, ErrInvalidTransition
	}
	allowed := false
	for _, s := range statusTransitions[current] {
		if s == target {
			allowed = true
			break
		}
	}
	if !allowed {
		return TransitionResult{}, ErrInvalidTransition
	}

	result := TransitionResult{Status: target}
	switch target {
	case StatusInPrediagnostic:
		result.StartedDate = &now
	case StatusVehicleReceived:
		result.CompletedDate = &now
	case StatusCancelled:
		result.ClosedDate = &now
	}
	return result, nil
}

// Intervention represents a vehicle repair/service case. Interventions are
// closed via cancellation or reception, never hard-deleted.
type Intervention struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	VehicleID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	Vehicle         *Vehicle   `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	Number          string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"number"`
	Title           string     `gorm:"type:varchar(255);not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	Priority        string     `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"` // low, medium, high, urgent
	CurrentStatus   string     `gorm:"type:varchar(30);not null;default:'reported';index" json:"current_status"`
	OdometerReading *int64     `json:"odometer_reading"`
	ReportedDate    time.Time  `gorm:"not null" json:"reported_date"`
	StartedDate     *time.Time `json:"started_date"`
	CompletedDate   *time.Time `json:"completed_date"`
	ClosedDate      *time.Time `json:"closed_date"`
	ReportedByID    *uuid.UUID `gorm:"type:uuid" json:"reported_by"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CanTransitionTo reports whether the intervention may move to the target status
func (i *Intervention) CanTransitionTo(target string) bool {
	for _, s := range statusTransitions[i.CurrentStatus] {
		if s == target {
			return true
		}
	}
	return false
}

// ApplyTransition mutates the intervention with the result of a valid workflow
// transition. The current status is left untouched when the transition is refused.
func (i *Intervention) ApplyTransition(target string, now time.Time) error {
	result, err := Transition(i.CurrentStatus, target, now)
	if err != nil {
		return err
	}
	i.CurrentStatus = result.Status
	if result.StartedDate != nil {
		i.StartedDate = result.StartedDate
	}
	if result.CompletedDate != nil {
		i.CompletedDate = result.CompletedDate
	}
	if result.ClosedDate != nil {
		i.ClosedDate = result.ClosedDate
	}
	i.UpdatedAt = now
	return nil
}

// ProgressPercent returns the display-only completion percentage for the current status
func (i *Intervention) ProgressPercent() int {
	return statusProgress[i.CurrentStatus]
}

// WorkflowStage returns the coarse stage label for the current status
func (i *Intervention) WorkflowStage() string {
	return statusStage[i.CurrentStatus]
}
