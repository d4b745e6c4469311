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

func newInterventionFixture(t *testing.T) (*interventionService, *gorm.DB, uuid.UUID, *model.Vehicle) {
	t.Helper()
	db := newTestDB(t)
	tenantID := seedTenant(t, db)
	vehicle := seedVehicle(t, db, tenantID)

	codeSvc := NewCodeService(repository.NewCodeFormatRepository(db)).(*codeService)
	codeSvc.now = fixedClock(time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC))

	svc := NewInterventionService(
		repository.NewInterventionRepository(db),
		repository.NewVehicleRepository(db),
		repository.NewAuditRepository(db),
		codeSvc,
		NewAlertService(repository.NewAlertRepository(db), repository.NewTenantRepository(db), nil, nil),
		repository.NewTransactionManager(db),
	).(*interventionService)
	svc.now = fixedClock(time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC))
	return svc, db, tenantID, vehicle
}

func TestReportIntervention(t *testing.T) {
	svc, _, tenantID, vehicle := newInterventionFixture(t)
	ctx := context.Background()

	resp, err := svc.ReportIntervention(ctx, tenantID, uuid.NewString(), ReportInterventionRequest{
		VehicleID:   vehicle.ID.String(),
		Title:       "Coolant leak",
		Description: "Puddle under the engine every morning",
	})
	require.NoError(t, err)

	assert.Equal(t, "INT-2025-06-0001", resp.Number)
	assert.Equal(t, model.StatusReported, resp.CurrentStatus)
	assert.Equal(t, model.PriorityMedium, resp.Priority, "priority defaults to medium")
	assert.Equal(t, 5, resp.ProgressPercent)
	assert.Equal(t, vehicle.LicensePlate, resp.LicensePlate)
	assert.ElementsMatch(t, []string{model.StatusInPrediagnostic, model.StatusCancelled}, resp.AllowedTransitions)
	assert.Nil(t, resp.StartedDate)
}

func TestReportInterventionRefusesInactiveVehicle(t *testing.T) {
	svc, db, tenantID, vehicle := newInterventionFixture(t)

	vehicle.IsActive = false
	require.NoError(t, db.Save(vehicle).Error)

	_, err := svc.ReportIntervention(context.Background(), tenantID, uuid.NewString(), ReportInterventionRequest{
		VehicleID: vehicle.ID.String(),
		Title:     "Dead battery",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inactive")
}

func TestReportInterventionUnknownVehicle(t *testing.T) {
	svc, _, tenantID, _ := newInterventionFixture(t)

	_, err := svc.ReportIntervention(context.Background(), tenantID, uuid.NewString(), ReportInterventionRequest{
		VehicleID: uuid.NewString(),
		Title:     "Phantom vehicle",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vehicle not found")
}

func TestTransitionInterventionRefusesJump(t *testing.T) {
	svc, _, tenantID, vehicle := newInterventionFixture(t)
	ctx := context.Background()
	userID := uuid.NewString()

	resp, err := svc.ReportIntervention(ctx, tenantID, userID, ReportInterventionRequest{
		VehicleID: vehicle.ID.String(),
		Title:     "Worn brake discs",
	})
	require.NoError(t, err)

	_, err = svc.TransitionIntervention(ctx, tenantID, userID, resp.ID, TransitionRequest{TargetStatus: model.StatusInRepair})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot move intervention")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	// The refused jump leaves the record untouched
	current, err := svc.GetIntervention(ctx, tenantID, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReported, current.CurrentStatus)
}

func TestTransitionInterventionStampsLifecycleDates(t *testing.T) {
	svc, _, tenantID, vehicle := newInterventionFixture(t)
	ctx := context.Background()
	userID := uuid.NewString()

	resp, err := svc.ReportIntervention(ctx, tenantID, userID, ReportInterventionRequest{
		VehicleID: vehicle.ID.String(),
		Title:     "Oil change",
	})
	require.NoError(t, err)

	resp, err = svc.TransitionIntervention(ctx, tenantID, userID, resp.ID, TransitionRequest{TargetStatus: model.StatusInPrediagnostic})
	require.NoError(t, err)
	require.NotNil(t, resp.StartedDate)
	assert.Equal(t, 15, resp.ProgressPercent)
	assert.Equal(t, "diagnostic", resp.WorkflowStage)

	resp, err = svc.TransitionIntervention(ctx, tenantID, userID, resp.ID, TransitionRequest{TargetStatus: model.StatusCancelled, Comment: "duplicate report"})
	require.NoError(t, err)
	require.NotNil(t, resp.ClosedDate)
	assert.Equal(t, 0, resp.ProgressPercent)
	assert.Equal(t, "closed", resp.WorkflowStage)
	assert.Empty(t, resp.AllowedTransitions)
}

func TestListInterventionsFilters(t *testing.T) {
	svc, _, tenantID, vehicle := newInterventionFixture(t)
	ctx := context.Background()
	userID := uuid.NewString()

	for _, title := range []string{"first", "second", "third"} {
		_, err := svc.ReportIntervention(ctx, tenantID, userID, ReportInterventionRequest{
			VehicleID: vehicle.ID.String(),
			Title:     title,
		})
		require.NoError(t, err)
	}
	resp, err := svc.ReportIntervention(ctx, tenantID, userID, ReportInterventionRequest{
		VehicleID: vehicle.ID.String(),
		Title:     "urgent one",
		Priority:  model.PriorityUrgent,
	})
	require.NoError(t, err)
	_, err = svc.TransitionIntervention(ctx, tenantID, userID, resp.ID, TransitionRequest{TargetStatus: model.StatusInPrediagnostic})
	require.NoError(t, err)

	all, total, err := svc.ListInterventions(ctx, tenantID, InterventionFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, all, 4)

	reported, total, err := svc.ListInterventions(ctx, tenantID, InterventionFilter{Status: model.StatusReported})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	for _, r := range reported {
		assert.Equal(t, model.StatusReported, r.CurrentStatus)
	}

	urgent, total, err := svc.ListInterventions(ctx, tenantID, InterventionFilter{Priority: model.PriorityUrgent})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, urgent, 1)
	assert.Equal(t, "urgent one", urgent[0].Title)

	_, _, err = svc.ListInterventions(ctx, tenantID, InterventionFilter{Status: "galactic"})
	require.Error(t, err)

	// Other tenants never see these rows
	_, total, err = svc.ListInterventions(ctx, uuid.New(), InterventionFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}
