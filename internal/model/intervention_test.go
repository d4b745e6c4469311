package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionHappyPath(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	chain := []string{
		StatusReported,
		StatusInPrediagnostic,
		StatusPrediagnosticCompleted,
		StatusInQuote,
		StatusQuoteReceived,
		StatusInApproval,
		StatusApproved,
		StatusInRepair,
		StatusRepairCompleted,
		StatusInReception,
		StatusVehicleReceived,
	}

	intervention := Intervention{CurrentStatus: StatusReported}
	for i := 1; i < len(chain); i++ {
		require.NoError(t, intervention.ApplyTransition(chain[i], now), "step %s -> %s", chain[i-1], chain[i])
		assert.Equal(t, chain[i], intervention.CurrentStatus)
	}

	// The full chain stamps start and completion
	require.NotNil(t, intervention.StartedDate)
	assert.Equal(t, now, *intervention.StartedDate)
	require.NotNil(t, intervention.CompletedDate)
	assert.Equal(t, now, *intervention.CompletedDate)
	assert.Nil(t, intervention.ClosedDate)
}

func TestTransitionRejectsSkips(t *testing.T) {
	now := time.Now()

	cases := []struct {
		from, to string
	}{
		{StatusReported, StatusInQuote},
		{StatusReported, StatusApproved},
		{StatusInPrediagnostic, StatusInRepair},
		{StatusApproved, StatusVehicleReceived},
		{StatusInRepair, StatusReported}, // no going backwards
	}
	for _, tc := range cases {
		_, err := Transition(tc.from, tc.to, now)
		assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s should be refused", tc.from, tc.to)
	}

	// Unknown target status
	_, err := Transition(StatusReported, "shipped", now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransitionTerminalStates(t *testing.T) {
	now := time.Now()

	// cancelled is a dead end
	for _, target := range ValidStatuses() {
		_, err := Transition(StatusCancelled, target, now)
		assert.ErrorIs(t, err, ErrInvalidTransition, "cancelled -> %s", target)
	}

	// vehicle_received can only be cancelled
	_, err := Transition(StatusVehicleReceived, StatusCancelled, now)
	assert.NoError(t, err)
	_, err = Transition(StatusVehicleReceived, StatusInRepair, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransitionCancellationFromAnyActiveStatus(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	for _, status := range ValidStatuses() {
		if status == StatusCancelled {
			continue
		}
		result, err := Transition(status, StatusCancelled, now)
		require.NoError(t, err, "cancel from %s", status)
		assert.Equal(t, StatusCancelled, result.Status)
		require.NotNil(t, result.ClosedDate)
		assert.Equal(t, now, *result.ClosedDate)
	}
}

func TestApplyTransitionStampsTimestamps(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	intervention := Intervention{CurrentStatus: StatusReported}
	require.NoError(t, intervention.ApplyTransition(StatusInPrediagnostic, now))
	require.NotNil(t, intervention.StartedDate)
	assert.Equal(t, now, *intervention.StartedDate)
	assert.Nil(t, intervention.CompletedDate)

	// A refused transition leaves the intervention untouched
	before := intervention
	err := intervention.ApplyTransition(StatusVehicleReceived, now.Add(time.Hour))
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, before.CurrentStatus, intervention.CurrentStatus)
	assert.Equal(t, before.UpdatedAt, intervention.UpdatedAt)
}

func TestProgressAndStage(t *testing.T) {
	i := Intervention{CurrentStatus: StatusReported}
	assert.Equal(t, 5, i.ProgressPercent())
	assert.Equal(t, "diagnostic", i.WorkflowStage())

	i.CurrentStatus = StatusInRepair
	assert.Equal(t, 75, i.ProgressPercent())
	assert.Equal(t, "repair", i.WorkflowStage())

	i.CurrentStatus = StatusVehicleReceived
	assert.Equal(t, 100, i.ProgressPercent())
	assert.Equal(t, "delivery", i.WorkflowStage())

	i.CurrentStatus = StatusCancelled
	assert.Equal(t, 0, i.ProgressPercent())
	assert.Equal(t, "closed", i.WorkflowStage())
}

func TestAllowedTransitions(t *testing.T) {
	assert.ElementsMatch(t, []string{StatusInPrediagnostic, StatusCancelled}, AllowedTransitions(StatusReported))
	assert.Empty(t, AllowedTransitions(StatusCancelled))
	assert.Empty(t, AllowedTransitions("nonsense"))
}
