package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextCodeSeedsDefaultsAndIncrements(t *testing.T) {
	db := newTestDB(t)
	tenantID := seedTenant(t, db)
	june := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	svc := NewCodeService(repository.NewCodeFormatRepository(db)).(*codeService)
	svc.now = fixedClock(june)
	ctx := context.Background()

	code, err := svc.NextCode(ctx, tenantID, model.CodeEntityIntervention)
	require.NoError(t, err)
	assert.Equal(t, "INT-2025-06-0001", code)

	code, err = svc.NextCode(ctx, tenantID, model.CodeEntityIntervention)
	require.NoError(t, err)
	assert.Equal(t, "INT-2025-06-0002", code)

	// Other entity types keep their own counters
	code, err = svc.NextCode(ctx, tenantID, model.CodeEntityQuote)
	require.NoError(t, err)
	assert.Equal(t, "DEV-2025-0001", code)

	code, err = svc.NextCode(ctx, tenantID, model.CodeEntityVehicle)
	require.NoError(t, err)
	assert.Equal(t, "VEH-0001", code)
}

func TestNextCodeResetsOnPeriodRollover(t *testing.T) {
	db := newTestDB(t)
	tenantID := seedTenant(t, db)
	ctx := context.Background()

	svc := NewCodeService(repository.NewCodeFormatRepository(db)).(*codeService)
	svc.now = fixedClock(time.Date(2025, 6, 28, 10, 0, 0, 0, time.UTC))

	code, err := svc.NextCode(ctx, tenantID, model.CodeEntityIntervention)
	require.NoError(t, err)
	assert.Equal(t, "INT-2025-06-0001", code)
	code, err = svc.NextCode(ctx, tenantID, model.CodeEntityIntervention)
	require.NoError(t, err)
	assert.Equal(t, "INT-2025-06-0002", code)

	// Month rolls over: monthly pattern restarts at 1
	svc.now = fixedClock(time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC))
	code, err = svc.NextCode(ctx, tenantID, model.CodeEntityIntervention)
	require.NoError(t, err)
	assert.Equal(t, "INT-2025-07-0001", code)

	// Yearly pattern survives the month change
	svc.now = fixedClock(time.Date(2025, 6, 28, 10, 0, 0, 0, time.UTC))
	code, err = svc.NextCode(ctx, tenantID, model.CodeEntityQuote)
	require.NoError(t, err)
	assert.Equal(t, "DEV-2025-0001", code)
	svc.now = fixedClock(time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC))
	code, err = svc.NextCode(ctx, tenantID, model.CodeEntityQuote)
	require.NoError(t, err)
	assert.Equal(t, "DEV-2025-0002", code)
}

func TestNextCodeUnknownEntityType(t *testing.T) {
	db := newTestDB(t)
	tenantID := seedTenant(t, db)

	svc := NewCodeService(repository.NewCodeFormatRepository(db))
	_, err := svc.NextCode(context.Background(), tenantID, "shipment")
	assert.Error(t, err)
}

func TestUpdateFormatValidatesAndResets(t *testing.T) {
	db := newTestDB(t)
	tenantID := seedTenant(t, db)
	ctx := context.Background()

	svc := NewCodeService(repository.NewCodeFormatRepository(db)).(*codeService)
	svc.now = fixedClock(time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC))

	_, err := svc.UpdateFormat(ctx, tenantID, UpdateCodeFormatRequest{
		EntityType: model.CodeEntityIntervention,
		Pattern:    "INT-{YEAR}",
	})
	assert.Error(t, err, "pattern without {SEQUENCE} must be refused")

	resp, err := svc.UpdateFormat(ctx, tenantID, UpdateCodeFormatRequest{
		EntityType:     model.CodeEntityIntervention,
		Pattern:        "WO-{YEAR}-{SEQUENCE}",
		SequenceLength: 6,
	})
	require.NoError(t, err)
	assert.Equal(t, "WO-{YEAR}-{SEQUENCE}", resp.Pattern)
	assert.Equal(t, 6, resp.SequenceLength)
	assert.Equal(t, "WO-2025-000001", resp.Preview)

	code, err := svc.NextCode(ctx, tenantID, model.CodeEntityIntervention)
	require.NoError(t, err)
	assert.Equal(t, "WO-2025-000001", code)

	formats, err := svc.ListFormats(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, formats, 1)
	assert.Equal(t, 1, formats[0].CurrentSequence)
}
