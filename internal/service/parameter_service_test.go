package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePriceSettingsDefaults(t *testing.T) {
	db := newTestDB(t)
	tenantID := seedTenant(t, db)

	svc := NewParameterService(repository.NewParameterRepository(db))
	settings, err := svc.ResolvePriceSettings(context.Background(), tenantID)
	require.NoError(t, err)

	assert.Equal(t, 6, settings.WindowMonths)
	assert.Equal(t, 3, settings.MinSamples)
	assert.Equal(t, 50.0, settings.ThresholdCritical)
	assert.Equal(t, 30.0, settings.ThresholdHigh)
	assert.Equal(t, 20.0, settings.ThresholdMedium)
	assert.Equal(t, 10.0, settings.ThresholdLow)
}

func TestTenantOverrideShadowsGlobal(t *testing.T) {
	db := newTestDB(t)
	tenantID := seedTenant(t, db)
	otherTenant := seedTenant(t, db)
	ctx := context.Background()

	// Global default, then a tenant override for the same key
	require.NoError(t, db.Create(&model.Parameter{Key: model.ParamPriceThresholdMedium, Value: "25"}).Error)

	svc := NewParameterService(repository.NewParameterRepository(db))

	settings, err := svc.ResolvePriceSettings(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, 25.0, settings.ThresholdMedium, "global row applies when no override exists")

	_, err = svc.Set(ctx, tenantID, SetParameterRequest{Key: model.ParamPriceThresholdMedium, Value: "15"})
	require.NoError(t, err)

	settings, err = svc.ResolvePriceSettings(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, 15.0, settings.ThresholdMedium, "tenant row shadows the global default")

	// The other tenant still sees the global value
	settings, err = svc.ResolvePriceSettings(ctx, otherTenant)
	require.NoError(t, err)
	assert.Equal(t, 25.0, settings.ThresholdMedium)

	// Deleting the override falls back to the global row
	require.NoError(t, svc.Delete(ctx, tenantID, model.ParamPriceThresholdMedium))
	settings, err = svc.ResolvePriceSettings(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, 25.0, settings.ThresholdMedium)
}

func TestResolvePriceSettingsIgnoresGarbageValues(t *testing.T) {
	db := newTestDB(t)
	tenantID := seedTenant(t, db)
	ctx := context.Background()

	svc := NewParameterService(repository.NewParameterRepository(db))
	_, err := svc.Set(ctx, tenantID, SetParameterRequest{Key: model.ParamPriceMinSamples, Value: "not-a-number"})
	require.NoError(t, err)
	_, err = svc.Set(ctx, tenantID, SetParameterRequest{Key: model.ParamPriceWindowMonths, Value: "-2"})
	require.NoError(t, err)

	settings, err := svc.ResolvePriceSettings(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, 3, settings.MinSamples, "unparseable override keeps the default")
	assert.Equal(t, 6, settings.WindowMonths, "non-positive override keeps the default")
}

func TestListMarksGlobalRows(t *testing.T) {
	db := newTestDB(t)
	tenantID := seedTenant(t, db)
	ctx := context.Background()

	require.NoError(t, db.Create(&model.Parameter{Key: "ui.theme", Value: "dark"}).Error)
	svc := NewParameterService(repository.NewParameterRepository(db))
	_, err := svc.Set(ctx, tenantID, SetParameterRequest{Key: "alerts.digest", Value: "daily"})
	require.NoError(t, err)

	params, err := svc.List(ctx, tenantID)
	require.NoError(t, err)

	byKey := make(map[string]ParameterResponse, len(params))
	for _, p := range params {
		byKey[p.Key] = p
	}
	require.Contains(t, byKey, "ui.theme")
	assert.True(t, byKey["ui.theme"].IsGlobal)
	require.Contains(t, byKey, "alerts.digest")
	assert.False(t, byKey["alerts.digest"].IsGlobal)
}
