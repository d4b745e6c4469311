package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newReportFixture(t *testing.T, at time.Time) (*reportService, *gorm.DB, uuid.UUID) {
	t.Helper()
	db := newTestDB(t)
	tenantID := seedTenant(t, db)
	seedVehicle(t, db, tenantID)

	svc := NewReportService(
		db,
		repository.NewReportRepository(db),
		repository.NewInterventionRepository(db),
		repository.NewInvoiceRepository(db),
		repository.NewVehicleRepository(db),
		repository.NewPriceHistoryRepository(db),
		repository.NewAlertRepository(db),
	).(*reportService)
	svc.now = fixedClock(at)
	return svc, db, tenantID
}

func TestGetOrGenerateServesFromCache(t *testing.T) {
	at := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	svc, _, tenantID := newReportFixture(t, at)
	ctx := context.Background()
	userID := uuid.NewString()

	first, err := svc.GetOrGenerate(ctx, tenantID, model.ReportDashboard, nil, userID, false)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	require.NotNil(t, first.CachedUntil)
	assert.Equal(t, at.Add(5*time.Minute), *first.CachedUntil)

	var dashboard model.DashboardReport
	require.NoError(t, json.Unmarshal(first.Data, &dashboard))
	assert.EqualValues(t, 1, dashboard.TotalVehicles)

	second, err := svc.GetOrGenerate(ctx, tenantID, model.ReportDashboard, nil, userID, false)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.ReportID, second.ReportID)

	// forceRefresh skips the cache entirely
	forced, err := svc.GetOrGenerate(ctx, tenantID, model.ReportDashboard, nil, userID, true)
	require.NoError(t, err)
	assert.False(t, forced.Cached)
	assert.NotEqual(t, first.ReportID, forced.ReportID)
}

func TestGetOrGenerateKeysCacheOnParams(t *testing.T) {
	at := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	svc, _, tenantID := newReportFixture(t, at)
	ctx := context.Background()
	userID := uuid.NewString()

	january, err := svc.GetOrGenerate(ctx, tenantID, model.ReportKPIs, map[string]string{"start_date": "2025-01-01", "end_date": "2025-02-01"}, userID, false)
	require.NoError(t, err)
	assert.False(t, january.Cached)

	february, err := svc.GetOrGenerate(ctx, tenantID, model.ReportKPIs, map[string]string{"start_date": "2025-02-01", "end_date": "2025-03-01"}, userID, false)
	require.NoError(t, err)
	assert.False(t, february.Cached, "different parameters never share a cache entry")
	assert.NotEqual(t, january.ReportID, february.ReportID)

	again, err := svc.GetOrGenerate(ctx, tenantID, model.ReportKPIs, map[string]string{"end_date": "2025-02-01", "start_date": "2025-01-01"}, userID, false)
	require.NoError(t, err)
	assert.True(t, again.Cached, "parameter order must not matter")
	assert.Equal(t, january.ReportID, again.ReportID)
}

func TestGetOrGenerateExpiresByTTL(t *testing.T) {
	at := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	svc, _, tenantID := newReportFixture(t, at)
	ctx := context.Background()
	userID := uuid.NewString()

	first, err := svc.GetOrGenerate(ctx, tenantID, model.ReportDashboard, nil, userID, false)
	require.NoError(t, err)

	// Within the 5 minute dashboard TTL the cache still answers
	svc.now = fixedClock(at.Add(4 * time.Minute))
	cached, err := svc.GetOrGenerate(ctx, tenantID, model.ReportDashboard, nil, userID, false)
	require.NoError(t, err)
	assert.True(t, cached.Cached)

	svc.now = fixedClock(at.Add(6 * time.Minute))
	refreshed, err := svc.GetOrGenerate(ctx, tenantID, model.ReportDashboard, nil, userID, false)
	require.NoError(t, err)
	assert.False(t, refreshed.Cached)
	assert.NotEqual(t, first.ReportID, refreshed.ReportID)
}

func TestGetOrGenerateRefusesDayOldCache(t *testing.T) {
	at := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	svc, db, tenantID := newReportFixture(t, at)
	ctx := context.Background()

	// A row whose TTL reaches far into the future but that was generated more
	// than a day ago must still be regenerated
	until := at.Add(48 * time.Hour)
	stale := model.Report{
		TenantID:    tenantID,
		ReportType:  model.ReportDashboard,
		Parameters:  "null",
		ParamsHash:  hashParams(nil),
		CachedData:  `{"total_vehicles":99}`,
		CachedUntil: &until,
	}
	require.NoError(t, db.Create(&stale).Error)
	require.NoError(t, db.Model(&stale).Update("created_at", at.Add(-25*time.Hour)).Error)

	result, err := svc.GetOrGenerate(ctx, tenantID, model.ReportDashboard, nil, uuid.NewString(), false)
	require.NoError(t, err)
	assert.False(t, result.Cached)
	assert.NotEqual(t, stale.ID.String(), result.ReportID)
}

func TestComputeTrend(t *testing.T) {
	cases := []struct {
		name          string
		current       float64
		previous      float64
		inverse       bool
		wantDirection string
		wantPositive  bool
	}{
		{"flat", 100, 100, false, model.TrendNeutral, true},
		{"within neutral band", 104, 100, false, model.TrendNeutral, true},
		{"growth", 120, 100, false, model.TrendUp, true},
		{"decline", 80, 100, false, model.TrendDown, false},
		{"cost growth is bad", 120, 100, true, model.TrendUp, false},
		{"cost decline is good", 80, 100, true, model.TrendDown, true},
		{"from zero", 10, 0, false, model.TrendUp, true},
		{"both zero", 0, 0, true, model.TrendNeutral, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			trend := computeTrend(tc.current, tc.previous, tc.inverse)
			assert.Equal(t, tc.wantDirection, trend.Direction)
			assert.Equal(t, tc.wantPositive, trend.IsPositive)
		})
	}
}

func TestWarmUpGeneratesCommonReports(t *testing.T) {
	at := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	svc, db, tenantID := newReportFixture(t, at)

	results := svc.WarmUp(context.Background(), tenantID, uuid.NewString())
	require.Len(t, results, 5)
	for reportType, err := range results {
		assert.NoError(t, err, reportType)
	}

	var cachedRows int64
	require.NoError(t, db.Model(&model.Report{}).Where("tenant_id = ?", tenantID).Count(&cachedRows).Error)
	assert.EqualValues(t, 5, cachedRows)
}

func TestOptimizeCacheSweepsExpiredRows(t *testing.T) {
	at := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	svc, db, tenantID := newReportFixture(t, at)
	ctx := context.Background()
	userID := uuid.NewString()

	_, err := svc.GetOrGenerate(ctx, tenantID, model.ReportDashboard, nil, userID, false)
	require.NoError(t, err)
	_, err = svc.GetOrGenerate(ctx, tenantID, model.ReportFinancialSummary, nil, userID, false)
	require.NoError(t, err)

	// Only the 5 minute dashboard entry has expired an hour later
	svc.now = fixedClock(at.Add(time.Hour))
	removed, err := svc.OptimizeCache(ctx, tenantID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	var remaining []model.Report
	require.NoError(t, db.Where("tenant_id = ?", tenantID).Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, model.ReportFinancialSummary, remaining[0].ReportType)
}

func TestInvalidateType(t *testing.T) {
	at := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	svc, _, tenantID := newReportFixture(t, at)
	ctx := context.Background()
	userID := uuid.NewString()

	first, err := svc.GetOrGenerate(ctx, tenantID, model.ReportDashboard, nil, userID, false)
	require.NoError(t, err)

	require.NoError(t, svc.InvalidateType(ctx, tenantID, model.ReportDashboard))

	second, err := svc.GetOrGenerate(ctx, tenantID, model.ReportDashboard, nil, userID, false)
	require.NoError(t, err)
	assert.False(t, second.Cached)
	assert.NotEqual(t, first.ReportID, second.ReportID)
}
