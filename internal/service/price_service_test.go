package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func defaultSettings() PriceAnalysisSettings {
	return PriceAnalysisSettings{
		WindowMonths:      DefaultPriceWindowMonths,
		MinSamples:        DefaultPriceMinSamples,
		ThresholdCritical: DefaultPriceThresholdCritical,
		ThresholdHigh:     DefaultPriceThresholdHigh,
		ThresholdMedium:   DefaultPriceThresholdMedium,
		ThresholdLow:      DefaultPriceThresholdLow,
	}
}

func samplesAt(price string, n int) []model.SupplyPriceHistory {
	population := make([]model.SupplyPriceHistory, n)
	for i := range population {
		population[i] = model.SupplyPriceHistory{UnitPrice: dec(price)}
	}
	return population
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestClassifyPriceBands(t *testing.T) {
	population := samplesAt("100", 4) // mean 100

	cases := []struct {
		name          string
		price         string
		wantDeviation string
		wantRank      string
		wantAnomaly   bool
	}{
		{"on the mean", "100", "0", model.RankAverage, false},
		{"within low threshold", "108", "8", model.RankAverage, false},
		{"above average band", "112", "12", model.RankAboveAverage, false},
		{"below average band", "85", "-15", model.RankBelowAverage, false},
		// 20 < |dev| <= 30 and 30 < |dev| <= 50 both land on high/low
		{"medium band collapses to high", "125", "25", model.RankHigh, true},
		{"high band", "135", "35", model.RankHigh, true},
		{"medium band collapses to low", "75", "-25", model.RankLow, true},
		{"critical high", "160", "60", model.RankVeryHigh, true},
		{"critical low", "40", "-60", model.RankVeryLow, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			deviation, rank, anomaly := classifyPrice(dec(tc.price), population, defaultSettings())
			assert.True(t, dec(tc.wantDeviation).Equal(deviation), "deviation: want %s got %s", tc.wantDeviation, deviation)
			assert.Equal(t, tc.wantRank, rank)
			assert.Equal(t, tc.wantAnomaly, anomaly)
		})
	}
}

func TestClassifyPriceBelowMinimumSamples(t *testing.T) {
	deviation, rank, anomaly := classifyPrice(dec("9999"), samplesAt("100", 2), defaultSettings())
	assert.True(t, deviation.IsZero())
	assert.Equal(t, model.RankAverage, rank)
	assert.False(t, anomaly)

	deviation, rank, anomaly = classifyPrice(dec("9999"), nil, defaultSettings())
	assert.True(t, deviation.IsZero())
	assert.Equal(t, model.RankAverage, rank)
	assert.False(t, anomaly)
}

func TestConfidenceTiers(t *testing.T) {
	assert.Equal(t, "none", confidenceTier(0))
	assert.Equal(t, "none", confidenceTier(2))
	assert.Equal(t, "low", confidenceTier(3))
	assert.Equal(t, "low", confidenceTier(4))
	assert.Equal(t, "medium", confidenceTier(5))
	assert.Equal(t, "medium", confidenceTier(9))
	assert.Equal(t, "high", confidenceTier(10))
}

func newPriceFixture(t *testing.T) (PriceService, *gorm.DB, uuid.UUID) {
	t.Helper()
	db := newTestDB(t)
	tenantID := seedTenant(t, db)

	paramSvc := NewParameterService(repository.NewParameterRepository(db))
	alertSvc := NewAlertService(repository.NewAlertRepository(db), repository.NewTenantRepository(db), nil, nil)
	svc := NewPriceService(repository.NewPriceHistoryRepository(db), paramSvc, alertSvc, repository.NewAuditRepository(db)).(*priceService)
	svc.now = fixedClock(time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC))
	return svc, db, tenantID
}

func seedPriceHistory(t *testing.T, db *gorm.DB, tenantID uuid.UUID, description string, prices []string) {
	t.Helper()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range prices {
		require.NoError(t, db.Create(&model.SupplyPriceHistory{
			TenantID:     tenantID,
			Description:  description,
			RecordedDate: base.AddDate(0, 0, i*7),
			UnitPrice:    dec(p),
			SourceType:   model.PriceSourceManual,
			PriceRank:    model.RankAverage,
		}).Error)
	}
}

func TestRecordPriceFirstObservationsAreNeutral(t *testing.T) {
	svc, _, tenantID := newPriceFixture(t)

	resp, err := svc.RecordPrice(context.Background(), tenantID, uuid.NewString(), RecordPriceRequest{
		Description: "brake pads",
		UnitPrice:   "999.00",
	})
	require.NoError(t, err)
	assert.False(t, resp.IsAnomaly)
	assert.Equal(t, model.RankAverage, resp.PriceRank)
	assert.Equal(t, "0.00", resp.DeviationPercent)
	assert.Equal(t, model.PriceSourceManual, resp.SourceType)
}

func TestRecordPriceFlagsAnomalyAndRaisesAlert(t *testing.T) {
	svc, db, tenantID := newPriceFixture(t)
	seedPriceHistory(t, db, tenantID, "brake pads", []string{"100", "100", "100", "100"})

	resp, err := svc.RecordPrice(context.Background(), tenantID, uuid.NewString(), RecordPriceRequest{
		Description: "brake pads",
		UnitPrice:   "160.00",
	})
	require.NoError(t, err)
	assert.True(t, resp.IsAnomaly)
	assert.Equal(t, model.RankVeryHigh, resp.PriceRank)
	assert.Equal(t, "60.00", resp.DeviationPercent)

	var alert model.Alert
	require.NoError(t, db.Where("tenant_id = ? AND type = ?", tenantID, model.AlertTypePriceAnomaly).First(&alert).Error)
	assert.Equal(t, model.SeverityCritical, alert.Severity, "deviation beyond the critical threshold mails out as critical")

	var audit model.AuditLog
	require.NoError(t, db.Where("action = ?", model.ActionRecordPrice).First(&audit).Error)
}

func TestRecordPriceClassificationIsFinal(t *testing.T) {
	svc, db, tenantID := newPriceFixture(t)
	seedPriceHistory(t, db, tenantID, "oil filter", []string{"100", "100", "100"})

	resp, err := svc.RecordPrice(context.Background(), tenantID, uuid.NewString(), RecordPriceRequest{
		Description: "oil filter",
		UnitPrice:   "125.00",
	})
	require.NoError(t, err)
	assert.True(t, resp.IsAnomaly)
	assert.Equal(t, model.RankHigh, resp.PriceRank)

	// Later observations shift the mean but never rewrite the stored record
	for i := 0; i < 5; i++ {
		_, err = svc.RecordPrice(context.Background(), tenantID, uuid.NewString(), RecordPriceRequest{
			Description: "oil filter",
			UnitPrice:   "125.00",
		})
		require.NoError(t, err)
	}

	var stored model.SupplyPriceHistory
	require.NoError(t, db.Where("id = ?", resp.ID).First(&stored).Error)
	assert.True(t, stored.IsAnomaly)
	assert.Equal(t, model.RankHigh, stored.PriceRank)
}

func TestRecordPriceValidation(t *testing.T) {
	svc, _, tenantID := newPriceFixture(t)
	ctx := context.Background()

	_, err := svc.RecordPrice(ctx, tenantID, "", RecordPriceRequest{UnitPrice: "10.00"})
	assert.Error(t, err, "needs supply_id or description")

	_, err = svc.RecordPrice(ctx, tenantID, "", RecordPriceRequest{Description: "pads", UnitPrice: "-3"})
	assert.Error(t, err, "price must be positive")

	_, err = svc.RecordPrice(ctx, tenantID, "", RecordPriceRequest{Description: "pads", UnitPrice: "abc"})
	assert.Error(t, err)
}

func TestGetSuggestionBands(t *testing.T) {
	svc, db, tenantID := newPriceFixture(t)
	seedPriceHistory(t, db, tenantID, "timing belt", []string{"90", "95", "100", "105", "110"})

	suggestion, err := svc.GetSuggestion(context.Background(), tenantID, "", "timing belt", "")
	require.NoError(t, err)

	assert.Equal(t, 5, suggestion.SampleSize)
	assert.Equal(t, "medium", suggestion.Confidence)
	require.NotNil(t, suggestion.AveragePrice)
	assert.Equal(t, "100.00", *suggestion.AveragePrice)
	assert.Equal(t, "90.00", *suggestion.MinPrice)
	assert.Equal(t, "110.00", *suggestion.MaxPrice)
	assert.Equal(t, "110.00", *suggestion.LastPrice, "population is ordered by recorded date")
	assert.Equal(t, "90.00", *suggestion.SuggestedLow)
	assert.Equal(t, "110.00", *suggestion.SuggestedHigh)
}

func TestGetSuggestionEmptyHistory(t *testing.T) {
	svc, _, tenantID := newPriceFixture(t)

	suggestion, err := svc.GetSuggestion(context.Background(), tenantID, "", "unknown part", "")
	require.NoError(t, err)
	assert.Equal(t, 0, suggestion.SampleSize)
	assert.Equal(t, "none", suggestion.Confidence)
	assert.Nil(t, suggestion.AveragePrice)
	assert.Nil(t, suggestion.SuggestedLow)
}
