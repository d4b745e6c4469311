package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens an isolated in-memory sqlite database migrated with the full
// schema. TranslateError is on so unique-index violations surface as
// gorm.ErrDuplicatedKey, the same way they do on Postgres.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Tenant{},
		&model.User{},
		&model.RefreshToken{},
		&model.Role{},
		&model.Permission{},
		&model.Driver{},
		&model.Vehicle{},
		&model.Supplier{},
		&model.Supply{},
		&model.Intervention{},
		&model.InterventionQuote{},
		&model.InterventionQuoteLine{},
		&model.InterventionWorkAuthorization{},
		&model.AuthorizationLine{},
		&model.InterventionInvoice{},
		&model.InvoiceLine{},
		&model.SupplyPriceHistory{},
		&model.CodeFormat{},
		&model.Report{},
		&model.Alert{},
		&model.Parameter{},
		&model.Attachment{},
		&model.AuditLog{},
	))
	return db
}

func seedTenant(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	// Tenant names carry a unique index, so every seeded tenant gets its own
	tenant := model.Tenant{Name: "Garage " + uuid.NewString()[:8], ContactEmail: "ops@example.com", IsActive: true}
	require.NoError(t, db.Create(&tenant).Error)
	return tenant.ID
}

func seedUser(t *testing.T, db *gorm.DB, tenantID uuid.UUID, role string) *model.User {
	t.Helper()
	user := model.User{
		TenantID: tenantID,
		Username: fmt.Sprintf("%s-%s", role, uuid.NewString()[:8]),
		Email:    fmt.Sprintf("%s@example.com", uuid.NewString()[:8]),
		Password: "$2a$10$irrelevant.for.these.tests",
		Role:     role,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedVehicle(t *testing.T, db *gorm.DB, tenantID uuid.UUID) *model.Vehicle {
	t.Helper()
	vehicle := model.Vehicle{
		TenantID:     tenantID,
		LicensePlate: "AB-" + uuid.NewString()[:8],
		Brand:        "Renault",
		Model:        "Master",
		Year:         2021,
		Odometer:     84000,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&vehicle).Error)
	return &vehicle
}

// fixedClock returns a deterministic clock for services with an injectable now
func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
