package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// The schema must migrate on sqlite as well as Postgres: IDs are assigned by
// the BeforeCreate hooks, not by an engine-specific column default.
func TestMigrateAndAssignIDsOnSqlite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:hooks?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Tenant{}, &Vehicle{}, &Intervention{}))

	tenant := Tenant{Name: "Garage Nord", ContactEmail: "ops@example.com", IsActive: true}
	require.NoError(t, db.Create(&tenant).Error)
	assert.NotEqual(t, uuid.Nil, tenant.ID)

	vehicle := Vehicle{TenantID: tenant.ID, LicensePlate: "AB-123-CD", Brand: "Renault", Model: "Master", IsActive: true}
	require.NoError(t, db.Create(&vehicle).Error)
	assert.NotEqual(t, uuid.Nil, vehicle.ID)

	// A caller-provided ID is kept as-is
	preset := uuid.New()
	second := Vehicle{ID: preset, TenantID: tenant.ID, LicensePlate: "EF-456-GH", Brand: "Renault", Model: "Trafic", IsActive: true}
	require.NoError(t, db.Create(&second).Error)
	assert.Equal(t, preset, second.ID)
}
