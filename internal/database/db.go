package database

import (
	"log"

	"backend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	// TranslateError maps driver duplicate-key errors to gorm.ErrDuplicatedKey,
	// which the document pipeline relies on for its one-to-one guarantees.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
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
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}
