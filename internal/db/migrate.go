package db

import (
	"errors"
	"fmt"
	"log"

	"github.com/ellsondrew-png/inventory-system-tml/internal/config"
	"github.com/ellsondrew-png/inventory-system-tml/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// Register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/gorm"
)

// MigrationsSource is where the versioned SQL migrations live.
var MigrationsSource = "file://migrations"

// AllModels lists every table in dependency order.
func AllModels() []any {
	return []any{
		&models.Permission{}, &models.Profile{}, &models.User{},
		&models.Client{},
		&models.Category{}, &models.Product{}, &models.StockMovement{},
		&models.DocumentSequence{},
		&models.Quotation{}, &models.QuotationItem{},
		&models.Invoice{}, &models.InvoiceItem{},
		&models.DeliveryNote{}, &models.DeliveryNoteItem{},
		&models.CreditNote{}, &models.CreditNoteItem{},
	}
}

// Migrate brings the schema up to date. With sqlMigrations set and a
// Postgres database the SQL files are applied; otherwise AutoMigrate runs.
func Migrate(conn *gorm.DB, cfg config.DatabaseConfig, sqlMigrations bool) error {
	if sqlMigrations && !cfg.IsSQLite() {
		log.Println("[DB] running SQL migrations from", MigrationsSource)
		if err := runSQLMigrations(cfg.MigrationURL()); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		for _, m := range AllModels() {
			if err := conn.AutoMigrate(m); err != nil {
				log.Printf("[DB] AutoMigrate failed model=%T: %v", m, err)
				return fmt.Errorf("automigrate %T: %w", m, err)
			}
		}
	}

	for _, table := range []string{"users", "clients", "products", "invoices", "document_sequences"} {
		if !conn.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

func runSQLMigrations(url string) error {
	m, err := migrate.New(MigrationsSource, url)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
