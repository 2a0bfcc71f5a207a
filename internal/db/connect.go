package db

import (
	"fmt"
	"log"
	"time"

	"github.com/ellsondrew-png/inventory-system-tml/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	connectAttempts = 10
	connectBackoff  = 2 * time.Second
)

// Connect opens the configured database, retrying while Postgres starts.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	}

	var dialector gorm.Dialector
	var shown string
	if cfg.IsSQLite() {
		dialector = sqlite.Open(cfg.SQLitePath)
		shown = "sqlite:" + cfg.SQLitePath
	} else {
		dsn := NormalizeDSN(cfg.DSN())
		if dsn == "" {
			return nil, fmt.Errorf("empty database DSN, check DATABASE_URL or DB_* settings")
		}
		dialector = postgres.Open(dsn)
		shown = MaskDSN(dsn)
	}

	var conn *gorm.DB
	var err error
	for i := 1; i <= connectAttempts; i++ {
		conn, err = gorm.Open(dialector, gcfg)
		if err == nil {
			break
		}
		log.Printf("[DB] connect attempt %d/%d failed: %v", i, connectAttempts, err)
		time.Sleep(connectBackoff)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}

	if err := conn.Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("db ping failed: %w", err)
	}
	log.Println("[DB] Using DSN:", shown)
	return conn, nil
}
