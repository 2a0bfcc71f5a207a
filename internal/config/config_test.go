package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "DATABASE_URL", "IMAGE_STORE", "MIGRATIONS", "LOGIN_BURST"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Server.Port != "8080" {
		t.Errorf("port: got %s", cfg.Server.Port)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.IsSQLite() {
		t.Errorf("driver: got %s", cfg.Database.Driver)
	}
	if cfg.Storage.Backend != "local" || cfg.Storage.MediaRoot != "media" {
		t.Errorf("storage: got %+v", cfg.Storage)
	}
	if cfg.App.Migrations {
		t.Error("migrations should default to off")
	}
	if cfg.Auth.LoginBurst != 5 {
		t.Errorf("login burst: got %d", cfg.Auth.LoginBurst)
	}
}

func TestDatabaseURLOverridesDiscreteSettings(t *testing.T) {
	t.Setenv("DATABASE_URL", `"postgres://u:p@db:5432/ledger?sslmode=disable"`)
	t.Setenv("DB_HOST", "ignored")
	cfg := Load()
	want := "postgres://u:p@db:5432/ledger?sslmode=disable"
	if cfg.Database.DSN() != want || cfg.Database.MigrationURL() != want {
		t.Fatalf("expected URL to win, got %q / %q", cfg.Database.DSN(), cfg.Database.MigrationURL())
	}
}

func TestEnvParsing(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("DB_DEBUG", "YES")
	t.Setenv("DB_DRIVER", "SQLite")
	cfg := Load()
	if cfg.Database.Port != 5432 {
		t.Errorf("invalid int should fall back to default, got %d", cfg.Database.Port)
	}
	if !cfg.Database.Debug {
		t.Error("YES should parse as true")
	}
	if !cfg.Database.IsSQLite() {
		t.Error("driver should be lowercased")
	}
}
