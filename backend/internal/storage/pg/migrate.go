package pg

import (
	"embed"
	"errors"
	"fmt"

	"github.com/agora-forum/agora/shared/logger"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate brings the schema at databaseURL (postgres://...) up to date.
func Migrate(databaseURL string) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	switch err := m.Up(); {
	case err == nil:
		logger.Log.Info("database was migrated", "component", "storage")
	case errors.Is(err, migrate.ErrNoChange):
		logger.Log.Info("database is up-to-date", "component", "storage")
	default:
		return fmt.Errorf("failed to migrate db: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	logger.Log.Info("database version", "component", "storage", "version", version, "dirty", dirty)
	return nil
}
