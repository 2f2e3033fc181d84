package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"club-points-ledger/internal/models"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationsFS embed.FS

// newMigrator opens a dedicated connection for golang-migrate. Closing the
// migrator closes that connection, never the service pool.
func newMigrator(cfg models.DatabaseConfig) (*migrate.Migrate, error) {
	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	dsn, err := d.dsn(cfg)
	if err != nil {
		return nil, err
	}

	src, err := iofs.New(migrationsFS, d.migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("unable to load embedded migrations: %w", err)
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open migration connection: %w", err)
	}

	var driver migratedb.Driver
	switch d.driver {
	case DriverSQLite:
		driver, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	case DriverPostgres:
		driver, err = migratepg.WithInstance(db, &migratepg.Config{})
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to init migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, d.driver, driver)
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("init migrator failed: %w", err)
	}
	return m, nil
}

func closeMigrator(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil || dbErr != nil {
		zap.L().Warn("Failed to close migrator", zap.NamedError("source_error", srcErr), zap.NamedError("db_error", dbErr))
	}
}

// MigrateUp applies all pending up migrations.
func MigrateUp(cfg models.DatabaseConfig) error {
	m, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			zap.L().Debug("Schema already up to date")
			return nil
		}
		return fmt.Errorf("migrate up failed: %w", err)
	}
	zap.L().Info("Schema migrated")
	return nil
}

// MigrateDown rolls back the given number of migrations.
func MigrateDown(cfg models.DatabaseConfig, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}
	m, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down failed: %w", err)
	}
	return nil
}

// MigrationVersion reports the applied schema version.
func MigrationVersion(cfg models.DatabaseConfig) (version uint, dirty bool, err error) {
	m, err := newMigrator(cfg)
	if err != nil {
		return 0, false, err
	}
	defer closeMigrator(m)

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}
