// Package migration applies the versioned SQL schema in migrations/ with
// golang-migrate. SQLite databases are built with AutoMigrate instead.
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// Migrator runs schema migrations against PostgreSQL
type Migrator struct {
	migrate *migrate.Migrate
	logger  *zap.Logger
}

// Status describes the schema version of a database
type Status struct {
	Version uint
	Dirty   bool
}

// New creates a Migrator reading migrations from a directory on disk
func New(db *sql.DB, migrationsPath string, logger *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return &Migrator{migrate: m, logger: logger}, nil
}

// NewFromFS creates a Migrator reading migrations from fsys, typically the
// set embedded in the binary
func NewFromFS(db *sql.DB, fsys fs.FS, logger *zap.Logger) (*Migrator, error) {
	source, err := iofs.New(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return &Migrator{migrate: m, logger: logger}, nil
}

// Up applies every pending migration
func (m *Migrator) Up() error {
	m.logger.Info("Running migrations up")
	return m.run("up", m.migrate.Up)
}

// Down rolls back every migration
func (m *Migrator) Down() error {
	m.logger.Info("Running migrations down")
	return m.run("down", m.migrate.Down)
}

// Steps applies n migrations, rolling back when n is negative
func (m *Migrator) Steps(n int) error {
	m.logger.Info("Running migration steps", zap.Int("steps", n))
	return m.run("steps", func() error { return m.migrate.Steps(n) })
}

// GoTo migrates up or down to version
func (m *Migrator) GoTo(version uint) error {
	m.logger.Info("Migrating to version", zap.Uint("target_version", version))
	return m.run("goto", func() error { return m.migrate.Migrate(version) })
}

func (m *Migrator) run(op string, fn func() error) error {
	if err := fn(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info("No migrations to apply", zap.String("op", op))
			return nil
		}
		return fmt.Errorf("migration %s failed: %w", op, err)
	}
	status, err := m.Version()
	if err != nil {
		return err
	}
	m.logger.Info("Migrations completed",
		zap.String("op", op),
		zap.Uint("version", status.Version),
		zap.Bool("dirty", status.Dirty),
	)
	return nil
}

// Version returns the applied schema version. A fresh database is version 0.
func (m *Migrator) Version() (Status, error) {
	version, dirty, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("failed to get migration version: %w", err)
	}
	return Status{Version: version, Dirty: dirty}, nil
}

// Force records version as applied without running it. It exists to clear
// the dirty flag after a failed migration was fixed by hand.
func (m *Migrator) Force(version int) error {
	m.logger.Warn("Forcing migration version", zap.Int("version", version))
	if err := m.migrate.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Close releases the source and database handles
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	return errors.Join(sourceErr, dbErr)
}
