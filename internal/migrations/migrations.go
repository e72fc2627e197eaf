// Package migrations applies the SQL files under MIGRATIONS_PATH.
package migrations

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"nocookies/internal/config"
)

// Run migrates the database up to the newest version. It is a no-op when
// persistence is not configured.
func Run(cfg *config.Cfg, log *zap.Logger) error {
	if !cfg.Database.Enabled() {
		log.Debug("database not configured, skipping migrations")
		return nil
	}
	return apply(cfg, log, func(m *migrate.Migrate) error { return m.Up() })
}

// Down rolls back every migration.
func Down(cfg *config.Cfg, log *zap.Logger) error {
	if !cfg.Database.Enabled() {
		return errors.New("database not configured")
	}
	return apply(cfg, log, func(m *migrate.Migrate) error { return m.Down() })
}

func apply(cfg *config.Cfg, log *zap.Logger, step func(*migrate.Migrate) error) error {
	m, err := migrate.New(cfg.Migrations.Path, cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	m.Log = &migrateLogger{log: log.Named("migrate")}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			log.Warn("closing migrate", zap.NamedError("source", srcErr), zap.NamedError("database", dbErr))
		}
	}()

	if err := step(m); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("migrations up to date")
			return nil
		}
		return err
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return err
	}
	log.Info("migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

type migrateLogger struct {
	log *zap.Logger
}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	l.log.Sugar().Debugf(format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return l.log.Core().Enabled(zap.DebugLevel)
}
