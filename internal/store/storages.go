package store

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/MKhiriev/go-journal-keeper/internal/config"
	"github.com/MKhiriev/go-journal-keeper/internal/logger"
)

// Storages groups everything the service layer needs from persistence:
// repositories bound to the pool, the transaction runner and the backuper.
type Storages struct {
	Repositories
	Tx     Transactor
	Backup Backuper

	db *DB
}

// NewStorages initialises the storage layer using the supplied
// configuration and logger. It performs the following steps:
//  1. Opens a connection for the configured driver (SQLite creates the
//     database file when it does not yet exist).
//  2. Runs pending schema migrations via [DB.Migrate].
//  3. Wires repositories, the transactor and the driver's backuper.
func NewStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Storages, error) {
	log.Info().Str("driver", cfg.Driver).Msg("creating new storages...")

	var (
		db     *DB
		backup Backuper
		err    error
	)

	switch cfg.Driver {
	case config.DriverSQLite:
		db, err = NewConnectSQLite(ctx, cfg.DB, log)
		if err != nil {
			return nil, fmt.Errorf("sqlite connection error: %w", err)
		}
		backup = NewSQLiteBackuper(db, sqliteFilePath(cfg.DB.DSN), cfg.BackupDir)
	case config.DriverPostgres:
		db, err = NewConnectPostgres(ctx, cfg.DB, log)
		if err != nil {
			return nil, fmt.Errorf("postgres connection error: %w", err)
		}
		backup = NewJSONBackuper(db, "journal-pg", cfg.BackupDir)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	log.Debug().Str("backup_dir", filepath.Clean(cfg.BackupDir)).Msg("storages ready")

	return &Storages{
		Repositories: db.Repositories(),
		Tx:           db,
		Backup:       backup,
		db:           db,
	}, nil
}

// Close releases the connection pool.
func (s *Storages) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
