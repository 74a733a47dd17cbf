// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/creachadair/atomicfile"

	"github.com/MKhiriev/go-journal-keeper/internal/config"
	"github.com/MKhiriev/go-journal-keeper/internal/logger"
	"github.com/MKhiriev/go-journal-keeper/internal/utils"
)

const backupTimeLayout = "20060102-150405"

// backupName renders <base>.bak-<YYYYmmdd-HHMMSS>-<rand8>; the random
// suffix keeps two backups taken in the same second apart.
func backupName(base string, now time.Time, ids *utils.UUIDGenerator) string {
	return fmt.Sprintf("%s.bak-%s-%s", base, now.Format(backupTimeLayout), ids.Short())
}

// sqliteBackuper copies the live database with VACUUM INTO, which produces a
// consistent, compacted snapshot without blocking on a file copy.
type sqliteBackuper struct {
	db     *DB
	dir    string
	dbPath string
	ids    *utils.UUIDGenerator
	now    func() time.Time
}

// NewSQLiteBackuper returns a [Backuper] writing snapshots of the database
// file dbPath into dir.
func NewSQLiteBackuper(db *DB, dbPath, dir string) Backuper {
	return &sqliteBackuper{
		db:     db,
		dir:    dir,
		dbPath: dbPath,
		ids:    utils.NewUUIDGenerator(),
		now:    time.Now,
	}
}

// Backup implements [Backuper]. It must not be called inside a transaction.
func (b *sqliteBackuper) Backup(ctx context.Context) (string, error) {
	log := logger.FromContext(ctx)

	if err := os.MkdirAll(b.dir, 0o700); err != nil {
		return "", fmt.Errorf("%w: create backup dir: %w", ErrBackup, err)
	}

	path := filepath.Join(b.dir, backupName(filepath.Base(b.dbPath), b.now(), b.ids))
	if _, err := b.db.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		log.Err(err).Str("func", "*sqliteBackuper.Backup").Str("path", path).Msg("error writing backup")
		return "", fmt.Errorf("%w: %w", ErrBackup, err)
	}

	log.Info().Str("func", "*sqliteBackuper.Backup").Str("path", path).Msg("store backed up")
	return path, nil
}

// backupTables are dumped in dependency order so a restore can replay them.
var backupTables = []string{"users", "entries", "entry_terms"}

// jsonDump is the file format of a PostgreSQL backup.
type jsonDump struct {
	CreatedAt time.Time                   `json:"created_at"`
	Tables    map[string][]map[string]any `json:"tables"`
}

// jsonBackuper dumps every journal table to a JSON file. It serves backends
// where the database is not a local file. The dump runs in one read-only
// transaction and the file is replaced atomically.
type jsonBackuper struct {
	db   *DB
	dir  string
	base string
	ids  *utils.UUIDGenerator
	now  func() time.Time
}

// NewJSONBackuper returns a [Backuper] writing <base>.bak-... JSON dumps
// into dir.
func NewJSONBackuper(db *DB, base, dir string) Backuper {
	return &jsonBackuper{
		db:   db,
		dir:  dir,
		base: base,
		ids:  utils.NewUUIDGenerator(),
		now:  time.Now,
	}
}

// Backup implements [Backuper].
func (b *jsonBackuper) Backup(ctx context.Context) (string, error) {
	log := logger.FromContext(ctx)

	dump, err := b.dump(ctx)
	if err != nil {
		log.Err(err).Str("func", "*jsonBackuper.Backup").Msg("error dumping tables")
		return "", fmt.Errorf("%w: %w", ErrBackup, err)
	}

	if err := os.MkdirAll(b.dir, 0o700); err != nil {
		return "", fmt.Errorf("%w: create backup dir: %w", ErrBackup, err)
	}

	path := filepath.Join(b.dir, backupName(b.base, dump.CreatedAt, b.ids)+".json")
	err = atomicfile.Tx(path, 0o600, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(dump)
	})
	if err != nil {
		log.Err(err).Str("func", "*jsonBackuper.Backup").Str("path", path).Msg("error writing backup")
		return "", fmt.Errorf("%w: %w", ErrBackup, err)
	}

	log.Info().Str("func", "*jsonBackuper.Backup").Str("path", path).Msg("store backed up")
	return path, nil
}

func (b *jsonBackuper) dump(ctx context.Context) (jsonDump, error) {
	var opts *sql.TxOptions
	if b.db.driver == config.DriverPostgres {
		opts = &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead}
	}

	tx, err := b.db.BeginTx(ctx, opts)
	if err != nil {
		return jsonDump{}, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer func() { _ = tx.Rollback() }()

	dump := jsonDump{
		CreatedAt: b.now().UTC(),
		Tables:    make(map[string][]map[string]any, len(backupTables)),
	}

	for _, table := range backupTables {
		rows, err := dumpTable(ctx, tx, b.db.builder, table)
		if err != nil {
			return jsonDump{}, fmt.Errorf("dump %s: %w", table, err)
		}
		dump.Tables[table] = rows
	}

	return dump, nil
}
