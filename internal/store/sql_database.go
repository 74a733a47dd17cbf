package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-journal-keeper/internal/logger"
	"github.com/MKhiriev/go-journal-keeper/migrations"
)

// DB wraps the connection pool together with everything that differs
// between backends: driver name, placeholder format and error classifier.
type DB struct {
	*sql.DB
	driver             string
	builder            sq.StatementBuilderType
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

func newDB(conn *sql.DB, driver string, placeholder sq.PlaceholderFormat, classifier ErrorClassificator, log *logger.Logger) *DB {
	return &DB{
		DB:                 conn,
		driver:             driver,
		builder:            sq.StatementBuilder.PlaceholderFormat(placeholder),
		errorClassificator: classifier,
		logger:             log,
	}
}

// Driver returns the database/sql driver name.
func (db *DB) Driver() string {
	return db.driver
}

// Migrate brings the schema up to date.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB, db.driver)
}

// Repositories returns repositories bound to the connection pool.
func (db *DB) Repositories() Repositories {
	return db.repositories(db.DB)
}

func (db *DB) repositories(q Querier) Repositories {
	return Repositories{
		Users:   newUserRepository(q, db.builder, db.errorClassificator),
		Entries: newEntryRepository(q, db.builder),
		Terms:   newTermRepository(q, db.builder),
	}
}

// WithinTx implements [Transactor]. It commits when fn returns nil and
// rolls back on error or panic; a panic is re-raised after the rollback.
func (db *DB) WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) (err error) {
	log := logger.FromContext(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "*DB.WithinTx").Msg("error beginning transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}

		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Err(rbErr).Str("func", "*DB.WithinTx").Msg("error rolling back transaction")
			}
			return
		}

		if cErr := tx.Commit(); cErr != nil {
			log.Err(cErr).Str("func", "*DB.WithinTx").Msg("error committing transaction")
			err = fmt.Errorf("%w: %w", ErrCommitingTransaction, cErr)
		}
	}()

	return fn(ctx, db.repositories(tx))
}
