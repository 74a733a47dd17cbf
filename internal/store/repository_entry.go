package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-journal-keeper/internal/logger"
	"github.com/MKhiriev/go-journal-keeper/models"
)

var entryColumns = []string{
	"id",
	"user_id",
	"created_at",
	"updated_at",
	"title_nonce",
	"title_ct",
	"body_nonce",
	"body_ct",
	"aux_nonce",
	"aux_ct",
	"aux_format",
}

type entryRepository struct {
	q       Querier
	builder sq.StatementBuilderType
}

func newEntryRepository(q Querier, builder sq.StatementBuilderType) *entryRepository {
	return &entryRepository{q: q, builder: builder}
}

// auxColumns returns the nonce and ciphertext of an optional field, NULL
// when absent.
func auxColumns(aux *models.EntryField) (any, any) {
	if aux == nil {
		return nil, nil
	}
	return aux.Nonce, aux.Ciphertext
}

func (r *entryRepository) CreateEntry(ctx context.Context, entry models.Entry) (int64, error) {
	log := logger.FromContext(ctx)

	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = entry.CreatedAt
	}
	auxNonce, auxCT := auxColumns(entry.Aux)

	query, args, err := r.builder.
		Insert(entry.TableName()).
		Columns(entryColumns[1:]...).
		Values(
			entry.UserID,
			entry.CreatedAt,
			entry.UpdatedAt,
			entry.Title.Nonce,
			entry.Title.Ciphertext,
			entry.Body.Nonce,
			entry.Body.Ciphertext,
			auxNonce,
			auxCT,
			entry.AuxFormat,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var id int64
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		log.Err(err).
			Str("func", "*entryRepository.CreateEntry").
			Int64("user_id", entry.UserID).
			Msg("error inserting entry")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return id, nil
}

// UpdateEntry overwrites every encrypted column of the entry. A nil Aux
// clears the stored auxiliary payload.
func (r *entryRepository) UpdateEntry(ctx context.Context, entry models.Entry) error {
	log := logger.FromContext(ctx)

	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now().UTC()
	}
	auxNonce, auxCT := auxColumns(entry.Aux)

	query, args, err := r.builder.
		Update(entry.TableName()).
		Set("updated_at", entry.UpdatedAt).
		Set("title_nonce", entry.Title.Nonce).
		Set("title_ct", entry.Title.Ciphertext).
		Set("body_nonce", entry.Body.Nonce).
		Set("body_ct", entry.Body.Ciphertext).
		Set("aux_nonce", auxNonce).
		Set("aux_ct", auxCT).
		Set("aux_format", entry.AuxFormat).
		Where(sq.Eq{"id": entry.ID, "user_id": entry.UserID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "*entryRepository.UpdateEntry").
			Int64("entry_id", entry.ID).
			Msg("error updating entry")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return expectAffected(res, ErrEntryNotFound)
}

func (r *entryRepository) GetEntry(ctx context.Context, userID, entryID int64) (models.Entry, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.builder.
		Select(entryColumns...).
		From(models.Entry{}.TableName()).
		Where(sq.Eq{"id": entryID, "user_id": userID}).
		ToSql()
	if err != nil {
		return models.Entry{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	entry, err := scanEntry(r.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Entry{}, ErrEntryNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "*entryRepository.GetEntry").
			Int64("entry_id", entryID).
			Msg("error scanning entry")
		return models.Entry{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return entry, nil
}

func (r *entryRepository) ListEntries(ctx context.Context, userID int64) ([]models.Entry, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.builder.
		Select(entryColumns...).
		From(models.Entry{}.TableName()).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "*entryRepository.ListEntries").
			Int64("user_id", userID).
			Msg("failed to execute query for listing entries")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	entries := make([]models.Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			log.Err(err).
				Str("func", "*entryRepository.ListEntries").
				Int64("user_id", userID).
				Msg("failed to scan entry row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return entries, nil
}

func (r *entryRepository) DeleteEntry(ctx context.Context, userID, entryID int64) error {
	log := logger.FromContext(ctx)

	query, args, err := r.builder.
		Delete(models.Entry{}.TableName()).
		Where(sq.Eq{"id": entryID, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "*entryRepository.DeleteEntry").
			Int64("entry_id", entryID).
			Msg("error deleting entry")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return expectAffected(res, ErrEntryNotFound)
}

func (r *entryRepository) DeleteAllForUser(ctx context.Context, userID int64) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.builder.
		Delete(models.Entry{}.TableName()).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "*entryRepository.DeleteAllForUser").
			Int64("user_id", userID).
			Msg("error deleting entries")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (models.Entry, error) {
	var (
		e               models.Entry
		auxNonce, auxCT []byte
	)

	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.CreatedAt,
		&e.UpdatedAt,
		&e.Title.Nonce,
		&e.Title.Ciphertext,
		&e.Body.Nonce,
		&e.Body.Ciphertext,
		&auxNonce,
		&auxCT,
		&e.AuxFormat,
	)
	if err != nil {
		return models.Entry{}, err
	}

	if auxNonce != nil || auxCT != nil {
		e.Aux = &models.EntryField{Nonce: auxNonce, Ciphertext: auxCT}
	}
	return e, nil
}
