package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-journal-keeper/internal/logger"
	"github.com/MKhiriev/go-journal-keeper/models"
)

// termInsertBatch keeps multi-row inserts under SQLite's bound-parameter
// limit.
const termInsertBatch = 400

type termRepository struct {
	q       Querier
	builder sq.StatementBuilderType
}

func newTermRepository(q Querier, builder sq.StatementBuilderType) *termRepository {
	return &termRepository{q: q, builder: builder}
}

// ReplaceForEntry deletes the entry's digests and inserts digests. Callers
// run it in the transaction of the entry write, so readers see either the
// old or the new set.
func (r *termRepository) ReplaceForEntry(ctx context.Context, entryID int64, digests [][]byte) error {
	if err := r.DeleteForEntry(ctx, entryID); err != nil {
		return err
	}

	log := logger.FromContext(ctx)
	table := models.TermHash{}.TableName()

	for start := 0; start < len(digests); start += termInsertBatch {
		end := min(start+termInsertBatch, len(digests))

		insert := r.builder.
			Insert(table).
			Columns("entry_id", "term_hash").
			Suffix("ON CONFLICT DO NOTHING")
		for _, d := range digests[start:end] {
			insert = insert.Values(entryID, d)
		}

		query, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}

		if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
			log.Err(err).
				Str("func", "*termRepository.ReplaceForEntry").
				Int64("entry_id", entryID).
				Int("terms", end-start).
				Msg("error inserting term digests")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
	}

	return nil
}

func (r *termRepository) DeleteForEntry(ctx context.Context, entryID int64) error {
	log := logger.FromContext(ctx)

	query, args, err := r.builder.
		Delete(models.TermHash{}.TableName()).
		Where(sq.Eq{"entry_id": entryID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "*termRepository.DeleteForEntry").
			Int64("entry_id", entryID).
			Msg("error deleting term digests")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

// FindEntriesWithAll answers an AND query in one statement: an entry
// qualifies when it holds as many distinct matching digests as were asked
// for.
func (r *termRepository) FindEntriesWithAll(ctx context.Context, userID int64, digests [][]byte) ([]int64, error) {
	log := logger.FromContext(ctx)

	digests = uniqueDigests(digests)
	if len(digests) == 0 {
		return []int64{}, nil
	}

	// digests is [][]byte: squirrel expands the outer slice into IN (...)
	// and binds every digest as one argument.
	query, args, err := r.builder.
		Select("t.entry_id").
		From(models.TermHash{}.TableName()+" t").
		Join(models.Entry{}.TableName()+" e ON e.id = t.entry_id").
		Where(sq.Eq{"e.user_id": userID, "t.term_hash": digests}).
		GroupBy("t.entry_id").
		Having("COUNT(DISTINCT t.term_hash) = ?", len(digests)).
		OrderBy("t.entry_id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "*termRepository.FindEntriesWithAll").
			Int64("user_id", userID).
			Msg("failed to execute search query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return ids, nil
}

func uniqueDigests(digests [][]byte) [][]byte {
	seen := make(map[string]struct{}, len(digests))
	out := make([][]byte, 0, len(digests))
	for _, d := range digests {
		if _, ok := seen[string(d)]; ok {
			continue
		}
		seen[string(d)] = struct{}{}
		out = append(out, d)
	}
	return out
}
