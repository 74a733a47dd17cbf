package store

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTermRepo(t *testing.T) (*termRepository, sqlmock.Sqlmock) {
	db, mock := newMockDB(t)
	return newTermRepository(db.DB, db.builder), mock
}

func digest(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func TestReplaceForEntry(t *testing.T) {
	t.Run("deletes then inserts", func(t *testing.T) {
		repo, mock := newTestTermRepo(t)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM entry_terms WHERE entry_id = $1")).
			WithArgs(int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO entry_terms (entry_id,term_hash) VALUES ($1,$2),($3,$4) ON CONFLICT DO NOTHING")).
			WithArgs(int64(5), digest(1), int64(5), digest(2)).
			WillReturnResult(sqlmock.NewResult(0, 2))

		err := repo.ReplaceForEntry(context.Background(), 5, [][]byte{digest(1), digest(2)})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty set only deletes", func(t *testing.T) {
		repo, mock := newTestTermRepo(t)

		mock.ExpectExec("DELETE FROM entry_terms").
			WillReturnResult(sqlmock.NewResult(0, 3))

		require.NoError(t, repo.ReplaceForEntry(context.Background(), 5, nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("batches large sets", func(t *testing.T) {
		repo, mock := newTestTermRepo(t)

		digests := make([][]byte, termInsertBatch+1)
		for i := range digests {
			digests[i] = []byte{byte(i), byte(i >> 8)}
		}

		mock.ExpectExec("DELETE FROM entry_terms").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO entry_terms").WillReturnResult(sqlmock.NewResult(0, termInsertBatch))
		mock.ExpectExec("INSERT INTO entry_terms").
			WithArgs(int64(5), digests[termInsertBatch]).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.ReplaceForEntry(context.Background(), 5, digests))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert error", func(t *testing.T) {
		repo, mock := newTestTermRepo(t)

		mock.ExpectExec("DELETE FROM entry_terms").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO entry_terms").WillReturnError(errors.New("fk violation"))

		err := repo.ReplaceForEntry(context.Background(), 5, [][]byte{digest(1)})
		assert.ErrorIs(t, err, ErrExecutingStatement)
	})
}

func TestFindEntriesWithAll(t *testing.T) {
	t.Run("one grouped query", func(t *testing.T) {
		repo, mock := newTestTermRepo(t)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT t.entry_id FROM entry_terms t JOIN entries e ON e.id = t.entry_id WHERE e.user_id = $1 AND t.term_hash IN ($2,$3) GROUP BY t.entry_id HAVING COUNT(DISTINCT t.term_hash) = $4 ORDER BY t.entry_id DESC")).
			WithArgs(int64(7), digest(1), digest(2), 2).
			WillReturnRows(sqlmock.NewRows([]string{"entry_id"}).AddRow(9).AddRow(4))

		ids, err := repo.FindEntriesWithAll(context.Background(), 7, [][]byte{digest(1), digest(2), digest(1)})
		require.NoError(t, err)
		assert.Equal(t, []int64{9, 4}, ids)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no digests skips the database", func(t *testing.T) {
		repo, mock := newTestTermRepo(t)

		ids, err := repo.FindEntriesWithAll(context.Background(), 7, nil)
		require.NoError(t, err)
		assert.Equal(t, []int64{}, ids)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		repo, mock := newTestTermRepo(t)
		mock.ExpectQuery("SELECT t.entry_id").WillReturnError(errors.New("boom"))

		_, err := repo.FindEntriesWithAll(context.Background(), 7, [][]byte{digest(1)})
		assert.ErrorIs(t, err, ErrExecutingQuery)
	})
}

func TestUniqueDigests(t *testing.T) {
	got := uniqueDigests([][]byte{digest(1), digest(2), digest(1)})
	assert.Equal(t, [][]byte{digest(1), digest(2)}, got)
}
