package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithinTx_Commit(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM entries").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := db.WithinTx(context.Background(), func(ctx context.Context, repos Repositories) error {
		return repos.Entries.DeleteEntry(ctx, 7, 42)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	errStop := errors.New("stop")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := db.WithinTx(context.Background(), func(ctx context.Context, repos Repositories) error {
		return errStop
	})
	assert.ErrorIs(t, err, errStop)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = db.WithinTx(context.Background(), func(ctx context.Context, repos Repositories) error {
			panic("kaboom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_BeginError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin().WillReturnError(errors.New("no connection"))

	called := false
	err := db.WithinTx(context.Background(), func(ctx context.Context, repos Repositories) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrBeginningTransaction)
	assert.False(t, called)
}

func TestWithinTx_CommitError(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("disk I/O error"))

	err := db.WithinTx(context.Background(), func(ctx context.Context, repos Repositories) error {
		return nil
	})
	assert.ErrorIs(t, err, ErrCommitingTransaction)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "journal.db?_foreign_keys=on", sqliteDSN(configDB("journal.db", 0)))
	assert.Equal(t, "file:j.db?cache=shared&_busy_timeout=2000&_foreign_keys=on",
		sqliteDSN(configDB("file:j.db?cache=shared", 2000)))
	assert.Equal(t, "/tmp/j.db", sqliteFilePath("file:/tmp/j.db?mode=rwc"))
}
