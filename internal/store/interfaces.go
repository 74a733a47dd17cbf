package store

import (
	"context"
	"database/sql"

	"github.com/MKhiriev/go-journal-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// Querier is satisfied by both *sql.DB and *sql.Tx, so repositories work the
// same inside and outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// UserRepository persists user identity and credential rows.
type UserRepository interface {
	// CreateUser inserts user and returns its id. A taken username yields
	// [ErrUserAlreadyExists].
	CreateUser(ctx context.Context, user models.User) (int64, error)
	// FindUserByUsername returns [ErrNoUserWasFound] when there is no match.
	FindUserByUsername(ctx context.Context, username string) (models.User, error)
	// FindUserByID returns [ErrNoUserWasFound] when there is no match.
	FindUserByID(ctx context.Context, userID int64) (models.User, error)
	// UpdateCredentials replaces every credential column of one user in a
	// single statement.
	UpdateCredentials(ctx context.Context, userID int64, creds models.UserCredentials) error
	// LockKeyEpoch write-locks the user row for the rest of the transaction
	// and returns [ErrStaleKeyEpoch] unless its wrap nonce equals wrapNonce.
	// It must be the first statement of any transaction that writes entries.
	LockKeyEpoch(ctx context.Context, userID int64, wrapNonce []byte) error
}

// EntryRepository persists encrypted entries. Every method is scoped to the
// owning user; a foreign entry behaves like a missing one.
type EntryRepository interface {
	CreateEntry(ctx context.Context, entry models.Entry) (int64, error)
	UpdateEntry(ctx context.Context, entry models.Entry) error
	GetEntry(ctx context.Context, userID, entryID int64) (models.Entry, error)
	// ListEntries returns the user's entries newest first.
	ListEntries(ctx context.Context, userID int64) ([]models.Entry, error)
	DeleteEntry(ctx context.Context, userID, entryID int64) error
	// DeleteAllForUser removes every entry of the user and reports how many.
	DeleteAllForUser(ctx context.Context, userID int64) (int64, error)
}

// TermRepository persists blind-index digests.
type TermRepository interface {
	// ReplaceForEntry deletes the entry's digests and inserts the given set.
	ReplaceForEntry(ctx context.Context, entryID int64, digests [][]byte) error
	DeleteForEntry(ctx context.Context, entryID int64) error
	// FindEntriesWithAll returns ids of the user's entries holding every
	// digest, ordered by id descending.
	FindEntriesWithAll(ctx context.Context, userID int64, digests [][]byte) ([]int64, error)
}

// Repositories bundles the repositories bound to one Querier.
type Repositories struct {
	Users   UserRepository
	Entries EntryRepository
	Terms   TermRepository
}

// Transactor runs fn inside one database transaction. The repositories
// passed to fn are bound to that transaction; fn must not use any other
// handle. A returned error or a panic rolls the transaction back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// Backuper snapshots the whole store and returns the backup location.
type Backuper interface {
	Backup(ctx context.Context) (string, error)
}
