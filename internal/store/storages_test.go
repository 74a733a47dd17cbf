package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-journal-keeper/internal/config"
	"github.com/MKhiriev/go-journal-keeper/internal/logger"
	"github.com/MKhiriev/go-journal-keeper/models"
)

func configDB(dsn string, busyMillis int) config.DB {
	return config.DB{DSN: dsn, BusyTimeout: time.Duration(busyMillis) * time.Millisecond}
}

// newSQLiteStorages opens a fresh migrated database file under t.TempDir().
func newSQLiteStorages(t *testing.T) (*Storages, string) {
	t.Helper()
	dir := t.TempDir()

	s, err := NewStorages(context.Background(), config.Storage{
		Driver:    config.DriverSQLite,
		DB:        configDB(filepath.Join(dir, "data", "journal.db"), 1000),
		BackupDir: filepath.Join(dir, "backups"),
	}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s, dir
}

func createUser(t *testing.T, s *Storages, name string) int64 {
	t.Helper()
	u := testUser()
	u.Username = name
	id, err := s.Users.CreateUser(context.Background(), u)
	require.NoError(t, err)
	return id
}

func createEntry(t *testing.T, s *Storages, userID int64, digests ...[]byte) int64 {
	t.Helper()
	ctx := context.Background()

	var id int64
	err := s.Tx.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		e := testEntry()
		e.UserID = userID
		var err error
		if id, err = repos.Entries.CreateEntry(ctx, e); err != nil {
			return err
		}
		return repos.Terms.ReplaceForEntry(ctx, id, digests)
	})
	require.NoError(t, err)
	return id
}

func TestNewStorages_UnsupportedDriver(t *testing.T) {
	_, err := NewStorages(context.Background(), config.Storage{Driver: "mysql"}, logger.Nop())
	assert.Error(t, err)
}

func TestSQLite_Users(t *testing.T) {
	s, _ := newSQLiteStorages(t)
	ctx := context.Background()

	id := createUser(t, s, "alice")

	_, err := s.Users.CreateUser(ctx, testUser())
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	u, err := s.Users.FindUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, id, u.UserID)
	assert.False(t, u.CreatedAt.IsZero())

	_, err = s.Users.FindUserByUsername(ctx, "Alice")
	assert.ErrorIs(t, err, ErrNoUserWasFound)

	creds := models.UserCredentials{
		PasswordHash: "argon2id$new",
		KEKSalt:      []byte("another-salt-16b"),
		WrappedDEK:   []byte("rewrapped"),
		WrapNonce:    []byte("fresh-nonce1"),
		KDFVersion:   1,
	}
	require.NoError(t, s.Users.UpdateCredentials(ctx, id, creds))

	u, err = s.Users.FindUserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, creds, u.Credentials())
	assert.Equal(t, "pet name?", u.SecurityQuestion)
}

func TestSQLite_EntriesAndSearch(t *testing.T) {
	s, _ := newSQLiteStorages(t)
	ctx := context.Background()

	alice := createUser(t, s, "alice")
	bob := createUser(t, s, "bob")

	first := createEntry(t, s, alice, digest(1), digest(2))
	second := createEntry(t, s, alice, digest(1), digest(2), digest(3))
	foreign := createEntry(t, s, bob, digest(1), digest(2))

	ids, err := s.Terms.FindEntriesWithAll(ctx, alice, [][]byte{digest(1), digest(2)})
	require.NoError(t, err)
	assert.Equal(t, []int64{second, first}, ids)

	ids, err = s.Terms.FindEntriesWithAll(ctx, alice, [][]byte{digest(3), digest(1)})
	require.NoError(t, err)
	assert.Equal(t, []int64{second}, ids)

	ids, err = s.Terms.FindEntriesWithAll(ctx, alice, [][]byte{digest(9)})
	require.NoError(t, err)
	assert.Empty(t, ids)

	list, err := s.Entries.ListEntries(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second, list[0].ID)

	_, err = s.Entries.GetEntry(ctx, alice, foreign)
	assert.ErrorIs(t, err, ErrEntryNotFound)
	assert.ErrorIs(t, s.Entries.DeleteEntry(ctx, alice, foreign), ErrEntryNotFound)

	// deleting the entry cascades to its digests
	require.NoError(t, s.Entries.DeleteEntry(ctx, alice, second))
	ids, err = s.Terms.FindEntriesWithAll(ctx, alice, [][]byte{digest(3)})
	require.NoError(t, err)
	assert.Empty(t, ids)

	n, err := s.Entries.DeleteAllForUser(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	ids, err = s.Terms.FindEntriesWithAll(ctx, bob, [][]byte{digest(1)})
	require.NoError(t, err)
	assert.Equal(t, []int64{foreign}, ids)
}

func TestSQLite_UpdateEntryAux(t *testing.T) {
	s, _ := newSQLiteStorages(t)
	ctx := context.Background()

	alice := createUser(t, s, "alice")
	id := createEntry(t, s, alice)

	e, err := s.Entries.GetEntry(ctx, alice, id)
	require.NoError(t, err)
	assert.Nil(t, e.Aux)

	e.Aux = &models.EntryField{Nonce: []byte("aux-nonce-12"), Ciphertext: []byte("aux")}
	e.AuxFormat = "map/png"
	e.UpdatedAt = time.Time{}
	require.NoError(t, s.Entries.UpdateEntry(ctx, e))

	got, err := s.Entries.GetEntry(ctx, alice, id)
	require.NoError(t, err)
	require.NotNil(t, got.Aux)
	assert.Equal(t, []byte("aux"), got.Aux.Ciphertext)
	assert.Equal(t, "map/png", got.AuxFormat)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestSQLite_WithinTxRollsBack(t *testing.T) {
	s, _ := newSQLiteStorages(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")

	err := s.Tx.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		e := testEntry()
		e.UserID = alice
		id, err := repos.Entries.CreateEntry(ctx, e)
		if err != nil {
			return err
		}
		if err := repos.Terms.ReplaceForEntry(ctx, id, [][]byte{digest(1)}); err != nil {
			return err
		}
		return repos.Users.UpdateCredentials(ctx, alice+100, models.UserCredentials{})
	})
	assert.ErrorIs(t, err, ErrNoUserWasFound)

	list, err := s.Entries.ListEntries(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, list)

	ids, err := s.Terms.FindEntriesWithAll(ctx, alice, [][]byte{digest(1)})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSQLite_Backup(t *testing.T) {
	s, dir := newSQLiteStorages(t)
	ctx := context.Background()
	createUser(t, s, "alice")

	path, err := s.Backup.Backup(ctx)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "backups"), filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "journal.db.bak-"))

	// the snapshot is a complete database of its own
	snap, err := NewStorages(ctx, config.Storage{
		Driver:    config.DriverSQLite,
		DB:        configDB(path, 0),
		BackupDir: t.TempDir(),
	}, logger.Nop())
	require.NoError(t, err)
	defer snap.Close()

	u, err := snap.Users.FindUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	second, err := s.Backup.Backup(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, path, second)
}

func TestJSONBackuper(t *testing.T) {
	s, dir := newSQLiteStorages(t)
	ctx := context.Background()

	alice := createUser(t, s, "alice")
	createEntry(t, s, alice, digest(1))

	out := filepath.Join(dir, "json")
	path, err := NewJSONBackuper(s.db, "journal", out).Backup(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".json"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var dump struct {
		Tables map[string][]map[string]any `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(raw, &dump))
	assert.Len(t, dump.Tables["users"], 1)
	assert.Len(t, dump.Tables["entries"], 1)
	assert.Len(t, dump.Tables["entry_terms"], 1)
	assert.Equal(t, "alice", dump.Tables["users"][0]["username"])

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
