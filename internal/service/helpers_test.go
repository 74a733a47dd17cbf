package service

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-journal-keeper/internal/crypto"
	"github.com/MKhiriev/go-journal-keeper/internal/logger"
	"github.com/MKhiriev/go-journal-keeper/internal/mock"
	"github.com/MKhiriev/go-journal-keeper/internal/store"
	"github.com/MKhiriev/go-journal-keeper/internal/validators"
	"github.com/MKhiriev/go-journal-keeper/models"
)

// fastKeyOpts keep scrypt and argon2 cheap enough for tests.
var fastKeyOpts = []crypto.Option{
	crypto.WithScryptParams(crypto.KDFv1, crypto.ScryptParams{N: 1 << 4, R: 8, P: 1}),
	crypto.WithArgon2Params(crypto.Argon2Params{Time: 1, Memory: 64, Threads: 1, SaltLen: 16, KeyLen: 32}),
}

func fastKeys() crypto.KeyChainService {
	return crypto.NewKeyChainService(fastKeyOpts...)
}

type mockStore struct {
	users   *mock.MockUserRepository
	entries *mock.MockEntryRepository
	terms   *mock.MockTermRepository
	tx      *mock.MockTransactor
	backup  *mock.MockBackuper
}

func newMockStore(ctrl *gomock.Controller) *mockStore {
	return &mockStore{
		users:   mock.NewMockUserRepository(ctrl),
		entries: mock.NewMockEntryRepository(ctrl),
		terms:   mock.NewMockTermRepository(ctrl),
		tx:      mock.NewMockTransactor(ctrl),
		backup:  mock.NewMockBackuper(ctrl),
	}
}

// expectTx lets WithinTx run fn against the mocked repositories.
func (m *mockStore) expectTx() *gomock.Call {
	return m.tx.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context, store.Repositories) error) error {
			return fn(ctx, store.Repositories{Users: m.users, Entries: m.entries, Terms: m.terms})
		},
	)
}

func newTestAuthSvc(t *testing.T, keys crypto.KeyChainService) (*authService, *mockStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	ms := newMockStore(ctrl)

	svc := NewAuthService(ms.users, ms.tx, ms.backup, keys, crypto.NewFieldCodec(),
		validators.NewCredentialsValidator(), nil, NewUserLocker(), logger.Nop()).(*authService)
	return svc, ms
}

func newTestJournalSvc(t *testing.T) (*journalService, *mockStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	ms := newMockStore(ctrl)

	svc := NewJournalService(ms.entries, ms.terms, ms.tx, crypto.NewFieldCodec(), NewUserLocker(), logger.Nop()).(*journalService)
	return svc, ms
}

// storedUser builds the row Register would have written for the given
// secrets, along with the DEK it wraps.
func storedUser(t *testing.T, keys crypto.KeyChainService, id int64, username, password, question, answer string) (models.User, []byte) {
	t.Helper()

	dek, err := keys.GenerateDEK()
	require.NoError(t, err)
	salt, err := keys.GenerateKEKSalt()
	require.NoError(t, err)
	kek, err := keys.DeriveKEK(password, salt, crypto.KDFv1)
	require.NoError(t, err)
	nonce, wrapped, err := keys.WrapDEK(kek, dek, []byte(username))
	require.NoError(t, err)
	pwHash, err := keys.HashSecret(password)
	require.NoError(t, err)

	user := models.User{
		UserID:           id,
		Username:         username,
		PasswordHash:     pwHash,
		KEKSalt:          salt,
		WrappedDEK:       wrapped,
		WrapNonce:        nonce,
		KDFVersion:       crypto.KDFv1,
		SecurityQuestion: question,
	}
	if answer != "" {
		user.SecurityAnswerHash, err = keys.HashSecret(answer)
		require.NoError(t, err)
	}
	return user, dek
}

// newSession opens a session over a fresh random DEK.
func newSession(t *testing.T, userID int64, username string) *models.Session {
	t.Helper()
	return sessionWithEpoch(t, userID, username, []byte(fmt.Sprintf("nonce-%06d", userID)))
}

// userSession opens a session bound to the credential epoch of user.
func userSession(t *testing.T, user models.User) *models.Session {
	t.Helper()
	return sessionWithEpoch(t, user.UserID, user.Username, bytes.Clone(user.WrapNonce))
}

func sessionWithEpoch(t *testing.T, userID int64, username string, epoch []byte) *models.Session {
	t.Helper()
	keys := fastKeys()
	dek, err := keys.GenerateDEK()
	require.NoError(t, err)
	enc, srch, err := keys.DeriveSessionKeys(dek)
	require.NoError(t, err)
	return models.NewSession(userID, username, epoch, dek, enc, srch)
}

// expectEpoch expects the key epoch of s to be locked inside a transaction.
func (m *mockStore) expectEpoch(s *models.Session) *gomock.Call {
	return m.users.EXPECT().LockKeyEpoch(gomock.Any(), s.UserID, s.KeyEpoch()).Return(nil)
}

// sealedEntry encrypts an entry under s the way AddEntry does.
func sealedEntry(t *testing.T, s *models.Session, id int64, title, body string, aux *models.AuxPayload) models.Entry {
	t.Helper()
	e, err := sealEntry(crypto.NewFieldCodec(), s, title, body, aux)
	require.NoError(t, err)
	e.ID = id
	return e
}

func containsBytes(haystack []byte, needle string) bool {
	return bytes.Contains(haystack, []byte(needle))
}
