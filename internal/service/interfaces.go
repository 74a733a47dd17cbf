package service

import (
	"context"

	"github.com/MKhiriev/go-journal-keeper/models"
)

// AuthService manages accounts and the key epoch of each account. It is the
// only place a [models.Session] comes from.
type AuthService interface {
	// Register creates an account with a fresh random DEK wrapped under the
	// password. All four arguments are required.
	Register(ctx context.Context, username, password, question, answer string) error

	// Login verifies the password, unwraps the DEK and returns a session
	// holding the derived keys.
	Login(ctx context.Context, username, password string) (*models.Session, error)

	// ChangePassword moves the account to a brand-new DEK. Every entry is
	// re-encrypted and re-indexed and the credentials are swapped in one
	// transaction, after a backup. On success s is destroyed and the
	// session of the new key epoch is returned; on failure nothing changed.
	ChangePassword(ctx context.Context, s *models.Session, currentPassword, newPassword string) (*models.Session, error)

	// ResetPassword verifies the security answer, backs the store up, deletes
	// every entry of the user and installs new credentials.
	ResetPassword(ctx context.Context, username, answer, newPassword string) error

	// GetSecurityQuestion returns the question that guards ResetPassword.
	GetSecurityQuestion(ctx context.Context, username string) (string, error)

	// Logout destroys the session keys.
	Logout(s *models.Session)
}

// JournalService stores and searches entries on behalf of a session. Every
// method is scoped to the session owner; foreign entries behave like missing
// ones.
type JournalService interface {
	AddEntry(ctx context.Context, s *models.Session, title, body string, aux *models.AuxPayload) (int64, error)

	// UpdateEntry replaces title and body. A nil aux keeps the stored
	// auxiliary payload and an empty one removes it. Every field is sealed
	// again with a fresh nonce.
	UpdateEntry(ctx context.Context, s *models.Session, entryID int64, title, body string, aux *models.AuxPayload) error

	DeleteEntry(ctx context.Context, s *models.Session, entryID int64) error

	// ListEntries returns id, creation time and title of every entry, newest
	// first.
	ListEntries(ctx context.Context, s *models.Session) ([]models.EntryHeader, error)

	GetEntry(ctx context.Context, s *models.Session, entryID int64) (models.DecipheredEntry, error)

	// Search returns ids of the entries containing every token of query,
	// newest first. A query without tokens matches nothing.
	Search(ctx context.Context, s *models.Session, query string) ([]int64, error)

	// SearchEntries is Search followed by decrypting the matching headers.
	SearchEntries(ctx context.Context, s *models.Session, query string) ([]models.EntryHeader, error)
}

// AppInfoService exposes build metadata.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
	GetBuildInfo(ctx context.Context) models.AppBuildInfo
}
