package service

import (
	"errors"

	"github.com/MKhiriev/go-journal-keeper/internal/crypto"
	"github.com/MKhiriev/go-journal-keeper/internal/store"
)

var (
	// ErrValidation reports missing or malformed caller input.
	ErrValidation = errors.New("invalid data provided")

	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("username already exists")
	ErrEntryNotFound = errors.New("entry not found")

	// ErrInvalidSession is returned for a nil or destroyed session, and for a
	// session whose keys were retired by a password change or reset.
	ErrInvalidSession = errors.New("session is not active")

	// ErrBackupFailed aborts a destructive operation before anything changed.
	ErrBackupFailed = errors.New("backup failed, nothing was changed")
)

// Cryptographic failure kinds, shared with the crypto package so callers can
// match either name.
var (
	ErrAuthenticationFailure = crypto.ErrAuthenticationFailure
	ErrDecryptionFailure     = crypto.ErrDecryptionFailure
)

// mapStoreError translates repository sentinels into service errors. Other
// errors pass through unchanged.
func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrUserAlreadyExists):
		return ErrDuplicateUser
	case errors.Is(err, store.ErrNoUserWasFound):
		return ErrUserNotFound
	case errors.Is(err, store.ErrEntryNotFound):
		return ErrEntryNotFound
	case errors.Is(err, store.ErrStaleKeyEpoch):
		return ErrInvalidSession
	}
	return err
}
