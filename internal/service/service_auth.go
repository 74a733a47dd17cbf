package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-journal-keeper/internal/crypto"
	"github.com/MKhiriev/go-journal-keeper/internal/logger"
	"github.com/MKhiriev/go-journal-keeper/internal/search"
	"github.com/MKhiriev/go-journal-keeper/internal/store"
	"github.com/MKhiriev/go-journal-keeper/internal/validators"
	"github.com/MKhiriev/go-journal-keeper/internal/workers"
	"github.com/MKhiriev/go-journal-keeper/models"
)

// authService is the concrete implementation of AuthService.
//
// Slow derivations (scrypt, argon2id) run on the KDF pool; everything that
// touches more than one row runs inside a single store transaction.
type authService struct {
	users  store.UserRepository
	tx     store.Transactor
	backup store.Backuper

	keys  crypto.KeyChainService
	codec crypto.FieldCodec

	validator validators.Validator
	pool      *workers.KDFPool
	locker    *UserLocker
	logger    *logger.Logger
}

// NewAuthService wires an AuthService. pool may be nil, in which case
// derivations run on the calling goroutine.
func NewAuthService(
	users store.UserRepository,
	tx store.Transactor,
	backup store.Backuper,
	keys crypto.KeyChainService,
	codec crypto.FieldCodec,
	validator validators.Validator,
	pool *workers.KDFPool,
	locker *UserLocker,
	log *logger.Logger,
) AuthService {
	if log == nil {
		log = logger.Nop()
	}
	return &authService{
		users:     users,
		tx:        tx,
		backup:    backup,
		keys:      keys,
		codec:     codec,
		validator: validator,
		pool:      pool,
		locker:    locker,
		logger:    log,
	}
}

// Register creates a new account.
//
// Returns:
//   - ErrValidation if any argument is blank.
//   - ErrDuplicateUser if the username is taken.
func (a *authService) Register(ctx context.Context, username, password, question, answer string) error {
	ctx, log := logger.WithOperation(ctx, a.logger, "auth.Register")

	req := models.RegisterRequest{
		Username:         username,
		Password:         password,
		SecurityQuestion: question,
		SecurityAnswer:   answer,
	}
	if err := a.validator.Validate(ctx, req); err != nil {
		log.Error().Err(err).Str("username", username).Msg("invalid registration data provided")
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	dek, err := a.keys.GenerateDEK()
	if err != nil {
		return fmt.Errorf("generate dek: %w", err)
	}
	defer crypto.Wipe(dek)

	creds, err := a.sealCredentials(ctx, username, password, dek)
	if err != nil {
		log.Err(err).Msg("error sealing credentials")
		return err
	}

	answerHash, err := a.hashSecret(ctx, answer)
	if err != nil {
		log.Err(err).Msg("error hashing security answer")
		return err
	}

	user := models.User{
		Username:           username,
		SecurityQuestion:   strings.TrimSpace(question),
		SecurityAnswerHash: answerHash,
	}.WithCredentials(creds)

	userID, err := a.users.CreateUser(ctx, user)
	if err != nil {
		log.Err(err).Str("username", username).Msg("user creation ended with error")
		return fmt.Errorf("create user: %w", mapStoreError(err))
	}

	log.Info().Int64("user_id", userID).Str("username", username).Msg("user registered")
	return nil
}

// Login authenticates username and returns its session.
//
// Returns:
//   - ErrUserNotFound if there is no such user.
//   - ErrAuthenticationFailure if the password is wrong or the wrapped DEK
//     does not open.
func (a *authService) Login(ctx context.Context, username, password string) (*models.Session, error) {
	ctx, log := logger.WithOperation(ctx, a.logger, "auth.Login")

	user, err := a.users.FindUserByUsername(ctx, username)
	if err != nil {
		log.Err(err).Str("username", username).Msg("user search by username failed")
		return nil, fmt.Errorf("find user: %w", mapStoreError(err))
	}

	session, err := a.unlock(ctx, user, password)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", user.UserID).Msg("login failed")
		return nil, err
	}

	log.Info().Object("session", session).Msg("user logged in")
	return session, nil
}

// ChangePassword re-keys the whole account of s.
//
// The sequence is: verify current password, back up, generate a new DEK,
// then in one transaction re-encrypt and re-index every entry and swap the
// credential row. Any failure before commit leaves the old key epoch intact.
func (a *authService) ChangePassword(ctx context.Context, s *models.Session, currentPassword, newPassword string) (*models.Session, error) {
	ctx, log := logger.WithOperation(ctx, a.logger, "auth.ChangePassword")

	if !s.Active() {
		return nil, ErrInvalidSession
	}
	req := models.ChangePasswordRequest{CurrentPassword: currentPassword, NewPassword: newPassword}
	if err := a.validator.Validate(ctx, req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	unlock := a.locker.Lock(s.UserID)
	defer unlock()

	user, err := a.users.FindUserByID(ctx, s.UserID)
	if err != nil {
		log.Err(err).Object("session", s).Msg("user search by id failed")
		return nil, fmt.Errorf("find user: %w", mapStoreError(err))
	}
	if !bytes.Equal(user.WrapNonce, s.KeyEpoch()) {
		log.Warn().Object("session", s).Msg("session keys were retired by another credential change")
		return nil, ErrInvalidSession
	}

	if err := a.verifySecret(ctx, user.PasswordHash, currentPassword); err != nil {
		log.Warn().Object("session", s).Msg("current password rejected")
		return nil, err
	}

	if err := a.takeBackup(ctx); err != nil {
		return nil, err
	}

	next, creds, err := a.newKeyEpoch(ctx, user, newPassword)
	if err != nil {
		log.Err(err).Msg("error preparing new key epoch")
		return nil, err
	}

	var migrated int
	err = a.tx.WithinTx(ctx, func(ctx context.Context, repos store.Repositories) error {
		if err := repos.Users.LockKeyEpoch(ctx, s.UserID, s.KeyEpoch()); err != nil {
			return err
		}

		entries, err := repos.Entries.ListEntries(ctx, s.UserID)
		if err != nil {
			return err
		}

		for _, e := range entries {
			sealed, plain, err := resealEntry(a.codec, s, next, e)
			if err != nil {
				return err
			}
			if err := repos.Entries.UpdateEntry(ctx, sealed); err != nil {
				return err
			}
			if err := search.RebuildIndex(ctx, repos.Terms, next, e.ID, plain.Title, plain.Body); err != nil {
				return err
			}
			migrated++
		}

		return repos.Users.UpdateCredentials(ctx, s.UserID, creds)
	})
	if err != nil {
		next.Destroy()
		log.Err(err).Object("session", s).Int("migrated", migrated).Msg("password change rolled back")
		return nil, fmt.Errorf("password not changed: %w", mapStoreError(err))
	}

	s.Destroy()
	log.Info().Object("session", next).Int("entries", migrated).Msg("password changed")
	return next, nil
}

// ResetPassword replaces the password of a user who forgot it. Entries
// cannot be recovered without the old DEK, so all of them are deleted.
func (a *authService) ResetPassword(ctx context.Context, username, answer, newPassword string) error {
	ctx, log := logger.WithOperation(ctx, a.logger, "auth.ResetPassword")

	req := models.ResetPasswordRequest{Username: username, SecurityAnswer: answer, NewPassword: newPassword}
	if err := a.validator.Validate(ctx, req); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	user, err := a.users.FindUserByUsername(ctx, username)
	if err != nil {
		log.Err(err).Str("username", username).Msg("user search by username failed")
		return fmt.Errorf("find user: %w", mapStoreError(err))
	}
	if user.SecurityAnswerHash == "" {
		return fmt.Errorf("%w: security question is not set", ErrValidation)
	}

	unlock := a.locker.Lock(user.UserID)
	defer unlock()

	if err := a.verifySecret(ctx, user.SecurityAnswerHash, answer); err != nil {
		log.Warn().Int64("user_id", user.UserID).Msg("security answer rejected")
		return err
	}

	if err := a.takeBackup(ctx); err != nil {
		return err
	}

	next, creds, err := a.newKeyEpoch(ctx, user, newPassword)
	if err != nil {
		log.Err(err).Msg("error preparing new key epoch")
		return err
	}
	// nothing to re-encrypt, the session is not handed out
	next.Destroy()

	var deleted int64
	err = a.tx.WithinTx(ctx, func(ctx context.Context, repos store.Repositories) error {
		// sessions still open on the old epoch are locked out by the swap
		if err := repos.Users.LockKeyEpoch(ctx, user.UserID, user.WrapNonce); err != nil {
			return err
		}

		n, err := repos.Entries.DeleteAllForUser(ctx, user.UserID)
		if err != nil {
			return err
		}
		deleted = n
		return repos.Users.UpdateCredentials(ctx, user.UserID, creds)
	})
	if err != nil {
		log.Err(err).Int64("user_id", user.UserID).Msg("password reset rolled back")
		return fmt.Errorf("password not reset: %w", mapStoreError(err))
	}

	log.Info().Int64("user_id", user.UserID).Int64("deleted_entries", deleted).Msg("password reset")
	return nil
}

// GetSecurityQuestion returns ErrUserNotFound for unknown users and
// ErrValidation when the user never set a question.
func (a *authService) GetSecurityQuestion(ctx context.Context, username string) (string, error) {
	ctx, log := logger.WithOperation(ctx, a.logger, "auth.GetSecurityQuestion")

	user, err := a.users.FindUserByUsername(ctx, username)
	if err != nil {
		log.Err(err).Str("username", username).Msg("user search by username failed")
		return "", fmt.Errorf("find user: %w", mapStoreError(err))
	}

	question := strings.TrimSpace(user.SecurityQuestion)
	if question == "" {
		return "", fmt.Errorf("%w: security question is not set", ErrValidation)
	}
	return question, nil
}

func (a *authService) Logout(s *models.Session) {
	if s == nil {
		return
	}
	a.logger.Info().Object("session", s).Msg("user logged out")
	s.Destroy()
}

// unlock verifies password and opens the DEK of user. The job owns every
// intermediate key; an abandoned session is destroyed by the pool.
func (a *authService) unlock(ctx context.Context, user models.User, password string) (*models.Session, error) {
	return workers.Do(ctx, a.pool, func() (*models.Session, error) {
		if err := a.keys.VerifySecret(user.PasswordHash, password); err != nil {
			return nil, authFailure(err)
		}

		kek, err := a.keys.DeriveKEK(password, user.KEKSalt, user.KDFVersion)
		if err != nil {
			return nil, fmt.Errorf("derive kek: %w", err)
		}
		defer crypto.Wipe(kek)

		dek, err := a.keys.UnwrapDEK(kek, user.WrapNonce, user.WrappedDEK, []byte(user.Username))
		if err != nil {
			return nil, authFailure(err)
		}

		return a.openSession(user.UserID, user.Username, bytes.Clone(user.WrapNonce), dek)
	}, (*models.Session).Destroy)
}

// openSession takes ownership of epoch and dek.
func (a *authService) openSession(userID int64, username string, epoch, dek []byte) (*models.Session, error) {
	encKey, searchKey, err := a.keys.DeriveSessionKeys(dek)
	if err != nil {
		crypto.Wipe(dek)
		return nil, fmt.Errorf("derive session keys: %w", err)
	}
	return models.NewSession(userID, username, epoch, dek, encKey, searchKey), nil
}

// newKeyEpoch generates a fresh DEK for user, wraps it under password and
// returns the matching session and credential set.
func (a *authService) newKeyEpoch(ctx context.Context, user models.User, password string) (*models.Session, models.UserCredentials, error) {
	dek, err := a.keys.GenerateDEK()
	if err != nil {
		return nil, models.UserCredentials{}, fmt.Errorf("generate dek: %w", err)
	}

	creds, err := a.sealCredentials(ctx, user.Username, password, dek)
	if err != nil {
		crypto.Wipe(dek)
		return nil, models.UserCredentials{}, err
	}

	session, err := a.openSession(user.UserID, user.Username, bytes.Clone(creds.WrapNonce), dek)
	if err != nil {
		return nil, models.UserCredentials{}, err
	}
	return session, creds, nil
}

// sealCredentials derives a KEK from password under a new salt, wraps dek
// with it and hashes password. dek is copied; the caller keeps ownership.
func (a *authService) sealCredentials(ctx context.Context, username, password string, dek []byte) (models.UserCredentials, error) {
	dek = bytes.Clone(dek)

	return workers.Do(ctx, a.pool, func() (models.UserCredentials, error) {
		defer crypto.Wipe(dek)

		salt, err := a.keys.GenerateKEKSalt()
		if err != nil {
			return models.UserCredentials{}, fmt.Errorf("generate kek salt: %w", err)
		}

		version := a.keys.CurrentKDFVersion()
		kek, err := a.keys.DeriveKEK(password, salt, version)
		if err != nil {
			return models.UserCredentials{}, fmt.Errorf("derive kek: %w", err)
		}
		defer crypto.Wipe(kek)

		nonce, wrapped, err := a.keys.WrapDEK(kek, dek, []byte(username))
		if err != nil {
			return models.UserCredentials{}, fmt.Errorf("wrap dek: %w", err)
		}

		hash, err := a.keys.HashSecret(password)
		if err != nil {
			return models.UserCredentials{}, fmt.Errorf("hash password: %w", err)
		}

		return models.UserCredentials{
			PasswordHash: hash,
			KEKSalt:      salt,
			WrappedDEK:   wrapped,
			WrapNonce:    nonce,
			KDFVersion:   version,
		}, nil
	}, nil)
}

func (a *authService) hashSecret(ctx context.Context, secret string) (string, error) {
	return workers.Do(ctx, a.pool, func() (string, error) {
		hash, err := a.keys.HashSecret(secret)
		if err != nil {
			return "", fmt.Errorf("hash secret: %w", err)
		}
		return hash, nil
	}, nil)
}

func (a *authService) verifySecret(ctx context.Context, encoded, secret string) error {
	_, err := workers.Do(ctx, a.pool, func() (struct{}, error) {
		if err := a.keys.VerifySecret(encoded, secret); err != nil {
			return struct{}{}, authFailure(err)
		}
		return struct{}{}, nil
	}, nil)
	return err
}

// takeBackup snapshots the store. A failure is reported as ErrBackupFailed.
func (a *authService) takeBackup(ctx context.Context) error {
	path, err := a.backup.Backup(ctx)
	if err != nil {
		logger.FromContext(ctx).Err(err).Msg("backup failed, aborting")
		return fmt.Errorf("%w: %w", ErrBackupFailed, err)
	}
	logger.FromContext(ctx).Info().Str("path", path).Msg("store backed up")
	return nil
}

// authFailure folds every verification error into ErrAuthenticationFailure.
func authFailure(err error) error {
	if errors.Is(err, ErrAuthenticationFailure) {
		return ErrAuthenticationFailure
	}
	return fmt.Errorf("%w: %w", ErrAuthenticationFailure, err)
}
