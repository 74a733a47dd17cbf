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

var userColumns = []string{
	"id",
	"username",
	"pwd_hash",
	"kek_salt",
	"dek_wrapped",
	"dek_wrap_nonce",
	"kdf_version",
	"security_question",
	"security_answer_hash",
	"created_at",
}

// userRepository implements [UserRepository] on top of any [Querier].
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, operation-level tracing of database interactions.
type userRepository struct {
	q          Querier
	builder    sq.StatementBuilderType
	classifier ErrorClassificator
}

func newUserRepository(q Querier, builder sq.StatementBuilderType, classifier ErrorClassificator) *userRepository {
	return &userRepository{q: q, builder: builder, classifier: classifier}
}

// CreateUser persists a new user record and returns the assigned id.
//
// Error handling:
//   - unique violation on username → [ErrUserAlreadyExists].
//   - any other driver-level error → wrapped [ErrExecutingStatement].
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (int64, error) {
	log := logger.FromContext(ctx)

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query, args, err := r.builder.
		Insert(user.TableName()).
		Columns(userColumns[1:]...).
		Values(
			user.Username,
			user.PasswordHash,
			user.KEKSalt,
			user.WrappedDEK,
			user.WrapNonce,
			user.KDFVersion,
			user.SecurityQuestion,
			user.SecurityAnswerHash,
			user.CreatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var id int64
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		class := r.classifier.Classify(err)
		log.Err(err).
			Str("func", "*userRepository.CreateUser").
			Stringer("class", class).
			Msg("error inserting user")

		if class == UniqueViolation {
			return 0, ErrUserAlreadyExists
		}
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return id, nil
}

// FindUserByUsername retrieves the user whose username matches exactly.
func (r *userRepository) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	return r.findUser(ctx, sq.Eq{"username": username})
}

// FindUserByID retrieves the user by primary key.
func (r *userRepository) FindUserByID(ctx context.Context, userID int64) (models.User, error) {
	return r.findUser(ctx, sq.Eq{"id": userID})
}

func (r *userRepository) findUser(ctx context.Context, where sq.Eq) (models.User, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.builder.
		Select(userColumns...).
		From(models.User{}.TableName()).
		Where(where).
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var u models.User
	err = r.q.QueryRowContext(ctx, query, args...).Scan(
		&u.UserID,
		&u.Username,
		&u.PasswordHash,
		&u.KEKSalt,
		&u.WrappedDEK,
		&u.WrapNonce,
		&u.KDFVersion,
		&u.SecurityQuestion,
		&u.SecurityAnswerHash,
		&u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNoUserWasFound
	}
	if err != nil {
		log.Err(err).Str("func", "*userRepository.findUser").Msg("error scanning user")
		return models.User{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return u, nil
}

// UpdateCredentials swaps the whole credential set of a user at once.
// [ErrNoUserWasFound] is returned when no row matched.
func (r *userRepository) UpdateCredentials(ctx context.Context, userID int64, creds models.UserCredentials) error {
	log := logger.FromContext(ctx)

	query, args, err := r.builder.
		Update(models.User{}.TableName()).
		SetMap(map[string]any{
			"pwd_hash":       creds.PasswordHash,
			"kek_salt":       creds.KEKSalt,
			"dek_wrapped":    creds.WrappedDEK,
			"dek_wrap_nonce": creds.WrapNonce,
			"kdf_version":    creds.KDFVersion,
		}).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.UpdateCredentials").Int64("user_id", userID).Msg("error updating credentials")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return expectAffected(res, ErrNoUserWasFound)
}

// LockKeyEpoch issues a no-op UPDATE filtered on the wrap nonce. The row lock
// it takes is held until commit, so a concurrent credential swap either
// finishes first (and the filter no longer matches) or waits for this
// transaction.
func (r *userRepository) LockKeyEpoch(ctx context.Context, userID int64, wrapNonce []byte) error {
	log := logger.FromContext(ctx)

	query, args, err := r.builder.
		Update(models.User{}.TableName()).
		Set("kdf_version", sq.Expr("kdf_version")).
		Where("id = ? AND dek_wrap_nonce = ?", userID, wrapNonce).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.LockKeyEpoch").Int64("user_id", userID).Msg("error locking user row")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return expectAffected(res, ErrStaleKeyEpoch)
}

// expectAffected turns "zero rows affected" into notFound.
func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
