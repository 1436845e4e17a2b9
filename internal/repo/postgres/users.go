package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mohamedhany/eshop-api/internal/domain/user"
	"github.com/mohamedhany/eshop-api/internal/security"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already in use")
)

const userColumns = `id, name, COALESCE(slug, ''), email, phone, profile_img,
	password_hash, password_changed_at, password_reset_code,
	password_reset_expires, password_reset_verified, role, active,
	created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
}

func NewUsersRepo(pool *pgxpool.Pool) *UsersRepo {
	return &UsersRepo{pool: pool}
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getWhere(ctx, "email = $1", strings.ToLower(email))
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getWhere(ctx, "id = $1", id)
}

// GetByResetCode matches the stored code hash and requires the code to be
// unexpired. An expired match behaves exactly like no match.
func (r *UsersRepo) GetByResetCode(ctx context.Context, codeHash string) (user.User, error) {
	return r.getWhere(ctx, "password_reset_code = $1 AND password_reset_expires > now()", codeHash)
}

// Create inserts a new user with the password already hashed here, the
// storage-side pre-write step every password shares.
func (r *UsersRepo) Create(ctx context.Context, name, email, password, role string) (user.User, error) {
	hash, err := security.HashPassword(password)

	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Name:         name,
		Slug:         slug.Make(name),
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO users (id, name, slug, email, password_hash, role, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, u.Name, u.Slug, u.Email, u.PasswordHash, u.Role, u.Active, u.CreatedAt, u.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, ErrEmailTaken
		}
		return user.User{}, err
	}

	return u, nil
}

// UpdatePassword rotates the password and stamps password_changed_at so
// previously issued tokens go stale.
func (r *UsersRepo) UpdatePassword(ctx context.Context, id, password string) (user.User, error) {
	hash, err := security.HashPassword(password)

	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	return r.getWhereRows(ctx,
		`UPDATE users
		    SET password_hash = $2,
		        password_changed_at = now(),
		        updated_at = now(),
		        version = version + 1
		  WHERE id = $1
		 RETURNING `+userColumns,
		id, hash,
	)
}

// UpdateProfile changes the self-service fields only. Nil means keep.
func (r *UsersRepo) UpdateProfile(ctx context.Context, id string, name, email, phone *string) (user.User, error) {
	sets := []string{"updated_at = now()", "version = version + 1"}
	args := []any{id}

	if name != nil {
		args = append(args, *name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
		args = append(args, slug.Make(*name))
		sets = append(sets, fmt.Sprintf("slug = $%d", len(args)))
	}

	if email != nil {
		args = append(args, strings.ToLower(*email))
		sets = append(sets, fmt.Sprintf("email = $%d", len(args)))
	}

	if phone != nil {
		args = append(args, *phone)
		sets = append(sets, fmt.Sprintf("phone = $%d", len(args)))
	}

	u, err := r.getWhereRows(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = $1 RETURNING "+userColumns,
		args...,
	)

	if err != nil && isUniqueViolation(err) {
		return user.User{}, ErrEmailTaken
	}

	return u, err
}

// SetResetCode persists the hashed code, its expiry and verified=false.
func (r *UsersRepo) SetResetCode(ctx context.Context, id, codeHash string, expires time.Time) error {
	return r.exec(ctx,
		`UPDATE users
		    SET password_reset_code = $2,
		        password_reset_expires = $3,
		        password_reset_verified = false
		  WHERE id = $1`,
		id, codeHash, expires,
	)
}

// ClearResetCode is both the compensating rollback after a failed email
// send and part of the reset completion: all three fields back to absent.
func (r *UsersRepo) ClearResetCode(ctx context.Context, id string) error {
	return r.exec(ctx,
		`UPDATE users
		    SET password_reset_code = NULL,
		        password_reset_expires = NULL,
		        password_reset_verified = NULL
		  WHERE id = $1`,
		id,
	)
}

func (r *UsersRepo) MarkResetVerified(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE users SET password_reset_verified = true WHERE id = $1`, id)
}

// ResetPassword completes the flow in one write: new hash, stamp the
// change, clear the reset fields.
func (r *UsersRepo) ResetPassword(ctx context.Context, id, password string) (user.User, error) {
	hash, err := security.HashPassword(password)

	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	return r.getWhereRows(ctx,
		`UPDATE users
		    SET password_hash = $2,
		        password_changed_at = now(),
		        password_reset_code = NULL,
		        password_reset_expires = NULL,
		        password_reset_verified = NULL,
		        updated_at = now(),
		        version = version + 1
		  WHERE id = $1
		 RETURNING `+userColumns,
		id, hash,
	)
}

// Deactivate is the soft delete behind DELETE /users/deleteMe.
func (r *UsersRepo) Deactivate(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE users SET active = false, updated_at = now() WHERE id = $1`, id)
}

// SweepExpiredResetCodes clears every reset code whose expiry has passed.
// Used by the maintenance worker.
func (r *UsersRepo) SweepExpiredResetCodes(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users
		    SET password_reset_code = NULL,
		        password_reset_expires = NULL,
		        password_reset_verified = NULL
		  WHERE password_reset_expires IS NOT NULL
		    AND password_reset_expires <= now()`,
	)

	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (r *UsersRepo) exec(ctx context.Context, sql string, args ...any) error {
	tag, err := r.pool.Exec(ctx, sql, args...)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *UsersRepo) getWhere(ctx context.Context, where string, args ...any) (user.User, error) {
	return r.getWhereRows(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, args...)
}

func (r *UsersRepo) getWhereRows(ctx context.Context, sql string, args ...any) (user.User, error) {
	var u user.User

	err := r.pool.QueryRow(ctx, sql, args...).Scan(
		&u.ID,
		&u.Name,
		&u.Slug,
		&u.Email,
		&u.Phone,
		&u.ProfileImg,
		&u.PasswordHash,
		&u.PasswordChangedAt,
		&u.PasswordResetCode,
		&u.PasswordResetExpires,
		&u.PasswordResetVerified,
		&u.Role,
		&u.Active,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
