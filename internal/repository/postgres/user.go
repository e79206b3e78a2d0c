package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/utafrali/commerce-auth/internal/domain"
	"github.com/utafrali/commerce-auth/pkg/database"
	apperrors "github.com/utafrali/commerce-auth/pkg/errors"
)

const userColumns = "id, name, email, password_hash, role, avatar, is_verified, is_banned, created_at, updated_at"

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a PostgreSQL-backed user repository.
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. A unique violation on email surfaces as a
// conflict so concurrent registrations of the same address cannot both
// succeed.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, role, avatar, is_verified, is_banned, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		u.ID,
		u.Name,
		u.Email,
		u.PasswordHash,
		u.Role,
		u.Avatar,
		u.IsVerified,
		u.IsBanned,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("Email is already registered")
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(ctx, query, id)
}

// GetByEmail retrieves a user by their email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(ctx, query, email)
}

// Update modifies an existing user.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	u.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET name = $1, email = $2, password_hash = $3, role = $4, avatar = $5,
		    is_verified = $6, is_banned = $7, updated_at = $8
		WHERE id = $9`

	ct, err := r.db.Exec(ctx, query,
		u.Name,
		u.Email,
		u.PasswordHash,
		u.Role,
		u.Avatar,
		u.IsVerified,
		u.IsBanned,
		u.UpdatedAt,
		u.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("Email is already registered")
		}
		return fmt.Errorf("update user: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *UserRepository) scanUser(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var u domain.User

	err := r.db.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Avatar,
		&u.IsVerified,
		&u.IsBanned,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return &u, nil
}

// isUniqueViolation reports whether the error is a PostgreSQL unique
// constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
