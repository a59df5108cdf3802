package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-api-profile/internal/domain"
)

const publicUserColumns = `id, first_name, last_name, email, mobile_number, created_at, updated_at`

// UserRepo is the credential store backed by the users table.
type UserRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts u with its email lowercased. u.PasswordHash must already be hashed.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	query := `INSERT INTO users (first_name, last_name, email, mobile_number, password)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + publicUserColumns

	row := r.db.QueryRowContext(ctx, query,
		u.FirstName, u.LastName, normalizeEmail(u.Email), u.MobileNumber, u.PasswordHash)
	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

// GetByEmail returns the full record including the password hash.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + publicUserColumns + `, password FROM users WHERE email = $1`

	u := &domain.User{}
	err := r.db.QueryRowContext(ctx, query, normalizeEmail(email)).Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.MobileNumber, &u.CreatedAt, &u.UpdatedAt, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

// GetByID returns the public record; PasswordHash is left empty.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + publicUserColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

// Update applies the non-nil fields of upd and returns the updated public record.
// An empty string for LastName or MobileNumber clears the column.
func (r *UserRepo) Update(ctx context.Context, id int64, upd domain.UserUpdate) (*domain.User, error) {
	if upd.Empty() {
		return r.GetByID(ctx, id)
	}

	var sets []string
	var args []any
	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.FirstName != nil {
		add("first_name", *upd.FirstName)
	}
	if upd.LastName != nil {
		add("last_name", nullIfEmpty(*upd.LastName))
	}
	if upd.Email != nil {
		add("email", normalizeEmail(*upd.Email))
	}
	if upd.MobileNumber != nil {
		add("mobile_number", nullIfEmpty(*upd.MobileNumber))
	}
	if upd.PasswordHash != nil {
		add("password", *upd.PasswordHash)
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), publicUserColumns)

	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, domain.ErrUserNotFound
		case isUniqueViolation(err):
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	u := &domain.User{}
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.MobileNumber, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func nullIfEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
