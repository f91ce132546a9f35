package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-crm/meridian-crm/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*Account, error)
	CreateAccount(ctx context.Context, account NewAccount, passwordHash, defaultRole string) (*Account, error)
	RegisterSession(ctx context.Context, tokenID string, userID int64, expiresAt time.Time) error
	SessionActive(ctx context.Context, tokenID string) (bool, error)
	RevokeSession(ctx context.Context, tokenID string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const accountColumns = `u.id, u.username, u.email, u.password_hash, u.first_name, u.last_name, u.enabled, u.language_preference, u.created_at, u.updated_at`

// FindByUsername fetches an account with its role names.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (*Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM users u WHERE u.username = $1`, username)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if account.Roles, err = r.roleNames(ctx, account.ID); err != nil {
		return nil, err
	}
	return account, nil
}

// CreateAccount inserts a user and attaches the default role in one transaction.
// Unique violations on username/email surface as the matching conflict error.
func (r *PGRepository) CreateAccount(ctx context.Context, account NewAccount, passwordHash, defaultRole string) (*Account, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, first_name, last_name, enabled, language_preference)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6)
		RETURNING id, username, email, password_hash, first_name, last_name, enabled, language_preference, created_at, updated_at`,
		account.Username, account.Email, passwordHash, account.FirstName, account.LastName, account.LanguagePreference)
	created, err := scanAccount(row)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE name = $2`, created.ID, defaultRole); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	created.Roles = []string{defaultRole}
	return created, nil
}

// RegisterSession records an issued token in the session registry.
func (r *PGRepository) RegisterSession(ctx context.Context, tokenID string, userID int64, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (id, user_id, created_at, expires_at)
		VALUES ($1, $2, now(), $3)`, tokenID, userID, expiresAt.UTC())
	return err
}

// SessionActive reports whether the token is registered and unexpired.
func (r *PGRepository) SessionActive(ctx context.Context, tokenID string) (bool, error) {
	var active bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1 AND expires_at > now())`, tokenID).Scan(&active)
	return active, err
}

// RevokeSession removes a token from the registry.
func (r *PGRepository) RevokeSession(ctx context.Context, tokenID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, tokenID)
	return err
}

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	if err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.FirstName, &a.LastName,
		&a.Enabled, &a.LanguagePreference, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PGRepository) roleNames(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.name FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1 ORDER BY r.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "users_username_key":
			return shared.ErrUsernameTaken
		case "users_email_key":
			return shared.ErrEmailInUse
		}
	}
	return err
}

var _ Repository = (*PGRepository)(nil)
