package privileges

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-crm/meridian-crm/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const privilegeColumns = `p.id, p.name, p.description, p.category,
	(SELECT COUNT(*) FROM role_privileges rp WHERE rp.privilege_id = p.id) AS role_count,
	p.created_at, p.updated_at`

// ListPrivileges returns all privileges with derived role counts.
func (r *Repository) ListPrivileges(ctx context.Context) ([]Privilege, error) {
	return r.queryMany(ctx, `SELECT `+privilegeColumns+` FROM privileges p ORDER BY p.name`)
}

// ListByCategory returns privileges tagged with the exact category.
func (r *Repository) ListByCategory(ctx context.Context, category string) ([]Privilege, error) {
	return r.queryMany(ctx, `SELECT `+privilegeColumns+` FROM privileges p WHERE p.category = $1 ORDER BY p.name`, category)
}

// ListCategories returns the distinct non-empty categories.
func (r *Repository) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT category FROM privileges
		WHERE category IS NOT NULL AND btrim(category) <> ''
		ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetPrivilege fetches one privilege by ID.
func (r *Repository) GetPrivilege(ctx context.Context, id int64) (*Privilege, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+privilegeColumns+` FROM privileges p WHERE p.id = $1`, id)
	var p Privilege
	if err := scanPrivilege(row, &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// CreatePrivilege inserts a new privilege. Duplicate names surface as
// ErrPrivilegeExists.
func (r *Repository) CreatePrivilege(ctx context.Context, name, description, category string) (*Privilege, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO privileges (name, description, category)
		VALUES ($1, $2, $3)
		RETURNING id, name, description, category, 0::bigint AS role_count, created_at, updated_at`,
		name, description, category)
	var p Privilege
	if err := scanPrivilege(row, &p); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, shared.ErrPrivilegeExists
		}
		return nil, err
	}
	return &p, nil
}

// UpdatePrivilege changes description and category. The name column is
// deliberately absent from the statement: it is immutable after creation.
func (r *Repository) UpdatePrivilege(ctx context.Context, id int64, description, category string) (*Privilege, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE privileges p SET description = $2, category = $3, updated_at = now()
		WHERE p.id = $1
		RETURNING `+privilegeColumns, id, description, category)
	var p Privilege
	if err := scanPrivilege(row, &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// DeletePrivilege removes a privilege by ID.
func (r *Repository) DeletePrivilege(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM privileges WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *Repository) queryMany(ctx context.Context, sql string, args ...any) ([]Privilege, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var privs []Privilege
	for rows.Next() {
		var p Privilege
		if err := scanPrivilege(rows, &p); err != nil {
			return nil, err
		}
		privs = append(privs, p)
	}
	return privs, rows.Err()
}

func scanPrivilege(row pgx.Row, p *Privilege) error {
	return row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.RoleCount, &p.CreatedAt, &p.UpdatedAt)
}
