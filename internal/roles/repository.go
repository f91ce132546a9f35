package roles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-crm/meridian-crm/internal/privileges"
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

const roleColumns = `r.id, r.name, r.description, r.system_role,
	(SELECT COUNT(*) FROM user_roles ur WHERE ur.role_id = r.id) AS user_count,
	r.created_at, r.updated_at`

// ListRoles returns all roles with their derived user counts.
func (r *Repository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+roleColumns+` FROM roles r ORDER BY r.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []Role
	for rows.Next() {
		var role Role
		if err := scanRole(rows, &role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// GetRole fetches one role by ID.
func (r *Repository) GetRole(ctx context.Context, id int64) (*Role, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles r WHERE r.id = $1`, id)
	var role Role
	if err := scanRole(row, &role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

// CreateRole inserts a new role. Duplicate names surface as ErrRoleExists.
func (r *Repository) CreateRole(ctx context.Context, name, description string) (*Role, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO roles (name, description, system_role)
		VALUES ($1, $2, FALSE)
		RETURNING id, name, description, system_role, 0::bigint AS user_count, created_at, updated_at`,
		name, description)
	var role Role
	if err := scanRole(row, &role); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, shared.ErrRoleExists
		}
		return nil, err
	}
	return &role, nil
}

// UpdateRole updates the description of an existing role. Name and the
// system flag are immutable through this path.
func (r *Repository) UpdateRole(ctx context.Context, id int64, description string) (*Role, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE roles r SET description = $2, updated_at = now()
		WHERE r.id = $1
		RETURNING `+roleColumns, id, description)
	var role Role
	if err := scanRole(row, &role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

// DeleteRole removes a role by ID.
func (r *Repository) DeleteRole(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListRolePrivileges returns the privileges currently assigned to a role.
func (r *Repository) ListRolePrivileges(ctx context.Context, roleID int64) ([]privileges.Privilege, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.name, p.description, p.category,
			(SELECT COUNT(*) FROM role_privileges rp2 WHERE rp2.privilege_id = p.id) AS role_count,
			p.created_at, p.updated_at
		FROM privileges p
		JOIN role_privileges rp ON rp.privilege_id = p.id
		WHERE rp.role_id = $1 ORDER BY p.name`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []privileges.Privilege
	for rows.Next() {
		var p privileges.Privilege
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.RoleCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ReplaceRolePrivileges swaps the role's privilege set wholesale inside a
// transaction. Unknown privilege IDs fail the whole operation.
func (r *Repository) ReplaceRolePrivileges(ctx context.Context, roleID int64, privilegeIDs []int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var known int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM privileges WHERE id = ANY($1)`, privilegeIDs).Scan(&known); err != nil {
		return err
	}
	if known != len(uniqueIDs(privilegeIDs)) {
		return shared.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM role_privileges WHERE role_id = $1`, roleID); err != nil {
		return err
	}
	for _, id := range uniqueIDs(privilegeIDs) {
		if _, err := tx.Exec(ctx, `INSERT INTO role_privileges (role_id, privilege_id) VALUES ($1, $2)`, roleID, id); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// AttachPrivilege adds a single privilege to a role, ignoring duplicates.
func (r *Repository) AttachPrivilege(ctx context.Context, roleID, privilegeID int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO role_privileges (role_id, privilege_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`, roleID, privilegeID)
	return err
}

// DetachPrivilege removes a single privilege from a role.
func (r *Repository) DetachPrivilege(ctx context.Context, roleID, privilegeID int64) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM role_privileges WHERE role_id = $1 AND privilege_id = $2`, roleID, privilegeID)
	return err
}

// PrivilegeExists reports whether a privilege ID is known.
func (r *Repository) PrivilegeExists(ctx context.Context, privilegeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM privileges WHERE id = $1)`, privilegeID).Scan(&exists)
	return exists, err
}

func scanRole(row pgx.Row, role *Role) error {
	return row.Scan(&role.ID, &role.Name, &role.Description, &role.SystemRole,
		&role.UserCount, &role.CreatedAt, &role.UpdatedAt)
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
