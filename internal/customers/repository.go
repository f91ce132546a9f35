package customers

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

const customerColumns = `c.id, c.first_name, c.last_name, c.email, c.phone_number, c.company_name, c.notes, c.created_at, c.updated_at`

// ListCustomers returns all customers ordered by name.
func (r *Repository) ListCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+customerColumns+` FROM customers c ORDER BY c.last_name, c.first_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Customer
	for rows.Next() {
		var c Customer
		if err := scanCustomer(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCustomer fetches one customer by ID.
func (r *Repository) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers c WHERE c.id = $1`, id)
	var c Customer
	if err := scanCustomer(row, &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// CreateCustomer inserts a new customer. A taken email surfaces as
// ErrCustomerEmailInUse.
func (r *Repository) CreateCustomer(ctx context.Context, c Customer) (*Customer, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO customers (first_name, last_name, email, phone_number, company_name, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, first_name, last_name, email, phone_number, company_name, notes, created_at, updated_at`,
		c.FirstName, c.LastName, c.Email, c.PhoneNumber, c.CompanyName, c.Notes)
	var created Customer
	if err := scanCustomer(row, &created); err != nil {
		return nil, mapEmailViolation(err)
	}
	return &created, nil
}

// UpdateCustomer rewrites every column of an existing customer.
func (r *Repository) UpdateCustomer(ctx context.Context, c Customer) (*Customer, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE customers c SET first_name = $2, last_name = $3, email = $4,
			phone_number = $5, company_name = $6, notes = $7, updated_at = now()
		WHERE c.id = $1
		RETURNING `+customerColumns,
		c.ID, c.FirstName, c.LastName, c.Email, c.PhoneNumber, c.CompanyName, c.Notes)
	var updated Customer
	if err := scanCustomer(row, &updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, mapEmailViolation(err)
	}
	return &updated, nil
}

// DeleteCustomer removes a customer by ID.
func (r *Repository) DeleteCustomer(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanCustomer(row pgx.Row, c *Customer) error {
	return row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.PhoneNumber,
		&c.CompanyName, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
}

func mapEmailViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrCustomerEmailInUse
	}
	return err
}

var _ RepositoryPort = (*Repository)(nil)
