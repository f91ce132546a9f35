package customers

import (
	"context"
	"strings"
)

// RepositoryPort defines data access methods for customers.
type RepositoryPort interface {
	ListCustomers(ctx context.Context) ([]Customer, error)
	GetCustomer(ctx context.Context, id int64) (*Customer, error)
	CreateCustomer(ctx context.Context, c Customer) (*Customer, error)
	UpdateCustomer(ctx context.Context, c Customer) (*Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
}

// Patch carries a partial update. Nil fields keep their stored values.
type Patch struct {
	FirstName   *string
	LastName    *string
	Email       *string
	PhoneNumber *string
	CompanyName *string
	Notes       *string
}

// Service handles customer business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListCustomers returns all customers.
func (s *Service) ListCustomers(ctx context.Context) ([]Customer, error) {
	return s.repo.ListCustomers(ctx)
}

// GetCustomer returns one customer.
func (s *Service) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

// CreateCustomer inserts a new customer. A taken email surfaces as
// ErrCustomerEmailInUse.
func (s *Service) CreateCustomer(ctx context.Context, c Customer) (*Customer, error) {
	trim(&c)
	return s.repo.CreateCustomer(ctx, c)
}

// UpdateCustomer replaces every field of an existing customer.
func (s *Service) UpdateCustomer(ctx context.Context, c Customer) (*Customer, error) {
	trim(&c)
	return s.repo.UpdateCustomer(ctx, c)
}

// PatchCustomer applies the non-nil fields of the patch on top of the stored
// record.
func (s *Service) PatchCustomer(ctx context.Context, id int64, patch Patch) (*Customer, error) {
	current, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	merged := *current
	apply(&merged.FirstName, patch.FirstName)
	apply(&merged.LastName, patch.LastName)
	apply(&merged.Email, patch.Email)
	apply(&merged.PhoneNumber, patch.PhoneNumber)
	apply(&merged.CompanyName, patch.CompanyName)
	apply(&merged.Notes, patch.Notes)
	trim(&merged)
	return s.repo.UpdateCustomer(ctx, merged)
}

// DeleteCustomer removes a customer by ID.
func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	return s.repo.DeleteCustomer(ctx, id)
}

func apply(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func trim(c *Customer) {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Email = strings.TrimSpace(c.Email)
	c.PhoneNumber = strings.TrimSpace(c.PhoneNumber)
	c.CompanyName = strings.TrimSpace(c.CompanyName)
	c.Notes = strings.TrimSpace(c.Notes)
}
