package privileges

import (
	"context"
	"fmt"
	"strings"

	"github.com/meridian-crm/meridian-crm/internal/shared"
)

// RepositoryPort defines data access methods for privileges.
type RepositoryPort interface {
	ListPrivileges(ctx context.Context) ([]Privilege, error)
	ListByCategory(ctx context.Context, category string) ([]Privilege, error)
	ListCategories(ctx context.Context) ([]string, error)
	GetPrivilege(ctx context.Context, id int64) (*Privilege, error)
	CreatePrivilege(ctx context.Context, name, description, category string) (*Privilege, error)
	UpdatePrivilege(ctx context.Context, id int64, description, category string) (*Privilege, error)
	DeletePrivilege(ctx context.Context, id int64) error
}

// Invalidator drops cached authorization state after mutations.
type Invalidator interface {
	InvalidateAll(ctx context.Context)
}

// Service handles privilege business logic and enforces the lifecycle
// invariants.
type Service struct {
	repo        RepositoryPort
	invalidator Invalidator
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, invalidator Invalidator) *Service {
	return &Service{repo: repo, invalidator: invalidator}
}

// ListPrivileges returns all privileges with derived role counts.
func (s *Service) ListPrivileges(ctx context.Context) ([]Privilege, error) {
	return s.repo.ListPrivileges(ctx)
}

// ListByCategory returns privileges tagged with the exact category.
func (s *Service) ListByCategory(ctx context.Context, category string) ([]Privilege, error) {
	return s.repo.ListByCategory(ctx, category)
}

// ListCategories returns the distinct named categories.
func (s *Service) ListCategories(ctx context.Context) ([]string, error) {
	return s.repo.ListCategories(ctx)
}

// GetPrivilege returns one privilege.
func (s *Service) GetPrivilege(ctx context.Context, id int64) (*Privilege, error) {
	return s.repo.GetPrivilege(ctx, id)
}

// CreatePrivilege upper-cases and validates the name, then inserts. New
// privileges start unassigned.
func (s *Service) CreatePrivilege(ctx context.Context, name, description, category string) (*Privilege, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if !NamePattern.MatchString(name) {
		return nil, fmt.Errorf("%w: privilege name must contain only letters and underscores", shared.ErrValidation)
	}
	return s.repo.CreatePrivilege(ctx, name, strings.TrimSpace(description), strings.TrimSpace(category))
}

// UpdatePrivilege changes description and category. The name is immutable:
// anything a caller sends for it is discarded before this point.
func (s *Service) UpdatePrivilege(ctx context.Context, id int64, description, category string) (*Privilege, error) {
	p, err := s.repo.UpdatePrivilege(ctx, id, strings.TrimSpace(description), strings.TrimSpace(category))
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return p, nil
}

// DeletePrivilege removes a privilege when no role holds it.
func (s *Service) DeletePrivilege(ctx context.Context, id int64) error {
	p, err := s.repo.GetPrivilege(ctx, id)
	if err != nil {
		return err
	}
	if p.RoleCount > 0 {
		return shared.ErrPrivilegeInUse
	}
	if err := s.repo.DeletePrivilege(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.invalidator != nil {
		s.invalidator.InvalidateAll(ctx)
	}
}
