package users

import (
	"context"
	"fmt"

	"github.com/meridian-crm/meridian-crm/internal/rbac"
	"github.com/meridian-crm/meridian-crm/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	UpdateLanguagePreference(ctx context.Context, id int64, language string) error
	SetEnabled(ctx context.Context, id int64, enabled bool) error
	ReplaceRole(ctx context.Context, userID, roleID int64) error
	RoleExists(ctx context.Context, roleID int64) (bool, error)
}

// Invalidator drops cached authorization state after mutations.
type Invalidator interface {
	InvalidateUser(ctx context.Context, userID int64)
}

// Service handles user business logic.
type Service struct {
	repo        RepositoryPort
	invalidator Invalidator
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, invalidator Invalidator) *Service {
	return &Service{repo: repo, invalidator: invalidator}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// GetUser returns one user.
func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

// UpdateLanguagePreference persists a new locale preference. Users may
// change their own; admins may change anyone's.
func (s *Service) UpdateLanguagePreference(ctx context.Context, principal *shared.Principal, userID int64, language string) error {
	if principal == nil {
		return shared.ErrInvalidCredentials
	}
	if principal.UserID != userID && !principal.HasRole(rbac.AdminRole) {
		return shared.ErrForbidden
	}
	if !shared.IsSupportedLocale(language) {
		return fmt.Errorf("%w: unsupported language preference %q", shared.ErrValidation, language)
	}
	return s.repo.UpdateLanguagePreference(ctx, userID, language)
}

// SetEnabled flips the account's enabled flag.
func (s *Service) SetEnabled(ctx context.Context, userID int64, enabled bool) error {
	return s.repo.SetEnabled(ctx, userID, enabled)
}

// ReplaceRole swaps the target user's role set for the single target role.
// The acting principal may never change their own assignment: role changes
// take effect immediately and self-service escalation must stay impossible.
func (s *Service) ReplaceRole(ctx context.Context, principal *shared.Principal, userID, roleID int64) (*User, error) {
	if principal == nil {
		return nil, shared.ErrInvalidCredentials
	}
	if principal.UserID == userID {
		return nil, shared.ErrSelfRoleChange
	}
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	exists, err := s.repo.RoleExists(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.ErrNotFound
	}
	if err := s.repo.ReplaceRole(ctx, userID, roleID); err != nil {
		return nil, err
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateUser(ctx, userID)
	}
	return s.repo.GetUser(ctx, userID)
}
