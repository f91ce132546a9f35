package roles

import (
	"context"
	"fmt"
	"strings"

	"github.com/meridian-crm/meridian-crm/internal/privileges"
	"github.com/meridian-crm/meridian-crm/internal/shared"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id int64) (*Role, error)
	CreateRole(ctx context.Context, name, description string) (*Role, error)
	UpdateRole(ctx context.Context, id int64, description string) (*Role, error)
	DeleteRole(ctx context.Context, id int64) error
	ListRolePrivileges(ctx context.Context, roleID int64) ([]privileges.Privilege, error)
	ReplaceRolePrivileges(ctx context.Context, roleID int64, privilegeIDs []int64) error
	AttachPrivilege(ctx context.Context, roleID, privilegeID int64) error
	DetachPrivilege(ctx context.Context, roleID, privilegeID int64) error
	PrivilegeExists(ctx context.Context, privilegeID int64) (bool, error)
}

// Invalidator drops cached authorization state after mutations.
type Invalidator interface {
	InvalidateAll(ctx context.Context)
}

// Service handles role business logic and enforces the lifecycle invariants.
type Service struct {
	repo        RepositoryPort
	invalidator Invalidator
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, invalidator Invalidator) *Service {
	return &Service{repo: repo, invalidator: invalidator}
}

// ListRoles returns all roles with derived user counts.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// GetRole returns one role.
func (s *Service) GetRole(ctx context.Context, id int64) (*Role, error) {
	return s.repo.GetRole(ctx, id)
}

// CreateRole validates the name shape and inserts a new custom role.
// New roles are never system roles and start with zero users.
func (s *Service) CreateRole(ctx context.Context, name, description string) (*Role, error) {
	name = strings.TrimSpace(name)
	if !NamePattern.MatchString(name) {
		return nil, fmt.Errorf("%w: role name must match ROLE_[A-Z_]+", shared.ErrValidation)
	}
	return s.repo.CreateRole(ctx, name, strings.TrimSpace(description))
}

// UpdateRole changes the description. Name and system flag stay untouched
// even if a caller supplies them.
func (s *Service) UpdateRole(ctx context.Context, id int64, description string) (*Role, error) {
	return s.repo.UpdateRole(ctx, id, strings.TrimSpace(description))
}

// DeleteRole removes a role when it is neither built-in nor held by users.
func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	role, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return err
	}
	if role.SystemRole {
		return shared.ErrSystemRole
	}
	if role.UserCount > 0 {
		return shared.ErrRoleInUse
	}
	if err := s.repo.DeleteRole(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// RolePrivileges returns the privileges currently assigned to the role.
func (s *Service) RolePrivileges(ctx context.Context, roleID int64) ([]privileges.Privilege, error) {
	if _, err := s.repo.GetRole(ctx, roleID); err != nil {
		return nil, err
	}
	return s.repo.ListRolePrivileges(ctx, roleID)
}

// ReplacePrivileges swaps the role's privilege set wholesale. The empty set
// is legal: roles carry no minimum-privilege invariant.
func (s *Service) ReplacePrivileges(ctx context.Context, roleID int64, privilegeIDs []int64) (*Role, error) {
	if _, err := s.repo.GetRole(ctx, roleID); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceRolePrivileges(ctx, roleID, privilegeIDs); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.repo.GetRole(ctx, roleID)
}

// AddPrivilege attaches one privilege to the role.
func (s *Service) AddPrivilege(ctx context.Context, roleID, privilegeID int64) (*Role, error) {
	if err := s.checkPair(ctx, roleID, privilegeID); err != nil {
		return nil, err
	}
	if err := s.repo.AttachPrivilege(ctx, roleID, privilegeID); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.repo.GetRole(ctx, roleID)
}

// RemovePrivilege detaches one privilege from the role.
func (s *Service) RemovePrivilege(ctx context.Context, roleID, privilegeID int64) (*Role, error) {
	if err := s.checkPair(ctx, roleID, privilegeID); err != nil {
		return nil, err
	}
	if err := s.repo.DetachPrivilege(ctx, roleID, privilegeID); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.repo.GetRole(ctx, roleID)
}

func (s *Service) checkPair(ctx context.Context, roleID, privilegeID int64) error {
	if _, err := s.repo.GetRole(ctx, roleID); err != nil {
		return err
	}
	exists, err := s.repo.PrivilegeExists(ctx, privilegeID)
	if err != nil {
		return err
	}
	if !exists {
		return shared.ErrNotFound
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.invalidator != nil {
		s.invalidator.InvalidateAll(ctx)
	}
}
