package roles

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridian-crm/meridian-crm/internal/privileges"
	"github.com/meridian-crm/meridian-crm/internal/shared"
)

type memoryRoleRepo struct {
	roles      map[int64]*Role
	privileges map[int64]*privileges.Privilege
	grants     map[int64][]int64
	nextID     int64
}

func newMemoryRoleRepo() *memoryRoleRepo {
	return &memoryRoleRepo{
		roles:      make(map[int64]*Role),
		privileges: make(map[int64]*privileges.Privilege),
		grants:     make(map[int64][]int64),
	}
}

func (r *memoryRoleRepo) addRole(name string, system bool, userCount int64) *Role {
	r.nextID++
	role := &Role{
		ID:         r.nextID,
		Name:       name,
		SystemRole: system,
		UserCount:  userCount,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	r.roles[role.ID] = role
	return role
}

func (r *memoryRoleRepo) addPrivilege(name string) *privileges.Privilege {
	r.nextID++
	p := &privileges.Privilege{ID: r.nextID, Name: name}
	r.privileges[p.ID] = p
	return p
}

func (r *memoryRoleRepo) ListRoles(ctx context.Context) ([]Role, error) {
	out := make([]Role, 0, len(r.roles))
	for _, role := range r.roles {
		out = append(out, *role)
	}
	return out, nil
}

func (r *memoryRoleRepo) GetRole(ctx context.Context, id int64) (*Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *role
	return &copied, nil
}

func (r *memoryRoleRepo) CreateRole(ctx context.Context, name, description string) (*Role, error) {
	for _, role := range r.roles {
		if role.Name == name {
			return nil, shared.ErrRoleExists
		}
	}
	role := r.addRole(name, false, 0)
	role.Description = description
	return role, nil
}

func (r *memoryRoleRepo) UpdateRole(ctx context.Context, id int64, description string) (*Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	role.Description = description
	copied := *role
	return &copied, nil
}

func (r *memoryRoleRepo) DeleteRole(ctx context.Context, id int64) error {
	if _, ok := r.roles[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.roles, id)
	return nil
}

func (r *memoryRoleRepo) ListRolePrivileges(ctx context.Context, roleID int64) ([]privileges.Privilege, error) {
	var out []privileges.Privilege
	for _, id := range r.grants[roleID] {
		if p, ok := r.privileges[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memoryRoleRepo) ReplaceRolePrivileges(ctx context.Context, roleID int64, privilegeIDs []int64) error {
	for _, id := range privilegeIDs {
		if _, ok := r.privileges[id]; !ok {
			return shared.ErrNotFound
		}
	}
	r.grants[roleID] = append([]int64(nil), privilegeIDs...)
	return nil
}

func (r *memoryRoleRepo) AttachPrivilege(ctx context.Context, roleID, privilegeID int64) error {
	for _, id := range r.grants[roleID] {
		if id == privilegeID {
			return nil
		}
	}
	r.grants[roleID] = append(r.grants[roleID], privilegeID)
	return nil
}

func (r *memoryRoleRepo) DetachPrivilege(ctx context.Context, roleID, privilegeID int64) error {
	kept := r.grants[roleID][:0]
	for _, id := range r.grants[roleID] {
		if id != privilegeID {
			kept = append(kept, id)
		}
	}
	r.grants[roleID] = kept
	return nil
}

func (r *memoryRoleRepo) PrivilegeExists(ctx context.Context, privilegeID int64) (bool, error) {
	_, ok := r.privileges[privilegeID]
	return ok, nil
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) InvalidateAll(ctx context.Context) {
	c.calls++
}

func TestCreateRoleRejectsMalformedNames(t *testing.T) {
	svc := NewService(newMemoryRoleRepo(), nil)

	for _, name := range []string{"admin", "ROLE_lowercase", "ROLE_", "MANAGER", "ROLE_WITH SPACE"} {
		_, err := svc.CreateRole(context.Background(), name, "")
		require.ErrorIs(t, err, shared.ErrValidation, "name %q should be rejected", name)
	}
}

func TestCreateRoleAcceptsWellFormedName(t *testing.T) {
	repo := newMemoryRoleRepo()
	svc := NewService(repo, nil)

	role, err := svc.CreateRole(context.Background(), "  ROLE_SUPPORT  ", "support staff")
	require.NoError(t, err)
	require.Equal(t, "ROLE_SUPPORT", role.Name)
	require.False(t, role.SystemRole)
	require.Zero(t, role.UserCount)
}

func TestDeleteRoleRefusesSystemRole(t *testing.T) {
	repo := newMemoryRoleRepo()
	admin := repo.addRole("ROLE_ADMIN", true, 0)
	svc := NewService(repo, nil)

	err := svc.DeleteRole(context.Background(), admin.ID)
	require.ErrorIs(t, err, shared.ErrSystemRole)
	require.Contains(t, repo.roles, admin.ID)
}

func TestDeleteRoleRefusesRoleWithUsers(t *testing.T) {
	repo := newMemoryRoleRepo()
	role := repo.addRole("ROLE_SUPPORT", false, 3)
	svc := NewService(repo, nil)

	err := svc.DeleteRole(context.Background(), role.ID)
	require.ErrorIs(t, err, shared.ErrRoleInUse)
	require.Contains(t, repo.roles, role.ID)
}

func TestDeleteRoleRemovesUnusedCustomRole(t *testing.T) {
	repo := newMemoryRoleRepo()
	role := repo.addRole("ROLE_SUPPORT", false, 0)
	inv := &countingInvalidator{}
	svc := NewService(repo, inv)

	require.NoError(t, svc.DeleteRole(context.Background(), role.ID))
	require.NotContains(t, repo.roles, role.ID)
	require.Equal(t, 1, inv.calls)
}

func TestReplacePrivilegesAcceptsEmptySet(t *testing.T) {
	repo := newMemoryRoleRepo()
	role := repo.addRole("ROLE_SUPPORT", false, 0)
	p := repo.addPrivilege("READ_REPORTS")
	repo.grants[role.ID] = []int64{p.ID}
	inv := &countingInvalidator{}
	svc := NewService(repo, inv)

	_, err := svc.ReplacePrivileges(context.Background(), role.ID, []int64{})
	require.NoError(t, err)
	require.Empty(t, repo.grants[role.ID])
	require.Equal(t, 1, inv.calls)
}

func TestReplacePrivilegesUnknownRole(t *testing.T) {
	svc := NewService(newMemoryRoleRepo(), nil)

	_, err := svc.ReplacePrivileges(context.Background(), 99, []int64{1})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAddPrivilegeUnknownPrivilege(t *testing.T) {
	repo := newMemoryRoleRepo()
	role := repo.addRole("ROLE_SUPPORT", false, 0)
	svc := NewService(repo, nil)

	_, err := svc.AddPrivilege(context.Background(), role.ID, 404)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAddAndRemovePrivilegeInvalidateCache(t *testing.T) {
	repo := newMemoryRoleRepo()
	role := repo.addRole("ROLE_SUPPORT", false, 0)
	p := repo.addPrivilege("READ_REPORTS")
	inv := &countingInvalidator{}
	svc := NewService(repo, inv)

	_, err := svc.AddPrivilege(context.Background(), role.ID, p.ID)
	require.NoError(t, err)
	require.Equal(t, []int64{p.ID}, repo.grants[role.ID])

	_, err = svc.RemovePrivilege(context.Background(), role.ID, p.ID)
	require.NoError(t, err)
	require.Empty(t, repo.grants[role.ID])
	require.Equal(t, 2, inv.calls)
}
