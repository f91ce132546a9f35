package rbac

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func seedCache(t *testing.T, client *redis.Client, userID int64, names []string) {
	t.Helper()
	payload, err := json.Marshal(names)
	require.NoError(t, err)
	require.NoError(t, client.Set(context.Background(), cacheKey(userID), payload, time.Minute).Err())
}

func TestEffectivePrivilegesServedFromCache(t *testing.T) {
	_, client := newTestCache(t)
	// nil pool: a cache hit must never touch postgres.
	svc := NewService(nil, client, time.Minute)
	seedCache(t, client, 7, []string{"READ_ROLES", "READ_REPORTS"})

	names, err := svc.EffectivePrivileges(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, []string{"READ_ROLES", "READ_REPORTS"}, names)
}

func TestInvalidateUserDropsOnlyThatUser(t *testing.T) {
	mr, client := newTestCache(t)
	svc := NewService(nil, client, time.Minute)
	seedCache(t, client, 7, []string{"READ_ROLES"})
	seedCache(t, client, 8, []string{"READ_REPORTS"})

	svc.InvalidateUser(context.Background(), 7)

	require.False(t, mr.Exists(cacheKey(7)))
	require.True(t, mr.Exists(cacheKey(8)))
}

func TestInvalidateAllDropsEveryPrivilegeKey(t *testing.T) {
	mr, client := newTestCache(t)
	svc := NewService(nil, client, time.Minute)
	seedCache(t, client, 7, []string{"READ_ROLES"})
	seedCache(t, client, 8, []string{"READ_REPORTS"})
	require.NoError(t, client.Set(context.Background(), "unrelated:key", "1", time.Minute).Err())

	svc.InvalidateAll(context.Background())

	require.False(t, mr.Exists(cacheKey(7)))
	require.False(t, mr.Exists(cacheKey(8)))
	require.True(t, mr.Exists("unrelated:key"))
}

func TestInvalidateWithoutCacheIsNoop(t *testing.T) {
	svc := NewService(nil, nil, time.Minute)

	// Must not panic with caching disabled.
	svc.InvalidateUser(context.Background(), 7)
	svc.InvalidateAll(context.Background())
}

func TestHasAnyPrivilege(t *testing.T) {
	require.True(t, hasAnyPrivilege([]string{"READ_ROLES"}, []string{"READ_ROLES"}))
	require.True(t, hasAnyPrivilege([]string{"read_roles"}, []string{"READ_ROLES"}))
	require.False(t, hasAnyPrivilege([]string{"READ_REPORTS"}, []string{"READ_ROLES"}))
	require.True(t, hasAnyPrivilege(nil, nil))
}

func TestHasAnyPrivilegeSuperPrivilegeShortCircuits(t *testing.T) {
	require.True(t, hasAnyPrivilege([]string{SuperPrivilege}, []string{"ANYTHING_AT_ALL"}))
}

func TestNormalizePrivileges(t *testing.T) {
	normalized := normalizePrivileges([]string{" read_roles ", "READ_ROLES", "", "manage_role_privileges"})
	require.Len(t, normalized, 2)
	require.ElementsMatch(t, []string{"READ_ROLES", "MANAGE_ROLE_PRIVILEGES"}, normalized)
}
