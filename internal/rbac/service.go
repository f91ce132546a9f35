// Package rbac resolves effective privileges for authenticated users and
// guards HTTP routes with privilege requirements.
package rbac

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// AdminRole holds every privilege implicitly.
const AdminRole = "ROLE_ADMIN"

// SuperPrivilege short-circuits all privilege checks.
const SuperPrivilege = "SYSTEM_ADMIN"

const cacheKeyPrefix = "rbac:privileges:"

// Service computes effective privilege names per user, with a TTL-bounded
// redis cache in front of postgres.
type Service struct {
	pool     *pgxpool.Pool
	cache    *redis.Client
	cacheTTL time.Duration
}

// NewService constructs a Service. cache may be nil, disabling caching.
func NewService(pool *pgxpool.Pool, cache *redis.Client, cacheTTL time.Duration) *Service {
	return &Service{pool: pool, cache: cache, cacheTTL: cacheTTL}
}

// EffectivePrivileges returns deduplicated privilege names granted to the
// user through any of their roles.
func (s *Service) EffectivePrivileges(ctx context.Context, userID int64) ([]string, error) {
	if cached, ok := s.fromCache(ctx, userID); ok {
		return cached, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT p.name FROM privileges p
		JOIN role_privileges rp ON rp.privilege_id = p.id
		JOIN user_roles ur ON ur.role_id = rp.role_id
		WHERE ur.user_id = $1 ORDER BY p.name`, userID)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}
	s.toCache(ctx, userID, names)
	return names, nil
}

// InvalidateUser drops the cached privileges for one user, called after the
// user's role assignment changes.
func (s *Service) InvalidateUser(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	s.cache.Del(ctx, cacheKey(userID))
}

// InvalidateAll drops every cached privilege set, called after a role's
// privilege set or a privilege itself changes.
func (s *Service) InvalidateAll(ctx context.Context) {
	if s.cache == nil {
		return
	}
	iter := s.cache.Scan(ctx, 0, cacheKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		s.cache.Del(ctx, iter.Val())
	}
}

func (s *Service) fromCache(ctx context.Context, userID int64) ([]string, bool) {
	if s.cache == nil {
		return nil, false
	}
	payload, err := s.cache.Get(ctx, cacheKey(userID)).Bytes()
	if err != nil {
		return nil, false
	}
	var names []string
	if err := json.Unmarshal(payload, &names); err != nil {
		return nil, false
	}
	return names, true
}

func (s *Service) toCache(ctx context.Context, userID int64, names []string) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(names)
	if err != nil {
		return
	}
	s.cache.Set(ctx, cacheKey(userID), payload, s.cacheTTL)
}

func cacheKey(userID int64) string {
	return cacheKeyPrefix + strconv.FormatInt(userID, 10)
}
