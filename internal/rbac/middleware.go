package rbac

import (
	"net/http"
	"strings"

	"log/slog"

	"github.com/meridian-crm/meridian-crm/internal/platform/httpx"
	"github.com/meridian-crm/meridian-crm/internal/shared"
)

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// RequireAdmin ensures the current user holds the admin role.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := shared.PrincipalFromContext(r.Context())
		if principal == nil || !principal.HasRole(AdminRole) {
			httpx.RespondError(w, shared.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAny ensures the current user has at least one of the required
// privileges. Admins and SYSTEM_ADMIN holders always pass.
func (m Middleware) RequireAny(privs ...string) func(http.Handler) http.Handler {
	normalized := normalizePrivileges(privs)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := shared.PrincipalFromContext(r.Context())
			if principal == nil {
				httpx.RespondError(w, shared.ErrForbidden)
				return
			}
			if principal.HasRole(AdminRole) || len(normalized) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			granted, err := m.Service.EffectivePrivileges(r.Context(), principal.UserID)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("rbac require any", slog.Any("error", err))
				}
				httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
				return
			}
			if hasAnyPrivilege(granted, normalized) {
				next.ServeHTTP(w, r)
				return
			}
			httpx.RespondError(w, shared.ErrForbidden)
		})
	}
}

func normalizePrivileges(privs []string) []string {
	unique := make(map[string]struct{}, len(privs))
	for _, p := range privs {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p == "" {
			continue
		}
		unique[p] = struct{}{}
	}
	normalized := make([]string, 0, len(unique))
	for p := range unique {
		normalized = append(normalized, p)
	}
	return normalized
}

func hasAnyPrivilege(granted []string, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(granted)+1)
	for _, p := range granted {
		set[strings.ToUpper(p)] = struct{}{}
	}
	if _, ok := set[SuperPrivilege]; ok {
		return true
	}
	for _, r := range required {
		if _, ok := set[r]; ok {
			return true
		}
	}
	return false
}
