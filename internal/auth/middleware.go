package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/meridian-crm/meridian-crm/internal/platform/httpx"
	"github.com/meridian-crm/meridian-crm/internal/shared"
)

// Middleware authenticates bearer tokens and loads the principal into context.
type Middleware struct {
	service *Service
	logger  *slog.Logger
}

// NewMiddleware constructs the authentication middleware.
func NewMiddleware(service *Service, logger *slog.Logger) *Middleware {
	return &Middleware{service: service, logger: logger}
}

// Authenticate rejects requests without a valid, registered bearer token.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			httpx.RespondError(w, shared.ErrInvalidCredentials)
			return
		}
		principal, err := m.service.VerifyToken(r.Context(), token)
		if err != nil {
			m.logger.Debug("token rejected", slog.String("path", r.URL.Path))
			httpx.RespondError(w, shared.ErrInvalidCredentials)
			return
		}
		ctx := shared.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}
