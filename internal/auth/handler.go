package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-crm/meridian-crm/internal/platform/httpx"
	"github.com/meridian-crm/meridian-crm/internal/shared"
)

// Handler manages credential exchange endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the unauthenticated auth routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.login)
	r.Post("/register", h.register)
}

// MountSessionRoutes registers routes that require an authenticated caller.
func (h *Handler) MountSessionRoutes(r chi.Router) {
	r.Post("/logout", h.logout)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Username           string `json:"username" validate:"required,min=3,max=50"`
	Email              string `json:"email" validate:"required,email"`
	Password           string `json:"password" validate:"required,min=6"`
	FirstName          string `json:"firstName" validate:"max=100"`
	LastName           string `json:"lastName" validate:"max=100"`
	LanguagePreference string `json:"languagePreference" validate:"omitempty,bcp47_language_tag"`
}

type sessionResponse struct {
	Token              string   `json:"token"`
	Type               string   `json:"type"`
	ID                 int64    `json:"id"`
	Username           string   `json:"username"`
	Email              string   `json:"email"`
	FirstName          string   `json:"firstName,omitempty"`
	LastName           string   `json:"lastName,omitempty"`
	Roles              []string `json:"roles"`
	LanguagePreference string   `json:"languagePreference"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := shared.ValidateStruct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	session, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Warn("login failed", slog.String("username", req.Username))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := shared.ValidateStruct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	session, err := h.service.Register(r.Context(), NewAccount{
		Username:           req.Username,
		Email:              req.Email,
		Password:           req.Password,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		LanguagePreference: req.LanguagePreference,
	})
	if err != nil {
		h.logger.Warn("registration failed", slog.String("username", req.Username), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toSessionResponse(session))
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, shared.ErrInvalidCredentials)
		return
	}
	if err := h.service.RevokeToken(r.Context(), principal.TokenID); err != nil {
		h.logger.Warn("logout failed", slog.String("username", principal.Username), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func toSessionResponse(session *Session) sessionResponse {
	account := session.Account
	return sessionResponse{
		Token:              session.Token,
		Type:               session.Type,
		ID:                 account.ID,
		Username:           account.Username,
		Email:              account.Email,
		FirstName:          account.FirstName,
		LastName:           account.LastName,
		Roles:              account.Roles,
		LanguagePreference: account.LanguagePreference,
	}
}
