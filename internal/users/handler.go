package users

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-crm/meridian-crm/internal/platform/httpx"
	"github.com/meridian-crm/meridian-crm/internal/rbac"
	"github.com/meridian-crm/meridian-crm/internal/shared"
)

// Handler manages user management endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers user routes. Preference updates are open to any
// authenticated user (the service checks ownership); the rest is admin only.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Patch("/{id}/preferences", h.updatePreferences)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAdmin)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Put("/{id}/role", h.replaceRole)
		r.Patch("/{id}/status", h.setStatus)
	})
}

type preferencesRequest struct {
	LanguagePreference string `json:"languagePreference" validate:"required"`
}

type replaceRoleRequest struct {
	RoleID int64 `json:"roleId" validate:"required,gt=0"`
}

type statusRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type roleSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	SystemRole  bool   `json:"systemRole"`
	UserCount   int64  `json:"userCount"`
}

type userResponse struct {
	ID                 int64         `json:"id"`
	Username           string        `json:"username"`
	Email              string        `json:"email"`
	FirstName          string        `json:"firstName,omitempty"`
	LastName           string        `json:"lastName,omitempty"`
	Enabled            bool          `json:"enabled"`
	LanguagePreference string        `json:"languagePreference"`
	Roles              []roleSummary `json:"roles"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]userResponse, 0, len(list))
	for i := range list {
		out = append(out, toUserResponse(&list[i]))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) updatePreferences(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req preferencesRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := shared.ValidateStruct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	if err := h.service.UpdateLanguagePreference(r.Context(), principal, id, req.LanguagePreference); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) replaceRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req replaceRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := shared.ValidateStruct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	user, err := h.service.ReplaceRole(r.Context(), principal, id, req.RoleID)
	if err != nil {
		h.logger.Warn("replace role failed", slog.Int64("user_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := shared.ValidateStruct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.SetEnabled(r.Context(), id, *req.Enabled); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func toUserResponse(u *User) userResponse {
	rolesOut := make([]roleSummary, 0, len(u.Roles))
	for _, role := range u.Roles {
		rolesOut = append(rolesOut, roleSummary{
			ID:          role.ID,
			Name:        role.Name,
			Description: role.Description,
			SystemRole:  role.SystemRole,
			UserCount:   role.UserCount,
		})
	}
	return userResponse{
		ID:                 u.ID,
		Username:           u.Username,
		Email:              u.Email,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Enabled:            u.Enabled,
		LanguagePreference: u.LanguagePreference,
		Roles:              rolesOut,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return 0, false
	}
	return id, true
}
