package privileges

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-crm/meridian-crm/internal/platform/httpx"
	"github.com/meridian-crm/meridian-crm/internal/rbac"
	"github.com/meridian-crm/meridian-crm/internal/shared"
)

// Handler manages privilege management endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers privilege routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.SuperPrivilege, "READ_ROLES", "MANAGE_ROLE_PRIVILEGES"))
		r.Get("/", h.list)
		r.Get("/categories", h.categories)
		r.Get("/category/{category}", h.listByCategory)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.SuperPrivilege))
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

type createPrivilegeRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=255"`
	Category    string `json:"category" validate:"max=100"`
}

// updatePrivilegeRequest has no name field on purpose: a privilege's name
// cannot change after creation, so the payload never reaches the service.
type updatePrivilegeRequest struct {
	Description string `json:"description" validate:"max=255"`
	Category    string `json:"category" validate:"max=100"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	privs, err := h.service.ListPrivileges(r.Context())
	if err != nil {
		h.logger.Error("list privileges failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if r.URL.Query().Get("grouped") == "true" {
		grouped := GroupByCategory(privs)
		out := make(map[string][]Response, len(grouped))
		for bucket, members := range grouped {
			out[bucket] = ToResponses(members)
		}
		httpx.JSON(w, http.StatusOK, out)
		return
	}
	httpx.JSON(w, http.StatusOK, ToResponses(privs))
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	httpx.JSON(w, http.StatusOK, categories)
}

func (h *Handler) listByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	privs, err := h.service.ListByCategory(r.Context(), category)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ToResponses(privs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	p, err := h.service.GetPrivilege(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ToResponse(p))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createPrivilegeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := shared.ValidateStruct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.service.CreatePrivilege(r.Context(), req.Name, req.Description, req.Category)
	if err != nil {
		h.logger.Warn("create privilege failed", slog.String("name", req.Name), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, ToResponse(p))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req updatePrivilegeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := shared.ValidateStruct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.service.UpdatePrivilege(r.Context(), id, req.Description, req.Category)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ToResponse(p))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeletePrivilege(r.Context(), id); err != nil {
		h.logger.Warn("delete privilege failed", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return 0, false
	}
	return id, true
}
