package compositions

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	mdshared "github.com/merobill/merobill/internal/masterdata/shared"
	"github.com/merobill/merobill/internal/platform/httpx"
	"github.com/merobill/merobill/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/compositions", h.list)
	r.Post("/compositions", h.create)
	r.Put("/compositions/{id}", h.update)
	r.Delete("/compositions/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	filters := mdshared.ListFilters{
		CompanyID: shared.SessionFromContext(r.Context()).Company(),
		Page:      page,
		Limit:     limit,
		Search:    r.URL.Query().Get("search"),
	}

	comps, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list compositions failed", slog.Any("error", err))
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, map[string]any{
		"compositions": comps,
		"pagination":   shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	comp, err := h.service.Create(r.Context(), Composition{
		CompanyID: shared.SessionFromContext(r.Context()).Company(),
		Name:      req.Name,
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Created(w, map[string]any{"composition": comp})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid composition ID.")
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	err = h.service.Update(r.Context(), Composition{
		ID:        id,
		CompanyID: shared.SessionFromContext(r.Context()).Company(),
		Name:      req.Name,
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Saved(w, "Composition updated.", nil)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid composition ID.")
		return
	}
	if err := h.service.Delete(r.Context(), shared.SessionFromContext(r.Context()).Company(), id); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Saved(w, "Composition deleted.", nil)
}
