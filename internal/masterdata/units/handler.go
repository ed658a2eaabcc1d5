package units

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

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

// MountRoutes registers unit and main-unit routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/units", h.list)
	r.Post("/units", h.create)
	r.Get("/units/{id}", h.show)
	r.Put("/units/{id}", h.update)
	r.Delete("/units/{id}", h.delete)

	r.Get("/mainUnits", h.listMain)
	r.Post("/mainUnits", h.createMain)
	r.Delete("/mainUnits/{id}", h.deleteMain)
}

func listFilters(r *http.Request) mdshared.ListFilters {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return mdshared.ListFilters{
		CompanyID: shared.SessionFromContext(r.Context()).Company(),
		Page:      page,
		Limit:     limit,
		Search:    r.URL.Query().Get("search"),
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := listFilters(r)
	list, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list units failed", slog.Any("error", err))
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, map[string]any{
		"units":      list,
		"pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

type unitRequest struct {
	Name       string          `json:"name"`
	MainUnitID *int64          `json:"mainUnitId"`
	Factor     decimal.Decimal `json:"factor"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req unitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	unit, err := h.service.Create(r.Context(), Unit{
		CompanyID:  shared.SessionFromContext(r.Context()).Company(),
		Name:       req.Name,
		MainUnitID: req.MainUnitID,
		Factor:     req.Factor,
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Created(w, map[string]any{"unit": unit})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid unit ID.")
		return
	}
	unit, err := h.service.Get(r.Context(), shared.SessionFromContext(r.Context()).Company(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, map[string]any{"unit": unit})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid unit ID.")
		return
	}
	var req unitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	err = h.service.Update(r.Context(), Unit{
		ID:         id,
		CompanyID:  shared.SessionFromContext(r.Context()).Company(),
		Name:       req.Name,
		MainUnitID: req.MainUnitID,
		Factor:     req.Factor,
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Saved(w, "Unit updated.", nil)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid unit ID.")
		return
	}
	if err := h.service.Delete(r.Context(), shared.SessionFromContext(r.Context()).Company(), id); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Saved(w, "Unit deleted.", nil)
}

func (h *Handler) listMain(w http.ResponseWriter, r *http.Request) {
	filters := listFilters(r)
	list, total, err := h.service.ListMain(r.Context(), filters)
	if err != nil {
		h.logger.Error("list main units failed", slog.Any("error", err))
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, map[string]any{
		"mainUnits":  list,
		"pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) createMain(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	mu, err := h.service.CreateMain(r.Context(), MainUnit{
		CompanyID: shared.SessionFromContext(r.Context()).Company(),
		Name:      req.Name,
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Created(w, map[string]any{"mainUnit": mu})
}

func (h *Handler) deleteMain(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid main unit ID.")
		return
	}
	if err := h.service.DeleteMain(r.Context(), shared.SessionFromContext(r.Context()).Company(), id); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Saved(w, "Main unit deleted.", nil)
}
