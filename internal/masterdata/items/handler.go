package items

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

// MountRoutes registers item routes. The list route keeps its historical
// /items-company name.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/items-company", h.list)
	r.Post("/items-company", h.create)
	r.Get("/items-company/{id}", h.show)
	r.Put("/items-company/{id}", h.update)
	r.Delete("/items-company/{id}", h.delete)
}

type itemRequest struct {
	Name           string          `json:"name"`
	UnitID         *int64          `json:"unitId"`
	PurchasePrice  decimal.Decimal `json:"purchasePrice"`
	SellingPrice   decimal.Decimal `json:"sellingPrice"`
	Vatable        bool            `json:"vatable"`
	CompositionIDs []int64         `json:"compositionIds"`
}

func (req itemRequest) toItem(companyID, id int64) Item {
	return Item{
		ID:             id,
		CompanyID:      companyID,
		Name:           req.Name,
		UnitID:         req.UnitID,
		PurchasePrice:  req.PurchasePrice,
		SellingPrice:   req.SellingPrice,
		Vatable:        req.Vatable,
		CompositionIDs: req.CompositionIDs,
	}
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

	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list items failed", slog.Any("error", err))
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, map[string]any{
		"items":      items,
		"pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	item, err := h.service.Create(r.Context(), req.toItem(shared.SessionFromContext(r.Context()).Company(), 0))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Created(w, map[string]any{"item": item})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid item ID.")
		return
	}
	item, err := h.service.Get(r.Context(), shared.SessionFromContext(r.Context()).Company(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, map[string]any{"item": item})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid item ID.")
		return
	}
	var req itemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := h.service.Update(r.Context(), req.toItem(shared.SessionFromContext(r.Context()).Company(), id)); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Saved(w, "Item updated.", nil)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid item ID.")
		return
	}
	if err := h.service.Delete(r.Context(), shared.SessionFromContext(r.Context()).Company(), id); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Saved(w, "Item deleted.", nil)
}
