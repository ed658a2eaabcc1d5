package accounts

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
	r.Get("/accounts", h.list)
	r.Post("/accounts", h.create)
	r.Get("/accounts/{id}", h.show)
	r.Put("/accounts/{id}", h.update)
	r.Delete("/accounts/{id}", h.delete)
}

type accountRequest struct {
	Name        string `json:"name"`
	AccountType string `json:"accountType"`
	PAN         string `json:"pan"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
}

func (req accountRequest) toAccount(companyID, id int64) Account {
	return Account{
		ID:          id,
		CompanyID:   companyID,
		Name:        req.Name,
		AccountType: req.AccountType,
		PAN:         req.PAN,
		Address:     req.Address,
		Phone:       req.Phone,
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
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

	list, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list accounts failed", slog.Any("error", err))
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, map[string]any{
		"accounts":   list,
		"pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid account ID.")
		return
	}
	account, err := h.service.Get(r.Context(), shared.SessionFromContext(r.Context()).Company(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, map[string]any{"account": account})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	account, err := h.service.Create(r.Context(), req.toAccount(shared.SessionFromContext(r.Context()).Company(), 0))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Created(w, map[string]any{"account": account})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid account ID.")
		return
	}
	var req accountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := h.service.Update(r.Context(), req.toAccount(shared.SessionFromContext(r.Context()).Company(), id)); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Saved(w, "Account updated.", nil)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid account ID.")
		return
	}
	if err := h.service.Delete(r.Context(), shared.SessionFromContext(r.Context()).Company(), id); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Saved(w, "Account deleted.", nil)
}
