package companies

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/merobill/merobill/internal/fiscal"
	"github.com/merobill/merobill/internal/platform/httpx"
	"github.com/merobill/merobill/internal/shared"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	fiscal   *fiscal.Resolver
	years    fiscal.Repository
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, resolver *fiscal.Resolver, years fiscal.Repository) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		fiscal:   resolver,
		years:    years,
		validate: validator.New(),
	}
}

// MountRoutes registers company and fiscal-year routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/companies", h.list)
	r.Post("/companies", h.register)
	r.Post("/select-company", h.selectCompany)
	r.Get("/fiscal-years", h.listFiscalYears)
	r.Post("/switch-fiscal-year", h.switchFiscalYear)
	r.Post("/set-current-fiscal-year", h.setCurrentFiscalYear)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	list, err := h.service.ListForUser(r.Context(), sess.User())
	if err != nil {
		h.logger.Error("list companies failed", slog.Any("error", err))
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, map[string]any{"companies": list})
}

type registerRequest struct {
	Name      string `json:"name" validate:"required,min=2"`
	TradeType string `json:"tradeType" validate:"required,oneof=retailer wholesaler distributor"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	PAN       string `json:"pan"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())

	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Company name and a valid trade type are required.")
		return
	}

	company, err := h.service.Register(r.Context(), Company{
		Name:      req.Name,
		TradeType: req.TradeType,
		Address:   req.Address,
		Phone:     req.Phone,
		PAN:       req.PAN,
	}, sess.User())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Created(w, map[string]any{"company": company})
}

type selectCompanyRequest struct {
	CompanyID int64 `json:"companyId" validate:"required,gt=0"`
}

func (h *Handler) selectCompany(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())

	var req selectCompanyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "companyId is required.")
		return
	}

	company, role, err := h.service.Select(r.Context(), sess.User(), req.CompanyID)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	// Switching companies drops the previous fiscal snapshot.
	sess.SetCompany(company.ID)

	httpx.Saved(w, "Company selected.", map[string]any{"company": company, "role": role})
}

func (h *Handler) listFiscalYears(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess.Company() == 0 {
		httpx.Fail(w, http.StatusBadRequest, shared.ErrNoCompany.Error())
		return
	}
	years, err := h.years.ListByCompany(r.Context(), sess.Company())
	if err != nil {
		h.logger.Error("list fiscal years failed", slog.Any("error", err))
		httpx.Error(w, err)
		return
	}

	var current *shared.FiscalSnapshot
	if snap, err := h.fiscal.Resolve(r.Context(), sess); err == nil {
		current = snap
	}
	httpx.OK(w, map[string]any{"fiscalYears": years, "currentFiscalYear": current})
}

type fiscalYearRequest struct {
	FiscalYearID int64 `json:"fiscalYearId" validate:"required,gt=0"`
}

func (h *Handler) switchFiscalYear(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())

	var req fiscalYearRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "fiscalYearId is required.")
		return
	}

	snap, err := h.fiscal.Switch(r.Context(), sess, req.FiscalYearID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Saved(w, "Fiscal year switched.", map[string]any{"currentFiscalYear": snap})
}

func (h *Handler) setCurrentFiscalYear(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess.Company() == 0 {
		httpx.Fail(w, http.StatusBadRequest, shared.ErrNoCompany.Error())
		return
	}

	var req fiscalYearRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "fiscalYearId is required.")
		return
	}

	year, err := h.years.Get(r.Context(), req.FiscalYearID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if year.CompanyID != sess.Company() {
		httpx.Fail(w, http.StatusForbidden, shared.ErrForbidden.Error())
		return
	}

	if err := h.service.SetCurrentFiscalYear(r.Context(), sess.Company(), req.FiscalYearID); err != nil {
		httpx.Error(w, err)
		return
	}
	sess.SetFiscal(year.Snapshot())
	httpx.Saved(w, "Current fiscal year updated.", map[string]any{"currentFiscalYear": year.Snapshot()})
}
