package purchases

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/merobill/merobill/internal/billing"
	"github.com/merobill/merobill/internal/fiscal"
	"github.com/merobill/merobill/internal/platform/httpx"
	"github.com/merobill/merobill/internal/shared"
	"github.com/merobill/merobill/internal/transactions"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
	fiscal  *fiscal.Resolver
	vatRate decimal.Decimal
}

func NewHandler(logger *slog.Logger, service *Service, resolver *fiscal.Resolver, vatRate decimal.Decimal) *Handler {
	return &Handler{logger: logger, service: service, fiscal: resolver, vatRate: vatRate}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/purchases", h.post(transactions.ClassPurchase))
	r.Get("/purchases", h.list(transactions.ClassPurchase))
	r.Get("/purchases/{id}", h.show)

	r.Post("/purchase-returns", h.post(transactions.ClassPurchaseReturn))
	r.Get("/purchase-returns", h.list(transactions.ClassPurchaseReturn))
}

type postRequest struct {
	AccountID       int64            `json:"accountId"`
	PartyBillNumber string           `json:"partyBillNumber"`
	Date            time.Time        `json:"date"`
	NepaliDate      string           `json:"nepaliDate"`
	Lines           []billing.Line   `json:"lines"`
	DiscountPercent decimal.Decimal  `json:"discountPercent"`
	DiscountAmount  decimal.Decimal  `json:"discountAmount"`
	VATMode         string           `json:"vatMode"`
	AutoRoundOff    bool             `json:"autoRoundOff"`
	ManualRoundOff  *decimal.Decimal `json:"manualRoundOff"`
	TotalAmount     decimal.Decimal  `json:"totalAmount"`
}

func (h *Handler) post(class transactions.Class) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		snap, err := h.fiscal.Resolve(r.Context(), sess)
		if err != nil {
			httpx.Error(w, err)
			return
		}

		var req postRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Fail(w, http.StatusBadRequest, "Invalid request body.")
			return
		}

		vatMode := req.VATMode
		if vatMode == "" {
			vatMode = billing.VATModeAll
		}

		voucher, conflict, err := h.service.Post(r.Context(), PostContext{
			SessionID:    sess.ID,
			CompanyID:    sess.Company(),
			UserID:       sess.User(),
			FiscalYearID: snap.ID,
		}, Submission{
			Class:           class,
			AccountID:       req.AccountID,
			PartyBillNumber: req.PartyBillNumber,
			Date:            req.Date,
			NepaliDate:      req.NepaliDate,
			Draft: billing.Draft{
				Lines:           req.Lines,
				DiscountPercent: req.DiscountPercent,
				DiscountAmount:  req.DiscountAmount,
				VATMode:         vatMode,
				VATRate:         h.vatRate,
				AutoRoundOff:    req.AutoRoundOff,
				ManualRoundOff:  req.ManualRoundOff,
			},
			DeclaredTotal: req.TotalAmount,
		})
		if err != nil {
			h.logger.Error("post voucher failed",
				slog.String("class", string(class)), slog.Any("error", err))
			httpx.Error(w, err)
			return
		}

		data := map[string]any{"voucher": voucher}
		message := "Voucher saved."
		if conflict != nil {
			data["warning"] = conflict
			message = "Voucher saved. Bill number " + voucher.PartyBillNumber +
				" was already used by " + conflict.PartyName + " on " + conflict.NepaliDate + "."
		}
		httpx.JSON(w, http.StatusCreated, httpx.Envelope{Success: true, Message: message, Data: data})
	}
}

func (h *Handler) list(class transactions.Class) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		snap, err := h.fiscal.Resolve(r.Context(), sess)
		if err != nil {
			httpx.Error(w, err)
			return
		}

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		vouchers, total, err := h.service.List(r.Context(), sess.Company(), snap.ID, class, page, limit)
		if err != nil {
			h.logger.Error("list vouchers failed",
				slog.String("class", string(class)), slog.Any("error", err))
			httpx.Error(w, err)
			return
		}
		if vouchers == nil {
			vouchers = []Voucher{}
		}
		httpx.OK(w, map[string]any{
			"vouchers":   vouchers,
			"pagination": shared.NewPagination(page, limit, total),
		})
	}
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid voucher ID.")
		return
	}
	voucher, err := h.service.Get(r.Context(), shared.SessionFromContext(r.Context()).Company(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, map[string]any{"voucher": voucher})
}
