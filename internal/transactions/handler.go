package transactions

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/merobill/merobill/internal/fiscal"
	"github.com/merobill/merobill/internal/platform/httpx"
	"github.com/merobill/merobill/internal/shared"
)

type Handler struct {
	logger *slog.Logger
	gate   *Gate
	fiscal *fiscal.Resolver
}

func NewHandler(logger *slog.Logger, gate *Gate, resolver *fiscal.Resolver) *Handler {
	return &Handler{logger: logger, gate: gate, fiscal: resolver}
}

// MountRoutes registers transaction history routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/transactions/{itemID}/{accountID}/{type}", h.list)
	r.Post("/transactions/invalidate", h.invalidate)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == 0 || sess.Company() == 0 {
		httpx.Fail(w, http.StatusBadRequest, "Missing session context.")
		return
	}

	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil || itemID <= 0 {
		httpx.Fail(w, http.StatusBadRequest, "Invalid item ID.")
		return
	}
	accountID, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil || accountID <= 0 {
		httpx.Fail(w, http.StatusBadRequest, "Invalid account ID.")
		return
	}
	class, err := ParseClass(chi.URLParam(r, "type"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Unknown transaction type.")
		return
	}

	snap, err := h.fiscal.Resolve(r.Context(), sess)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	res, err := h.gate.Fetch(r.Context(), FetchRequest{
		SessionID:    sess.ID,
		CompanyID:    sess.Company(),
		UserID:       sess.User(),
		FiscalYearID: snap.ID,
		ItemID:       itemID,
		AccountID:    accountID,
		Class:        class,
	})
	if err != nil {
		h.logger.Error("fetch transactions failed",
			slog.Int64("item", itemID), slog.Int64("account", accountID),
			slog.String("class", string(class)), slog.Any("error", err))
		httpx.Error(w, err)
		return
	}

	httpx.OK(w, map[string]any{
		"transactions":   res.Transactions,
		"displayEnabled": res.DisplayEnabled,
		"dateFormat":     snap.DateFormat,
	})
}

type invalidateRequest struct {
	AccountID int64 `json:"accountId"`
}

// invalidate drops the session's cached history for an account. Called by
// the entry form when the account selection changes; a late arrival after
// the form moved on is harmless.
func (h *Handler) invalidate(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.Fail(w, http.StatusBadRequest, "Missing session context.")
		return
	}

	var req invalidateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.AccountID <= 0 {
		httpx.Fail(w, http.StatusBadRequest, "accountId is required.")
		return
	}

	if err := h.gate.InvalidateAccount(r.Context(), sess.ID, req.AccountID); err != nil {
		h.logger.Warn("cache invalidation failed", slog.Any("error", err))
	}
	httpx.OK(w, nil)
}
