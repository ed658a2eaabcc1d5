package settings

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/merobill/merobill/internal/auth"
	"github.com/merobill/merobill/internal/companies"
	"github.com/merobill/merobill/internal/fiscal"
	"github.com/merobill/merobill/internal/platform/httpx"
	"github.com/merobill/merobill/internal/shared"
)

// CompanySource reads company records for the response envelope.
type CompanySource interface {
	Get(ctx context.Context, id int64) (companies.Company, error)
}

// UserSource reads the acting user and their company role.
type UserSource interface {
	Current(ctx context.Context, userID int64) (*auth.User, error)
	RoleInCompany(ctx context.Context, userID, companyID int64) (string, error)
}

type Handler struct {
	logger    *slog.Logger
	service   *Service
	fiscal    *fiscal.Resolver
	companies CompanySource
	users     UserSource
}

func NewHandler(logger *slog.Logger, service *Service, resolver *fiscal.Resolver, companySource CompanySource, userSource UserSource) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		fiscal:    resolver,
		companies: companySource,
		users:     userSource,
	}
}

// flagAccess pairs the JSON field name of a boolean preference with its
// read and patch accessors.
type flagAccess struct {
	get   func(Settings) bool
	read  func(Patch) *bool
	write func(*Patch, bool)
}

var roundOffFlags = map[string]flagAccess{
	"roundOffSales": {
		get:   func(s Settings) bool { return s.RoundOffSales },
		read:  func(p Patch) *bool { return p.RoundOffSales },
		write: func(p *Patch, v bool) { p.RoundOffSales = &v },
	},
	"roundOffPurchase": {
		get:   func(s Settings) bool { return s.RoundOffPurchase },
		read:  func(p Patch) *bool { return p.RoundOffPurchase },
		write: func(p *Patch, v bool) { p.RoundOffPurchase = &v },
	},
	"roundOffSalesReturn": {
		get:   func(s Settings) bool { return s.RoundOffSalesReturn },
		read:  func(p Patch) *bool { return p.RoundOffSalesReturn },
		write: func(p *Patch, v bool) { p.RoundOffSalesReturn = &v },
	},
	"roundOffPurchaseReturn": {
		get:   func(s Settings) bool { return s.RoundOffPurchaseReturn },
		read:  func(p Patch) *bool { return p.RoundOffPurchaseReturn },
		write: func(p *Patch, v bool) { p.RoundOffPurchaseReturn = &v },
	},
}

var displayFlags = map[string]flagAccess{
	"displayTransactions": {
		get:   func(s Settings) bool { return s.DisplayTransactions },
		read:  func(p Patch) *bool { return p.DisplayTransactions },
		write: func(p *Patch, v bool) { p.DisplayTransactions = &v },
	},
	"displayTransactionsForPurchase": {
		get:   func(s Settings) bool { return s.DisplayTransactionsForPurchase },
		read:  func(p Patch) *bool { return p.DisplayTransactionsForPurchase },
		write: func(p *Patch, v bool) { p.DisplayTransactionsForPurchase = &v },
	},
	"displayTransactionsForSalesReturn": {
		get:   func(s Settings) bool { return s.DisplayTransactionsForSalesReturn },
		read:  func(p Patch) *bool { return p.DisplayTransactionsForSalesReturn },
		write: func(p *Patch, v bool) { p.DisplayTransactionsForSalesReturn = &v },
	},
	"displayTransactionsForPurchaseReturn": {
		get:   func(s Settings) bool { return s.DisplayTransactionsForPurchaseReturn },
		read:  func(p Patch) *bool { return p.DisplayTransactionsForPurchaseReturn },
		write: func(p *Patch, v bool) { p.DisplayTransactionsForPurchaseReturn = &v },
	},
}

// MountRoutes registers the settings endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/roundoff-sales", h.getRoundOff("roundOffSales"))
	r.Post("/roundoff-sales", h.postRoundOff("roundOffSales"))
	r.Get("/roundoff-purchase", h.getRoundOff("roundOffPurchase"))
	r.Post("/roundoff-purchase", h.postRoundOff("roundOffPurchase"))
	r.Get("/roundoff-sales-return", h.getRoundOff("roundOffSalesReturn"))
	r.Post("/roundoff-sales-return", h.postRoundOff("roundOffSalesReturn"))
	r.Get("/roundoff-purchase-return", h.getRoundOff("roundOffPurchaseReturn"))
	r.Post("/roundoff-purchase-return", h.postRoundOff("roundOffPurchaseReturn"))

	// Legacy display-preference routes keyed by (company, user) only.
	r.Get("/get-display-sales-transactions", h.getDisplayLegacy("displayTransactions"))
	r.Get("/get-display-purchase-transactions", h.getDisplayLegacy("displayTransactionsForPurchase"))
	r.Get("/get-display-sales-return-transactions", h.getDisplayLegacy("displayTransactionsForSalesReturn"))
	r.Get("/get-display-purchase-return-transactions", h.getDisplayLegacy("displayTransactionsForPurchaseReturn"))
	r.Post("/updateDisplayTransactionsForSales", h.postDisplayLegacy("displayTransactions"))
	r.Post("/updateDisplayTransactionsForPurchase", h.postDisplayLegacy("displayTransactionsForPurchase"))
	r.Post("/updateDisplayTransactionsForSalesReturn", h.postDisplayLegacy("displayTransactionsForSalesReturn"))
	r.Post("/updateDisplayTransactionsForPurchaseReturn", h.postDisplayLegacy("displayTransactionsForPurchaseReturn"))

	r.Post("/settings", h.create)
}

// getRoundOff resolves fiscal context and returns the page payload the
// round-off screens render from.
func (h *Handler) getRoundOff(flag string) http.HandlerFunc {
	access := roundOffFlags[flag]
	return func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())

		snap, err := h.fiscal.Resolve(r.Context(), sess)
		if err != nil {
			httpx.Error(w, err)
			return
		}

		key := Key{CompanyID: sess.Company(), UserID: sess.User(), FiscalYearID: snap.ID}

		// Independent reads; issued concurrently purely for latency.
		var (
			company companies.Company
			record  Settings
			user    *auth.User
			role    string
		)
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			var err error
			company, err = h.companies.Get(ctx, key.CompanyID)
			return err
		})
		g.Go(func() error {
			var err error
			record, err = h.service.GetOrDefaults(ctx, key)
			return err
		})
		g.Go(func() error {
			var err error
			user, err = h.users.Current(ctx, key.UserID)
			if err != nil {
				return err
			}
			role, err = h.users.RoleInCompany(ctx, key.UserID, key.CompanyID)
			return err
		})
		if err := g.Wait(); err != nil {
			h.logger.Error("load round-off settings failed", slog.String("flag", flag), slog.Any("error", err))
			httpx.Error(w, err)
			return
		}

		httpx.OK(w, map[string]any{
			"company":             company,
			"currentFiscalYear":   snap,
			"settings":            record,
			"user":                user,
			"theme":               user.Theme,
			"isAdminOrSupervisor": auth.IsAdminOrSupervisor(role),
			flag:                  access.get(record),
		})
	}
}

func (h *Handler) postRoundOff(flag string) http.HandlerFunc {
	access := roundOffFlags[flag]
	return func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())

		snap, err := h.fiscal.Resolve(r.Context(), sess)
		if err != nil {
			httpx.Error(w, err)
			return
		}

		var body Patch
		if err := httpx.DecodeJSON(r, &body); err != nil {
			httpx.Fail(w, http.StatusBadRequest, "Invalid request body.")
			return
		}
		value := access.read(body)
		if value == nil {
			httpx.Fail(w, http.StatusBadRequest, flag+" is required.")
			return
		}

		var patch Patch
		access.write(&patch, *value)

		key := Key{CompanyID: sess.Company(), UserID: sess.User(), FiscalYearID: snap.ID}
		record, err := h.service.Upsert(r.Context(), key, patch)
		if err != nil {
			h.logger.Error("upsert round-off failed", slog.String("flag", flag), slog.Any("error", err))
			httpx.Error(w, err)
			return
		}

		httpx.Saved(w, "Setting saved.", map[string]any{flag: access.get(record)})
	}
}

// getDisplayLegacy serves the pre-fiscal-year display preference.
func (h *Handler) getDisplayLegacy(flag string) http.HandlerFunc {
	access := displayFlags[flag]
	return func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess.Company() == 0 || sess.User() == 0 {
			httpx.Fail(w, http.StatusBadRequest, "Invalid company or user.")
			return
		}

		key := Key{CompanyID: sess.Company(), UserID: sess.User()}
		record, err := h.service.GetOrDefaults(r.Context(), key)
		if err != nil {
			httpx.Error(w, err)
			return
		}

		httpx.OK(w, map[string]any{
			flag:       access.get(record),
			"settings": record,
		})
	}
}

func (h *Handler) postDisplayLegacy(flag string) http.HandlerFunc {
	access := displayFlags[flag]
	return func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess.Company() == 0 || sess.User() == 0 {
			httpx.Fail(w, http.StatusBadRequest, "Missing company or user in session.")
			return
		}

		var body Patch
		if err := httpx.DecodeJSON(r, &body); err != nil {
			httpx.Fail(w, http.StatusBadRequest, "Invalid request body.")
			return
		}
		value := access.read(body)
		if value == nil {
			httpx.Fail(w, http.StatusBadRequest, flag+" is required.")
			return
		}

		var patch Patch
		access.write(&patch, *value)

		key := Key{CompanyID: sess.Company(), UserID: sess.User()}
		record, err := h.service.Upsert(r.Context(), key, patch)
		if err != nil {
			h.logger.Error("upsert display flag failed", slog.String("flag", flag), slog.Any("error", err))
			httpx.Error(w, err)
			return
		}

		httpx.OK(w, map[string]any{
			flag:              access.get(record),
			"updatedSettings": record,
		})
	}
}

// create explicitly inserts a settings record; a duplicate key is a 409.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())

	snap, err := h.fiscal.Resolve(r.Context(), sess)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	var rec Settings
	if err := httpx.DecodeJSON(r, &rec); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	rec.CompanyID = sess.Company()
	rec.UserID = sess.User()
	fy := snap.ID
	rec.FiscalYearID = &fy

	created, err := h.service.Create(r.Context(), rec)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Created(w, map[string]any{"settings": created})
}
