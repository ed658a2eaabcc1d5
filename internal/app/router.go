package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/merobill/merobill/internal/auth"
	"github.com/merobill/merobill/internal/backup"
	"github.com/merobill/merobill/internal/companies"
	"github.com/merobill/merobill/internal/masterdata/accounts"
	"github.com/merobill/merobill/internal/masterdata/compositions"
	"github.com/merobill/merobill/internal/masterdata/items"
	"github.com/merobill/merobill/internal/masterdata/units"
	"github.com/merobill/merobill/internal/platform/httpx"
	"github.com/merobill/merobill/internal/purchases"
	"github.com/merobill/merobill/internal/settings"
	"github.com/merobill/merobill/internal/shared"
	"github.com/merobill/merobill/internal/transactions"
	"github.com/merobill/merobill/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	TradeGate      *companies.TradeGate

	AuthHandler         *auth.Handler
	CompaniesHandler    *companies.Handler
	SettingsHandler     *settings.Handler
	TransactionsHandler *transactions.Handler
	PurchasesHandler    *purchases.Handler
	AccountsHandler     *accounts.Handler
	ItemsHandler        *items.Handler
	UnitsHandler        *units.Handler
	CompositionsHandler *compositions.Handler
	BackupHandler       *backup.Handler
	JobHandler          *jobs.Handler
}

// NewRouter constructs the chi router. The settings, transaction and voucher
// surfaces sit behind login + company selection, and the data-entry routes
// additionally behind the retailer trade gate.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]any{
			"ok":   true,
			"time": time.Now().UTC().Format(time.RFC3339),
		})
	})

	params.AuthHandler.MountRoutes(r)

	// Logged-in surface: company management and selection.
	r.Group(func(r chi.Router) {
		r.Use(RequireAuth)
		params.CompaniesHandler.MountRoutes(r)
	})

	// Company-scoped surface.
	r.Group(func(r chi.Router) {
		r.Use(RequireAuth)
		r.Use(RequireCompany)

		params.SettingsHandler.MountRoutes(r)
		params.BackupHandler.MountRoutes(r)

		params.AccountsHandler.MountRoutes(r)
		params.ItemsHandler.MountRoutes(r)
		params.UnitsHandler.MountRoutes(r)
		params.CompositionsHandler.MountRoutes(r)

		// Data entry is retailer-only.
		r.Group(func(r chi.Router) {
			r.Use(params.TradeGate.Require(companies.TradeTypeRetailer))
			params.TransactionsHandler.MountRoutes(r)
			params.PurchasesHandler.MountRoutes(r)
		})
	})

	if params.JobHandler != nil {
		r.Route("/jobs", func(r chi.Router) {
			r.Use(RequireAuth)
			params.JobHandler.MountRoutes(r)
		})
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusNotFound, "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusMethodNotAllowed, "Method not allowed.")
	})

	return r
}
