package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"github.com/merobill/merobill/internal/app"
	"github.com/merobill/merobill/internal/auth"
	"github.com/merobill/merobill/internal/backup"
	"github.com/merobill/merobill/internal/companies"
	"github.com/merobill/merobill/internal/fiscal"
	"github.com/merobill/merobill/internal/masterdata/accounts"
	"github.com/merobill/merobill/internal/masterdata/compositions"
	"github.com/merobill/merobill/internal/masterdata/items"
	"github.com/merobill/merobill/internal/masterdata/units"
	"github.com/merobill/merobill/internal/platform/cache"
	"github.com/merobill/merobill/internal/platform/db"
	"github.com/merobill/merobill/internal/platform/httpx"
	"github.com/merobill/merobill/internal/purchases"
	"github.com/merobill/merobill/internal/settings"
	"github.com/merobill/merobill/internal/shared"
	"github.com/merobill/merobill/internal/transactions"
	"github.com/merobill/merobill/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	httpx.ExposeErrorDetail(cfg.IsDevelopment())

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "merobill_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())

	fiscalRepo := fiscal.NewRepository(pool)
	resolver := fiscal.NewResolver(fiscalRepo)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	companiesRepo := companies.NewRepository(pool)
	companiesService := companies.NewService(companiesRepo, authService)
	companiesHandler := companies.NewHandler(logger, companiesService, resolver, fiscalRepo)
	tradeGate := companies.NewTradeGate(companiesService)

	settingsRepo := settings.NewRepository(pool)
	settingsService := settings.NewService(settingsRepo)
	settingsHandler := settings.NewHandler(logger, settingsService, resolver, companiesService, authService)

	txnRepo := transactions.NewRepository(pool)
	txnCache := transactions.NewCache(redisClient, 15*time.Minute)
	gate := transactions.NewGate(settingsService, txnRepo, txnCache, cfg.DisplaySize)
	txnHandler := transactions.NewHandler(logger, gate, resolver)

	vatRate, err := decimal.NewFromString(cfg.VATRate)
	if err != nil {
		logger.Error("invalid VAT rate", slog.String("value", cfg.VATRate), slog.Any("error", err))
		os.Exit(1)
	}

	purchasesRepo := purchases.NewRepository(pool)
	purchasesService := purchases.NewService(purchasesRepo, gate)
	purchasesHandler := purchases.NewHandler(logger, purchasesService, resolver, vatRate)

	accountsHandler := accounts.NewHandler(logger, accounts.NewService(accounts.NewRepository(pool)))
	itemsHandler := items.NewHandler(logger, items.NewService(items.NewRepository(pool)))
	unitsHandler := units.NewHandler(logger, units.NewService(units.NewRepository(pool)))
	compositionsHandler := compositions.NewHandler(logger, compositions.NewService(compositions.NewRepository(pool)))

	exporter := backup.NewExporter(pool)
	backupHandler := backup.NewHandler(logger, exporter, cfg.PGDumpPath, cfg.PGDSN)

	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	inspector := asynq.NewInspector(redisOpt)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(redisOpt)
	if err != nil {
		logger.Error("asynq client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("asynq client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		TradeGate:      tradeGate,

		AuthHandler:         authHandler,
		CompaniesHandler:    companiesHandler,
		SettingsHandler:     settingsHandler,
		TransactionsHandler: txnHandler,
		PurchasesHandler:    purchasesHandler,
		AccountsHandler:     accountsHandler,
		ItemsHandler:        itemsHandler,
		UnitsHandler:        unitsHandler,
		CompositionsHandler: compositionsHandler,
		BackupHandler:       backupHandler,
		JobHandler:          jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
