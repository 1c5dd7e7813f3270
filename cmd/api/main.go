package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/lokapasar/backend/api/controllers"
	"github.com/lokapasar/backend/api/routes"
	"github.com/lokapasar/backend/internal/addresses"
	"github.com/lokapasar/backend/internal/catalog"
	"github.com/lokapasar/backend/internal/checkout"
	"github.com/lokapasar/backend/internal/payment"
	"github.com/lokapasar/backend/internal/pricing"
	"github.com/lokapasar/backend/internal/sellers"
	"github.com/lokapasar/backend/internal/shipping"
	"github.com/lokapasar/backend/internal/transactions"
	"github.com/lokapasar/backend/internal/users"
	"github.com/lokapasar/backend/internal/vouchers"
	"github.com/lokapasar/backend/pkg/config"
	"github.com/lokapasar/backend/pkg/db"
	"github.com/lokapasar/backend/pkg/logger"
	"github.com/lokapasar/backend/pkg/migrate"
	"github.com/lokapasar/backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	catalogRepo := catalog.NewRepository(gormDB)
	sellerRepo := sellers.NewRepository(gormDB)
	addressRepo := addresses.NewRepository(gormDB)
	userRepo := users.NewRepository(gormDB)
	voucherRepo := vouchers.NewRepository(gormDB)
	transactionRepo := transactions.NewRepository(gormDB)

	pricingEngine, err := pricing.NewEngine(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing engine", err)
		os.Exit(1)
	}

	voucherResolver, err := vouchers.NewResolver(voucherRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create voucher resolver", err)
		os.Exit(1)
	}

	rateClient, err := shipping.NewHTTPRateClient(cfg.RateService)
	if err != nil {
		logg.Error(context.Background(), "failed to create rate client", err)
		os.Exit(1)
	}

	shipmentResolver, err := shipping.NewResolver(addressRepo, sellerRepo, rateClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create shipment resolver", err)
		os.Exit(1)
	}

	gateway, err := payment.NewSnapGateway(cfg.Midtrans)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment gateway", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(
		pricingEngine,
		voucherResolver,
		voucherRepo,
		shipmentResolver,
		gateway,
		transactionRepo,
		sellerRepo,
		userRepo,
		dbClient,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	transactionService, err := transactions.NewService(transactionRepo, userRepo, dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create transaction service", err)
		os.Exit(1)
	}

	ctrl := routes.Controllers{
		Health:       controllers.NewHealthController(dbClient, redisClient, logg),
		Transactions: controllers.NewTransactionsController(checkoutService, transactionService, logg),
		Calculators:  controllers.NewCalculatorsController(checkoutService, logg),
		Webhooks:     controllers.NewWebhooksController(transactionService, redisClient, logg),
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, ctrl, redisClient, logg),
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	stop, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	select {
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			closeResources(ctx, logg, dbClient, redisClient)
			os.Exit(1)
		}
	case <-stop.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "server shutdown failed", err)
		}
	}

	closeResources(ctx, logg, dbClient, redisClient)
	logg.Info(ctx, "api server stopped")
}

func closeResources(ctx context.Context, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) {
	if err := multierr.Combine(dbClient.Close(), redisClient.Close()); err != nil {
		logg.Error(ctx, "error closing resources", err)
	}
}
