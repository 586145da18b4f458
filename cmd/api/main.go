package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/sync/errgroup"

	"github.com/Libasse27/erp-senegal-sub002/internal/application/inventory"
	httpRouter "github.com/Libasse27/erp-senegal-sub002/internal/interfaces/http"
	"github.com/Libasse27/erp-senegal-sub002/pkg/config"
	"github.com/Libasse27/erp-senegal-sub002/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Stock.StoreBackend).
		Str("lock", cfg.Stock.LockBackend).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento de stock")
	}
	defer store.close()

	locker, closeLocker, err := openLocker(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("bloqueo por clave de stock")
	}
	defer closeLocker()

	notifier, closeNotifier := openNotifier(ctx, cfg, log)
	defer closeNotifier()

	stockSvc := inventory.NewStockService(
		store.txRunner, locker,
		store.productRepo, store.warehouseRepo, store.stockRepo, store.movRepo,
		inventory.WithNotifier(notifier),
		inventory.WithLogger(log),
		inventory.WithExpiryHorizon(cfg.Stock.ExpiryHorizon()),
	)
	scanner := inventory.NewAlertScanner(stockSvc, notifier, cfg.Stock.AlertScanInterval, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "ERP Sénégal - Stock API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Stock:     stockSvc,
		JWTSecret: cfg.JWT.Secret,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTP.Addr()).Msg("servidor HTTP escuchando")
		return app.Listen(cfg.HTTP.Addr())
	})
	g.Go(func() error {
		return scanner.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("señal de apagado recibida, cerrando servidor...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("aplicación finalizada con error")
		stop()
		os.Exit(1)
	}
	log.Info().Msg("aplicación detenida")
}
