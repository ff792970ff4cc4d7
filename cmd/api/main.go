package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/stock-api/internal/application/importer"
	"github.com/jhoicas/stock-api/internal/application/inventory"
	"github.com/jhoicas/stock-api/internal/application/usecase"
	"github.com/jhoicas/stock-api/internal/domain/product"
	"github.com/jhoicas/stock-api/internal/domain/repository"
	"github.com/jhoicas/stock-api/internal/infrastructure/csvsource"
	"github.com/jhoicas/stock-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-api/internal/infrastructure/scheduler"
	"github.com/jhoicas/stock-api/internal/interfaces/events"
	httpRouter "github.com/jhoicas/stock-api/internal/interfaces/http"
	"github.com/jhoicas/stock-api/pkg/config"
	"github.com/jhoicas/stock-api/pkg/logger"
	"github.com/jhoicas/stock-api/pkg/telemetry"
)

// version se inyecta en build con -ldflags "-X main.version=...".
var version = "dev"

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
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, telemetry.Config{
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		Version:     version,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar trazas")
	}

	var (
		productRepo repository.ProductRepository
		txRunner    inventory.TxRunner
		eventQueue  *postgres.EventQueue
	)
	switch cfg.App.StoreDriver {
	case "memory":
		store := memory.NewStore()
		productRepo = memory.NewProductRepository(store)
		txRunner = memory.NewTxRunner(store)
		log.Warn().Msg("store en memoria: los datos se pierden al reiniciar y no hay cola de eventos")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("aplicar migraciones")
		}
		productRepo = postgres.NewProductRepository(pool)
		txRunner = postgres.NewTxRunner(pool)
		eventQueue = postgres.NewEventQueue(pool, log.Named("events"), cfg.Events.PollInterval)
	}

	limits := product.Limits{MaxQuantity: cfg.Stock.MaxQuantity}
	mergeUC := inventory.NewMergeUseCase(txRunner)
	adjustUC := inventory.NewAdjustStockUseCase(txRunner, productRepo)
	importUC := importer.NewImportUseCase(txRunner, mergeUC, limits, cfg.Import.BatchSize, log)

	source, err := csvsource.New(cfg.Import.File, cfg.Import.Encoding)
	if err != nil {
		log.Fatal().Err(err).Msg("origen de importación")
	}

	productUC := usecase.NewProductUseCase(usecase.ProductUseCaseDeps{
		Repo:     productRepo,
		TxRunner: txRunner,
		Merge:    mergeUC,
		Adjust:   adjustUC,
		Importer: importUC,
		Source:   source,
		Limits:   limits,
		Log:      log,
	})

	// Importación periódica
	var sched *scheduler.ImportScheduler
	if cfg.Import.ScheduleEnabled {
		sched, err = scheduler.New(cfg.Import.Cron, importUC, source, 0, log)
		if err != nil {
			log.Fatal().Err(err).Msg("configurar importación programada")
		}
		sched.Start()
	}

	// Consumidores de eventos de stock
	consumerDone := make(chan struct{})
	if cfg.Events.Enabled && eventQueue != nil {
		dispatcher := events.NewDispatcher(
			events.NewAdjustStockConsumer(adjustUC, log),
			events.NewDecrementConsumer(adjustUC, log),
		)
		go func() {
			defer close(consumerDone)
			if err := eventQueue.Consume(ctx, dispatcher.Dispatch); err != nil {
				log.Error().Err(err).Msg("consumidor de eventos finalizado")
			}
		}()
	} else {
		close(consumerDone)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Minute,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Stock API",
		}))
	} else {
		log.Warn().Str("file", cfg.HTTP.SwaggerFile).Msg("swagger no disponible")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC: productUC,
		Log:       log,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if sched != nil {
		sched.Stop(shutdownCtx)
	}
	select {
	case <-consumerDone:
	case <-shutdownCtx.Done():
		log.Warn().Msg("consumidor de eventos no terminó antes del apagado")
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cerrar exportador de trazas")
	}

	log.Info().Msg("aplicación detenida")
}
