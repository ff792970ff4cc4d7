// stockctl herramienta de operación: importación manual y publicación de eventos de stock.
//
// Uso:
//
//	stockctl import [--file productos.csv] [--encoding iso-8859-1]
//	stockctl publish adjust --ean 111 --quantity 3 --direction DEBIT
//	stockctl publish decrement --ean 111 --quantity 1
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/stock-api/internal/application/importer"
	"github.com/jhoicas/stock-api/internal/application/inventory"
	"github.com/jhoicas/stock-api/internal/domain/product"
	"github.com/jhoicas/stock-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-api/internal/interfaces/cli"
	"github.com/jhoicas/stock-api/pkg/config"
	"github.com/jhoicas/stock-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(cfg, newBackend)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// newBackend conecta con el store configurado. Con memory no hay cola de eventos.
func newBackend(ctx context.Context, cfg *config.Config) (*cli.Backend, error) {
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	limits := product.Limits{MaxQuantity: cfg.Stock.MaxQuantity}

	if cfg.App.StoreDriver == "memory" {
		store := memory.NewStore()
		tx := memory.NewTxRunner(store)
		return &cli.Backend{
			Importer: importer.NewImportUseCase(tx, inventory.NewMergeUseCase(tx), limits, cfg.Import.BatchSize, log),
			Close:    func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("aplicar migraciones: %w", err)
	}
	tx := postgres.NewTxRunner(pool)
	return &cli.Backend{
		Importer:  importer.NewImportUseCase(tx, inventory.NewMergeUseCase(tx), limits, cfg.Import.BatchSize, log),
		Publisher: postgres.NewEventQueue(pool, log.Named("events"), cfg.Events.PollInterval),
		Close:     pool.Close,
	}, nil
}
