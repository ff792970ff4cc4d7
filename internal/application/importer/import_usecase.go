// Package importer implementa el pipeline de importación masiva: lee filas del origen en
// lotes, valida el lote completo y lo fusiona de forma aditiva en una sola transacción.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stock-api/internal/application/inventory"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/product"
	"github.com/jhoicas/stock-api/internal/domain/repository"
	"github.com/jhoicas/stock-api/pkg/logger"
)

// DefaultBatchSize tamaño de lote por defecto.
const DefaultBatchSize = 15

var tracer = otel.Tracer("stock-api/importer")

// Report resumen de una ejecución completa.
type Report struct {
	RunID      string
	Batches    int
	Rows       int
	StartedAt  time.Time
	FinishedAt time.Time
}

// BatchError fallo de un lote concreto. Los lotes anteriores ya quedaron confirmados.
type BatchError struct {
	Batch int
	Line  int
	Err   error
}

func (e *BatchError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("lote %d, línea %d: %v", e.Batch, e.Line, e.Err)
	}
	return fmt.Sprintf("lote %d: %v", e.Batch, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// ImportUseCase pipeline de importación. Solo admite una ejecución a la vez por proceso.
type ImportUseCase struct {
	txRunner  inventory.TxRunner
	merge     *inventory.MergeUseCase
	limits    product.Limits
	batchSize int
	log       *logger.Logger
	running   sync.Mutex
}

// NewImportUseCase construye el pipeline. batchSize <= 0 usa DefaultBatchSize.
func NewImportUseCase(txRunner inventory.TxRunner, merge *inventory.MergeUseCase, limits product.Limits, batchSize int, log *logger.Logger) *ImportUseCase {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ImportUseCase{
		txRunner:  txRunner,
		merge:     merge,
		limits:    limits,
		batchSize: batchSize,
		log:       log.Named("importer"),
	}
}

// Run ejecuta una importación completa desde source. Devuelve domain.ErrImportInProgress
// sin tocar el store si ya hay otra ejecución en curso.
func (uc *ImportUseCase) Run(ctx context.Context, source RowSource) (Report, error) {
	if !uc.running.TryLock() {
		return Report{}, domain.ErrImportInProgress
	}
	defer uc.running.Unlock()

	report := Report{RunID: uuid.New().String(), StartedAt: time.Now()}
	ctx, span := tracer.Start(ctx, "import.run", trace.WithAttributes(attribute.String("import.run_id", report.RunID)))
	defer span.End()

	log := uc.log.With().Str("run_id", report.RunID).Logger()
	log.Info().Int("batch_size", uc.batchSize).Msg("importación iniciada")

	err := uc.run(ctx, source, &report)
	report.FinishedAt = time.Now()
	span.SetAttributes(
		attribute.Int("import.batches", report.Batches),
		attribute.Int("import.rows", report.Rows),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error().Err(err).Int("batches", report.Batches).Int("rows", report.Rows).Msg("importación detenida")
		return report, err
	}
	log.Info().
		Int("batches", report.Batches).
		Int("rows", report.Rows).
		Dur("elapsed", report.FinishedAt.Sub(report.StartedAt)).
		Msg("importación finalizada")
	return report, nil
}

func (uc *ImportUseCase) run(ctx context.Context, source RowSource, report *Report) error {
	reader, err := source.Open(ctx)
	if err != nil {
		return fmt.Errorf("abrir origen: %w", err)
	}
	defer reader.Close()

	batch := make([]product.RawRow, 0, uc.batchSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := reader.Next()
		eof := errors.Is(err, io.EOF)
		if err != nil && !eof {
			return &BatchError{Batch: report.Batches + 1, Err: err}
		}
		if !eof {
			batch = append(batch, row)
		}
		if len(batch) == uc.batchSize || (eof && len(batch) > 0) {
			if err := uc.applyBatch(ctx, report.Batches+1, batch); err != nil {
				return err
			}
			report.Batches++
			report.Rows += len(batch)
			batch = batch[:0]
		}
		if eof {
			return nil
		}
	}
}

// applyBatch valida todas las filas antes de escribir y luego las fusiona en orden
// dentro de una única transacción.
func (uc *ImportUseCase) applyBatch(ctx context.Context, n int, rows []product.RawRow) error {
	ctx, span := tracer.Start(ctx, "import.batch", trace.WithAttributes(
		attribute.Int("import.batch", n),
		attribute.Int("import.batch_rows", len(rows)),
	))
	defer span.End()

	products := make([]*entity.Product, 0, len(rows))
	for _, row := range rows {
		p, err := product.ParseImportRow(row, uc.limits)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "fila inválida")
			return &BatchError{Batch: n, Line: row.Line, Err: err}
		}
		products = append(products, p)
	}

	err := uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository) error {
		for _, p := range products {
			if _, err := uc.merge.MergeInTx(ctx, productRepo, p); err != nil {
				return fmt.Errorf("fusionar ean %d: %w", p.EAN, err)
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return &BatchError{Batch: n, Err: err}
	}
	uc.log.Debug().Int("batch", n).Int("rows", len(rows)).Msg("lote confirmado")
	return nil
}
