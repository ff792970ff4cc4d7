package inventory

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/inventory"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

// AdjustStockUseCase motor de ajustes de stock (débito/crédito) sobre un registro existente.
// La lectura y la escritura ocurren en la misma transacción con el EAN bloqueado, por lo que
// dos débitos concurrentes nunca leen la misma cantidad previa.
type AdjustStockUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	now         func() time.Time
}

// NewAdjustStockUseCase construye el caso de uso. productRepo se usa solo para lecturas fuera de tx.
func NewAdjustStockUseCase(txRunner TxRunner, productRepo repository.ProductRepository) *AdjustStockUseCase {
	return &AdjustStockUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		now:         time.Now,
	}
}

// Adjust aplica amount en el sentido indicado. Sin techo de cantidad: el límite de usuario
// se aplica en los bordes (creación, actualización, importación), no aquí.
func (uc *AdjustStockUseCase) Adjust(ctx context.Context, ean, amount int64, dir entity.StockDirection) (AdjustResult, error) {
	ctx, span := otel.Tracer("stock-api/inventory").Start(ctx, "stock.adjust")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("stock.ean", ean),
		attribute.Int64("stock.amount", amount),
		attribute.String("stock.direction", string(dir)),
	)

	var result AdjustResult
	err := uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository) error {
		existing, err := productRepo.GetForUpdate(ctx, ean)
		if err != nil {
			return err
		}
		if existing == nil {
			result = AdjustNotFound
			return nil
		}
		next, err := inventory.ApplyAdjustment(existing, amount, dir, uc.now())
		if err != nil {
			if errors.Is(err, domain.ErrInsufficientStock) {
				result = AdjustInsufficientStock
				return nil
			}
			return err
		}
		if err := productRepo.Save(ctx, next); err != nil {
			return err
		}
		result = Adjusted
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	span.SetAttributes(attribute.String("stock.result", result.String()))
	return result, nil
}

// HasStock consulta de solo lectura: Available si quantity >= amount, Unavailable si no,
// AvailabilityUnknown si el EAN no existe.
func (uc *AdjustStockUseCase) HasStock(ctx context.Context, ean, amount int64) (Availability, error) {
	product, err := uc.productRepo.Get(ctx, ean)
	if err != nil {
		return 0, err
	}
	if product == nil {
		return AvailabilityUnknown, nil
	}
	if inventory.HasStock(product, amount) {
		return Available, nil
	}
	return Unavailable, nil
}
