// Package events contiene los consumidores de eventos de stock: decodifican el payload,
// validan y delegan en el motor de ajustes.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/inventory"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/product"
	"github.com/jhoicas/stock-api/pkg/logger"
)

// Adjuster motor de ajustes que usan los consumidores.
type Adjuster interface {
	Adjust(ctx context.Context, ean, amount int64, dir entity.StockDirection) (inventory.AdjustResult, error)
}

// AdjustStockConsumer consume stock.adjust: débito o crédito según direction.
type AdjustStockConsumer struct {
	adjuster Adjuster
	log      *logger.Logger
}

// NewAdjustStockConsumer construye el consumidor.
func NewAdjustStockConsumer(adjuster Adjuster, log *logger.Logger) *AdjustStockConsumer {
	if log == nil {
		log = logger.Nop()
	}
	return &AdjustStockConsumer{adjuster: adjuster, log: log.Named("adjust-consumer")}
}

// Handle procesa un payload de stock.adjust.
func (c *AdjustStockConsumer) Handle(ctx context.Context, payload []byte) error {
	var ev dto.AdjustStockEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return fmt.Errorf("payload de ajuste ilegible: %v: %w", err, domain.ErrInvalidInput)
	}
	ean, amount, err := validateAmount(ev.EAN, ev.Quantity)
	if err != nil {
		return err
	}
	dir, ok := entity.ParseStockDirection(ev.Direction)
	if !ok {
		return domain.NewFieldError("direction", fmt.Sprintf("sentido desconocido: %q", ev.Direction))
	}
	return c.apply(ctx, ean, amount, dir)
}

func (c *AdjustStockConsumer) apply(ctx context.Context, ean, amount int64, dir entity.StockDirection) error {
	res, err := c.adjuster.Adjust(ctx, ean, amount, dir)
	if err != nil {
		return err
	}
	if err := resultError(ean, res); err != nil {
		c.log.Warn().Int64("ean", ean).Int64("quantity", amount).Str("direction", string(dir)).Str("result", res.String()).Msg("ajuste no aplicado")
		return err
	}
	c.log.Info().Int64("ean", ean).Int64("quantity", amount).Str("direction", string(dir)).Msg("ajuste aplicado")
	return nil
}

// DecrementConsumer consume stock.decrement: siempre débito.
type DecrementConsumer struct {
	adjust *AdjustStockConsumer
}

// NewDecrementConsumer construye el consumidor.
func NewDecrementConsumer(adjuster Adjuster, log *logger.Logger) *DecrementConsumer {
	if log == nil {
		log = logger.Nop()
	}
	return &DecrementConsumer{adjust: &AdjustStockConsumer{adjuster: adjuster, log: log.Named("decrement-consumer")}}
}

// Handle procesa un payload de stock.decrement.
func (c *DecrementConsumer) Handle(ctx context.Context, payload []byte) error {
	var ev dto.DecrementStockEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return fmt.Errorf("payload de baja ilegible: %v: %w", err, domain.ErrInvalidInput)
	}
	ean, amount, err := validateAmount(ev.EAN, ev.Quantity)
	if err != nil {
		return err
	}
	return c.adjust.apply(ctx, ean, amount, entity.StockDebit)
}

// validateAmount exige EAN válido y cantidad presente y no negativa. Sin techo: el límite de
// usuario no aplica a los ajustes.
func validateAmount(ean, quantity *int64) (int64, int64, error) {
	key, err := product.NewEAN(ean)
	if err != nil {
		return 0, 0, err
	}
	if quantity == nil || *quantity < 0 {
		return 0, 0, domain.NewFieldError("quantity", "la cantidad del ajuste no puede ser nula ni negativa")
	}
	return key, *quantity, nil
}

// resultError traduce un resultado de negocio no exitoso a un error terminal del evento.
func resultError(ean int64, res inventory.AdjustResult) error {
	switch res {
	case inventory.Adjusted:
		return nil
	case inventory.AdjustNotFound:
		return fmt.Errorf("ean %d: %w", ean, domain.ErrNotFound)
	case inventory.AdjustInsufficientStock:
		return fmt.Errorf("ean %d: %w", ean, domain.ErrInsufficientStock)
	}
	return fmt.Errorf("ean %d: resultado inesperado %s", ean, res)
}
