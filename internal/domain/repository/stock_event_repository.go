package repository

import (
	"context"

	"github.com/jhoicas/stock-api/internal/domain/entity"
)

// StockEventRepository puerto de la cola de eventos de stock.
type StockEventRepository interface {
	// Publish encola un evento y despierta a los consumidores.
	Publish(ctx context.Context, topic string, payload []byte) (*entity.StockEvent, error)
	// Get devuelve un evento por ID, (nil, nil) si no existe.
	Get(ctx context.Context, id string) (*entity.StockEvent, error)
}
