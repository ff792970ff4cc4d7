package repository

import (
	"context"

	"github.com/jhoicas/stock-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Get y GetForUpdate devuelven (nil, nil) cuando el EAN no existe.
type ProductRepository interface {
	Get(ctx context.Context, ean int64) (*entity.Product, error)
	// GetForUpdate lee el registro y bloquea el EAN hasta el fin de la transacción,
	// exista o no la fila. Solo tiene efecto dentro de TxRunner.Run.
	GetForUpdate(ctx context.Context, ean int64) (*entity.Product, error)
	// Create inserta un registro nuevo. Devuelve domain.ErrConflict si el EAN ya existe.
	Create(ctx context.Context, product *entity.Product) error
	// Save escribe el registro completo (insert o update).
	Save(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, ean int64) error
	DeleteAll(ctx context.Context) error
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
}
