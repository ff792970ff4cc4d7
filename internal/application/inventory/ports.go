package inventory

import (
	"context"

	"github.com/jhoicas/stock-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción del store, pasando un repositorio atado a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit. Los bloqueos tomados con
// GetForUpdate se liberan al terminar la transacción.
type TxRunner interface {
	Run(ctx context.Context, fn func(productRepo repository.ProductRepository) error) error
}
