package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-api/internal/application/inventory"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

type outerTxKey struct{}

// withOuterTx deja tx en el contexto para que TxRunner.Run se anide en ella.
func withOuterTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, outerTxKey{}, tx)
}

func outerTx(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(outerTxKey{}).(pgx.Tx)
	return tx
}

// Run inicia una transacción, ejecuta fn con el repositorio atado a la tx y hace Commit o Rollback.
// Si ctx se cancela antes del Commit, la transacción completa se descarta.
// Si ctx ya trae una transacción externa (consumo de eventos), Run abre un SAVEPOINT en ella:
// el Commit libera el savepoint y la escritura se confirma junto con la externa.
func (r *TxRunner) Run(ctx context.Context, fn func(productRepo repository.ProductRepository) error) error {
	var (
		tx  pgx.Tx
		err error
	)
	if outer := outerTx(ctx); outer != nil {
		tx, err = outer.Begin(ctx)
	} else {
		tx, err = r.pool.Begin(ctx)
	}
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	if err := fn(NewProductRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
