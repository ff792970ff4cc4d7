package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-api/internal/application/inventory"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks en una "transacción" en memoria: las escrituras se acumulan
// y solo se aplican al store si fn termina sin error.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run toma el mutex del store durante toda la transacción, ejecuta fn y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(productRepo repository.ProductRepository) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tx := &txRepo{s: r.s, staged: make(map[int64]*entity.Product)}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	tx.commit()
	return nil
}

// txRepo repositorio atado a una transacción. staged guarda las escrituras pendientes;
// una entrada nil marca un borrado.
type txRepo struct {
	s       *Store
	staged  map[int64]*entity.Product
	cleared bool
}

func (t *txRepo) lookup(ean int64) *entity.Product {
	if p, ok := t.staged[ean]; ok {
		return p
	}
	if t.cleared {
		return nil
	}
	return t.s.rows[ean]
}

func (t *txRepo) Get(_ context.Context, ean int64) (*entity.Product, error) {
	return t.lookup(ean).Clone(), nil
}

// GetForUpdate: el mutex del store ya está tomado por la transacción.
func (t *txRepo) GetForUpdate(ctx context.Context, ean int64) (*entity.Product, error) {
	return t.Get(ctx, ean)
}

func (t *txRepo) Create(_ context.Context, product *entity.Product) error {
	if t.lookup(product.EAN) != nil {
		return domain.ErrConflict
	}
	t.staged[product.EAN] = product.Clone()
	return nil
}

func (t *txRepo) Save(_ context.Context, product *entity.Product) error {
	t.staged[product.EAN] = product.Clone()
	return nil
}

func (t *txRepo) Delete(_ context.Context, ean int64) error {
	t.staged[ean] = nil
	return nil
}

func (t *txRepo) DeleteAll(_ context.Context) error {
	t.cleared = true
	t.staged = make(map[int64]*entity.Product)
	return nil
}

func (t *txRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	view := make(map[int64]*entity.Product)
	if !t.cleared {
		for ean, p := range t.s.rows {
			view[ean] = p
		}
	}
	for ean, p := range t.staged {
		if p == nil {
			delete(view, ean)
			continue
		}
		view[ean] = p
	}
	return sortedProducts(view, limit, offset), nil
}

func (t *txRepo) commit() {
	if t.cleared {
		t.s.rows = make(map[int64]*entity.Product)
	}
	for ean, p := range t.staged {
		if p == nil {
			delete(t.s.rows, ean)
			continue
		}
		t.s.rows[ean] = p
	}
}
