package memory

import (
	"context"

	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo acceso directo (fuera de transacción). Cada llamada toma el mutex del store,
// por eso no debe usarse dentro de TxRunner.Run: ahí se usa el repositorio que recibe fn.
type ProductRepo struct {
	s *Store
}

// NewProductRepository construye el repositorio sobre el store.
func NewProductRepository(s *Store) *ProductRepo {
	return &ProductRepo{s: s}
}

// Get obtiene un producto por EAN.
func (r *ProductRepo) Get(_ context.Context, ean int64) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.rows[ean].Clone(), nil
}

// GetForUpdate fuera de transacción equivale a Get.
func (r *ProductRepo) GetForUpdate(ctx context.Context, ean int64) (*entity.Product, error) {
	return r.Get(ctx, ean)
}

// Create inserta un producto nuevo.
func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.rows[product.EAN]; ok {
		return domain.ErrConflict
	}
	r.s.rows[product.EAN] = product.Clone()
	return nil
}

// Save escribe el registro completo.
func (r *ProductRepo) Save(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.rows[product.EAN] = product.Clone()
	return nil
}

// Delete elimina un producto por EAN.
func (r *ProductRepo) Delete(_ context.Context, ean int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.rows, ean)
	return nil
}

// DeleteAll vacía la tabla.
func (r *ProductRepo) DeleteAll(_ context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.rows = make(map[int64]*entity.Product)
	return nil
}

// List lista productos ordenados por EAN.
func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return sortedProducts(r.s.rows, limit, offset), nil
}
