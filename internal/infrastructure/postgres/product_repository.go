package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `ean, name, description, price, quantity, created_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Get obtiene un producto por EAN.
func (r *ProductRepo) Get(ctx context.Context, ean int64) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE ean = $1`, ean))
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetForUpdate toma un advisory lock de transacción sobre el EAN y luego bloquea la fila
// (SELECT FOR UPDATE). El advisory lock cubre también los EAN que aún no tienen fila,
// donde FOR UPDATE no bloquea nada. Ambos se liberan en Commit/Rollback.
func (r *ProductRepo) GetForUpdate(ctx context.Context, ean int64) (*entity.Product, error) {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, ean); err != nil {
		return nil, fmt.Errorf("lock product key: %w", err)
	}
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE ean = $1 FOR UPDATE`, ean))
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}
	return p, nil
}

// Create persiste un producto nuevo. Violación de PK -> domain.ErrConflict.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO products (`+productColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		product.EAN, product.Name, product.Description, product.Price, product.Quantity, product.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		if isCheckViolation(err) {
			return fmt.Errorf("insert product: %w", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Save escribe el registro completo (último escritor gana).
func (r *ProductRepo) Save(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (ean) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			quantity = EXCLUDED.quantity,
			created_at = EXCLUDED.created_at`
	_, err := r.q.Exec(ctx, query,
		product.EAN, product.Name, product.Description, product.Price, product.Quantity, product.CreatedAt,
	)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("save product: %w", domain.ErrInvalidInput)
		}
		return fmt.Errorf("save product: %w", err)
	}
	return nil
}

// Delete elimina un producto por EAN.
func (r *ProductRepo) Delete(ctx context.Context, ean int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM products WHERE ean = $1`, ean); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// DeleteAll vacía la tabla de productos.
func (r *ProductRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("delete all products: %w", err)
	}
	return nil
}

// List lista productos ordenados por EAN con paginación. limit <= 0 = sin límite.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	var lim any
	if limit > 0 {
		lim = limit
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY ean LIMIT $1 OFFSET $2`, lim, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Product, 0)
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.EAN, &p.Name, &p.Description, &p.Price, &p.Quantity, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// scanProduct devuelve (nil, nil) si no hay fila.
func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.EAN, &p.Name, &p.Description, &p.Price, &p.Quantity, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
