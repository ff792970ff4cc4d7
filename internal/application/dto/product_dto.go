package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/product"
)

// CreateProductRequest entrada para crear un producto. Los punteros distinguen "ausente" de cero.
type CreateProductRequest struct {
	EAN         *int64           `json:"ean"`
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *int64           `json:"quantity"`
}

// ToInput convierte la petición en la entrada de validación.
func (r CreateProductRequest) ToInput() product.Input {
	return product.Input{
		EAN:         r.EAN,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Quantity:    r.Quantity,
	}
}

// UpdateProductRequest entrada para actualizar un producto. El EAN viaja en la ruta y
// quantity se suma a la existente.
type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *int64           `json:"quantity"`
}

// ToInput convierte la petición en la entrada de validación para el EAN dado.
func (r UpdateProductRequest) ToInput(ean int64) product.Input {
	return product.Input{
		EAN:         &ean,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Quantity:    r.Quantity,
	}
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	EAN         int64           `json:"ean"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToProductResponse mapea la entidad a su representación HTTP.
func ToProductResponse(p *entity.Product) *ProductResponse {
	if p == nil {
		return nil
	}
	return &ProductResponse{
		EAN:         p.EAN,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.Quantity,
		CreatedAt:   p.CreatedAt,
	}
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// AvailabilityResponse respuesta de GET /api/products/:ean/availability.
type AvailabilityResponse struct {
	Available bool `json:"available"`
}
