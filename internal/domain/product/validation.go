// Package product contiene las reglas de validación de productos. Funciones puras: sin I/O
// ni efectos colaterales; todas las rutas de escritura las usan antes de tocar el store.
package product

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
)

// Límites de longitud de los campos de texto (en caracteres).
const (
	NameMinLen        = 3
	NameMaxLen        = 50
	DescriptionMinLen = 5
	DescriptionMaxLen = 50

	// DefaultMaxQuantity techo por defecto para cantidades informadas por el usuario.
	DefaultMaxQuantity int64 = 1000

	// PriceScale decimales admitidos en el precio (columna NUMERIC(12,2)).
	PriceScale int32 = 2
)

// priceLimit cota superior exclusiva del precio: 10 dígitos enteros.
var priceLimit = decimal.New(1, 10)

// Limits parámetros configurables de la validación.
type Limits struct {
	MaxQuantity int64
}

// DefaultLimits límites usados cuando no hay configuración.
func DefaultLimits() Limits {
	return Limits{MaxQuantity: DefaultMaxQuantity}
}

func (l Limits) maxQuantity() int64 {
	if l.MaxQuantity <= 0 {
		return DefaultMaxQuantity
	}
	return l.MaxQuantity
}

// Input datos crudos de un producto nuevo. Un puntero nil significa "campo ausente".
type Input struct {
	EAN         *int64
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Quantity    *int64
}

// NewEAN valida la clave del producto: presente y mayor que cero.
func NewEAN(v *int64) (int64, error) {
	if v == nil || *v <= 0 {
		return 0, domain.NewKeyError("el EAN no puede ser nulo ni menor o igual a cero")
	}
	return *v, nil
}

// NewQuantity valida una cantidad informada por el usuario: presente y en [1, MaxQuantity].
func NewQuantity(v *int64, limits Limits) (int64, error) {
	max := limits.maxQuantity()
	if v == nil || *v <= 0 || *v > max {
		return 0, domain.NewFieldError("quantity",
			fmt.Sprintf("la cantidad no puede ser nula, menor o igual a cero ni mayor que %d", max))
	}
	return *v, nil
}

// ValidateNewProduct construye un producto válido o devuelve *domain.ValidationError.
// El orden de las verificaciones es fijo y la primera que falla gana:
// ean, presencia de name, longitud de name, presencia de description, longitud de description,
// price, quantity.
func ValidateNewProduct(in Input, limits Limits) (*entity.Product, error) {
	ean, err := NewEAN(in.EAN)
	if err != nil {
		return nil, err
	}
	name, err := text("name", in.Name, NameMinLen, NameMaxLen)
	if err != nil {
		return nil, err
	}
	description, err := text("description", in.Description, DescriptionMinLen, DescriptionMaxLen)
	if err != nil {
		return nil, err
	}
	if in.Price == nil || !in.Price.IsPositive() {
		return nil, domain.NewFieldError("price", "el precio no puede ser nulo ni menor o igual a cero")
	}
	if !in.Price.Equal(in.Price.Truncate(PriceScale)) {
		return nil, domain.NewFieldError("price", fmt.Sprintf("el precio admite como máximo %d decimales", PriceScale))
	}
	if in.Price.GreaterThanOrEqual(priceLimit) {
		return nil, domain.NewFieldError("price", "el precio debe ser menor que "+priceLimit.String())
	}
	quantity, err := NewQuantity(in.Quantity, limits)
	if err != nil {
		return nil, err
	}
	return &entity.Product{
		EAN:         ean,
		Name:        name,
		Description: description,
		Price:       *in.Price,
		Quantity:    quantity,
	}, nil
}

// text valida presencia (no vacío ni en blanco) y luego longitud del campo.
func text(field string, v *string, min, max int) (string, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return "", domain.NewFieldError(field, fmt.Sprintf("el campo %s es obligatorio", field))
	}
	s := strings.TrimSpace(*v)
	if n := utf8.RuneCountInString(s); n < min || n > max {
		return "", domain.NewFieldError(field,
			fmt.Sprintf("el campo %s debe tener entre %d y %d caracteres", field, min, max))
	}
	return s, nil
}
