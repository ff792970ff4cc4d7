package product

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
)

// RawRow fila cruda de importación: cinco campos posicionales
// (ean, name, description, price, quantity). Line es la posición en el origen (1-based).
type RawRow struct {
	Line        int
	EAN         string
	Name        string
	Description string
	Price       string
	Quantity    string
}

// ParseImportRow convierte los campos de texto y delega en ValidateNewProduct,
// de modo que una fila importada pasa exactamente por las mismas reglas que una creación directa.
func ParseImportRow(row RawRow, limits Limits) (*entity.Product, error) {
	in := Input{
		Name:        &row.Name,
		Description: &row.Description,
	}

	if s := strings.TrimSpace(row.EAN); s != "" {
		ean, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, domain.NewKeyError("el EAN debe ser numérico")
		}
		in.EAN = &ean
	}

	// Los errores de conversión de price y quantity se reportan en su turno dentro del orden fijo.
	parseErrs := map[string]error{}
	if s := strings.TrimSpace(row.Price); s != "" {
		price, err := decimal.NewFromString(s)
		if err != nil {
			parseErrs["price"] = domain.NewFieldError("price", "el precio debe ser un número decimal")
		} else {
			in.Price = &price
		}
	}
	if s := strings.TrimSpace(row.Quantity); s != "" {
		qty, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			parseErrs["quantity"] = domain.NewFieldError("quantity", "la cantidad debe ser un número entero")
		} else {
			in.Quantity = &qty
		}
	}

	p, err := ValidateNewProduct(in, limits)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			if perr, ok := parseErrs[ve.Field]; ok {
				return nil, perr
			}
		}
		return nil, err
	}
	return p, nil
}
