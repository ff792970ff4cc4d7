// Package inventory reúne las reglas puras de stock (servicios de dominio): fusión aditiva
// y ajustes débito/crédito. No leen ni escriben el store; los casos de uso las aplican
// dentro de una transacción con la clave bloqueada.
package inventory

import (
	"math"
	"time"

	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
)

// MergeAdditive resuelve "llegan datos nuevos para el EAN" contra lo ya persistido.
// Sin existente: incoming tal cual. Con existente: name/description/price de incoming y
// Quantity = existente + incoming. En ambos casos CreatedAt = now. Una suma que desborda
// int64 se rechaza como campo inválido.
func MergeAdditive(existing, incoming *entity.Product, now time.Time) (*entity.Product, error) {
	merged := incoming.Clone()
	if existing != nil {
		total, err := addQuantity(existing.Quantity, incoming.Quantity)
		if err != nil {
			return nil, err
		}
		merged.Quantity = total
	}
	merged.CreatedAt = now
	return merged, nil
}

// ApplyAdjustment aplica un débito o crédito sobre el registro existente y devuelve el nuevo registro.
// Débito exige existing.Quantity >= amount (si no, ErrInsufficientStock); crédito no tiene techo.
// El resto de campos no cambia salvo CreatedAt.
func ApplyAdjustment(existing *entity.Product, amount int64, dir entity.StockDirection, now time.Time) (*entity.Product, error) {
	if amount < 0 {
		return nil, domain.NewFieldError("quantity", "la cantidad del ajuste no puede ser negativa")
	}
	next := existing.Clone()
	switch dir {
	case entity.StockDebit:
		if !HasStock(existing, amount) {
			return nil, domain.ErrInsufficientStock
		}
		next.Quantity = existing.Quantity - amount
	case entity.StockCredit:
		total, err := addQuantity(existing.Quantity, amount)
		if err != nil {
			return nil, err
		}
		next.Quantity = total
	default:
		return nil, domain.NewFieldError("direction", "sentido del ajuste inválido")
	}
	next.CreatedAt = now
	return next, nil
}

// HasStock indica si el registro cubre la cantidad pedida.
func HasStock(existing *entity.Product, amount int64) bool {
	return existing.Quantity >= amount
}

// addQuantity suma dos cantidades no negativas sin desbordar int64.
func addQuantity(current, delta int64) (int64, error) {
	if delta > math.MaxInt64-current {
		return 0, domain.NewFieldError("quantity", "la cantidad resultante excede el máximo representable")
	}
	return current + delta, nil
}
