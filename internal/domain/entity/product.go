package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa el registro persistido de un ítem de inventario, identificado por su EAN.
// Quantity es el stock actual (sin histórico); CreatedAt se renueva en cada escritura.
type Product struct {
	EAN         int64
	Name        string
	Description string
	Price       decimal.Decimal // precio de venta, siempre > 0
	Quantity    int64           // stock actual, nunca negativo
	CreatedAt   time.Time
}

// Clone devuelve una copia independiente del registro.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
