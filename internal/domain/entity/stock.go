package entity

import "strings"

// StockDirection sentido de un ajuste de stock: DEBIT resta, CREDIT suma.
type StockDirection string

const (
	StockDebit  StockDirection = "DEBIT"
	StockCredit StockDirection = "CREDIT"
)

// Nombres heredados que aún envían algunos productores de eventos.
const (
	legacyDebit  = "RETIRA_DO_ESTOQUE"
	legacyCredit = "VOLTA_PARA_O_ESTOQUE"
)

// ParseStockDirection interpreta el sentido recibido en un evento. ok=false si no es reconocido.
func ParseStockDirection(s string) (StockDirection, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(StockDebit), legacyDebit:
		return StockDebit, true
	case string(StockCredit), legacyCredit:
		return StockCredit, true
	}
	return "", false
}
