package dto

// AdjustStockEvent payload del tópico stock.adjust.
type AdjustStockEvent struct {
	EAN       *int64 `json:"ean"`
	Quantity  *int64 `json:"quantity"`
	Direction string `json:"direction"`
}

// DecrementStockEvent payload del tópico stock.decrement (siempre débito).
type DecrementStockEvent struct {
	EAN      *int64 `json:"ean"`
	Quantity *int64 `json:"quantity"`
}
