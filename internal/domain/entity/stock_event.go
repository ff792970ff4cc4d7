package entity

import (
	"encoding/json"
	"time"
)

// Tópicos de eventos de stock.
const (
	TopicStockAdjust    = "stock.adjust"
	TopicStockDecrement = "stock.decrement"
)

// Estados de un evento en la cola.
const (
	EventStatusPending = "pending"
	EventStatusDone    = "done"
	EventStatusFailed  = "failed" // terminal: no se reintenta
)

// StockEvent mensaje pendiente o procesado en la cola de eventos de stock.
type StockEvent struct {
	ID          string
	Topic       string
	Payload     json.RawMessage
	Status      string
	Error       string
	CreatedAt   time.Time
	ProcessedAt *time.Time
}
