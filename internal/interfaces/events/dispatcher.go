package events

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jhoicas/stock-api/internal/domain/entity"
)

// ErrUnknownTopic evento con un tópico sin consumidor registrado.
var ErrUnknownTopic = errors.New("tópico sin consumidor")

// Handler consumidor de un tópico.
type Handler interface {
	Handle(ctx context.Context, payload []byte) error
}

// Dispatcher enruta cada evento al consumidor de su tópico.
type Dispatcher struct {
	handlers map[string]Handler
}

// NewDispatcher registra los dos consumidores de stock.
func NewDispatcher(adjust *AdjustStockConsumer, decrement *DecrementConsumer) *Dispatcher {
	return &Dispatcher{handlers: map[string]Handler{
		entity.TopicStockAdjust:    adjust,
		entity.TopicStockDecrement: decrement,
	}}
}

// Dispatch procesa un evento. Su firma coincide con postgres.EventHandler.
func (d *Dispatcher) Dispatch(ctx context.Context, topic string, payload []byte) error {
	ctx, span := otel.Tracer("stock-api/events").Start(ctx, "event.consume")
	defer span.End()
	span.SetAttributes(attribute.String("event.topic", topic))

	h, ok := d.handlers[topic]
	if !ok {
		err := fmt.Errorf("%s: %w", topic, ErrUnknownTopic)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if err := h.Handle(ctx, payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
