package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
	"github.com/jhoicas/stock-api/pkg/logger"
)

var _ repository.StockEventRepository = (*EventQueue)(nil)

// notifyChannel canal LISTEN/NOTIFY que despierta a los consumidores.
const notifyChannel = "stock_events"

// EventHandler procesa un evento. Un error marca el evento como failed (terminal).
type EventHandler func(ctx context.Context, topic string, payload []byte) error

// EventQueue cola de eventos de stock sobre la tabla stock_events.
// Publish inserta y notifica; Consume reclama eventos pendientes con FOR UPDATE SKIP LOCKED,
// por lo que varias instancias pueden consumir en paralelo sin procesar dos veces el mismo evento.
// El handler corre sobre la transacción del reclamo: el ajuste de stock y el cambio de estado
// del evento se confirman juntos o no se confirma ninguno.
type EventQueue struct {
	pool         *pgxpool.Pool
	log          *logger.Logger
	pollInterval time.Duration
}

// NewEventQueue construye la cola. pollInterval acota la espera entre notificaciones.
func NewEventQueue(pool *pgxpool.Pool, log *logger.Logger, pollInterval time.Duration) *EventQueue {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &EventQueue{pool: pool, log: log, pollInterval: pollInterval}
}

// Publish encola un evento en la misma transacción que la notificación.
func (q *EventQueue) Publish(ctx context.Context, topic string, payload []byte) (*entity.StockEvent, error) {
	ev := &entity.StockEvent{
		ID:        uuid.New().String(),
		Topic:     topic,
		Payload:   payload,
		Status:    entity.EventStatusPending,
		CreatedAt: time.Now(),
	}
	tx, err := q.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO stock_events (id, topic, payload, status, created_at) VALUES ($1, $2, $3, $4, $5)`,
		ev.ID, ev.Topic, string(ev.Payload), ev.Status, ev.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert stock event: %w", err)
	}
	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, ev.Topic); err != nil {
		return nil, fmt.Errorf("notify stock event: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return ev, nil
}

// Get obtiene un evento por ID.
func (q *EventQueue) Get(ctx context.Context, id string) (*entity.StockEvent, error) {
	var ev entity.StockEvent
	var payload string
	err := q.pool.QueryRow(ctx,
		`SELECT id::text, topic, payload::text, status, error, created_at, processed_at FROM stock_events WHERE id = $1`, id,
	).Scan(&ev.ID, &ev.Topic, &payload, &ev.Status, &ev.Error, &ev.CreatedAt, &ev.ProcessedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock event: %w", err)
	}
	ev.Payload = []byte(payload)
	return &ev, nil
}

// Consume escucha notificaciones y procesa eventos pendientes hasta que ctx se cancele.
// Cada evento se procesa una sola vez: éxito -> done, error -> failed (sin reintento).
func (q *EventQueue) Consume(ctx context.Context, handle EventHandler) error {
	conn, err := q.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return fmt.Errorf("listen %s: %w", notifyChannel, err)
	}

	for {
		q.drain(ctx, handle)

		waitCtx, cancel := context.WithTimeout(ctx, q.pollInterval)
		_, err := conn.Conn().WaitForNotification(waitCtx)
		cancel()
		if ctx.Err() != nil {
			return nil
		}
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("wait notification: %w", err)
		}
	}
}

// drain procesa eventos pendientes hasta vaciar la cola o encontrar un error de infraestructura.
func (q *EventQueue) drain(ctx context.Context, handle EventHandler) {
	for ctx.Err() == nil {
		processed, err := q.processNext(ctx, handle)
		if err != nil {
			q.log.Error().Err(err).Msg("procesar cola de eventos")
			return
		}
		if !processed {
			return
		}
	}
}

// processNext reclama un evento pendiente y lo procesa. processed=false si la cola está vacía.
func (q *EventQueue) processNext(ctx context.Context, handle EventHandler) (processed bool, err error) {
	tx, err := q.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	var id, topic, payload string
	err = tx.QueryRow(ctx, `
		SELECT id::text, topic, payload::text
		FROM stock_events
		WHERE status = 'pending'
		ORDER BY created_at, id
		FOR UPDATE SKIP LOCKED
		LIMIT 1`).Scan(&id, &topic, &payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("claim stock event: %w", err)
	}

	status, errText := entity.EventStatusDone, ""
	if herr := handle(withOuterTx(ctx, tx), topic, []byte(payload)); herr != nil {
		status, errText = entity.EventStatusFailed, herr.Error()
		q.log.Warn().Err(herr).Str("event_id", id).Str("topic", topic).Msg("evento rechazado")
	} else {
		q.log.Debug().Str("event_id", id).Str("topic", topic).Msg("evento procesado")
	}

	_, err = tx.Exec(ctx,
		`UPDATE stock_events SET status = $2, error = $3, processed_at = now() WHERE id = $1`,
		id, status, errText,
	)
	if err != nil {
		return false, fmt.Errorf("update stock event: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}
	return true, nil
}
