package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-api/internal/application/inventory"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-api/internal/interfaces/events"
	"github.com/jhoicas/stock-api/pkg/logger"
)

type adjustCall struct {
	ean, amount int64
	dir         entity.StockDirection
}

// fakeAdjuster registra las llamadas y devuelve un resultado fijo.
type fakeAdjuster struct {
	calls  []adjustCall
	result inventory.AdjustResult
	err    error
}

func (f *fakeAdjuster) Adjust(_ context.Context, ean, amount int64, dir entity.StockDirection) (inventory.AdjustResult, error) {
	f.calls = append(f.calls, adjustCall{ean, amount, dir})
	return f.result, f.err
}

// ========== stock.adjust ==========

func TestAdjustStockConsumer_Directions(t *testing.T) {
	tests := []struct {
		payload string
		want    entity.StockDirection
	}{
		{`{"ean":111,"quantity":3,"direction":"DEBIT"}`, entity.StockDebit},
		{`{"ean":111,"quantity":3,"direction":"CREDIT"}`, entity.StockCredit},
		{`{"ean":111,"quantity":3,"direction":"RETIRA_DO_ESTOQUE"}`, entity.StockDebit},
		{`{"ean":111,"quantity":3,"direction":"VOLTA_PARA_O_ESTOQUE"}`, entity.StockCredit},
	}
	for _, tt := range tests {
		f := &fakeAdjuster{result: inventory.Adjusted}
		err := events.NewAdjustStockConsumer(f, logger.Nop()).Handle(context.Background(), []byte(tt.payload))
		require.NoError(t, err, tt.payload)
		require.Len(t, f.calls, 1)
		assert.Equal(t, adjustCall{111, 3, tt.want}, f.calls[0])
	}
}

func TestAdjustStockConsumer_InvalidPayloads(t *testing.T) {
	payloads := []string{
		`no es json`,
		`{"quantity":3,"direction":"DEBIT"}`,
		`{"ean":0,"quantity":3,"direction":"DEBIT"}`,
		`{"ean":111,"direction":"DEBIT"}`,
		`{"ean":111,"quantity":-2,"direction":"DEBIT"}`,
		`{"ean":111,"quantity":2,"direction":"SIDEWAYS"}`,
	}
	for _, p := range payloads {
		f := &fakeAdjuster{result: inventory.Adjusted}
		err := events.NewAdjustStockConsumer(f, nil).Handle(context.Background(), []byte(p))
		assert.ErrorIs(t, err, domain.ErrInvalidInput, p)
		assert.Empty(t, f.calls, "no se llama al motor con payload inválido: %s", p)
	}
}

func TestAdjustStockConsumer_Outcomes(t *testing.T) {
	payload := []byte(`{"ean":5,"quantity":1,"direction":"DEBIT"}`)

	err := events.NewAdjustStockConsumer(&fakeAdjuster{result: inventory.AdjustNotFound}, nil).Handle(context.Background(), payload)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = events.NewAdjustStockConsumer(&fakeAdjuster{result: inventory.AdjustInsufficientStock}, nil).Handle(context.Background(), payload)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	boom := errors.New("conexión perdida")
	err = events.NewAdjustStockConsumer(&fakeAdjuster{err: boom}, nil).Handle(context.Background(), payload)
	assert.ErrorIs(t, err, boom)
}

func TestAdjustStockConsumer_ZeroAndLargeQuantity(t *testing.T) {
	f := &fakeAdjuster{result: inventory.Adjusted}
	c := events.NewAdjustStockConsumer(f, nil)
	require.NoError(t, c.Handle(context.Background(), []byte(`{"ean":5,"quantity":0,"direction":"CREDIT"}`)))
	require.NoError(t, c.Handle(context.Background(), []byte(`{"ean":5,"quantity":50000,"direction":"CREDIT"}`)))
	require.Len(t, f.calls, 2)
	assert.Equal(t, int64(50000), f.calls[1].amount)
}

// ========== stock.decrement ==========

func TestDecrementConsumer_AlwaysDebits(t *testing.T) {
	f := &fakeAdjuster{result: inventory.Adjusted}
	err := events.NewDecrementConsumer(f, nil).Handle(context.Background(), []byte(`{"ean":9,"quantity":4}`))
	require.NoError(t, err)
	require.Len(t, f.calls, 1)
	assert.Equal(t, adjustCall{9, 4, entity.StockDebit}, f.calls[0])

	err = events.NewDecrementConsumer(f, nil).Handle(context.Background(), []byte(`{"ean":9}`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ========== Dispatcher ==========

func TestDispatcher_AppleScenario(t *testing.T) {
	store := memory.NewStore()
	tx := memory.NewTxRunner(store)
	repo := memory.NewProductRepository(store)
	adjust := inventory.NewAdjustStockUseCase(tx, repo)
	ctx := context.Background()

	_, _, err := inventory.NewMergeUseCase(tx).Create(ctx, &entity.Product{
		EAN: 111, Name: "Apple", Description: "Fruta fresca", Price: decimal.RequireFromString("2.50"), Quantity: 10,
	})
	require.NoError(t, err)

	d := events.NewDispatcher(events.NewAdjustStockConsumer(adjust, nil), events.NewDecrementConsumer(adjust, nil))
	quantity := func() int64 {
		p, err := repo.Get(ctx, 111)
		require.NoError(t, err)
		return p.Quantity
	}

	require.NoError(t, d.Dispatch(ctx, entity.TopicStockDecrement, []byte(`{"ean":111,"quantity":10}`)))
	assert.Equal(t, int64(0), quantity())

	err = d.Dispatch(ctx, entity.TopicStockAdjust, []byte(`{"ean":111,"quantity":1,"direction":"DEBIT"}`))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(0), quantity())

	require.NoError(t, d.Dispatch(ctx, entity.TopicStockAdjust, []byte(`{"ean":111,"quantity":5,"direction":"CREDIT"}`)))
	assert.Equal(t, int64(5), quantity())

	err = d.Dispatch(ctx, entity.TopicStockAdjust, []byte(`{"ean":222,"quantity":1,"direction":"CREDIT"}`))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// 9223372036854775807 = math.MaxInt64: el crédito desbordaría la cantidad.
	err = d.Dispatch(ctx, entity.TopicStockAdjust, []byte(`{"ean":111,"quantity":9223372036854775807,"direction":"CREDIT"}`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(5), quantity())
}

func TestDispatcher_UnknownTopic(t *testing.T) {
	d := events.NewDispatcher(events.NewAdjustStockConsumer(&fakeAdjuster{}, nil), events.NewDecrementConsumer(&fakeAdjuster{}, nil))
	err := d.Dispatch(context.Background(), "stock.transfer", []byte(`{}`))
	assert.ErrorIs(t, err, events.ErrUnknownTopic)
}
