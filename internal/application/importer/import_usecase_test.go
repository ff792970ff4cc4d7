package importer_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-api/internal/application/importer"
	"github.com/jhoicas/stock-api/internal/application/inventory"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/product"
	"github.com/jhoicas/stock-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-api/pkg/logger"
)

// sliceSource origen en memoria; cada Open recorre las mismas filas.
type sliceSource struct {
	rows    []product.RawRow
	opened  chan struct{}
	release chan struct{}
}

func (s *sliceSource) Open(ctx context.Context) (importer.RowReader, error) {
	if s.opened != nil {
		close(s.opened)
		<-s.release
	}
	return &sliceReader{rows: s.rows}, nil
}

type sliceReader struct {
	rows []product.RawRow
	pos  int
}

func (r *sliceReader) Next() (product.RawRow, error) {
	if r.pos >= len(r.rows) {
		return product.RawRow{}, io.EOF
	}
	row := r.rows[r.pos]
	r.pos++
	return row, nil
}

func (r *sliceReader) Close() error { return nil }

func row(line int, ean int64, qty string) product.RawRow {
	return product.RawRow{
		Line:        line,
		EAN:         fmt.Sprint(ean),
		Name:        "Producto",
		Description: "Descripción",
		Price:       "2.50",
		Quantity:    qty,
	}
}

func newImporter(store *memory.Store) *importer.ImportUseCase {
	tx := memory.NewTxRunner(store)
	return importer.NewImportUseCase(tx, inventory.NewMergeUseCase(tx), product.DefaultLimits(), 0, logger.Nop())
}

func quantityOf(t *testing.T, store *memory.Store, ean int64) int64 {
	t.Helper()
	p, err := memory.NewProductRepository(store).Get(context.Background(), ean)
	require.NoError(t, err)
	require.NotNil(t, p, "ean %d debería existir", ean)
	return p.Quantity
}

// ========== Lotes ==========

func TestRun_SameKeyInOneBatchAccumulates(t *testing.T) {
	store := memory.NewStore()
	report, err := newImporter(store).Run(context.Background(), &sliceSource{rows: []product.RawRow{
		row(1, 42, "4"),
		row(2, 42, "6"),
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Batches)
	assert.Equal(t, 2, report.Rows)
	assert.NotEmpty(t, report.RunID)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))
	assert.Equal(t, int64(10), quantityOf(t, store, 42))
}

func TestRun_TwiceDoublesQuantity(t *testing.T) {
	store := memory.NewStore()
	uc := newImporter(store)
	src := &sliceSource{rows: []product.RawRow{row(1, 7, "20")}}

	_, err := uc.Run(context.Background(), src)
	require.NoError(t, err)
	_, err = uc.Run(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, int64(40), quantityOf(t, store, 7))
}

func TestRun_SplitsIntoBatches(t *testing.T) {
	store := memory.NewStore()
	rows := make([]product.RawRow, 0, 31)
	for i := 1; i <= 31; i++ {
		rows = append(rows, row(i, int64(i), "1"))
	}
	report, err := newImporter(store).Run(context.Background(), &sliceSource{rows: rows})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Batches)
	assert.Equal(t, 31, report.Rows)

	all, err := memory.NewProductRepository(store).List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 31)
}

func TestRun_EmptySource(t *testing.T) {
	report, err := newImporter(memory.NewStore()).Run(context.Background(), &sliceSource{})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Batches)
	assert.Equal(t, 0, report.Rows)
}

// ========== Fallos ==========

func TestRun_InvalidRowAbortsItsBatchOnly(t *testing.T) {
	store := memory.NewStore()
	rows := make([]product.RawRow, 0, 20)
	for i := 1; i <= 20; i++ {
		rows = append(rows, row(i, int64(100+i), "5"))
	}
	rows[17].Name = "ab" // línea 18, segundo lote

	report, err := newImporter(store).Run(context.Background(), &sliceSource{rows: rows})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	var batchErr *importer.BatchError
	require.True(t, errors.As(err, &batchErr))
	assert.Equal(t, 2, batchErr.Batch)
	assert.Equal(t, 18, batchErr.Line)

	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "name", ve.Field)

	assert.Equal(t, 1, report.Batches)
	assert.Equal(t, 15, report.Rows)

	repo := memory.NewProductRepository(store)
	all, err := repo.List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 15)
	p, err := repo.Get(context.Background(), 116)
	require.NoError(t, err)
	assert.Nil(t, p, "las filas válidas del lote fallido no se escriben")
}

func TestRun_QuantityAboveCeilingRejected(t *testing.T) {
	store := memory.NewStore()
	_, err := newImporter(store).Run(context.Background(), &sliceSource{rows: []product.RawRow{
		row(1, 9, "3"),
		row(2, 10, "1001"),
	}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	p, err := memory.NewProductRepository(store).Get(context.Background(), 9)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newImporter(memory.NewStore()).Run(ctx, &sliceSource{rows: []product.RawRow{row(1, 1, "1")}})
	assert.ErrorIs(t, err, context.Canceled)
}

// ========== Una ejecución a la vez ==========

func TestRun_SecondConcurrentRunRejected(t *testing.T) {
	store := memory.NewStore()
	uc := newImporter(store)
	blocking := &sliceSource{
		rows:    []product.RawRow{row(1, 5, "2")},
		opened:  make(chan struct{}),
		release: make(chan struct{}),
	}

	done := make(chan error, 1)
	go func() {
		_, err := uc.Run(context.Background(), blocking)
		done <- err
	}()
	<-blocking.opened

	_, err := uc.Run(context.Background(), &sliceSource{rows: []product.RawRow{row(1, 5, "2")}})
	assert.ErrorIs(t, err, domain.ErrImportInProgress)

	close(blocking.release)
	require.NoError(t, <-done)
	assert.Equal(t, int64(2), quantityOf(t, store, 5))
}
