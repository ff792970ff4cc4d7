package importer

import (
	"context"

	"github.com/jhoicas/stock-api/internal/domain/product"
)

// RowSource origen externo de filas. Cada Open reinicia la secuencia desde el principio.
type RowSource interface {
	Open(ctx context.Context) (RowReader, error)
}

// RowReader recorre las filas de una lectura. Next devuelve io.EOF al terminar.
type RowReader interface {
	Next() (product.RawRow, error)
	Close() error
}
