// Package csvsource lee filas de importación de productos desde un archivo CSV
// (ean,name,description,price,quantity, sin cabecera). Sin ruta configurada usa el
// archivo embebido data/products.csv.
package csvsource

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/stock-api/internal/application/importer"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/product"
)

//go:embed data/products.csv
var embeddedProducts []byte

// Codificaciones soportadas del archivo de origen.
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "iso-8859-1"
)

const fieldsPerRow = 5

var _ importer.RowSource = (*Source)(nil)

// Source origen reiniciable: cada Open vuelve a leer desde el principio.
type Source struct {
	path     string
	encoding string
}

// New construye el origen. path vacío = archivo embebido (siempre UTF-8).
func New(path, encoding string) (*Source, error) {
	enc := strings.ToLower(strings.TrimSpace(encoding))
	switch enc {
	case "", "utf8", EncodingUTF8:
		enc = EncodingUTF8
	case "latin1", "iso8859-1", EncodingLatin1:
		enc = EncodingLatin1
	default:
		return nil, fmt.Errorf("codificación no soportada: %q", encoding)
	}
	return &Source{path: path, encoding: enc}, nil
}

// Open abre una nueva lectura del origen.
func (s *Source) Open(ctx context.Context) (importer.RowReader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.path == "" {
		return newReader(bytes.NewReader(embeddedProducts), nil), nil
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("abrir archivo de importación: %w", err)
	}
	var r io.Reader = f
	if s.encoding == EncodingLatin1 {
		r = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}
	return newReader(r, f), nil
}

// reader recorre el CSV fila a fila.
type reader struct {
	csv    *csv.Reader
	closer io.Closer
}

func newReader(r io.Reader, closer io.Closer) *reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = fieldsPerRow
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	return &reader{csv: cr, closer: closer}
}

// Next devuelve la siguiente fila o io.EOF al final del archivo.
func (r *reader) Next() (product.RawRow, error) {
	rec, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return product.RawRow{}, io.EOF
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return product.RawRow{}, domain.NewFieldError("row", fmt.Sprintf("línea %d: fila CSV mal formada: %v", perr.Line, perr.Err))
		}
		return product.RawRow{}, fmt.Errorf("leer CSV: %w", err)
	}
	line, _ := r.csv.FieldPos(0)
	return product.RawRow{
		Line:        line,
		EAN:         rec[0],
		Name:        rec[1],
		Description: rec[2],
		Price:       rec[3],
		Quantity:    rec[4],
	}, nil
}

// Close libera el archivo subyacente.
func (r *reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
