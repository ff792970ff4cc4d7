// Package memory implementa el store de productos en memoria. Se usa en tests y en
// ejecuciones locales con STORE_DRIVER=memory.
package memory

import (
	"sort"
	"sync"

	"github.com/jhoicas/stock-api/internal/domain/entity"
)

// Store tabla de productos en memoria. Un único mutex protege todas las filas; las
// transacciones lo mantienen tomado de principio a fin, lo que serializa toda escritura.
type Store struct {
	mu   sync.Mutex
	rows map[int64]*entity.Product
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{rows: make(map[int64]*entity.Product)}
}

func sortedProducts(m map[int64]*entity.Product, limit, offset int) []*entity.Product {
	list := make([]*entity.Product, 0, len(m))
	for _, p := range m {
		list = append(list, p.Clone())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].EAN < list[j].EAN })
	if offset >= len(list) {
		return []*entity.Product{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
