package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/inventory"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

// MergeUseCase motor de fusión: resuelve "llegan datos para el EAN" contra lo persistido.
// Cada operación corre en su propia transacción con el EAN bloqueado (GetForUpdate),
// así que se serializa con cualquier otra escritura del mismo EAN.
type MergeUseCase struct {
	txRunner TxRunner
	now      func() time.Time
}

// NewMergeUseCase construye el motor de fusión.
func NewMergeUseCase(txRunner TxRunner) *MergeUseCase {
	return &MergeUseCase{txRunner: txRunner, now: storeNow}
}

// storeNow hora actual con la precisión de TIMESTAMPTZ, para que el registro devuelto
// coincida con el leído después desde Postgres.
func storeNow() time.Time {
	return time.Now().Truncate(time.Microsecond)
}

// Create política "rechazar si existe": escribe el registro solo si el EAN no existe.
// Con Created devuelve el registro tal como quedó escrito en la transacción.
func (uc *MergeUseCase) Create(ctx context.Context, product *entity.Product) (CreateResult, *entity.Product, error) {
	var (
		result  CreateResult
		written *entity.Product
	)
	err := uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository) error {
		existing, err := productRepo.GetForUpdate(ctx, product.EAN)
		if err != nil {
			return err
		}
		if existing != nil {
			result = CreateConflict
			return nil
		}
		record := product.Clone()
		record.CreatedAt = uc.now()
		if err := productRepo.Create(ctx, record); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				result = CreateConflict
				return nil
			}
			return err
		}
		result = Created
		written = record
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return result, written, nil
}

// Merge política aditiva en una transacción propia. Devuelve el registro persistido.
func (uc *MergeUseCase) Merge(ctx context.Context, incoming *entity.Product) (*entity.Product, error) {
	var merged *entity.Product
	err := uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository) error {
		var err error
		merged, err = uc.MergeInTx(ctx, productRepo, incoming)
		return err
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

// MergeInTx aplica la fusión aditiva usando el repositorio del caller (misma transacción).
// Lo usa el pipeline de importación para fusionar todas las filas de un lote en una sola tx.
func (uc *MergeUseCase) MergeInTx(ctx context.Context, productRepo repository.ProductRepository, incoming *entity.Product) (*entity.Product, error) {
	existing, err := productRepo.GetForUpdate(ctx, incoming.EAN)
	if err != nil {
		return nil, err
	}
	merged, err := inventory.MergeAdditive(existing, incoming, uc.now())
	if err != nil {
		return nil, err
	}
	if err := productRepo.Save(ctx, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// Update variante aditiva restringida a EANs existentes: reemplaza name/description/price,
// suma la cantidad y renueva CreatedAt. Si el EAN no existe no escribe nada.
// Con Updated devuelve el registro escrito.
func (uc *MergeUseCase) Update(ctx context.Context, fields *entity.Product) (UpdateResult, *entity.Product, error) {
	var (
		result  UpdateResult
		written *entity.Product
	)
	err := uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository) error {
		existing, err := productRepo.GetForUpdate(ctx, fields.EAN)
		if err != nil {
			return err
		}
		if existing == nil {
			result = UpdateNotFound
			return nil
		}
		merged, err := inventory.MergeAdditive(existing, fields, uc.now())
		if err != nil {
			return err
		}
		if err := productRepo.Save(ctx, merged); err != nil {
			return err
		}
		result = Updated
		written = merged
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return result, written, nil
}
