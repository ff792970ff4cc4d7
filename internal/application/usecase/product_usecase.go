package usecase

import (
	"context"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/importer"
	"github.com/jhoicas/stock-api/internal/application/inventory"
	"github.com/jhoicas/stock-api/internal/domain/product"
	"github.com/jhoicas/stock-api/internal/domain/repository"
	"github.com/jhoicas/stock-api/pkg/logger"
)

// ProductUseCase servicio de peticiones síncronas: valida la entrada y delega en los motores.
// Los resultados de negocio se devuelven como valores; los errores son fallos de infraestructura
// o de validación.
type ProductUseCase struct {
	repo     repository.ProductRepository
	txRunner inventory.TxRunner
	merge    *inventory.MergeUseCase
	adjust   *inventory.AdjustStockUseCase
	importer *importer.ImportUseCase
	source   importer.RowSource
	limits   product.Limits
	log      *logger.Logger
}

// ProductUseCaseDeps dependencias del servicio.
type ProductUseCaseDeps struct {
	Repo     repository.ProductRepository
	TxRunner inventory.TxRunner
	Merge    *inventory.MergeUseCase
	Adjust   *inventory.AdjustStockUseCase
	Importer *importer.ImportUseCase
	Source   importer.RowSource
	Limits   product.Limits
	Log      *logger.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(deps ProductUseCaseDeps) *ProductUseCase {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &ProductUseCase{
		repo:     deps.Repo,
		txRunner: deps.TxRunner,
		merge:    deps.Merge,
		adjust:   deps.Adjust,
		importer: deps.Importer,
		source:   deps.Source,
		limits:   deps.Limits,
		log:      log.Named("products"),
	}
}

// Create valida y crea un producto con política "rechazar si existe".
// Con Created devuelve el registro persistido.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (inventory.CreateResult, *dto.ProductResponse, error) {
	p, err := product.ValidateNewProduct(in.ToInput(), uc.limits)
	if err != nil {
		return 0, nil, err
	}
	res, written, err := uc.merge.Create(ctx, p)
	if err != nil {
		return 0, nil, err
	}
	if res != inventory.Created {
		uc.log.Debug().Int64("ean", p.EAN).Msg("creación rechazada: el EAN ya existe")
		return res, nil, nil
	}
	return res, dto.ToProductResponse(written), nil
}

// Update valida el conjunto completo de campos y aplica la actualización aditiva sobre
// un EAN existente.
func (uc *ProductUseCase) Update(ctx context.Context, ean int64, in dto.UpdateProductRequest) (inventory.UpdateResult, *dto.ProductResponse, error) {
	p, err := product.ValidateNewProduct(in.ToInput(ean), uc.limits)
	if err != nil {
		return 0, nil, err
	}
	res, written, err := uc.merge.Update(ctx, p)
	if err != nil {
		return 0, nil, err
	}
	if res != inventory.Updated {
		return res, nil, nil
	}
	return res, dto.ToProductResponse(written), nil
}

// Delete borra el producto si existe.
func (uc *ProductUseCase) Delete(ctx context.Context, ean int64) (inventory.DeleteResult, error) {
	if _, err := product.NewEAN(&ean); err != nil {
		return 0, err
	}
	var result inventory.DeleteResult
	err := uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository) error {
		existing, err := productRepo.GetForUpdate(ctx, ean)
		if err != nil {
			return err
		}
		if existing == nil {
			result = inventory.DeleteNotFound
			return nil
		}
		if err := productRepo.Delete(ctx, ean); err != nil {
			return err
		}
		result = inventory.Deleted
		return nil
	})
	if err != nil {
		return 0, err
	}
	return result, nil
}

// Get obtiene un producto por EAN. nil, nil si no existe.
func (uc *ProductUseCase) Get(ctx context.Context, ean int64) (*dto.ProductResponse, error) {
	if _, err := product.NewEAN(&ean); err != nil {
		return nil, err
	}
	p, err := uc.repo.Get(ctx, ean)
	if err != nil {
		return nil, err
	}
	return dto.ToProductResponse(p), nil
}

// List lista productos ordenados por EAN.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *dto.ToProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// CheckAvailability valida EAN y cantidad pedida (mismo rango que una entrada de usuario)
// y consulta si hay stock suficiente.
func (uc *ProductUseCase) CheckAvailability(ctx context.Context, ean int64, quantity *int64) (inventory.Availability, error) {
	if _, err := product.NewEAN(&ean); err != nil {
		return 0, err
	}
	amount, err := product.NewQuantity(quantity, uc.limits)
	if err != nil {
		return 0, err
	}
	return uc.adjust.HasStock(ctx, ean, amount)
}

// ImportNow ejecuta una importación completa desde el origen configurado.
func (uc *ProductUseCase) ImportNow(ctx context.Context) (*dto.ImportReportResponse, error) {
	report, err := uc.importer.Run(ctx, uc.source)
	if err != nil {
		return nil, err
	}
	return &dto.ImportReportResponse{
		RunID:      report.RunID,
		Batches:    report.Batches,
		Rows:       report.Rows,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
	}, nil
}
