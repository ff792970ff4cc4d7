package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/inventory"
	"github.com/jhoicas/stock-api/internal/application/usecase"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/pkg/logger"
)

// ProductHandler maneja las peticiones HTTP de productos y stock.
type ProductHandler struct {
	uc  *usecase.ProductUseCase
	log *logger.Logger
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase, log *logger.Logger) *ProductHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ProductHandler{uc: uc, log: log.Named("http")}
}

// Import godoc
// @Summary      Importar productos desde el origen configurado
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ImportReportResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/products/import [post]
func (h *ProductHandler) Import(c *fiber.Ctx) error {
	out, err := h.uc.ImportNow(c.UserContext())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrImportInProgress):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "IMPORT_IN_PROGRESS", Message: err.Error()})
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "IMPORT_FAILED", Message: err.Error()})
		}
		return h.internal(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	if res == inventory.CreateConflict {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "el EAN ya existe"})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByEAN godoc
// @Summary      Obtener producto por EAN
// @Tags         products
// @Produce      json
// @Param        ean  path  int  true  "EAN del producto"
// @Success      200  {object}  dto.ProductResponse
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/products/{ean} [get]
func (h *ProductHandler) GetByEAN(c *fiber.Ctx) error {
	ean, err := eanParam(c)
	if err != nil {
		return h.fail(c, err)
	}
	out, err := h.uc.Get(c.UserContext(), ean)
	if err != nil {
		return h.fail(c, err)
	}
	if out == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{
		Limit:  c.QueryInt("limit", dto.DefaultPageLimit),
		Offset: c.QueryInt("offset", 0),
	}
	out, err := h.uc.List(c.UserContext(), page)
	if err != nil {
		return h.internal(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar producto (la cantidad se suma a la existente)
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        ean   path  int  true  "EAN del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "Datos completos del producto"
// @Success      200   {object}  dto.ProductResponse
// @Success      204
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/products/{ean} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	ean, err := eanParam(c)
	if err != nil {
		return h.fail(c, err)
	}
	var in dto.UpdateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, out, err := h.uc.Update(c.UserContext(), ean, in)
	if err != nil {
		return h.fail(c, err)
	}
	if res == inventory.UpdateNotFound {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar producto
// @Tags         products
// @Security     Bearer
// @Param        ean  path  int  true  "EAN del producto"
// @Success      200
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/products/{ean} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	ean, err := eanParam(c)
	if err != nil {
		return h.fail(c, err)
	}
	res, err := h.uc.Delete(c.UserContext(), ean)
	if err != nil {
		return h.fail(c, err)
	}
	if res == inventory.DeleteNotFound {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.SendStatus(fiber.StatusOK)
}

// Availability godoc
// @Summary      Consultar disponibilidad de stock
// @Tags         products
// @Produce      json
// @Param        ean       path   int  true  "EAN del producto"
// @Param        quantity  query  int  true  "Cantidad pedida"
// @Success      200  {object}  dto.AvailabilityResponse
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/products/{ean}/availability [get]
func (h *ProductHandler) Availability(c *fiber.Ctx) error {
	ean, err := eanParam(c)
	if err != nil {
		return h.fail(c, err)
	}
	var quantity *int64
	if raw := c.Query("quantity"); raw != "" {
		q, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return h.fail(c, domain.NewFieldError("quantity", "la cantidad debe ser un número entero"))
		}
		quantity = &q
	}
	res, err := h.uc.CheckAvailability(c.UserContext(), ean, quantity)
	if err != nil {
		return h.fail(c, err)
	}
	if res == inventory.AvailabilityUnknown {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(dto.AvailabilityResponse{Available: res == inventory.Available})
}

func eanParam(c *fiber.Ctx) (int64, error) {
	ean, err := strconv.ParseInt(c.Params("ean"), 10, 64)
	if err != nil {
		return 0, domain.NewKeyError("el EAN debe ser numérico")
	}
	return ean, nil
}

// fail traduce rechazos de validación a 400 y el resto a 500.
func (h *ProductHandler) fail(c *fiber.Ctx, err error) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: ve.Message})
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	return h.internal(c, err)
}

func (h *ProductHandler) internal(c *fiber.Ctx, err error) error {
	h.log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}
