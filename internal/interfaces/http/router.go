package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-api/internal/application/usecase"
	"github.com/jhoicas/stock-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC *usecase.ProductUseCase
	Log       *logger.Logger
	// JWTSecret vacío deja las rutas de escritura sin autenticación.
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	productHandler := NewProductHandler(deps.ProductUC, deps.Log)

	writers := []fiber.Handler{}
	importers := []fiber.Handler{}
	if deps.JWTSecret != "" {
		auth := AuthMiddleware(deps.JWTSecret)
		writers = append(writers, auth, RequireRole(RoleAdmin, RoleOperator))
		importers = append(importers, auth, RequireRole(RoleAdmin, RoleIntegration))
	}

	products := api.Group("/products")

	// Lecturas (públicas)
	products.Get("/", productHandler.List)
	products.Get("/:ean/availability", productHandler.Availability)
	products.Get("/:ean", productHandler.GetByEAN)

	// Escrituras (Bearer Token si JWT_SECRET está configurado)
	products.Post("/import", append(importers, productHandler.Import)...)
	products.Post("/", append(writers, productHandler.Create)...)
	products.Put("/:ean", append(writers, productHandler.Update)...)
	products.Delete("/:ean", append(writers, productHandler.Delete)...)
}
