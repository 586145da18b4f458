package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Libasse27/erp-senegal-sub002/internal/application/inventory"
	"github.com/Libasse27/erp-senegal-sub002/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Stock     *inventory.StockService
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	stock := api.Group("/stock", AuthMiddleware(deps.JWTSecret))
	h := NewStockHandler(deps.Stock)

	writers := RequireRole(jwt.RoleAdmin, jwt.RoleStockManager)
	readers := RequireRole(jwt.RoleAdmin, jwt.RoleStockManager, jwt.RoleSeller, jwt.RoleAuditor)

	stock.Post("/entries", writers, h.RecordEntry)
	stock.Post("/exits", RequireRole(jwt.RoleAdmin, jwt.RoleStockManager, jwt.RoleSeller), h.RecordExit)
	stock.Post("/transfers", writers, h.TransferStock)
	stock.Post("/adjustments", writers, h.AdjustStock)

	stock.Get("/records/:product_id/:warehouse_id", readers, h.GetRecord)
	stock.Get("/records/:product_id/:warehouse_id/reconcile", RequireRole(jwt.RoleAdmin, jwt.RoleAuditor), h.Reconcile)
	stock.Get("/movements", readers, h.ListMovements)
	stock.Get("/alerts", readers, h.ListAlerts)
}
