package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/Libasse27/erp-senegal-sub002/internal/application/dto"
	"github.com/Libasse27/erp-senegal-sub002/internal/application/inventory"
)

// StockHandler maneja las peticiones HTTP del libro de existencias (protegido).
type StockHandler struct {
	svc      *inventory.StockService
	validate *validator.Validate
}

// NewStockHandler construye el handler.
func NewStockHandler(svc *inventory.StockService) *StockHandler {
	return &StockHandler{svc: svc, validate: validator.New()}
}

// RecordEntry godoc
// @Summary      Registrar entrada de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockEntryRequest  true  "product_id, warehouse_id, quantity, unit_cost opcional"
// @Success      201   {object}  dto.StockOperationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/stock/entries [post]
func (h *StockHandler) RecordEntry(c *fiber.Ctx) error {
	var in dto.StockEntryRequest
	if ok, err := h.bind(c, &in); !ok {
		return err
	}
	out, err := h.svc.RecordEntryFromRequest(c.Context(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RecordExit godoc
// @Summary      Registrar salida de stock
// @Description  Se valida contra la cantidad disponible (existencia menos reservado).
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockExitRequest  true  "product_id, warehouse_id, quantity, reason"
// @Success      201   {object}  dto.StockOperationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/exits [post]
func (h *StockHandler) RecordExit(c *fiber.Ctx) error {
	var in dto.StockExitRequest
	if ok, err := h.bind(c, &in); !ok {
		return err
	}
	out, err := h.svc.RecordExitFromRequest(c.Context(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// TransferStock godoc
// @Summary      Trasladar stock entre bodegas
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockTransferRequest  true  "source_warehouse_id, destination_warehouse_id"
// @Success      201   {object}  dto.StockOperationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/transfers [post]
func (h *StockHandler) TransferStock(c *fiber.Ctx) error {
	var in dto.StockTransferRequest
	if ok, err := h.bind(c, &in); !ok {
		return err
	}
	out, err := h.svc.TransferStockFromRequest(c.Context(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// AdjustStock godoc
// @Summary      Ajuste por conteo físico
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockAdjustmentRequest  true  "reason: positive-adjustment, negative-adjustment o loss"
// @Success      201   {object}  dto.StockOperationResponse
// @Router       /api/stock/adjustments [post]
func (h *StockHandler) AdjustStock(c *fiber.Ctx) error {
	var in dto.StockAdjustmentRequest
	if ok, err := h.bind(c, &in); !ok {
		return err
	}
	out, err := h.svc.AdjustStockFromRequest(c.Context(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetRecord godoc
// @Summary      Stock de un producto en una bodega
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StockRecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/records/{product_id}/{warehouse_id} [get]
func (h *StockHandler) GetRecord(c *fiber.Ctx) error {
	rec, err := h.svc.GetStockRecord(c.Context(), c.Params("product_id"), c.Params("warehouse_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(inventory.ToRecordResponse(rec))
}

// Reconcile godoc
// @Summary      Conciliar registro contra el libro de movimientos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReconcileResponse
// @Router       /api/stock/records/{product_id}/{warehouse_id}/reconcile [get]
func (h *StockHandler) Reconcile(c *fiber.Ctx) error {
	report, err := h.svc.Reconcile(c.Context(), c.Params("product_id"), c.Params("warehouse_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(inventory.ToReconcileResponse(report))
}

// ListMovements godoc
// @Summary      Listar movimientos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "Producto"
// @Param        warehouse_id  query  string  false  "Bodega (origen o destino)"
// @Param        type          query  string  false  "entry, exit, transfer, adjustment, return"
// @Param        reason        query  string  false  "Motivo"
// @Param        from          query  string  false  "RFC3339"
// @Param        to            query  string  false  "RFC3339"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	var q dto.MovementListQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	if err := h.validate.Struct(q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	out, err := h.svc.ListMovementsFromQuery(c.Context(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListAlerts godoc
// @Summary      Alertas de stock (ruptura, bajo mínimo, bajo umbral, por vencer)
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.AlertReportResponse
// @Router       /api/stock/alerts [get]
func (h *StockHandler) ListAlerts(c *fiber.Ctx) error {
	report, err := h.svc.ListAlerts(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(inventory.ToAlertReportResponse(report))
}

// bind parsea y valida el body. Si falla ya escribió la respuesta 400 y devuelve false.
func (h *StockHandler) bind(c *fiber.Ctx, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.validate.Struct(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	return true, nil
}
