package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/Libasse27/erp-senegal-sub002/internal/application/dto"
	"github.com/Libasse27/erp-senegal-sub002/internal/domain"
)

// writeError traduce errores de dominio a un código HTTP y un mensaje distinto por tipo.
func writeError(c *fiber.Ctx, err error) error {
	status, body := mapError(err)
	if status == fiber.StatusServiceUnavailable {
		c.Set(fiber.HeaderRetryAfter, "1")
	}
	return c.Status(status).JSON(body)
}

func mapError(err error) (int, dto.ErrorResponse) {
	var insufficient *domain.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		return fiber.StatusConflict, dto.ErrorResponse{
			Code: "INSUFFICIENT_STOCK",
			Message: fmt.Sprintf("stock insuficiente: solicitado %d, disponible %d (faltan %d)",
				insufficient.Requested, insufficient.Available, insufficient.Shortfall()),
		}
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"}
	case errors.Is(err, domain.ErrLockTimeout):
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{Code: "LOCK_TIMEOUT", Message: "el stock está siendo modificado, reintente"}
	case errors.Is(err, domain.ErrProductNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "PRODUCT_NOT_FOUND", Message: "producto no encontrado"}
	case errors.Is(err, domain.ErrWarehouseNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "WAREHOUSE_NOT_FOUND", Message: "bodega no encontrada"}
	case errors.Is(err, domain.ErrNoStockRecord):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NO_STOCK_RECORD", Message: "no hay stock registrado para el producto en la bodega"}
	case errors.Is(err, domain.ErrNotStockable):
		return fiber.StatusUnprocessableEntity, dto.ErrorResponse{Code: "NOT_STOCKABLE", Message: "el producto es un servicio y no maneja inventario"}
	case errors.Is(err, domain.ErrInvalidTransfer):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "INVALID_TRANSFER", Message: "traslado inválido: origen y destino deben ser bodegas distintas"}
	case errors.Is(err, domain.ErrMalformedMovement):
		return fiber.StatusUnprocessableEntity, dto.ErrorResponse{Code: "MALFORMED_MOVEMENT", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	}
	return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
}
