package repository

import (
	"context"
	"time"

	"github.com/Libasse27/erp-senegal-sub002/internal/domain/entity"
)

// MovementFilter filtros para listar movimientos. WarehouseID coincide con origen o destino.
type MovementFilter struct {
	ProductID   string
	WarehouseID string
	Type        entity.MovementType
	Reason      entity.MovementReason
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// StockMovementRepository define el puerto de persistencia del libro de movimientos (solo inserción).
type StockMovementRepository interface {
	// Append asigna ID (si falta) y Sequence; nunca actualiza.
	Append(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	// List más recientes primero.
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, error)
	// ListByKey todos los movimientos de la clave en orden de commit ascendente.
	ListByKey(ctx context.Context, key entity.StockKey) ([]*entity.StockMovement, error)
}
