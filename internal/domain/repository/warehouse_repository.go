package repository

import (
	"context"

	"github.com/Libasse27/erp-senegal-sub002/internal/domain/entity"
)

// WarehouseRepository puerto de lectura de bodegas (DIP).
// GetByID devuelve nil, nil si la bodega no existe.
type WarehouseRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
}
