package repository

import (
	"context"

	"github.com/Libasse27/erp-senegal-sub002/internal/domain/entity"
)

// ProductRepository puerto de lectura del catálogo de productos (DIP).
// GetByID devuelve nil, nil si el producto no existe.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
}
