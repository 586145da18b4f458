package repository

import (
	"context"

	"github.com/Libasse27/erp-senegal-sub002/internal/domain/entity"
)

// StockRecordRepository define el puerto para consultar/actualizar stock por bodega+producto.
// Usado dentro de transacciones para garantizar consistencia.
type StockRecordRepository interface {
	// Get devuelve nil, nil si no existe registro para la clave.
	Get(ctx context.Context, key entity.StockKey) (*entity.StockRecord, error)
	// GetForUpdate igual que Get pero bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockRecord, error)
	// Save inserta (Version == 0) o actualiza comparando Version; incrementa Version.
	Save(ctx context.Context, record *entity.StockRecord) error
	// ListActive registros no eliminados.
	ListActive(ctx context.Context) ([]*entity.StockRecord, error)
}
