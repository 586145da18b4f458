package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Libasse27/erp-senegal-sub002/internal/domain/entity"
)

// Replay reconstruye cantidad, costo y valor de una clave aplicando sus movimientos
// en orden de commit desde un registro vacío (cantidad 0, costo 0).
func Replay(key entity.StockKey, movements []*entity.StockMovement) (*entity.StockRecord, error) {
	rec := &entity.StockRecord{ProductID: key.ProductID, WarehouseID: key.WarehouseID}
	rec.SetPosition(0, decimal.Zero)
	for _, m := range movements {
		if !m.Touches(key) {
			continue
		}
		if m.DestinationWarehouseID == key.WarehouseID {
			qty, cost := ApplyIncomingStock(rec, m.Quantity, m.UnitCost)
			rec.SetPosition(qty, cost)
		} else {
			if rec.QuantityOnHand < m.Quantity {
				return nil, fmt.Errorf("replay %s: movimiento %s deja cantidad negativa", key, m.ID)
			}
			rec.SetPosition(rec.QuantityOnHand-m.Quantity, rec.WeightedAverageCost)
		}
		rec.LastMovementAt = m.CreatedAt
	}
	return rec, nil
}

// Matches compara los campos que el libro de movimientos determina.
func Matches(live, replayed *entity.StockRecord) bool {
	return live.QuantityOnHand == replayed.QuantityOnHand &&
		live.WeightedAverageCost.Equal(replayed.WeightedAverageCost) &&
		live.StockValue.Equal(replayed.StockValue)
}
