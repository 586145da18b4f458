package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Libasse27/erp-senegal-sub002/internal/domain/entity"
	"github.com/Libasse27/erp-senegal-sub002/internal/domain/inventory"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestApplyIncomingStock_PromedioPonderado(t *testing.T) {
	rec := &entity.StockRecord{}
	rec.SetPosition(10, dec("100"))

	qty, cost := inventory.ApplyIncomingStock(rec, 5, dec("130"))
	assert.Equal(t, int64(15), qty)
	assert.True(t, dec("110").Equal(cost), "(10*100 + 5*130) / 15 = 110, got %s", cost)
	assert.True(t, dec("1650").Equal(inventory.StockValue(qty, cost)))
}

func TestApplyIncomingStock_StockCeroTomaCostoEntrada(t *testing.T) {
	rec := &entity.StockRecord{}
	rec.SetPosition(0, dec("999"))

	qty, cost := inventory.ApplyIncomingStock(rec, 4, dec("250"))
	assert.Equal(t, int64(4), qty)
	assert.True(t, dec("250").Equal(cost))

	qty, cost = inventory.ApplyIncomingStock(nil, 3, dec("75.4"))
	assert.Equal(t, int64(3), qty)
	assert.True(t, dec("75").Equal(cost), "registro inexistente: costo de entrada redondeado")
}

func TestApplyIncomingStock_RedondeoFCFA(t *testing.T) {
	rec := &entity.StockRecord{}
	rec.SetPosition(3, dec("100"))

	// (3*100 + 1*101) / 4 = 100.25
	_, cost := inventory.ApplyIncomingStock(rec, 1, dec("101"))
	assert.True(t, dec("100").Equal(cost))

	// (1*100 + 1*101) / 2 = 100.5 -> 101
	rec.SetPosition(1, dec("100"))
	_, cost = inventory.ApplyIncomingStock(rec, 1, dec("101"))
	assert.True(t, dec("101").Equal(cost))
}

func TestApplyIncomingStock_NoModificaRegistro(t *testing.T) {
	rec := &entity.StockRecord{}
	rec.SetPosition(10, dec("100"))

	inventory.ApplyIncomingStock(rec, 5, dec("130"))
	assert.Equal(t, int64(10), rec.QuantityOnHand)
	assert.True(t, dec("100").Equal(rec.WeightedAverageCost))
}

func TestCostCalculator_SumaCero(t *testing.T) {
	assert.True(t, inventory.CostCalculator(decimal.Zero, dec("10"), decimal.Zero, dec("20")).IsZero())
}
