package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/Libasse27/erp-senegal-sub002/internal/domain/entity"
)

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
func CostCalculator(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum)
}

// RoundCurrency redondea al entero de la moneda (FCFA sin subunidad).
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(entity.CurrencyPlaces)
}

// StockValue valor del stock = round(cantidad * costo).
func StockValue(quantity int64, cost decimal.Decimal) decimal.Decimal {
	return RoundCurrency(cost.Mul(decimal.NewFromInt(quantity)))
}

// ApplyIncomingStock costo promedio ponderado (CUMP) tras una entrada.
// Función pura: no toca el registro ni el almacenamiento. incomingQuantity > 0.
// Con stock actual en cero el nuevo costo es exactamente el costo de entrada.
func ApplyIncomingStock(record *entity.StockRecord, incomingQuantity int64, incomingUnitCost decimal.Decimal) (int64, decimal.Decimal) {
	var onHand int64
	current := decimal.Zero
	if record != nil {
		onHand = record.QuantityOnHand
		current = record.WeightedAverageCost
	}
	newQuantity := onHand + incomingQuantity
	if onHand == 0 {
		return newQuantity, RoundCurrency(incomingUnitCost)
	}
	cost := CostCalculator(
		decimal.NewFromInt(onHand), current,
		decimal.NewFromInt(incomingQuantity), incomingUnitCost,
	)
	return newQuantity, RoundCurrency(cost)
}
