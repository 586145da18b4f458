package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Libasse27/erp-senegal-sub002/internal/domain"
	"github.com/Libasse27/erp-senegal-sub002/internal/domain/entity"
)

func TestNewEntryMovement_SoloDestino(t *testing.T) {
	m, err := entity.NewEntryMovement("p", "w", 10, entity.ReasonPurchase)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementEntry, m.Type)
	assert.Empty(t, m.SourceWarehouseID)
	assert.Equal(t, "w", m.DestinationWarehouseID)
	assert.True(t, m.Increases())
}

func TestNewEntryMovement_DevolucionClienteEsReturn(t *testing.T) {
	m, err := entity.NewEntryMovement("p", "w", 1, entity.ReasonCustomerReturn)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementReturn, m.Type)
	assert.Equal(t, "w", m.DestinationWarehouseID)
}

func TestNewExitMovement_DevolucionProveedorEsReturn(t *testing.T) {
	m, err := entity.NewExitMovement("p", "w", 1, entity.ReasonSupplierReturn)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementReturn, m.Type)
	assert.Equal(t, "w", m.SourceWarehouseID)
	assert.False(t, m.Increases())
}

func TestNewMovement_MotivoNoPermitido(t *testing.T) {
	_, err := entity.NewEntryMovement("p", "w", 1, entity.ReasonSale)
	assert.ErrorIs(t, err, domain.ErrMalformedMovement)

	_, err = entity.NewExitMovement("p", "w", 1, entity.ReasonPurchase)
	assert.ErrorIs(t, err, domain.ErrMalformedMovement)

	_, err = entity.NewAdjustmentMovement("p", "w", 1, entity.ReasonSale)
	assert.ErrorIs(t, err, domain.ErrMalformedMovement)
}

func TestNewTransferMovement_MismaBodega(t *testing.T) {
	_, err := entity.NewTransferMovement("p", "w", "w", 1)
	assert.ErrorIs(t, err, domain.ErrMalformedMovement)
}

func TestNewAdjustmentMovement_LadoSegunMotivo(t *testing.T) {
	pos, err := entity.NewAdjustmentMovement("p", "w", 2, entity.ReasonPositiveAdjustment)
	require.NoError(t, err)
	assert.Equal(t, "w", pos.DestinationWarehouseID)
	assert.Empty(t, pos.SourceWarehouseID)

	neg, err := entity.NewAdjustmentMovement("p", "w", 2, entity.ReasonNegativeAdjustment)
	require.NoError(t, err)
	assert.Equal(t, "w", neg.SourceWarehouseID)
	assert.Empty(t, neg.DestinationWarehouseID)

	loss, err := entity.NewAdjustmentMovement("p", "w", 2, entity.ReasonLoss)
	require.NoError(t, err)
	assert.Equal(t, "w", loss.SourceWarehouseID)
}

func TestValidate_CantidadYBodegas(t *testing.T) {
	cases := map[string]entity.StockMovement{
		"cantidad cero":      {Type: entity.MovementEntry, Reason: entity.ReasonPurchase, ProductID: "p", DestinationWarehouseID: "w"},
		"sin producto":       {Type: entity.MovementEntry, Reason: entity.ReasonPurchase, DestinationWarehouseID: "w", Quantity: 1},
		"entrada con origen": {Type: entity.MovementEntry, Reason: entity.ReasonPurchase, ProductID: "p", SourceWarehouseID: "a", DestinationWarehouseID: "w", Quantity: 1},
		"salida sin origen":  {Type: entity.MovementExit, Reason: entity.ReasonSale, ProductID: "p", DestinationWarehouseID: "w", Quantity: 1},
		"traslado sin dest":  {Type: entity.MovementTransfer, Reason: entity.ReasonTransfer, ProductID: "p", SourceWarehouseID: "a", Quantity: 1},
		"tipo desconocido":   {Type: "rotation", Reason: entity.ReasonOther, ProductID: "p", DestinationWarehouseID: "w", Quantity: 1},
	}
	for name, m := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, m.Validate(), domain.ErrMalformedMovement)
		})
	}
}

func TestStockMovement_TouchesYTotalCost(t *testing.T) {
	m, err := entity.NewTransferMovement("p", "a", "b", 3)
	require.NoError(t, err)
	m.Stamp(decimal.NewFromInt(110), 9, 6)

	assert.True(t, m.Touches(entity.StockKey{ProductID: "p", WarehouseID: "a"}))
	assert.True(t, m.Touches(entity.StockKey{ProductID: "p", WarehouseID: "b"}))
	assert.False(t, m.Touches(entity.StockKey{ProductID: "p", WarehouseID: "c"}))
	assert.False(t, m.Touches(entity.StockKey{ProductID: "q", WarehouseID: "a"}))
	assert.True(t, decimal.NewFromInt(330).Equal(m.TotalCost()))
	assert.Equal(t, int64(9), m.QuantityBefore)
	assert.Equal(t, int64(6), m.QuantityAfter)
}
