package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Libasse27/erp-senegal-sub002/internal/domain"
)

// MovementType tipo de movimiento de inventario.
type MovementType string

const (
	MovementEntry      MovementType = "entry"
	MovementExit       MovementType = "exit"
	MovementTransfer   MovementType = "transfer"
	MovementAdjustment MovementType = "adjustment"
	MovementReturn     MovementType = "return"
)

// MovementReason motivo de negocio del movimiento.
type MovementReason string

const (
	ReasonPurchase           MovementReason = "purchase"
	ReasonSale               MovementReason = "sale"
	ReasonTransfer           MovementReason = "transfer"
	ReasonInventoryCount     MovementReason = "inventory-count"
	ReasonCustomerReturn     MovementReason = "customer-return"
	ReasonSupplierReturn     MovementReason = "supplier-return"
	ReasonPositiveAdjustment MovementReason = "positive-adjustment"
	ReasonNegativeAdjustment MovementReason = "negative-adjustment"
	ReasonLoss               MovementReason = "loss"
	ReasonDonation           MovementReason = "donation"
	ReasonProduction         MovementReason = "production"
	ReasonOther              MovementReason = "other"
)

// side indica qué bodega debe llevar el movimiento.
type side int

const (
	sideSource side = 1 << iota
	sideDestination
)

// movementRules tabla de precondiciones: por tipo, motivos permitidos y bodegas requeridas.
var movementRules = map[MovementType]map[MovementReason]side{
	MovementEntry: {
		ReasonPurchase:       sideDestination,
		ReasonProduction:     sideDestination,
		ReasonDonation:       sideDestination,
		ReasonInventoryCount: sideDestination,
		ReasonOther:          sideDestination,
	},
	MovementExit: {
		ReasonSale:       sideSource,
		ReasonLoss:       sideSource,
		ReasonDonation:   sideSource,
		ReasonProduction: sideSource,
		ReasonOther:      sideSource,
	},
	MovementTransfer: {
		ReasonTransfer: sideSource | sideDestination,
	},
	MovementAdjustment: {
		ReasonPositiveAdjustment: sideDestination,
		ReasonNegativeAdjustment: sideSource,
		ReasonLoss:               sideSource,
	},
	MovementReturn: {
		ReasonCustomerReturn: sideDestination,
		ReasonSupplierReturn: sideSource,
	},
}

// DocumentRef documento de origen (factura, recepción, remisión...).
type DocumentRef struct {
	Type string
	ID   string
}

// StockMovement entrada inmutable del libro de movimientos.
// Se construye con NewEntryMovement, NewExitMovement, NewTransferMovement o
// NewAdjustmentMovement; cada variante solo lleva las bodegas válidas para su tipo.
type StockMovement struct {
	ID                     string
	Sequence               int64 // orden de commit, asignado por el almacén
	Type                   MovementType
	Reason                 MovementReason
	ProductID              string
	SourceWarehouseID      string
	DestinationWarehouseID string
	Quantity               int64
	UnitCost               decimal.Decimal
	QuantityBefore         int64 // lado principal: origen si disminuye, destino si aumenta
	QuantityAfter          int64
	Note                   string
	Document               *DocumentRef
	CreatedBy              string
	CreatedAt              time.Time
}

// EntryTypeFor tipo de movimiento para una entrada según el motivo.
func EntryTypeFor(reason MovementReason) MovementType {
	if reason == ReasonCustomerReturn {
		return MovementReturn
	}
	return MovementEntry
}

// ExitTypeFor tipo de movimiento para una salida según el motivo.
func ExitTypeFor(reason MovementReason) MovementType {
	if reason == ReasonSupplierReturn {
		return MovementReturn
	}
	return MovementExit
}

// NewEntryMovement entrada (o devolución de cliente) hacia una bodega destino.
func NewEntryMovement(productID, destinationID string, quantity int64, reason MovementReason) (*StockMovement, error) {
	return newMovement(EntryTypeFor(reason), reason, productID, "", destinationID, quantity)
}

// NewExitMovement salida (o devolución a proveedor) desde una bodega origen.
func NewExitMovement(productID, sourceID string, quantity int64, reason MovementReason) (*StockMovement, error) {
	return newMovement(ExitTypeFor(reason), reason, productID, sourceID, "", quantity)
}

// NewTransferMovement un único movimiento con origen y destino.
func NewTransferMovement(productID, sourceID, destinationID string, quantity int64) (*StockMovement, error) {
	return newMovement(MovementTransfer, ReasonTransfer, productID, sourceID, destinationID, quantity)
}

// NewAdjustmentMovement ajuste: positivo lleva destino, negativo/pérdida lleva origen.
func NewAdjustmentMovement(productID, warehouseID string, quantity int64, reason MovementReason) (*StockMovement, error) {
	if reason == ReasonPositiveAdjustment {
		return newMovement(MovementAdjustment, reason, productID, "", warehouseID, quantity)
	}
	return newMovement(MovementAdjustment, reason, productID, warehouseID, "", quantity)
}

func newMovement(t MovementType, reason MovementReason, productID, sourceID, destinationID string, quantity int64) (*StockMovement, error) {
	m := &StockMovement{
		Type:                   t,
		Reason:                 reason,
		ProductID:              productID,
		SourceWarehouseID:      sourceID,
		DestinationWarehouseID: destinationID,
		Quantity:               quantity,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate verifica la combinación tipo/motivo/bodegas contra la tabla de precondiciones.
func (m *StockMovement) Validate() error {
	reasons, ok := movementRules[m.Type]
	if !ok {
		return malformed("tipo %q desconocido", m.Type)
	}
	want, ok := reasons[m.Reason]
	if !ok {
		return malformed("motivo %q no permitido para %q", m.Reason, m.Type)
	}
	if m.ProductID == "" {
		return malformed("%s sin producto", m.Type)
	}
	if m.Quantity <= 0 {
		return malformed("%s con cantidad %d", m.Type, m.Quantity)
	}
	hasSource := m.SourceWarehouseID != ""
	hasDestination := m.DestinationWarehouseID != ""
	if hasSource != (want&sideSource != 0) {
		return malformed("%s/%s: bodega origen inválida", m.Type, m.Reason)
	}
	if hasDestination != (want&sideDestination != 0) {
		return malformed("%s/%s: bodega destino inválida", m.Type, m.Reason)
	}
	if hasSource && hasDestination && m.SourceWarehouseID == m.DestinationWarehouseID {
		return malformed("%s con origen y destino iguales", m.Type)
	}
	return nil
}

// Increases indica si la bodega principal del movimiento gana stock.
func (m *StockMovement) Increases() bool {
	return m.SourceWarehouseID == ""
}

// Stamp fija costo unitario y cantidades antes/después del lado principal.
func (m *StockMovement) Stamp(unitCost decimal.Decimal, before, after int64) {
	m.UnitCost = unitCost
	m.QuantityBefore = before
	m.QuantityAfter = after
}

// TotalCost valor del movimiento (cantidad por costo unitario), redondeado a la moneda.
func (m *StockMovement) TotalCost() decimal.Decimal {
	return m.UnitCost.Mul(decimal.NewFromInt(m.Quantity)).Round(CurrencyPlaces)
}

// Touches indica si el movimiento afecta la clave dada.
func (m *StockMovement) Touches(key StockKey) bool {
	if m.ProductID != key.ProductID {
		return false
	}
	return m.SourceWarehouseID == key.WarehouseID || m.DestinationWarehouseID == key.WarehouseID
}

func malformed(format string, args ...any) error {
	return domain.Malformed(format, args...)
}
