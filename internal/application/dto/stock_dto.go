package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentRefRequest documento de origen opcional (factura, recepción...).
type DocumentRefRequest struct {
	Type string `json:"type" validate:"required,max=50"`
	ID   string `json:"id" validate:"required,max=100"`
}

// StockEntryRequest body para POST /api/stock/entries.
type StockEntryRequest struct {
	ProductID   string              `json:"product_id" validate:"required"`
	WarehouseID string              `json:"warehouse_id" validate:"required"`
	Quantity    int64               `json:"quantity" validate:"required,gt=0"`
	UnitCost    *decimal.Decimal    `json:"unit_cost,omitempty"`
	Reason      string              `json:"reason" validate:"omitempty,oneof=purchase production donation inventory-count other customer-return"`
	Note        string              `json:"note" validate:"max=500"`
	Document    *DocumentRefRequest `json:"document,omitempty"`
	ExpiryDate  *time.Time          `json:"expiry_date,omitempty"`
}

// StockExitRequest body para POST /api/stock/exits.
type StockExitRequest struct {
	ProductID   string              `json:"product_id" validate:"required"`
	WarehouseID string              `json:"warehouse_id" validate:"required"`
	Quantity    int64               `json:"quantity" validate:"required,gt=0"`
	Reason      string              `json:"reason" validate:"omitempty,oneof=sale loss donation production other supplier-return"`
	Note        string              `json:"note" validate:"max=500"`
	Document    *DocumentRefRequest `json:"document,omitempty"`
}

// StockTransferRequest body para POST /api/stock/transfers.
type StockTransferRequest struct {
	ProductID              string              `json:"product_id" validate:"required"`
	SourceWarehouseID      string              `json:"source_warehouse_id" validate:"required"`
	DestinationWarehouseID string              `json:"destination_warehouse_id" validate:"required"`
	Quantity               int64               `json:"quantity" validate:"required,gt=0"`
	Note                   string              `json:"note" validate:"max=500"`
	Document               *DocumentRefRequest `json:"document,omitempty"`
}

// StockAdjustmentRequest body para POST /api/stock/adjustments.
type StockAdjustmentRequest struct {
	ProductID   string `json:"product_id" validate:"required"`
	WarehouseID string `json:"warehouse_id" validate:"required"`
	Quantity    int64  `json:"quantity" validate:"required,gt=0"`
	Reason      string `json:"reason" validate:"required,oneof=positive-adjustment negative-adjustment loss"`
	Note        string `json:"note" validate:"max=500"`
}

// MovementListQuery filtros de GET /api/stock/movements. Fechas en RFC3339.
type MovementListQuery struct {
	ProductID   string `query:"product_id"`
	WarehouseID string `query:"warehouse_id"`
	Type        string `query:"type" validate:"omitempty,oneof=entry exit transfer adjustment return"`
	Reason      string `query:"reason"`
	From        string `query:"from" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	To          string `query:"to" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Limit       int    `query:"limit" validate:"min=0,max=1000"`
	Offset      int    `query:"offset" validate:"min=0"`
}

// StockRecordResponse salida de un registro de stock.
type StockRecordResponse struct {
	ID                  string          `json:"id"`
	ProductID           string          `json:"product_id"`
	WarehouseID         string          `json:"warehouse_id"`
	QuantityOnHand      int64           `json:"quantity_on_hand"`
	QuantityReserved    int64           `json:"quantity_reserved"`
	QuantityAvailable   int64           `json:"quantity_available"`
	WeightedAverageCost decimal.Decimal `json:"weighted_average_cost"`
	StockValue          decimal.Decimal `json:"stock_value"`
	LastMovementAt      time.Time       `json:"last_movement_at"`
	ExpiryDate          *time.Time      `json:"expiry_date,omitempty"`
	Version             int64           `json:"version"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// StockMovementResponse salida de un movimiento.
type StockMovementResponse struct {
	ID                     string              `json:"id"`
	Sequence               int64               `json:"sequence"`
	Type                   string              `json:"type"`
	Reason                 string              `json:"reason"`
	ProductID              string              `json:"product_id"`
	SourceWarehouseID      string              `json:"source_warehouse_id,omitempty"`
	DestinationWarehouseID string              `json:"destination_warehouse_id,omitempty"`
	Quantity               int64               `json:"quantity"`
	UnitCost               decimal.Decimal     `json:"unit_cost"`
	TotalCost              decimal.Decimal     `json:"total_cost"`
	QuantityBefore         int64               `json:"quantity_before"`
	QuantityAfter          int64               `json:"quantity_after"`
	Note                   string              `json:"note,omitempty"`
	Document               *DocumentRefRequest `json:"document,omitempty"`
	CreatedBy              string              `json:"created_by"`
	CreatedAt              time.Time           `json:"created_at"`
}

// StockAlertResponse alerta de umbral o vencimiento.
type StockAlertResponse struct {
	Level          string     `json:"level"`
	ProductID      string     `json:"product_id"`
	WarehouseID    string     `json:"warehouse_id"`
	QuantityOnHand int64      `json:"quantity_on_hand"`
	StockMinimum   int64      `json:"stock_minimum"`
	AlertThreshold int64      `json:"alert_threshold"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty"`
	NewlyCrossed   bool       `json:"newly_crossed"`
}

// StockOperationResponse salida de una operación de stock confirmada.
type StockOperationResponse struct {
	Movement    StockMovementResponse `json:"movement"`
	Record      StockRecordResponse   `json:"record"`
	Destination *StockRecordResponse  `json:"destination,omitempty"`
	Alert       *StockAlertResponse   `json:"alert,omitempty"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []StockMovementResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// AlertReportResponse salida de GET /api/stock/alerts.
type AlertReportResponse struct {
	Rupture             []StockAlertResponse `json:"rupture"`
	BelowMinimum        []StockAlertResponse `json:"below_minimum"`
	BelowAlertThreshold []StockAlertResponse `json:"below_alert_threshold"`
	ExpiringSoon        []StockAlertResponse `json:"expiring_soon"`
	GeneratedAt         time.Time            `json:"generated_at"`
}

// ReconcileResponse salida de la conciliación contra el libro de movimientos.
type ReconcileResponse struct {
	Live       StockRecordResponse `json:"live"`
	Replayed   StockRecordResponse `json:"replayed"`
	Movements  int                 `json:"movements"`
	Consistent bool                `json:"consistent"`
}
