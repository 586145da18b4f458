package entity

import "time"

// AlertLevel clasificación de un registro de stock frente a los umbrales del producto.
type AlertLevel string

const (
	AlertRupture             AlertLevel = "rupture"
	AlertBelowMinimum        AlertLevel = "below-minimum"
	AlertBelowAlertThreshold AlertLevel = "below-alert-threshold"
	AlertExpiringSoon        AlertLevel = "expiring-soon"
)

// StockAlert señal de alerta que el núcleo entrega al notificador externo.
type StockAlert struct {
	Level          AlertLevel
	ProductID      string
	WarehouseID    string
	QuantityOnHand int64
	StockMinimum   int64
	AlertThreshold int64
	ExpiryDate     *time.Time
	NewlyCrossed   bool // el registro no estaba en este nivel antes de la operación
	DetectedAt     time.Time
}

// AuditEntry par antes/después publicado tras cada operación confirmada.
type AuditEntry struct {
	Operation string
	Movement  *StockMovement
	Changes   []RecordChange
	UserID    string
	At        time.Time
}
