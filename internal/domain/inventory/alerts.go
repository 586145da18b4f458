package inventory

import (
	"time"

	"github.com/Libasse27/erp-senegal-sub002/internal/domain/entity"
)

// DefaultExpiryHorizon ventana para considerar un vencimiento como próximo.
const DefaultExpiryHorizon = 30 * 24 * time.Hour

// ClassifyQuantity ubica una cantidad en los tres niveles excluyentes, en este orden:
// ruptura (<= 0), bajo mínimo (<= StockMinimum), bajo umbral (<= StockAlertThreshold).
// El segundo valor es false si la cantidad está por encima de todos los umbrales.
func ClassifyQuantity(quantity int64, product *entity.Product) (entity.AlertLevel, bool) {
	switch {
	case quantity <= 0:
		return entity.AlertRupture, true
	case quantity <= product.StockMinimum:
		return entity.AlertBelowMinimum, true
	case quantity <= product.StockAlertThreshold:
		return entity.AlertBelowAlertThreshold, true
	}
	return "", false
}

// IsExpiringSoon vencimiento dentro del horizonte (incluye lo ya vencido).
func IsExpiringSoon(record *entity.StockRecord, product *entity.Product, now time.Time, horizon time.Duration) bool {
	if record.ExpiryDate == nil || !product.HasExpiry {
		return false
	}
	return !record.ExpiryDate.After(now.Add(horizon))
}

// QuantityAlert alerta por cantidad tras una operación que disminuye stock.
// before es la cantidad previa del mismo registro; nil si no hay alerta.
func QuantityAlert(record *entity.StockRecord, product *entity.Product, before int64, now time.Time) *entity.StockAlert {
	level, ok := ClassifyQuantity(record.QuantityOnHand, product)
	if !ok {
		return nil
	}
	prev, wasAlert := ClassifyQuantity(before, product)
	return &entity.StockAlert{
		Level:          level,
		ProductID:      record.ProductID,
		WarehouseID:    record.WarehouseID,
		QuantityOnHand: record.QuantityOnHand,
		StockMinimum:   product.StockMinimum,
		AlertThreshold: product.StockAlertThreshold,
		NewlyCrossed:   !wasAlert || prev != level,
		DetectedAt:     now,
	}
}

// AlertReport resultado del barrido de alertas. Un registro puede aparecer en
// un nivel de cantidad y además en ExpiringSoon.
type AlertReport struct {
	Rupture             []entity.StockAlert
	BelowMinimum        []entity.StockAlert
	BelowAlertThreshold []entity.StockAlert
	ExpiringSoon        []entity.StockAlert
	GeneratedAt         time.Time
}

// Add clasifica un registro y lo agrega a los niveles que correspondan.
func (r *AlertReport) Add(record *entity.StockRecord, product *entity.Product, now time.Time, horizon time.Duration) {
	base := entity.StockAlert{
		ProductID:      record.ProductID,
		WarehouseID:    record.WarehouseID,
		QuantityOnHand: record.QuantityOnHand,
		StockMinimum:   product.StockMinimum,
		AlertThreshold: product.StockAlertThreshold,
		DetectedAt:     now,
	}
	if level, ok := ClassifyQuantity(record.QuantityOnHand, product); ok {
		a := base
		a.Level = level
		switch level {
		case entity.AlertRupture:
			r.Rupture = append(r.Rupture, a)
		case entity.AlertBelowMinimum:
			r.BelowMinimum = append(r.BelowMinimum, a)
		default:
			r.BelowAlertThreshold = append(r.BelowAlertThreshold, a)
		}
	}
	if IsExpiringSoon(record, product, now, horizon) {
		a := base
		a.Level = entity.AlertExpiringSoon
		exp := *record.ExpiryDate
		a.ExpiryDate = &exp
		r.ExpiringSoon = append(r.ExpiringSoon, a)
	}
}

// All todas las alertas del reporte en orden de severidad.
func (r *AlertReport) All() []entity.StockAlert {
	out := make([]entity.StockAlert, 0, len(r.Rupture)+len(r.BelowMinimum)+len(r.BelowAlertThreshold)+len(r.ExpiringSoon))
	out = append(out, r.Rupture...)
	out = append(out, r.BelowMinimum...)
	out = append(out, r.BelowAlertThreshold...)
	return append(out, r.ExpiringSoon...)
}
