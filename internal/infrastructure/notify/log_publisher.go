// Package notify notificadores del servicio de stock que no dependen de un broker.
package notify

import (
	"context"

	"github.com/Libasse27/erp-senegal-sub002/internal/domain/entity"
	"github.com/Libasse27/erp-senegal-sub002/pkg/logger"
)

// LogPublisher escribe alertas y auditoría en el log estructurado.
// Se usa cuando KAFKA_BROKERS está vacío.
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	if log == nil {
		log = logger.Nop()
	}
	return &LogPublisher{log: log}
}

func (p *LogPublisher) PublishAlert(_ context.Context, alert entity.StockAlert) error {
	ev := p.log.Warn()
	if !alert.NewlyCrossed {
		ev = p.log.Info()
	}
	ev = ev.
		Str("level", string(alert.Level)).
		Str("product_id", alert.ProductID).
		Str("warehouse_id", alert.WarehouseID).
		Int64("on_hand", alert.QuantityOnHand).
		Int64("minimum", alert.StockMinimum).
		Int64("threshold", alert.AlertThreshold).
		Bool("newly_crossed", alert.NewlyCrossed)
	if alert.ExpiryDate != nil {
		ev = ev.Time("expiry_date", *alert.ExpiryDate)
	}
	ev.Msg("alerta de stock")
	return nil
}

func (p *LogPublisher) PublishAudit(_ context.Context, entry entity.AuditEntry) error {
	ev := p.log.Info().
		Str("operation", entry.Operation).
		Str("user_id", entry.UserID).
		Int("records", len(entry.Changes))
	if m := entry.Movement; m != nil {
		ev = ev.Str("movement_id", m.ID).
			Int64("sequence", m.Sequence).
			Str("product_id", m.ProductID).
			Int64("quantity", m.Quantity).
			Str("unit_cost", m.UnitCost.String())
	}
	ev.Msg("auditoría de stock")
	return nil
}
