package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/trace"

	"github.com/Libasse27/erp-senegal-sub002/internal/domain/entity"
)

const (
	EventStockAlert = "stock.alert"
	EventStockAudit = "stock.audit"

	eventVersion = 1
	producerName = "erp-senegal-stock"
)

// Envelope sobre común de los eventos publicados.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// AlertPayload cuerpo de un evento de alerta.
type AlertPayload struct {
	Level          string     `json:"level"`
	ProductID      string     `json:"product_id"`
	WarehouseID    string     `json:"warehouse_id"`
	QuantityOnHand int64      `json:"quantity_on_hand"`
	StockMinimum   int64      `json:"stock_minimum"`
	AlertThreshold int64      `json:"alert_threshold"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty"`
	NewlyCrossed   bool       `json:"newly_crossed"`
	DetectedAt     time.Time  `json:"detected_at"`
}

// AuditPayload cuerpo de un evento de auditoría.
type AuditPayload struct {
	Operation  string        `json:"operation"`
	MovementID string        `json:"movement_id,omitempty"`
	Sequence   int64         `json:"sequence,omitempty"`
	Type       string        `json:"type,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	ProductID  string        `json:"product_id,omitempty"`
	Quantity   int64         `json:"quantity,omitempty"`
	UnitCost   string        `json:"unit_cost,omitempty"`
	Changes    []AuditChange `json:"changes"`
	UserID     string        `json:"user_id"`
	At         time.Time     `json:"at"`
}

// AuditChange estado antes/después de un registro.
type AuditChange struct {
	WarehouseID    string `json:"warehouse_id"`
	QuantityBefore int64  `json:"quantity_before"`
	QuantityAfter  int64  `json:"quantity_after"`
	CostBefore     string `json:"cost_before"`
	CostAfter      string `json:"cost_after"`
}

// Publisher implementa el notificador del servicio de stock sobre Kafka.
type Publisher struct {
	producer   *Producer
	alertTopic string
	auditTopic string
}

func NewPublisher(producer *Producer, alertTopic, auditTopic string) *Publisher {
	return &Publisher{producer: producer, alertTopic: alertTopic, auditTopic: auditTopic}
}

func (p *Publisher) PublishAlert(ctx context.Context, alert entity.StockAlert) error {
	payload := AlertPayload{
		Level:          string(alert.Level),
		ProductID:      alert.ProductID,
		WarehouseID:    alert.WarehouseID,
		QuantityOnHand: alert.QuantityOnHand,
		StockMinimum:   alert.StockMinimum,
		AlertThreshold: alert.AlertThreshold,
		ExpiryDate:     alert.ExpiryDate,
		NewlyCrossed:   alert.NewlyCrossed,
		DetectedAt:     alert.DetectedAt,
	}
	key := alert.ProductID + ":" + alert.WarehouseID
	return p.send(ctx, p.alertTopic, EventStockAlert, key, alert.DetectedAt, payload)
}

func (p *Publisher) PublishAudit(ctx context.Context, entry entity.AuditEntry) error {
	payload := AuditPayload{
		Operation: entry.Operation,
		UserID:    entry.UserID,
		At:        entry.At,
		Changes:   make([]AuditChange, 0, len(entry.Changes)),
	}
	key := entry.Operation
	if m := entry.Movement; m != nil {
		payload.MovementID = m.ID
		payload.Sequence = m.Sequence
		payload.Type = string(m.Type)
		payload.Reason = string(m.Reason)
		payload.ProductID = m.ProductID
		payload.Quantity = m.Quantity
		payload.UnitCost = m.UnitCost.String()
		key = m.ProductID
	}
	for _, c := range entry.Changes {
		if c.After == nil {
			continue
		}
		change := AuditChange{
			WarehouseID:   c.After.WarehouseID,
			QuantityAfter: c.After.QuantityOnHand,
			CostBefore:    "0",
			CostAfter:     c.After.WeightedAverageCost.String(),
		}
		if c.Before != nil {
			change.QuantityBefore = c.Before.QuantityOnHand
			change.CostBefore = c.Before.WeightedAverageCost.String()
		}
		payload.Changes = append(payload.Changes, change)
	}
	return p.send(ctx, p.auditTopic, EventStockAudit, key, entry.At, payload)
}

func (p *Publisher) send(ctx context.Context, topic, eventType, key string, at time.Time, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("serializar %s: %w", eventType, err)
	}
	env := Envelope{
		EventID:      uuid.New().String(),
		EventType:    eventType,
		EventVersion: eventVersion,
		OccurredAt:   at.UTC(),
		Producer:     producerName,
		Payload:      body,
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		env.TraceID = sc.TraceID().String()
		env.CorrelationID = sc.SpanID().String()
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("serializar sobre %s: %w", eventType, err)
	}
	headers := []kafka.Header{
		{Key: "event_type", Value: []byte(eventType)},
		{Key: "event_id", Value: []byte(env.EventID)},
	}
	if err := p.producer.Publish(ctx, topic, []byte(key), value, headers...); err != nil {
		return fmt.Errorf("publicar %s: %w", eventType, err)
	}
	return nil
}
