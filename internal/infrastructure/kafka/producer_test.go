package kafka_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	segkafka "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Libasse27/erp-senegal-sub002/internal/domain/entity"
	"github.com/Libasse27/erp-senegal-sub002/internal/infrastructure/kafka"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []segkafka.Message
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...segkafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *fakeWriter) messages() []segkafka.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]segkafka.Message(nil), w.msgs...)
}

func TestProducer_VaciaColaAlCerrar(t *testing.T) {
	w := &fakeWriter{}
	p := kafka.NewProducer(w, 8, nil)
	p.Start(context.Background())

	for i := 0; i < 5; i++ {
		require.NoError(t, p.Publish(context.Background(), "t", []byte("k"), []byte("v")))
	}
	p.Close()
	p.WaitClosed()

	assert.Len(t, w.messages(), 5)
	assert.True(t, w.closed)
	assert.ErrorIs(t, p.Publish(context.Background(), "t", nil, nil), kafka.ErrProducerClosed)
}

func TestProducer_CancelarContextoCierra(t *testing.T) {
	w := &fakeWriter{}
	p := kafka.NewProducer(w, 1, nil)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	require.NoError(t, p.Publish(context.Background(), "t", nil, []byte("x")))
	cancel()

	select {
	case <-waitClosed(p):
	case <-time.After(2 * time.Second):
		t.Fatal("el productor no se cerró al cancelar el contexto")
	}
	assert.Len(t, w.messages(), 1)
}

func waitClosed(p *kafka.Producer) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		p.WaitClosed()
		close(ch)
	}()
	return ch
}

func TestPublisher_AlertaConSobre(t *testing.T) {
	w := &fakeWriter{}
	p := kafka.NewProducer(w, 4, nil)
	p.Start(context.Background())
	pub := kafka.NewPublisher(p, "stock.alerts", "stock.audit")

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	err := pub.PublishAlert(context.Background(), entity.StockAlert{
		Level:          entity.AlertBelowMinimum,
		ProductID:      "p1",
		WarehouseID:    "w1",
		QuantityOnHand: 3,
		StockMinimum:   5,
		AlertThreshold: 10,
		NewlyCrossed:   true,
		DetectedAt:     now,
	})
	require.NoError(t, err)
	p.Close()
	p.WaitClosed()

	msgs := w.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "stock.alerts", msgs[0].Topic)
	assert.Equal(t, "p1:w1", string(msgs[0].Key))

	var env kafka.Envelope
	require.NoError(t, json.Unmarshal(msgs[0].Value, &env))
	assert.Equal(t, kafka.EventStockAlert, env.EventType)
	assert.Equal(t, 1, env.EventVersion)
	assert.NotEmpty(t, env.EventID)
	assert.True(t, now.Equal(env.OccurredAt))

	var payload kafka.AlertPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "below-minimum", payload.Level)
	assert.Equal(t, int64(3), payload.QuantityOnHand)
	assert.True(t, payload.NewlyCrossed)
}

func TestPublisher_AuditoriaRegistroNuevo(t *testing.T) {
	w := &fakeWriter{}
	p := kafka.NewProducer(w, 4, nil)
	p.Start(context.Background())
	pub := kafka.NewPublisher(p, "stock.alerts", "stock.audit")

	after := &entity.StockRecord{ProductID: "p1", WarehouseID: "w1", QuantityOnHand: 10, WeightedAverageCost: decimal.NewFromInt(100)}
	err := pub.PublishAudit(context.Background(), entity.AuditEntry{
		Operation: "entry",
		Movement:  &entity.StockMovement{ID: "m1", Sequence: 1, Type: entity.MovementEntry, Reason: entity.ReasonPurchase, ProductID: "p1", Quantity: 10, UnitCost: decimal.NewFromInt(100)},
		Changes:   []entity.RecordChange{{Before: nil, After: after}},
		UserID:    "u1",
		At:        time.Now(),
	})
	require.NoError(t, err)
	p.Close()
	p.WaitClosed()

	msgs := w.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "stock.audit", msgs[0].Topic)

	var env kafka.Envelope
	require.NoError(t, json.Unmarshal(msgs[0].Value, &env))
	var payload kafka.AuditPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "m1", payload.MovementID)
	require.Len(t, payload.Changes, 1)
	assert.Equal(t, int64(0), payload.Changes[0].QuantityBefore)
	assert.Equal(t, int64(10), payload.Changes[0].QuantityAfter)
	assert.Equal(t, "0", payload.Changes[0].CostBefore)
	assert.Equal(t, "100", payload.Changes[0].CostAfter)
}
