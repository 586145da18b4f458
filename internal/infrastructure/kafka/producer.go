package kafka

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Libasse27/erp-senegal-sub002/pkg/logger"
)

// ErrProducerClosed el productor ya no acepta mensajes.
var ErrProducerClosed = errors.New("kafka: productor cerrado")

// MessageWriter lo mínimo que el productor necesita de *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer encola mensajes en memoria y los escribe desde una sola goroutine.
// El topic va en cada mensaje, así un mismo writer sirve alertas y auditoría.
type Producer struct {
	w            MessageWriter
	log          *logger.Logger
	writeTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	inbox  chan kafka.Message
	done   chan struct{}
}

// NewWriter writer de segmentio sin topic fijo.
func NewWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

// NewProducer buf es el tamaño de la cola; Publish bloquea cuando se llena.
func NewProducer(w MessageWriter, buf int, log *logger.Logger) *Producer {
	if buf <= 0 {
		buf = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Producer{
		w:            w,
		log:          log,
		writeTimeout: 10 * time.Second,
		inbox:        make(chan kafka.Message, buf),
		done:         make(chan struct{}),
	}
}

// Start lanza el loop de escritura. Al cancelar ctx se cierra la cola y se
// vacía lo pendiente antes de cerrar el writer.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		p.Close()
	}()
	go func() {
		defer close(p.done)
		for m := range p.inbox {
			p.write(m)
		}
		if err := p.w.Close(); err != nil {
			p.log.Error().Err(err).Msg("kafka: error cerrando writer")
		}
	}()
}

func (p *Producer) write(m kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), p.writeTimeout)
	defer cancel()
	if err := p.w.WriteMessages(ctx, m); err != nil {
		p.log.Error().Err(err).Str("topic", m.Topic).Str("key", string(m.Key)).Msg("kafka: mensaje no entregado")
	}
}

// Publish encola un mensaje para topic.
func (p *Producer) Publish(ctx context.Context, topic string, key, value []byte, headers ...kafka.Header) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrProducerClosed
	}
	msg := kafka.Message{
		Topic:   topic,
		Key:     key,
		Value:   value,
		Time:    time.Now(),
		Headers: headers,
	}
	select {
	case p.inbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close deja de aceptar mensajes; el loop termina de escribir la cola.
func (p *Producer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.inbox)
	}
}

// WaitClosed espera a que el loop haya vaciado la cola y cerrado el writer.
func (p *Producer) WaitClosed() { <-p.done }
