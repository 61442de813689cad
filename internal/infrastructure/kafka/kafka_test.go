package kafka_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/jhoicas/inventario-bares/internal/application/notification"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/infrastructure/kafka"
)

type fakeProducer struct {
	mu   sync.Mutex
	msgs []kafkago.Message
	err  error
}

func (p *fakeProducer) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msgs...)
	return nil
}

func (p *fakeProducer) Close() error { return nil }

// fakeConsumer entrega los mensajes en orden y luego bloquea hasta que se cancele el contexto.
type fakeConsumer struct {
	msgs []kafkago.Message
}

func (c *fakeConsumer) ReadMessage(ctx context.Context) (kafkago.Message, error) {
	if len(c.msgs) > 0 {
		m := c.msgs[0]
		c.msgs = c.msgs[1:]
		return m, nil
	}
	<-ctx.Done()
	return kafkago.Message{}, ctx.Err()
}

func (c *fakeConsumer) Close() error { return nil }

func lowStockEvent() notification.Event {
	return notification.NewEvent(
		notification.Emails([]string{"jefe@bares.es"}),
		notification.LowStockAlert{ProductName: "Ron Añejo", ProductCode: "RON-1", Location: entity.LocationBarA, CurrentStock: 500, MinStock: 1500},
		time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	)
}

func setupTracing(t *testing.T) {
	t.Helper()
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
}

func TestPublisherYSource_IdaYVueltaConTraza(t *testing.T) {
	setupTracing(t)
	producer := &fakeProducer{}
	pub := kafka.NewPublisher(producer, "notificaciones", zerolog.Nop())

	ctx, span := otel.Tracer("test").Start(context.Background(), "mutacion")
	pub.Publish(ctx, lowStockEvent())
	span.End()

	require.Len(t, producer.msgs, 1)
	msg := producer.msgs[0]
	assert.Equal(t, "low_stock_alert", string(msg.Key))

	var traceparent string
	for _, h := range msg.Headers {
		if h.Key == "traceparent" {
			traceparent = string(h.Value)
		}
	}
	require.NotEmpty(t, traceparent)
	assert.Contains(t, traceparent, span.SpanContext().TraceID().String())

	msg.Topic = "notificaciones"
	src := kafka.NewSource(&fakeConsumer{msgs: []kafkago.Message{msg}}, 4, zerolog.Nop())
	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		src.Run(runCtx)
		close(done)
	}()

	select {
	case ev := <-src.Events():
		assert.Equal(t, notification.EventLowStockAlert, ev.Type())
		payload, ok := ev.Payload.(notification.LowStockAlert)
		require.True(t, ok)
		assert.Equal(t, int64(1000), payload.Deficit())
		assert.Equal(t, []string{"jefe@bares.es"}, ev.Audience.Emails)
	case <-time.After(2 * time.Second):
		t.Fatal("no llegó el evento")
	}

	cancel()
	<-done
	_, open := <-src.Events()
	assert.False(t, open, "el canal se cierra al terminar Run")
}

func TestPublisher_ErrorDelBrokerNoSePropaga(t *testing.T) {
	producer := &fakeProducer{err: errors.New("broker caído")}
	pub := kafka.NewPublisher(producer, "notificaciones", zerolog.Nop())

	assert.NotPanics(t, func() { pub.Publish(context.Background(), lowStockEvent()) })
	assert.Empty(t, producer.msgs)
}

func TestSource_DescartaMensajesIlegibles(t *testing.T) {
	good := &fakeProducer{}
	kafka.NewPublisher(good, "n", zerolog.Nop()).Publish(context.Background(), lowStockEvent())
	require.Len(t, good.msgs, 1)

	consumer := &fakeConsumer{msgs: []kafkago.Message{
		{Value: []byte("no es json")},
		{Value: []byte(`{"type":"desconocido","payload":{}}`)},
		good.msgs[0],
	}}
	src := kafka.NewSource(consumer, 1, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go src.Run(ctx)

	select {
	case ev := <-src.Events():
		assert.Equal(t, notification.EventLowStockAlert, ev.Type())
	case <-time.After(2 * time.Second):
		t.Fatal("no llegó el evento válido")
	}
}

type closedConsumer struct{}

func (closedConsumer) ReadMessage(context.Context) (kafkago.Message, error) {
	return kafkago.Message{}, io.EOF
}

func (closedConsumer) Close() error { return nil }

func TestSource_TerminaSiElLectorSeCierra(t *testing.T) {
	src := kafka.NewSource(closedConsumer{}, 1, zerolog.Nop())
	done := make(chan struct{})
	go func() {
		src.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run no terminó")
	}
}

// flakyConsumer falla las primeras lecturas y luego se comporta como fakeConsumer.
type flakyConsumer struct {
	mu       sync.Mutex
	failures int
	calls    int
	fakeConsumer
}

func (c *flakyConsumer) ReadMessage(ctx context.Context) (kafkago.Message, error) {
	c.mu.Lock()
	c.calls++
	if c.failures > 0 {
		c.failures--
		c.mu.Unlock()
		return kafkago.Message{}, errors.New("coordinador de grupo no disponible")
	}
	c.mu.Unlock()
	return c.fakeConsumer.ReadMessage(ctx)
}

func TestSource_ReintentaTrasErrorDeLectura(t *testing.T) {
	good := &fakeProducer{}
	kafka.NewPublisher(good, "n", zerolog.Nop()).Publish(context.Background(), lowStockEvent())
	require.Len(t, good.msgs, 1)

	consumer := &flakyConsumer{failures: 2, fakeConsumer: fakeConsumer{msgs: good.msgs}}
	src := kafka.NewSource(consumer, 1, zerolog.Nop())
	src.SetRetryInterval(time.Millisecond, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		src.Run(ctx)
		close(done)
	}()

	select {
	case ev, open := <-src.Events():
		require.True(t, open, "el canal sigue abierto tras el error")
		assert.Equal(t, notification.EventLowStockAlert, ev.Type())
	case <-time.After(2 * time.Second):
		t.Fatal("no llegó el evento tras reintentar")
	}

	consumer.mu.Lock()
	assert.Equal(t, 3, consumer.calls)
	consumer.mu.Unlock()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run no terminó al cancelar")
	}
}

func TestSource_CancelarDuranteLaEsperaTermina(t *testing.T) {
	consumer := &flakyConsumer{failures: 1}
	src := kafka.NewSource(consumer, 1, zerolog.Nop())
	src.SetRetryInterval(time.Hour, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		src.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		consumer.mu.Lock()
		defer consumer.mu.Unlock()
		return consumer.calls == 1
	}, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run no terminó al cancelar durante el backoff")
	}
}
