// Package kafka transporta los eventos de notificación por un topic de Kafka
// para que el despacho de correos pueda vivir en otro proceso.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/inventario-bares/internal/application/notification"
)

const tracerName = "github.com/jhoicas/inventario-bares/internal/infrastructure/kafka"

// Producer lo satisface *kafka.Writer.
type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Consumer lo satisface *kafka.Reader.
type Consumer interface {
	ReadMessage(ctx context.Context) (kafkago.Message, error)
	Close() error
}

// NewWriter crea un writer asíncrono: WriteMessages no bloquea y los errores llegan a Completion.
func NewWriter(brokers []string, topic string, log zerolog.Logger) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		Async:        true,
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafkago.RequireOne,
		Completion: func(msgs []kafkago.Message, err error) {
			if err != nil {
				log.Error().Err(err).Int("messages", len(msgs)).Msg("kafka: no se pudieron publicar eventos")
			}
		},
	}
}

// NewReader crea un lector de grupo; los offsets se confirman al leer.
func NewReader(brokers []string, topic, groupID string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
		MaxWait:  time.Second,
	})
}

// Publisher implementa notification.Publisher sobre un topic. Los fallos se registran y nunca llegan al caso de uso.
type Publisher struct {
	producer Producer
	topic    string
	tracer   trace.Tracer
	log      zerolog.Logger
}

var _ notification.Publisher = (*Publisher)(nil)

// NewPublisher construye el publicador.
func NewPublisher(producer Producer, topic string, log zerolog.Logger) *Publisher {
	return &Publisher{producer: producer, topic: topic, tracer: otel.Tracer(tracerName), log: log}
}

func (p *Publisher) Publish(ctx context.Context, ev notification.Event) {
	ctx, span := p.tracer.Start(ctx, p.topic+" publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemKafka,
			semconv.MessagingDestinationName(p.topic),
			attribute.String("notification.type", string(ev.Type())),
		),
	)
	defer span.End()

	value, err := json.Marshal(ev)
	if err != nil {
		span.RecordError(err)
		p.log.Error().Err(err).Str("event", string(ev.Type())).Msg("kafka: evento no serializable")
		return
	}
	msg := kafkago.Message{Key: []byte(ev.Type()), Value: value, Headers: injectHeaders(ctx)}
	if err := p.producer.WriteMessages(ctx, msg); err != nil {
		span.RecordError(err)
		p.log.Warn().Err(err).Str("event", string(ev.Type())).Msg("kafka: evento descartado")
	}
}

// Close vacía los mensajes pendientes del writer.
func (p *Publisher) Close() error {
	return p.producer.Close()
}

// Source lee eventos del topic y los entrega en un canal para el Dispatcher.
type Source struct {
	consumer Consumer
	events   chan notification.Event
	tracer   trace.Tracer
	log      zerolog.Logger

	retryInitial time.Duration
	retryMax     time.Duration
}

// NewSource construye la fuente con un buffer de size eventos.
func NewSource(consumer Consumer, size int, log zerolog.Logger) *Source {
	if size < 1 {
		size = 1
	}
	return &Source{
		consumer:     consumer,
		events:       make(chan notification.Event, size),
		tracer:       otel.Tracer(tracerName),
		log:          log,
		retryInitial: 500 * time.Millisecond,
		retryMax:     30 * time.Second,
	}
}

// SetRetryInterval ajusta la espera entre lecturas fallidas. Llamar antes de Run.
func (s *Source) SetRetryInterval(initial, maxInterval time.Duration) {
	s.retryInitial, s.retryMax = initial, maxInterval
}

// Events canal que drena el Dispatcher; se cierra cuando Run termina.
func (s *Source) Events() <-chan notification.Event { return s.events }

// Run lee hasta que ctx se cancele o el lector se cierre. Los errores de lectura
// se reintentan con backoff exponencial y los mensajes ilegibles se descartan.
func (s *Source) Run(ctx context.Context) {
	defer close(s.events)
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retryInitial
	b.MaxInterval = s.retryMax
	b.Multiplier = 2
	for {
		msg, err := s.consumer.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return
			}
			wait := b.NextBackOff()
			s.log.Warn().Err(err).Dur("retry_in", wait).Msg("kafka: error de lectura, se reintenta")
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return
			}
			continue
		}
		b.Reset()
		ev, ok := s.decode(ctx, msg)
		if !ok {
			continue
		}
		select {
		case s.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Source) decode(ctx context.Context, msg kafkago.Message) (notification.Event, bool) {
	msgCtx := extractHeaders(ctx, msg.Headers)
	_, span := s.tracer.Start(msgCtx, msg.Topic+" receive",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			semconv.MessagingSystemKafka,
			semconv.MessagingDestinationName(msg.Topic),
			attribute.Int64("messaging.kafka.offset", msg.Offset),
		),
	)
	defer span.End()

	var ev notification.Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		span.RecordError(err)
		s.log.Warn().Err(err).Int64("offset", msg.Offset).Msg("kafka: evento ilegible descartado")
		return notification.Event{}, false
	}
	return ev, true
}

// Close cierra el lector; Run termina en la siguiente lectura.
func (s *Source) Close() error {
	return s.consumer.Close()
}

func injectHeaders(ctx context.Context) []kafkago.Header {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	headers := make([]kafkago.Header, 0, len(carrier))
	for k, v := range carrier {
		headers = append(headers, kafkago.Header{Key: k, Value: []byte(v)})
	}
	return headers
}

func extractHeaders(ctx context.Context, headers []kafkago.Header) context.Context {
	carrier := propagation.MapCarrier{}
	for _, h := range headers {
		carrier[h.Key] = string(h.Value)
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}
