package notification

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Publisher recibe eventos desde los casos de uso. Publish nunca bloquea ni falla hacia el llamador.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Queue cola acotada en memoria. Con la cola llena el evento se descarta con un warning.
type Queue struct {
	ch     chan Event
	log    zerolog.Logger
	mu     sync.RWMutex
	closed bool
}

// NewQueue crea una cola con capacidad size (mínimo 1).
func NewQueue(size int, log zerolog.Logger) *Queue {
	if size < 1 {
		size = 1
	}
	return &Queue{ch: make(chan Event, size), log: log}
}

// Publish encola sin bloquear.
func (q *Queue) Publish(_ context.Context, ev Event) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.log.Warn().Str("event", string(ev.Type())).Msg("cola de notificaciones cerrada, evento descartado")
		return
	}
	select {
	case q.ch <- ev:
	default:
		q.log.Warn().Str("event", string(ev.Type())).Msg("cola de notificaciones llena, evento descartado")
	}
}

// Events canal que drena el Dispatcher.
func (q *Queue) Events() <-chan Event { return q.ch }

// Close deja de aceptar eventos; el Dispatcher termina al vaciar lo pendiente.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}

// Len eventos pendientes.
func (q *Queue) Len() int { return len(q.ch) }

// Nop descarta todo; útil cuando las notificaciones están deshabilitadas.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
