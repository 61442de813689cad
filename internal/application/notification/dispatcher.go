package notification

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Dispatcher consume eventos y los entrega. Los errores se registran y se descartan.
type Dispatcher struct {
	resolver *Resolver
	renderer *Renderer
	notifier *Notifier
	log      zerolog.Logger
	timeout  time.Duration
}

// NewDispatcher construye el consumidor de la cola.
func NewDispatcher(resolver *Resolver, renderer *Renderer, notifier *Notifier, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{resolver: resolver, renderer: renderer, notifier: notifier, log: log, timeout: 2 * time.Minute}
}

// Run procesa events hasta que el canal se cierre o ctx se cancele. Al cerrarse el canal
// termina de entregar lo pendiente antes de volver.
func (d *Dispatcher) Run(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			d.Handle(ctx, ev)
		}
	}
}

// Handle entrega un único evento.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) Result {
	log := d.log.With().Str("event", string(ev.Type())).Logger()
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	recipients, err := d.resolver.Resolve(ctx, ev.Audience)
	if err != nil {
		log.Error().Err(err).Msg("no se pudieron resolver destinatarios")
		return Result{Err: err}
	}
	content, err := d.renderer.Render(ev)
	if err != nil {
		log.Error().Err(err).Msg("no se pudo renderizar la notificación")
		return Result{Err: err}
	}
	res := d.notifier.Notify(ctx, ev.Type(), recipients, content)
	if !res.Success {
		log.Warn().Err(res.Err).Int("attempts", res.Attempts).Msg("notificación no entregada")
	}
	return res
}
