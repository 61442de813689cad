package notification

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-bares/internal/domain"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail valida el formato de un correo.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// Content asunto y cuerpo HTML ya renderizados.
type Content struct {
	Subject string
	HTML    string
}

// Message correo listo para el colaborador de envío.
type Message struct {
	Type    EventType
	To      []string
	Subject string
	HTML    string
}

// Sender colaborador externo que entrega un correo (SMTP, log...).
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Result resultado de Notify. Nunca se propaga como error al flujo de la mutación.
type Result struct {
	Success  bool
	Attempts int
	Err      error
}

// NotifierConfig parámetros de reintento y copia fija.
type NotifierConfig struct {
	MaxAttempts uint          // intentos totales (3 por defecto)
	BaseDelay   time.Duration // espera antes del segundo intento; se duplica en cada reintento
	AlwaysBCC   string        // correo que recibe todas las notificaciones (opcional)
}

// Notifier valida destinatarios y envía con reintentos y backoff exponencial.
type Notifier struct {
	sender Sender
	cfg    NotifierConfig
	log    zerolog.Logger
}

// NewNotifier construye el notificador.
func NewNotifier(sender Sender, cfg NotifierConfig, log zerolog.Logger) *Notifier {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	return &Notifier{sender: sender, cfg: cfg, log: log}
}

// FilterRecipients descarta correos inválidos y duplicados, y agrega la copia fija si está configurada.
func (n *Notifier) FilterRecipients(recipients []string) []string {
	seen := make(map[string]bool, len(recipients)+1)
	valid := make([]string, 0, len(recipients)+1)
	for _, r := range recipients {
		r = strings.TrimSpace(r)
		key := strings.ToLower(r)
		if r == "" || seen[key] || !IsValidEmail(r) {
			continue
		}
		seen[key] = true
		valid = append(valid, r)
	}
	if dropped := len(recipients) - len(valid); dropped > 0 {
		n.log.Warn().Int("dropped", dropped).Msg("destinatarios inválidos o duplicados descartados")
	}
	if bcc := strings.TrimSpace(n.cfg.AlwaysBCC); bcc != "" && IsValidEmail(bcc) && !seen[strings.ToLower(bcc)] {
		valid = append(valid, bcc)
	}
	return valid
}

// Notify envía content a recipients. Sin destinatarios válidos devuelve un fallo sin intentar el envío.
func (n *Notifier) Notify(ctx context.Context, eventType EventType, recipients []string, content Content) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Success: false, Attempts: res.Attempts, Err: fmt.Errorf("panic en envío: %v", r)}
			n.log.Error().Str("event", string(eventType)).Interface("panic", r).Msg("envío de correo abortado")
		}
	}()

	if len(recipients) == 0 {
		return Result{Err: domain.ErrNoRecipients}
	}
	to := n.FilterRecipients(recipients)
	if len(to) == 0 {
		return Result{Err: domain.ErrNoRecipients}
	}
	msg := Message{Type: eventType, To: to, Subject: content.Subject, HTML: content.HTML}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = n.cfg.BaseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = n.cfg.BaseDelay << n.cfg.MaxAttempts

	attempts := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempts++
		if err := n.sender.Send(ctx, msg); err != nil {
			n.log.Warn().Err(err).
				Str("event", string(eventType)).
				Int("attempt", attempts).
				Uint("max_attempts", n.cfg.MaxAttempts).
				Msg("intento de envío fallido")
			return struct{}{}, err
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(b), backoff.WithMaxTries(n.cfg.MaxAttempts))

	if err != nil {
		n.log.Error().Err(err).Str("event", string(eventType)).Int("attempts", attempts).Msg("correo no enviado tras reintentos")
		return Result{Attempts: attempts, Err: err}
	}
	n.log.Info().Str("event", string(eventType)).Strs("to", to).Int("attempts", attempts).Msg("correo enviado")
	return Result{Success: true, Attempts: attempts}
}
