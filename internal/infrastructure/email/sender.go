// Package email entrega las notificaciones renderizadas por SMTP o al log.
package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/inventario-bares/internal/application/notification"
	"github.com/jhoicas/inventario-bares/pkg/config"
)

var (
	_ notification.Sender = (*SMTPSender)(nil)
	_ notification.Sender = (*LogSender)(nil)
)

// Dialer lo satisface *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender envía cada mensaje con gomail. El primer destinatario va en To y el resto en Bcc.
type SMTPSender struct {
	dialer   Dialer
	from     string
	fromName string
}

// NewSMTPSender construye el sender a partir de la configuración SMTP.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return NewSMTPSenderWithDialer(gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password), cfg.From, cfg.FromName)
}

// NewSMTPSenderWithDialer permite inyectar el dialer (tests).
func NewSMTPSenderWithDialer(d Dialer, from, fromName string) *SMTPSender {
	return &SMTPSender{dialer: d, from: from, fromName: fromName}
}

// Send arma el mensaje MIME y lo entrega. El contexto solo se respeta antes de conectar.
func (s *SMTPSender) Send(ctx context.Context, msg notification.Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("mensaje sin destinatarios")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m := s.build(msg)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}

func (s *SMTPSender) build(msg notification.Message) *gomail.Message {
	m := gomail.NewMessage(gomail.SetCharset("UTF-8"))
	if s.fromName != "" {
		m.SetAddressHeader("From", s.from, s.fromName)
	} else {
		m.SetHeader("From", s.from)
	}
	m.SetHeader("To", msg.To[0])
	if len(msg.To) > 1 {
		m.SetHeader("Bcc", msg.To[1:]...)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("X-Inventario-Event", string(msg.Type))
	m.SetBody("text/html", msg.HTML)
	return m
}

// LogSender registra el correo en lugar de enviarlo (desarrollo o SMTP sin configurar).
type LogSender struct {
	log zerolog.Logger
}

// NewLogSender construye el sender de log.
func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, msg notification.Message) error {
	s.log.Info().
		Str("event", string(msg.Type)).
		Str("to", strings.Join(msg.To, ",")).
		Str("subject", msg.Subject).
		Int("html_bytes", len(msg.HTML)).
		Msg("correo no enviado (SMTP sin configurar)")
	return nil
}
