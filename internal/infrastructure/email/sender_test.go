package email_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/inventario-bares/internal/application/notification"
	"github.com/jhoicas/inventario-bares/internal/infrastructure/email"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, m...)
	return nil
}

func TestSMTPSender_PrimerDestinatarioEnToRestoEnBcc(t *testing.T) {
	d := &fakeDialer{}
	s := email.NewSMTPSenderWithDialer(d, "inventario@bares.es", "Inventario")

	err := s.Send(context.Background(), notification.Message{
		Type:    notification.EventRequestCreated,
		To:      []string{"a@bares.es", "b@bares.es", "c@bares.es"},
		Subject: "Nueva solicitud",
		HTML:    "<p>hola</p>",
	})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"a@bares.es"}, m.GetHeader("To"))
	assert.Equal(t, []string{"b@bares.es", "c@bares.es"}, m.GetHeader("Bcc"))
	assert.Equal(t, []string{"Nueva solicitud"}, m.GetHeader("Subject"))
	assert.Equal(t, []string{string(notification.EventRequestCreated)}, m.GetHeader("X-Inventario-Event"))
}

func TestSMTPSender_ErrorDelServidor(t *testing.T) {
	d := &fakeDialer{err: errors.New("connection refused")}
	s := email.NewSMTPSenderWithDialer(d, "inventario@bares.es", "")

	err := s.Send(context.Background(), notification.Message{To: []string{"a@bares.es"}, Subject: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSMTPSender_SinDestinatarios(t *testing.T) {
	s := email.NewSMTPSenderWithDialer(&fakeDialer{}, "inventario@bares.es", "")
	assert.Error(t, s.Send(context.Background(), notification.Message{}))
}

func TestSMTPSender_ContextoCancelado(t *testing.T) {
	d := &fakeDialer{}
	s := email.NewSMTPSenderWithDialer(d, "inventario@bares.es", "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Send(ctx, notification.Message{To: []string{"a@bares.es"}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, d.sent)
}

func TestLogSender_RegistraSinEnviar(t *testing.T) {
	var buf bytes.Buffer
	s := email.NewLogSender(zerolog.New(&buf))

	err := s.Send(context.Background(), notification.Message{
		Type:    notification.EventLowStockAlert,
		To:      []string{"admin@bares.es"},
		Subject: "Stock bajo",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"subject":"Stock bajo"`)
	assert.Contains(t, buf.String(), `"to":"admin@bares.es"`)
}
