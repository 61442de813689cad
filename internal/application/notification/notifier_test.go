package notification_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-bares/internal/application/notification"
	"github.com/jhoicas/inventario-bares/internal/domain"
)

type fakeSender struct {
	mu       sync.Mutex
	failures int
	panics   bool
	sent     []notification.Message
	calls    int
}

func (f *fakeSender) Send(_ context.Context, msg notification.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.panics {
		panic("smtp caído")
	}
	if f.calls <= f.failures {
		return errors.New("conexión rechazada")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func newNotifier(s notification.Sender, bcc string) *notification.Notifier {
	return notification.NewNotifier(s, notification.NotifierConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		AlwaysBCC:   bcc,
	}, zerolog.Nop())
}

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"ana@bar.cl", true},
		{" ana@bar.cl ", true},
		{"ana@bar", false},
		{"ana bar@x.cl", false},
		{"@bar.cl", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, notification.IsValidEmail(tt.in))
		})
	}
}

func TestNotify_ReintentaHastaTenerExito(t *testing.T) {
	sender := &fakeSender{failures: 2}
	res := newNotifier(sender, "").Notify(context.Background(), notification.EventRequestCreated,
		[]string{"a@bar.cl"}, notification.Content{Subject: "s", HTML: "<p>x</p>"})

	assert.True(t, res.Success)
	assert.Equal(t, 3, res.Attempts)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "s", sender.sent[0].Subject)
}

func TestNotify_AgotaLosIntentos(t *testing.T) {
	sender := &fakeSender{failures: 10}
	res := newNotifier(sender, "").Notify(context.Background(), notification.EventRequestCreated,
		[]string{"a@bar.cl"}, notification.Content{Subject: "s"})

	assert.False(t, res.Success)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 3, sender.calls)
	assert.Error(t, res.Err)
}

func TestNotify_SinDestinatariosValidosNoEnvia(t *testing.T) {
	sender := &fakeSender{}
	n := newNotifier(sender, "")

	res := n.Notify(context.Background(), notification.EventLowStockAlert, nil, notification.Content{})
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, domain.ErrNoRecipients)

	res = n.Notify(context.Background(), notification.EventLowStockAlert, []string{"no-valido", " "}, notification.Content{})
	assert.ErrorIs(t, res.Err, domain.ErrNoRecipients)
	assert.Equal(t, 0, sender.calls)
}

func TestNotify_PanicoDelEnvioSeConvierteEnFallo(t *testing.T) {
	res := newNotifier(&fakeSender{panics: true}, "").Notify(context.Background(), notification.EventRequestCreated,
		[]string{"a@bar.cl"}, notification.Content{})
	assert.False(t, res.Success)
	assert.Error(t, res.Err)
}

func TestFilterRecipients_DeduplicaYAgregaCopia(t *testing.T) {
	n := newNotifier(&fakeSender{}, "control@bar.cl")
	got := n.FilterRecipients([]string{"a@bar.cl", "A@bar.cl", "malo", " b@bar.cl ", "control@bar.cl"})
	assert.Equal(t, []string{"a@bar.cl", "b@bar.cl", "control@bar.cl"}, got)

	got = n.FilterRecipients([]string{"a@bar.cl"})
	assert.Equal(t, []string{"a@bar.cl", "control@bar.cl"}, got)
}
