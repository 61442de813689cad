package notification_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-bares/internal/application/notification"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
)

func TestQueue_DescartaConLaColaLlena(t *testing.T) {
	q := notification.NewQueue(2, zerolog.Nop())
	ev := notification.NewEvent(notification.Admins(), notification.LowStockAlert{ProductName: "Gin"}, time.Now())

	for i := 0; i < 5; i++ {
		q.Publish(context.Background(), ev)
	}
	assert.Equal(t, 2, q.Len())

	q.Close()
	q.Publish(context.Background(), ev)
	n := 0
	for range q.Events() {
		n++
	}
	assert.Equal(t, 2, n)
	q.Close()
}

func TestEvent_JSONConservaLaVariante(t *testing.T) {
	at := time.Date(2024, 5, 3, 21, 30, 0, 0, time.UTC)
	barA := entity.LocationBarA
	yes := true
	tests := []notification.Event{
		notification.NewEvent(notification.LocationStaff(barA), notification.RequestCreated{
			RequestID: "r1", RequesterName: "Ana", Location: barA, ItemsCount: 1,
			Items: []notification.ItemLine{{Name: "Gin", Quantity: decimal.NewFromInt(2), Unit: entity.UnitBottles}},
		}, at),
		notification.NewEvent(notification.User("u1"), notification.RequestApproved{
			RequestID: "r1", ApproverName: "Bruno", Location: barA, ItemsApproved: 1, ItemsTotal: 1,
			Items: []notification.ItemLine{{Name: "Gin", Quantity: decimal.NewFromInt(2), Unit: entity.UnitBottles, IsAvailable: &yes}},
		}, at),
		notification.NewEvent(notification.User("u1"), notification.RequestRejected{RequestID: "r1", ApproverName: "Bruno", Location: barA}, at),
		notification.NewEvent(notification.User("u1"), notification.RequestDelivered{RequestID: "r1", DelivererName: "Bruno", Location: barA, ItemsCount: 1}, at),
		notification.NewEvent(notification.LocationStaff(barA), notification.TransferCreated{TransferID: "t1", FromLocation: entity.LocationBarB, ToLocation: barA}, at),
		notification.NewEvent(notification.LocationStaff(entity.LocationBarB), notification.TransferCompleted{TransferID: "t1", FromLocation: entity.LocationBarB, ToLocation: barA}, at),
		notification.NewEvent(notification.Emails([]string{"a@bar.cl"}), notification.LowStockAlert{ProductName: "Gin", CurrentStock: 100, MinStock: 700}, at),
	}
	for _, ev := range tests {
		t.Run(string(ev.Type()), func(t *testing.T) {
			raw, err := json.Marshal(ev)
			require.NoError(t, err)

			var got notification.Event
			require.NoError(t, json.Unmarshal(raw, &got))
			assert.Equal(t, ev.Type(), got.Type())
			assert.Equal(t, ev.Audience, got.Audience)
			assert.True(t, ev.OccurredAt.Equal(got.OccurredAt))
			assert.IsType(t, ev.Payload, got.Payload)
		})
	}
}

func TestEvent_TipoDesconocido(t *testing.T) {
	var ev notification.Event
	err := json.Unmarshal([]byte(`{"type":"otro","payload":{}}`), &ev)
	assert.Error(t, err)
}
