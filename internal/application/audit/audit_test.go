package audit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-bares/internal/application/audit"
	"github.com/jhoicas/inventario-bares/internal/domain"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/domain/repository"
	"github.com/jhoicas/inventario-bares/internal/infrastructure/memory"
)

var bodeguero = entity.Actor{UserID: "u-bod", Name: "Bruno", Role: entity.RoleBodeguero}

func TestToRow_EntregaConMovimientos(t *testing.T) {
	barA := entity.LocationBarA
	row := audit.ToRow(&entity.AuditLogEntry{
		Action:    entity.ActionRequestDelivered,
		Location:  &barA,
		UserName:  "Bruno",
		CreatedAt: time.Date(2024, 1, 15, 22, 5, 9, 0, time.UTC),
		Details: entity.RequestDeliveredDetails{
			StatusChange: audit.StatusChange("approved", "delivered"),
			StockMovements: []entity.StockMovement{
				{ProductName: "Gin", WarehouseBefore: 5000, WarehouseAfter: 3500, DestinationBefore: 0, DestinationAfter: 1500},
			},
		},
	})

	assert.Equal(t, "15/01/2024", row.Date)
	assert.Equal(t, "23:05:09", row.Time, "hora en Europe/Madrid")
	assert.Equal(t, entity.ActionRequestDelivered.Label(), row.Action)
	assert.Equal(t, barA.DisplayName(), row.Location)
	assert.Equal(t, "approved → delivered", row.StatusChange)
	assert.Equal(t, "Gin: Bodega 5000→3500, Destino 0→1500", row.StockMovements)
	assert.Len(t, row.Values(), len(audit.Columns))
}

func TestToRow_ItemsNoDisponibles(t *testing.T) {
	no := false
	row := audit.ToRow(&entity.AuditLogEntry{
		Action: entity.ActionRequestApproved,
		Details: entity.RequestApprovedDetails{
			StatusChange: "pending → approved",
			Items: []entity.ItemSummary{
				{Name: "Gin", Quantity: 2, Unit: "bottles"},
				{Name: "Ron", Quantity: 500, Unit: "ml", IsAvailable: &no},
			},
		},
	})
	assert.Equal(t, "Gin: 2 bottles; Ron: 500 ml (no disponible)", row.Items)
	assert.Empty(t, row.Location)
}

func TestWriter_FalloDeEscrituraNoSePropaga(t *testing.T) {
	store := memory.NewStore()
	repos := store.Repos()
	w := audit.NewWriter(repos.Audit, zerolog.Nop())
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	w.SetClock(func() time.Time { return at })

	store.SetFault(func(op string) error {
		if op == "audit.append" {
			return errors.New("disco lleno")
		}
		return nil
	})
	e := w.Record(context.Background(), bodeguero, entity.EntityInventory, "p", nil, entity.StockAdjustmentDetails{Before: 1, After: 2})
	require.NotNil(t, e)
	assert.Equal(t, entity.ActionStockAdjustment, e.Action)
	assert.Equal(t, at, e.CreatedAt)

	store.SetFault(nil)
	entries, err := repos.Audit.List(context.Background(), repository.AuditFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestService_ListFiltraYValida(t *testing.T) {
	repos := memory.NewStore().Repos()
	ctx := context.Background()
	w := audit.NewWriter(repos.Audit, zerolog.Nop())
	barA, barB := entity.LocationBarA, entity.LocationBarB
	w.Record(ctx, bodeguero, entity.EntityRequest, "r1", &barA, entity.RequestRejectedDetails{StatusChange: "pending → rejected"})
	w.Record(ctx, bodeguero, entity.EntityInventory, "p1", &barB, entity.StockAdjustmentDetails{})
	w.Record(ctx, bodeguero, entity.EntityRequest, "r2", &barA, entity.RequestRejectedDetails{StatusChange: "pending → rejected"})

	svc := audit.NewService(repos.Audit)
	action := entity.ActionRequestRejected
	got, err := svc.List(ctx, repository.AuditFilter{Action: &action})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r2", got[0].EntityID, "más reciente primero")

	got, err = svc.List(ctx, repository.AuditFilter{Location: &barB})
	require.NoError(t, err)
	require.Len(t, got, 1)

	bad := entity.AuditAction("borrado")
	_, err = svc.List(ctx, repository.AuditFilter{Action: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	from := time.Now()
	to := from.Add(-time.Hour)
	_, err = svc.List(ctx, repository.AuditFilter{From: &from, To: &to})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	rows, err := svc.ExportRows(ctx, repository.AuditFilter{Limit: 1, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, rows, 3, "la exportación ignora la paginación")
}
