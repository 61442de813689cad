package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/domain/repository"
	"github.com/jhoicas/inventario-bares/internal/infrastructure/memory"
)

func TestTxRunner_RollbackRevierteSoloLoEscritoEnLaTransaccion(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repos()
	require.NoError(t, repos.Inventory.SetQuantity(ctx, "p-1", entity.LocationWarehouse, 5000))

	errBoom := errors.New("boom")
	err := repos.Tx.Run(ctx, func(tx repository.TxRepos) error {
		if _, err := tx.Inventory.GetForUpdate(ctx, "p-1", entity.LocationWarehouse); err != nil {
			return err
		}
		if err := tx.Inventory.SetQuantity(ctx, "p-1", entity.LocationWarehouse, 3500); err != nil {
			return err
		}
		if _, err := tx.Inventory.GetForUpdate(ctx, "p-1", entity.LocationBarA); err != nil {
			return err
		}

		// Escrituras confirmadas fuera de la transacción mientras sigue abierta.
		require.NoError(t, repos.Audit.Append(ctx, &entity.AuditLogEntry{
			ID: "a-1", UserID: "u-1", Action: entity.ActionStockAdjustment, CreatedAt: time.Now(),
		}))
		require.NoError(t, repos.Inventory.SetQuantity(ctx, "p-2", entity.LocationBarA, 42))
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	wh, err := repos.Inventory.Get(ctx, "p-1", entity.LocationWarehouse)
	require.NoError(t, err)
	require.NotNil(t, wh)
	assert.Equal(t, int64(5000), wh.QuantityMl)

	created, err := repos.Inventory.Get(ctx, "p-1", entity.LocationBarA)
	require.NoError(t, err)
	assert.Nil(t, created, "el registro creado dentro de la transacción no debe quedar")

	other, err := repos.Inventory.Get(ctx, "p-2", entity.LocationBarA)
	require.NoError(t, err)
	require.NotNil(t, other)
	assert.Equal(t, int64(42), other.QuantityMl)

	entries, err := repos.Audit.List(ctx, repository.AuditFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestTxRunner_RollbackRestauraEstadoDeSolicitud(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repos()
	now := time.Now()
	require.NoError(t, repos.Requests.Create(ctx, &entity.Request{
		ID: "r-1", RequesterID: "u-1", Location: entity.LocationBarA, Status: entity.RequestApproved,
		Items:     []entity.RequestItem{{ID: "i-1", ProductID: "p-1", QuantityRequested: 2, UnitType: entity.UnitBottles}},
		CreatedAt: now, UpdatedAt: now,
	}))

	err := repos.Tx.Run(ctx, func(tx repository.TxRepos) error {
		if err := tx.Requests.UpdateStatus(ctx, "r-1", entity.RequestApproved, entity.RequestDelivered, "u-2", now); err != nil {
			return err
		}
		return errors.New("falla a mitad de la entrega")
	})
	require.Error(t, err)

	req, err := repos.Requests.GetByID(ctx, "r-1")
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, entity.RequestApproved, req.Status)
	assert.Nil(t, req.DeliveredBy)
}

func TestTxRunner_ExitoConservaEscrituras(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repos()

	require.NoError(t, repos.Tx.Run(ctx, func(tx repository.TxRepos) error {
		return tx.Inventory.SetQuantity(ctx, "p-1", entity.LocationBarB, 750)
	}))

	rec, err := repos.Inventory.Get(ctx, "p-1", entity.LocationBarB)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(750), rec.QuantityMl)
}
