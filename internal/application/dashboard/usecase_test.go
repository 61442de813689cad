package dashboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-bares/internal/application/alert"
	"github.com/jhoicas/inventario-bares/internal/application/dashboard"
	"github.com/jhoicas/inventario-bares/internal/application/notification"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/infrastructure/memory"
)

func int64Ptr(v int64) *int64 { return &v }

func TestGetSummary_ConteosDeStock(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repos()
	for _, p := range []*entity.Product{
		{ID: "p1", Code: "A", Name: "Gin", IsActive: true},
		{ID: "p2", Code: "B", Name: "Ron", IsActive: true},
		{ID: "p3", Code: "C", Name: "Viejo", IsActive: false},
	} {
		require.NoError(t, repos.Products.Create(ctx, p))
	}
	require.NoError(t, repos.Inventory.SetQuantity(ctx, "p1", entity.LocationBarA, 100))
	require.NoError(t, repos.Inventory.SetMinStock(ctx, "p1", entity.LocationBarA, int64Ptr(500)))
	require.NoError(t, repos.Inventory.SetQuantity(ctx, "p2", entity.LocationBarA, 0))
	require.NoError(t, repos.Inventory.SetQuantity(ctx, "p2", entity.LocationWarehouse, 9000))
	require.NoError(t, repos.Inventory.SetQuantity(ctx, "p3", entity.LocationBarA, 0))

	barA := entity.LocationBarA
	require.NoError(t, repos.Requests.Create(ctx, &entity.Request{
		ID: "r1", RequesterID: "u", Location: barA, Status: entity.RequestPending, CreatedAt: time.Now(),
		Items: []entity.RequestItem{{ID: "i1", ProductID: "p1", QuantityRequested: 1, UnitType: entity.UnitBottles}},
	}))
	require.NoError(t, repos.Alerts.Create(ctx, &entity.AlertConfig{ID: "a1", ProductID: "p2", Location: entity.LocationBarA, MinStockMl: 100, IsActive: true}))

	alerts := alert.NewService(repos.Alerts, repos.Inventory, repos.Products, notification.Nop{}, zerolog.Nop())
	uc := dashboard.NewDashboardUseCase(repos.Products, repos.Inventory, repos.Requests, alerts)

	got, err := uc.GetSummary(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalProducts)
	assert.Equal(t, 1, got.LowStockCount)
	assert.Equal(t, 1, got.OutOfStockCount, "el producto inactivo no cuenta")
	assert.Equal(t, 1, got.PendingRequests)
	assert.Equal(t, 1, got.TriggeredAlerts)
	require.Len(t, got.ByLocation, 3)

	got, err = uc.GetSummary(ctx, &barA)
	require.NoError(t, err)
	require.Len(t, got.ByLocation, 1)
	assert.Equal(t, 2, got.ByLocation[0].Records)
}
