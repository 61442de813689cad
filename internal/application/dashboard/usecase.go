// Package dashboard contiene el resumen de stock y solicitudes de la pantalla principal.
package dashboard

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-bares/internal/application/alert"
	"github.com/jhoicas/inventario-bares/internal/application/dto"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/domain/repository"
)

// DashboardUseCase genera el resumen del stock actual.
//
// Fuente de datos: repositorios de productos, inventario y solicitudes (consultas read-only)
// más el evaluador de alertas.
type DashboardUseCase struct {
	products  repository.ProductRepository
	inventory repository.InventoryRepository
	requests  repository.RequestRepository
	alerts    *alert.Service
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(
	products repository.ProductRepository,
	inventory repository.InventoryRepository,
	requests repository.RequestRepository,
	alerts *alert.Service,
) *DashboardUseCase {
	return &DashboardUseCase{products: products, inventory: inventory, requests: requests, alerts: alerts}
}

// GetSummary construye el DashboardSummaryDTO. Con loc != nil los conteos de stock
// se limitan a esa ubicación.
//
// Cuatro llamadas en paralelo:
//  1. CountActive              → TotalProducts
//  2. inventory.List           → LowStockCount, OutOfStockCount, ByLocation
//  3. CountByStatus(pending)   → PendingRequests
//  4. alerts.Triggered         → TriggeredAlerts
func (uc *DashboardUseCase) GetSummary(ctx context.Context, loc *entity.Location) (*dto.DashboardSummaryDTO, error) {
	type countResult struct {
		n   int
		err error
	}
	type stockResult struct {
		records []*entity.InventoryRecord
		err     error
	}

	productsCh := make(chan countResult, 1)
	stockCh := make(chan stockResult, 1)
	pendingCh := make(chan countResult, 1)
	alertsCh := make(chan countResult, 1)

	go func() {
		n, err := uc.products.CountActive(ctx)
		productsCh <- countResult{n, err}
	}()
	go func() {
		records, err := uc.inventory.List(ctx, repository.InventoryFilter{Location: loc})
		stockCh <- stockResult{records, err}
	}()
	go func() {
		n, err := uc.requests.CountByStatus(ctx, entity.RequestPending, loc)
		pendingCh <- countResult{n, err}
	}()
	go func() {
		triggered, err := uc.alerts.Triggered(ctx)
		n := 0
		for _, st := range triggered {
			if loc == nil || st.Config.Location == *loc {
				n++
			}
		}
		alertsCh <- countResult{n, err}
	}()

	products := <-productsCh
	stock := <-stockCh
	pending := <-pendingCh
	alerts := <-alertsCh

	if products.err != nil {
		return nil, fmt.Errorf("dashboard: productos activos: %w", products.err)
	}
	if stock.err != nil {
		return nil, fmt.Errorf("dashboard: stock: %w", stock.err)
	}
	if pending.err != nil {
		return nil, fmt.Errorf("dashboard: solicitudes pendientes: %w", pending.err)
	}
	if alerts.err != nil {
		return nil, fmt.Errorf("dashboard: alertas: %w", alerts.err)
	}

	out := &dto.DashboardSummaryDTO{
		TotalProducts:   products.n,
		PendingRequests: pending.n,
		TriggeredAlerts: alerts.n,
	}
	byLoc := map[entity.Location]*dto.LocationStockDTO{}
	for _, l := range entity.Locations() {
		if loc != nil && l != *loc {
			continue
		}
		byLoc[l] = &dto.LocationStockDTO{Location: string(l), Name: l.DisplayName()}
	}
	for _, r := range stock.records {
		if r.Product != nil && !r.Product.IsActive {
			continue
		}
		s, ok := byLoc[r.Location]
		if !ok {
			continue
		}
		s.Records++
		switch {
		case r.QuantityMl <= 0:
			s.OutOfStock++
			out.OutOfStockCount++
		case r.IsLow():
			// bajo umbral pero con stock
			s.LowStock++
			out.LowStockCount++
		}
	}
	for _, l := range entity.Locations() {
		if s, ok := byLoc[l]; ok {
			out.ByLocation = append(out.ByLocation, *s)
		}
	}
	return out, nil
}
