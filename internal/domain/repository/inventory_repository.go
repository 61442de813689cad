package repository

import (
	"context"

	"github.com/jhoicas/inventario-bares/internal/domain/entity"
)

// InventoryFilter filtro del listado de stock.
type InventoryFilter struct {
	Location  *entity.Location
	ProductID string
}

// InventoryRepository puerto del ledger por (producto, ubicación).
// Usado dentro de transacciones para garantizar consistencia.
type InventoryRepository interface {
	// Get devuelve nil, nil si el par aún no tiene registro.
	Get(ctx context.Context, productID string, location entity.Location) (*entity.InventoryRecord, error)
	// GetForUpdate crea el registro en 0 si no existe y bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, productID string, location entity.Location) (*entity.InventoryRecord, error)
	// SetQuantity upsert por (producto, ubicación).
	SetQuantity(ctx context.Context, productID string, location entity.Location, quantityMl int64) error
	// SetMinStock upsert del umbral propio del registro; nil lo elimina.
	SetMinStock(ctx context.Context, productID string, location entity.Location, minStockMl *int64) error
	// List devuelve los registros con Product (y su categoría) poblado.
	List(ctx context.Context, filter InventoryFilter) ([]*entity.InventoryRecord, error)
}
