package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/domain/inventory"
)

// SetQuantityRequest body para PUT /api/inventory/{product_id}/{location}.
type SetQuantityRequest struct {
	QuantityMl *int64 `json:"quantity_ml"`
}

// SetMinStockRequest body para PUT /api/inventory/{product_id}/{location}/min-stock.
// MinStockMl nil elimina el umbral.
type SetMinStockRequest struct {
	MinStockMl *int64 `json:"min_stock_ml"`
}

// InventoryRecordResponse fila del stock con conversión a botellas y estado.
type InventoryRecordResponse struct {
	ProductID       string          `json:"product_id"`
	ProductCode     string          `json:"product_code"`
	ProductName     string          `json:"product_name"`
	CategoryName    string          `json:"category_name,omitempty"`
	Location        string          `json:"location"`
	QuantityMl      int64           `json:"quantity_ml"`
	QuantityBottles decimal.Decimal `json:"quantity_bottles"`
	MinStockMl      *int64          `json:"min_stock_ml,omitempty"`
	Status          string          `json:"status"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// LedgerChangeResponse cambio aplicado sobre un par (producto, ubicación).
type LedgerChangeResponse struct {
	ProductID string `json:"product_id"`
	Location  string `json:"location"`
	Before    int64  `json:"before"`
	After     int64  `json:"after"`
}

// InventoryFromEntity construye la fila de stock.
func InventoryFromEntity(r *entity.InventoryRecord) InventoryRecordResponse {
	out := InventoryRecordResponse{
		ProductID:       r.ProductID,
		Location:        string(r.Location),
		QuantityMl:      r.QuantityMl,
		QuantityBottles: inventory.BottlesFromMl(r.QuantityMl, r.Product.EffectiveFormatMl()),
		MinStockMl:      r.MinStockMl,
		Status:          inventory.StockStatus(r.QuantityMl, r.MinStockMl),
		UpdatedAt:       r.UpdatedAt,
	}
	if r.Product != nil {
		out.ProductCode = r.Product.Code
		out.ProductName = r.Product.Name
		out.CategoryName = r.Product.CategoryName
	}
	return out
}

// LedgerChangesFromEntity convierte los cambios del ledger.
func LedgerChangesFromEntity(changes []entity.LedgerChange) []LedgerChangeResponse {
	out := make([]LedgerChangeResponse, 0, len(changes))
	for _, c := range changes {
		out = append(out, LedgerChangeResponse{ProductID: c.ProductID, Location: string(c.Location), Before: c.Before, After: c.After})
	}
	return out
}
