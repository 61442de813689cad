package entity

import "time"

// InventoryRecord cantidad en ml de un producto en una ubicación.
// Una fila por par (producto, ubicación); se crea al primer movimiento.
type InventoryRecord struct {
	ID         string
	ProductID  string
	Location   Location
	QuantityMl int64  // nunca negativo: los descuentos se recortan en 0
	MinStockMl *int64 // umbral propio del registro (opcional)
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Campos unidos (no siempre poblados).
	Product *Product
}

// IsLow compara la cantidad contra el umbral propio del registro.
func (r *InventoryRecord) IsLow() bool {
	return r.MinStockMl != nil && r.QuantityMl < *r.MinStockMl
}

// LedgerChange resultado de una escritura sobre el ledger.
type LedgerChange struct {
	ProductID   string   `json:"product_id"`
	ProductName string   `json:"product_name,omitempty"`
	Location    Location `json:"location"`
	Before      int64    `json:"before"`
	After       int64    `json:"after"`
}
