// Package alert evalúa los umbrales de stock configurados y administra su configuración.
package alert

import "github.com/jhoicas/inventario-bares/internal/domain/entity"

// Key par (producto, ubicación) del ledger.
type Key struct {
	ProductID string
	Location  entity.Location
}

// Evaluate calcula el estado de cada configuración contra el snapshot de cantidades.
// Un par ausente cuenta como 0 ml. IsTriggered = activa y cantidad < umbral.
func Evaluate(configs []*entity.AlertConfig, quantities map[Key]int64) []entity.AlertStatus {
	out := make([]entity.AlertStatus, 0, len(configs))
	for _, c := range configs {
		qty := quantities[Key{ProductID: c.ProductID, Location: c.Location}]
		out = append(out, entity.AlertStatus{
			Config:       *c,
			CurrentStock: qty,
			IsTriggered:  c.IsActive && qty < c.MinStockMl,
		})
	}
	return out
}
