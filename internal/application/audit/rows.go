package audit

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/jhoicas/inventario-bares/internal/domain/entity"
)

// Columnas de la exportación del historial, en orden.
var Columns = []string{"Fecha", "Hora", "Acción", "Usuario", "Ubicación", "Cambio de Estado", "Productos", "Movimientos de Stock"}

// Row fila del historial lista para CSV/XLSX:
// date, time, action, user, location, status_change, items, stock_movements.
type Row struct {
	Date           string
	Time           string
	Action         string
	User           string
	Location       string
	StatusChange   string
	Items          string
	StockMovements string
}

// Values devuelve la fila en el orden de Columns.
func (r Row) Values() []string {
	return []string{r.Date, r.Time, r.Action, r.User, r.Location, r.StatusChange, r.Items, r.StockMovements}
}

// exportZone zona horaria de la operación para fecha y hora exportadas.
var exportZone = loadZone("Europe/Madrid")

// Zone zona horaria usada en exportaciones y comprobantes.
func Zone() *time.Location { return exportZone }

func loadZone(name string) *time.Location {
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.UTC
}

// ToRow aplana una entrada del historial.
func ToRow(e *entity.AuditLogEntry) Row {
	at := e.CreatedAt.In(exportZone)
	row := Row{
		Date:   at.Format("02/01/2006"),
		Time:   at.Format("15:04:05"),
		Action: e.Action.Label(),
		User:   e.UserName,
	}
	if e.Location != nil {
		row.Location = e.Location.DisplayName()
	}

	switch d := e.Details.(type) {
	case entity.RequestCreatedDetails:
		row.Items = formatItems(d.Items)
	case entity.RequestApprovedDetails:
		row.StatusChange = d.StatusChange
		row.Items = formatItems(d.Items)
	case entity.RequestRejectedDetails:
		row.StatusChange = d.StatusChange
	case entity.RequestDeliveredDetails:
		row.StatusChange = d.StatusChange
		row.StockMovements = formatMovements(d.StockMovements)
	case entity.TransferCreatedDetails:
		row.Items = formatItems(d.Items)
		row.StockMovements = formatChanges(d.SourceChanges)
	case entity.TransferCompletedDetails:
		row.StatusChange = d.StatusChange
		row.StockMovements = formatChanges(d.DestinationChanges)
	case entity.StockAdjustmentDetails:
		row.Items = d.ProductName
		row.StockMovements = fmt.Sprintf("%s: %d → %d ml", d.ProductName, d.Before, d.After)
	case entity.ProductDetails:
		row.Items = fmt.Sprintf("%s (%s)", d.Name, d.Code)
	case entity.UserDetails:
		row.Items = fmt.Sprintf("%s <%s>", d.FullName, d.Email)
	}
	return row
}

func formatItems(items []entity.ItemSummary) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		s := fmt.Sprintf("%s: %d %s", it.Name, it.Quantity, it.Unit)
		if it.IsAvailable != nil && !*it.IsAvailable {
			s += " (no disponible)"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "; ")
}

func formatMovements(movs []entity.StockMovement) string {
	parts := make([]string, 0, len(movs))
	for _, m := range movs {
		parts = append(parts, fmt.Sprintf("%s: Bodega %d→%d, Destino %d→%d",
			m.ProductName, m.WarehouseBefore, m.WarehouseAfter, m.DestinationBefore, m.DestinationAfter))
	}
	return strings.Join(parts, "; ")
}

func formatChanges(changes []entity.LedgerChange) string {
	parts := make([]string, 0, len(changes))
	for _, c := range changes {
		name := c.ProductName
		if name == "" {
			name = c.ProductID
		}
		parts = append(parts, fmt.Sprintf("%s (%s): %d→%d", name, c.Location.DisplayName(), c.Before, c.After))
	}
	return strings.Join(parts, "; ")
}

// StatusChange texto "pending → approved" usado en los detalles.
func StatusChange(from, to string) string {
	return from + " → " + to
}
