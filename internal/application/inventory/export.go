package inventory

import (
	"strconv"

	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/domain/inventory"
)

// StockColumns columnas de la exportación de stock, en orden.
var StockColumns = []string{"Código", "Producto", "Categoría", "Ubicación", "Cantidad (ml)", "Botellas", "Mínimo (ml)", "Estado"}

// StockRow fila de la exportación de stock.
type StockRow struct {
	Code       string
	Product    string
	Category   string
	Location   string
	QuantityMl string
	Bottles    string
	MinStockMl string
	Status     string
}

// Values devuelve la fila en el orden de StockColumns.
func (r StockRow) Values() []string {
	return []string{r.Code, r.Product, r.Category, r.Location, r.QuantityMl, r.Bottles, r.MinStockMl, r.Status}
}

// ToStockRows aplana los registros del ledger. Las botellas usan el formato efectivo del producto.
func ToStockRows(records []*entity.InventoryRecord) []StockRow {
	rows := make([]StockRow, 0, len(records))
	for _, rec := range records {
		row := StockRow{
			Location:   rec.Location.DisplayName(),
			QuantityMl: strconv.FormatInt(rec.QuantityMl, 10),
			Bottles:    inventory.BottlesFromMl(rec.QuantityMl, rec.Product.EffectiveFormatMl()).StringFixed(1),
			Status:     inventory.StockStatus(rec.QuantityMl, rec.MinStockMl),
		}
		if rec.Product != nil {
			row.Code = rec.Product.Code
			row.Product = rec.Product.Name
			row.Category = rec.Product.CategoryName
		}
		if rec.MinStockMl != nil {
			row.MinStockMl = strconv.FormatInt(*rec.MinStockMl, 10)
		}
		rows = append(rows, row)
	}
	return rows
}
